package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/agraw-2305/CrediLume/internal/model"
)

// ChatService — диалоговый EMI-советник. Gemini отвечает, когда настроен;
// иначе срабатывает детерминированный маршрутизатор по ключевым словам,
// подставляющий реальные числа пользователя.
type ChatService struct {
	gemini *GeminiClient
	logger *logrus.Logger
}

func NewChatService(gemini *GeminiClient, logger *logrus.Logger) *ChatService {
	return &ChatService{gemini: gemini, logger: logger}
}

// ageRule — возрастные требования по типу кредита
type ageRule struct {
	Min       int
	Max       int
	TenureMax int // возраст, к которому кредит должен закончиться
	Desc      string
}

var ageRules = map[string]ageRule{
	"personal":  {Min: 21, Max: 60, TenureMax: 65, Desc: "Personal Loan"},
	"home":      {Min: 21, Max: 65, TenureMax: 70, Desc: "Home Loan"},
	"education": {Min: 18, Max: 35, TenureMax: 45, Desc: "Education Loan"},
	"business":  {Min: 21, Max: 65, TenureMax: 70, Desc: "Business Loan"},
}

// chatContext — контекст с проставленными дефолтами и рассчитанным EMI
type chatContext struct {
	model.ChatContext
	EMI           float64
	TotalInterest float64
}

func resolveChatContext(raw model.ChatContext) chatContext {
	cc := chatContext{ChatContext: raw}
	if cc.TenureMonths <= 0 {
		cc.TenureMonths = 120
	}
	if cc.InterestRate == 0 {
		cc.InterestRate = 10
	}
	if cc.CreditScore == 0 {
		cc.CreditScore = 700
	}
	if cc.Currency == "" {
		cc.Currency = "USD"
	}
	if cc.LoanType == "" {
		cc.LoanType = "personal"
	}
	if cc.Gender == "" {
		cc.Gender = "not specified"
	}

	if cc.LoanAmount > 0 && cc.TenureMonths > 0 {
		monthlyRate := (cc.InterestRate / 100) / 12
		if monthlyRate > 0 {
			pow := math.Pow(1+monthlyRate, float64(cc.TenureMonths))
			emi := cc.LoanAmount * monthlyRate * pow / (pow - 1)
			cc.EMI = math.Round(emi*100) / 100
			cc.TotalInterest = math.Round((emi*float64(cc.TenureMonths)-cc.LoanAmount)*100) / 100
		}
	}
	return cc
}

func (cc chatContext) rules() ageRule {
	rules, ok := ageRules[cc.LoanType]
	if !ok {
		rules = ageRules["personal"]
	}
	return rules
}

// Chat обрабатывает сообщение с учетом истории и контекста калькулятора
func (s *ChatService) Chat(ctx context.Context, req model.ChatRequest) (string, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", &ValidationError{Field: "message", Reason: "missing"}
	}

	cc := resolveChatContext(req.Context)

	if s.gemini.Enabled() {
		prompt := buildChatPrompt(message, req.History, cc)
		response, err := s.gemini.GenerateContent(ctx, prompt, 0.6, 0)
		if err == nil {
			return response, nil
		}
		s.logger.WithError(err).Warn("Gemini недоступен для чата, откат на детерминированные ответы")
	}

	return keywordFallback(message, cc), nil
}

func buildChatPrompt(message string, history []model.ChatMessage, cc chatContext) string {
	rules := cc.rules()
	tenureYears := cc.TenureMonths / 12
	ageAtLoanEnd := 0
	if cc.Age > 0 {
		ageAtLoanEnd = cc.Age + tenureYears
	}

	ageInfo := "• Age: Not specified"
	if cc.Age > 0 {
		ageInfo = fmt.Sprintf("• Age: %d years (%s)", cc.Age, titleCase(cc.Gender))
	}

	ageEligibility := ""
	if cc.Age > 0 {
		switch {
		case cc.Age < rules.Min:
			ageEligibility = fmt.Sprintf("⚠️ Below minimum age (%d) for %s loan", rules.Min, cc.LoanType)
		case cc.Age > rules.Max:
			ageEligibility = fmt.Sprintf("⚠️ Above maximum age (%d) for %s loan", rules.Max, cc.LoanType)
		case ageAtLoanEnd > rules.TenureMax:
			ageEligibility = fmt.Sprintf("⚠️ Age at loan end (%d) exceeds %d. Max tenure: %d years",
				ageAtLoanEnd, rules.TenureMax, rules.TenureMax-cc.Age)
		default:
			ageEligibility = fmt.Sprintf("✅ Age eligible for %s loan (ends at age %d)", cc.LoanType, ageAtLoanEnd)
		}
	}
	ageEligibilityLine := ""
	if ageEligibility != "" {
		ageEligibilityLine = "• Age Eligibility: " + ageEligibility
	}

	interestShare := 0.0
	if cc.LoanAmount > 0 {
		interestShare = cc.TotalInterest / cc.LoanAmount * 100
	}

	loanContext := fmt.Sprintf(`
📊 USER'S CURRENT LOAN CALCULATOR VALUES:
• Loan Amount: %s %.0f
• Interest Rate: %g%% per annum
• Tenure: %d months (%d years %d months)
• Loan Type: %s
%s
• Annual Income: %s %.0f
• Credit Score: %.0f
%s

📈 CALCULATED VALUES:
• Monthly EMI: %s %.2f
• Total Interest Payable: %s %.2f
• Total Amount Payable: %s %.2f
• Interest as %% of Principal: %.1f%%
`,
		cc.Currency, cc.LoanAmount, cc.InterestRate,
		cc.TenureMonths, cc.TenureMonths/12, cc.TenureMonths%12,
		titleCase(cc.LoanType), ageInfo, cc.Currency, cc.Income, cc.CreditScore, ageEligibilityLine,
		cc.Currency, cc.EMI, cc.Currency, cc.TotalInterest,
		cc.Currency, cc.LoanAmount+cc.TotalInterest, interestShare)

	var historyText strings.Builder
	start := 0
	if len(history) > 6 {
		start = len(history) - 6
	}
	for _, msg := range history[start:] {
		role := "Assistant"
		if msg.Role == "user" {
			role = "User"
		}
		historyText.WriteString(role + ": " + msg.Content + "\n")
	}

	return fmt.Sprintf(`You are an expert EMI & Loan Advisor chatbot for CrediLume loan calculator. You specialize in helping users understand EMI, optimize their loans, and make smart financial decisions.

%s

YOUR EXPERTISE AREAS:
1. 📊 EMI CALCULATIONS - Explain how EMI works, the formula, components (principal vs interest)
2. 💰 INTEREST OPTIMIZATION - Tips to reduce total interest paid
3. ⏱️ TENURE PLANNING - Trade-offs between short and long tenures
4. 🎯 PREPAYMENT STRATEGIES - When and how much to prepay
5. 💵 AFFORDABILITY - Debt-to-income ratios, safe borrowing limits
6. 📉 RATE COMPARISON - Fixed vs floating, negotiating better rates
7. 🏦 LOAN SELECTION - Choosing the right loan type and lender
8. 👤 AGE ELIGIBILITY - Loan eligibility based on applicant's age

AGE ELIGIBILITY RULES:
- Personal Loan: Min age 21, Max age 60, Loan must end by age 65
- Home Loan: Min age 21, Max age 65, Loan must end by age 70
- Education Loan: Min age 18, Max age 35, Loan must end by age 45
- Business Loan: Min age 21, Max age 65, Loan must end by age 70

RESPONSE GUIDELINES:
- Give SPECIFIC advice using their actual loan numbers when relevant
- Use bullet points and clear formatting
- Include calculations/examples when explaining concepts
- Be concise but thorough (3-5 key points)
- Use emojis to make responses friendly but professional
- If they ask about their loan, reference their specific amounts
- Always provide actionable advice they can use immediately
- If age is provided, consider age eligibility in your advice

EMI FORMULA REFERENCE:
EMI = P × r × (1+r)^n / ((1+r)^n - 1)
Where: P = Principal, r = Monthly interest rate, n = Number of months

AFFORDABILITY RULES:
- EMI should ideally be ≤40%% of monthly income
- Total debt payments ≤50%% of income
- Emergency fund of 6 months expenses recommended before taking loan

Previous conversation:
%s
User's question: %s

Provide helpful, specific advice:`, loanContext, historyText.String(), message)
}

func containsAny(message string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}

// keywordFallback — детерминированные ответы по ключевым словам,
// заполненные числами пользователя
func keywordFallback(message string, cc chatContext) string {
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, "age", "eligible", "eligibility", "old enough", "too old", "too young"):
		return ageEligibilityAnswer(cc)
	case containsAny(lower, "emi", "calculate", "formula", "how is", "explain"):
		return emiFormulaAnswer(cc)
	case containsAny(lower, "reduce", "lower", "save", "less interest", "minimize"):
		return interestReductionAnswer(cc)
	case containsAny(lower, "tenure", "term", "years", "months", "short", "long"):
		return tenureAnswer(cc)
	case containsAny(lower, "prepay", "prepayment", "pay off", "early", "lump sum"):
		return prepaymentAnswer(cc)
	case containsAny(lower, "afford", "income", "budget", "can i", "how much", "salary"):
		return affordabilityAnswer(cc)
	case containsAny(lower, "fixed", "floating", "variable", "type of rate"):
		return fixedVsFloatingAnswer(cc)
	case containsAny(lower, "credit", "score", "cibil", "rating"):
		return creditScoreAnswer(cc)
	default:
		return defaultMenuAnswer(cc)
	}
}

func ageEligibilityAnswer(cc chatContext) string {
	rules := cc.rules()
	tenureYears := cc.TenureMonths / 12
	ageAtEnd := 0
	if cc.Age > 0 {
		ageAtEnd = cc.Age + tenureYears
	}
	maxAllowedTenure := rules.TenureMax - rules.Min
	if cc.Age > 0 {
		maxAllowedTenure = rules.TenureMax - cc.Age
	}

	status := "❓ Age not provided"
	if cc.Age > 0 {
		switch {
		case cc.Age < rules.Min:
			status = fmt.Sprintf("❌ **Not Eligible** - You're %d years below minimum age (%d)", rules.Min-cc.Age, rules.Min)
		case cc.Age > rules.Max:
			status = fmt.Sprintf("❌ **Not Eligible** - You're %d years above maximum age (%d)", cc.Age-rules.Max, rules.Max)
		case ageAtEnd > rules.TenureMax:
			status = fmt.Sprintf("⚠️ **Partial Eligibility** - Age at loan end (%d) exceeds %d", ageAtEnd, rules.TenureMax)
		default:
			status = "✅ **Eligible!** - You meet all age criteria"
		}
	}

	ageLine := "Not specified"
	ageAtEndLine := "N/A"
	shownTenure := tenureYears
	if cc.Age > 0 {
		ageLine = fmt.Sprintf("%d years", cc.Age)
		ageAtEndLine = fmt.Sprintf("%d", ageAtEnd)
		shownTenure = maxAllowedTenure
	}

	return fmt.Sprintf(`👤 **Age Eligibility Check for %s**

**Your Profile:**
• Current Age: %s
• Gender: %s
• Loan Type: %s
• Tenure: %d years
• Age at Loan End: %s

**Eligibility Rules for %s:**
• Minimum Age: %d years
• Maximum Age: %d years
• Loan must end by age: %d

**Your Status:** %s

**Maximum Tenure Allowed:** %d years

📋 **All Loan Types Age Criteria:**
| Loan Type | Min Age | Max Age | Must End By |
|-----------|---------|---------|-------------|
| Personal  | 21      | 60      | 65          |
| Home      | 21      | 65      | 70          |
| Education | 18      | 35      | 45          |
| Business  | 21      | 65      | 70          |

💡 **Tip:** If you're near the upper age limit, consider a shorter tenure or add a co-applicant.`,
		rules.Desc, ageLine, titleCase(cc.Gender), titleCase(cc.LoanType),
		tenureYears, ageAtEndLine, rules.Desc, rules.Min, rules.Max, rules.TenureMax,
		status, shownTenure)
}

func emiFormulaAnswer(cc chatContext) string {
	return fmt.Sprintf(`📊 **How EMI is Calculated**

EMI = P × r × (1+r)^n / ((1+r)^n - 1)

Where:
• **P** = Principal (Loan Amount) = %s %.0f
• **r** = Monthly Interest Rate = %g%% ÷ 12 = %.4f%%
• **n** = Number of Months = %d

**Your EMI Breakdown:**
• Monthly EMI: **%s %.2f**
• Total Interest: %s %.2f
• Total Payment: %s %.2f

💡 Each EMI payment includes both principal and interest. Early payments are interest-heavy, later ones are principal-heavy!`,
		cc.Currency, cc.LoanAmount, cc.InterestRate, cc.InterestRate/12, cc.TenureMonths,
		cc.Currency, cc.EMI, cc.Currency, cc.TotalInterest,
		cc.Currency, cc.LoanAmount+cc.TotalInterest)
}

func interestReductionAnswer(cc chatContext) string {
	potentialSavings := cc.TotalInterest * 0.15
	return fmt.Sprintf(`💰 **Ways to Reduce Your Interest (%s %.0f currently)**

1. **Shorter Tenure** - Reducing from %d to %d months can save ~15-20%% interest
2. **Prepayments** - Even %s %.0f extra/year reduces interest significantly
3. **Better Rate** - 0.5%% lower rate saves ~%s %.0f over loan term
4. **Higher Down Payment** - Reduces principal = less interest
5. **Balance Transfer** - If rates have dropped, consider refinancing

🎯 **Quick Win:** Making one extra EMI payment per year can cut your loan tenure by 2-3 years!

Potential savings with these strategies: **%s %.0f+**`,
		cc.Currency, cc.TotalInterest, cc.TenureMonths, cc.TenureMonths-24,
		cc.Currency, cc.LoanAmount*0.1, cc.Currency, cc.TotalInterest*0.05,
		cc.Currency, potentialSavings)
}

func tenureAnswer(cc chatContext) string {
	shortTenure := cc.TenureMonths - 36
	if shortTenure < 12 {
		shortTenure = 12
	}
	longTenure := cc.TenureMonths + 36
	return fmt.Sprintf(`⏱️ **Tenure Trade-offs for Your %s %.0f Loan**

**Shorter Tenure (%d months):**
✅ Less total interest paid
✅ Debt-free sooner
❌ Higher monthly EMI
Best for: Higher income, stable job

**Longer Tenure (%d months):**
✅ Lower monthly EMI (easier to manage)
✅ More financial flexibility
❌ More total interest paid
Best for: Variable income, other investments

**Your Current:** %d months = %s %.2f/month

💡 **Pro Tip:** Start with longer tenure for lower mandatory EMI, but make voluntary prepayments when you have extra cash. Best of both worlds!`,
		cc.Currency, cc.LoanAmount, shortTenure, longTenure,
		cc.TenureMonths, cc.Currency, cc.EMI)
}

func prepaymentAnswer(cc chatContext) string {
	prepayAmount := cc.LoanAmount * 0.1
	return fmt.Sprintf(`🎯 **Prepayment Strategy for Your Loan**

**When to Prepay:**
• Best in first half of loan tenure (when interest component is highest)
• When you have surplus funds beyond emergency fund
• After checking for prepayment penalties (most loans allow 5-25%% free)

**Smart Prepayment Options:**

1. **Annual Bonus Method**
   - Put %s %.0f (10%% of loan) annually
   - Can reduce tenure by 3-4 years!

2. **EMI Top-up Method**
   - Pay %s %.0f extra each month
   - Barely noticeable, huge impact

3. **Part Prepay vs Full Closure**
   - Part prepay to reduce tenure (not EMI) for max savings

💡 **Your Potential Savings:** Prepaying %s %.0f in year 1 could save ~%s %.0f in interest!`,
		cc.Currency, prepayAmount, cc.Currency, cc.EMI*0.1,
		cc.Currency, prepayAmount, cc.Currency, prepayAmount*0.3)
}

func affordabilityAnswer(cc chatContext) string {
	monthlyIncome := 0.0
	if cc.Income > 0 {
		monthlyIncome = cc.Income / 12
	}
	emiRatio := 0.0
	if monthlyIncome > 0 {
		emiRatio = cc.EMI / monthlyIncome * 100
	}
	maxAffordableEMI := monthlyIncome * 0.4

	recommendation := "⚠️ Consider reducing loan amount or extending tenure for comfort."
	if emiRatio < 40 {
		recommendation = "✅ Your EMI is within healthy limits!"
	}

	return fmt.Sprintf(`💵 **Affordability Analysis**

**Your Numbers:**
• Monthly Income: %s %.0f
• Current EMI: %s %.2f
• EMI-to-Income Ratio: **%.1f%%**

**Healthy Ranges:**
• ✅ Below 30%%: Very comfortable
• ⚠️ 30-40%%: Manageable, less flexibility
• ❌ Above 40%%: Risky, consider lower amount

**Recommendation:**
%s

**Max Affordable EMI (40%% rule):** %s %.0f/month
**That supports a loan of approximately:** %s %.0f`,
		cc.Currency, monthlyIncome, cc.Currency, cc.EMI, emiRatio,
		recommendation, cc.Currency, maxAffordableEMI,
		cc.Currency, maxAffordableEMI*float64(cc.TenureMonths)*0.85)
}

func fixedVsFloatingAnswer(cc chatContext) string {
	return fmt.Sprintf(`📉 **Fixed vs Floating Interest Rates**

**Fixed Rate:**
✅ EMI stays constant throughout
✅ Easy budgeting, no surprises
✅ Good when rates might rise
❌ Usually 0.5-1%% higher than floating
❌ Miss out if rates drop

**Floating Rate:**
✅ Lower initial rate
✅ Benefit when rates fall
✅ Good for short-term loans
❌ EMI can increase unpredictably
❌ Budgeting is harder

**For your %d-year loan:**
• If rates are HIGH now → **Floating** (likely to decrease)
• If rates are LOW now → **Fixed** (lock in the good rate)
• If uncertain → **Floating with prepayment plan** (pay off faster if rates rise)

💡 Currently at %g%%? Check if this is historically high or low in your region.`,
		cc.TenureMonths/12, cc.InterestRate)
}

func creditScoreAnswer(cc chatContext) string {
	assessment := fmt.Sprintf("💡 Improving to 750+ could save %s %d+ in interest!",
		cc.Currency, int(cc.TotalInterest*0.1))
	if cc.CreditScore >= 750 {
		assessment = "✅ Great! You qualify for competitive rates."
	}

	return fmt.Sprintf(`📈 **Credit Score Impact on Your Loan**

**Score Ranges & Rates:**
• 750+ (Excellent): Best rates, 0.5-1%% lower
• 700-749 (Good): Standard rates
• 650-699 (Fair): +0.5-1%% higher rates
• Below 650: May face rejection or +2-3%% rates

**Your Score: %d**
%s

**Quick Score Boosters:**
1. Pay all bills on time (35%% of score)
2. Keep credit utilization under 30%%
3. Don't close old credit cards
4. Avoid multiple loan applications at once
5. Check report for errors`,
		int(cc.CreditScore), assessment)
}

func defaultMenuAnswer(cc chatContext) string {
	return fmt.Sprintf(`🎯 **I can help you with:**

Based on your loan of **%s %.0f** at **%g%%** for **%d months**:

• 📊 **Your EMI:** %s %.2f/month
• 💰 **Total Interest:** %s %.2f

**Ask me about:**
- "How can I reduce my interest?"
- "Should I choose shorter or longer tenure?"
- "When should I prepay my loan?"
- "How much loan can I afford?"
- "Fixed vs floating rate?"
- "How is EMI calculated?"

I'll give you personalized advice based on your numbers! 💡`,
		cc.Currency, cc.LoanAmount, cc.InterestRate, cc.TenureMonths,
		cc.Currency, cc.EMI, cc.Currency, cc.TotalInterest)
}
