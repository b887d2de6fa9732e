package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/agraw-2305/CrediLume/internal/model"
	"github.com/agraw-2305/CrediLume/internal/repository"
)

const adviceCacheTTL = time.Hour

// AdviceService — персональный финансовый советник: сперва Gemini, при любом
// сбое — статические таблицы по типу кредита. Ответы кешируются, потому что
// для одинаковых входов генерация детерминированно дорогая и одинаково полезная.
type AdviceService struct {
	gemini *GeminiClient
	cache  repository.CacheRepository
	logger *logrus.Logger
}

func NewAdviceService(gemini *GeminiClient, cache repository.CacheRepository, logger *logrus.Logger) *AdviceService {
	return &AdviceService{gemini: gemini, cache: cache, logger: logger}
}

// fallbackAdvice — детерминированные советы, когда Gemini недоступен.
// agriculture доступен только через /smart_advisor: форма решения такие
// кредиты не скорит, но советник их знает.
var fallbackAdvice = map[string]struct {
	Title  string
	Advice []model.AdviceItem
}{
	"education": {
		Title: "Education Loan Financial Tips",
		Advice: []model.AdviceItem{
			{Title: "Compare Interest Rates", Description: "Shop around with multiple lenders. Even a 0.5% difference can save thousands over the loan term.", Impact: "High", Category: "Savings"},
			{Title: "Start Paying Interest Early", Description: "If possible, pay interest while still in school to prevent capitalization and reduce total cost.", Impact: "Medium", Category: "Strategy"},
			{Title: "Set Up Autopay", Description: "Most lenders offer 0.25% rate reduction for automatic payments. Easy savings!", Impact: "Medium", Category: "Savings"},
			{Title: "Consider Refinancing Later", Description: "After graduation with stable income and good credit, refinancing can lower your rate significantly.", Impact: "High", Category: "Strategy"},
		},
	},
	"home": {
		Title: "Home Loan Financial Tips",
		Advice: []model.AdviceItem{
			{Title: "Improve Credit Score First", Description: "A score above 740 typically gets the best rates. Even 20 points can save thousands.", Impact: "High", Category: "Preparation"},
			{Title: "Save for 20% Down Payment", Description: "Avoid PMI (Private Mortgage Insurance) by putting 20% down, saving hundreds monthly.", Impact: "High", Category: "Savings"},
			{Title: "Get Multiple Quotes", Description: "Apply to at least 3 lenders. Rate shopping within 14-45 days counts as one inquiry.", Impact: "Medium", Category: "Strategy"},
			{Title: "Consider Points vs Rate", Description: "Buying points makes sense if you'll stay 5+ years. Calculate your break-even point.", Impact: "Medium", Category: "Strategy"},
		},
	},
	"business": {
		Title: "Business Loan Financial Tips",
		Advice: []model.AdviceItem{
			{Title: "Separate Personal & Business Credit", Description: "Build business credit history independently. It protects personal assets and improves terms.", Impact: "High", Category: "Preparation"},
			{Title: "Prepare Strong Financials", Description: "Have 2+ years of tax returns, profit/loss statements, and cash flow projections ready.", Impact: "High", Category: "Preparation"},
			{Title: "Start with a Line of Credit", Description: "A business line of credit builds history and provides flexibility. Use it and repay consistently.", Impact: "Medium", Category: "Strategy"},
			{Title: "Consider Collateral Options", Description: "Secured loans offer better rates. Equipment, inventory, or receivables can serve as collateral.", Impact: "Medium", Category: "Savings"},
		},
	},
	"personal": {
		Title: "Personal Loan Financial Tips",
		Advice: []model.AdviceItem{
			{Title: "Check Your Credit Report", Description: "Review for errors before applying. Dispute any inaccuracies - they can hurt your rate.", Impact: "High", Category: "Preparation"},
			{Title: "Lower Debt-to-Income Ratio", Description: "Pay down existing debts first. DTI below 36% significantly improves approval odds and rates.", Impact: "High", Category: "Preparation"},
			{Title: "Avoid Unnecessary Fees", Description: "Look for loans with no origination fees or prepayment penalties. Read the fine print!", Impact: "Medium", Category: "Savings"},
			{Title: "Choose the Right Term", Description: "Shorter terms mean higher payments but less total interest. Balance monthly budget with total cost.", Impact: "Medium", Category: "Strategy"},
		},
	},
	"agriculture": {
		Title: "Agricultural Loan Financial Tips",
		Advice: []model.AdviceItem{
			{Title: "Document Farm Income Properly", Description: "Keep detailed records of all farm revenue streams. Lenders want to see consistent cash flow.", Impact: "High", Category: "Preparation"},
			{Title: "Use Land as Leverage", Description: "Farm real estate can secure better rates. Consider using equity in existing land for new purchases.", Impact: "High", Category: "Strategy"},
			{Title: "Time Your Application", Description: "Apply after a good harvest season when financials look strongest. Timing matters for approval.", Impact: "Medium", Category: "Strategy"},
			{Title: "Explore Operating Lines", Description: "Seasonal operating lines of credit often have better terms than fixed loans for working capital.", Impact: "Medium", Category: "Savings"},
		},
	},
}

// GetAdvice возвращает персональные советы по типу кредита.
// Никогда не возвращает ошибку: худший случай — детерминированный fallback.
func (s *AdviceService) GetAdvice(ctx context.Context, req model.AdviceRequest) *model.AdviceResponse {
	loanType := strings.ToLower(strings.TrimSpace(req.LoanType))
	if _, ok := fallbackAdvice[loanType]; !ok {
		loanType = "personal"
	}

	cacheKey := fmt.Sprintf("advice:%s:%s:%.0f:%.0f:%.0f",
		loanType, req.Currency, req.LoanAmount, req.Income, req.CreditScore)
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		var resp model.AdviceResponse
		if err := json.Unmarshal([]byte(cached), &resp); err == nil {
			s.logger.WithField("key", cacheKey).Debug("Ответ советника взят из кеша")
			return &resp
		}
	}

	resp := s.geminiAdvice(ctx, loanType, req)
	if resp == nil {
		fallback := fallbackAdvice[loanType]
		resp = &model.AdviceResponse{
			OK:        true,
			Source:    "fallback",
			LoanType:  loanType,
			Title:     fallback.Title,
			Advice:    fallback.Advice,
			QuickTips: quickTips(loanType, req.LoanAmount, req.Income, req.CreditScore),
		}
	}

	if raw, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(raw), adviceCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Не удалось сохранить ответ советника в кеш")
		}
	}

	return resp
}

func (s *AdviceService) geminiAdvice(ctx context.Context, loanType string, req model.AdviceRequest) *model.AdviceResponse {
	if !s.gemini.Enabled() {
		return nil
	}

	prompt := fmt.Sprintf(`You are a friendly, expert financial advisor. Provide personalized advice for someone seeking a %s LOAN with:
- Loan Amount: %s %.0f
- Annual Income: %s %.0f
- Credit Score: %.0f
- Profile: %s

Return a JSON object with this EXACT structure (no markdown, just pure JSON):
{
    "title": "Your Personalized %s Loan Advice",
    "advice": [
        {
            "title": "Short actionable title",
            "description": "Specific, personalized advice in 1-2 sentences",
            "impact": "High/Medium/Low",
            "category": "Savings/Strategy/Preparation/Warning"
        }
    ],
    "quick_tips": [
        "Quick tip 1 specific to their situation",
        "Quick tip 2",
        "Quick tip 3"
    ],
    "estimated_savings": "Potential savings estimate based on the advice"
}

Provide 4-5 pieces of advice. Focus on:
1. How to get better interest rates based on their credit score
2. Specific savings strategies for their loan amount
3. Timing and preparation tips
4. Red flags to avoid
5. Ways to reduce total loan cost

Be specific and actionable. Tailor advice to their income level and credit score. If credit score is below 670, emphasize improvement strategies. If loan amount is high relative to income, include warnings.`,
		strings.ToUpper(loanType), req.Currency, req.LoanAmount, req.Currency, req.Income,
		req.CreditScore, req.Profile, titleCase(loanType))

	text, err := s.gemini.GenerateContent(ctx, prompt, 0.4, 0)
	if err != nil {
		s.logger.WithError(err).Warn("Gemini недоступен для smart advisor, откат на статические советы")
		return nil
	}

	var parsed struct {
		Title            string             `json:"title"`
		Advice           []model.AdviceItem `json:"advice"`
		QuickTips        []string           `json:"quick_tips"`
		EstimatedSavings string             `json:"estimated_savings"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &parsed); err != nil {
		s.logger.WithError(err).Warn("Gemini вернул нечитаемый JSON для smart advisor")
		return nil
	}
	if parsed.Title == "" || len(parsed.Advice) == 0 {
		return nil
	}

	return &model.AdviceResponse{
		OK:               true,
		Source:           "gemini",
		LoanType:         loanType,
		Title:            parsed.Title,
		Advice:           parsed.Advice,
		QuickTips:        parsed.QuickTips,
		EstimatedSavings: parsed.EstimatedSavings,
	}
}

// quickTips — быстрые подсказки по кредитному скорингу, грубому DTI
// (EMI ≈ сумма/60) и типу кредита
func quickTips(loanType string, loanAmount, income, creditScore float64) []string {
	var tips []string

	if creditScore < 670 {
		tips = append(tips, "🎯 Focus on improving your credit score to 670+ for better rates")
	} else if creditScore >= 740 {
		tips = append(tips, "✨ Your excellent credit qualifies you for the best available rates")
	}

	if income > 0 && loanAmount > 0 {
		monthlyIncome := income / 12
		estimatedEMI := loanAmount / 60 // грубая оценка при сроке 5 лет
		dti := estimatedEMI / monthlyIncome * 100
		if dti > 40 {
			tips = append(tips, fmt.Sprintf("⚠️ Your estimated DTI (%.0f%%) is high - consider a smaller loan or longer term", dti))
		} else if dti < 20 {
			tips = append(tips, "💪 Your debt-to-income ratio looks healthy for this loan amount")
		}
	}

	typeTips := map[string]string{
		"education":   "📚 Exhaust scholarships and grants before taking loans",
		"home":        "🏠 Get pre-approved to strengthen your negotiating position",
		"business":    "💼 Prepare detailed financial projections for better approval odds",
		"agriculture": "🌾 Document all revenue streams including seasonal variations",
		"personal":    "💳 Compare at least 3 lenders before deciding",
	}
	tip, ok := typeTips[loanType]
	if !ok {
		tip = typeTips["personal"]
	}
	tips = append(tips, tip)

	tips = append(tips, "📊 Use this calculator to compare different term lengths")
	return tips
}

// titleCase — замена deprecated strings.Title для одиночных слов
func titleCase(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
