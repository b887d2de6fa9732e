package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agraw-2305/CrediLume/internal/model"
)

func chatRequest(message string) model.ChatRequest {
	return model.ChatRequest{
		Message: message,
		Context: model.ChatContext{
			LoanAmount:   100000,
			TenureMonths: 120,
			InterestRate: 10,
			Income:       600000,
			CreditScore:  720,
			Currency:     "USD",
			LoanType:     "personal",
		},
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	svc := NewChatService(disabledGemini(), testLogger())

	_, err := svc.Chat(context.Background(), chatRequest("   "))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "message", verr.Field)
}

func TestResolveChatContext_Defaults(t *testing.T) {
	cc := resolveChatContext(model.ChatContext{LoanAmount: 100000})

	assert.Equal(t, 120, cc.TenureMonths)
	assert.Equal(t, 10.0, cc.InterestRate)
	assert.Equal(t, 700.0, cc.CreditScore)
	assert.Equal(t, "USD", cc.Currency)
	assert.Equal(t, "personal", cc.LoanType)
	assert.Equal(t, "not specified", cc.Gender)

	// EMI для 100000 на 120 мес под 10% годовых
	assert.InDelta(t, 1321.51, cc.EMI, 0.01)
	assert.InDelta(t, 58580.88, cc.TotalInterest, 0.01)
}

func TestResolveChatContext_NoAmountNoEMI(t *testing.T) {
	cc := resolveChatContext(model.ChatContext{})

	assert.Equal(t, 0.0, cc.EMI)
	assert.Equal(t, 0.0, cc.TotalInterest)
}

func TestChat_EMIKeywordAnswer(t *testing.T) {
	svc := NewChatService(disabledGemini(), testLogger())

	answer, err := svc.Chat(context.Background(), chatRequest("How is my EMI calculated?"))
	require.NoError(t, err)

	assert.Contains(t, answer, "How EMI is Calculated")
	assert.Contains(t, answer, "USD 100000")
	assert.Contains(t, answer, "USD 1321.51")
}

func TestChat_AgeEligibility(t *testing.T) {
	svc := NewChatService(disabledGemini(), testLogger())

	req := chatRequest("Am I eligible at my age?")
	req.Context.Age = 25
	req.Context.TenureMonths = 480 // 40 лет: 25 + 40 = 65, ровно на границе

	answer, err := svc.Chat(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, answer, "Age Eligibility Check for Personal Loan")
	assert.Contains(t, answer, "Current Age: 25 years")
	assert.Contains(t, answer, "✅ **Eligible!**")

	// За границей — частичная пригодность
	req.Context.TenureMonths = 540 // 45 лет: заканчивается в 70 > 65
	answer, err = svc.Chat(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, answer, "Partial Eligibility")
}

func TestChat_AgeBounds(t *testing.T) {
	svc := NewChatService(disabledGemini(), testLogger())

	req := chatRequest("age eligibility")
	req.Context.LoanType = "education"
	req.Context.Age = 40 // выше максимума 35 для education

	answer, err := svc.Chat(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, answer, "Not Eligible")
	assert.Contains(t, answer, "above maximum age (35)")
}

func TestChat_KeywordRouting(t *testing.T) {
	svc := NewChatService(disabledGemini(), testLogger())

	cases := []struct {
		message  string
		fragment string
	}{
		{"how do I reduce my interest", "Ways to Reduce Your Interest"},
		{"shorter or longer tenure?", "Tenure Trade-offs"},
		{"should I prepay", "Prepayment Strategy"},
		{"can i afford this", "Affordability Analysis"},
		{"fixed or floating rate", "Fixed vs Floating Interest Rates"},
		{"what about my cibil", "Credit Score Impact"},
	}

	for _, tc := range cases {
		t.Run(tc.fragment, func(t *testing.T) {
			answer, err := svc.Chat(context.Background(), chatRequest(tc.message))
			require.NoError(t, err)
			assert.Contains(t, answer, tc.fragment)
		})
	}
}

func TestChat_DefaultMenu(t *testing.T) {
	svc := NewChatService(disabledGemini(), testLogger())

	answer, err := svc.Chat(context.Background(), chatRequest("hello there"))
	require.NoError(t, err)

	assert.Contains(t, answer, "I can help you with")
	assert.Contains(t, answer, "USD 1321.51/month")
}

func TestChat_AffordabilityNumbers(t *testing.T) {
	svc := NewChatService(disabledGemini(), testLogger())

	answer, err := svc.Chat(context.Background(), chatRequest("how much can i afford"))
	require.NoError(t, err)

	// 600000/12 = 50000 в месяц; EMI 1321.51 → 2.6%
	assert.Contains(t, answer, "Monthly Income: USD 50000")
	assert.Contains(t, answer, "EMI-to-Income Ratio: **2.6%**")
	assert.Contains(t, answer, "within healthy limits")
}

func TestChat_GeminiAnswerPreferred(t *testing.T) {
	stub := geminiStub(t, http.StatusOK, "Here is tailored advice about your loan.")
	defer stub.Close()

	svc := NewChatService(geminiAt(stub.URL), testLogger())

	answer, err := svc.Chat(context.Background(), chatRequest("anything"))
	require.NoError(t, err)
	assert.Equal(t, "Here is tailored advice about your loan.", answer)
}

func TestChat_GeminiFailureFallsBack(t *testing.T) {
	stub := geminiStub(t, http.StatusInternalServerError, "")
	defer stub.Close()

	svc := NewChatService(geminiAt(stub.URL), testLogger())

	answer, err := svc.Chat(context.Background(), chatRequest("how is emi calculated"))
	require.NoError(t, err)
	assert.Contains(t, answer, "How EMI is Calculated")
}
