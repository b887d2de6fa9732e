package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agraw-2305/CrediLume/internal/model"
	"github.com/agraw-2305/CrediLume/internal/repository"
)

func adviceRequest(loanType string) model.AdviceRequest {
	return model.AdviceRequest{
		LoanType:    loanType,
		LoanAmount:  200000,
		Income:      600000,
		CreditScore: 750,
		Currency:    "USD",
		Profile:     "salaried",
	}
}

func TestGetAdvice_FallbackWhenGeminiDisabled(t *testing.T) {
	svc := NewAdviceService(disabledGemini(), repository.NewMemoryCache(), testLogger())

	resp := svc.GetAdvice(context.Background(), adviceRequest("education"))

	assert.True(t, resp.OK)
	assert.Equal(t, "fallback", resp.Source)
	assert.Equal(t, "education", resp.LoanType)
	assert.Equal(t, "Education Loan Financial Tips", resp.Title)
	require.Len(t, resp.Advice, 4)
	assert.Equal(t, "Compare Interest Rates", resp.Advice[0].Title)
	assert.NotEmpty(t, resp.QuickTips)
}

func TestGetAdvice_UnknownTypeFallsBackToPersonal(t *testing.T) {
	svc := NewAdviceService(disabledGemini(), repository.NewMemoryCache(), testLogger())

	resp := svc.GetAdvice(context.Background(), adviceRequest("yacht"))

	assert.Equal(t, "personal", resp.LoanType)
	assert.Equal(t, "Personal Loan Financial Tips", resp.Title)
}

func TestGetAdvice_AgricultureAvailable(t *testing.T) {
	svc := NewAdviceService(disabledGemini(), repository.NewMemoryCache(), testLogger())

	resp := svc.GetAdvice(context.Background(), adviceRequest("agriculture"))

	assert.Equal(t, "agriculture", resp.LoanType)
	assert.Equal(t, "Agricultural Loan Financial Tips", resp.Title)
}

func TestGetAdvice_GeminiSource(t *testing.T) {
	stub := geminiStub(t, http.StatusOK, "```json\n"+
		`{"title": "Your Personalized Education Loan Advice", "advice": [{"title": "Refinance", "description": "Refinance after graduation.", "impact": "High", "category": "Strategy"}], "quick_tips": ["Tip one"], "estimated_savings": "$2,000 over the loan term"}`+
		"\n```")
	defer stub.Close()

	svc := NewAdviceService(geminiAt(stub.URL), repository.NewMemoryCache(), testLogger())

	resp := svc.GetAdvice(context.Background(), adviceRequest("education"))

	assert.Equal(t, "gemini", resp.Source)
	assert.Equal(t, "Your Personalized Education Loan Advice", resp.Title)
	require.Len(t, resp.Advice, 1)
	assert.Equal(t, "$2,000 over the loan term", resp.EstimatedSavings)
}

func TestGetAdvice_GeminiGarbageFallsBack(t *testing.T) {
	stub := geminiStub(t, http.StatusOK, "sorry, cannot help with that")
	defer stub.Close()

	svc := NewAdviceService(geminiAt(stub.URL), repository.NewMemoryCache(), testLogger())

	resp := svc.GetAdvice(context.Background(), adviceRequest("home"))

	assert.Equal(t, "fallback", resp.Source)
	assert.Equal(t, "Home Loan Financial Tips", resp.Title)
}

func TestGetAdvice_CacheHit(t *testing.T) {
	cache := repository.NewMemoryCache()
	svc := NewAdviceService(disabledGemini(), cache, testLogger())

	first := svc.GetAdvice(context.Background(), adviceRequest("business"))
	second := svc.GetAdvice(context.Background(), adviceRequest("business"))

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Source, second.Source)
	assert.Equal(t, first.Advice, second.Advice)
}

func TestQuickTips_Banding(t *testing.T) {
	// Низкий скоринг + высокая нагрузка (EMI ≈ сумма/60 против дохода)
	tips := quickTips("home", 600000, 120000, 640)
	assert.Contains(t, tips[0], "improving your credit score")
	joined := ""
	for _, tip := range tips {
		joined += tip + "\n"
	}
	assert.Contains(t, joined, "DTI")
	assert.Contains(t, joined, "pre-approved")

	// Отличный скоринг + здоровая нагрузка
	tips = quickTips("personal", 100000, 600000, 760)
	assert.Contains(t, tips[0], "excellent credit")
	assert.Contains(t, tips[1], "debt-to-income ratio looks healthy")

	// Последняя подсказка всегда про калькулятор
	assert.Contains(t, tips[len(tips)-1], "calculator")
}
