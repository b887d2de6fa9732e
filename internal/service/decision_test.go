package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agraw-2305/CrediLume/internal/classifier"
	"github.com/agraw-2305/CrediLume/internal/config"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// testClassifier пишет временный артефакт с единственным значимым признаком
// (cibil_score) и заданным intercept, чтобы управлять решением модели
func testClassifier(t *testing.T, intercept float64) *classifier.Model {
	t.Helper()

	artifact := map[string]any{
		"feature_names": []string{"income_annum", "loan_amount", "loan_term", "cibil_score"},
		"coefficients":  []float64{0, 0, 0, 0.01},
		"intercept":     intercept,
	}
	raw, err := json.Marshal(artifact)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "loan_model.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	return classifier.New(path, testLogger())
}

func disabledGemini() *GeminiClient {
	return NewGeminiClient(&config.Config{
		GeminiModel:   "gemini-1.5-flash",
		GeminiBaseURL: "http://127.0.0.1:0",
		GeminiTimeout: time.Second,
	}, testLogger())
}

func geminiAt(base string) *GeminiClient {
	return NewGeminiClient(&config.Config{
		GeminiAPIKey:  "test-key",
		GeminiModel:   "gemini-1.5-flash",
		GeminiBaseURL: base,
		GeminiTimeout: 2 * time.Second,
	}, testLogger())
}

func geminiStub(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestEvaluate_ModelApproval(t *testing.T) {
	// intercept -6 + 750*0.01 = 1.5 → вероятность ≈ 0.8176, одобрение модели
	svc := NewDecisionService(testClassifier(t, -6), disabledGemini(), DefaultGuardrailPolicy(), testLogger())

	resp, err := svc.Evaluate(context.Background(), validForm())
	require.NoError(t, err)

	assert.True(t, resp.OK)
	assert.Contains(t, resp.PredictionText, "✅ Loan Likely Approved")
	assert.NotContains(t, resp.PredictionText, "(Hybrid)")
	assert.Contains(t, resp.PredictionText, "Approval Probability: 81.76%")
	assert.Nil(t, resp.GuardrailNote)
	assert.Equal(t, 76, resp.HealthScore)

	// Эхо входа обязано присутствовать в ответе
	assert.Equal(t, 600000.0, resp.IncomeAnnum)
	assert.Equal(t, 200000.0, resp.LoanAmount)
	assert.Equal(t, 36.0, resp.LoanTerm)
	assert.Equal(t, "personal", resp.LoanType)
	assert.Equal(t, "salaried", resp.Profile)

	require.NotNil(t, resp.EMIMonthly)
	assert.Equal(t, "₹6,453.44", *resp.EMIMonthly)
	require.NotNil(t, resp.DTIPercent)
	assert.Equal(t, 13, *resp.DTIPercent)
}

func TestEvaluate_GuardrailOverride(t *testing.T) {
	// intercept -10 → score -2.5, отказ модели; профиль сильный → override
	svc := NewDecisionService(testClassifier(t, -10), disabledGemini(), DefaultGuardrailPolicy(), testLogger())

	resp, err := svc.Evaluate(context.Background(), validForm())
	require.NoError(t, err)

	assert.Contains(t, resp.PredictionText, "✅ Loan Likely Approved (Hybrid)")
	assert.Contains(t, resp.PredictionText, "Approval Probability: 80.00%")
	require.NotNil(t, resp.GuardrailNote)
	assert.Equal(t, "Hybrid guardrail: affordability (DTI) override", *resp.GuardrailNote)
	require.NotEmpty(t, resp.Reasons)
	assert.Contains(t, resp.Reasons[0], "Affordable EMI burden")
}

func TestEvaluate_ValidationError(t *testing.T) {
	svc := NewDecisionService(testClassifier(t, -6), disabledGemini(), DefaultGuardrailPolicy(), testLogger())

	form := validForm()
	form["cibil_score"] = "not-a-number"

	_, err := svc.Evaluate(context.Background(), form)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cibil_score", verr.Field)
}

func TestEvaluate_ArtifactError(t *testing.T) {
	missing := classifier.New(filepath.Join(t.TempDir(), "no_such_model.json"), testLogger())
	svc := NewDecisionService(missing, disabledGemini(), DefaultGuardrailPolicy(), testLogger())

	_, err := svc.Evaluate(context.Background(), validForm())

	var aerr *classifier.ArtifactError
	require.ErrorAs(t, err, &aerr)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEvaluate_EnrichmentReplacesTexts(t *testing.T) {
	// Gemini оборачивает JSON пояснительным текстом — парсер должен вырезать объект
	stub := geminiStub(t, http.StatusOK,
		"Sure, here you go: {\"reasons\": [\"Strong income coverage\"], \"suggestions\": [\"Maintain low utilization\"], \"cibil_info\": [\"Score supports approval\"]} hope it helps")
	defer stub.Close()

	svc := NewDecisionService(testClassifier(t, -6), geminiAt(stub.URL), DefaultGuardrailPolicy(), testLogger())

	resp, err := svc.Evaluate(context.Background(), validForm())
	require.NoError(t, err)

	assert.Equal(t, []string{"Strong income coverage"}, resp.Reasons)
	assert.Equal(t, []string{"Maintain low utilization"}, resp.Suggestions)
	assert.Equal(t, []string{"Score supports approval"}, resp.CibilInfo)
}

func TestEvaluate_EnrichmentFailureFallsBack(t *testing.T) {
	stub := geminiStub(t, http.StatusInternalServerError, "")
	defer stub.Close()

	svc := NewDecisionService(testClassifier(t, -6), geminiAt(stub.URL), DefaultGuardrailPolicy(), testLogger())

	resp, err := svc.Evaluate(context.Background(), validForm())
	require.NoError(t, err)

	// Rule-based объяснение остается: сбой обогащения не виден клиенту
	assert.True(t, resp.OK)
	assert.NotEmpty(t, resp.CibilInfo)
}

func TestEvaluate_EnrichmentGarbageFallsBack(t *testing.T) {
	stub := geminiStub(t, http.StatusOK, "no json here at all")
	defer stub.Close()

	svc := NewDecisionService(testClassifier(t, -6), geminiAt(stub.URL), DefaultGuardrailPolicy(), testLogger())

	resp, err := svc.Evaluate(context.Background(), validForm())
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.NotEmpty(t, resp.CibilInfo)
}
