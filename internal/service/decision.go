package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/agraw-2305/CrediLume/internal/classifier"
	"github.com/agraw-2305/CrediLume/internal/model"
)

// DecisionService — конвейер решения по заявке: нормализация → скоринг →
// расчет нагрузки → объяснение → guardrail → обогащение → советник
type DecisionService struct {
	classifier *classifier.Model
	gemini     *GeminiClient
	policy     GuardrailPolicy
	logger     *logrus.Logger
}

func NewDecisionService(
	classifier *classifier.Model,
	gemini *GeminiClient,
	policy GuardrailPolicy,
	logger *logrus.Logger,
) *DecisionService {
	return &DecisionService{
		classifier: classifier,
		gemini:     gemini,
		policy:     policy,
		logger:     logger,
	}
}

// EnrichmentOutcome — явный итог обогащения: какой источник попал в ответ
// и почему. Никогда не превращается в ошибку запроса.
type EnrichmentOutcome struct {
	Source string // gemini или fallback
	Reason string
}

// Evaluate прогоняет заявку через весь конвейер и собирает ответ API
func (s *DecisionService) Evaluate(ctx context.Context, form map[string]string) (*model.DecisionResponse, error) {
	app, err := NormalizeApplication(form)
	if err != nil {
		return nil, err
	}

	modelPrediction, modelProbability, err := s.classifier.Predict(app)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"model_prediction":  modelPrediction,
		"model_probability": modelProbability,
		"loan_type":         app.LoanType,
	}).Debug("Скоринг заявки завершен")

	afford := ComputeAffordability(app)
	healthScore := HealthScore(app)
	expl := RuleBasedExplanation(app)

	decision := s.policy.Apply(app, afford, modelPrediction, modelProbability, &expl)
	if decision.GuardrailApplied {
		s.logger.WithFields(logrus.Fields{
			"final_probability": decision.FinalProbability,
			"note":              decision.GuardrailNote,
		}).Info("Guardrail переопределил отказ модели")
	}

	outcome := s.enrichExplanation(ctx, app, decision, &expl)
	if outcome.Source == "fallback" && outcome.Reason != "disabled" {
		s.logger.WithField("reason", outcome.Reason).Warn("Обогащение объяснения недоступно, используется rule-based вариант")
	}

	narrative := BuildAdvisorNarrative(app, afford, decision.FinalPrediction)

	return s.buildResponse(app, decision, expl, narrative, healthScore), nil
}

// enrichmentPayload — структурированный контекст для промпта Gemini
type enrichmentPayload struct {
	Inputs struct {
		IncomeAnnum    float64 `json:"income_annum"`
		LoanAmount     float64 `json:"loan_amount"`
		LoanTermMonths float64 `json:"loan_term_months"`
		CibilScore     float64 `json:"cibil_score"`
		LoanToIncome   float64 `json:"loan_to_income"`
	} `json:"inputs"`
	ML struct {
		Prediction          int     `json:"prediction"`
		ApprovalProbability float64 `json:"approval_probability"`
	} `json:"ml"`
	Hybrid struct {
		FinalPrediction  int     `json:"final_prediction"`
		FinalProbability float64 `json:"final_probability"`
		GuardrailApplied bool    `json:"guardrail_applied"`
		GuardrailNote    string  `json:"guardrail_note,omitempty"`
	} `json:"hybrid"`
}

// enrichExplanation пытается переписать reasons/suggestions/cibil_info через
// Gemini. Решение и вероятность компонент не трогает; любой сбой означает
// тихий откат на уже посчитанные rule-based тексты.
func (s *DecisionService) enrichExplanation(
	ctx context.Context,
	app model.LoanApplication,
	decision model.Decision,
	expl *model.Explanation,
) EnrichmentOutcome {
	if !s.gemini.Enabled() {
		return EnrichmentOutcome{Source: "fallback", Reason: "disabled"}
	}

	var payload enrichmentPayload
	payload.Inputs.IncomeAnnum = app.IncomeAnnum
	payload.Inputs.LoanAmount = app.LoanAmount
	payload.Inputs.LoanTermMonths = app.LoanTermMonths
	payload.Inputs.CibilScore = app.CibilScore
	payload.Inputs.LoanToIncome = math.Round(app.LoanAmount/math.Max(app.IncomeAnnum, 1.0)*10000) / 10000
	payload.ML.Prediction = decision.ModelPrediction
	payload.ML.ApprovalProbability = decision.ModelProbability
	payload.Hybrid.FinalPrediction = decision.FinalPrediction
	payload.Hybrid.FinalProbability = decision.FinalProbability
	payload.Hybrid.GuardrailApplied = decision.GuardrailApplied
	payload.Hybrid.GuardrailNote = decision.GuardrailNote

	contextJSON, err := json.Marshal(payload)
	if err != nil {
		return EnrichmentOutcome{Source: "fallback", Reason: err.Error()}
	}

	prompt := "Return STRICT JSON with keys: reasons, suggestions, cibil_info. " +
		"Each value is an array of short strings (<= 14 words). " +
		"Be concrete and explainable.\n\n" +
		"Context: " + string(contextJSON)

	text, err := s.gemini.GenerateContent(ctx, prompt, 0.2, 300)
	if err != nil {
		return EnrichmentOutcome{Source: "fallback", Reason: err.Error()}
	}

	jsonText, ok := extractJSONObject(text)
	if !ok {
		return EnrichmentOutcome{Source: "fallback", Reason: "no JSON object in response"}
	}

	var parsed struct {
		Reasons     []string `json:"reasons"`
		Suggestions []string `json:"suggestions"`
		CibilInfo   []string `json:"cibil_info"`
	}
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return EnrichmentOutcome{Source: "fallback", Reason: err.Error()}
	}

	// Подменяем только те списки, которые сервис реально вернул
	if parsed.Reasons != nil {
		expl.Reasons = parsed.Reasons
	}
	if parsed.Suggestions != nil {
		expl.Suggestions = parsed.Suggestions
	}
	if parsed.CibilInfo != nil {
		expl.CibilInfo = parsed.CibilInfo
	}

	return EnrichmentOutcome{Source: "gemini"}
}

func (s *DecisionService) buildResponse(
	app model.LoanApplication,
	decision model.Decision,
	expl model.Explanation,
	narrative AdvisorNarrative,
	healthScore int,
) *model.DecisionResponse {
	result := "❌ Loan Likely Rejected"
	if decision.FinalPrediction == 1 {
		result = "✅ Loan Likely Approved"
	}
	suffix := ""
	if decision.GuardrailApplied {
		suffix = " (Hybrid)"
	}

	var note *string
	if decision.GuardrailNote != "" {
		note = &decision.GuardrailNote
	}

	return &model.DecisionResponse{
		OK: true,
		PredictionText: fmt.Sprintf("%s%s (Approval Probability: %.2f%%)",
			result, suffix, decision.FinalProbability*100),
		HealthScore:     healthScore,
		Reasons:         emptyIfNil(expl.Reasons),
		Suggestions:     emptyIfNil(expl.Suggestions),
		CibilInfo:       emptyIfNil(expl.CibilInfo),
		CibilScore:      app.CibilScore,
		GuardrailNote:   note,
		AdvisorSummary:  narrative.Summary,
		AdvisorAdvice:   emptyIfNil(narrative.Advice),
		AdvisorWarnings: emptyIfNil(narrative.Warnings),
		DTIPercent:      narrative.DTIPercent,

		EMIMonthly:       narrative.EMIMonthly,
		EMITotalInterest: narrative.EMITotalInterest,
		EMITotalCost:     narrative.EMITotalCost,

		IncomeAnnum:   app.IncomeAnnum,
		LoanAmount:    app.LoanAmount,
		LoanTerm:      app.LoanTermMonths,
		LoanTermValue: app.TermValueDisplay,
		TermUnit:      app.TermUnitDisplay,
		InterestRate:  app.InterestRate,
		LoanType:      string(app.LoanType),
		Profile:       string(app.Profile),
		ExistingEMI:   app.ExistingEMI,
	}
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
