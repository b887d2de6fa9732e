package service

import (
	"fmt"
	"math"

	"github.com/agraw-2305/CrediLume/internal/model"
)

// GuardrailPolicy — продуктовые константы гибридного решения. Значения —
// политика, а не вывод из данных, поэтому они именованы и переопределяемы.
type GuardrailPolicy struct {
	MaxTermMonths   float64 // разумный срок кредита
	DTIAcceptable   float64 // приемлемая долговая нагрузка
	DTIStrong       float64 // сильный профиль по нагрузке
	MinCibil        float64 // минимальный скоринг для override
	MinCibilStudent float64 // послабление для студентов с education-кредитом
	FloorAcceptable float64 // нижняя граница вероятности для приемлемого профиля
	FloorStrong     float64 // нижняя граница вероятности для сильного профиля
}

func DefaultGuardrailPolicy() GuardrailPolicy {
	return GuardrailPolicy{
		MaxTermMonths:   360,
		DTIAcceptable:   0.35,
		DTIStrong:       0.25,
		MinCibil:        700,
		MinCibilStudent: 650,
		FloorAcceptable: 0.70,
		FloorStrong:     0.80,
	}
}

// Apply накладывает guardrail-правила поверх ответа модели. Отказ модели
// может быть переопределен в одобрение для заведомо сильных профилей;
// одобрение никогда не понижается: ложный отказ стоит бизнесу дороже,
// чем редкое ложное одобрение. Вероятность при override поднимается до
// ярусного пола, но никогда не опускается ниже модельной.
func (p GuardrailPolicy) Apply(
	app model.LoanApplication,
	afford model.Affordability,
	modelPrediction int,
	modelProbability float64,
	expl *model.Explanation,
) model.Decision {
	decision := model.Decision{
		ModelPrediction:  modelPrediction,
		ModelProbability: modelProbability,
		FinalPrediction:  modelPrediction,
		FinalProbability: modelProbability,
	}

	reasonableTerm := app.LoanTermMonths <= p.MaxTermMonths

	// EMI-нагрузка (DTI) — более реалистичный сигнал платежеспособности,
	// чем отношение суммы кредита к доходу; nil = неизвестно = не ok
	dtiOK := afford.DTI != nil && isFinite(*afford.DTI) && *afford.DTI <= p.DTIAcceptable
	dtiStrong := afford.DTI != nil && isFinite(*afford.DTI) && *afford.DTI <= p.DTIStrong

	creditOK := app.CibilScore >= p.MinCibil
	if app.LoanType == model.LoanTypeEducation && app.Profile == model.ProfileStudent {
		creditOK = app.CibilScore >= p.MinCibilStudent
	}

	strongProfile := reasonableTerm && dtiStrong && creditOK
	acceptableProfile := reasonableTerm && dtiOK && creditOK

	if modelPrediction != 0 || (!strongProfile && !acceptableProfile) {
		return decision
	}

	decision.GuardrailApplied = true
	decision.GuardrailNote = "Hybrid guardrail: affordability (DTI) override"
	decision.FinalPrediction = 1

	floor := p.FloorAcceptable
	if strongProfile {
		floor = p.FloorStrong
	}
	decision.FinalProbability = math.Max(modelProbability, floor)

	if creditOK {
		expl.Reasons = removeReason(expl.Reasons, reasonLowCibil)
	}
	if afford.DTI != nil && isFinite(*afford.DTI) {
		expl.Reasons = prepend(expl.Reasons, fmt.Sprintf(
			"Affordable EMI burden (~%d%% of monthly income)", int(math.Round(*afford.DTI*100))))
	} else {
		expl.Reasons = prepend(expl.Reasons, "Affordable EMI burden based on inputs")
	}
	expl.Suggestions = prepend(expl.Suggestions, "Keep EMIs within comfort and maintain an emergency buffer")

	return decision
}

func prepend(list []string, value string) []string {
	return append([]string{value}, list...)
}

func removeReason(reasons []string, target string) []string {
	filtered := reasons[:0]
	for _, r := range reasons {
		if r != target {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
