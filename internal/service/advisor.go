package service

import (
	"fmt"

	"github.com/agraw-2305/CrediLume/internal/model"
)

const maxAdvisorItems = 6

// AdvisorNarrative — текстовый блок советника в ответе решения
type AdvisorNarrative struct {
	Summary          string
	Advice           []string
	Warnings         []string
	EMIMonthly       *string
	EMITotalInterest *string
	EMITotalCost     *string
	DTIPercent       *int
}

var loanTypeLabels = map[model.LoanType]string{
	model.LoanTypeEducation: "Education",
	model.LoanTypeHome:      "Home",
	model.LoanTypeBusiness:  "Business",
	model.LoanTypePersonal:  "Personal",
}

var profileLabels = map[model.ApplicantProfile]string{
	model.ProfileStudent:       "student",
	model.ProfileSalaried:      "salaried applicant",
	model.ProfileSelfEmployed:  "self-employed applicant",
	model.ProfileBusinessOwner: "business owner",
}

// Базовые советы и предупреждения по типу кредита; поверх них конвейер
// докладывает предупреждения по DTI/ставке/сроку/скорингу
var advisorTemplates = map[model.LoanType]struct {
	Advice   []string
	Warnings []string
}{
	model.LoanTypeEducation: {
		Advice: []string{
			"Check if moratorium is available during studies.",
			"Use the shortest tenure you can comfortably manage.",
		},
		Warnings: []string{
			"Interest can grow during moratorium; confirm the policy.",
			"Plan repayments around expected first-job income.",
		},
	},
	model.LoanTypeHome: {
		Advice: []string{
			"Keep an emergency fund alongside EMIs.",
			"If possible, prepay small chunks to cut interest.",
		},
		Warnings: []string{
			"Long tenures greatly increase total interest paid.",
			"Rate changes can raise EMIs on floating-rate loans.",
		},
	},
	model.LoanTypeBusiness: {
		Advice: []string{
			"Match EMI to business cash flow cycles.",
			"Keep a buffer for slow months and seasonal dips.",
		},
		Warnings: []string{
			"Irregular income can make fixed EMIs stressful.",
			"Avoid stretching tenure just to reduce EMI slightly.",
		},
	},
	model.LoanTypePersonal: {
		Advice: []string{
			"Use personal loans for needs, not lifestyle spends.",
			"Keep tenure short to reduce total interest.",
		},
		Warnings: []string{
			"Personal loans are usually higher interest (unsecured).",
			"Missing EMIs can hurt your credit score quickly.",
		},
	},
}

// BuildAdvisorNarrative собирает резюме, советы и предупреждения по типу
// кредита и рассчитанной нагрузке. Списки обрезаются до 6 позиций,
// приоритетные предупреждения вставляются первыми.
func BuildAdvisorNarrative(
	app model.LoanApplication,
	afford model.Affordability,
	finalPrediction int,
) AdvisorNarrative {
	template := advisorTemplates[app.LoanType]

	narrative := AdvisorNarrative{
		Advice:   append([]string(nil), template.Advice...),
		Warnings: append([]string(nil), template.Warnings...),
	}

	if afford.EMI == nil {
		narrative.Summary = fmt.Sprintf(
			"For a %s loan, enter amount/term to estimate EMI.", loanTypeLabels[app.LoanType])
	} else {
		narrative.Summary = fmt.Sprintf(
			"For a %s loan as a %s, your estimated EMI is %s per month at %.1f%% APR.",
			loanTypeLabels[app.LoanType], profileLabels[app.Profile],
			FormatINR(afford.EMI.Monthly), app.InterestRate)

		monthly := FormatINR(afford.EMI.Monthly)
		interest := FormatINR(afford.EMI.TotalInterest)
		total := FormatINR(afford.EMI.TotalCost)
		narrative.EMIMonthly = &monthly
		narrative.EMITotalInterest = &interest
		narrative.EMITotalCost = &total
	}

	if afford.DTI != nil && isFinite(*afford.DTI) {
		switch dti := *afford.DTI; {
		case dti >= 0.50:
			narrative.Warnings = prepend(narrative.Warnings, "EMI burden looks very high vs monthly income.")
		case dti >= 0.40:
			narrative.Warnings = prepend(narrative.Warnings, "EMI burden looks high; keep a bigger buffer.")
		case dti >= 0.30:
			narrative.Warnings = prepend(narrative.Warnings, "EMI burden is moderate; avoid new debt.")
		}
	}

	if app.InterestRate >= 18 {
		narrative.Warnings = append(narrative.Warnings, "APR is high; compare offers and reduce tenure.")
	}
	if app.LoanTermMonths >= 240 {
		narrative.Warnings = append(narrative.Warnings, "Long tenure increases total interest significantly.")
	}
	if app.CibilScore < 650 {
		narrative.Warnings = append(narrative.Warnings, "Low CIBIL can mean rejection or higher rates.")
	}

	if app.ExistingEMI > 0 {
		narrative.Advice = append(narrative.Advice, "Keep total EMIs (existing + new) within a comfortable range.")
	}

	if finalPrediction == 1 {
		narrative.Advice = append(narrative.Advice, "Stay consistent: on-time EMIs improve your long-term profile.")
	} else {
		narrative.Advice = append(narrative.Advice, "If rejected, try lower amount/tenure or add a co-applicant.")
	}

	narrative.Advice = truncate(narrative.Advice, maxAdvisorItems)
	narrative.Warnings = truncate(narrative.Warnings, maxAdvisorItems)
	narrative.DTIPercent = DTIPercent(afford.DTI)

	return narrative
}

func truncate(list []string, limit int) []string {
	if len(list) > limit {
		return list[:limit]
	}
	return list
}
