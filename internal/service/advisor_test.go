package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agraw-2305/CrediLume/internal/model"
)

func TestAdvisor_SummaryWithEMI(t *testing.T) {
	app := strongApplication()
	afford := ComputeAffordability(app)

	narrative := BuildAdvisorNarrative(app, afford, 1)

	assert.Equal(t,
		"For a Personal loan as a salaried applicant, your estimated EMI is ₹6,453.44 per month at 10.0% APR.",
		narrative.Summary)
	require.NotNil(t, narrative.EMIMonthly)
	assert.Equal(t, "₹6,453.44", *narrative.EMIMonthly)
	require.NotNil(t, narrative.EMITotalInterest)
	require.NotNil(t, narrative.EMITotalCost)
	require.NotNil(t, narrative.DTIPercent)
	assert.Equal(t, 13, *narrative.DTIPercent)
}

func TestAdvisor_SummaryWithoutEMI(t *testing.T) {
	app := strongApplication()
	app.LoanAmount = 0

	narrative := BuildAdvisorNarrative(app, ComputeAffordability(app), 0)

	assert.Equal(t, "For a Personal loan, enter amount/term to estimate EMI.", narrative.Summary)
	assert.Nil(t, narrative.EMIMonthly)
	assert.Nil(t, narrative.DTIPercent)
}

func TestAdvisor_DTIWarningTiers(t *testing.T) {
	cases := []struct {
		name    string
		dti     float64
		warning string
	}{
		{"very high", 0.55, "EMI burden looks very high vs monthly income."},
		{"high", 0.42, "EMI burden looks high; keep a bigger buffer."},
		{"moderate", 0.33, "EMI burden is moderate; avoid new debt."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := strongApplication()
			afford := ComputeAffordability(app)
			dti := tc.dti
			afford.DTI = &dti

			narrative := BuildAdvisorNarrative(app, afford, 1)

			// Предупреждение по нагрузке всегда первое
			require.NotEmpty(t, narrative.Warnings)
			assert.Equal(t, tc.warning, narrative.Warnings[0])
		})
	}
}

func TestAdvisor_NoDTIWarningBelowThreshold(t *testing.T) {
	app := strongApplication()
	narrative := BuildAdvisorNarrative(app, ComputeAffordability(app), 1)

	for _, w := range narrative.Warnings {
		assert.NotContains(t, w, "EMI burden")
	}
}

func TestAdvisor_ListsCapped(t *testing.T) {
	// Все триггеры разом: базовые 2 + DTI + APR + срок + скоринг
	app := strongApplication()
	app.InterestRate = 22
	app.LoanTermMonths = 300
	app.CibilScore = 600
	app.ExistingEMI = 15000

	narrative := BuildAdvisorNarrative(app, ComputeAffordability(app), 0)

	assert.LessOrEqual(t, len(narrative.Advice), maxAdvisorItems)
	assert.LessOrEqual(t, len(narrative.Warnings), maxAdvisorItems)
}

func TestAdvisor_ClosingAdviceByPrediction(t *testing.T) {
	app := strongApplication()
	afford := ComputeAffordability(app)

	approved := BuildAdvisorNarrative(app, afford, 1)
	assert.Contains(t, approved.Advice, "Stay consistent: on-time EMIs improve your long-term profile.")

	rejected := BuildAdvisorNarrative(app, afford, 0)
	assert.Contains(t, rejected.Advice, "If rejected, try lower amount/tenure or add a co-applicant.")
}

func TestAdvisor_TemplatesPerLoanType(t *testing.T) {
	app := strongApplication()
	app.LoanType = model.LoanTypeHome
	app.Profile = model.ProfileSelfEmployed

	narrative := BuildAdvisorNarrative(app, ComputeAffordability(app), 1)

	assert.Contains(t, narrative.Summary, "Home loan as a self-employed applicant")
	assert.Contains(t, narrative.Advice, "Keep an emergency fund alongside EMIs.")
	assert.Contains(t, narrative.Warnings, "Long tenures greatly increase total interest paid.")
}
