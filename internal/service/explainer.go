package service

import (
	"math"

	"github.com/agraw-2305/CrediLume/internal/model"
)

// Пороговые причины отказа; тексты попадают в ответ API как есть
const (
	reasonLowCibil     = "Low CIBIL score"
	reasonHighLoanLoad = "Loan amount is high compared to income"
	reasonLongTenure   = "Very long loan tenure"
)

// RuleBasedExplanation строит объяснение по порогам. Правила независимы
// и не взаимоисключающие: каждое сработавшее добавляет свою строку.
func RuleBasedExplanation(app model.LoanApplication) model.Explanation {
	var expl model.Explanation

	if app.CibilScore < 650 {
		expl.Reasons = append(expl.Reasons, reasonLowCibil)
		expl.Suggestions = append(expl.Suggestions, "Pay EMIs and credit card bills on time for 3–6 months")
		expl.CibilInfo = append(expl.CibilInfo, "CIBIL below 650 is considered high risk by most banks")
	}

	if app.LoanAmount > math.Max(app.IncomeAnnum, 1.0)*0.6 {
		expl.Reasons = append(expl.Reasons, reasonHighLoanLoad)
		expl.Suggestions = append(expl.Suggestions, "Reduce loan amount or add a co-applicant")
	}

	if app.LoanTermMonths > 240 {
		expl.Reasons = append(expl.Reasons, reasonLongTenure)
		expl.Suggestions = append(expl.Suggestions, "Opt for a shorter loan tenure if possible")
	}

	if len(expl.CibilInfo) == 0 {
		expl.CibilInfo = append(expl.CibilInfo, "Higher CIBIL scores generally increase approval odds")
	}

	return expl
}

// HealthScore — рейтинг финансового здоровья 0..100:
// 60% веса у кредитного скоринга, 40% у отношения суммы кредита к доходу
func HealthScore(app model.LoanApplication) int {
	incomeSafe := math.Max(app.IncomeAnnum, 1.0)
	loanToIncome := app.LoanAmount / incomeSafe

	score := int((app.CibilScore/900.0)*60 + math.Max(0, 1-loanToIncome)*40)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
