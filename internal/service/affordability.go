package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/agraw-2305/CrediLume/internal/model"
)

// ComputeEMI рассчитывает аннуитетный платеж, переплату и полную стоимость.
// Возвращает nil, когда входные данные не дают осмысленного расчета
// (неположительная сумма или срок, отрицательная ставка, не-числа).
func ComputeEMI(principal, months, apr float64) *model.EMISchedule {
	if !isFinite(principal) || principal <= 0 {
		return nil
	}
	if !isFinite(months) || months <= 0 {
		return nil
	}
	if !isFinite(apr) || apr < 0 {
		return nil
	}

	n := int(math.Round(months))
	if n <= 0 {
		return nil
	}

	r := (apr / 100.0) / 12.0
	var payment float64
	if r == 0 {
		// Нулевая ставка: равные доли, иначе деление на ноль в аннуитетной формуле
		payment = principal / float64(n)
	} else {
		pow := math.Pow(1+r, float64(n))
		payment = principal * (r * pow) / (pow - 1)
	}

	totalCost := payment * float64(n)
	// max(0, ...) страхует от крошечного минуса из-за плавающей точки
	totalInterest := math.Max(0, totalCost-principal)

	return &model.EMISchedule{
		Monthly:       payment,
		TotalInterest: totalInterest,
		TotalCost:     totalCost,
	}
}

// ComputeAffordability считает EMI и долговую нагрузку (DTI) по заявке.
// DTI определен только при положительном месячном доходе и вычислимом EMI.
func ComputeAffordability(app model.LoanApplication) model.Affordability {
	result := model.Affordability{
		EMI: ComputeEMI(app.LoanAmount, app.LoanTermMonths, app.InterestRate),
	}
	if app.IncomeAnnum > 0 {
		result.MonthlyIncome = app.IncomeAnnum / 12.0
	}
	if result.EMI != nil && result.MonthlyIncome > 0 {
		dti := (result.EMI.Monthly + math.Max(0, app.ExistingEMI)) / result.MonthlyIncome
		result.DTI = &dti
	}
	return result
}

// DTIPercent — DTI в процентах для ответа API, с ограничением 0..200
func DTIPercent(dti *float64) *int {
	if dti == nil || !isFinite(*dti) {
		return nil
	}
	percent := int(math.Round(*dti * 100))
	if percent < 0 {
		percent = 0
	}
	if percent > 200 {
		percent = 200
	}
	return &percent
}

// FormatINR форматирует сумму в рупиях с разделителями тысяч
func FormatINR(amount float64) string {
	return "₹" + groupThousands(fmt.Sprintf("%.2f", amount))
}

func groupThousands(formatted string) string {
	sign := ""
	if strings.HasPrefix(formatted, "-") {
		sign = "-"
		formatted = formatted[1:]
	}

	intPart := formatted
	fracPart := ""
	if idx := strings.IndexByte(formatted, '.'); idx >= 0 {
		intPart = formatted[:idx]
		fracPart = formatted[idx:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return sign + b.String() + fracPart
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
