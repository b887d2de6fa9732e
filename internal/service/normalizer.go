package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/agraw-2305/CrediLume/internal/model"
)

// ValidationError — отсутствующее или нечитаемое обязательное поле.
// Обработчик отдает его клиенту как 400 с именем поля.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "missing" {
		return fmt.Sprintf("Missing required field: %s", e.Field)
	}
	return fmt.Sprintf("Invalid value for field: %s", e.Field)
}

func parseFinite(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// requiredFloat — обязательное числовое поле: пусто или мусор = ошибка валидации
func requiredFloat(form map[string]string, name string) (float64, error) {
	raw, ok := form[name]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, &ValidationError{Field: name, Reason: "missing"}
	}
	value, ok := parseFinite(raw)
	if !ok {
		return 0, &ValidationError{Field: name, Reason: "invalid"}
	}
	return value, nil
}

// optionalFloat — необязательное поле: пусто или мусор = дефолт (best-effort UX)
func optionalFloat(form map[string]string, name string, defaultValue float64) float64 {
	raw, ok := form[name]
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	value, ok := parseFinite(raw)
	if !ok {
		return defaultValue
	}
	return value
}

// NormalizeApplication превращает сырые поля формы в типизированную заявку.
// income_annum, loan_amount и cibil_score обязательны; срок берется из
// скрытого loan_term (месяцы), а при его отсутствии — из пары
// loan_term_value + term_unit, чтобы форма работала и без JS.
func NormalizeApplication(form map[string]string) (model.LoanApplication, error) {
	var app model.LoanApplication

	income, err := requiredFloat(form, "income_annum")
	if err != nil {
		return app, err
	}
	loanAmount, err := requiredFloat(form, "loan_amount")
	if err != nil {
		return app, err
	}
	cibil, err := requiredFloat(form, "cibil_score")
	if err != nil {
		return app, err
	}

	termMonths, termErr := resolveTermMonths(form)
	if termErr != nil {
		return app, termErr
	}

	app = model.LoanApplication{
		IncomeAnnum:    income,
		LoanAmount:     loanAmount,
		LoanTermMonths: termMonths,
		CibilScore:     cibil,
		InterestRate:   optionalFloat(form, "interest_rate", 10.0),
		ExistingEMI:    optionalFloat(form, "existing_emi", 0.0),
		LoanType:       model.ParseLoanType(form["loan_type"]),
		Profile:        model.ParseApplicantProfile(form["applicant_profile"]),
	}
	app.TermUnitDisplay, app.TermValueDisplay = termDisplay(form)

	return app, nil
}

func resolveTermMonths(form map[string]string) (float64, error) {
	// Скрытое поле в месяцах имеет приоритет
	if raw, ok := form["loan_term"]; ok && strings.TrimSpace(raw) != "" {
		if value, ok := parseFinite(raw); ok && value > 0 {
			return value, nil
		}
	}

	value, err := requiredFloat(form, "loan_term_value")
	if err != nil {
		return 0, err
	}

	unit := strings.ToLower(strings.TrimSpace(form["term_unit"]))
	months := math.Round(value)
	if unit == "years" {
		months = math.Round(value * 12)
	}
	if months <= 0 {
		return 0, &ValidationError{Field: "loan_term_value", Reason: "invalid"}
	}
	return months, nil
}

// termDisplay сохраняет введенный пользователем срок как есть:
// "10 years" должен остаться "10 years" на странице результата.
func termDisplay(form map[string]string) (unit, value string) {
	unit = strings.ToLower(strings.TrimSpace(form["term_unit"]))
	if unit != "months" && unit != "years" {
		unit = "months"
	}

	raw := strings.TrimSpace(form["loan_term_value"])
	if raw == "" {
		return unit, ""
	}
	parsed, ok := parseFinite(raw)
	if !ok || parsed <= 0 {
		return unit, ""
	}
	if unit == "years" {
		// Для лет оставляем десятичные (например, 7.5)
		return unit, raw
	}
	return unit, strconv.Itoa(int(math.Round(parsed)))
}
