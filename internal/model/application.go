package model

import "strings"

// LoanType — тип кредита (закрытое перечисление)
type LoanType string

const (
	LoanTypeEducation LoanType = "education"
	LoanTypeHome      LoanType = "home"
	LoanTypeBusiness  LoanType = "business"
	LoanTypePersonal  LoanType = "personal"
)

// ParseLoanType приводит произвольное значение формы к известному типу кредита.
// Неизвестные значения намеренно отображаются в personal, а не в ошибку:
// публичная форма не должна падать из-за мусора в select-поле.
func ParseLoanType(raw string) LoanType {
	switch LoanType(strings.ToLower(strings.TrimSpace(raw))) {
	case LoanTypeEducation:
		return LoanTypeEducation
	case LoanTypeHome:
		return LoanTypeHome
	case LoanTypeBusiness:
		return LoanTypeBusiness
	case LoanTypePersonal:
		return LoanTypePersonal
	default:
		return LoanTypePersonal
	}
}

// ApplicantProfile — профиль заявителя
type ApplicantProfile string

const (
	ProfileStudent       ApplicantProfile = "student"
	ProfileSalaried      ApplicantProfile = "salaried"
	ProfileSelfEmployed  ApplicantProfile = "self_employed"
	ProfileBusinessOwner ApplicantProfile = "business_owner"
)

// ParseApplicantProfile — та же намеренная лояльность, что и у ParseLoanType.
func ParseApplicantProfile(raw string) ApplicantProfile {
	switch ApplicantProfile(strings.ToLower(strings.TrimSpace(raw))) {
	case ProfileStudent:
		return ProfileStudent
	case ProfileSalaried:
		return ProfileSalaried
	case ProfileSelfEmployed:
		return ProfileSelfEmployed
	case ProfileBusinessOwner:
		return ProfileBusinessOwner
	default:
		return ProfileSalaried
	}
}

// LoanApplication — нормализованная заявка, живет один запрос.
// Срок всегда хранится в месяцах; пересчет из лет делает нормализатор.
type LoanApplication struct {
	IncomeAnnum    float64
	LoanAmount     float64
	LoanTermMonths float64
	CibilScore     float64
	InterestRate   float64 // годовая ставка в процентах
	ExistingEMI    float64
	LoanType       LoanType
	Profile        ApplicantProfile

	// Значения срока в том виде, как их ввел пользователь —
	// нужны только для обратной отдачи в UI.
	TermValueDisplay string
	TermUnitDisplay  string
}
