package model

// EMISchedule — результат аннуитетного расчета
type EMISchedule struct {
	Monthly       float64
	TotalInterest float64
	TotalCost     float64
}

// Affordability — расчет платежной нагрузки по заявке.
// EMI == nil, если расчет невозможен (нулевая сумма, нулевой срок и т.п.);
// DTI == nil, если нет месячного дохода или EMI. Ниже по конвейеру nil
// трактуется строго как "неизвестно", никогда как ноль.
type Affordability struct {
	EMI           *EMISchedule
	DTI           *float64
	MonthlyIncome float64
}

// Decision — итог скоринга с учетом guardrail-правил
type Decision struct {
	ModelPrediction  int
	ModelProbability float64
	FinalPrediction  int
	FinalProbability float64
	GuardrailApplied bool
	GuardrailNote    string
}

// Explanation — человекочитаемое объяснение решения.
// Списки мутабельны до применения обогащения, после — замораживаются в ответ.
type Explanation struct {
	Reasons     []string
	Suggestions []string
	CibilInfo   []string
}

// DecisionResponse — контракт эндпоинтов /predict и /predict_json
type DecisionResponse struct {
	OK              bool     `json:"ok"`
	PredictionText  string   `json:"prediction_text"`
	HealthScore     int      `json:"health_score"`
	Reasons         []string `json:"reasons"`
	Suggestions     []string `json:"suggestions"`
	CibilInfo       []string `json:"cibil_info"`
	CibilScore      float64  `json:"cibil_score"`
	GuardrailNote   *string  `json:"guardrail_note"`
	AdvisorSummary  string   `json:"advisor_summary"`
	AdvisorAdvice   []string `json:"advisor_advice"`
	AdvisorWarnings []string `json:"advisor_warnings"`
	DTIPercent      *int     `json:"dti_percent"`

	EMIMonthly       *string `json:"emi_monthly"`
	EMITotalInterest *string `json:"emi_total_interest"`
	EMITotalCost     *string `json:"emi_total_cost"`

	// Эхо введенных значений для повторного рендера формы
	IncomeAnnum   float64 `json:"income_annum"`
	LoanAmount    float64 `json:"loan_amount"`
	LoanTerm      float64 `json:"loan_term"`
	LoanTermValue string  `json:"loan_term_value"`
	TermUnit      string  `json:"term_unit"`
	InterestRate  float64 `json:"interest_rate"`
	LoanType      string  `json:"loan_type"`
	Profile       string  `json:"applicant_profile"`
	ExistingEMI   float64 `json:"existing_emi"`
}

// ErrorResponse — единый формат ошибки для всех эндпоинтов
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
