package model

// AdviceRequest — вход эндпоинта /smart_advisor.
// Дефолты проставляет обработчик до декодирования JSON.
type AdviceRequest struct {
	LoanType    string  `json:"loan_type"`
	LoanAmount  float64 `json:"loan_amount"`
	Income      float64 `json:"income"`
	CreditScore float64 `json:"credit_score"`
	Currency    string  `json:"currency"`
	Profile     string  `json:"applicant_profile"`
}

// AdviceItem — одна рекомендация финансового советника
type AdviceItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`   // High, Medium, Low
	Category    string `json:"category"` // Savings, Strategy, Preparation, Warning
}

// AdviceResponse — контракт эндпоинта /smart_advisor
type AdviceResponse struct {
	OK               bool         `json:"ok"`
	Source           string       `json:"source"` // gemini или fallback
	LoanType         string       `json:"loan_type"`
	Title            string       `json:"title"`
	Advice           []AdviceItem `json:"advice"`
	QuickTips        []string     `json:"quick_tips"`
	EstimatedSavings string       `json:"estimated_savings,omitempty"`
}

// ChatMessage — одно сообщение диалога
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatContext — текущие значения калькулятора, которые фронт прикладывает к чату
type ChatContext struct {
	LoanAmount   float64 `json:"loan_amount"`
	TenureMonths int     `json:"tenure_months"`
	InterestRate float64 `json:"interest_rate"`
	Income       float64 `json:"income"`
	CreditScore  float64 `json:"credit_score"`
	Currency     string  `json:"currency"`
	LoanType     string  `json:"loan_type"`
	Age          int     `json:"age"`
	Gender       string  `json:"gender"`
}

// ChatRequest — вход эндпоинта /chat_advisor
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
	Context ChatContext   `json:"context"`
}

// ChatResponse — ответ чат-советника
type ChatResponse struct {
	OK       bool   `json:"ok"`
	Response string `json:"response"`
}
