package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/agraw-2305/CrediLume/internal/model"
	"github.com/agraw-2305/CrediLume/internal/service"
)

type AdviceHandler struct {
	adviceService *service.AdviceService
	logger        *logrus.Logger
}

func NewAdviceHandler(adviceService *service.AdviceService, logger *logrus.Logger) *AdviceHandler {
	return &AdviceHandler{
		adviceService: adviceService,
		logger:        logger,
	}
}

func (h *AdviceHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/smart_advisor", h.SmartAdvisor).Methods("POST")
}

// SmartAdvisor возвращает персональные финансовые советы по типу кредита
func (h *AdviceHandler) SmartAdvisor(w http.ResponseWriter, r *http.Request) {
	// Дефолты проставляются до декодирования: отсутствующие поля их не затирают
	req := model.AdviceRequest{
		LoanType:    "personal",
		CreditScore: 700,
		Currency:    "USD",
		Profile:     "salaried",
	}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.WithError(err).Error("Ошибка декодирования запроса советника")
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{OK: false, Error: "invalid request payload"})
			return
		}
	}

	response := h.adviceService.GetAdvice(r.Context(), req)
	writeJSON(w, http.StatusOK, response)
}
