package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/agraw-2305/CrediLume/internal/classifier"
	"github.com/agraw-2305/CrediLume/internal/model"
	"github.com/agraw-2305/CrediLume/internal/service"
)

type DecisionHandler struct {
	decisionService *service.DecisionService
	logger          *logrus.Logger
}

func NewDecisionHandler(decisionService *service.DecisionService, logger *logrus.Logger) *DecisionHandler {
	return &DecisionHandler{
		decisionService: decisionService,
		logger:          logger,
	}
}

func (h *DecisionHandler) RegisterRoutes(router *mux.Router) {
	// /predict — исторический путь HTML-формы; вне шаблонов оба пути отдают JSON
	router.HandleFunc("/predict", h.Predict).Methods("POST")
	router.HandleFunc("/predict_json", h.Predict).Methods("POST")
}

// Predict принимает form-encoded поля заявки и возвращает полный ответ решения
func (h *DecisionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.WithError(err).Error("Ошибка разбора формы заявки")
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{OK: false, Error: "invalid form payload"})
		return
	}

	form := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			form[key] = values[0]
		}
	}

	response, err := h.decisionService.Evaluate(r.Context(), form)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{OK: false, Error: validationErr.Error()})
			return
		}

		var artifactErr *classifier.ArtifactError
		if errors.As(err, &artifactErr) {
			h.logger.WithError(err).Error("Скоринговая модель недоступна")
			writeJSON(w, http.StatusServiceUnavailable, model.ErrorResponse{OK: false, Error: artifactErr.Error()})
			return
		}

		h.logger.WithError(err).Error("Ошибка обработки заявки")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{OK: false, Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, response)
}
