package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/agraw-2305/CrediLume/internal/model"
	"github.com/agraw-2305/CrediLume/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
	logger      *logrus.Logger
}

func NewChatHandler(chatService *service.ChatService, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chat_advisor", h.ChatAdvisor).Methods("POST")
}

// ChatAdvisor обрабатывает сообщение чат-советника
func (h *ChatHandler) ChatAdvisor(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Ошибка декодирования запроса чата")
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{OK: false, Error: "invalid request payload"})
		return
	}

	response, err := h.chatService.Chat(r.Context(), req)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{OK: false, Error: "No message provided"})
			return
		}
		h.logger.WithError(err).Error("Ошибка чат-советника")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{OK: false, Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, model.ChatResponse{OK: true, Response: response})
}
