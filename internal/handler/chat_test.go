package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agraw-2305/CrediLume/internal/model"
	"github.com/agraw-2305/CrediLume/internal/service"
)

func chatRouter(t *testing.T) *mux.Router {
	t.Helper()
	logger := testLogger()
	chatService := service.NewChatService(disabledGemini(), logger)

	router := mux.NewRouter()
	NewChatHandler(chatService, logger).RegisterRoutes(router)
	return router
}

func TestChatAdvisor_OK(t *testing.T) {
	router := chatRouter(t)

	rec := postJSON(router, "/chat_advisor",
		`{"message": "how is emi calculated", "context": {"loan_amount": 100000, "tenure_months": 120, "interest_rate": 10}}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Contains(t, resp.Response, "How EMI is Calculated")
}

func TestChatAdvisor_EmptyMessage(t *testing.T) {
	router := chatRouter(t)

	rec := postJSON(router, "/chat_advisor", `{"message": "  "}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, "No message provided", resp.Error)
}

func TestChatAdvisor_BadJSON(t *testing.T) {
	router := chatRouter(t)

	rec := postJSON(router, "/chat_advisor", `not json`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
