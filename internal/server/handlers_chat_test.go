package server

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
	"github.com/preyalameta02/balance-sheet-analysis/internal/llm"
)

func TestChatFallbackAnswer(t *testing.T) {
	router, db := setupServer(t)
	jio := seedCompany(t, db, "Jio Platforms")
	seedRecord(t, db, jio.ID, "2023-24", constants.NetProfit, 22500)
	seedRecord(t, db, jio.ID, "2022-23", constants.NetProfit, 18500)

	token := registerAndLogin(t, router, "chair@jio.test", constants.RoleChairman, nil)

	w := doJSON(t, router, http.MethodPost, "/chat", token, gin.H{
		"message": "How did the profit develop?",
	})
	require.Equal(t, http.StatusOK, w.Code, "chat should answer: %s", w.Body.String())

	var answer llm.Answer
	decodeBody(t, w, &answer)
	assert.Equal(t,
		"Based on the data, the net profit was ₹22,500 Cr in 2023-24 and ₹18,500 Cr in 2022-23. "+
			"This represents a +21.6% change year-over-year.",
		answer.Response, "without a model the deterministic answer comes back")
	require.NotNil(t, answer.Chart, "a chart rides along with the answer")
	assert.Equal(t, "line", answer.Chart.Type)
	assert.Equal(t, []string{"2022-23", "2023-24"}, answer.Chart.Labels)
}

func TestChatScopedToCompany(t *testing.T) {
	router, db := setupServer(t)
	jio := seedCompany(t, db, "Jio Platforms")
	retail := seedCompany(t, db, "Reliance Retail")
	seedRecord(t, db, retail.ID, "2023-24", constants.Revenue, 260000)

	token := registerAndLogin(t, router, "analyst@jio.test", constants.RoleAnalyst, []uuid.UUID{jio.ID})

	w := doJSON(t, router, http.MethodPost, "/chat", token, gin.H{
		"message":    "What was the revenue?",
		"company_id": retail.ID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code, "chat honors company scoping")

	w = doJSON(t, router, http.MethodPost, "/chat", token, gin.H{
		"message":    "What was the revenue?",
		"company_id": uuid.New(),
	})
	assert.Equal(t, http.StatusNotFound, w.Code, "an unknown company is 404")
}

func TestChatUnassignedAnalystSeesNothing(t *testing.T) {
	router, db := setupServer(t)
	jio := seedCompany(t, db, "Jio Platforms")
	seedRecord(t, db, jio.ID, "2023-24", constants.Revenue, 125000)

	token := registerAndLogin(t, router, "idle@jio.test", constants.RoleAnalyst, nil)

	w := doJSON(t, router, http.MethodPost, "/chat", token, gin.H{
		"message": "What was the revenue?",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var answer llm.Answer
	decodeBody(t, w, &answer)
	assert.Contains(t, answer.Response, "couldn't find relevant financial data",
		"data outside the assignment set must not leak into answers")
	assert.Nil(t, answer.Chart)
}

func TestChatRequiresMessage(t *testing.T) {
	router, _ := setupServer(t)
	token := registerAndLogin(t, router, "chair@jio.test", constants.RoleChairman, nil)

	w := doJSON(t, router, http.MethodPost, "/chat", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "an empty message is rejected")
}
