package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithError_Envelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithError(c, NewAPIErrorWithDetails(http.StatusBadRequest, ErrCodeInvalidInput, "Champ invalide", map[string]string{"title": "trop court"}))

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Champ invalide", body["error"])
	assert.Equal(t, ErrCodeInvalidInput, body["code"])
	assert.Contains(t, body, "details")
}

func TestHelpers_DefaultMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	NotFound(c, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), ErrNotFound.Message)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Forbidden(c, "Non")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Non")
}

func TestWithMessage_DoesNotMutateBase(t *testing.T) {
	custom := ErrInternalError.WithMessage("boom")

	assert.Equal(t, "boom", custom.Message)
	assert.Equal(t, "Une erreur est survenue.", ErrInternalError.Message)
	assert.Equal(t, http.StatusInternalServerError, custom.Status)
}
