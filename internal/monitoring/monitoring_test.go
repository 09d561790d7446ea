package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *gin.Engine) string {
	t.Helper()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestInstrument_RecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Instrument())
	r.GET("/discussion", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/discussion?id=4", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	body := scrape(t, r)
	assert.Contains(t, body, `http_request_duration_seconds_count{method="GET",route="/discussion",status="200"}`)
	assert.Contains(t, body, `route="unmatched",status="404"`)
}

func TestCounters_Exposed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/metrics", Handler())

	ModerationActions.WithLabelValues("delete_user").Inc()
	LoginFailure.WithLabelValues("invalid_credentials").Inc()

	body := scrape(t, r)
	assert.Contains(t, body, `moderation_actions_total{action="delete_user"}`)
	assert.Contains(t, body, `login_failure_total{reason="invalid_credentials"}`)
	assert.Contains(t, body, "register_success_total")
}
