package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/v1/wizards/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/wizards/abc", nil))

	body := scrape(t, m)
	assert.Contains(t, body, `docsync_http_requests_total{method="GET",route="/api/v1/wizards/:id",status="404"} 1`)
	assert.Contains(t, body, "docsync_http_request_duration_seconds_bucket")
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.ObserveBackend("generate", "timeout", 30*time.Second)
	m.WizardEvent("cessao_credito", "finish")
	m.Generation("cessao_credito", time.Second, errors.New("boom"))
	m.Validation("invalid")
	m.Download("pdf", "corrupt")
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.CacheLookup(true)

	body := scrape(t, m)
	assert.Contains(t, body, `docsync_backend_calls_total{operation="generate",outcome="timeout"} 1`)
	assert.Contains(t, body, `docsync_wizard_events_total{event="finish",template="cessao_credito"} 1`)
	assert.Contains(t, body, `docsync_documents_generations_total{status="error",template="cessao_credito"} 1`)
	assert.Contains(t, body, `docsync_review_field_validations_total{status="invalid"} 1`)
	assert.Contains(t, body, `docsync_documents_downloads_total{file_type="pdf",outcome="corrupt"} 1`)
	assert.Contains(t, body, "docsync_review_active_sessions 1")
	assert.Contains(t, body, `docsync_cache_lookups_total{result="hit"} 1`)
}
