package service

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-health-api/internal/models"
)

func scrapeMetrics(t *testing.T, metrics *MetricsService) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetricsServiceDomainCounters(t *testing.T) {
	metrics := NewMetricsService()

	metrics.RecordConsentResponse(ConsentChannelEmail, models.ConsentStatusApproved)
	metrics.RecordConsentResponse(ConsentChannelEmail, models.ConsentStatusApproved)
	metrics.RecordNotification(models.NotificationTypeVaccination, models.RecipientParent)
	metrics.RecordInventoryAlerts(models.AlertTypeLowStock, 3)
	metrics.RecordInventoryAlerts(models.AlertTypeExpirySoon, 0)
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/health", http.StatusOK, 10*time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)

	body := scrapeMetrics(t, metrics)
	assert.Contains(t, body, `consent_responses_total{channel="email",status="APPROVED"} 2`)
	assert.Contains(t, body, `medical_notifications_total{recipient="PARENT",type="VACCINATION"} 1`)
	assert.Contains(t, body, `inventory_alerts_total{type="LOW_STOCK"} 3`)
	assert.NotContains(t, body, `inventory_alerts_total{type="EXPIRY_SOON"}`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/api/v1/health",status="200"} 1`)
	assert.Contains(t, body, "cache_hits_total 1")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService

	assert.NotPanics(t, func() {
		metrics.RecordConsentResponse(ConsentChannelApp, models.ConsentStatusRejected)
		metrics.RecordNotification(models.NotificationTypeAppointment, models.RecipientParent)
		metrics.RecordInventoryAlerts(models.AlertTypeLowStock, 1)
		metrics.RecordEmail(true)
		metrics.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	})

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
