package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusshield/campusshield/internal/common/config"
)

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(config.MetricsConfig{Namespace: "campusshield"})

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/v1/user/getreports", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/user/getreports", nil))
	require.Equal(t, http.StatusOK, w.Code)

	m.ReportAction("created")
	m.SirenReceived("anonymous")
	m.NotificationSent("welcome")
	m.NotificationFailed("siren_ops")

	mw := httptest.NewRecorder()
	m.Handler().ServeHTTP(mw, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, mw.Code)

	body, err := io.ReadAll(mw.Body)
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, "campusshield_http_requests_total")
	assert.Contains(t, out, "campusshield_reports_total")
	assert.Contains(t, out, "campusshield_siren_alerts_total")
	assert.Contains(t, out, `campusshield_notifications_total{kind="welcome",status="sent"}`)
}
