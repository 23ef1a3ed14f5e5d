package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"opticpos/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// With no reachable backends the check must degrade to 503 and still report
// every field, including the DLQ depth sentinel.
func TestHealth_DegradedBackendsReportEveryField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := &gorm.DB{Config: &gorm.Config{}} // no conn pool, DB() errors
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	r := gin.New()
	r.GET("/health", Health(db, rdb, cb))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		OK      bool   `json:"ok"`
		DB      string `json:"db"`
		Redis   string `json:"redis"`
		Breaker string `json:"breaker"`
		DLQ     int64  `json:"dlq"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.OK)
	assert.Equal(t, "error", body.DB)
	assert.Equal(t, "error", body.Redis)
	assert.Equal(t, "closed", body.Breaker)
	assert.Equal(t, int64(-1), body.DLQ)
}
