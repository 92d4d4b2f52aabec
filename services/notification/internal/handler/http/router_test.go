package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/health"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/logger"
)

func TestRouter_Health(t *testing.T) {
	h := health.NewHandler()
	h.RegisterCritical("redis", func(context.Context) error { return errors.New("connection refused") })
	router := NewRouter(h, logger.Discard())

	tests := []struct {
		path string
		want int
	}{
		{"/health/live", http.StatusOK},
		{"/health/ready", http.StatusServiceUnavailable},
		{"/metrics", http.StatusOK},
		{"/api/v1/notifications", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
