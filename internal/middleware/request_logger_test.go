// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	previous := slog.Default()
	slog.SetDefault(slog.New(logging.NewHandler(buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return buf
}

func TestRequestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		status     int
		wantLogged bool
	}{
		{name: "liveness check", path: "/livez", status: http.StatusOK},
		{name: "readiness check", path: "/readyz", status: http.StatusServiceUnavailable},
		{name: "metrics scrape", path: "/metrics", status: http.StatusOK},
		{name: "other path", path: "/debug", status: http.StatusNotFound, wantLogged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)
			handler := RequestLoggerMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.wantLogged {
				assert.Contains(t, logs.String(), `"path":"`+tt.path+`"`)
				assert.Contains(t, logs.String(), `"status":404`)
			} else {
				assert.Empty(t, logs.String())
			}
		})
	}
}
