package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	up   = pingFunc(func(context.Context) error { return nil })
	down = pingFunc(func(context.Context) error { return errors.New("down") })
)

func TestHealthReadyHandler(t *testing.T) {
	tests := []struct {
		name       string
		deps       map[string]Pinger
		wantStatus int
		want       readiness
	}{
		{
			name:       "all_dependencies_up",
			deps:       map[string]Pinger{"store": up, "redis": up},
			wantStatus: http.StatusOK,
			want:       readiness{Status: "ok", Checks: map[string]string{"store": "ok", "redis": "ok"}},
		},
		{
			name:       "redis_down",
			deps:       map[string]Pinger{"store": up, "redis": down},
			wantStatus: http.StatusServiceUnavailable,
			want:       readiness{Status: "unavailable", Checks: map[string]string{"store": "ok", "redis": "unreachable"}},
		},
		{
			name:       "no_dependencies",
			deps:       map[string]Pinger{},
			wantStatus: http.StatusOK,
			want:       readiness{Status: "ok", Checks: map[string]string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HealthReadyHandler(tt.deps)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got readiness
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    string
	}{
		{"routed", "/api/conversations/{conversationID}/messages", "/api/conversations/c1/messages", "/api/conversations/{conversationID}/messages"},
		{"unmatched", "", "/api/conversations/c1/nope", unmatchedRoute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, routeLabel(tt.pattern))
		})
	}
}
