package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const readinessTimeout = 2 * time.Second

// Pinger is anything the readiness check can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func HealthLiveHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HealthReadyHandler pings every dependency concurrently and answers 503 if
// any of them fails within the readiness timeout.
func HealthReadyHandler(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		res := readiness{Status: "ok", Checks: make(map[string]string, len(deps))}
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for name, dep := range deps {
			wg.Add(1)
			go func() {
				defer wg.Done()
				state := "ok"
				if err := dep.Ping(ctx); err != nil {
					state = "unreachable"
				}
				mu.Lock()
				res.Checks[name] = state
				if state != "ok" {
					res.Status = "unavailable"
				}
				mu.Unlock()
			}()
		}
		wg.Wait()

		status := http.StatusOK
		if res.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(res)
	}
}
