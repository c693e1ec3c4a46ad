package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Healthcheck probes one dependency.
type Healthcheck struct {
	Name  string
	Probe func(context.Context) error
}

// healthHandler runs all probes with a short deadline and reports 200 only
// when every dependency answers.
func healthHandler(checks []Healthcheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.Probe(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[c.Name] = err.Error()
				continue
			}
			results[c.Name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	}
}
