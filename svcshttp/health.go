package svcshttp

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type healthReport struct {
	Healthy []string          `json:"healthy"`
	Failing map[string]string `json:"failing,omitempty"`
}

// HealthHandler returns a handler that runs the health checks of all services
// registered with a ping and reports the results as JSON.
//
// It responds with 200 OK when every check passes, and 500 Internal Server
// Error when any check fails, with the failing services and their error
// messages in the body.
//
// The handler must be wrapped with [Middleware] so it can reach the request
// container.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := From(r)
		if c == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		ctx := r.Context()
		report := healthReport{
			Healthy: []string{},
		}

		for _, ping := range c.GetPings() {
			err := ping.Ping(ctx)
			if err != nil {
				if report.Failing == nil {
					report.Failing = make(map[string]string)
				}
				report.Failing[ping.Name()] = err.Error()
				continue
			}

			report.Healthy = append(report.Healthy, ping.Name())
		}

		code := http.StatusOK
		if len(report.Failing) > 0 {
			code = http.StatusInternalServerError
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
	})
}
