package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

func requestLogger(r *http.Request) *logrus.Entry {
	id := RequestIDFromContext(r.Context())
	if id == "" {
		id = "-"
	}
	return log.WithField("request_id", id)
}

func logRequest(req *http.Request, status int, elapsed time.Duration) {
	requestLogger(req).WithFields(logrus.Fields{
		"status":      status,
		"duration_ms": elapsed.Milliseconds(),
	}).Infof("%s -- %s -- %s", req.RemoteAddr, req.Method, req.URL.Path)
}

func logAndReturnError(w http.ResponseWriter, r *http.Request, body ErrorPayload, code int, consoleStr ...string) {
	// consoleStr is optional.
	entry := requestLogger(r).WithField("status", code)
	if body.Details != nil {
		entry = entry.WithField("details", body.Details)
	}
	if len(consoleStr) > 0 {
		entry.Errorln(consoleStr[0])
	} else {
		entry.Errorln(body.Error)
	}
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("write response: %v", err)
	}
}
