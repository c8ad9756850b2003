package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const ChatPath = "/api/chat"

// NewRouter exposes the chat handler as POST /api/chat behind the request
// id, logging and metrics middleware.
func NewRouter(chat http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST "+ChatPath, chat)

	var h http.Handler = mux
	h = Metrics(h)
	h = Logging(h)
	h = RequestID(h)
	return h
}

// NewMetricsRouter serves the prometheus registry on its own listener.
func NewMetricsRouter() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}
