package server

import (
	"net/http"
)

func NewRouter(handler *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/chat", handler.Chat)
	mux.HandleFunc("/v1/generate", handler.Generate)
	mux.HandleFunc("/v1/healthz", handler.Healthz)

	return mux
}
