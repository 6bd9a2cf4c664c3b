package main

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/neuraltwin/assistant-engine/pkg/assistant"
)

func newRouter(logger *log.Logger, svc *assistant.Service) *chi.Mux {
	router := chi.NewRouter()
	router.Use(cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   []string{"*"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		Debug:            false,
	}).Handler)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Post("/v1/assistant/turn", handleTurn(logger, svc))

	return router
}

type errorResponse struct {
	Error string `json:"error"`
}

func handleTurn(logger *log.Logger, svc *assistant.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input assistant.TurnInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		if input.Message == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
			return
		}
		if input.SessionID == "" {
			input.SessionID = uuid.NewString()
		}

		output, err := svc.ProcessTurn(r.Context(), input)
		if err != nil {
			logger.Error("Turn processing failed", "session_id", input.SessionID, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "turn processing failed"})
			return
		}
		writeJSON(w, http.StatusOK, output)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
