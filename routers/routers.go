package routers

import (
	"casper-project/handlers"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the HTTP routes of the observer API
func RegisterRoutes(r *mux.Router, h *handlers.Handler) {

	// Inserts an observed message into the DAG
	r.HandleFunc("/messages", h.AddMessage).Methods("POST")

	// Retrieves the whole view in insertion order
	r.HandleFunc("/messages", h.ListMessages).Methods("GET")

	// Retrieves a single message by content id
	r.HandleFunc("/messages/{id}", h.GetMessage).Methods("GET")

	// Per-validator latest messages, equivocating branches included
	r.HandleFunc("/latest", h.GetLatest).Methods("GET")

	// Validators caught holding two undominated messages
	r.HandleFunc("/equivocators", h.GetEquivocators).Methods("GET")

	// Current fork-choice estimate over the honest validators
	r.HandleFunc("/estimate", h.GetEstimate).Methods("GET")

	// Finality query for a candidate value
	r.HandleFunc("/safety", h.GetSafety).Methods("GET")
}
