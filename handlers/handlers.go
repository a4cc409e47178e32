package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"casper-project/estimator"
	"casper-project/forkchoice"
	"casper-project/logger"
	"casper-project/models"
	"casper-project/protocol"
	"casper-project/repository"
	"casper-project/view"
	"casper-project/weights"
)

// Handler contains the HTTP handlers of the observer API. The observer runs
// a protocol state with the binary estimator and answers queries about the
// DAG it has seen.
type Handler struct {
	State     *protocol.State
	Estimator estimator.Estimator
	Repo      repository.MessageRepositoryInterface
	Threshold weights.Weight
}

// NewHandler creates and returns a new Handler instance. The repository may
// be nil, in which case inserted messages are not journaled.
func NewHandler(state *protocol.State, est estimator.Estimator, repo repository.MessageRepositoryInterface, threshold weights.Weight) *Handler {
	return &Handler{State: state, Estimator: est, Repo: repo, Threshold: threshold}
}

type messagePayload struct {
	Sender        string   `json:"sender"`
	Estimate      bool     `json:"estimate"`
	Justification []string `json:"justification"`
}

type messageView struct {
	ID            string   `json:"id"`
	Sender        string   `json:"sender"`
	Estimate      bool     `json:"estimate"`
	Justification []string `json:"justification"`
}

func toMessageView(msg *models.Message) messageView {
	refs := msg.Justification()
	out := messageView{
		ID:            string(msg.ID()),
		Sender:        string(msg.Sender()),
		Justification: make([]string, len(refs)),
	}
	if est, ok := msg.Estimate().(estimator.Boolean); ok {
		out.Estimate = bool(est)
	}
	for i, ref := range refs {
		out.Justification[i] = string(ref)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// AddMessage handles POST requests inserting a message into the observed DAG
func (h *Handler) AddMessage(w http.ResponseWriter, r *http.Request) {
	var payload messagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Logger.Error("Failed to decode message", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid request payload",
		})
		return
	}

	refs := make([]models.MessageID, len(payload.Justification))
	for i, ref := range payload.Justification {
		refs[i] = models.MessageID(ref)
	}

	msg, err := h.State.Create(models.ValidatorID(payload.Sender), estimator.Boolean(payload.Estimate), refs)
	if err != nil {
		logger.Logger.Error("Failed to create message", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.State.Insert(msg); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, view.ErrInvalidJustification):
			status = http.StatusBadRequest
		case errors.Is(err, protocol.ErrDuplicateMessage):
			status = http.StatusConflict
		}
		logger.Logger.Error("Failed to insert message", zap.Error(err))
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	h.journal(msg)
	logger.Logger.Info("Inserted new message",
		zap.String("message_id", string(msg.ID())),
		zap.String("sender", string(msg.Sender())))

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Message inserted successfully",
		"node":    toMessageView(msg),
	})
}

// GetMessage handles GET requests for a single message by id
func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id := models.MessageID(mux.Vars(r)["id"])
	msg, ok := h.State.Message(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "message not found"})
		return
	}
	writeJSON(w, http.StatusOK, toMessageView(msg))
}

// ListMessages handles GET requests for the whole view in insertion order
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs := h.State.Messages()
	out := make([]messageView, len(msgs))
	for i, msg := range msgs {
		out[i] = toMessageView(msg)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": out})
}

// GetLatest handles GET requests for the per-validator latest messages
func (h *Handler) GetLatest(w http.ResponseWriter, r *http.Request) {
	latest := h.State.Latest()
	out := make(map[string][]messageView, len(latest))
	for sender, msgs := range latest {
		views := make([]messageView, len(msgs))
		for i, msg := range msgs {
			views[i] = toMessageView(msg)
		}
		out[string(sender)] = views
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"latest": out})
}

// GetEquivocators handles GET requests for the validators caught equivocating
func (h *Handler) GetEquivocators(w http.ResponseWriter, r *http.Request) {
	equivocators := h.State.Equivocators()
	out := make([]string, len(equivocators))
	for i, id := range equivocators {
		out[i] = string(id)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"equivocators": out})
}

// GetEstimate handles GET requests for the current fork-choice estimate.
// Before any honest validator has published a message there is no opinion
// yet; that is a normal state, answered with a null estimate rather than an
// error.
func (h *Handler) GetEstimate(w http.ResponseWriter, r *http.Request) {
	est, err := h.State.Estimate(h.Estimator)
	if err != nil {
		if errors.Is(err, forkchoice.ErrNoLatestMessages) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"estimate": nil})
			return
		}
		logger.Logger.Error("Failed to compute estimate", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	value, _ := est.(estimator.Boolean)
	writeJSON(w, http.StatusOK, map[string]interface{}{"estimate": bool(value)})
}

// GetSafety handles GET requests asking whether a value is final
func (h *Handler) GetSafety(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("value")
	value, err := strconv.ParseBool(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "query parameter 'value' must be a boolean",
		})
		return
	}
	safe := h.State.IsSafe(estimator.Boolean(value), h.Estimator, h.Threshold)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"value":     value,
		"safe":      safe,
		"threshold": h.Threshold,
	})
}

func (h *Handler) journal(msg *models.Message) {
	if h.Repo == nil {
		return
	}
	stored, err := repository.FromMessage(msg)
	if err == nil {
		err = h.Repo.AppendMessage(stored)
	}
	if err != nil {
		logger.Logger.Warn("Failed to journal message",
			zap.String("message_id", string(msg.ID())), zap.Error(err))
	}
}
