// Package protocol ties the consensus core together: a State owns one
// validator's (or observer's) view of the DAG, its latest-message tracker
// and the weight table, and exposes the insert/query boundary.
package protocol

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"casper-project/estimator"
	"casper-project/forkchoice"
	"casper-project/justification"
	"casper-project/logger"
	"casper-project/models"
	"casper-project/oracle"
	"casper-project/view"
	"casper-project/weights"
)

// ErrDuplicateMessage is returned when an inserted message is already part
// of the view. The view is unchanged; callers may treat it as success.
var ErrDuplicateMessage = errors.New("message already in view")

// State is a protocol-state holder. Insertions are serialized; read queries
// run concurrently against a stable snapshot of the view.
type State struct {
	// Oracle configures the safety queries. Set it before the state is
	// shared between goroutines.
	Oracle oracle.CliqueOracle

	mu      sync.RWMutex
	view    *view.View
	latest  *justification.LatestMessages
	weights *weights.Table
}

// NewState creates an empty protocol state over the given weight table.
func NewState(w *weights.Table) *State {
	return &State{
		view:    view.New(),
		latest:  justification.NewLatestMessages(),
		weights: w,
	}
}

// Insert adds a message to the view and folds it into the latest-message
// tracker. Insertion is all or nothing: a message referencing unknown
// justifications is rejected with view.ErrInvalidJustification and the state
// is left untouched.
func (s *State) Insert(msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(msg)
}

func (s *State) insertLocked(msg *models.Message) error {
	inserted, err := s.view.Insert(msg)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", msg.ID(), err)
	}
	if !inserted {
		return ErrDuplicateMessage
	}

	wasEquivocating := s.latest.IsEquivocating(msg.Sender())
	s.latest.Observe(msg, s.view)
	if !wasEquivocating && s.latest.IsEquivocating(msg.Sender()) {
		logger.Logger.Warn("Equivocation detected",
			zap.String("validator", string(msg.Sender())),
			zap.String("message_id", string(msg.ID())))
	}
	return nil
}

// Create builds a message from the given parts after checking that every
// justification reference resolves in the current view. The message is not
// inserted.
func (s *State) Create(sender models.ValidatorID, est models.Estimate, refs []models.MessageID) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ref := range refs {
		if !s.view.Contains(ref) {
			return nil, fmt.Errorf("reference %s: %w", ref, view.ErrInvalidJustification)
		}
	}
	return models.NewMessage(sender, est, refs)
}

// Publish makes the validator's next message: the justification is the
// validator's complete latest-message view and the estimate is the fork
// choice over its honest subset. The message is inserted before returning.
func (s *State) Publish(sender models.ValidatorID, est estimator.Estimator) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := forkchoice.Estimate(s.latest, est, s.weights, s.view)
	if err != nil {
		return nil, err
	}

	var refs []models.MessageID
	for _, msg := range s.latest.All() {
		refs = append(refs, msg.ID())
	}

	msg, err := models.NewMessage(sender, value, refs)
	if err != nil {
		return nil, err
	}
	if err := s.insertLocked(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Estimate runs fork choice over the current view. The result is computed
// fresh on every call; it changes whenever new messages arrive.
func (s *State) Estimate(est estimator.Estimator) (models.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return forkchoice.Estimate(s.latest, est, s.weights, s.view)
}

// IsSafe asks the safety oracle whether the candidate estimate is final
// under the given fault tolerance threshold.
func (s *State) IsSafe(candidate models.Estimate, est estimator.Estimator, threshold weights.Weight) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Oracle.IsSafe(candidate, est, s.latest, s.weights, threshold, s.view)
}

// Latest returns a snapshot of every validator's latest messages.
func (s *State) Latest() map[models.ValidatorID][]*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[models.ValidatorID][]*models.Message)
	for _, id := range s.latest.Validators() {
		out[id] = s.latest.Get(id)
	}
	return out
}

// Equivocators returns the validators caught equivocating, sorted.
func (s *State) Equivocators() []models.ValidatorID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest.Equivocators().Sorted()
}

// Messages returns the view's messages in insertion order.
func (s *State) Messages() []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.Messages()
}

// Message returns a message of the view by id.
func (s *State) Message(id models.MessageID) (*models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.Get(id)
}

// Weights returns the weight table the state was built with.
func (s *State) Weights() *weights.Table {
	return s.weights
}
