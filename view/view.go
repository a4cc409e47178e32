package view

import (
	"errors"
	"sync"

	"casper-project/models"
)

// ErrInvalidJustification is returned when a message references a message
// that is not part of the view. The message is rejected and the view is left
// untouched.
var ErrInvalidJustification = errors.New("justification references unknown message")

// View is the observed message DAG: an append-only arena of messages keyed
// by content hash. Messages are only ever added, never removed or mutated.
// Insertion must be serialized by the caller owning the view; read queries
// may run concurrently.
type View struct {
	mu       sync.RWMutex
	messages map[models.MessageID]*models.Message
	order    []models.MessageID
}

// New creates an empty view.
func New() *View {
	return &View{messages: make(map[models.MessageID]*models.Message)}
}

// Insert adds a message to the view. It reports false if the message was
// already present. Every justification reference must resolve to a message
// already in the view, otherwise ErrInvalidJustification is returned and
// nothing is inserted.
func (v *View) Insert(msg *models.Message) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.messages[msg.ID()]; ok {
		return false, nil
	}
	for _, ref := range msg.Justification() {
		if _, ok := v.messages[ref]; !ok {
			return false, ErrInvalidJustification
		}
	}
	v.messages[msg.ID()] = msg
	v.order = append(v.order, msg.ID())
	return true, nil
}

// Get returns the message with the given id, if present.
func (v *View) Get(id models.MessageID) (*models.Message, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	msg, ok := v.messages[id]
	return msg, ok
}

// Contains reports whether the message is in the view.
func (v *View) Contains(id models.MessageID) bool {
	_, ok := v.Get(id)
	return ok
}

// Len returns the number of messages in the view.
func (v *View) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.messages)
}

// Messages returns the messages in insertion order.
func (v *View) Messages() []*models.Message {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]*models.Message, 0, len(v.order))
	for _, id := range v.order {
		out = append(out, v.messages[id])
	}
	return out
}

// TransitiveView returns the causal closure of a message: every message
// reachable by following justification edges, not including the message
// itself. Shared ancestors are visited once, so the walk is proportional to
// the closure size even when the same ancestor is reachable via many paths.
func (v *View) TransitiveView(id models.MessageID) (map[models.MessageID]struct{}, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	msg, ok := v.messages[id]
	if !ok {
		return nil, ErrInvalidJustification
	}
	return v.closureLocked(msg.Justification()), nil
}

// Depends reports whether message a causally depends on message b, that is,
// whether b is in the transitive view of a.
func (v *View) Depends(a, b models.MessageID) (bool, error) {
	closure, err := v.TransitiveView(a)
	if err != nil {
		return false, err
	}
	_, ok := closure[b]
	return ok, nil
}

func (v *View) closureLocked(roots []models.MessageID) map[models.MessageID]struct{} {
	visited := make(map[models.MessageID]struct{})
	queue := append([]models.MessageID(nil), roots...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := visited[id]; ok {
			continue
		}
		msg, ok := v.messages[id]
		if !ok {
			// unreachable for messages admitted through Insert
			continue
		}
		visited[id] = struct{}{}
		queue = append(queue, msg.Justification()...)
	}
	return visited
}
