package justification

import (
	"sort"

	"casper-project/models"
)

// LatestMessages tracks, per validator, the messages not justified by any
// other message seen from the same validator. A validator holding more than
// one entry is equivocating; once flagged, the flag is permanent for the
// lifetime of the view, even if a later message justifies every branch.
type LatestMessages struct {
	byValidator  map[models.ValidatorID]map[models.MessageID]*models.Message
	equivocators models.ValidatorSet
}

// LatestHonest maps each non-equivocating validator to its single latest
// message. It is the input the estimator capability operates on.
type LatestHonest map[models.ValidatorID]*models.Message

// NewLatestMessages creates an empty tracker.
func NewLatestMessages() *LatestMessages {
	return &LatestMessages{
		byValidator:  make(map[models.ValidatorID]map[models.MessageID]*models.Message),
		equivocators: make(models.ValidatorSet),
	}
}

// Observe folds a newly seen message into the tracker. It retires any
// existing latest message of the sender that the new message justifies, and
// records the new message as latest unless an existing latest message
// already justifies it. It reports whether the message was recorded as a
// latest message.
//
// Observation is not commutative, so callers must apply messages under the
// same serialization as view insertion.
func (l *LatestMessages) Observe(msg *models.Message, r Resolver) bool {
	sender := msg.Sender()
	current, ok := l.byValidator[sender]
	if !ok {
		l.byValidator[sender] = map[models.MessageID]*models.Message{msg.ID(): msg}
		return true
	}
	if _, ok := current[msg.ID()]; ok {
		return false
	}

	newView := TransitiveView(Justification(msg.Justification()), r)

	dominated := false
	for id, old := range current {
		if _, ok := newView[id]; ok {
			// the new message has seen old, old is no longer latest
			delete(current, id)
			continue
		}
		oldView := TransitiveView(Justification(old.Justification()), r)
		if _, ok := oldView[msg.ID()]; ok {
			dominated = true
		}
	}

	added := false
	if !dominated {
		current[msg.ID()] = msg
		added = true
	}
	if len(current) > 1 {
		// two undominated messages from one sender is the definition of
		// equivocation
		l.equivocators.Add(sender)
	}
	return added
}

// Get returns the latest messages of a validator, sorted by id.
func (l *LatestMessages) Get(id models.ValidatorID) []*models.Message {
	msgs := make([]*models.Message, 0, len(l.byValidator[id]))
	for _, msg := range l.byValidator[id] {
		msgs = append(msgs, msg)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].ID() < msgs[j].ID() })
	return msgs
}

// Validators returns every validator with at least one latest message.
func (l *LatestMessages) Validators() []models.ValidatorID {
	out := make([]models.ValidatorID, 0, len(l.byValidator))
	for id := range l.byValidator {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// All returns every latest message of every validator.
func (l *LatestMessages) All() []*models.Message {
	var out []*models.Message
	for _, id := range l.Validators() {
		out = append(out, l.Get(id)...)
	}
	return out
}

// Equivocators returns a copy of the set of validators caught equivocating.
func (l *LatestMessages) Equivocators() models.ValidatorSet {
	return l.equivocators.Clone()
}

// IsEquivocating reports whether the validator has been caught equivocating.
func (l *LatestMessages) IsEquivocating(id models.ValidatorID) bool {
	return l.equivocators.Contains(id)
}

// Honest returns the latest message of each honest validator: validators
// never caught equivocating and currently holding exactly one latest
// message. Equivocating validators are excluded entirely; the safety
// argument evaluates only over honest participants.
func (l *LatestMessages) Honest() LatestHonest {
	out := make(LatestHonest)
	for id, msgs := range l.byValidator {
		if l.equivocators.Contains(id) || len(msgs) != 1 {
			continue
		}
		for _, msg := range msgs {
			out[id] = msg
		}
	}
	return out
}

// HonestWith behaves like Honest but additionally excludes the given
// validators. The safety oracle uses it to apply the observer's equivocator
// set to latest messages reconstructed from a justification.
func (l *LatestMessages) HonestWith(excluded models.ValidatorSet) LatestHonest {
	out := l.Honest()
	for id := range excluded {
		delete(out, id)
	}
	return out
}

// Senders returns the validators in the honest set, sorted.
func (h LatestHonest) Senders() []models.ValidatorID {
	out := make([]models.ValidatorID, 0, len(h))
	for id := range h {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
