// Package justification implements the causal side of the protocol: the
// justification sets carried by messages, the per-validator latest-message
// tracker and the equivocator bookkeeping derived from it.
package justification

import (
	"casper-project/models"
)

// Resolver looks up messages by id. The view owning the DAG implements it;
// tests may substitute their own.
type Resolver interface {
	Get(id models.MessageID) (*models.Message, bool)
}

// Justification is the set of message references an estimate was computed
// from.
type Justification []models.MessageID

// Contains reports whether the justification directly references the id.
func (j Justification) Contains(id models.MessageID) bool {
	for _, ref := range j {
		if ref == id {
			return true
		}
	}
	return false
}

// TransitiveView computes the causal closure of the justification: every
// message reachable from its references. Each ancestor is resolved and
// visited exactly once.
func TransitiveView(j Justification, r Resolver) map[models.MessageID]struct{} {
	visited := make(map[models.MessageID]struct{})
	queue := append([]models.MessageID(nil), j...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := visited[id]; ok {
			continue
		}
		msg, ok := r.Get(id)
		if !ok {
			continue
		}
		visited[id] = struct{}{}
		queue = append(queue, msg.Justification()...)
	}
	return visited
}

// LatestFromJustification reconstructs the per-validator latest messages
// that were visible inside a justification. It is how a message's author
// recovers "what I knew" from the flat reference set.
func LatestFromJustification(j Justification, r Resolver) *LatestMessages {
	latest := NewLatestMessages()
	queue := append([]models.MessageID(nil), j...)
	enqueued := make(map[models.MessageID]struct{}, len(queue))
	for _, id := range queue {
		enqueued[id] = struct{}{}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		msg, ok := r.Get(id)
		if !ok {
			continue
		}
		if latest.Observe(msg, r) {
			for _, ref := range msg.Justification() {
				if _, ok := enqueued[ref]; ok {
					continue
				}
				enqueued[ref] = struct{}{}
				queue = append(queue, ref)
			}
		}
	}
	return latest
}
