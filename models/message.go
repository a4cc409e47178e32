package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// MessageID is the content hash of a message, used for identity,
// deduplication and justification edges.
type MessageID string

// Message is a node of the justified-message DAG. It records which validator
// published which estimate, and the set of prior messages the estimate was
// computed from. A message is immutable once created; two messages with the
// same sender, estimate and justification are the same message.
type Message struct {
	sender        ValidatorID
	estimate      Estimate
	justification []MessageID
	id            MessageID
}

// hashedMessage is the canonical form a message id is computed over. The
// justification is sorted so the hash does not depend on reference order.
type hashedMessage struct {
	Sender        string   `cbor:"sender"`
	Estimate      []byte   `cbor:"estimate"`
	Justification []string `cbor:"justification"`
}

// NewMessage builds a message and derives its content id. The justification
// references are deduplicated and sorted; resolvability of the references is
// checked at insertion time by the view holding the DAG.
func NewMessage(sender ValidatorID, estimate Estimate, justification []MessageID) (*Message, error) {
	refs := dedupSorted(justification)

	estBytes, err := estimate.EstimateBytes()
	if err != nil {
		return nil, fmt.Errorf("encoding estimate: %w", err)
	}

	wire := hashedMessage{
		Sender:        string(sender),
		Estimate:      estBytes,
		Justification: make([]string, len(refs)),
	}
	for i, ref := range refs {
		wire.Justification[i] = string(ref)
	}

	enc, err := MarshalCanonical(wire)
	if err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}
	sum := sha256.Sum256(enc)

	return &Message{
		sender:        sender,
		estimate:      estimate,
		justification: refs,
		id:            MessageID(hex.EncodeToString(sum[:])),
	}, nil
}

// ID returns the content hash of the message.
func (m *Message) ID() MessageID {
	return m.id
}

// Sender returns the validator that published the message.
func (m *Message) Sender() ValidatorID {
	return m.sender
}

// Estimate returns the decision value the message carries.
func (m *Message) Estimate() Estimate {
	return m.estimate
}

// Justification returns a copy of the message's justification references.
func (m *Message) Justification() []MessageID {
	out := make([]MessageID, len(m.justification))
	copy(out, m.justification)
	return out
}

// IsGenesis reports whether the message has an empty justification.
func (m *Message) IsGenesis() bool {
	return len(m.justification) == 0
}

func dedupSorted(ids []MessageID) []MessageID {
	seen := make(map[MessageID]struct{}, len(ids))
	out := make([]MessageID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
