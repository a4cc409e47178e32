package repository

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"casper-project/db"
	"casper-project/models"
)

var messagePrefix = []byte("message:")

// StoredMessage is the journal form of a message. The estimate is kept as
// its canonical byte encoding, so the journal works for any estimate type;
// the daemon that owns the journal knows how to decode it.
type StoredMessage struct {
	Seq           uint64   `cbor:"seq"`
	Sender        string   `cbor:"sender"`
	Estimate      []byte   `cbor:"estimate"`
	Justification []string `cbor:"justification"`
}

// FromMessage converts a DAG message into its journal form.
func FromMessage(msg *models.Message) (*StoredMessage, error) {
	estBytes, err := msg.Estimate().EstimateBytes()
	if err != nil {
		return nil, err
	}
	refs := msg.Justification()
	stored := &StoredMessage{
		Sender:        string(msg.Sender()),
		Estimate:      estBytes,
		Justification: make([]string, len(refs)),
	}
	for i, ref := range refs {
		stored.Justification[i] = string(ref)
	}
	return stored, nil
}

// Refs returns the justification references as message ids.
func (m *StoredMessage) Refs() []models.MessageID {
	refs := make([]models.MessageID, len(m.Justification))
	for i, ref := range m.Justification {
		refs[i] = models.MessageID(ref)
	}
	return refs
}

// It abstracts the storage layer from the consensus logic
type MessageRepositoryInterface interface {
	AppendMessage(m *StoredMessage) error
	AllMessages() ([]*StoredMessage, error)
}

// MessageRepository implements the MessageRepositoryInterface as an
// append-only journal over LevelDB. Messages are keyed by sequence number,
// so iterating the journal replays the original insertion order and a
// restarted observer can rebuild its view.
type MessageRepository struct {
	db      *db.LevelDB
	mu      sync.Mutex
	nextSeq uint64
}

// NewMessageRepository opens the journal and positions the sequence counter
// after the last stored message.
func NewMessageRepository(ldb *db.LevelDB) (*MessageRepository, error) {
	repo := &MessageRepository{db: ldb}
	iter := ldb.NewPrefixIterator(messagePrefix)
	defer iter.Release()
	for iter.Next() {
		var stored StoredMessage
		if err := cbor.Unmarshal(iter.Value(), &stored); err != nil {
			return nil, fmt.Errorf("decoding journal entry: %w", err)
		}
		if stored.Seq >= repo.nextSeq {
			repo.nextSeq = stored.Seq + 1
		}
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return repo, nil
}

// AppendMessage assigns the next sequence number and stores the message.
func (r *MessageRepository) AppendMessage(m *StoredMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.Seq = r.nextSeq
	data, err := cbor.Marshal(m)
	if err != nil {
		return err
	}
	if err := r.db.Put(seqKey(m.Seq), data); err != nil {
		return err
	}
	r.nextSeq++
	return nil
}

// AllMessages returns every stored message in journal order.
func (r *MessageRepository) AllMessages() ([]*StoredMessage, error) {
	iter := r.db.NewPrefixIterator(messagePrefix)
	defer iter.Release()

	var messages []*StoredMessage
	for iter.Next() {
		var stored StoredMessage
		if err := cbor.Unmarshal(iter.Value(), &stored); err != nil {
			return nil, fmt.Errorf("decoding journal entry: %w", err)
		}
		messages = append(messages, &stored)
	}
	return messages, iter.Error()
}

func seqKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%016x", messagePrefix, seq))
}
