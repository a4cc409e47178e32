// Package blockchain is a chain-structured estimate: messages carry block
// references and the estimator selects the head of the heaviest observed
// chain (GHOST).
package blockchain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"casper-project/models"
)

// Block is a node of a block tree. A genesis block has no parent. Blocks are
// immutable and content addressed, like messages.
type Block struct {
	parent *Block
	sender models.ValidatorID
	id     string
}

type hashedBlock struct {
	Sender string `cbor:"sender"`
	Parent string `cbor:"parent"`
}

// NewBlock creates a block on top of parent; a nil parent creates a genesis
// block.
func NewBlock(parent *Block, sender models.ValidatorID) (*Block, error) {
	parentID := ""
	if parent != nil {
		parentID = parent.id
	}
	enc, err := models.MarshalCanonical(hashedBlock{Sender: string(sender), Parent: parentID})
	if err != nil {
		return nil, fmt.Errorf("encoding block: %w", err)
	}
	sum := sha256.Sum256(enc)
	return &Block{parent: parent, sender: sender, id: hex.EncodeToString(sum[:])}, nil
}

// ID returns the content hash of the block.
func (b *Block) ID() string {
	return b.id
}

// Sender returns the validator that produced the block.
func (b *Block) Sender() models.ValidatorID {
	return b.sender
}

// Parent returns the previous block, or nil for a genesis block.
func (b *Block) Parent() *Block {
	return b.parent
}

// EstimateBytes returns the canonical encoding of the block reference.
func (b *Block) EstimateBytes() ([]byte, error) {
	parentID := ""
	if b.parent != nil {
		parentID = b.parent.id
	}
	return models.MarshalCanonical(hashedBlock{Sender: string(b.sender), Parent: parentID})
}

// Equal reports whether the other estimate is the same block.
func (b *Block) Equal(other models.Estimate) bool {
	o, ok := other.(*Block)
	return ok && o != nil && o.id == b.id
}

// IsMember reports whether b belongs to the chain ending at tip.
func (b *Block) IsMember(tip *Block) bool {
	for cursor := tip; cursor != nil; cursor = cursor.parent {
		if cursor.id == b.id {
			return true
		}
	}
	return false
}

// Height returns the number of ancestors of the block.
func (b *Block) Height() int {
	h := 0
	for cursor := b.parent; cursor != nil; cursor = cursor.parent {
		h++
	}
	return h
}
