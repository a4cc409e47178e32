package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casper-project/models"
)

type fakeEstimate string

func (f fakeEstimate) EstimateBytes() ([]byte, error) {
	return models.MarshalCanonical(string(f))
}

func (f fakeEstimate) Equal(other models.Estimate) bool {
	o, ok := other.(fakeEstimate)
	return ok && o == f
}

func TestMessageIDIsContentDerived(t *testing.T) {
	m1, err := models.NewMessage("alice", fakeEstimate("yes"), nil)
	require.NoError(t, err)
	m2, err := models.NewMessage("alice", fakeEstimate("yes"), nil)
	require.NoError(t, err)

	assert.Equal(t, m1.ID(), m2.ID(), "identical content must produce the same id")
}

func TestMessageIDDistinguishesContent(t *testing.T) {
	base, err := models.NewMessage("alice", fakeEstimate("yes"), nil)
	require.NoError(t, err)

	otherSender, err := models.NewMessage("bob", fakeEstimate("yes"), nil)
	require.NoError(t, err)
	otherEstimate, err := models.NewMessage("alice", fakeEstimate("no"), nil)
	require.NoError(t, err)
	otherRefs, err := models.NewMessage("alice", fakeEstimate("yes"), []models.MessageID{base.ID()})
	require.NoError(t, err)

	assert.NotEqual(t, base.ID(), otherSender.ID())
	assert.NotEqual(t, base.ID(), otherEstimate.ID())
	assert.NotEqual(t, base.ID(), otherRefs.ID())
}

func TestMessageJustificationOrderInsensitive(t *testing.T) {
	a, err := models.NewMessage("alice", fakeEstimate("a"), nil)
	require.NoError(t, err)
	b, err := models.NewMessage("bob", fakeEstimate("b"), nil)
	require.NoError(t, err)

	m1, err := models.NewMessage("carol", fakeEstimate("c"), []models.MessageID{a.ID(), b.ID()})
	require.NoError(t, err)
	m2, err := models.NewMessage("carol", fakeEstimate("c"), []models.MessageID{b.ID(), a.ID(), b.ID()})
	require.NoError(t, err)

	assert.Equal(t, m1.ID(), m2.ID(), "justification order and duplicates must not change the id")
	assert.Equal(t, m1.Justification(), m2.Justification())
}

func TestMessageJustificationIsCopied(t *testing.T) {
	a, err := models.NewMessage("alice", fakeEstimate("a"), nil)
	require.NoError(t, err)
	m, err := models.NewMessage("bob", fakeEstimate("b"), []models.MessageID{a.ID()})
	require.NoError(t, err)

	refs := m.Justification()
	refs[0] = "mutated"
	assert.Equal(t, []models.MessageID{a.ID()}, m.Justification(), "mutating the returned slice must not affect the message")
}

func TestIsGenesis(t *testing.T) {
	g, err := models.NewMessage("alice", fakeEstimate("a"), nil)
	require.NoError(t, err)
	assert.True(t, g.IsGenesis())

	m, err := models.NewMessage("bob", fakeEstimate("b"), []models.MessageID{g.ID()})
	require.NoError(t, err)
	assert.False(t, m.IsGenesis())
}
