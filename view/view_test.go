package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casper-project/models"
	"casper-project/view"
)

type opinion string

func (o opinion) EstimateBytes() ([]byte, error) {
	return models.MarshalCanonical(string(o))
}

func (o opinion) Equal(other models.Estimate) bool {
	v, ok := other.(opinion)
	return ok && v == o
}

func mustMessage(t *testing.T, sender models.ValidatorID, est string, refs ...models.MessageID) *models.Message {
	t.Helper()
	msg, err := models.NewMessage(sender, opinion(est), refs)
	require.NoError(t, err)
	return msg
}

func mustInsert(t *testing.T, v *view.View, msg *models.Message) {
	t.Helper()
	inserted, err := v.Insert(msg)
	require.NoError(t, err)
	require.True(t, inserted)
}

func TestInsertRejectsDanglingJustification(t *testing.T) {
	v := view.New()
	ghost := mustMessage(t, "alice", "x")
	msg := mustMessage(t, "bob", "y", ghost.ID())

	inserted, err := v.Insert(msg)
	assert.ErrorIs(t, err, view.ErrInvalidJustification)
	assert.False(t, inserted)
	assert.Zero(t, v.Len(), "a rejected insert must leave the view untouched")
}

func TestInsertIsIdempotent(t *testing.T) {
	v := view.New()
	msg := mustMessage(t, "alice", "x")
	mustInsert(t, v, msg)

	inserted, err := v.Insert(msg)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, 1, v.Len())
}

func TestTransitiveViewDiamond(t *testing.T) {
	// g <- a, g <- b, a+b <- c: g must appear once in c's closure
	v := view.New()
	g := mustMessage(t, "alice", "g")
	mustInsert(t, v, g)
	a := mustMessage(t, "alice", "a", g.ID())
	mustInsert(t, v, a)
	b := mustMessage(t, "bob", "b", g.ID())
	mustInsert(t, v, b)
	c := mustMessage(t, "carol", "c", a.ID(), b.ID())
	mustInsert(t, v, c)

	closure, err := v.TransitiveView(c.ID())
	require.NoError(t, err)
	assert.Len(t, closure, 3)
	assert.Contains(t, closure, g.ID())
	assert.Contains(t, closure, a.ID())
	assert.Contains(t, closure, b.ID())
}

func TestTransitiveViewNeverContainsSelf(t *testing.T) {
	v := view.New()
	g := mustMessage(t, "alice", "g")
	mustInsert(t, v, g)
	a := mustMessage(t, "alice", "a", g.ID())
	mustInsert(t, v, a)
	b := mustMessage(t, "alice", "b", a.ID())
	mustInsert(t, v, b)

	for _, msg := range v.Messages() {
		closure, err := v.TransitiveView(msg.ID())
		require.NoError(t, err)
		assert.NotContains(t, closure, msg.ID(), "acyclicity: a message cannot be in its own causal past")
	}
}

func TestDepends(t *testing.T) {
	v := view.New()
	g := mustMessage(t, "alice", "g")
	mustInsert(t, v, g)
	a := mustMessage(t, "bob", "a", g.ID())
	mustInsert(t, v, a)

	depends, err := v.Depends(a.ID(), g.ID())
	require.NoError(t, err)
	assert.True(t, depends)

	depends, err = v.Depends(g.ID(), a.ID())
	require.NoError(t, err)
	assert.False(t, depends)
}

func TestViewGrowsMonotonically(t *testing.T) {
	v := view.New()
	g := mustMessage(t, "alice", "g")
	mustInsert(t, v, g)
	a := mustMessage(t, "bob", "a", g.ID())
	mustInsert(t, v, a)

	before := v.Messages()

	// a failed insert must not disturb existing content
	ghost := mustMessage(t, "carol", "x")
	bad := mustMessage(t, "carol", "y", ghost.ID())
	_, err := v.Insert(bad)
	require.Error(t, err)

	after := v.Messages()
	require.Equal(t, len(before), len(after))
	for i := range before {
		assert.Equal(t, before[i].ID(), after[i].ID())
		assert.Equal(t, before[i].Justification(), after[i].Justification())
	}
}
