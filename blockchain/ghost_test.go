package blockchain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casper-project/blockchain"
	"casper-project/justification"
	"casper-project/models"
	"casper-project/view"
	"casper-project/weights"
)

func mustBlock(t *testing.T, parent *blockchain.Block, sender models.ValidatorID) *blockchain.Block {
	t.Helper()
	b, err := blockchain.NewBlock(parent, sender)
	require.NoError(t, err)
	return b
}

func blockMessage(t *testing.T, v *view.View, sender models.ValidatorID, b *blockchain.Block, refs ...models.MessageID) *models.Message {
	t.Helper()
	msg, err := models.NewMessage(sender, b, refs)
	require.NoError(t, err)
	_, err = v.Insert(msg)
	require.NoError(t, err)
	return msg
}

func TestBlockMembership(t *testing.T) {
	genesis := mustBlock(t, nil, "alice")
	b1 := mustBlock(t, genesis, "bob")
	b2 := mustBlock(t, b1, "carol")
	fork := mustBlock(t, genesis, "dave")

	assert.True(t, genesis.IsMember(b2))
	assert.True(t, b1.IsMember(b2))
	assert.True(t, b2.IsMember(b2))
	assert.False(t, b2.IsMember(b1), "membership follows ancestry, not the other way")
	assert.False(t, b1.IsMember(fork))
}

func TestBlockIdentity(t *testing.T) {
	genesis := mustBlock(t, nil, "alice")
	again := mustBlock(t, nil, "alice")
	other := mustBlock(t, nil, "bob")

	assert.True(t, genesis.Equal(again))
	assert.False(t, genesis.Equal(other))
	assert.Equal(t, 0, genesis.Height())
	assert.Equal(t, 1, mustBlock(t, genesis, "bob").Height())
}

func TestGhostFollowsHeaviestSubtree(t *testing.T) {
	// genesis
	//   |- b1 (bob's tip, weight 1)
	//   |- c1 - c2 (carol's and dave's tips, weight 1+2)
	genesis := mustBlock(t, nil, "alice")
	b1 := mustBlock(t, genesis, "bob")
	c1 := mustBlock(t, genesis, "carol")
	c2 := mustBlock(t, c1, "dave")

	v := view.New()
	latest := justification.LatestHonest{
		"bob":   blockMessage(t, v, "bob", b1),
		"carol": blockMessage(t, v, "carol", c1),
		"dave":  blockMessage(t, v, "dave", c2),
	}
	table := weights.NewTable(map[models.ValidatorID]weights.Weight{
		"bob":   2,
		"carol": 1,
		"dave":  2,
	})

	est, err := blockchain.Ghost{}.Estimate(latest, table, v)
	require.NoError(t, err)
	head, ok := est.(*blockchain.Block)
	require.True(t, ok)
	assert.Equal(t, c2.ID(), head.ID(), "the c-branch carries weight 3 against b1's 2")
}

func TestGhostHeavierFork(t *testing.T) {
	genesis := mustBlock(t, nil, "alice")
	left := mustBlock(t, genesis, "bob")
	right := mustBlock(t, genesis, "carol")

	v := view.New()
	latest := justification.LatestHonest{
		"bob":   blockMessage(t, v, "bob", left),
		"carol": blockMessage(t, v, "carol", right),
	}
	table := weights.NewTable(map[models.ValidatorID]weights.Weight{
		"bob":   3,
		"carol": 1,
	})

	est, err := blockchain.Ghost{}.Estimate(latest, table, v)
	require.NoError(t, err)
	assert.Equal(t, left.ID(), est.(*blockchain.Block).ID())
}

func TestGhostTieBreaksOnBlockHash(t *testing.T) {
	genesis := mustBlock(t, nil, "alice")
	left := mustBlock(t, genesis, "bob")
	right := mustBlock(t, genesis, "carol")

	expected := left
	if right.ID() < left.ID() {
		expected = right
	}

	v := view.New()
	latest := justification.LatestHonest{
		"bob":   blockMessage(t, v, "bob", left),
		"carol": blockMessage(t, v, "carol", right),
	}
	table := weights.NewTable(map[models.ValidatorID]weights.Weight{
		"bob":   1,
		"carol": 1,
	})

	est, err := blockchain.Ghost{}.Estimate(latest, table, v)
	require.NoError(t, err)
	assert.Equal(t, expected.ID(), est.(*blockchain.Block).ID())
}

func TestGhostAgreesIsChainMembership(t *testing.T) {
	genesis := mustBlock(t, nil, "alice")
	b1 := mustBlock(t, genesis, "bob")
	fork := mustBlock(t, genesis, "carol")

	g := blockchain.Ghost{}
	assert.True(t, g.Agrees(genesis, b1))
	assert.True(t, g.Agrees(b1, b1))
	assert.False(t, g.Agrees(b1, fork))
	assert.False(t, g.Agrees(b1, genesis))
}
