package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedDeckDrawsEveryCardOnce(t *testing.T) {
	deck := NewOrderedDeck()
	require.Equal(t, DeckSize, deck.Remaining())

	seen := make(map[Card]bool)
	for i := 0; i < DeckSize; i++ {
		c, err := deck.Draw()
		require.NoError(t, err)
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}

	assert.Len(t, seen, DeckSize)
	for _, suit := range AllSuits() {
		for _, rank := range AllRanks() {
			assert.True(t, seen[Card{Suit: suit, Rank: rank}])
		}
	}

	_, err := deck.Draw()
	assert.ErrorIs(t, err, ErrDeckExhausted)
}

func TestDeckDrawTakesFromTop(t *testing.T) {
	deck := &Deck{Cards: []Card{card(RankTwo), card(RankKing)}}

	c, err := deck.Draw()
	require.NoError(t, err)
	assert.Equal(t, RankKing, c.Rank)
	assert.Equal(t, 1, deck.Remaining())
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "A♠", Card{Suit: SuitSpades, Rank: RankAce}.String())
	assert.Equal(t, "10♥", Card{Suit: SuitHearts, Rank: RankTen}.String())
}
