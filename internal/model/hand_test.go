package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(rank Rank) Card {
	return Card{Suit: SuitSpades, Rank: rank}
}

func cards(ranks ...Rank) []Card {
	out := make([]Card, len(ranks))
	for i, r := range ranks {
		out[i] = card(r)
	}
	return out
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		cards     []Card
		total     int
		soft      bool
		blackjack bool
		bust      bool
	}{
		{"empty", nil, 0, false, false, false},
		{"pair of tens", cards(RankTen, RankKing), 20, false, false, false},
		{"natural", cards(RankAce, RankKing), 21, true, true, false},
		{"soft seventeen", cards(RankAce, RankSix), 17, true, false, false},
		{"two aces", cards(RankAce, RankAce), 12, true, false, false},
		{"ace rescued from bust", cards(RankAce, RankFive, RankEight), 14, false, false, false},
		{"three card twenty one is not blackjack", cards(RankSeven, RankSeven, RankSeven), 21, false, false, false},
		{"bust", cards(RankTen, RankFive, RankEight), 23, false, false, true},
		{"four aces", cards(RankAce, RankAce, RankAce, RankAce), 14, true, false, false},
		{"aces all hard then bust", cards(RankAce, RankAce, RankKing, RankQueen), 22, false, false, true},
		{"face cards count ten", cards(RankJack, RankQueen), 20, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(tt.cards)
			assert.Equal(t, tt.total, v.Total)
			assert.Equal(t, tt.soft, v.Soft)
			assert.Equal(t, tt.blackjack, v.Blackjack)
			assert.Equal(t, tt.bust, v.Bust)
		})
	}
}

func TestEvaluateIsPure(t *testing.T) {
	in := cards(RankAce, RankAce, RankNine)
	snapshot := make([]Card, len(in))
	copy(snapshot, in)

	first := Evaluate(in)
	second := Evaluate(in)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, in)
}

func TestEvaluateReportsMinimumWhenBust(t *testing.T) {
	// Every ace already dropped to 1; nothing else can be reinterpreted
	v := Evaluate(cards(RankAce, RankKing, RankQueen, RankTwo))
	assert.Equal(t, 23, v.Total)
	assert.True(t, v.Bust)
}

func TestHandAddRecomputes(t *testing.T) {
	h := NewHand(card(RankAce), card(RankSix))
	require.Equal(t, 17, h.Total)
	require.True(t, h.IsSoft)

	h.Add(card(RankTen))
	assert.Equal(t, 17, h.Total)
	assert.False(t, h.IsSoft)
	assert.False(t, h.IsBust)

	h.Add(card(RankFive))
	assert.Equal(t, 22, h.Total)
	assert.True(t, h.IsBust)
	assert.Len(t, h.Cards, 4)
}

func TestHandIsPair(t *testing.T) {
	assert.True(t, NewHand(card(RankEight), card(RankEight)).IsPair())
	assert.True(t, NewHand(card(RankTen), card(RankQueen)).IsPair())
	assert.False(t, NewHand(card(RankAce), card(RankKing)).IsPair())
	assert.False(t, NewHand(card(RankFive), card(RankFive), card(RankTwo)).IsPair())
}

func TestHandCloneIsIndependent(t *testing.T) {
	h := NewHand(card(RankTwo), card(RankThree))
	c := h.Clone()
	c.Add(card(RankFour))

	assert.Len(t, h.Cards, 2)
	assert.Equal(t, 5, h.Total)
	assert.Len(t, c.Cards, 3)
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{"hit", ActionHit},
		{"STAND", ActionStand},
		{" double ", ActionDouble},
		{"split", ActionSplit},
	}
	for _, tt := range tests {
		got, err := ParseAction(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.NotEmpty(t, got.String())
	}

	_, err := ParseAction("surrender")
	assert.ErrorIs(t, err, ErrInvalidAction)
}
