package mocks

import (
	"sync"

	"github.com/mcoot/blackjack-go/internal/model"
)

// MockDeckSource hands out stacked decks. Cards are listed in deal order:
// the first card given to QueueDeck is the first one drawn. When nothing is
// queued an ordered 52-card deck is returned.
type MockDeckSource struct {
	mu    sync.Mutex
	decks [][]model.Card
	Dealt int
}

// NewMockDeckSource creates a MockDeckSource with no stacked decks
func NewMockDeckSource() *MockDeckSource {
	return &MockDeckSource{}
}

// QueueDeck stacks a deck to be returned by the next NewDeck call
func (m *MockDeckSource) QueueDeck(cards ...model.Card) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decks = append(m.decks, cards)
}

// NewDeck returns the next stacked deck
func (m *MockDeckSource) NewDeck() *model.Deck {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dealt++
	if len(m.decks) == 0 {
		return model.NewOrderedDeck()
	}
	next := m.decks[0]
	m.decks = m.decks[1:]

	// Deck draws from the end of the slice
	reversed := make([]model.Card, len(next))
	for i, c := range next {
		reversed[len(next)-1-i] = c
	}
	return &model.Deck{Cards: reversed}
}

// Cards builds cards from labels like "A", "10", "K" using spades.
// A label may carry a suit prefix: "h:Q" is the queen of hearts.
func Cards(labels ...string) []model.Card {
	out := make([]model.Card, 0, len(labels))
	for _, l := range labels {
		suit := model.SuitSpades
		if len(l) > 2 && l[1] == ':' {
			switch l[0] {
			case 'h':
				suit = model.SuitHearts
			case 'd':
				suit = model.SuitDiamonds
			case 'c':
				suit = model.SuitClubs
			}
			l = l[2:]
		}
		out = append(out, model.Card{Suit: suit, Rank: model.Rank(l)})
	}
	return out
}
