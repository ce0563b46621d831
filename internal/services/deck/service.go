package deck

import (
	"github.com/mcoot/blackjack-go/internal/dependencies/random"
	"github.com/mcoot/blackjack-go/internal/model"
)

// Source produces a fresh 52-card deck for each round
type Source interface {
	NewDeck() *model.Deck
}

// Service builds shuffled decks from an injected Random
type Service struct {
	random random.Random
}

var _ Source = (*Service)(nil)

// New creates a deck service
func New(random random.Random) *Service {
	return &Service{random: random}
}

// NewDeck returns a uniformly shuffled standard deck
func (s *Service) NewDeck() *model.Deck {
	d := model.NewOrderedDeck()
	random.Shuffle(s.random, len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
	return d
}
