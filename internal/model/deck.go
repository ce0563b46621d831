package model

// DeckSize is the number of cards in a single deck
const DeckSize = 52

// Deck is an ordered stack of cards; the top of the deck is the last element
type Deck struct {
	Cards []Card
}

// NewOrderedDeck returns the full 52-card deck in suit-major order
func NewOrderedDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range AllSuits() {
		for _, rank := range AllRanks() {
			cards = append(cards, Card{Suit: suit, Rank: rank})
		}
	}
	return &Deck{Cards: cards}
}

// Draw removes and returns the top card
func (d *Deck) Draw() (Card, error) {
	if len(d.Cards) == 0 {
		return Card{}, ErrDeckExhausted
	}
	last := len(d.Cards) - 1
	card := d.Cards[last]
	d.Cards = d.Cards[:last]
	return card, nil
}

// Remaining returns the number of undrawn cards
func (d *Deck) Remaining() int {
	return len(d.Cards)
}

// Clone returns an independent copy of the deck
func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	cards := make([]Card, len(d.Cards))
	copy(cards, d.Cards)
	return &Deck{Cards: cards}
}
