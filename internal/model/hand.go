package model

// BlackjackTotal is the best possible hand total
const BlackjackTotal = 21

// HandValue is the evaluated score of a sequence of cards
type HandValue struct {
	Total     int
	Soft      bool // at least one ace is still counted as 11
	Blackjack bool
	Bust      bool
}

// Evaluate scores a sequence of cards. Aces count 11 until the total
// would bust, then drop to 1 one at a time. The input is never modified.
func Evaluate(cards []Card) HandValue {
	total := 0
	softAces := 0
	for _, c := range cards {
		total += c.Rank.Value()
		if c.Rank == RankAce {
			softAces++
		}
	}

	for total > BlackjackTotal && softAces > 0 {
		total -= 10
		softAces--
	}

	return HandValue{
		Total:     total,
		Soft:      softAces > 0,
		Blackjack: len(cards) == 2 && total == BlackjackTotal,
		Bust:      total > BlackjackTotal,
	}
}

// Hand is a sequence of cards plus fields derived from them.
// Derived fields are always recomputed from Cards.
type Hand struct {
	Cards       []Card
	Total       int
	IsSoft      bool
	IsBlackjack bool
	IsBust      bool
}

// NewHand builds a hand from the given cards
func NewHand(cards ...Card) Hand {
	h := Hand{Cards: make([]Card, 0, len(cards)+1)}
	h.Cards = append(h.Cards, cards...)
	h.recompute()
	return h
}

// Add appends a card and re-evaluates the hand
func (h *Hand) Add(card Card) {
	h.Cards = append(h.Cards, card)
	h.recompute()
}

// Len returns the number of cards in the hand
func (h Hand) Len() int {
	return len(h.Cards)
}

// IsPair reports whether the hand is exactly two cards of equal value.
// 10, J, Q and K all count as equal.
func (h Hand) IsPair() bool {
	return len(h.Cards) == 2 && h.Cards[0].Rank.Value() == h.Cards[1].Rank.Value()
}

// Clone returns an independent copy of the hand
func (h Hand) Clone() Hand {
	cards := make([]Card, len(h.Cards))
	copy(cards, h.Cards)
	h.Cards = cards
	return h
}

func (h *Hand) recompute() {
	v := Evaluate(h.Cards)
	h.Total = v.Total
	h.IsSoft = v.Soft
	h.IsBlackjack = v.Blackjack
	h.IsBust = v.Bust
}
