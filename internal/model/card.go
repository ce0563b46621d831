package model

// Suit is one of the four French suits
type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
)

// Symbol returns the suit glyph used in card labels
func (s Suit) Symbol() string {
	switch s {
	case SuitHearts:
		return "♥"
	case SuitDiamonds:
		return "♦"
	case SuitClubs:
		return "♣"
	case SuitSpades:
		return "♠"
	default:
		return "?"
	}
}

// Rank is a card rank: A, 2-10, J, Q, K
type Rank string

const (
	RankAce   Rank = "A"
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "10"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
)

// Value returns the blackjack value of the rank, counting an ace as 11
func (r Rank) Value() int {
	switch r {
	case RankAce:
		return 11
	case RankTwo:
		return 2
	case RankThree:
		return 3
	case RankFour:
		return 4
	case RankFive:
		return 5
	case RankSix:
		return 6
	case RankSeven:
		return 7
	case RankEight:
		return 8
	case RankNine:
		return 9
	case RankTen, RankJack, RankQueen, RankKing:
		return 10
	default:
		return 0
	}
}

// AllSuits returns the suits in deck-building order
func AllSuits() []Suit {
	return []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}
}

// AllRanks returns the ranks in deck-building order
func AllRanks() []Rank {
	return []Rank{
		RankAce, RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven,
		RankEight, RankNine, RankTen, RankJack, RankQueen, RankKing,
	}
}

// Card is an immutable playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// String renders the card as rank followed by suit glyph, e.g. "10♥"
func (c Card) String() string {
	return string(c.Rank) + c.Suit.Symbol()
}
