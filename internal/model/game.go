package model

import (
	"fmt"
	"strings"
)

// Phase is the stage of a blackjack round
type Phase string

const (
	PhasePlayerTurn Phase = "player-turn" // Player(s) acting on their hands
	PhaseDealerTurn Phase = "dealer-turn" // Dealer revealing and drawing
	PhaseResult     Phase = "result"      // Round settled, awaiting restart
)

// Outcome is the result of a single hand against the dealer
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeDraw Outcome = "draw"
	OutcomeBust Outcome = "bust"
)

// Status is the overall round status reported to the player
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWin     Status = Status(OutcomeWin)
	StatusLose    Status = Status(OutcomeLose)
	StatusDraw    Status = Status(OutcomeDraw)
	StatusBust    Status = Status(OutcomeBust)
)

// Action is a player decision on the active hand
type Action int

const (
	ActionHit Action = iota
	ActionStand
	ActionDouble
	ActionSplit
)

// String returns the wire name of the action
func (a Action) String() string {
	switch a {
	case ActionHit:
		return "hit"
	case ActionStand:
		return "stand"
	case ActionDouble:
		return "double"
	case ActionSplit:
		return "split"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction converts a wire name into an Action
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hit":
		return ActionHit, nil
	case "stand":
		return ActionStand, nil
	case "double", "double-down", "doubledown":
		return ActionDouble, nil
	case "split":
		return ActionSplit, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// PlayerHand is one of a player's hands together with its wager
type PlayerHand struct {
	Hand
	Bet     int
	Doubled bool
	Done    bool // closed by stand, bust, or double
}

// Clone returns an independent copy of the player hand
func (h PlayerHand) Clone() PlayerHand {
	h.Hand = h.Hand.Clone()
	return h
}

// Player is the single-player participant.
// Bet is the total currently wagered across all hands; it is already
// deducted from Balance and only returns to it through payouts.
type Player struct {
	Name        string
	Hands       []PlayerHand
	Balance     int
	Bet         int
	SplitActive bool
	ActiveHand  int
}

// Active returns the hand currently receiving actions, or nil
func (p *Player) Active() *PlayerHand {
	if p.ActiveHand < 0 || p.ActiveHand >= len(p.Hands) {
		return nil
	}
	return &p.Hands[p.ActiveHand]
}

// Dealer holds the dealer's visible hand and, while players act, the hole card
type Dealer struct {
	Hand       Hand
	HiddenCard *Card
}

// Reveal moves the hole card into the visible hand
func (d *Dealer) Reveal() {
	if d.HiddenCard == nil {
		return
	}
	d.Hand.Add(*d.HiddenCard)
	d.HiddenCard = nil
}

// Clone returns an independent copy of the dealer
func (d Dealer) Clone() Dealer {
	d.Hand = d.Hand.Clone()
	if d.HiddenCard != nil {
		c := *d.HiddenCard
		d.HiddenCard = &c
	}
	return d
}

// HandResult is the settled outcome of one hand
type HandResult struct {
	Outcome    Outcome
	Multiplier float64
	Bet        int
	Payout     int
}

// GameState is a single-player round
type GameState struct {
	Phase         Phase
	Status        Status
	Round         int
	Deck          *Deck
	Dealer        Dealer
	Player        Player
	CanDoubleDown bool
	CanSplit      bool
	Results       []HandResult // one per hand once Phase is result
}

// Clone returns an independent deep copy of the game state
func (g *GameState) Clone() *GameState {
	if g == nil {
		return nil
	}
	out := *g
	out.Deck = g.Deck.Clone()
	out.Dealer = g.Dealer.Clone()
	out.Player.Hands = make([]PlayerHand, len(g.Player.Hands))
	for i, h := range g.Player.Hands {
		out.Player.Hands[i] = h.Clone()
	}
	if g.Results != nil {
		out.Results = make([]HandResult, len(g.Results))
		copy(out.Results, g.Results)
	}
	return &out
}
