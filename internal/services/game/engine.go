package game

import (
	"log/slog"
	"strings"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/deck"
	"github.com/mcoot/blackjack-go/internal/services/scoring"
)

// DealerStandTotal is the total at which the dealer stops drawing.
// Soft and hard totals are treated alike.
const DealerStandTotal = 17

// Engine runs the single-player round state machine.
// Engine methods mutate the GameState they are given; callers that need
// all-or-nothing semantics pass a clone and keep it only on success.
type Engine struct {
	decks   deck.Source
	scoring scoring.ServiceInterface
	logger  *slog.Logger
}

// NewEngine creates a new Engine
func NewEngine(decks deck.Source, scoring scoring.ServiceInterface, logger *slog.Logger) *Engine {
	return &Engine{
		decks:   decks,
		scoring: scoring,
		logger:  logger,
	}
}

// ValidateWager checks a bet against the funds available to cover it
func ValidateWager(bet, balance int) error {
	if bet <= 0 {
		return model.ErrInvalidBet
	}
	if balance < 0 {
		return model.ErrInvalidBalance
	}
	if bet > balance {
		return model.ErrInsufficientBalance
	}
	return nil
}

// NewRound deals a fresh round. The bet is deducted from balance before
// any card is drawn.
func (e *Engine) NewRound(name string, bet, balance int) (*model.GameState, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrInvalidPlayerName
	}
	if err := ValidateWager(bet, balance); err != nil {
		return nil, err
	}
	return e.deal(name, bet, balance, 1)
}

// Restart begins the next round using the balance left by the previous one
func (e *Engine) Restart(prev *model.GameState, bet int) (*model.GameState, error) {
	if prev == nil {
		return nil, model.ErrNoActiveGame
	}
	if prev.Phase != model.PhaseResult {
		return nil, model.ErrRoundInProgress
	}
	if err := ValidateWager(bet, prev.Player.Balance); err != nil {
		return nil, err
	}
	return e.deal(prev.Player.Name, bet, prev.Player.Balance, prev.Round+1)
}

func (e *Engine) deal(name string, bet, balance, round int) (*model.GameState, error) {
	d := e.decks.NewDeck()

	// Player, dealer up card, player, dealer hole card
	dealt, err := DrawN(d, 4)
	if err != nil {
		return nil, err
	}

	hole := dealt[3]
	state := &model.GameState{
		Phase:  model.PhasePlayerTurn,
		Status: model.StatusPlaying,
		Round:  round,
		Deck:   d,
		Dealer: model.Dealer{
			Hand:       model.NewHand(dealt[1]),
			HiddenCard: &hole,
		},
		Player: model.Player{
			Name: name,
			Hands: []model.PlayerHand{
				{Hand: model.NewHand(dealt[0], dealt[2]), Bet: bet},
			},
			Balance: balance - bet,
			Bet:     bet,
		},
	}

	if state.Player.Hands[0].IsBlackjack {
		state.Player.Hands[0].Done = true
		e.finishPlayerTurn(state)
	}

	refreshFlags(state)
	return state, nil
}

// Apply performs one player action on the active hand. On error the state
// is left as it was.
func (e *Engine) Apply(state *model.GameState, action model.Action) error {
	if state.Phase != model.PhasePlayerTurn {
		return model.ErrActionNotAllowed
	}
	active := state.Player.Active()
	if active == nil || active.Done {
		return model.ErrActionNotAllowed
	}

	switch action {
	case model.ActionHit:
		e.hit(state, active)
	case model.ActionStand:
		active.Done = true
	case model.ActionDouble:
		if !canDoubleDown(state) {
			return model.ErrCannotDoubleDown
		}
		e.double(state, active)
	case model.ActionSplit:
		if !splittable(state) {
			return model.ErrCannotSplit
		}
		if state.Deck.Remaining() < 2 {
			return model.ErrDeckExhausted
		}
		e.split(state)
	default:
		return model.ErrInvalidAction
	}

	if state.Player.Active().Done {
		e.advanceHand(state)
	}
	refreshFlags(state)
	return nil
}

func (e *Engine) hit(state *model.GameState, active *model.PlayerHand) {
	card, err := state.Deck.Draw()
	if err != nil {
		e.logger.Warn("deck exhausted on hit, closing hand", slog.Int("round", state.Round), slog.Int("hand", state.Player.ActiveHand))
		active.Done = true
		return
	}
	active.Add(card)
	if active.IsBust {
		active.Done = true
	}
}

func (e *Engine) double(state *model.GameState, active *model.PlayerHand) {
	state.Player.Balance -= active.Bet
	state.Player.Bet += active.Bet
	active.Bet *= 2
	active.Doubled = true

	card, err := state.Deck.Draw()
	if err != nil {
		e.logger.Warn("deck exhausted on double, closing hand", slog.Int("round", state.Round))
	} else {
		active.Add(card)
	}
	active.Done = true
}

func (e *Engine) split(state *model.GameState) {
	orig := state.Player.Hands[0]
	state.Player.Balance -= orig.Bet
	state.Player.Bet += orig.Bet

	// Remaining() was checked by the caller
	first, _ := state.Deck.Draw()
	second, _ := state.Deck.Draw()

	state.Player.Hands = []model.PlayerHand{
		{Hand: model.NewHand(orig.Cards[0], first), Bet: orig.Bet},
		{Hand: model.NewHand(orig.Cards[1], second), Bet: orig.Bet},
	}
	state.Player.SplitActive = true
	state.Player.ActiveHand = 0
}

// advanceHand moves to the next unplayed hand, or to the dealer when none remain
func (e *Engine) advanceHand(state *model.GameState) {
	for state.Player.ActiveHand+1 < len(state.Player.Hands) {
		state.Player.ActiveHand++
		if !state.Player.Active().Done {
			return
		}
	}
	e.finishPlayerTurn(state)
}

// finishPlayerTurn plays the dealer out and settles every hand
func (e *Engine) finishPlayerTurn(state *model.GameState) {
	state.Phase = model.PhaseDealerTurn
	if exhausted := PlayDealer(state.Deck, &state.Dealer); exhausted {
		e.logger.Warn("deck exhausted during dealer draw", slog.Int("round", state.Round), slog.Int("dealer_total", state.Dealer.Hand.Total))
	}

	results := e.scoring.ResolveHands(state.Player.Hands, state.Dealer.Hand)
	state.Player.Balance += scoring.TotalPayout(results)
	state.Player.Bet = 0
	state.Results = results
	state.Status = e.scoring.RoundStatus(results)
	state.Phase = model.PhaseResult
}

// PlayDealer reveals the hole card and draws to DealerStandTotal. A natural
// stops immediately. It reports whether the deck ran out before the dealer
// could finish; the hand is left as drawn so far.
func PlayDealer(d *model.Deck, dealer *model.Dealer) (exhausted bool) {
	dealer.Reveal()
	if dealer.Hand.IsBlackjack {
		return false
	}
	for dealer.Hand.Total < DealerStandTotal {
		card, err := d.Draw()
		if err != nil {
			return true
		}
		dealer.Hand.Add(card)
	}
	return false
}

// DrawN draws n cards in order, failing without a partial result when the
// deck runs out
func DrawN(d *model.Deck, n int) ([]model.Card, error) {
	if d.Remaining() < n {
		return nil, model.ErrDeckExhausted
	}
	out := make([]model.Card, n)
	for i := range out {
		out[i], _ = d.Draw()
	}
	return out, nil
}

func canDoubleDown(state *model.GameState) bool {
	if state.Phase != model.PhasePlayerTurn {
		return false
	}
	active := state.Player.Active()
	return active != nil && !active.Done &&
		active.Len() == 2 &&
		state.Player.Balance >= active.Bet
}

// splittable checks every split condition except deck depth, which is
// reported as its own error
func splittable(state *model.GameState) bool {
	if state.Phase != model.PhasePlayerTurn || state.Player.SplitActive {
		return false
	}
	if len(state.Player.Hands) != 1 {
		return false
	}
	active := state.Player.Active()
	return active != nil && !active.Done &&
		active.IsPair() &&
		state.Player.Balance >= active.Bet
}

func refreshFlags(state *model.GameState) {
	state.CanDoubleDown = canDoubleDown(state)
	state.CanSplit = splittable(state) && state.Deck.Remaining() >= 2
}

// EngineInterface defines the round operations used by the session controller
type EngineInterface interface {
	NewRound(name string, bet, balance int) (*model.GameState, error)
	Restart(prev *model.GameState, bet int) (*model.GameState, error)
	Apply(state *model.GameState, action model.Action) error
}

var _ EngineInterface = (*Engine)(nil)
