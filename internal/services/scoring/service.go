package scoring

import (
	"math"

	"github.com/mcoot/blackjack-go/internal/model"
)

// Payout multipliers applied to the wager. The multiplier is the total
// returned to the player, stake included.
const (
	MultiplierBlackjack = 2.5
	MultiplierWin       = 2.0
	MultiplierPush      = 1.0
	MultiplierLoss      = 0.0
)

// Service settles player hands against the dealer
type Service struct{}

// New creates a new scoring service
func New() *Service {
	return &Service{}
}

// Resolve compares one settled player hand to the dealer's final hand.
// Rules are checked in order, first match wins.
func (s *Service) Resolve(player, dealer model.Hand, bet int) model.HandResult {
	outcome, mult := resolve(player, dealer)
	return model.HandResult{
		Outcome:    outcome,
		Multiplier: mult,
		Bet:        bet,
		Payout:     Payout(bet, mult),
	}
}

func resolve(player, dealer model.Hand) (model.Outcome, float64) {
	switch {
	case player.IsBust:
		return model.OutcomeBust, MultiplierLoss
	case player.IsBlackjack && !dealer.IsBlackjack:
		return model.OutcomeWin, MultiplierBlackjack
	case dealer.IsBlackjack && !player.IsBlackjack:
		return model.OutcomeLose, MultiplierLoss
	case player.IsBlackjack && dealer.IsBlackjack:
		return model.OutcomeDraw, MultiplierPush
	case dealer.IsBust:
		return model.OutcomeWin, MultiplierWin
	case player.Total > dealer.Total:
		return model.OutcomeWin, MultiplierWin
	case player.Total < dealer.Total:
		return model.OutcomeLose, MultiplierLoss
	default:
		return model.OutcomeDraw, MultiplierPush
	}
}

// Payout is the amount credited back for a wager, rounded down
func Payout(bet int, multiplier float64) int {
	return int(math.Floor(float64(bet) * multiplier))
}

// ResolveHands settles every hand in order
func (s *Service) ResolveHands(hands []model.PlayerHand, dealer model.Hand) []model.HandResult {
	results := make([]model.HandResult, len(hands))
	for i, h := range hands {
		results[i] = s.Resolve(h.Hand, dealer, h.Bet)
	}
	return results
}

// TotalPayout sums the payouts of the given results
func TotalPayout(results []model.HandResult) int {
	total := 0
	for _, r := range results {
		total += r.Payout
	}
	return total
}

// outcomeRank orders outcomes from best to worst for the player
var outcomeRank = map[model.Outcome]int{
	model.OutcomeWin:  3,
	model.OutcomeDraw: 2,
	model.OutcomeLose: 1,
	model.OutcomeBust: 0,
}

// RoundStatus reduces per-hand results to one status by taking the best
// outcome among them. With no results the round is still playing.
func (s *Service) RoundStatus(results []model.HandResult) model.Status {
	if len(results) == 0 {
		return model.StatusPlaying
	}
	best := results[0].Outcome
	for _, r := range results[1:] {
		if outcomeRank[r.Outcome] > outcomeRank[best] {
			best = r.Outcome
		}
	}
	return model.Status(best)
}

// ServiceInterface defines the scoring operations
type ServiceInterface interface {
	Resolve(player, dealer model.Hand, bet int) model.HandResult
	ResolveHands(hands []model.PlayerHand, dealer model.Hand) []model.HandResult
	RoundStatus(results []model.HandResult) model.Status
}

var _ ServiceInterface = (*Service)(nil)
