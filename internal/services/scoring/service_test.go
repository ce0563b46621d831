package scoring

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/blackjack-go/internal/dependencies/mocks"
	"github.com/mcoot/blackjack-go/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
}

func hand(labels ...string) model.Hand {
	return model.NewHand(mocks.Cards(labels...)...)
}

func (s *ServiceSuite) TestResolveTable() {
	tests := []struct {
		name    string
		player  model.Hand
		dealer  model.Hand
		outcome model.Outcome
		mult    float64
		payout  int
	}{
		{"player bust loses even when dealer busts", hand("K", "Q", "5"), hand("K", "6", "9"), model.OutcomeBust, 0, 0},
		{"player blackjack pays three to two", hand("A", "K"), hand("10", "9"), model.OutcomeWin, 2.5, 250},
		{"player blackjack beats dealer three card twenty one", hand("A", "Q"), hand("7", "7", "7"), model.OutcomeWin, 2.5, 250},
		{"dealer blackjack beats player twenty one", hand("7", "7", "7"), hand("A", "J"), model.OutcomeLose, 0, 0},
		{"both blackjack push", hand("A", "K"), hand("A", "Q"), model.OutcomeDraw, 1, 100},
		{"dealer bust", hand("10", "2"), hand("K", "6", "8"), model.OutcomeWin, 2, 200},
		{"higher total wins", hand("10", "9"), hand("10", "8"), model.OutcomeWin, 2, 200},
		{"lower total loses", hand("10", "6"), hand("10", "7"), model.OutcomeLose, 0, 0},
		{"equal totals push", hand("10", "8"), hand("9", "9"), model.OutcomeDraw, 1, 100},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			r := s.service.Resolve(tt.player, tt.dealer, 100)
			s.Equal(tt.outcome, r.Outcome)
			s.InDelta(tt.mult, r.Multiplier, 0.0001)
			s.Equal(100, r.Bet)
			s.Equal(tt.payout, r.Payout)
		})
	}
}

func (s *ServiceSuite) TestPayoutRoundsDown() {
	s.Equal(37, Payout(15, MultiplierBlackjack))
	s.Equal(2, Payout(1, MultiplierBlackjack))
	s.Equal(0, Payout(0, MultiplierWin))
}

func (s *ServiceSuite) TestResolveHandsUsesPerHandBet() {
	hands := []model.PlayerHand{
		{Hand: hand("10", "9"), Bet: 100},
		{Hand: hand("10", "9", "5"), Bet: 200},
	}
	results := s.service.ResolveHands(hands, hand("10", "8"))

	s.Require().Len(results, 2)
	s.Equal(200, results[0].Payout)
	s.Equal(model.OutcomeBust, results[1].Outcome)
	s.Equal(200, results[1].Bet)
	s.Equal(200, TotalPayout(results))
}

func (s *ServiceSuite) TestRoundStatus() {
	r := func(o ...model.Outcome) []model.HandResult {
		out := make([]model.HandResult, len(o))
		for i := range o {
			out[i] = model.HandResult{Outcome: o[i]}
		}
		return out
	}

	s.Equal(model.StatusPlaying, s.service.RoundStatus(nil))
	s.Equal(model.StatusWin, s.service.RoundStatus(r(model.OutcomeWin)))
	s.Equal(model.StatusWin, s.service.RoundStatus(r(model.OutcomeBust, model.OutcomeWin)))
	s.Equal(model.StatusDraw, s.service.RoundStatus(r(model.OutcomeLose, model.OutcomeDraw)))
	s.Equal(model.StatusLose, s.service.RoundStatus(r(model.OutcomeBust, model.OutcomeLose)))
	s.Equal(model.StatusBust, s.service.RoundStatus(r(model.OutcomeBust, model.OutcomeBust)))
}
