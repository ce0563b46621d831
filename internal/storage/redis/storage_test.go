package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/blackjack-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SessionTTL = 30 * time.Minute
	cfg.RoomTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) session(id string, lastActivity time.Time) *model.Session {
	hole := model.Card{Suit: model.SuitClubs, Rank: model.RankSeven}
	return &model.Session{
		ID:           model.SessionID(id),
		PlayerName:   "alice",
		CreatedAt:    s.now,
		LastActivity: lastActivity,
		Game: &model.GameState{
			Phase:  model.PhasePlayerTurn,
			Status: model.StatusPlaying,
			Round:  1,
			Deck:   model.NewOrderedDeck(),
			Dealer: model.Dealer{
				Hand:       model.NewHand(model.Card{Suit: model.SuitHearts, Rank: model.RankTen}),
				HiddenCard: &hole,
			},
			Player: model.Player{
				Name:    "alice",
				Balance: 900,
				Bet:     100,
				Hands: []model.PlayerHand{{
					Hand: model.NewHand(
						model.Card{Suit: model.SuitSpades, Rank: model.RankAce},
						model.Card{Suit: model.SuitSpades, Rank: model.RankSix},
					),
					Bet: 100,
				}},
			},
			CanDoubleDown: true,
		},
	}
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSessionRoundTrips() {
	want := s.session("s1", s.now)
	s.Require().NoError(s.storage.SaveSession(s.ctx, want))

	got, err := s.storage.GetSession(s.ctx, "s1")
	s.Require().NoError(err)

	s.Equal(want.ID, got.ID)
	s.True(want.LastActivity.Equal(got.LastActivity))
	s.Equal(want.Game.Player, got.Game.Player)
	s.Equal(want.Game.Dealer, got.Game.Dealer)
	s.Equal(want.Game.Deck.Cards, got.Game.Deck.Cards)
	s.True(got.Game.Player.Hands[0].IsSoft)
}

func (s *StorageSuite) TestSessionTTLApplied() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.session("s1", s.now)))

	s.Equal(30*time.Minute, s.mini.TTL(sessionKey("s1")))

	s.mini.FastForward(31 * time.Minute)
	_, err := s.storage.GetSession(s.ctx, "s1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestListIdleSessions() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.session("old", s.now.Add(-time.Hour))))
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.session("fresh", s.now)))

	ids, err := s.storage.ListIdleSessions(s.ctx, s.now.Add(-30*time.Minute))
	s.Require().NoError(err)
	s.Equal([]model.SessionID{"old"}, ids)
}

func (s *StorageSuite) TestSaveRefreshesActivityIndex() {
	session := s.session("s1", s.now.Add(-time.Hour))
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	session.LastActivity = s.now
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	ids, err := s.storage.ListIdleSessions(s.ctx, s.now.Add(-30*time.Minute))
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *StorageSuite) TestDeleteSessionClearsIndex() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.session("s1", s.now.Add(-time.Hour))))
	s.Require().NoError(s.storage.DeleteSession(s.ctx, "s1"))

	s.False(s.mini.Exists(sessionKey("s1")))
	ids, err := s.storage.ListIdleSessions(s.ctx, s.now)
	s.Require().NoError(err)
	s.Empty(ids)
}

// Room tests

func (s *StorageSuite) TestRoomLifecycle() {
	room := &model.Room{
		Code:      "ABC234",
		CreatorID: "p1",
		Config:    model.DefaultRoomConfig(),
		Players: []model.RoomPlayer{
			{ID: "p1", Name: "alice", InRound: true, Bet: 100, Balance: 1000},
		},
		Game: &model.RoomGame{
			Phase:   model.PhaseResult,
			Round:   1,
			Deck:    model.NewOrderedDeck(),
			Results: map[model.PlayerID]model.HandResult{"p1": {Outcome: model.OutcomeWin, Multiplier: 2, Bet: 100, Payout: 200}},
		},
		Version:   3,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}

	exists, err := s.storage.RoomExists(s.ctx, room.Code)
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
	s.Equal(time.Hour, s.mini.TTL(roomKey(room.Code)))

	exists, err = s.storage.RoomExists(s.ctx, room.Code)
	s.Require().NoError(err)
	s.True(exists)

	got, err := s.storage.GetRoom(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Equal(room.Players, got.Players)
	s.Equal(room.Game.Results, got.Game.Results)
	s.Equal(int64(3), got.Version)

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, room.Code))
	_, err = s.storage.GetRoom(s.ctx, room.Code)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestNewRejectsBadURL() {
	cfg := DefaultConfig()
	cfg.URL = "not-a-url"
	_, err := New(s.ctx, cfg)
	s.Error(err)
}

func (s *StorageSuite) TestNewConnects() {
	cfg := DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr()
	store, err := New(s.ctx, cfg)
	s.Require().NoError(err)
	defer store.Close()
	s.NoError(store.Ping(s.ctx))
}

func (s *StorageSuite) TestTouchRoomExtendsExpiry() {
	room := &model.Room{Code: "QRS789", CreatorID: "p1", Config: model.DefaultRoomConfig()}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	s.mini.FastForward(50 * time.Minute)
	s.Require().NoError(s.storage.TouchRoom(s.ctx, room.Code))
	s.Equal(time.Hour, s.mini.TTL(roomKey(room.Code)))

	// Still present past the original expiry
	s.mini.FastForward(30 * time.Minute)
	_, err := s.storage.GetRoom(s.ctx, room.Code)
	s.Require().NoError(err)

	s.mini.FastForward(time.Hour)
	s.ErrorIs(s.storage.TouchRoom(s.ctx, room.Code), model.ErrRoomNotFound)
}
