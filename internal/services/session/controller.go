package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/blackjack-go/internal/dependencies/clock"
	"github.com/mcoot/blackjack-go/internal/dependencies/keylock"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/game"
	"github.com/mcoot/blackjack-go/internal/storage"
)

// Config holds session lifetime settings
type Config struct {
	IdleTimeout time.Duration
}

// DefaultConfig returns the default session configuration
func DefaultConfig() Config {
	return Config{
		IdleTimeout: 30 * time.Minute,
	}
}

// Controller owns single-player sessions. Every operation on a session
// runs under that session's lock, loads a copy from storage, and saves it
// back only when the operation succeeds.
type Controller struct {
	storage storage.Storage
	engine  game.EngineInterface
	clock   clock.Clock
	logger  *slog.Logger
	locks   *keylock.KeyedMutex
	cfg     Config
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	engine game.EngineInterface,
	clock clock.Clock,
	logger *slog.Logger,
	cfg Config,
) *Controller {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultConfig().IdleTimeout
	}
	return &Controller{
		storage: storage,
		engine:  engine,
		clock:   clock,
		logger:  logger,
		locks:   keylock.New(),
		cfg:     cfg,
	}
}

// CreateSession registers a new session with no game
func (c *Controller) CreateSession(ctx context.Context, playerName string) (*model.Session, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, model.ErrInvalidPlayerName
	}

	now := c.clock.Now()
	session := &model.Session{
		ID:           model.SessionID(uuid.NewString()),
		PlayerName:   playerName,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("session created", slog.String("session_id", string(session.ID)), slog.String("player", playerName))
	return session, nil
}

// GetSession returns the session, refreshing its activity time
func (c *Controller) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	session, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.touch(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// StartGame deals a new round. An empty id creates the session first.
// The wager is validated before anything is stored.
func (c *Controller) StartGame(ctx context.Context, id model.SessionID, playerName string, bet, balance int) (*model.Session, error) {
	if id == "" {
		state, err := c.engine.NewRound(playerName, bet, balance)
		if err != nil {
			return nil, err
		}
		session, err := c.CreateSession(ctx, playerName)
		if err != nil {
			return nil, err
		}
		unlock := c.locks.Lock(string(session.ID))
		defer unlock()
		return c.commitNewGame(ctx, session, state)
	}

	unlock := c.locks.Lock(string(id))
	defer unlock()

	session, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Game != nil && session.Game.Phase != model.PhaseResult {
		return nil, model.ErrRoundInProgress
	}
	if strings.TrimSpace(playerName) == "" {
		playerName = session.PlayerName
	}

	state, err := c.engine.NewRound(playerName, bet, balance)
	if err != nil {
		return nil, err
	}
	session.PlayerName = state.Player.Name
	return c.commitNewGame(ctx, session, state)
}

func (c *Controller) commitNewGame(ctx context.Context, session *model.Session, state *model.GameState) (*model.Session, error) {
	session.Game = state
	if err := c.touch(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("game started",
		slog.String("session_id", string(session.ID)),
		slog.Int("bet", state.Player.Bet),
		slog.Int("balance", state.Player.Balance),
	)
	c.logSettled(session)
	return session, nil
}

// Act applies one player action to the session's game
func (c *Controller) Act(ctx context.Context, id model.SessionID, action model.Action) (*model.GameState, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	session, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Game == nil {
		return nil, model.ErrNoActiveGame
	}

	next := session.Game.Clone()
	if err := c.engine.Apply(next, action); err != nil {
		c.logger.Debug("action rejected", slog.String("session_id", string(id)), slog.String("action", action.String()), slog.Any("error", err))
		c.touchQuietly(ctx, session)
		return nil, err
	}

	session.Game = next
	if err := c.touch(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Debug("action applied", slog.String("session_id", string(id)), slog.String("action", action.String()), slog.String("phase", string(next.Phase)))
	c.logSettled(session)
	return next, nil
}

// Hit draws a card into the active hand
func (c *Controller) Hit(ctx context.Context, id model.SessionID) (*model.GameState, error) {
	return c.Act(ctx, id, model.ActionHit)
}

// Stand closes the active hand
func (c *Controller) Stand(ctx context.Context, id model.SessionID) (*model.GameState, error) {
	return c.Act(ctx, id, model.ActionStand)
}

// DoubleDown doubles the active hand's bet and draws one card
func (c *Controller) DoubleDown(ctx context.Context, id model.SessionID) (*model.GameState, error) {
	return c.Act(ctx, id, model.ActionDouble)
}

// Split splits a pair into two hands
func (c *Controller) Split(ctx context.Context, id model.SessionID) (*model.GameState, error) {
	return c.Act(ctx, id, model.ActionSplit)
}

// Restart deals the next round, carrying over the settled balance
func (c *Controller) Restart(ctx context.Context, id model.SessionID, bet int) (*model.GameState, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	session, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Game == nil {
		return nil, model.ErrNoActiveGame
	}

	state, err := c.engine.Restart(session.Game, bet)
	if err != nil {
		c.touchQuietly(ctx, session)
		return nil, err
	}
	if _, err := c.commitNewGame(ctx, session, state); err != nil {
		return nil, err
	}
	return state, nil
}

// GetGameState returns the current game
func (c *Controller) GetGameState(ctx context.Context, id model.SessionID) (*model.GameState, error) {
	session, err := c.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Game == nil {
		return nil, model.ErrNoActiveGame
	}
	return session.Game, nil
}

// RemoveSession deletes the session. Removing an unknown session is an error.
func (c *Controller) RemoveSession(ctx context.Context, id model.SessionID) error {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	if _, err := c.storage.GetSession(ctx, id); err != nil {
		return err
	}
	if err := c.storage.DeleteSession(ctx, id); err != nil {
		return err
	}
	c.logger.Info("session removed", slog.String("session_id", string(id)))
	return nil
}

// SweepIdle deletes every session idle longer than the timeout and
// returns how many were removed
func (c *Controller) SweepIdle(ctx context.Context) (int, error) {
	cutoff := c.clock.Now().Add(-c.cfg.IdleTimeout)
	ids, err := c.storage.ListIdleSessions(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids {
		ok, err := c.expireIfIdle(ctx, id, cutoff)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	if removed > 0 {
		c.logger.Info("idle sessions swept", slog.Int("count", removed))
	}
	return removed, nil
}

func (c *Controller) expireIfIdle(ctx context.Context, id model.SessionID, cutoff time.Time) (bool, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	session, err := c.storage.GetSession(ctx, id)
	if errors.Is(err, model.ErrSessionNotFound) {
		// Expired by the backend already; drop any index entry
		return false, c.storage.DeleteSession(ctx, id)
	}
	if err != nil {
		return false, err
	}
	// Touched since it was listed
	if !session.IdleSince(cutoff) {
		return false, nil
	}
	return true, c.storage.DeleteSession(ctx, id)
}

// RunSweeper calls SweepIdle every interval until ctx is cancelled
func (c *Controller) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.SweepIdle(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error("session sweep failed", slog.Any("error", err))
			}
		}
	}
}

// load fetches a session, treating one idle past the timeout as gone
// even if the sweeper has not reached it yet
func (c *Controller) load(ctx context.Context, id model.SessionID) (*model.Session, error) {
	if id == "" {
		return nil, model.ErrSessionNotFound
	}
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	cutoff := c.clock.Now().Add(-c.cfg.IdleTimeout)
	if session.IdleSince(cutoff) {
		if err := c.storage.DeleteSession(ctx, id); err != nil {
			return nil, err
		}
		c.logger.Info("session expired", slog.String("session_id", string(id)))
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (c *Controller) touch(ctx context.Context, session *model.Session) error {
	session.LastActivity = c.clock.Now()
	return c.storage.SaveSession(ctx, session)
}

// touchQuietly refreshes activity after a rejected action. The stored
// game is unchanged so a failure here only costs idle time.
func (c *Controller) touchQuietly(ctx context.Context, session *model.Session) {
	if err := c.touch(ctx, session); err != nil {
		c.logger.Warn("failed to refresh session activity", slog.String("session_id", string(session.ID)), slog.Any("error", err))
	}
}

func (c *Controller) logSettled(session *model.Session) {
	g := session.Game
	if g == nil || g.Phase != model.PhaseResult {
		return
	}
	c.logger.Info("round settled",
		slog.String("session_id", string(session.ID)),
		slog.Int("round", g.Round),
		slog.String("status", string(g.Status)),
		slog.Int("balance", g.Player.Balance),
		slog.Int("dealer_total", g.Dealer.Hand.Total),
	)
}

// ControllerInterface defines the single-player session operations
type ControllerInterface interface {
	CreateSession(ctx context.Context, playerName string) (*model.Session, error)
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	StartGame(ctx context.Context, id model.SessionID, playerName string, bet, balance int) (*model.Session, error)
	Act(ctx context.Context, id model.SessionID, action model.Action) (*model.GameState, error)
	Hit(ctx context.Context, id model.SessionID) (*model.GameState, error)
	Stand(ctx context.Context, id model.SessionID) (*model.GameState, error)
	DoubleDown(ctx context.Context, id model.SessionID) (*model.GameState, error)
	Split(ctx context.Context, id model.SessionID) (*model.GameState, error)
	Restart(ctx context.Context, id model.SessionID, bet int) (*model.GameState, error)
	GetGameState(ctx context.Context, id model.SessionID) (*model.GameState, error)
	RemoveSession(ctx context.Context, id model.SessionID) error
	SweepIdle(ctx context.Context) (int, error)
}

var _ ControllerInterface = (*Controller)(nil)
