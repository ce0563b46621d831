package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mcoot/blackjack-go/internal/dependencies/clock"
	"github.com/mcoot/blackjack-go/internal/dependencies/keylock"
	"github.com/mcoot/blackjack-go/internal/dependencies/random"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/deck"
	"github.com/mcoot/blackjack-go/internal/services/game"
	"github.com/mcoot/blackjack-go/internal/services/scoring"
	"github.com/mcoot/blackjack-go/internal/storage"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6
	// CodeAlphabet avoids characters that are easy to misread
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	maxCodeAttempts = 20
)

var errCodeSpaceExhausted = errors.New("could not allocate a unique room code")

// Controller runs multiplayer rooms: membership, turn order, and the shared
// dealer. Each mutation runs under the room's lock and ends with exactly one
// save and the events describing it.
type Controller struct {
	storage   storage.Storage
	decks     deck.Source
	scoring   scoring.ServiceInterface
	clock     clock.Clock
	random    random.Random
	publisher Publisher
	logger    *slog.Logger
	locks     *keylock.KeyedMutex
	cfg       model.RoomConfig
}

// NewController creates a new room Controller
func NewController(
	storage storage.Storage,
	decks deck.Source,
	scoring scoring.ServiceInterface,
	clock clock.Clock,
	random random.Random,
	publisher Publisher,
	logger *slog.Logger,
	cfg model.RoomConfig,
) *Controller {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Controller{
		storage:   storage,
		decks:     decks,
		scoring:   scoring,
		clock:     clock,
		random:    random,
		publisher: publisher,
		logger:    logger,
		locks:     keylock.New(),
		cfg:       cfg,
	}
}

// CreateRoom opens a room with the caller as creator and only member
func (c *Controller) CreateRoom(ctx context.Context, playerName string) (*model.Room, model.PlayerID, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, "", model.ErrInvalidPlayerName
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := model.RoomCode(c.random.String(CodeLength, CodeAlphabet))
		if len(code) != CodeLength {
			continue
		}
		room, id, err := c.tryCreate(ctx, code, playerName)
		if err != nil || room != nil {
			return room, id, err
		}
	}
	return nil, "", errCodeSpaceExhausted
}

// tryCreate claims code if it is free. A nil room with nil error means the
// code was taken.
func (c *Controller) tryCreate(ctx context.Context, code model.RoomCode, playerName string) (*model.Room, model.PlayerID, error) {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	exists, err := c.storage.RoomExists(ctx, code)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", nil
	}

	now := c.clock.Now()
	creator := c.newPlayer(playerName)
	room := &model.Room{
		Code:      code,
		Players:   []model.RoomPlayer{creator},
		CreatorID: creator.ID,
		Config:    c.cfg,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, "", err
	}

	c.logger.Info("room created", slog.String("room_code", string(code)), slog.String("player_id", string(creator.ID)))
	c.publish(ctx, room, creator.ID, model.EventPlayerListUpdated)
	return room, creator.ID, nil
}

func (c *Controller) newPlayer(name string) model.RoomPlayer {
	return model.RoomPlayer{
		ID:       model.PlayerID(uuid.NewString()),
		Name:     name,
		Bet:      c.cfg.Bet,
		Balance:  c.cfg.Balance,
		JoinedAt: c.clock.Now(),
	}
}

// GetRoom returns a snapshot of the room
func (c *Controller) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return c.storage.GetRoom(ctx, normalizeCode(code))
}

// KeepAlive marks the room as still occupied so backends with expiry
// keep it while members are connected
func (c *Controller) KeepAlive(ctx context.Context, code model.RoomCode) error {
	return c.storage.TouchRoom(ctx, normalizeCode(code))
}

// JoinRoom seats a new player. A player joining mid-round sits out until
// the next deal.
func (c *Controller) JoinRoom(ctx context.Context, code model.RoomCode, playerName string) (*model.Room, model.PlayerID, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, "", model.ErrInvalidPlayerName
	}

	var joined model.PlayerID
	room, err := c.mutate(ctx, code, func(room *model.Room) ([]model.EventType, error) {
		if c.cfg.MaxPlayers > 0 && len(room.Players) >= c.cfg.MaxPlayers {
			return nil, model.ErrRoomFull
		}
		p := c.newPlayer(playerName)
		room.Players = append(room.Players, p)
		joined = p.ID
		return []model.EventType{model.EventPlayerListUpdated}, nil
	}, &joined)
	if err != nil {
		return nil, "", err
	}

	c.logger.Info("player joined room", slog.String("room_code", string(room.Code)), slog.String("player_id", string(joined)), slog.Int("players", len(room.Players)))
	return room, joined, nil
}

// LeaveRoom removes a player. The creator role passes to the earliest
// remaining joiner; an empty room is deleted.
func (c *Controller) LeaveRoom(ctx context.Context, code model.RoomCode, playerID model.PlayerID) error {
	code = normalizeCode(code)
	unlock := c.locks.Lock(string(code))
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	idx := room.PlayerIndex(playerID)
	if idx < 0 {
		return model.ErrNotInRoom
	}

	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	c.logger.Info("player left room", slog.String("room_code", string(code)), slog.String("player_id", string(playerID)), slog.Int("players", len(room.Players)))

	if len(room.Players) == 0 {
		if err := c.storage.DeleteRoom(ctx, code); err != nil {
			return err
		}
		c.logger.Info("room closed", slog.String("room_code", string(code)))
		c.publisher.Publish(ctx, model.Event{
			Type:      model.EventRoomClosed,
			Timestamp: c.clock.Now(),
			RoomCode:  code,
			PlayerID:  playerID,
		})
		return nil
	}

	if room.CreatorID == playerID {
		room.CreatorID = room.Players[0].ID
	}

	events := []model.EventType{model.EventPlayerListUpdated}
	if room.Game != nil {
		c.removeFromRound(room, idx, playerID)
		events = append(events, model.EventStateUpdated)
	}

	return c.commit(ctx, room, playerID, events)
}

// removeFromRound fixes the turn index after the player at idx was removed
func (c *Controller) removeFromRound(room *model.Room, idx int, playerID model.PlayerID) {
	g := room.Game
	delete(g.Results, playerID)
	if g.Phase != model.PhasePlayerTurn {
		return
	}

	switch {
	case idx < g.TurnIndex:
		g.TurnIndex--
	case idx == g.TurnIndex:
		// The next player slid into idx
		c.passTurnFrom(room, idx%len(room.Players))
	}
}

// StartRound deals a new round to every seated player. Creator only.
func (c *Controller) StartRound(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Room, error) {
	return c.mutate(ctx, code, func(room *model.Room) ([]model.EventType, error) {
		if err := c.authorizeDeal(room, playerID); err != nil {
			return nil, err
		}
		if err := c.deal(room); err != nil {
			return nil, err
		}
		return []model.EventType{model.EventRoundStarted}, nil
	}, &playerID)
}

// RestartRound deals the next round once the current one is settled.
// Creator only.
func (c *Controller) RestartRound(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Room, error) {
	return c.mutate(ctx, code, func(room *model.Room) ([]model.EventType, error) {
		if err := c.authorizeDeal(room, playerID); err != nil {
			return nil, err
		}
		if room.Game == nil {
			return nil, model.ErrNoActiveGame
		}
		if err := c.deal(room); err != nil {
			return nil, err
		}
		return []model.EventType{model.EventRoundStarted}, nil
	}, &playerID)
}

func (c *Controller) authorizeDeal(room *model.Room, playerID model.PlayerID) error {
	if room.GetPlayer(playerID) == nil {
		return model.ErrNotInRoom
	}
	if room.CreatorID != playerID {
		return model.ErrNotCreator
	}
	if room.RoundInProgress() {
		return model.ErrRoundInProgress
	}
	if len(room.Players) == 0 {
		return model.ErrNoPlayersReady
	}
	return nil
}

// deal gives each player a card, then the dealer, then a second round of
// cards, then the dealer's hole card
func (c *Controller) deal(room *model.Room) error {
	d := c.decks.NewDeck()
	n := len(room.Players)
	cards, err := game.DrawN(d, 2*n+2)
	if err != nil {
		return err
	}

	round := 1
	if room.Game != nil {
		round = room.Game.Round + 1
	}

	hole := cards[2*n+1]
	room.Game = &model.RoomGame{
		Phase: model.PhasePlayerTurn,
		Round: round,
		Deck:  d,
		Dealer: model.Dealer{
			Hand:       model.NewHand(cards[n]),
			HiddenCard: &hole,
		},
		TurnIndex: -1,
	}

	for i := range room.Players {
		p := &room.Players[i]
		p.Hand = model.NewHand(cards[i], cards[n+1+i])
		p.InRound = true
		p.IsStand = p.Hand.IsBlackjack
		p.Bet = room.Config.Bet
		p.Balance = room.Config.Balance
	}

	c.logger.Info("round dealt", slog.String("room_code", string(room.Code)), slog.Int("round", round), slog.Int("players", n))
	c.passTurnFrom(room, 0)
	return nil
}

// ApplyPlayerAction performs hit or stand for the player holding the turn
func (c *Controller) ApplyPlayerAction(ctx context.Context, code model.RoomCode, playerID model.PlayerID, action model.Action) (*model.Room, error) {
	return c.mutate(ctx, code, func(room *model.Room) ([]model.EventType, error) {
		player := room.GetPlayer(playerID)
		if player == nil {
			return nil, model.ErrNotInRoom
		}
		if room.Game == nil {
			return nil, model.ErrNoActiveGame
		}
		if room.Game.Phase != model.PhasePlayerTurn {
			return nil, model.ErrActionNotAllowed
		}
		if room.CurrentTurn() != playerID {
			return nil, model.ErrNotYourTurn
		}

		switch action {
		case model.ActionHit:
			card, err := room.Game.Deck.Draw()
			if err != nil {
				c.logger.Warn("deck exhausted on hit, standing player", slog.String("room_code", string(room.Code)), slog.String("player_id", string(playerID)))
				player.IsStand = true
				break
			}
			player.Hand.Add(card)
		case model.ActionStand:
			player.IsStand = true
		case model.ActionDouble, model.ActionSplit:
			return nil, model.ErrActionNotSupported
		default:
			return nil, model.ErrInvalidAction
		}

		c.passTurnFrom(room, room.Game.TurnIndex+1)
		return []model.EventType{model.EventStateUpdated}, nil
	}, &playerID)
}

// passTurnFrom gives the turn to the first player at or after start, in
// cyclic join order, who still has decisions to make. When nobody does the
// dealer plays.
func (c *Controller) passTurnFrom(room *model.Room, start int) {
	n := len(room.Players)
	for k := 0; k < n; k++ {
		idx := (start + k) % n
		if !room.Players[idx].Finished() {
			room.Game.TurnIndex = idx
			return
		}
	}
	c.resolveDealer(room)
}

// resolveDealer runs once per round: it is only reachable from the player
// turn and leaves the round in the result phase
func (c *Controller) resolveDealer(room *model.Room) {
	g := room.Game
	if g.Phase != model.PhasePlayerTurn {
		return
	}
	g.Phase = model.PhaseDealerTurn
	g.TurnIndex = -1

	if exhausted := game.PlayDealer(g.Deck, &g.Dealer); exhausted {
		c.logger.Warn("deck exhausted during dealer draw", slog.String("room_code", string(room.Code)), slog.Int("dealer_total", g.Dealer.Hand.Total))
	}

	g.Results = make(map[model.PlayerID]model.HandResult)
	for _, p := range room.Players {
		if !p.InRound {
			continue
		}
		g.Results[p.ID] = c.scoring.Resolve(p.Hand, g.Dealer.Hand, p.Bet)
	}
	g.Phase = model.PhaseResult

	c.logger.Info("round settled", slog.String("room_code", string(room.Code)), slog.Int("round", g.Round), slog.Int("dealer_total", g.Dealer.Hand.Total))
}

// mutate loads the room, applies fn, and on success bumps the version,
// saves, and publishes the returned events. actor, if set, is read after fn
// runs and recorded on the events.
func (c *Controller) mutate(
	ctx context.Context,
	code model.RoomCode,
	fn func(room *model.Room) ([]model.EventType, error),
	actor *model.PlayerID,
) (*model.Room, error) {
	code = normalizeCode(code)
	unlock := c.locks.Lock(string(code))
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	events, err := fn(room)
	if err != nil {
		return nil, err
	}

	var by model.PlayerID
	if actor != nil {
		by = *actor
	}
	if err := c.commit(ctx, room, by, events); err != nil {
		return nil, err
	}
	return room, nil
}

func (c *Controller) commit(ctx context.Context, room *model.Room, actor model.PlayerID, events []model.EventType) error {
	room.Version++
	room.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return fmt.Errorf("save room %s: %w", room.Code, err)
	}
	c.publish(ctx, room, actor, events...)
	return nil
}

func (c *Controller) publish(ctx context.Context, room *model.Room, actor model.PlayerID, types ...model.EventType) {
	now := c.clock.Now()
	for _, t := range types {
		c.publisher.Publish(ctx, model.Event{
			Type:      t,
			Timestamp: now,
			RoomCode:  room.Code,
			PlayerID:  actor,
			Room:      room.Clone(),
		})
	}
}

func normalizeCode(code model.RoomCode) model.RoomCode {
	return model.RoomCode(strings.ToUpper(strings.TrimSpace(string(code))))
}

// ControllerInterface defines the room operations
type ControllerInterface interface {
	CreateRoom(ctx context.Context, playerName string) (*model.Room, model.PlayerID, error)
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	KeepAlive(ctx context.Context, code model.RoomCode) error
	JoinRoom(ctx context.Context, code model.RoomCode, playerName string) (*model.Room, model.PlayerID, error)
	LeaveRoom(ctx context.Context, code model.RoomCode, playerID model.PlayerID) error
	StartRound(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Room, error)
	RestartRound(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Room, error)
	ApplyPlayerAction(ctx context.Context, code model.RoomCode, playerID model.PlayerID, action model.Action) (*model.Room, error)
}

var _ ControllerInterface = (*Controller)(nil)
