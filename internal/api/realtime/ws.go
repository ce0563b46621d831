package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/blackjack-go/internal/api/apierr"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/room"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Send pings with this period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096

	sendBufferSize = 64
)

// Handler serves the multiplayer WebSocket protocol. Each connection is
// one seat in at most one room at a time.
type Handler struct {
	rooms    room.ControllerInterface
	hubs     *HubManager
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. Browser upgrades must come
// from the server's own host or one of allowedOrigins ("*" allows any).
func NewHandler(rooms room.ControllerInterface, hubs *HubManager, logger *slog.Logger, allowedOrigins []string) *Handler {
	return &Handler{
		rooms:  rooms,
		hubs:   hubs,
		logger: logger.With(slog.String("component", "ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker accepts requests without an Origin header (non-browser
// clients such as bjctl), same-host origins, and the listed origins.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.ToLower(strings.TrimSuffix(strings.TrimSpace(o), "/"))] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || set["*"] || set[strings.ToLower(origin)] {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

// ServeHTTP upgrades the request and runs the connection until it closes
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &conn{
		id:     uuid.NewString(),
		ws:     ws,
		h:      h,
		send:   make(chan Message, sendBufferSize),
		done:   make(chan struct{}),
		logger: h.logger,
	}
	c.logger = h.logger.With(slog.String("conn", c.id))
	c.logger.Debug("websocket connected")

	go c.writePump()
	c.readPump(context.WithoutCancel(r.Context()))
}

// conn is one WebSocket client. Room membership fields are only touched
// by the read goroutine.
type conn struct {
	id     string
	ws     *websocket.Conn
	h      *Handler
	send   chan Message
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger

	code     model.RoomCode
	playerID model.PlayerID
	hub      *Hub
	sub      *Subscriber
}

func (c *conn) readPump(ctx context.Context) {
	defer func() {
		c.leave(ctx)
		c.close()
		c.logger.Debug("websocket disconnected")
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.keepAlive(ctx)
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", slog.Any("error", err))
			}
			return
		}
		c.dispatch(ctx, msg)
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(msg); err != nil {
				c.close()
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.drain()
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// keepAlive refreshes the room's expiry while this member is connected
func (c *conn) keepAlive(ctx context.Context) {
	if c.code == "" {
		return
	}
	if err := c.h.rooms.KeepAlive(ctx, c.code); err != nil && !errors.Is(err, model.ErrRoomNotFound) {
		c.logger.Warn("failed to refresh room expiry", slog.String("room_code", string(c.code)), slog.Any("error", err))
	}
}

// drain flushes replies queued before the connection closed
func (c *conn) drain() {
	for {
		select {
		case msg := <-c.send:
			if err := c.ws.WriteJSON(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *conn) close() {
	c.once.Do(func() { close(c.done) })
}

// enqueue hands a frame to the write pump. A client that cannot keep up
// loses frames rather than stalling the room.
func (c *conn) enqueue(msg Message) {
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		c.logger.Warn("frame dropped, client buffer full", slog.String("type", string(msg.Type)))
	}
}

func (c *conn) reply(t MessageType, payload any) {
	msg, err := NewMessage(t, payload)
	if err != nil {
		c.logger.Error("failed to encode frame", slog.String("type", string(t)), slog.Any("error", err))
		return
	}
	c.enqueue(msg)
}

func (c *conn) replyError(err error) {
	_, apiErr := apierr.FromError(err)
	if apierr.IsInternal(err) {
		c.logger.Error("room operation failed", slog.Any("error", err))
	}
	c.reply(TypeRoomError, apiErr)
}

// forward relays hub frames to this client until the subscription closes
func (c *conn) forward(sub *Subscriber) {
	for msg := range sub.Send {
		select {
		case c.send <- msg:
		case <-c.done:
			return
		}
	}
}

func (c *conn) dispatch(ctx context.Context, msg Message) {
	var err error
	switch msg.Type {
	case TypeCreateRoom:
		err = c.createRoom(ctx, msg)
	case TypeJoinRoom:
		err = c.joinRoom(ctx, msg)
	case TypeLeaveRoom:
		err = c.leaveRoom(ctx, msg)
	case TypeStartRound:
		err = c.deal(ctx, msg, c.h.rooms.StartRound)
	case TypeRestartRound:
		err = c.deal(ctx, msg, c.h.rooms.RestartRound)
	case TypePlayerAction:
		err = c.playerAction(ctx, msg)
	default:
		err = apierr.NewInvalidRequestError("unknown message type")
	}
	if err != nil {
		c.replyError(err)
	}
}

func (c *conn) createRoom(ctx context.Context, msg Message) error {
	if c.code != "" {
		return model.ErrAlreadyInRoom
	}
	var p CreateRoomPayload
	if err := msg.Decode(&p); err != nil {
		return apierr.NewInvalidRequestError("invalid payload")
	}

	r, playerID, err := c.h.rooms.CreateRoom(ctx, p.PlayerName)
	if err != nil {
		return err
	}

	// The creation broadcast went out before anyone could subscribe, so
	// the roster is sent directly.
	sub := NewSubscriber(c.id)
	c.attach(r.Code, playerID, c.h.hubs.Subscribe(r.Code, sub), sub)
	c.reply(TypeRoomCreated, MembershipPayload{RoomCode: string(r.Code), PlayerID: string(playerID)})
	for _, snap := range SnapshotMessages(r) {
		c.enqueue(snap)
	}
	return nil
}

func (c *conn) joinRoom(ctx context.Context, msg Message) error {
	if c.code != "" {
		return model.ErrAlreadyInRoom
	}
	var p JoinRoomPayload
	if err := msg.Decode(&p); err != nil {
		return apierr.NewInvalidRequestError("invalid payload")
	}
	if p.RoomCode == "" {
		return model.ErrRoomNotFound
	}

	r, err := c.h.rooms.GetRoom(ctx, model.RoomCode(p.RoomCode))
	if err != nil {
		return err
	}

	// Subscribe first so the roster broadcast from the join is received
	sub := NewSubscriber(c.id)
	hub := c.h.hubs.Subscribe(r.Code, sub)

	r, playerID, err := c.h.rooms.JoinRoom(ctx, r.Code, p.PlayerName)
	if err != nil {
		hub.Unregister(sub)
		c.h.hubs.RemoveIfEmpty(hub.code)
		return err
	}

	c.attach(r.Code, playerID, hub, sub)
	c.reply(TypeRoomJoined, MembershipPayload{RoomCode: string(r.Code), PlayerID: string(playerID)})
	if r.Game != nil {
		if snap, ok := EventMessage(model.Event{Type: model.EventStateUpdated, RoomCode: r.Code, Room: r}); ok {
			c.enqueue(snap)
		}
	}
	return nil
}

func (c *conn) attach(code model.RoomCode, playerID model.PlayerID, hub *Hub, sub *Subscriber) {
	c.code = code
	c.playerID = playerID
	c.hub = hub
	c.sub = sub
	go c.forward(sub)
	c.logger.Info("joined room", slog.String("room_code", string(code)), slog.String("player_id", string(playerID)))
}

func (c *conn) detach() {
	if c.hub != nil {
		c.hub.Unregister(c.sub)
	}
	c.code = ""
	c.playerID = ""
	c.hub = nil
	c.sub = nil
}

// member checks the frame names the room this connection sits in
func (c *conn) member(code string) error {
	if c.code == "" {
		return model.ErrNotInRoom
	}
	if code != "" && normalize(code) != c.code {
		return model.ErrNotInRoom
	}
	return nil
}

func (c *conn) leaveRoom(ctx context.Context, msg Message) error {
	var p RoomPayload
	if err := msg.Decode(&p); err != nil {
		return apierr.NewInvalidRequestError("invalid payload")
	}
	if err := c.member(p.RoomCode); err != nil {
		return err
	}

	code := c.code
	if err := c.h.rooms.LeaveRoom(ctx, code, c.playerID); err != nil && !isGone(err) {
		return err
	}
	c.detach()
	c.reply(TypeRoomLeft, RoomPayload{RoomCode: string(code)})
	return nil
}

// leave drops the seat when the socket goes away
func (c *conn) leave(ctx context.Context) {
	if c.code == "" {
		return
	}
	if err := c.h.rooms.LeaveRoom(ctx, c.code, c.playerID); err != nil && !isGone(err) {
		c.logger.Error("failed to leave room on disconnect",
			slog.String("room_code", string(c.code)),
			slog.Any("error", err))
	}
	c.detach()
}

type dealFunc func(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Room, error)

func (c *conn) deal(ctx context.Context, msg Message, fn dealFunc) error {
	var p RoomPayload
	if err := msg.Decode(&p); err != nil {
		return apierr.NewInvalidRequestError("invalid payload")
	}
	if err := c.member(p.RoomCode); err != nil {
		return err
	}
	_, err := fn(ctx, c.code, c.playerID)
	return err
}

func (c *conn) playerAction(ctx context.Context, msg Message) error {
	var p PlayerActionPayload
	if err := msg.Decode(&p); err != nil {
		return apierr.NewInvalidRequestError("invalid payload")
	}
	if err := c.member(p.RoomCode); err != nil {
		return err
	}
	action, err := model.ParseAction(p.Action)
	if err != nil {
		return err
	}
	_, err = c.h.rooms.ApplyPlayerAction(ctx, c.code, c.playerID, action)
	return err
}

// isGone reports errors meaning the seat no longer exists anyway
func isGone(err error) bool {
	return errors.Is(err, model.ErrRoomNotFound) || errors.Is(err, model.ErrNotInRoom)
}

func normalize(code string) model.RoomCode {
	return model.RoomCode(strings.ToUpper(strings.TrimSpace(code)))
}
