package realtime

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/blackjack-go/internal/api/apierr"
	"github.com/mcoot/blackjack-go/internal/api/response"
	"github.com/mcoot/blackjack-go/internal/dependencies/mocks"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/room"
	"github.com/mcoot/blackjack-go/internal/services/scoring"
	"github.com/mcoot/blackjack-go/internal/storage"
	"github.com/mcoot/blackjack-go/internal/storage/memory"
	"github.com/mcoot/blackjack-go/internal/testutil"
)

type WebSocketSuite struct {
	suite.Suite
	random *mocks.MockRandom
	decks  *mocks.MockDeckSource
	hubs   *HubManager
	rooms  *room.Controller
	store  *touchCounter
	server *httptest.Server
}

// touchCounter records room expiry refreshes
type touchCounter struct {
	storage.Storage
	touches atomic.Int32
}

func (t *touchCounter) TouchRoom(ctx context.Context, code model.RoomCode) error {
	t.touches.Add(1)
	return t.Storage.TouchRoom(ctx, code)
}

func TestWebSocketSuite(t *testing.T) {
	suite.Run(t, new(WebSocketSuite))
}

func (s *WebSocketSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.random = mocks.NewMockRandom()
	s.decks = mocks.NewMockDeckSource()
	s.hubs = NewHubManager(logger)
	s.store = &touchCounter{Storage: memory.New()}
	s.rooms = room.NewController(
		s.store,
		s.decks,
		scoring.New(),
		mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
		s.random,
		NewPublisher(s.hubs, logger),
		logger,
		model.DefaultRoomConfig(),
	)

	mux := http.NewServeMux()
	mux.Handle("/ws", NewHandler(s.rooms, s.hubs, logger, []string{"https://tables.example"}))
	mux.HandleFunc("/events/{code}", func(w http.ResponseWriter, r *http.Request) {
		rm, err := s.rooms.GetRoom(r.Context(), model.RoomCode(r.PathValue("code")))
		if err != nil {
			apierr.WriteError(w, err)
			return
		}
		sub := NewSubscriber("spectator")
		hub := s.hubs.Subscribe(rm.Code, sub)
		ServeSSE(w, r, hub, sub, SnapshotMessages(rm)...)
	})
	s.server = httptest.NewServer(mux)
}

func (s *WebSocketSuite) TearDownTest() {
	s.server.Close()
}

func (s *WebSocketSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = ws.Close() })
	return ws
}

func (s *WebSocketSuite) send(ws *websocket.Conn, t MessageType, payload any) {
	msg, err := NewMessage(t, payload)
	s.Require().NoError(err)
	s.Require().NoError(ws.WriteJSON(msg))
}

// await reads frames until one of type t arrives, skipping others
func (s *WebSocketSuite) await(ws *websocket.Conn, t MessageType) Message {
	s.T().Helper()
	_ = ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg Message
		s.Require().NoError(ws.ReadJSON(&msg), "waiting for %s", t)
		if msg.Type == t {
			return msg
		}
	}
}

func (s *WebSocketSuite) awaitError(ws *websocket.Conn, code string) {
	var apiErr apierr.APIError
	s.Require().NoError(s.await(ws, TypeRoomError).Decode(&apiErr))
	s.Equal(code, apiErr.Code)
	s.NotEmpty(apiErr.Message)
}

func (s *WebSocketSuite) createRoom(ws *websocket.Conn, name string) MembershipPayload {
	s.random.QueueString("ABC234")
	s.send(ws, TypeCreateRoom, CreateRoomPayload{PlayerName: name})
	var created MembershipPayload
	s.Require().NoError(s.await(ws, TypeRoomCreated).Decode(&created))
	return created
}

func (s *WebSocketSuite) joinRoom(ws *websocket.Conn, code, name string) MembershipPayload {
	s.send(ws, TypeJoinRoom, JoinRoomPayload{RoomCode: code, PlayerName: name})
	var joined MembershipPayload
	s.Require().NoError(s.await(ws, TypeRoomJoined).Decode(&joined))
	return joined
}

func (s *WebSocketSuite) awaitRoster(ws *websocket.Conn, size int) response.PlayerList {
	for {
		var list response.PlayerList
		s.Require().NoError(s.await(ws, TypePlayerList).Decode(&list))
		if len(list.Players) == size {
			return list
		}
	}
}

func (s *WebSocketSuite) awaitState(ws *websocket.Conn, t MessageType) *response.RoomState {
	var p StatePayload
	s.Require().NoError(s.await(ws, t).Decode(&p))
	s.Require().NotNil(p.State)
	return p.State
}

func (s *WebSocketSuite) TestCreateRoomSendsRoster() {
	alice := s.dial()
	created := s.createRoom(alice, "alice")
	s.Equal("ABC234", created.RoomCode)
	s.NotEmpty(created.PlayerID)

	list := s.awaitRoster(alice, 1)
	s.Equal(created.PlayerID, list.CreatorID)
	s.Equal("alice", list.Players[0].Name)
}

func (s *WebSocketSuite) TestJoinBroadcastsRosterToEveryone() {
	alice := s.dial()
	created := s.createRoom(alice, "alice")
	s.awaitRoster(alice, 1)

	bob := s.dial()
	joined := s.joinRoom(bob, "abc234", "bob")
	s.Equal("ABC234", joined.RoomCode)
	s.NotEqual(created.PlayerID, joined.PlayerID)

	s.awaitRoster(alice, 2)
	s.awaitRoster(bob, 2)
}

func (s *WebSocketSuite) TestFullRound() {
	// alice 10+6, bob 9+8, dealer 7 up 10 hole
	s.decks.QueueDeck(mocks.Cards("10", "9", "7", "6", "8", "10")...)

	alice := s.dial()
	created := s.createRoom(alice, "alice")
	bob := s.dial()
	joined := s.joinRoom(bob, created.RoomCode, "bob")
	s.awaitRoster(alice, 2)

	s.send(bob, TypeStartRound, RoomPayload{RoomCode: created.RoomCode})
	s.awaitError(bob, apierr.CodeNotCreator)

	s.send(alice, TypeStartRound, RoomPayload{RoomCode: created.RoomCode})
	for _, ws := range []*websocket.Conn{alice, bob} {
		state := s.awaitState(ws, TypeRoundStarted)
		s.Equal(string(model.PhasePlayerTurn), state.Phase)
		s.Equal(created.PlayerID, state.CurrentTurn)
		s.True(state.Dealer.HoleCardHidden)
		s.Len(state.Dealer.Cards, 1)
	}

	s.send(bob, TypePlayerAction, PlayerActionPayload{RoomCode: created.RoomCode, Action: "stand"})
	s.awaitError(bob, apierr.CodeNotYourTurn)

	s.send(alice, TypePlayerAction, PlayerActionPayload{RoomCode: created.RoomCode, Action: "double"})
	s.awaitError(alice, apierr.CodeActionNotSupported)

	s.send(alice, TypePlayerAction, PlayerActionPayload{RoomCode: created.RoomCode, Action: "stand"})
	state := s.awaitState(bob, TypeStateUpdate)
	s.Equal(joined.PlayerID, state.CurrentTurn)

	s.send(bob, TypePlayerAction, PlayerActionPayload{RoomCode: created.RoomCode, Action: "stand"})
	for _, ws := range []*websocket.Conn{alice, bob} {
		var final *response.RoomState
		for final == nil || final.Phase != string(model.PhaseResult) {
			final = s.awaitState(ws, TypeStateUpdate)
		}
		s.False(final.Dealer.HoleCardHidden)
		s.Equal(17, final.Dealer.Total)
		s.Equal(string(model.OutcomeLose), final.Results[created.PlayerID].Outcome)
		s.Equal(string(model.OutcomeDraw), final.Results[joined.PlayerID].Outcome)
	}
}

func (s *WebSocketSuite) TestProtocolErrors() {
	ws := s.dial()

	s.send(ws, "shuffle", nil)
	s.awaitError(ws, apierr.CodeInvalidRequest)

	s.send(ws, TypeJoinRoom, JoinRoomPayload{RoomCode: "NOPE99", PlayerName: "bob"})
	s.awaitError(ws, apierr.CodeRoomNotFound)
	s.Equal(0, s.hubs.HubCount())

	s.send(ws, TypeStartRound, RoomPayload{RoomCode: "ABC234"})
	s.awaitError(ws, apierr.CodeNotInRoom)

	created := s.createRoom(ws, "alice")
	s.send(ws, TypeCreateRoom, CreateRoomPayload{PlayerName: "alice"})
	s.awaitError(ws, apierr.CodeAlreadyInRoom)

	s.send(ws, TypePlayerAction, PlayerActionPayload{RoomCode: created.RoomCode, Action: "surrender"})
	s.awaitError(ws, apierr.CodeInvalidAction)

	s.send(ws, TypePlayerAction, PlayerActionPayload{RoomCode: "XYZ789", Action: "hit"})
	s.awaitError(ws, apierr.CodeNotInRoom)
}

func (s *WebSocketSuite) TestLeaveRoom() {
	alice := s.dial()
	created := s.createRoom(alice, "alice")
	bob := s.dial()
	joined := s.joinRoom(bob, created.RoomCode, "bob")
	s.awaitRoster(alice, 2)

	s.send(alice, TypeLeaveRoom, RoomPayload{RoomCode: created.RoomCode})
	var left RoomPayload
	s.Require().NoError(s.await(alice, TypeRoomLeft).Decode(&left))
	s.Equal(created.RoomCode, left.RoomCode)

	list := s.awaitRoster(bob, 1)
	s.Equal(joined.PlayerID, list.CreatorID)

	// Free to open another room afterwards
	s.random.QueueString("XYZ789")
	s.send(alice, TypeCreateRoom, CreateRoomPayload{PlayerName: "alice"})
	s.await(alice, TypeRoomCreated)
}

func (s *WebSocketSuite) TestDisconnectLeavesRoom() {
	alice := s.dial()
	created := s.createRoom(alice, "alice")
	bob := s.dial()
	s.joinRoom(bob, created.RoomCode, "bob")
	s.awaitRoster(alice, 2)

	s.Require().NoError(bob.Close())
	s.awaitRoster(alice, 1)

	s.Require().NoError(alice.Close())
	s.Eventually(func() bool {
		_, err := s.rooms.GetRoom(context.Background(), model.RoomCode(created.RoomCode))
		return err != nil
	}, 3*time.Second, 20*time.Millisecond)
	s.Eventually(func() bool { return s.hubs.HubCount() == 0 }, 3*time.Second, 20*time.Millisecond)
}

func (s *WebSocketSuite) TestSpectatorStream() {
	alice := s.dial()
	created := s.createRoom(alice, "alice")

	resp, err := http.Get(s.server.URL + "/events/" + created.RoomCode)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal("text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var event, data string
		for {
			line, err := reader.ReadString('\n')
			s.Require().NoError(err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data += strings.TrimPrefix(line, "data: ")
			case line == "" && event != "":
				return event, data
			}
		}
	}

	event, data := readEvent()
	s.Equal(string(TypePlayerList), event)
	var list response.PlayerList
	s.Require().NoError(json.Unmarshal([]byte(data), &list))
	s.Len(list.Players, 1)

	bob := s.dial()
	s.joinRoom(bob, created.RoomCode, "bob")
	event, data = readEvent()
	s.Equal(string(TypePlayerList), event)
	s.Require().NoError(json.Unmarshal([]byte(data), &list))
	s.Len(list.Players, 2)

	s.send(bob, TypeLeaveRoom, RoomPayload{})
	s.await(bob, TypeRoomLeft)
	event, _ = readEvent()
	s.Equal(string(TypePlayerList), event)

	s.send(alice, TypeLeaveRoom, RoomPayload{})
	s.await(alice, TypeRoomLeft)
	event, _ = readEvent()
	s.Equal(string(TypeRoomClosed), event)
}

func (s *WebSocketSuite) TestSpectatorUnknownRoom() {
	resp, err := http.Get(s.server.URL + "/events/NOPE99")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *WebSocketSuite) TestPongRefreshesRoomExpiry() {
	ws := s.dial()
	s.createRoom(ws, "alice")
	before := s.store.touches.Load()

	s.Require().NoError(ws.WriteControl(websocket.PongMessage, nil, time.Now().Add(time.Second)))
	// Control frames are handled before the next data frame is read
	s.send(ws, TypeLeaveRoom, RoomPayload{RoomCode: "ZZZ999"})
	s.awaitError(ws, apierr.CodeNotInRoom)

	s.Greater(s.store.touches.Load(), before)
}

func (s *WebSocketSuite) TestPongWithoutRoomDoesNotTouch() {
	ws := s.dial()
	s.Require().NoError(ws.WriteControl(websocket.PongMessage, nil, time.Now().Add(time.Second)))
	s.send(ws, TypeLeaveRoom, RoomPayload{})
	s.awaitError(ws, apierr.CodeNotInRoom)

	s.Equal(int32(0), s.store.touches.Load())
}

func (s *WebSocketSuite) TestOriginChecks() {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	host := strings.TrimPrefix(s.server.URL, "http://")

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{"no origin", "", true},
		{"same host", "http://" + host, true},
		{"allowed", "https://tables.example", true},
		{"foreign", "https://evil.example", false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			ws, resp, err := websocket.DefaultDialer.Dial(url, header)
			if tt.ok {
				s.Require().NoError(err)
				_ = ws.Close()
				return
			}
			s.Require().Error(err)
			s.Require().NotNil(resp)
			s.Equal(http.StatusForbidden, resp.StatusCode)
		})
	}
}
