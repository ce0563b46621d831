package api_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/blackjack-go/internal/api/apierr"
	"github.com/mcoot/blackjack-go/internal/api/realtime"
	"github.com/mcoot/blackjack-go/internal/api/response"
	"github.com/mcoot/blackjack-go/internal/dependencies/mocks"
	"github.com/mcoot/blackjack-go/internal/factory"
)

// testServer wraps the production router built over mocked dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	return &testServer{
		handler: app.Router(),
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code)
	resp := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, code, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Message)
}

// startGame deals a game for a fresh session from a stacked deck
func (ts *testServer) startGame(t *testing.T, bet, balance int, deck ...string) response.StartGame {
	t.Helper()
	if len(deck) > 0 {
		ts.app.MockDecks.QueueDeck(mocks.Cards(deck...)...)
	}
	rr := ts.request(http.MethodPost, "/api/v1/game/start", map[string]any{
		"player_name": "ada",
		"bet":         bet,
		"balance":     balance,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.StartGame](t, rr)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	health := decode[response.Health](t, rr)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "memory", health.Storage)
}

func TestCreateAndDeleteSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions", map[string]string{"player_name": "ada"})
	require.Equal(t, http.StatusCreated, rr.Code)
	sess := decode[response.Session](t, rr)
	assert.NotEmpty(t, sess.SessionID)
	assert.Equal(t, "ada", sess.PlayerName)
	assert.Equal(t, "/api/v1/sessions/"+sess.SessionID, rr.Header().Get("Location"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	// No game yet
	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+sess.SessionID+"/game", nil)
	assertError(t, rr, http.StatusNotFound, apierr.CodeNoActiveGame)

	rr = ts.request(http.MethodDelete, "/api/v1/sessions/"+sess.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+sess.SessionID+"/game", nil)
	assertError(t, rr, http.StatusNotFound, apierr.CodeSessionNotFound)
}

func TestCreateSessionValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions", map[string]string{"player_name": "  "})
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidPlayerName)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader("{not json"))
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)
}

func TestStartGameHidesHoleCard(t *testing.T) {
	ts := newTestServer(t)

	start := ts.startGame(t, 100, 1000, "10", "9", "6", "K")
	state := start.State

	assert.Equal(t, "player-turn", state.Phase)
	assert.Equal(t, "playing", state.Status)
	assert.Equal(t, 900, state.Player.Balance)
	assert.Equal(t, 16, state.Player.Hands[0].Total)
	assert.True(t, state.Dealer.HoleCardHidden)
	require.Len(t, state.Dealer.Cards, 1)
	assert.Equal(t, "9", state.Dealer.Cards[0].Rank)
	assert.True(t, state.CanDoubleDown)
	assert.False(t, state.CanSplit)

	// The raw body must not leak the hole card
	rr := ts.request(http.MethodGet, "/api/v1/sessions/"+start.SessionID+"/game", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"K"`)
}

func TestStartGameValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"zero bet", map[string]any{"player_name": "ada", "bet": 0, "balance": 100}, http.StatusBadRequest, apierr.CodeInvalidBet},
		{"negative balance", map[string]any{"player_name": "ada", "bet": 10, "balance": -1}, http.StatusBadRequest, apierr.CodeInvalidBalance},
		{"bet over balance", map[string]any{"player_name": "ada", "bet": 200, "balance": 100}, http.StatusBadRequest, apierr.CodeInsufficientFunds},
		{"missing name", map[string]any{"bet": 10, "balance": 100}, http.StatusBadRequest, apierr.CodeInvalidPlayerName},
		{"unknown session", map[string]any{"session_id": "nope", "player_name": "ada", "bet": 10, "balance": 100}, http.StatusNotFound, apierr.CodeSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/game/start", tt.body)
			assertError(t, rr, tt.status, tt.code)
		})
	}
}

func TestPlayRoundAndRestart(t *testing.T) {
	ts := newTestServer(t)

	// player 10+6, dealer 9 up, 8 hole; hit draws 4 for 20
	start := ts.startGame(t, 100, 1000, "10", "9", "6", "8", "4")
	base := "/api/v1/sessions/" + start.SessionID + "/game"

	rr := ts.request(http.MethodPost, base+"/restart", map[string]int{"bet": 100})
	assertError(t, rr, http.StatusConflict, apierr.CodeRoundInProgress)

	rr = ts.request(http.MethodPost, base+"/hit", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	state := decode[response.GameState](t, rr)
	assert.Equal(t, 20, state.Player.Hands[0].Total)
	assert.False(t, state.CanDoubleDown)

	rr = ts.request(http.MethodPost, base+"/double", nil)
	assertError(t, rr, http.StatusConflict, apierr.CodeCannotDoubleDown)

	rr = ts.request(http.MethodPost, base+"/stand", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	state = decode[response.GameState](t, rr)
	assert.Equal(t, "result", state.Phase)
	assert.Equal(t, "win", state.Status)
	assert.False(t, state.Dealer.HoleCardHidden)
	assert.Len(t, state.Dealer.Cards, 2)
	assert.Equal(t, 1100, state.Player.Balance)
	require.Len(t, state.Results, 1)
	assert.Equal(t, 200, state.Results[0].Payout)

	rr = ts.request(http.MethodPost, base+"/hit", nil)
	assertError(t, rr, http.StatusConflict, apierr.CodeIllegalAction)

	ts.app.MockDecks.QueueDeck(mocks.Cards("5", "6", "7", "8")...)
	rr = ts.request(http.MethodPost, base+"/restart", map[string]int{"bet": 300})
	require.Equal(t, http.StatusOK, rr.Code)
	state = decode[response.GameState](t, rr)
	assert.Equal(t, 2, state.Round)
	assert.Equal(t, 800, state.Player.Balance)
	assert.Equal(t, 300, state.Player.Bet)
}

func TestUnknownAction(t *testing.T) {
	ts := newTestServer(t)
	start := ts.startGame(t, 100, 1000, "10", "9", "6", "8")

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+start.SessionID+"/game/surrender", nil)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidAction)
}

func TestSplitOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	start := ts.startGame(t, 100, 1000, "8", "10", "h:8", "7", "2", "3")
	require.True(t, start.State.CanSplit)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+start.SessionID+"/game/split", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	state := decode[response.GameState](t, rr)
	assert.True(t, state.Player.SplitActive)
	assert.Len(t, state.Player.Hands, 2)
	assert.Equal(t, 800, state.Player.Balance)
	assert.Equal(t, 200, state.Player.Bet)
}

func TestRoomNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/NOPE99", nil)
	assertError(t, rr, http.StatusNotFound, apierr.CodeRoomNotFound)

	rr = ts.request(http.MethodGet, "/api/v1/rooms/NOPE99/events", nil)
	assertError(t, rr, http.StatusNotFound, apierr.CodeRoomNotFound)
}

// Rooms are created over the WebSocket and visible over REST and SSE
func TestRoomOverWebSocket(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.Close()

	ts.app.MockRandom.QueueString("ABC234")
	msg, err := realtime.NewMessage(realtime.TypeCreateRoom, realtime.CreateRoomPayload{PlayerName: "alice"})
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(msg))

	_ = ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	var created realtime.Message
	require.NoError(t, ws.ReadJSON(&created))
	require.Equal(t, realtime.TypeRoomCreated, created.Type)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/abc234", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	room := decode[response.Room](t, rr)
	assert.Equal(t, "ABC234", room.RoomCode)
	assert.Len(t, room.Players, 1)
	assert.Equal(t, 8, room.MaxPlayers)
	assert.Nil(t, room.State)

	resp, err := http.Get(srv.URL + "/api/v1/rooms/ABC234/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: player_list\n", line)
}
