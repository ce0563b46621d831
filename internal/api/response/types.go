package response

import (
	"github.com/mcoot/blackjack-go/internal/model"
)

// Card is a card as sent to clients
type Card struct {
	Suit  string `json:"suit"`
	Rank  string `json:"rank"`
	Label string `json:"label"`
}

// CardFromModel converts a model.Card
func CardFromModel(c model.Card) Card {
	return Card{
		Suit:  string(c.Suit),
		Rank:  string(c.Rank),
		Label: c.String(),
	}
}

func cardsFromModel(cards []model.Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = CardFromModel(c)
	}
	return out
}

// Hand is an evaluated hand
type Hand struct {
	Cards     []Card `json:"cards"`
	Total     int    `json:"total"`
	Soft      bool   `json:"soft"`
	Blackjack bool   `json:"blackjack"`
	Bust      bool   `json:"bust"`
}

// HandFromModel converts a model.Hand
func HandFromModel(h model.Hand) Hand {
	return Hand{
		Cards:     cardsFromModel(h.Cards),
		Total:     h.Total,
		Soft:      h.IsSoft,
		Blackjack: h.IsBlackjack,
		Bust:      h.IsBust,
	}
}

// Dealer shows only face-up cards. While players act the hole card is
// reported as present but never sent.
type Dealer struct {
	Hand
	HoleCardHidden bool `json:"hole_card_hidden"`
}

// DealerFromModel converts a model.Dealer for the given phase
func DealerFromModel(d model.Dealer, phase model.Phase) Dealer {
	return Dealer{
		Hand:           HandFromModel(d.Hand),
		HoleCardHidden: phase == model.PhasePlayerTurn && d.HiddenCard != nil,
	}
}

// HandResult is the settlement of one hand
type HandResult struct {
	Outcome    string  `json:"outcome"`
	Multiplier float64 `json:"multiplier"`
	Bet        int     `json:"bet"`
	Payout     int     `json:"payout"`
}

// HandResultFromModel converts a model.HandResult
func HandResultFromModel(r model.HandResult) HandResult {
	return HandResult{
		Outcome:    string(r.Outcome),
		Multiplier: r.Multiplier,
		Bet:        r.Bet,
		Payout:     r.Payout,
	}
}

// Single-player

// PlayerHand is a single-player hand with its wager
type PlayerHand struct {
	Hand
	Bet     int  `json:"bet"`
	Doubled bool `json:"doubled"`
	Done    bool `json:"done"`
}

// Player is the single-player participant
type Player struct {
	Name        string       `json:"name"`
	Hands       []PlayerHand `json:"hands"`
	Balance     int          `json:"balance"`
	Bet         int          `json:"bet"`
	SplitActive bool         `json:"split_active"`
	ActiveHand  int          `json:"active_hand"`
}

// GameState is a single-player round as seen by the player
type GameState struct {
	Phase         string       `json:"phase"`
	Status        string       `json:"status"`
	Round         int          `json:"round"`
	Player        Player       `json:"player"`
	Dealer        Dealer       `json:"dealer"`
	CanDoubleDown bool         `json:"can_double_down"`
	CanSplit      bool         `json:"can_split"`
	Results       []HandResult `json:"results,omitempty"`
}

// GameStateFromModel converts a model.GameState
func GameStateFromModel(g *model.GameState) GameState {
	hands := make([]PlayerHand, len(g.Player.Hands))
	for i, h := range g.Player.Hands {
		hands[i] = PlayerHand{
			Hand:    HandFromModel(h.Hand),
			Bet:     h.Bet,
			Doubled: h.Doubled,
			Done:    h.Done,
		}
	}

	var results []HandResult
	for _, r := range g.Results {
		results = append(results, HandResultFromModel(r))
	}

	return GameState{
		Phase:  string(g.Phase),
		Status: string(g.Status),
		Round:  g.Round,
		Player: Player{
			Name:        g.Player.Name,
			Hands:       hands,
			Balance:     g.Player.Balance,
			Bet:         g.Player.Bet,
			SplitActive: g.Player.SplitActive,
			ActiveHand:  g.Player.ActiveHand,
		},
		Dealer:        DealerFromModel(g.Dealer, g.Phase),
		CanDoubleDown: g.CanDoubleDown,
		CanSplit:      g.CanSplit,
		Results:       results,
	}
}

// Session is the response for session creation
type Session struct {
	SessionID  string `json:"session_id"`
	PlayerName string `json:"player_name"`
}

// StartGame is the response for POST /game/start
type StartGame struct {
	SessionID string    `json:"session_id"`
	State     GameState `json:"state"`
}

// Multiplayer

// RoomPlayer is a seat in a room
type RoomPlayer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Hand    Hand   `json:"hand"`
	IsStand bool   `json:"is_stand"`
	InRound bool   `json:"in_round"`
	Bet     int    `json:"bet"`
	Balance int    `json:"balance"`
}

// RoomPlayerFromModel converts a model.RoomPlayer
func RoomPlayerFromModel(p model.RoomPlayer) RoomPlayer {
	return RoomPlayer{
		ID:      string(p.ID),
		Name:    p.Name,
		Hand:    HandFromModel(p.Hand),
		IsStand: p.IsStand,
		InRound: p.InRound,
		Bet:     p.Bet,
		Balance: p.Balance,
	}
}

// RoomState is the shared round state broadcast to every member
type RoomState struct {
	RoomCode    string                `json:"room_code"`
	Phase       string                `json:"phase"`
	Round       int                   `json:"round"`
	Players     []RoomPlayer          `json:"players"`
	Dealer      Dealer                `json:"dealer"`
	CurrentTurn string                `json:"current_turn,omitempty"`
	Results     map[string]HandResult `json:"results,omitempty"`
	Version     int64                 `json:"version"`
}

// RoomStateFromModel converts a room with a round. It returns nil when no
// round has been dealt.
func RoomStateFromModel(r *model.Room) *RoomState {
	if r.Game == nil {
		return nil
	}
	g := r.Game

	state := &RoomState{
		RoomCode:    string(r.Code),
		Phase:       string(g.Phase),
		Round:       g.Round,
		Players:     roomPlayers(r),
		Dealer:      DealerFromModel(g.Dealer, g.Phase),
		CurrentTurn: string(r.CurrentTurn()),
		Version:     r.Version,
	}
	if g.Phase == model.PhaseResult {
		state.Results = make(map[string]HandResult, len(g.Results))
		for id, res := range g.Results {
			state.Results[string(id)] = HandResultFromModel(res)
		}
	}
	return state
}

func roomPlayers(r *model.Room) []RoomPlayer {
	out := make([]RoomPlayer, len(r.Players))
	for i, p := range r.Players {
		out[i] = RoomPlayerFromModel(p)
	}
	return out
}

// PlayerList is the roster update payload
type PlayerList struct {
	Players   []RoomPlayer `json:"players"`
	CreatorID string       `json:"creator_id"`
	Version   int64        `json:"version"`
}

// PlayerListFromModel converts a room's roster
func PlayerListFromModel(r *model.Room) PlayerList {
	return PlayerList{
		Players:   roomPlayers(r),
		CreatorID: string(r.CreatorID),
		Version:   r.Version,
	}
}

// Room is the full room view for GET /rooms/{code}
type Room struct {
	RoomCode   string       `json:"room_code"`
	CreatorID  string       `json:"creator_id"`
	Players    []RoomPlayer `json:"players"`
	MaxPlayers int          `json:"max_players"`
	State      *RoomState   `json:"state"`
	Version    int64        `json:"version"`
}

// RoomFromModel converts a model.Room
func RoomFromModel(r *model.Room) Room {
	return Room{
		RoomCode:   string(r.Code),
		CreatorID:  string(r.CreatorID),
		Players:    roomPlayers(r),
		MaxPlayers: r.Config.MaxPlayers,
		State:      RoomStateFromModel(r),
		Version:    r.Version,
	}
}

// Health is the health check response
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
