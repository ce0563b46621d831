package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"github.com/mcoot/blackjack-go/internal/api/apierr"
	"github.com/mcoot/blackjack-go/internal/api/realtime"
	"github.com/mcoot/blackjack-go/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintln(os.Stderr, pterm.Error.Sprint(err))
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	if _, frame := data.(realtime.Message); !frame {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\nStorage: %s\n", v.Status, v.Storage)
	case response.StartGame:
		fmt.Fprintf(o.w, "Session: %s\n", v.SessionID)
		o.printGameState(v.State)
	case response.GameState:
		o.printGameState(v)
	case response.Room:
		o.printRoom(v)
	case realtime.Message:
		o.printFrame(v)
	default:
		o.printJSON(data)
	}
}

func formatHand(h response.Hand) string {
	labels := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		labels[i] = c.Label
	}
	total := fmt.Sprintf("%d", h.Total)
	switch {
	case h.Blackjack:
		total = "blackjack"
	case h.Bust:
		total += " bust"
	case h.Soft:
		total += " soft"
	}
	return fmt.Sprintf("%s (%s)", strings.Join(labels, " "), total)
}

func formatDealer(d response.Dealer) string {
	s := formatHand(d.Hand)
	if d.HoleCardHidden {
		s = strings.Replace(s, " (", " ?? (", 1)
	}
	return s
}

func colorOutcome(outcome string) string {
	switch outcome {
	case "win":
		return pterm.LightGreen(outcome)
	case "lose", "bust":
		return pterm.LightRed(outcome)
	case "draw":
		return pterm.LightYellow(outcome)
	}
	return outcome
}

func (o *Output) printGameState(g response.GameState) {
	var b strings.Builder
	fmt.Fprintf(&b, "Dealer: %s\n", formatDealer(g.Dealer))
	for i, h := range g.Player.Hands {
		marker := " "
		if g.Phase == "player-turn" && i == g.Player.ActiveHand {
			marker = ">"
		}
		flags := ""
		if h.Doubled {
			flags += " doubled"
		}
		fmt.Fprintf(&b, "%s Hand %d: %s bet %d%s\n", marker, i+1, formatHand(h.Hand), h.Bet, flags)
	}
	fmt.Fprintf(&b, "Balance: %d  Bet: %d", g.Player.Balance, g.Player.Bet)

	if g.Phase == "player-turn" {
		var options []string
		options = append(options, "hit", "stand")
		if g.CanDoubleDown {
			options = append(options, "double")
		}
		if g.CanSplit {
			options = append(options, "split")
		}
		fmt.Fprintf(&b, "\nOptions: %s", strings.Join(options, ", "))
	}

	for i, r := range g.Results {
		fmt.Fprintf(&b, "\nHand %d: %s x%.1f payout %d", i+1, colorOutcome(r.Outcome), r.Multiplier, r.Payout)
	}
	if g.Phase == "result" {
		fmt.Fprintf(&b, "\nResult: %s", colorOutcome(g.Status))
	}

	title := fmt.Sprintf("|%s · ROUND %d|", g.Player.Name, g.Round)
	box := pterm.DefaultBox.WithTitle(pterm.LightYellow(title)).WithTitleTopCenter().WithHorizontalPadding(2)
	fmt.Fprintln(o.w, box.Sprint(b.String()))
}

func (o *Output) printRoom(r response.Room) {
	fmt.Fprintf(o.w, "Room: %s (%d/%d players)\n", r.RoomCode, len(r.Players), r.MaxPlayers)
	if r.State == nil {
		o.printRoster(r.Players, r.CreatorID)
		return
	}
	o.printRoomState(*r.State)
}

func (o *Output) printRoster(players []response.RoomPlayer, creatorID string) {
	data := pterm.TableData{{"Player", "ID", "Balance"}}
	for _, p := range players {
		name := p.Name
		if p.ID == creatorID {
			name += " *"
		}
		data = append(data, []string{name, p.ID, fmt.Sprintf("%d", p.Balance)})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return
	}
	fmt.Fprintln(o.w, table)
}

func (o *Output) printRoomState(s response.RoomState) {
	fmt.Fprintf(o.w, "Round %d · %s · dealer %s\n", s.Round, s.Phase, formatDealer(s.Dealer))

	data := pterm.TableData{{"Player", "Hand", "Status", "Result"}}
	for _, p := range s.Players {
		status := "playing"
		switch {
		case !p.InRound:
			status = "sitting out"
		case p.ID == s.CurrentTurn:
			status = pterm.LightCyan("to act")
		case p.Hand.Bust:
			status = "bust"
		case p.IsStand:
			status = "stood"
		}
		result := ""
		if r, ok := s.Results[p.ID]; ok {
			result = fmt.Sprintf("%s %d", colorOutcome(r.Outcome), r.Payout)
		}
		hand := ""
		if p.InRound {
			hand = formatHand(p.Hand)
		}
		data = append(data, []string{p.Name, hand, status, result})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return
	}
	fmt.Fprintln(o.w, table)
}

func (o *Output) printFrame(msg realtime.Message) {
	switch msg.Type {
	case realtime.TypeRoomCreated, realtime.TypeRoomJoined:
		var p realtime.MembershipPayload
		_ = msg.Decode(&p)
		verb := "Joined"
		if msg.Type == realtime.TypeRoomCreated {
			verb = "Created"
		}
		fmt.Fprintln(o.w, pterm.Success.Sprintf("%s room %s as %s", verb, p.RoomCode, p.PlayerID))
	case realtime.TypeRoomLeft:
		var p realtime.RoomPayload
		_ = msg.Decode(&p)
		fmt.Fprintln(o.w, pterm.Info.Sprintf("Left room %s", p.RoomCode))
	case realtime.TypeRoomClosed:
		var p realtime.RoomPayload
		_ = msg.Decode(&p)
		fmt.Fprintln(o.w, pterm.Info.Sprintf("Room %s closed", p.RoomCode))
	case realtime.TypeRoomError:
		var e apierr.APIError
		_ = msg.Decode(&e)
		fmt.Fprintln(o.w, pterm.Error.Sprintf("%s (%s)", e.Message, e.Code))
	case realtime.TypePlayerList:
		var p response.PlayerList
		_ = msg.Decode(&p)
		o.printRoster(p.Players, p.CreatorID)
	case realtime.TypeRoundStarted, realtime.TypeStateUpdate:
		var p realtime.StatePayload
		_ = msg.Decode(&p)
		if p.State != nil {
			o.printRoomState(*p.State)
		}
	default:
		o.printJSON(msg)
	}
}
