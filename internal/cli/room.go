package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/blackjack-go/internal/api/realtime"
	"github.com/mcoot/blackjack-go/internal/api/response"
)

const roomHelp = `Commands: start, restart, hit, stand, leave, quit`

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Multiplayer room commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomWatchCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a room and play interactively",
		Long: `Open a room and play interactively. Commands are read from stdin, one
per line: ` + roomHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := realtime.NewMessage(realtime.TypeCreateRoom, realtime.CreateRoomPayload{PlayerName: name})
			if err != nil {
				return err
			}
			return runRoomSession(msg, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newRoomJoinCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room and play interactively",
		Long: `Join a room and play interactively. Commands are read from stdin, one
per line: ` + roomHelp,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := realtime.NewMessage(realtime.TypeJoinRoom, realtime.JoinRoomPayload{
				RoomCode:   args[0],
				PlayerName: name,
			})
			if err != nil {
				return err
			}
			return runRoomSession(msg, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room
			if err := client.Get(cmd.Context(), "/api/v1/rooms/"+args[0], &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

// roomSession is one interactive WebSocket seat
type roomSession struct {
	ws   *websocket.Conn
	out  *Output
	mu   sync.Mutex
	code string
	seen chan struct{}
	done chan struct{}
}

// settle is how long the socket must be quiet before a close is sent
const settle = 300 * time.Millisecond

func runRoomSession(first realtime.Message, in io.Reader) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, client.WebSocketURL("/ws"), nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = ws.Close() }()

	s := &roomSession{
		ws:   ws,
		out:  NewOutput(cfg.Output),
		seen: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go s.readLoop()

	if err := ws.WriteJSON(first); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return s.close()
		case <-s.done:
			return nil
		case line, ok := <-lines:
			if !ok {
				return s.close()
			}
			quit, err := s.command(strings.TrimSpace(line))
			if err != nil {
				s.out.PrintError(err)
			}
			if quit {
				return s.close()
			}
		}
	}
}

func (s *roomSession) readLoop() {
	defer close(s.done)
	for {
		var msg realtime.Message
		if err := s.ws.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case realtime.TypeRoomCreated, realtime.TypeRoomJoined:
			var p realtime.MembershipPayload
			if msg.Decode(&p) == nil {
				s.mu.Lock()
				s.code = p.RoomCode
				s.mu.Unlock()
			}
		case realtime.TypeRoomLeft, realtime.TypeRoomClosed:
			s.mu.Lock()
			s.code = ""
			s.mu.Unlock()
		}
		s.out.Print(msg)

		select {
		case s.seen <- struct{}{}:
		default:
		}
	}
}

// command sends one stdin command. It reports whether the session should end.
func (s *roomSession) command(line string) (bool, error) {
	s.mu.Lock()
	code := s.code
	s.mu.Unlock()

	var (
		t       realtime.MessageType
		payload any = realtime.RoomPayload{RoomCode: code}
	)
	switch strings.ToLower(line) {
	case "":
		return false, nil
	case "start":
		t = realtime.TypeStartRound
	case "restart":
		t = realtime.TypeRestartRound
	case "hit", "stand":
		t = realtime.TypePlayerAction
		payload = realtime.PlayerActionPayload{RoomCode: code, Action: strings.ToLower(line)}
	case "leave":
		t = realtime.TypeLeaveRoom
	case "quit", "exit":
		return true, nil
	case "help":
		s.out.PrintMessage(roomHelp)
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q. %s", line, roomHelp)
	}

	msg, err := realtime.NewMessage(t, payload)
	if err != nil {
		return false, err
	}
	return false, s.ws.WriteJSON(msg)
}

// close lets in-flight updates arrive, then ends the socket and waits for
// the server to finish
func (s *roomSession) close() error {
	quiet := time.NewTimer(settle)
	defer quiet.Stop()
	deadline := time.After(3 * time.Second)
wait:
	for {
		select {
		case <-s.seen:
			quiet.Reset(settle)
		case <-quiet.C:
			break wait
		case <-deadline:
			break wait
		case <-s.done:
			return nil
		}
	}

	_ = s.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	select {
	case <-s.done:
	case <-time.After(3 * time.Second):
	}
	return nil
}
