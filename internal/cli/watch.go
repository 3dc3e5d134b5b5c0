package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var (
		username string
		secret   string
		roomCode string
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a room's event stream",
		Long: `Connect to the websocket gateway as the given user and print the
room's events in real-time: membership changes, chat messages, match
start, readiness, and room closure.

The identity is registered first if it does not exist yet.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			return watchRoom(username, secret, strings.ToUpper(roomCode), jsonOut)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username to connect as")
	cmd.Flags().StringVarP(&secret, "secret", "s", "", "Credential secret")
	cmd.Flags().StringVarP(&roomCode, "room", "r", "MAIN", "Room to watch")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output events as JSON lines")

	return cmd
}

// serverFrame is the superset of reply and event frames
type serverFrame struct {
	// Reply fields
	Op    string          `json:"op,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *APIError       `json:"error,omitempty"`

	// Event fields
	Type     string     `json:"type,omitempty"`
	RoomCode string     `json:"roomCode,omitempty"`
	Users    []Member   `json:"users,omitempty"`
	Message  *watchChat `json:"message,omitempty"`
}

type watchChat struct {
	RoomCode  string `json:"roomCode"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestampMillis"`
}

func watchRoom(username, secret, roomCode string, jsonOut bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	wsURL, err := gatewayURL(cfg.ServerURL, cfg.Token)
	if err != nil {
		return err
	}

	sock, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = sock.Close(websocket.StatusNormalClosure, "") }()

	send := func(op string, data any) error {
		frame := map[string]any{"op": op}
		if data != nil {
			frame["data"] = data
		}
		raw, err := json.Marshal(frame)
		if err != nil {
			return err
		}
		return sock.Write(ctx, websocket.MessageText, raw)
	}

	// awaitReply drains frames until the named op answers, printing any
	// events that arrive in between
	awaitReply := func(op string) (json.RawMessage, error) {
		for {
			_, raw, err := sock.Read(ctx)
			if err != nil {
				return nil, err
			}
			var frame serverFrame
			if err := json.Unmarshal(raw, &frame); err != nil {
				continue
			}
			if frame.Op == op {
				if frame.Error != nil {
					return nil, fmt.Errorf("%s", frame.Error.String())
				}
				return frame.Data, nil
			}
			if frame.Type != "" {
				printFrame(frame, raw, jsonOut)
			}
		}
	}

	creds := map[string]string{"username": username, "secret": secret}
	if err := send("register", creds); err != nil {
		return err
	}
	registered, err := awaitReply("register")
	if err != nil {
		return err
	}

	var identity struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(registered, &identity)

	if err := send("auth", map[string]string{
		"id": identity.ID, "username": username, "secret": secret,
	}); err != nil {
		return err
	}
	if _, err := awaitReply("auth"); err != nil {
		return err
	}

	if roomCode != "" && roomCode != "MAIN" {
		if err := send("joinRoom", map[string]string{"roomCode": roomCode}); err != nil {
			return err
		}
		if _, err := awaitReply("joinRoom"); err != nil {
			return err
		}
	}

	if !jsonOut {
		fmt.Printf("Watching room %s as %s\n", roomCode, username)
	}

	for {
		_, raw, err := sock.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				if !jsonOut {
					fmt.Println("\nDisconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		var frame serverFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		printFrame(frame, raw, jsonOut)
	}
}

// gatewayURL converts the configured HTTP base URL into the websocket
// endpoint, attaching the gateway token when set
func gatewayURL(serverURL, token string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"

	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func printFrame(frame serverFrame, raw []byte, jsonOut bool) {
	if jsonOut {
		fmt.Println(string(raw))
		return
	}

	timestamp := time.Now().Format("15:04:05")
	switch frame.Type {
	case "message":
		if frame.Message != nil {
			fmt.Printf("[%s] %s: %s\n", timestamp, frame.Message.Username, frame.Message.Text)
		}
	case "users":
		names := make([]string, 0, len(frame.Users))
		for _, m := range frame.Users {
			names = append(names, m.Username)
		}
		fmt.Printf("[%s] members: %s\n", timestamp, strings.Join(names, ", "))
	case "closing":
		fmt.Printf("[%s] room closing\n", timestamp)
	case "":
		// Reply frame; only interesting in verbose runs
		if cfg.Verbose {
			fmt.Printf("[%s] reply %s\n", timestamp, frame.Op)
		}
	default:
		fmt.Printf("[%s] %s %s\n", timestamp, frame.Type, frame.RoomCode)
	}
}
