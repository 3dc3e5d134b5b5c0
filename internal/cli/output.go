package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
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
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case RoomSummary:
		o.printRoomSummary(v)
	case RoomList:
		o.printRoomList(v)
	case Room:
		o.printRoom(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Member response type
type Member struct {
	Username string `json:"username"`
}

// RoomSummary response type
type RoomSummary struct {
	Code        string `json:"code"`
	Capacity    int    `json:"capacity"`
	MemberCount int    `json:"member_count"`
	MatchState  string `json:"match_state,omitempty"`
}

// RoomList response type
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

// ChatLine response type
type ChatLine struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestampMillis"`
}

// Room response type
type Room struct {
	Code       string     `json:"code"`
	Capacity   int        `json:"capacity"`
	Members    []Member   `json:"members"`
	MatchState string     `json:"match_state,omitempty"`
	Chat       []ChatLine `json:"chat"`
}

// HealthResult response type
type HealthResult struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
	Rooms          int    `json:"rooms"`
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s (%s)\n", u.Username, u.ID)
	fmt.Printf("Registered: %s\n", u.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printRoomSummary(r RoomSummary) {
	capStr := "unbounded"
	if r.Capacity > 0 {
		capStr = fmt.Sprintf("%d", r.Capacity)
	}
	line := fmt.Sprintf("%s  members=%d  capacity=%s", r.Code, r.MemberCount, capStr)
	if r.MatchState != "" {
		line += "  match=" + r.MatchState
	}
	fmt.Println(line)
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Println("No rooms")
		return
	}
	for _, r := range l.Rooms {
		o.printRoomSummary(r)
	}
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.Code)
	if r.Capacity > 0 {
		fmt.Printf("Capacity: %d\n", r.Capacity)
	} else {
		fmt.Println("Capacity: unbounded")
	}
	if r.MatchState != "" {
		fmt.Printf("Match: %s\n", r.MatchState)
	}
	fmt.Printf("Members (%d):\n", len(r.Members))
	for _, m := range r.Members {
		fmt.Printf("  - %s\n", m.Username)
	}
	if len(r.Chat) > 0 {
		fmt.Println("Chat:")
		for _, line := range r.Chat {
			ts := time.UnixMilli(line.Timestamp).Format("15:04:05")
			fmt.Printf("  [%s] %s: %s\n", ts, line.Username, line.Text)
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Active sessions: %d\n", h.ActiveSessions)
	fmt.Printf("Rooms: %d\n", h.Rooms)
}
