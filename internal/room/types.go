package room

import (
	"time"

	"github.com/sakshamg567/catchping/internal/protocol"
)

// Conn is one client stream carrying newline-delimited frames, whatever the
// transport underneath.
type Conn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	// Ping keeps idle links alive; transports without a keepalive return nil.
	Ping() error
	Close() error
	RemoteAddr() string
}

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
)

type inputKind int

const (
	inputJoin inputKind = iota
	inputLeave
	inputCommand
	inputTick
	inputSnapshot
)

// input is everything the room goroutine reacts to, in arrival order.
type input struct {
	kind    inputKind
	session *Session
	cmd     protocol.Command
	gen     uint64
	reply   chan Snapshot
}

// TickerFactory creates a periodic tick source and the func that stops it.
type TickerFactory func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type PlayerSummary struct {
	ID      string `json:"playerId"`
	Name    string `json:"name"`
	Points  int    `json:"points"`
	Ready   bool   `json:"ready"`
	Drawing bool   `json:"drawing"`
}

// Snapshot is a read-only view of the room. It never includes the secret word.
type Snapshot struct {
	RoomID      string          `json:"roomId"`
	Phase       Phase           `json:"phase"`
	Round       int             `json:"round"`
	TotalRounds int             `json:"totalRounds"`
	TimeLeft    int             `json:"timeLeft"`
	Drawer      string          `json:"drawer,omitempty"`
	Players     []PlayerSummary `json:"players"`
}
