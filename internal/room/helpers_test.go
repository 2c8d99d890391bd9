package room

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sakshamg567/catchping/internal/config"
	"github.com/sakshamg567/catchping/internal/events"
	"github.com/sakshamg567/catchping/logger"
)

var testWords = []string{"apple", "banana", "computer", "telephone", "car", "airplane", "puppy", "cat", "piano", "guitar", "desk", "chair"}

func testGame() config.Game {
	g := config.Default().Game
	g.MaxPlayers = 8
	g.CloseGuessDistance = 0
	return g
}

func noShuffle([]string) {}

// idleTicker never fires; tests drive ticks through handleTick.
func idleTicker(time.Duration) (<-chan time.Time, func()) {
	return make(chan time.Time), func() {}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) kinds() []events.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Kind, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

func newTestRoom(t *testing.T, g config.Game) (*Room, *recordingPublisher) {
	t.Helper()
	logger.EnableLogging(false)
	pub := &recordingPublisher{}
	r := New(Options{
		Game:      g,
		Words:     testWords,
		Publisher: pub,
		NewTicker: idleTicker,
		Shuffle:   noShuffle,
	})
	t.Cleanup(r.timer.Cancel)
	return r, pub
}

func join(r *Room, name string) *Session {
	s := r.NewSession(newFakeConn(), name)
	r.handleJoin(s)
	return s
}

func joinAll(r *Room, names ...string) []*Session {
	out := make([]*Session, len(names))
	for i, n := range names {
		out[i] = join(r, n)
	}
	return out
}

// drain returns every line queued to s so far.
func drain(s *Session) []string {
	var out []string
	for {
		select {
		case line := <-s.send:
			out = append(out, line)
		default:
			return out
		}
	}
}

func drainAll(sessions ...*Session) {
	for _, s := range sessions {
		drain(s)
	}
}

func readyAll(r *Room, sessions ...*Session) {
	for _, s := range sessions {
		r.handleCommand(s, readyCmd)
	}
}

func tick(r *Room) {
	r.handleTick(r.timer.gen)
}

func withPrefix(lines []string, prefix string) []string {
	var out []string
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			out = append(out, l)
		}
	}
	return out
}

// fakeConn is an in-memory Conn: tests push inbound lines and inspect what
// the write pump produced.
type fakeConn struct {
	in        chan string
	closed    chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	written []string
	failW   bool
	// delay slows every write down, like a client on a poor link.
	delay time.Duration
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan string, 64), closed: make(chan struct{})}
}

func (c *fakeConn) ReadLine() (string, error) {
	select {
	case line, ok := <-c.in:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-c.closed:
		return "", net.ErrClosed
	}
}

func (c *fakeConn) WriteLine(line string) error {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failW {
		return errors.New("broken pipe")
	}
	select {
	case <-c.closed:
		return net.ErrClosed
	default:
	}
	c.written = append(c.written, line)
	return nil
}

func (c *fakeConn) Ping() error { return nil }

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) RemoteAddr() string { return "pipe" }

func (c *fakeConn) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
