package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sakshamg567/catchping/internal/protocol"
	"github.com/sakshamg567/catchping/logger"
	"github.com/sakshamg567/catchping/pkg/utils"
)

const (
	sendBuffer = 256
	pingPeriod = 54 * time.Second
)

// Session is one connected participant. name and score belong to the room
// goroutine; the pumps only touch conn, send and the context.
type Session struct {
	ID    string
	name  string
	score int

	conn    Conn
	send    chan string
	limiter *rate.Limiter
	strokes *rate.Limiter
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
}

// NewSession wraps an accepted connection. The display name is sanitized
// here and made unique when the room registers the session.
func (r *Room) NewSession(conn Conn, rawName string) *Session {
	ctx, cancel := context.WithCancel(context.Background())


	return &Session{
		ID:      utils.NewSessionID(),
		name:    protocol.SanitizeName(rawName),
		conn:    conn,
		send:    make(chan string, sendBuffer),
		limiter: newLimiter(r.cfg.ChatPerSecond, r.cfg.ChatBurst),
		strokes: newLimiter(r.cfg.DrawPerSecond, r.cfg.DrawBurst),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// newLimiter treats a non-positive rate as unlimited.
func newLimiter(perSecond float64, burst int) *rate.Limiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(limit, burst)
}

func (s *Session) Name() string { return s.name }
func (s *Session) Score() int   { return s.score }

// Done is closed once the session has been asked to disconnect.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Close signals the write pump to flush and hang up. Safe to call repeatedly
// and from any goroutine.
func (s *Session) Close() {
	s.once.Do(s.cancel)
}

// deliver queues one outbound line without ever blocking the room. A session
// whose queue is full is too slow to keep up and gets disconnected.
func (s *Session) deliver(line string) bool {
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case s.send <- line:
		return true
	default:
		logger.Warn("session %s send queue full, disconnecting", s.ID)
		s.Close()
		return false
	}
}

func (s *Session) ReadPump(r *Room) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("session %s readPump panic: %v", s.ID, rec)
		}
		logger.Debug("session %s readPump exiting", s.ID)
		r.Leave(s)
	}()

	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			if s.ctx.Err() == nil {
				logger.Info("session %s read ended: %v", s.ID, err)
			}
			return
		}

		cmd, err := protocol.Decode(line)
		if err != nil {
			if errors.Is(err, protocol.ErrEmptyFrame) {
				continue
			}
			logger.Warn("session %s dropped frame %q: %v", s.ID, clip(line), err)
			continue
		}

		if !s.allow(cmd) {
			continue
		}

		if !r.Submit(s, cmd) {
			return
		}
	}
}

// allow applies the per-session budgets. DRAW and CLEAR fan out to every
// other session, so an unbounded burst would overflow the peers' queues.
func (s *Session) allow(cmd protocol.Command) bool {
	switch cmd.(type) {
	case protocol.Chat:
		if !s.limiter.Allow() {
			logger.Warn("session %s chat rate exceeded, dropping line", s.ID)
			return false
		}
	case protocol.Draw, protocol.Clear:
		if !s.strokes.Allow() {
			logger.Debug("session %s stroke rate exceeded, dropping frame", s.ID)
			return false
		}
	}
	return true
}

func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
		if err := s.conn.Close(); err != nil {
			logger.Debug("session %s close: %v", s.ID, err)
		}
	}()

	for {
		select {
		case <-s.ctx.Done():
			s.flush()
			return

		case line := <-s.send:
			if err := s.conn.WriteLine(line); err != nil {
				logger.Info("session %s write error: %v", s.ID, err)
				return
			}

		case <-ticker.C:
			if err := s.conn.Ping(); err != nil {
				logger.Info("session %s ping error: %v", s.ID, err)
				return
			}
		}
	}
}

// flush writes whatever was queued before the close so that farewell notices
// (room full, game over) still reach the client.
func (s *Session) flush() {
	for {
		select {
		case line := <-s.send:
			if err := s.conn.WriteLine(line); err != nil {
				return
			}
		default:
			return
		}
	}
}

func clip(line string) string {
	const max = 80
	if len(line) <= max {
		return line
	}
	return line[:max] + "..."
}
