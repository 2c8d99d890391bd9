package room

import (
	"context"
	"errors"
	"time"

	"github.com/sakshamg567/catchping/internal/config"
	"github.com/sakshamg567/catchping/internal/events"
	"github.com/sakshamg567/catchping/internal/protocol"
	"github.com/sakshamg567/catchping/logger"
	"github.com/sakshamg567/catchping/pkg/utils"
)

const inboxSize = 1024

var ErrRoomClosed = errors.New("room closed")

// Room is the single game instance of the process. All state below inbox is
// owned by the goroutine running Run; other goroutines talk to it only
// through Join, Leave, Submit and Snapshot.
type Room struct {
	ID  string
	cfg config.Game
	pub events.Publisher

	inbox chan input
	done  chan struct{}

	players     registry
	ready       map[*Session]bool
	running     bool
	round       int
	drawerIndex int
	word        string
	timeLeft    int
	deck        *Deck
	timer       *roundTimer
}

type Options struct {
	Game      config.Game
	Words     []string
	Publisher events.Publisher
	// NewTicker and Shuffle default to the real clock and math/rand.
	NewTicker TickerFactory
	Shuffle   Shuffler
}

func New(opts Options) *Room {
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.NewTicker == nil {
		opts.NewTicker = realTicker
	}

	r := &Room{
		ID:    utils.GenShortID(),
		cfg:   opts.Game,
		pub:   opts.Publisher,
		inbox: make(chan input, inboxSize),
		done:  make(chan struct{}),
		ready: make(map[*Session]bool),
		deck:  NewDeck(opts.Words, opts.Shuffle),
	}
	r.timer = &roundTimer{newTicker: opts.NewTicker, deliver: r.deliverTick}
	return r
}

// Run processes inputs one at a time until ctx is cancelled, then stops the
// timer and disconnects every session. Run must be called at most once.
func (r *Room) Run(ctx context.Context) {
	logger.Info("room %s running", r.ID)

	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return
		case in := <-r.inbox:
			r.handle(in)
		}
	}
}

func (r *Room) shutdown() {
	r.timer.Cancel()
	for _, s := range r.players.sessions {
		s.deliver(protocol.ChatLine("The server is shutting down."))
		s.Close()
	}
	close(r.done)
	pending := r.discardPending()
	logger.Info("room %s stopped with %d sessions (%d pending inputs dropped)", r.ID, r.players.len(), pending)
}

// discardPending empties the inbox once done is closed. Sessions whose input
// was accepted but never handled still get closed, so their write pumps
// return. Anything sent after this drain is caught by enqueue itself.
func (r *Room) discardPending() int {
	n := 0
	for {
		select {
		case in := <-r.inbox:
			n++
			if in.session != nil {
				in.session.Close()
			}
		default:
			return n
		}
	}
}

func (r *Room) enqueue(in input) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.inbox <- in:
	case <-r.done:
		return false
	}
	select {
	case <-r.done:
		// the room may have stopped before reading this input
		if in.session != nil {
			in.session.Close()
		}
		return false
	default:
		return true
	}
}

// Join hands a freshly connected session to the room. It reports false when
// the room has stopped.
func (r *Room) Join(s *Session) bool {
	return r.enqueue(input{kind: inputJoin, session: s})
}

// Leave is idempotent; leaving a room that already stopped just closes the
// session.
func (r *Room) Leave(s *Session) {
	if !r.enqueue(input{kind: inputLeave, session: s}) {
		s.Close()
	}
}

func (r *Room) Submit(s *Session, cmd protocol.Command) bool {
	return r.enqueue(input{kind: inputCommand, session: s, cmd: cmd})
}

func (r *Room) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	select {
	case r.inbox <- input{kind: inputSnapshot, reply: reply}:
	case <-r.done:
		return Snapshot{}, ErrRoomClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-r.done:
		return Snapshot{}, ErrRoomClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (r *Room) deliverTick(gen uint64, stop <-chan struct{}) bool {
	select {
	case r.inbox <- input{kind: inputTick, gen: gen}:
		return true
	case <-stop:
		return false
	case <-r.done:
		return false
	}
}

func (r *Room) handle(in input) {
	start := time.Now()
	switch in.kind {
	case inputJoin:
		r.handleJoin(in.session)
	case inputLeave:
		r.handleLeave(in.session)
	case inputCommand:
		r.handleCommand(in.session, in.cmd)
	case inputTick:
		r.handleTick(in.gen)
	case inputSnapshot:
		in.reply <- r.snapshot()
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		logger.Warn("room %s slow input kind=%d took %s", r.ID, in.kind, elapsed)
	}
}

func (r *Room) snapshot() Snapshot {
	snap := Snapshot{
		RoomID:      r.ID,
		Phase:       PhaseIdle,
		Round:       r.round,
		TotalRounds: r.cfg.TotalRounds,
		TimeLeft:    r.timeLeft,
		Players:     make([]PlayerSummary, 0, r.players.len()),
	}
	if r.running {
		snap.Phase = PhaseRunning
		snap.Drawer = r.drawer().name
	}
	for i, s := range r.players.sessions {
		snap.Players = append(snap.Players, PlayerSummary{
			ID:      s.ID,
			Name:    s.name,
			Points:  s.score,
			Ready:   r.ready[s],
			Drawing: r.running && i == r.drawerIndex,
		})
	}
	return snap
}

func (r *Room) publish(e events.Event) {
	e.RoomID = r.ID
	e.At = time.Now().UTC()
	r.pub.Publish(e)
}

func (r *Room) scores() []events.Score {
	out := make([]events.Score, r.players.len())
	for i, s := range r.players.sessions {
		out[i] = events.Score{Name: s.name, Points: s.score}
	}
	return out
}
