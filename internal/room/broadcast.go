package room

import (
	"fmt"

	"github.com/sakshamg567/catchping/internal/protocol"
)

// The room goroutine calls these while handling an input, so every line a
// mutation produces is queued to each session before the next mutation runs.

func (r *Room) broadcast(line string) {
	for _, s := range r.players.sessions {
		s.deliver(line)
	}
}

func (r *Room) broadcastExcept(sender *Session, line string) {
	for _, s := range r.players.sessions {
		if s == sender {
			continue
		}
		s.deliver(line)
	}
}

func (r *Room) sendTo(s *Session, line string) {
	s.deliver(line)
}

func (r *Room) broadcastPlayers() {
	r.broadcast(protocol.Players(r.players.roster()))
}

func (r *Room) broadcastReadyStatus() {
	entries := make([]protocol.ReadyEntry, r.players.len())
	for i, s := range r.players.sessions {
		entries[i] = protocol.ReadyEntry{Name: s.name, Ready: r.ready[s]}
	}
	r.broadcast(protocol.ReadyStatus(entries))
}

func (r *Room) notice(format string, args ...any) {
	r.broadcast(protocol.ChatLine(fmt.Sprintf(format, args...)))
}
