package room

import (
	"fmt"

	"github.com/sakshamg567/catchping/internal/protocol"
)

// registry keeps sessions in join order; that order is the drawer rotation.
type registry struct {
	sessions []*Session
}

func (g *registry) len() int { return len(g.sessions) }

func (g *registry) at(i int) *Session { return g.sessions[i] }

func (g *registry) indexOf(s *Session) int {
	for i, p := range g.sessions {
		if p == s {
			return i
		}
	}
	return -1
}

func (g *registry) contains(s *Session) bool { return g.indexOf(s) >= 0 }

func (g *registry) add(s *Session) {
	g.sessions = append(g.sessions, s)
}

// remove returns the slot the session occupied, or -1.
func (g *registry) remove(s *Session) int {
	i := g.indexOf(s)
	if i < 0 {
		return -1
	}
	g.sessions = append(g.sessions[:i], g.sessions[i+1:]...)
	return i
}

// uniqueName appends "(2)", "(3)", ... until no registered session uses the
// name.
func (g *registry) uniqueName(name string) string {
	taken := make(map[string]bool, len(g.sessions))
	for _, p := range g.sessions {
		taken[p.name] = true
	}
	if !taken[name] {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s(%d)", name, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

func (g *registry) roster() []protocol.Entry {
	out := make([]protocol.Entry, len(g.sessions))
	for i, p := range g.sessions {
		out[i] = protocol.Entry{Name: p.name, Score: p.score}
	}
	return out
}
