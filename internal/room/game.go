package room

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/sakshamg567/catchping/internal/events"
	"github.com/sakshamg567/catchping/internal/protocol"
	"github.com/sakshamg567/catchping/logger"
)

func (r *Room) drawer() *Session {
	return r.players.at(r.drawerIndex)
}

func (r *Room) handleJoin(s *Session) {
	if s.ctx.Err() != nil {
		return
	}
	if r.players.len() >= r.cfg.MaxPlayers {
		logger.Info("room %s full, rejecting session %s", r.ID, s.ID)
		r.sendTo(s, protocol.ChatLine(fmt.Sprintf("The room is full (%d players max). Try again later.", r.cfg.MaxPlayers)))
		s.Close()
		return
	}

	requested := s.name
	s.name = r.players.uniqueName(requested)
	r.players.add(s)
	logger.Info("room %s: %s joined as %q (%d players)", r.ID, s.ID, s.name, r.players.len())

	r.notice("%s has joined.", s.name)
	if s.name != requested {
		r.sendTo(s, protocol.ChatLine("The name "+requested+" is taken, you are "+s.name+"."))
	}
	r.broadcastPlayers()

	if r.running {
		// late joiners guess from the current round on and enter the rotation
		r.sendTo(s, protocol.Round(r.round))
		r.sendTo(s, protocol.Start(r.word, r.timeLeft, false))
	} else {
		r.broadcastReadyStatus()
	}

	r.publish(events.Event{Kind: events.PlayerJoined, Player: s.name, Round: r.round})
}

func (r *Room) handleLeave(s *Session) {
	s.Close()
	idx := r.players.remove(s)
	if idx < 0 {
		return
	}
	delete(r.ready, s)
	logger.Info("room %s: %s (%q) left (%d players)", r.ID, s.ID, s.name, r.players.len())

	r.notice("%s has left.", s.name)
	r.broadcastPlayers()
	r.publish(events.Event{Kind: events.PlayerLeft, Player: s.name, Round: r.round})

	if !r.running {
		r.broadcastReadyStatus()
		r.maybeStartGame()
		return
	}

	if r.players.len() < r.cfg.MinPlayers {
		r.notice("Not enough players left, the game is over.")
		r.endGame("not enough players")
		return
	}

	switch {
	case idx < r.drawerIndex:
		r.drawerIndex--
	case idx == r.drawerIndex:
		// The slot now holds whoever followed the drawer; step back one so
		// nextRound lands on them.
		r.notice("%s left while drawing. The word was %s.", s.name, r.word)
		r.drawerIndex = idx - 1
		r.nextRound()
	}
}

func (r *Room) handleCommand(s *Session, cmd protocol.Command) {
	if !r.players.contains(s) {
		return
	}
	switch c := cmd.(type) {
	case protocol.Chat:
		r.handleChat(s, c.Text)
	case protocol.Draw:
		r.broadcastExcept(s, protocol.DrawLine(c.Stroke))
	case protocol.Clear:
		r.broadcast(protocol.ClearLine())
	case protocol.Ready:
		r.toggleReady(s)
	}
}

func (r *Room) handleChat(s *Session, text string) {
	guess := strings.TrimSpace(text)
	guessing := r.running && s != r.drawer()

	if guessing && guess == r.word {
		r.awardCorrectGuess(s)
		return
	}

	r.broadcast(protocol.ChatLine(s.name + ": " + text))

	if guessing && r.cfg.CloseGuessDistance > 0 {
		dist := levenshtein.ComputeDistance(strings.ToLower(guess), strings.ToLower(r.word))
		if dist <= r.cfg.CloseGuessDistance {
			r.sendTo(s, protocol.ChatLine("'"+guess+"' is close!"))
		}
	}
}

func (r *Room) awardCorrectGuess(guesser *Session) {
	drawer := r.drawer()
	guesser.score += r.cfg.GuesserPoints
	drawer.score += r.cfg.DrawerPoints
	logger.Info("room %s round %d: %q guessed %q drawn by %q", r.ID, r.round, guesser.name, r.word, drawer.name)

	r.notice("%s guessed the word! (+%d)", guesser.name, r.cfg.GuesserPoints)
	r.notice("%s gets +%d for the drawing!", drawer.name, r.cfg.DrawerPoints)
	r.broadcastPlayers()

	r.publish(events.Event{
		Kind:    events.WordGuessed,
		Round:   r.round,
		Player:  guesser.name,
		Drawer:  drawer.name,
		Players: r.scores(),
	})
	r.nextRound()
}

func (r *Room) toggleReady(s *Session) {
	if r.running {
		r.broadcastReadyStatus()
		return
	}
	if r.ready[s] {
		delete(r.ready, s)
	} else {
		r.ready[s] = true
	}
	r.broadcastReadyStatus()
	r.maybeStartGame()
}

// maybeStartGame starts once every connected session is ready.
func (r *Room) maybeStartGame() {
	n := r.players.len()
	if r.running || n < r.cfg.MinPlayers || len(r.ready) != n {
		return
	}
	r.startGame()
}

func (r *Room) startGame() {
	if r.players.len() < r.cfg.MinPlayers {
		logger.Warn("room %s: start with %d players ignored", r.ID, r.players.len())
		return
	}
	r.running = true
	r.round = 1
	r.ready = make(map[*Session]bool)
	r.drawerIndex = 0
	r.deck.Shuffle()
	logger.Info("room %s: game started with %d players", r.ID, r.players.len())

	r.publish(events.Event{Kind: events.GameStarted, Players: r.scores()})
	r.startRound()
}

func (r *Room) startRound() {
	if r.round > r.cfg.TotalRounds {
		r.endGame("rounds exhausted")
		return
	}
	word, err := r.deck.Next()
	if err != nil {
		logger.Error("room %s round %d: %v", r.ID, r.round, err)
		r.endGame("out of words")
		return
	}
	r.word = word
	r.timeLeft = r.cfg.RoundSeconds

	drawer := r.drawer()
	logger.Debug("room %s round %d: drawer %q", r.ID, r.round, drawer.name)

	r.notice("%s is drawing now.", drawer.name)
	r.broadcast(protocol.Round(r.round))
	r.sendTo(drawer, protocol.Start(r.word, r.timeLeft, true))
	hidden := protocol.Start(r.word, r.timeLeft, false)
	r.broadcastExcept(drawer, hidden)

	r.timer.Start()
	r.publish(events.Event{Kind: events.RoundStarted, Round: r.round, Drawer: drawer.name})
}

func (r *Room) handleTick(gen uint64) {
	if !r.running || !r.timer.live(gen) {
		return
	}
	r.timeLeft--
	r.broadcast(protocol.Timer(r.timeLeft))
	if r.timeLeft <= 0 {
		r.notice("Time's up! The word was %s.", r.word)
		r.nextRound()
	}
}

func (r *Room) nextRound() {
	r.timer.Cancel()
	r.round++
	r.drawerIndex = (r.drawerIndex + 1) % r.players.len()
	r.startRound()
}

func (r *Room) endGame(reason string) {
	final := r.scores()

	r.running = false
	r.round = 0
	r.drawerIndex = 0
	r.word = ""
	r.timeLeft = 0
	r.ready = make(map[*Session]bool)
	r.timer.Cancel()
	for _, s := range r.players.sessions {
		s.score = 0
	}
	logger.Info("room %s: game over (%s)", r.ID, reason)

	r.broadcast(protocol.GameOver())
	r.broadcastPlayers()
	r.deck.Shuffle()

	r.publish(events.Event{Kind: events.GameEnded, Players: final, Reason: reason})
}
