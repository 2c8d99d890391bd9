package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/sakshamg567/catchping/logger"
)

type Kind string

const (
	PlayerJoined Kind = "player_joined"
	PlayerLeft   Kind = "player_left"
	GameStarted  Kind = "game_started"
	RoundStarted Kind = "round_started"
	WordGuessed  Kind = "word_guessed"
	GameEnded    Kind = "game_ended"
)

// Event is a room lifecycle notification. It never carries the secret word
// of a round still in play.
type Event struct {
	Kind    Kind      `json:"kind"`
	RoomID  string    `json:"roomId"`
	At      time.Time `json:"at"`
	Round   int       `json:"round,omitempty"`
	Player  string    `json:"player,omitempty"`
	Drawer  string    `json:"drawer,omitempty"`
	Players []Score   `json:"players,omitempty"`
	Reason  string    `json:"reason,omitempty"`
}

type Score struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type Publisher interface {
	Publish(e Event)
	Close()
}

// Nop drops everything.
type Nop struct{}

func (Nop) Publish(Event) {}
func (Nop) Close()        {}

// NATSPublisher fans events out on a single subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("catchping"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc, subject: subject}, nil
}

// Publish is fire-and-forget; nats buffers while reconnecting.
func (p *NATSPublisher) Publish(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		logger.Error("marshal %s event: %v", e.Kind, err)
		return
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		logger.Warn("publish %s event: %v", e.Kind, err)
	}
}

func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		logger.Warn("drain nats: %v", err)
	}
}

// New returns a NATS publisher when url is set and Nop otherwise.
func New(url, subject string) (Publisher, error) {
	if url == "" {
		return Nop{}, nil
	}
	p, err := NewNATSPublisher(url, subject)
	if err != nil {
		return nil, err
	}
	return p, nil
}
