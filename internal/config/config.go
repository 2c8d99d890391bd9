package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sakshamg567/catchping/pkg/utils"
)

// Game holds the rules of one room.
type Game struct {
	RoundSeconds       int `json:"round_seconds"`
	TotalRounds        int `json:"total_rounds"`
	MinPlayers         int `json:"min_players"`
	MaxPlayers         int `json:"max_players"`
	GuesserPoints      int `json:"guesser_points"`
	DrawerPoints       int `json:"drawer_points"`
	CloseGuessDistance int `json:"close_guess_distance"`
	// ChatPerSecond and ChatBurst bound inbound CHAT frames per session.
	ChatPerSecond float64 `json:"chat_per_second"`
	ChatBurst     int     `json:"chat_burst"`
	// DrawPerSecond and DrawBurst bound inbound DRAW and CLEAR frames, which
	// fan out to every other session.
	DrawPerSecond float64 `json:"draw_per_second"`
	DrawBurst     int     `json:"draw_burst"`
}

type Config struct {
	TCPAddr     string        `json:"tcp_addr"`
	HTTPAddr    string        `json:"http_addr"`
	WordsFile   string        `json:"words_file"`
	LogLevel    string        `json:"log_level"`
	NATSURL     string        `json:"nats_url"`
	NATSSubject string        `json:"nats_subject"`
	NameTimeout time.Duration `json:"-"`
	Game        Game          `json:"game"`

	Words []string `json:"-"`
}

// Default mirrors the constants the game has always shipped with.
func Default() Config {
	return Config{
		TCPAddr:     ":1000",
		HTTPAddr:    ":3000",
		LogLevel:    "info",
		NATSSubject: "catchping.room.events",
		NameTimeout: 30 * time.Second,
		Game: Game{
			RoundSeconds:       60,
			TotalRounds:        10,
			MinPlayers:         2,
			MaxPlayers:         4,
			GuesserPoints:      2,
			DrawerPoints:       1,
			CloseGuessDistance: 1,
			ChatPerSecond:      5,
			ChatBurst:          10,
			DrawPerSecond:      60,
			DrawBurst:          120,
		},
	}
}

// Load layers defaults, the optional JSON file at path, and CATCHPING_*
// environment variables, then loads the word bank and validates.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if cfg.WordsFile != "" {
		words, err := utils.LoadWords(cfg.WordsFile)
		if err != nil {
			return cfg, err
		}
		cfg.Words = words
	} else {
		cfg.Words = utils.DefaultWords()
	}

	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"CATCHPING_TCP_ADDR":     &cfg.TCPAddr,
		"CATCHPING_HTTP_ADDR":    &cfg.HTTPAddr,
		"CATCHPING_WORDS_FILE":   &cfg.WordsFile,
		"CATCHPING_LOG_LEVEL":    &cfg.LogLevel,
		"CATCHPING_NATS_URL":     &cfg.NATSURL,
		"CATCHPING_NATS_SUBJECT": &cfg.NATSSubject,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CATCHPING_ROUND_SECONDS":        &cfg.Game.RoundSeconds,
		"CATCHPING_TOTAL_ROUNDS":         &cfg.Game.TotalRounds,
		"CATCHPING_MIN_PLAYERS":          &cfg.Game.MinPlayers,
		"CATCHPING_MAX_PLAYERS":          &cfg.Game.MaxPlayers,
		"CATCHPING_CLOSE_GUESS_DISTANCE": &cfg.Game.CloseGuessDistance,
		"CATCHPING_GUESSER_POINTS":       &cfg.Game.GuesserPoints,
		"CATCHPING_DRAWER_POINTS":        &cfg.Game.DrawerPoints,
		"CATCHPING_CHAT_BURST":           &cfg.Game.ChatBurst,
		"CATCHPING_DRAW_BURST":           &cfg.Game.DrawBurst,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", key, v, err)
		}
		*dst = n
	}

	floats := map[string]*float64{
		"CATCHPING_CHAT_PER_SECOND": &cfg.Game.ChatPerSecond,
		"CATCHPING_DRAW_PER_SECOND": &cfg.Game.DrawPerSecond,
	}
	for key, dst := range floats {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", key, v, err)
		}
		*dst = f
	}
	return nil
}

var (
	ErrRounds  = errors.New("round settings must be positive")
	ErrPlayers = errors.New("player bounds invalid")
	ErrWords   = errors.New("word bank smaller than total rounds")
	ErrLimits  = errors.New("rate limits invalid")
)

func (c Config) Validate() error {
	g := c.Game
	if g.RoundSeconds <= 0 || g.TotalRounds <= 0 {
		return ErrRounds
	}
	if g.MinPlayers < 2 || g.MaxPlayers < g.MinPlayers {
		return fmt.Errorf("min %d max %d: %w", g.MinPlayers, g.MaxPlayers, ErrPlayers)
	}
	if g.GuesserPoints < 0 || g.DrawerPoints < 0 || g.CloseGuessDistance < 0 {
		return fmt.Errorf("points and distances must not be negative: %w", ErrRounds)
	}
	// a zero rate disables a limiter, but a live bucket needs room for one frame
	if g.ChatPerSecond < 0 || g.DrawPerSecond < 0 || g.ChatBurst < 1 || g.DrawBurst < 1 {
		return fmt.Errorf("chat %.2f/s burst %d, draw %.2f/s burst %d: %w",
			g.ChatPerSecond, g.ChatBurst, g.DrawPerSecond, g.DrawBurst, ErrLimits)
	}
	if len(c.Words) < g.TotalRounds {
		return fmt.Errorf("%d words for %d rounds: %w", len(c.Words), g.TotalRounds, ErrWords)
	}
	return nil
}
