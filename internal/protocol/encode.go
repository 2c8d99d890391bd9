package protocol

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Entry is one roster row.
type Entry struct {
	Name  string
	Score int
}

// ReadyEntry is one readiness roster row.
type ReadyEntry struct {
	Name  string
	Ready bool
}

func join(cmd string, fields ...string) string {
	if len(fields) == 0 {
		return cmd
	}
	return cmd + Delimiter + strings.Join(fields, Delimiter)
}

func Players(roster []Entry) string {
	fields := make([]string, len(roster))
	for i, e := range roster {
		fields[i] = e.Name + "," + strconv.Itoa(e.Score)
	}
	return join(CmdPlayers, fields...)
}

func ChatLine(text string) string {
	return join(CmdChat, text)
}

func DrawLine(s Stroke) string {
	return join(CmdDraw,
		strconv.Itoa(s.From.X)+","+strconv.Itoa(s.From.Y),
		strconv.Itoa(s.To.X)+","+strconv.Itoa(s.To.Y),
		strconv.Itoa(s.Color.R)+","+strconv.Itoa(s.Color.G)+","+strconv.Itoa(s.Color.B),
		strconv.Itoa(s.Size),
		strconv.FormatBool(s.Eraser),
	)
}

func ClearLine() string {
	return CmdClear
}

// Start builds the per-round frame. Guessers get HiddenWord instead of the
// real word.
func Start(word string, timeLeft int, isDrawer bool) string {
	if !isDrawer {
		word = HiddenWord
	}
	return join(CmdStart, word, strconv.Itoa(timeLeft), strconv.FormatBool(isDrawer))
}

func Timer(secondsLeft int) string {
	return join(CmdTimer, strconv.Itoa(secondsLeft))
}

func Round(n int) string {
	return join(CmdRound, strconv.Itoa(n))
}

func ReadyStatus(entries []ReadyEntry) string {
	fields := make([]string, len(entries))
	for i, e := range entries {
		flag := "0"
		if e.Ready {
			flag = "1"
		}
		fields[i] = e.Name + "," + flag
	}
	return join(CmdReadyStatus, fields...)
}

func GameOver() string {
	return CmdGameOver
}

const (
	maxNameRunes = 16
	defaultName  = "guest"
)

// SanitizeName makes a self-reported display name safe to embed in roster
// frames: no delimiter, no commas, no control characters, bounded length.
func SanitizeName(raw string) string {
	name := strings.ReplaceAll(trimLine(raw), Delimiter, "")
	name = strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameRunes {
		name = strings.TrimSpace(string([]rune(name)[:maxNameRunes]))
	}
	if name == "" {
		return defaultName
	}
	return name
}
