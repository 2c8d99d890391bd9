package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is one decoded client frame: Chat, Draw, Clear or Ready.
type Command interface {
	command()
}

type Chat struct {
	Text string
}

type Draw struct {
	Stroke Stroke
}

type Clear struct{}

type Ready struct{}

func (Chat) command()  {}
func (Draw) command()  {}
func (Clear) command() {}
func (Ready) command() {}

type Point struct {
	X, Y int
}

type Color struct {
	R, G, B int
}

// Stroke is one line segment on the shared canvas.
type Stroke struct {
	From   Point
	To     Point
	Color  Color
	Size   int
	Eraser bool
}

// Decode parses a client → server frame. It never panics on bad input; every
// failure wraps one of the package sentinel errors.
func Decode(line string) (Command, error) {
	line = trimLine(line)
	if strings.TrimSpace(line) == "" {
		return nil, ErrEmptyFrame
	}

	f := split(line)
	switch f.Command {
	case CmdChat:
		text, ok := strings.CutPrefix(line, CmdChat+Delimiter)
		if !ok {
			return nil, fmt.Errorf("%s: %w", CmdChat, ErrArity)
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%s: empty text: %w", CmdChat, ErrField)
		}
		return Chat{Text: text}, nil
	case CmdDraw:
		s, err := decodeStroke(f.Fields)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", CmdDraw, err)
		}
		return Draw{Stroke: s}, nil
	case CmdClear:
		return Clear{}, nil
	case CmdReady:
		return Ready{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", f.Command, ErrUnknownCommand)
	}
}

func decodeStroke(fields []string) (Stroke, error) {
	var s Stroke
	if len(fields) != 5 {
		return s, fmt.Errorf("got %d fields, want 5: %w", len(fields), ErrArity)
	}

	from, err := ints(fields[0], 2)
	if err != nil {
		return s, fmt.Errorf("start point: %w", err)
	}
	to, err := ints(fields[1], 2)
	if err != nil {
		return s, fmt.Errorf("end point: %w", err)
	}
	rgb, err := ints(fields[2], 3)
	if err != nil {
		return s, fmt.Errorf("color: %w", err)
	}
	for _, c := range rgb {
		if c < 0 || c > 255 {
			return s, fmt.Errorf("color channel %d out of range: %w", c, ErrField)
		}
	}
	size, err := canonicalInt(fields[3])
	if err != nil || size <= 0 {
		return s, fmt.Errorf("size %q: %w", fields[3], ErrField)
	}

	var eraser bool
	switch fields[4] {
	case "true":
		eraser = true
	case "false":
	default:
		return s, fmt.Errorf("eraser flag %q: %w", fields[4], ErrField)
	}

	s.From = Point{X: from[0], Y: from[1]}
	s.To = Point{X: to[0], Y: to[1]}
	s.Color = Color{R: rgb[0], G: rgb[1], B: rgb[2]}
	s.Size = size
	s.Eraser = eraser
	return s, nil
}

// ints parses a comma separated tuple of exactly n integers.
func ints(field string, n int) ([]int, error) {
	parts := strings.Split(field, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%q has %d values, want %d: %w", field, len(parts), n, ErrArity)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := canonicalInt(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// canonicalInt accepts only the form strconv.Itoa produces (no sign on
// positives, no padding, no spaces), so a relayed stroke re-encodes to the
// exact bytes the drawer sent.
func canonicalInt(field string) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil || strconv.Itoa(v) != field {
		return 0, fmt.Errorf("%q: %w", field, ErrField)
	}
	return v, nil
}

// DecodeServer splits a server → client frame and checks the field count of
// the fixed-arity commands.
func DecodeServer(line string) (Frame, error) {
	line = trimLine(line)
	if line == "" {
		return Frame{}, ErrEmptyFrame
	}

	f := split(line)
	want := -1
	switch f.Command {
	case CmdStart:
		want = 3
	case CmdTimer, CmdRound:
		want = 1
	case CmdClear, CmdGameOver:
		want = 0
	case CmdDraw:
		want = 5
	case CmdChat:
		text, ok := strings.CutPrefix(line, CmdChat+Delimiter)
		if !ok {
			return Frame{}, fmt.Errorf("%s: %w", CmdChat, ErrArity)
		}
		return Frame{Command: CmdChat, Fields: []string{text}}, nil
	case CmdPlayers, CmdReadyStatus:
	default:
		return Frame{}, fmt.Errorf("%q: %w", f.Command, ErrUnknownCommand)
	}
	if want >= 0 && len(f.Fields) != want {
		return Frame{}, fmt.Errorf("%s: got %d fields, want %d: %w", f.Command, len(f.Fields), want, ErrArity)
	}
	return f, nil
}

// ParseRoster decodes the fields of a PLAYERS frame.
func ParseRoster(fields []string) ([]Entry, error) {
	out := make([]Entry, 0, len(fields))
	for _, field := range fields {
		name, raw, ok := strings.Cut(field, ",")
		if !ok {
			return nil, fmt.Errorf("roster entry %q: %w", field, ErrArity)
		}
		score, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("roster score %q: %w", raw, ErrField)
		}
		out = append(out, Entry{Name: name, Score: score})
	}
	return out, nil
}

// ParseReadyStatus decodes the fields of a READY_STATUS frame.
func ParseReadyStatus(fields []string) ([]ReadyEntry, error) {
	out := make([]ReadyEntry, 0, len(fields))
	for _, field := range fields {
		name, flag, ok := strings.Cut(field, ",")
		if !ok {
			return nil, fmt.Errorf("ready entry %q: %w", field, ErrArity)
		}
		switch flag {
		case "0", "1":
		default:
			return nil, fmt.Errorf("ready flag %q: %w", flag, ErrField)
		}
		out = append(out, ReadyEntry{Name: name, Ready: flag == "1"})
	}
	return out, nil
}
