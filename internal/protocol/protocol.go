package protocol

import (
	"errors"
	"strings"
)

// Delimiter separates fields within one frame.
const Delimiter = "//"

// Command tokens.
const (
	CmdChat        = "CHAT"
	CmdDraw        = "DRAW"
	CmdClear       = "CLEAR"
	CmdReady       = "READY"
	CmdPlayers     = "PLAYERS"
	CmdStart       = "START"
	CmdTimer       = "TIMER"
	CmdRound       = "ROUND"
	CmdReadyStatus = "READY_STATUS"
	CmdGameOver    = "GAME_OVER"
)

// HiddenWord is what guessers see in place of the secret word.
const HiddenWord = "?????"

var (
	ErrEmptyFrame     = errors.New("empty frame")
	ErrUnknownCommand = errors.New("unknown command")
	ErrArity          = errors.New("wrong field count")
	ErrField          = errors.New("invalid field")
)

// Frame is a split but otherwise uninterpreted line.
type Frame struct {
	Command string
	Fields  []string
}

func split(line string) Frame {
	parts := strings.Split(line, Delimiter)
	return Frame{Command: parts[0], Fields: parts[1:]}
}

// trimLine strips the line terminator a stream reader may leave behind.
func trimLine(line string) string {
	return strings.TrimRight(line, "\r\n")
}
