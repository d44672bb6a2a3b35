package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/spotx/internal/codec"
	"github.com/desertthunder/spotx/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStateFetched MsgKind = iota
	MsgQueueFetched
	MsgCommandDone
	MsgTick
)

type stateResult struct {
	state codec.Optional[models.PlaybackState]
	err   error
	poll  bool
}

type queueResult struct {
	queue models.Queue
	err   error
}

type commandResult struct {
	name string
	err  error
}

// stateFetchedMsg is the constructor for [MsgStateFetched]. poll marks a result of the polling loop, which schedules
// the next tick.
func stateFetchedMsg(state codec.Optional[models.PlaybackState], err error, poll bool) Msg {
	return Msg{kind: MsgStateFetched, data: stateResult{state, err, poll}}
}

// queueFetchedMsg is the constructor for [MsgQueueFetched]
func queueFetchedMsg(queue models.Queue, err error) Msg {
	return Msg{kind: MsgQueueFetched, data: queueResult{queue, err}}
}

// commandDoneMsg is the constructor for [MsgCommandDone]
func commandDoneMsg(name string, err error) Msg {
	return Msg{kind: MsgCommandDone, data: commandResult{name, err}}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg(t time.Time) Msg {
	return Msg{kind: MsgTick, data: t}
}
