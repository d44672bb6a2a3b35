package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/spotx/internal/codec"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
)

// DefaultInterval is the playback polling interval.
const DefaultInterval = 5 * time.Second

// Player is the subset of [services.Client] the TUI drives.
type Player interface {
	PlaybackState(ctx context.Context) (codec.Optional[models.PlaybackState], error)
	Queue(ctx context.Context) (models.Queue, error)
	Play(ctx context.Context, opts services.PlayOptions) error
	Pause(ctx context.Context, deviceID string) error
	Next(ctx context.Context, deviceID string) error
	Previous(ctx context.Context, deviceID string) error
}

var _ Player = (*services.Client)(nil)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	player   Player
	logger   *log.Logger
	interval time.Duration
	width    int
	height   int
	state    codec.Optional[models.PlaybackState]
	lastURI  string
	queue    list.Model
	status   string
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model polling player every interval. A non-positive interval uses [DefaultInterval].
func NewModel(ctx context.Context, player Player, interval time.Duration, logger *log.Logger) *Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	queue := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	queue.Title = "Up Next"
	queue.SetShowHelp(false)

	return &Model{
		ctx:      ctx,
		player:   player,
		logger:   logger,
		interval: interval,
		queue:    queue,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init fetches the playback state and queue and starts polling.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchState(true), m.fetchQueue())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.queue.SetSize(msg.Width-4, max(msg.Height-12, 3))
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.queue, cmd = m.queue.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTick:
		return m, m.fetchState(true)

	case MsgStateFetched:
		res := msg.data.(stateResult)
		delay := m.interval
		var cmds []tea.Cmd

		if res.err != nil {
			m.setError("playback state", res.err)
			var rl *shared.RateLimitError
			if errors.As(res.err, &rl) {
				delay = rl.RetryAfter
			}
		} else {
			m.err = nil
			m.state = res.state
			if uri := m.currentURI(); uri != m.lastURI {
				m.lastURI = uri
				cmds = append(cmds, m.fetchQueue())
			}
		}

		if res.poll {
			cmds = append(cmds, tick(delay))
		}
		return m, tea.Batch(cmds...)

	case MsgQueueFetched:
		res := msg.data.(queueResult)
		if res.err != nil {
			m.setError("queue", res.err)
			return m, nil
		}
		return m, m.queue.SetItems(queueItems(res.queue))

	case MsgCommandDone:
		res := msg.data.(commandResult)
		if res.err != nil {
			m.setError(res.name, res.err)
			return m, nil
		}
		m.err = nil
		m.status = styles.ok.Render(res.name + " ✓")
		return m, tea.Batch(m.fetchState(false), m.fetchQueue())
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		if s, ok := m.state.Get(); ok && s.IsPlaying {
			return m, m.command("pause", func(ctx context.Context, device string) error { return m.player.Pause(ctx, device) })
		}
		return m, m.command("play", func(ctx context.Context, device string) error {
			return m.player.Play(ctx, services.PlayOptions{DeviceID: device})
		})
	case "n":
		return m, m.command("next", m.player.Next)
	case "p":
		return m, m.command("previous", m.player.Previous)
	case "r":
		m.status = ""
		return m, tea.Batch(m.fetchState(false), m.fetchQueue())
	}

	var cmd tea.Cmd
	m.queue, cmd = m.queue.Update(msg)
	return m, cmd
}

func (m *Model) setError(op string, err error) {
	m.logger.Error("player request failed", "op", op, "err", err)
	m.err = err

	var rl *shared.RateLimitError
	switch {
	case errors.As(err, &rl):
		m.status = styles.warn.Render(fmt.Sprintf("rate limited, retrying in %s", rl.RetryAfter))
	case errors.Is(err, shared.ErrAPI):
		m.status = styles.err.Render(fmt.Sprintf("%s rejected: %v", op, err))
	case errors.Is(err, shared.ErrNetwork):
		m.status = styles.err.Render(fmt.Sprintf("%s failed: network unavailable", op))
	default:
		m.status = styles.err.Render(fmt.Sprintf("%s failed: %v", op, err))
	}
}

func (m *Model) currentURI() string {
	if s, ok := m.state.Get(); ok {
		return s.Item.URI()
	}
	return ""
}

func (m *Model) deviceID() string {
	if s, ok := m.state.Get(); ok {
		return s.Device.ID.OrElse("")
	}
	return ""
}

func (m *Model) fetchState(poll bool) tea.Cmd {
	return func() tea.Msg {
		state, err := m.player.PlaybackState(m.ctx)
		return stateFetchedMsg(state, err, poll)
	}
}

func (m *Model) fetchQueue() tea.Cmd {
	return func() tea.Msg {
		queue, err := m.player.Queue(m.ctx)
		return queueFetchedMsg(queue, err)
	}
}

func (m *Model) command(name string, fn func(ctx context.Context, deviceID string) error) tea.Cmd {
	device := m.deviceID()
	return func() tea.Msg {
		return commandDoneMsg(name, fn(m.ctx, device))
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// View renders the player.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("spotx player"))
	b.WriteString("\n")
	b.WriteString(m.renderNowPlaying())
	b.WriteString("\n\n")
	b.WriteString(m.queue.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(styles.help.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return b.String()
}

func (m *Model) renderNowPlaying() string {
	s, ok := m.state.Get()
	if !ok {
		return styles.help.Render("Nothing playing")
	}

	icon := "⏸"
	if s.IsPlaying {
		icon = "▶"
	}

	if s.Item.IsNone() {
		return fmt.Sprintf("%s %s\n%s", icon, s.CurrentlyPlayingType, s.Device.Name)
	}

	bar := progressBar(s.ProgressMS.OrElse(0), s.Item.DurationMS(), barWidth)
	return fmt.Sprintf("%s %s\n  %s\n  %s %s\n  %s • shuffle %t • repeat %s",
		icon, styles.ok.Render(s.Item.Name()), s.Item.Creator(), bar, s.Progress(), s.Device.Name, s.ShuffleState, s.RepeatState)
}
