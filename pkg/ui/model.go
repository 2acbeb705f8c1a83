package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	overlayApp "github.com/fd1az/mempool-block/business/overlay/app"
	overlayDomain "github.com/fd1az/mempool-block/business/overlay/domain"
	triggerApp "github.com/fd1az/mempool-block/business/trigger/app"
)

// Model is the Bubble Tea page: a landing screen with the home square, a newsletter field and a help modal.
// The overlay is drawn on top of it while a session is mounted.
type Model struct {
	ctx        context.Context
	keys       KeyMap
	help       help.Model
	input      textinput.Model
	styles     Styles
	palette    Palette
	lipgloss   *lipgloss.Renderer
	layout     *Layout
	detector   *triggerApp.Detector
	controller *overlayApp.Controller
	renderer   *Renderer
	clock      clock.Clock
	frame      time.Duration
	keyword    string

	view     *overlayDomain.View
	showHelp bool
	touching bool
	notice   string
}

func newModel(ctx context.Context, s *Session, lr *lipgloss.Renderer, keyword string, clk clock.Clock, frame time.Duration) Model {
	in := textinput.New()
	in.Placeholder = "you@example.com"
	in.Prompt = "> "
	in.CharLimit = 64
	in.Width = 32

	return Model{
		ctx:        ctx,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		input:      in,
		styles:     NewStyles(lr),
		palette:    DefaultPalette(),
		lipgloss:   lr,
		layout:     s.layout,
		detector:   s.detector,
		controller: s.controller,
		renderer:   s.renderer,
		clock:      clk,
		frame:      frame,
		keyword:    keyword,
	}
}

// Init starts listening for overlay updates.
func (m Model) Init() tea.Cmd {
	return m.renderer.Listen()
}

func (m Model) frameCmd() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return FrameMsg{Time: t}
	})
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.layout.Resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		m.detector.OnTouchCancel()
		m.touching = false
		m.controller.Relayout(m.ctx)
		return m, nil

	case tea.FocusMsg:
		m.controller.SetVisible(m.ctx, true)
		return m, nil

	case tea.BlurMsg:
		m.controller.SetVisible(m.ctx, false)
		return m, nil

	case OverlayMsg:
		cmds := []tea.Cmd{m.renderer.Listen()}
		if msg.Unmounted() {
			m.view = nil
			return m, tea.Batch(cmds...)
		}
		if m.view == nil {
			cmds = append(cmds, m.frameCmd())
		}
		v := msg.View
		m.view = &v
		return m, tea.Batch(cmds...)

	case FrameMsg:
		if m.view != nil {
			return m, m.frameCmd()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// An open overlay is modal.
	if m.view != nil {
		if key.Matches(msg, m.keys.Close) {
			m.controller.Input(m.ctx, overlayApp.InputEscape)
		}
		return m, nil
	}

	// The detector sees every rune and applies its own focus and help gating.
	if msg.Type == tea.KeyRunes {
		for _, r := range msg.Runes {
			m.detector.OnKeystroke(m.ctx, r)
		}
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Close, m.keys.Help) {
			m.setHelp(false)
		}
		return m, nil
	}

	if m.input.Focused() {
		switch {
		case key.Matches(msg, m.keys.Close, m.keys.Focus):
			m.blurInput()
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			if v := strings.TrimSpace(m.input.Value()); v != "" {
				m.notice = fmt.Sprintf("thanks, %s is on the list", v)
			}
			m.input.Reset()
			m.blurInput()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Focus):
		m.layout.setInputFocused(true)
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Help):
		m.setHelp(true)
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) setHelp(open bool) {
	m.showHelp = open
	m.help.ShowAll = open
	m.layout.setHelp(open)
}

func (m *Model) blurInput() {
	m.input.Blur()
	m.layout.setInputFocused(false)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p := m.layout.ToPixels(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if m.view != nil {
			block := m.view.Block.At(m.clock.Now()).Round()
			if !contains(block, msg.X, msg.Y) {
				m.controller.Input(m.ctx, overlayApp.InputBackgroundClick)
			}
			return m, nil
		}
		m.touching = true
		m.detector.OnTouchStart(p)

	case tea.MouseActionMotion:
		if m.touching && msg.Button == tea.MouseButtonLeft {
			// A terminal has no native drag scroll, so the suppress hint has nothing to cancel.
			// Motion events are always consumed here instead.
			_ = m.detector.OnTouchMove(p)
			return m, nil
		}

	case tea.MouseActionRelease:
		if m.touching {
			m.touching = false
			m.detector.OnTouchEnd(m.ctx, p)
		}
	}
	return m, nil
}

func contains(r overlayDomain.Rect, col, row int) bool {
	x, y := float64(col), float64(row)
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// View renders the page.
func (m Model) View() string {
	cols, rows := m.layout.Size()
	if cols == 0 || rows == 0 {
		return "Loading..."
	}

	if m.view != nil {
		return m.renderOverlay(cols, rows)
	}
	if m.showHelp {
		modal := m.styles.Modal.Render(
			m.styles.Heading.Render("Keys") + "\n\n" + m.help.View(m.keys),
		)
		return m.lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, modal)
	}
	return m.renderPage()
}

func (m Model) sideText() []string {
	return []string{
		"mempool.block",
		"a window on the next block",
	}
}

func (m Model) bodyText() []string {
	return []string{
		fmt.Sprintf("Type %q anywhere, or drag down and right from the square", m.keyword),
		"on a narrow terminal, to peek at the block being built right now.",
	}
}

func (m Model) renderPage() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("mempool.block"))
	b.WriteString("\n\n")

	side := m.sideText()
	if sq, ok := m.layout.HomeSquare(); ok {
		square := m.styles.HomeSquare.Render(strings.Repeat(" ", int(sq.W)))
		for i := 0; i < int(sq.H); i++ {
			b.WriteString(strings.Repeat(" ", homeX))
			b.WriteString(square)
			if i < len(side) {
				b.WriteString("  ")
				if i == 0 {
					b.WriteString(m.styles.Heading.Render(side[i]))
				} else {
					b.WriteString(m.styles.Muted.Render(side[i]))
				}
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	for _, line := range m.bodyText() {
		b.WriteString("  " + m.styles.Body.Render(line) + "\n")
	}
	b.WriteString("\n")

	b.WriteString("  " + m.styles.Muted.Render("Newsletter") + "\n")
	b.WriteString("  " + m.input.View() + "\n")
	if m.notice != "" {
		b.WriteString("  " + m.styles.Notice.Render(m.notice) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))

	return b.String()
}

// pageLines is the page as plain text, drawn under the overlay backdrop.
func (m Model) pageLines() []string {
	lines := []string{"  mempool.block", ""}
	side := m.sideText()
	if sq, ok := m.layout.HomeSquare(); ok {
		for i := 0; i < int(sq.H); i++ {
			line := strings.Repeat(" ", homeX) + strings.Repeat(" ", int(sq.W))
			if i < len(side) {
				line += "  " + side[i]
			}
			lines = append(lines, line)
		}
	}
	lines = append(lines, "")
	for _, line := range m.bodyText() {
		lines = append(lines, "  "+line)
	}
	return lines
}

func (m Model) renderOverlay(cols, rows int) string {
	now := m.clock.Now()
	c := NewCanvas(cols, rows, m.palette.Backdrop)
	for y, line := range m.pageLines() {
		c.Text(0, y, line, m.palette.Page, 1, false)
	}
	if sq, ok := m.layout.HomeSquare(); ok {
		c.Fill(sq, m.palette.Block)
	}
	DrawOverlay(c, m.view.At(now), m.palette, m.view.ContentAlpha(now))
	return c.Render(m.lipgloss)
}
