package ui

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	overlayApp "github.com/fd1az/mempool-block/business/overlay/app"
	triggerApp "github.com/fd1az/mempool-block/business/trigger/app"
	"github.com/fd1az/mempool-block/internal/logger"
)

// ErrNoColor aborts activation on terminals that cannot draw the overlay.
var ErrNoColor = errors.New("terminal has no color support")

// Deps are the shared services every page session draws from.
type Deps struct {
	Controllers *overlayApp.ControllerFactory
	Detectors   *triggerApp.DetectorFactory
	Loader      overlayApp.EngineLoader
	Keyword     string
	Cell        CellSize
	Clock       clock.Clock
	Logger      logger.LoggerInterface
}

// Session is one page with its own overlay controller and gesture detector.
type Session struct {
	ctx        context.Context
	layout     *Layout
	renderer   *Renderer
	controller *overlayApp.Controller
	detector   *triggerApp.Detector
	model      Model
}

// NewSession wires a page for a terminal of cols x rows drawn with lr.
// Haptic feedback rings the bell on bell. The session lives until ctx is done.
func NewSession(ctx context.Context, d Deps, lr *lipgloss.Renderer, bell io.Writer, cols, rows int) *Session {
	s := &Session{
		ctx:      ctx,
		layout:   NewLayout(cols, rows, d.Cell),
		renderer: NewRenderer(64),
	}
	haptics := NewBell(bell)
	loader := overlayApp.NewCachedLoader(colorLoader(lr, d.Loader))

	s.controller = d.Controllers.New(s.renderer, s.layout.OverlayPage(), haptics, loader)
	s.detector = d.Detectors.New(s.controller, haptics, s.layout.TouchPage())

	frame := d.Controllers.Config().FrameInterval
	if frame <= 0 {
		frame = 33 * time.Millisecond
	}
	s.model = newModel(ctx, s, lr, d.Keyword, d.Clock, frame)
	return s
}

func colorLoader(r *lipgloss.Renderer, next overlayApp.EngineLoader) overlayApp.LoaderFunc {
	return func(ctx context.Context) error {
		if r.ColorProfile() == termenv.Ascii {
			return ErrNoColor
		}
		if next != nil {
			return next.Load(ctx)
		}
		return nil
	}
}

// Model returns the Bubble Tea model for this session.
func (s *Session) Model() Model {
	return s.model
}

// Controller returns the session's overlay controller.
func (s *Session) Controller() *overlayApp.Controller {
	return s.controller
}

// Start runs the overlay controller until the session context is done.
func (s *Session) Start() {
	go func() {
		defer s.renderer.Close()
		_ = s.controller.Run(s.ctx)
	}()
}

// ProgramOptions are the Bubble Tea options the page needs.
func ProgramOptions() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	}
}

// Run shows the page on the local terminal until the user quits or ctx is done.
func Run(ctx context.Context, d Deps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := NewSession(ctx, d, lipgloss.DefaultRenderer(), os.Stdout, 0, 0)
	s.Start()

	opts := append(ProgramOptions(), tea.WithContext(ctx))
	_, err := tea.NewProgram(s.Model(), opts...).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
