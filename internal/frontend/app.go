package frontend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keybridge/internal/bridge"
	"github.com/dshills/keybridge/internal/capability"
	"github.com/dshills/keybridge/internal/event"
	"github.com/dshills/keybridge/internal/event/events"
	"github.com/dshills/keybridge/internal/types"
)

// DefaultFrameInterval paces redraws and the fallback drain.
const DefaultFrameInterval = 16 * time.Millisecond

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithFrameInterval sets the frame ticker period.
func WithFrameInterval(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.frame = d
		}
	}
}

// WithRoot sets the directory paths are shown relative to.
func WithRoot(dir string) Option {
	return func(a *App) {
		a.root = dir
	}
}

// App is the terminal presentation runtime. It runs on the goroutine that
// calls Run; its capability surfaces are called from that goroutine too.
type App struct {
	screen tcell.Screen
	bridge *bridge.Bridge
	bus    *event.Bus
	caps   *capability.Registry
	logger *slog.Logger
	frame  time.Duration
	root   string

	model      *Model
	completion *completion
	prompt     *prompt
	picker     *picker

	local    []events.Event
	dragging bool
}

// New creates an app drawing to screen and talking to the core through br.
// It registers the presentation surfaces in caps.
func New(screen tcell.Screen, br *bridge.Bridge, caps *capability.Registry, opts ...Option) (*App, error) {
	a := &App{
		screen: screen,
		bridge: br,
		caps:   caps,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		frame:  DefaultFrameInterval,
		model:  newModel(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.completion = &completion{app: a}
	a.bus = event.NewBus(event.WithLogger(a.logger))

	if err := a.registerHandlers(a.bus); err != nil {
		return nil, err
	}
	if err := capability.Provide[capability.CompletionSurface](caps, a.completion); err != nil {
		return nil, err
	}
	if err := capability.Provide[capability.StatusSurface](caps, a); err != nil {
		return nil, err
	}
	if err := capability.Provide[capability.PickerSurface](caps, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Bus returns the presentation-side event bus.
func (a *App) Bus() *event.Bus {
	return a.bus
}

// Model returns the presentation model. Only read it from the Run goroutine.
func (a *App) Model() *Model {
	return a.model
}

// Run owns the screen until ctx is done, the bridge is closed or the core
// asks to shut down.
func (a *App) Run(ctx context.Context) error {
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer a.screen.Fini()
	a.screen.EnableMouse(tcell.MouseButtonEvents, tcell.MouseDragEvents)
	a.screen.EnablePaste()
	a.screen.EnableFocus()

	evs := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	go a.screen.ChannelEvents(evs, quit)
	defer close(quit)

	w, h := a.screen.Size()
	a.model.Width, a.model.Height = w, h
	a.submit(bridge.WindowResized{Width: w, Height: h})

	ticker := time.NewTicker(a.frame)
	defer ticker.Stop()

	a.logger.Info("presentation loop started", "width", w, "height", h)
	defer a.logger.Info("presentation loop stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.bridge.Done():
			return nil
		case ev, ok := <-evs:
			if !ok {
				return nil
			}
			a.handleScreenEvent(ev)
		case <-a.bridge.Ready():
			if err := a.drain(ctx); err != nil {
				return err
			}
		case <-ticker.C:
			if err := a.drain(ctx); err != nil {
				return err
			}
		}
		a.flushLocal(ctx)
		if a.model.quit {
			return nil
		}
		if a.model.dirty {
			a.render()
			a.model.dirty = false
		}
	}
}

// drain dispatches every ready batch. A closed bridge is a clean stop.
func (a *App) drain(ctx context.Context) error {
	_, err := a.bridge.Drain(ctx, a.bus)
	switch {
	case errors.Is(err, bridge.ErrClosed):
		a.model.quit = true
		return nil
	case err != nil && ctx.Err() != nil:
		return nil
	default:
		return err
	}
}

// publish queues a presentation-originated event for local handlers.
func (a *App) publish(ev events.Event) {
	a.local = append(a.local, ev)
}

func (a *App) flushLocal(ctx context.Context) {
	for len(a.local) > 0 {
		batch := a.local
		a.local = nil
		if err := a.bus.Dispatch(ctx, events.Batch{Items: batch}); err != nil {
			return
		}
	}
}

func (a *App) submit(in bridge.Intent) {
	_, err := a.bridge.Submit(in)
	switch {
	case err == nil:
	case errors.Is(err, bridge.ErrCoreBusy):
		a.SetStatus("editor busy; input dropped", types.SeverityWarning)
	default:
		a.logger.Debug("intent not submitted", "intent", fmt.Sprintf("%T", in), "err", err)
	}
}

func (a *App) handleScreenEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		w, h := ev.Size()
		a.model.Width, a.model.Height = w, h
		a.screen.Sync()
		a.submit(bridge.WindowResized{Width: w, Height: h})
		a.model.touch()
	case *tcell.EventFocus:
		a.submit(bridge.FocusChanged{Focused: ev.Focused})
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventKey:
		a.handleKey(ev)
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	k, ok := keyPress(ev)
	if !ok {
		return
	}
	switch {
	case a.prompt != nil:
		a.promptKey(k)
		return
	case a.picker != nil:
		a.pickerKey(k)
		return
	case a.completion.Visible():
		if a.completionKey(k) {
			return
		}
	}

	if k.Key == types.KeyRune && k.Mods == types.ModAlt && k.Rune >= '1' && k.Rune <= '9' {
		a.selectView(int(k.Rune - '1'))
		return
	}
	a.submit(bridge.KeyInput{Key: k})
}

// completionKey reports whether k was consumed by the popup.
func (a *App) completionKey(k types.KeyPress) bool {
	switch k.Key {
	case types.KeyTab, types.KeyEnter:
		rest, ok := a.completion.accept()
		if !ok {
			return true
		}
		for _, r := range rest {
			a.submit(bridge.KeyInput{Key: types.Char(r)})
		}
		return true
	case types.KeyUp:
		a.completion.move(-1)
		return true
	case types.KeyDown:
		a.completion.move(1)
		return true
	case types.KeyRune:
		if !isWord(k.Rune) {
			a.completion.Hide()
		}
	default:
		a.completion.Hide()
	}
	return false
}

func (a *App) promptKey(k types.KeyPress) {
	p := a.prompt
	switch k.Key {
	case types.KeyEnter:
		a.submit(bridge.PromptSubmitted{Prompt: p.id, Text: string(p.text)})
		a.closePrompt()
	case types.KeyEscape:
		a.submit(bridge.PromptSubmitted{Prompt: p.id, Cancel: true})
		a.closePrompt()
	case types.KeyBackspace:
		if len(p.text) > 0 {
			p.text = p.text[:len(p.text)-1]
		}
	case types.KeyRune:
		if k.Mods&(types.ModCtrl|types.ModAlt) == 0 {
			p.text = append(p.text, k.Rune)
		}
	}
	a.model.touch()
}

func (a *App) closePrompt() {
	a.prompt = nil
	a.model.touch()
	a.publish(events.OverlayHidden{Overlay: events.OverlayPrompt})
}

func (a *App) pickerKey(k types.KeyPress) {
	p := a.picker
	switch k.Key {
	case types.KeyUp:
		p.selected = (p.selected - 1 + len(p.items)) % len(p.items)
	case types.KeyDown, types.KeyTab:
		p.selected = (p.selected + 1) % len(p.items)
	case types.KeyEnter:
		for _, c := range p.items[p.selected].Commands {
			a.submit(c)
		}
		a.closePicker()
	case types.KeyEscape:
		a.closePicker()
	}
	a.model.touch()
}

// selectView focuses the n-th view in id order.
func (a *App) selectView(n int) {
	ids := make([]types.ViewID, 0, len(a.model.Views))
	for id := range a.model.Views {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	if n < len(ids) {
		a.submit(bridge.ViewSelected{View: ids[n]})
	}
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	v, ok := a.model.Active()
	if !ok {
		return
	}
	btn := ev.Buttons()
	if lines := wheel(btn); lines != 0 {
		a.submit(bridge.PointerAction{Kind: bridge.PointerScroll, View: a.model.ActiveView, Lines: lines})
		return
	}
	if btn&tcell.Button1 == 0 {
		a.dragging = false
		return
	}
	x, y := ev.Position()
	if y >= textRows(a.model.Height) {
		return
	}
	kind := bridge.PointerClick
	if a.dragging {
		kind = bridge.PointerDrag
	}
	a.dragging = true
	pos := types.Position{Line: v.Scroll.Line + y, Column: v.Scroll.Column + x}
	a.submit(bridge.PointerAction{Kind: kind, View: a.model.ActiveView, Pos: pos})
}

// textRows is the height of the text area; the bottom two rows hold the
// status line and the prompt line.
func textRows(height int) int {
	return max(height-2, 0)
}
