package core

import (
	"context"
	"fmt"

	"github.com/dshills/keybridge/internal/capability"
	"github.com/dshills/keybridge/internal/types"
)

// Apply applies op on the loop goroutine. A failure is announced as an
// OperationDidFail notification and returned.
func (e *Editor) Apply(ctx context.Context, op Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := e.apply(op)
	if err != nil {
		e.logger.Debug("operation failed", "op", op.Name(), "correlation", op.Correlation(), "err", err)
		e.emit(OperationDidFail{Correlation: op.Correlation(), Operation: op.Name(), Err: err})
	}
	e.publish()
	return err
}

func (e *Editor) apply(op Operation) error {
	switch op := op.(type) {
	case Press:
		return e.press(op.Key)
	case Click:
		v, ok := e.views[op.View]
		if !ok {
			return ErrUnknownView
		}
		if err := e.focus(v.ID); err != nil {
			return err
		}
		e.moveTo(v, v.Doc.OffsetOf(op.Pos), op.Extend)
		return nil
	case Scroll:
		v, ok := e.views[op.View]
		if !ok {
			return ErrUnknownView
		}
		if v.scrollBy(op.Lines) {
			e.emit(ViewDidScroll{View: v})
		}
		return nil
	case Run:
		if err := e.run(op.Command, op.Args); err != nil {
			return err
		}
		e.emit(CommandDidRun{Correlation: op.ID, Command: e.canonical(op.Command), Source: op.Source})
		return nil
	case Resize:
		if op.Width <= 0 || op.Height <= 0 {
			return fmt.Errorf("invalid area %dx%d", op.Width, op.Height)
		}
		if op.Width == e.width && op.Height == e.height {
			return nil
		}
		e.width, e.height = op.Width, op.Height
		e.emit(AreaDidResize{Width: op.Width, Height: op.Height})
		if e.active != nil {
			e.follow(e.active)
		}
		return nil
	case SetHostFocus:
		e.emit(HostFocusDidChange{Focused: op.Focused})
		if !op.Focused {
			e.noteUnsaved()
		}
		return nil
	case SetTheme:
		return e.setTheme(op.Theme)
	case SetFontSize:
		if op.Size <= 0 {
			return fmt.Errorf("invalid font size %.1f", op.Size)
		}
		e.fontSize = op.Size
		return nil
	case ReloadPath:
		e.reloadPath(op.Path)
		return nil
	case RelievePressure:
		e.relieve(op.Level)
		return nil
	case SetAccessibility:
		e.reducedMotion = op.ReducedMotion
		if op.HighContrast != e.highContrast {
			e.highContrast = op.HighContrast
			if op.HighContrast {
				return e.setTheme("high-contrast")
			}
			return e.setTheme("default")
		}
		return nil
	case ReportDegradation:
		if op.Value <= op.Threshold || !e.linting {
			return nil
		}
		e.linting = false
		e.setStatus(fmt.Sprintf("%s over budget (%.0f > %.0f); background checks paused", op.Metric, op.Value, op.Threshold), types.SeverityWarning)
		return nil
	case FocusView:
		return e.focus(op.View)
	case SubmitPrompt:
		fn, ok := e.closePrompt(op.Prompt)
		if !ok {
			return fmt.Errorf("prompt %s: %w", op.Prompt, capability.ErrNotFound)
		}
		if op.Cancel {
			return nil
		}
		return fn(e, op.Text)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedOperation, op)
	}
}

func (e *Editor) setTheme(name string) error {
	if name == "" {
		return fmt.Errorf("empty theme name")
	}
	if name == e.theme {
		return nil
	}
	e.theme = name
	e.emit(ThemeDidChange{Theme: name})
	return nil
}

// noteUnsaved reports modified documents when the host loses focus.
func (e *Editor) noteUnsaved() {
	n := 0
	for _, d := range e.Documents() {
		if d.Modified() {
			n++
		}
	}
	if n > 0 {
		e.setStatus(fmt.Sprintf("%d unsaved document(s)", n), types.SeverityWarning)
		e.logger.Info("focus lost with unsaved documents", "count", n)
	}
}

// relieve drops derived state the core can recompute.
func (e *Editor) relieve(level types.MemoryPressure) {
	e.logger.Info("memory pressure", "level", level)
	if level < types.MemoryHigh {
		return
	}
	for _, d := range e.Documents() {
		if e.active != nil && d == e.active.Doc {
			continue
		}
		if d.setDiagnostics(nil) {
			e.emit(DiagnosticsDidChange{Doc: d})
		}
	}
	if level == types.MemoryCritical {
		e.linting = false
		e.setStatus("memory critical; background checks paused", types.SeverityError)
	}
}

type loopApplier struct {
	e *Editor
}

// Applier returns an Applier that runs each operation on the loop and
// waits for it to finish. Operations keep their submission order.
func (e *Editor) Applier() Applier {
	return loopApplier{e: e}
}

func (a loopApplier) Apply(ctx context.Context, op Operation) error {
	var err error
	if cerr := a.e.loop.Call(ctx, func() { err = a.e.Apply(ctx, op) }); cerr != nil {
		return cerr
	}
	return err
}
