package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keybridge/internal/event/events"
	"github.com/dshills/keybridge/internal/event/topic"
)

type recorder struct {
	calls []string
}

func (r *recorder) handler(name string) func(context.Context, events.Event) error {
	return func(_ context.Context, ev events.Event) error {
		r.calls = append(r.calls, name+":"+string(ev.Topic()))
		return nil
	}
}

type collectReporter struct {
	errs []error
}

func (c *collectReporter) Report(_ context.Context, err error) {
	c.errs = append(c.errs, err)
}

func batch(evs ...events.Event) events.Batch {
	return events.Batch{Seq: 1, Items: evs}
}

func TestBus_DomainRegistrationExpands(t *testing.T) {
	b := NewBus()
	rec := &recorder{}

	reg, err := b.RegisterFunc("document", rec.handler("doc"))
	require.NoError(t, err)
	assert.Equal(t, topic.Topic("document.**"), reg.Pattern)
	assert.NotEmpty(t, reg.ID)

	require.NoError(t, b.Dispatch(context.Background(), batch(
		events.DocumentClosed{Doc: 1},
		events.ViewClosed{View: 1},
		events.DocumentOpened{Doc: 2},
	)))

	assert.Equal(t, []string{"doc:document.closed", "doc:document.opened"}, rec.calls)
}

func TestBus_RegistrationOrderAcrossPatterns(t *testing.T) {
	b := NewBus()
	rec := &recorder{}

	_, _ = b.RegisterFunc("*.closed", rec.handler("a"))
	_, _ = b.RegisterFunc("document.closed", rec.handler("b"))
	_, _ = b.RegisterFunc("**", rec.handler("c"))
	_, _ = b.RegisterFunc("document", rec.handler("d"))

	require.NoError(t, b.Dispatch(context.Background(), batch(events.DocumentClosed{Doc: 1})))

	want := []string{
		"a:document.closed",
		"b:document.closed",
		"c:document.closed",
		"d:document.closed",
	}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("call order (-want +got):\n%s", diff)
	}
}

func TestBus_BatchOrder(t *testing.T) {
	b := NewBus()
	var seen []topic.Topic
	_, _ = b.RegisterFunc("**", func(_ context.Context, ev events.Event) error {
		seen = append(seen, ev.Topic())
		return nil
	})

	require.NoError(t, b.Dispatch(context.Background(), batch(
		events.NewSelectionChanged(1, 1, nil, 0),
		events.DocumentClosed{Doc: 1},
		events.ModeChanged{},
	)))
	assert.Equal(t, []topic.Topic{
		events.TopicViewSelectionChanged,
		events.TopicDocumentClosed,
		events.TopicEditorModeChanged,
	}, seen)
}

func TestBus_WildcardSegment(t *testing.T) {
	b := NewBus()
	rec := &recorder{}
	_, _ = b.RegisterFunc("lsp.progress.*", rec.handler("p"))

	_ = b.Dispatch(context.Background(), batch(
		events.ProgressStarted{Token: "t"},
		events.ServerExited{},
		events.ProgressCompleted{Token: "t"},
	))
	assert.Equal(t, []string{"p:lsp.progress.started", "p:lsp.progress.completed"}, rec.calls)
}

func TestBus_HandlerIsolation(t *testing.T) {
	rep := &collectReporter{}
	b := NewBus(WithErrorReporter(rep))
	boom := errors.New("boom")

	var after int
	failing, _ := b.RegisterFunc("document", func(context.Context, events.Event) error { return boom })
	panicking, _ := b.RegisterFunc("document", func(context.Context, events.Event) error { panic("bad handler") })
	_, _ = b.RegisterFunc("document", func(context.Context, events.Event) error {
		after++
		return nil
	})

	require.NoError(t, b.Dispatch(context.Background(), batch(
		events.DocumentClosed{Doc: 1},
		events.DocumentClosed{Doc: 2},
	)))

	assert.Equal(t, 2, after)
	require.Len(t, rep.errs, 4)

	var he *HandlerError
	require.ErrorAs(t, rep.errs[0], &he)
	assert.Equal(t, failing, he.Registration)
	assert.Equal(t, events.TopicDocumentClosed, he.Topic)
	assert.ErrorIs(t, he, boom)

	var pe *PanicError
	require.ErrorAs(t, rep.errs[1], &pe)
	assert.Equal(t, panicking, pe.Registration)
	assert.Equal(t, "bad handler", pe.Value)
	assert.ErrorIs(t, pe, ErrHandlerPanic)
	assert.Contains(t, pe.Error(), "panicked")

	st := b.Stats()
	assert.Equal(t, uint64(2), st.HandlerErrors)
	assert.Equal(t, uint64(2), st.HandlerPanics)
	assert.Equal(t, uint64(6), st.HandlerCalls)
	assert.Equal(t, uint64(2), st.Events)
	assert.Equal(t, 3, st.Registrations)
}

func TestBus_Unregister(t *testing.T) {
	b := NewBus()
	rec := &recorder{}
	reg, _ := b.RegisterFunc("document.closed", rec.handler("x"))

	require.NoError(t, b.Unregister(reg))
	assert.ErrorIs(t, b.Unregister(reg), ErrRegistrationNotFound)

	_ = b.Dispatch(context.Background(), batch(events.DocumentClosed{}))
	assert.Empty(t, rec.calls)
	assert.Equal(t, uint64(1), b.Stats().Unhandled)
}

func TestBus_RegisterErrors(t *testing.T) {
	b := NewBus()
	_, err := b.Register("document", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
	_, err = b.RegisterFunc("document", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
	_, err = b.RegisterFunc("", func(context.Context, events.Event) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidTopic)
	_, err = b.RegisterFunc("document..closed", func(context.Context, events.Event) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidTopic)
}

func TestBus_CancelledContextStops(t *testing.T) {
	b := NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	n := 0
	_, _ = b.RegisterFunc("**", func(context.Context, events.Event) error {
		n++
		cancel()
		return nil
	})

	err := b.Dispatch(ctx, batch(events.DocumentClosed{}, events.DocumentClosed{}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, n)
}
