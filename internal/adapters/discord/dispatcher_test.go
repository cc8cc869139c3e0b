package discord

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
)

// queueScheduler guarda el trabajo para correrlo cuando el test quiera.
type queueScheduler struct {
	mu   sync.Mutex
	jobs []func()
}

func (q *queueScheduler) Go(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, fn)
}

func (q *queueScheduler) runAll() {
	q.mu.Lock()
	jobs := q.jobs
	q.jobs = nil
	q.mu.Unlock()
	for _, fn := range jobs {
		fn()
	}
}

type memRecorder struct {
	mu   sync.Mutex
	recs []DispatchRecord
	err  error
}

func (m *memRecorder) Record(_ context.Context, rec DispatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return m.err
}

func (m *memRecorder) last(t *testing.T) DispatchRecord {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.recs) == 0 {
		t.Fatal("nothing recorded")
	}
	return m.recs[len(m.recs)-1]
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type dispatchFixture struct {
	signer *signer
	reg    *Registry
	rest   *fakeRest
	rec    *memRecorder
}

func newFixture(t *testing.T) *dispatchFixture {
	return &dispatchFixture{signer: newSigner(t), reg: NewRegistry(), rest: &fakeRest{}, rec: &memRecorder{}}
}

func (f *dispatchFixture) dispatcher(t *testing.T, opts ...Option) *Dispatcher {
	opts = append([]Option{WithLogger(quietLogger()), WithRecorder(f.rec)}, opts...)
	return NewDispatcher(f.signer.verifier(t), f.reg, f.rest, opts...)
}

func TestDispatchPing(t *testing.T) {
	f := newFixture(t)
	f.reg = nil // un ping no toca el registry
	d := f.dispatcher(t)

	resp := d.Dispatch(context.Background(), f.signer.request(`{"id":"1","type":1}`))
	if resp.Status != http.StatusOK || string(resp.Body) != `{"type":1}` || resp.ContentType != "application/json" {
		t.Fatalf("got %d %q %q", resp.Status, resp.Body, resp.ContentType)
	}
	if f.rest.respondCount() != 0 {
		t.Error("ping must not call the REST API")
	}
	if got := f.rec.last(t); got.State != StatePingAck || got.Kind != KindPing {
		t.Errorf("record = %+v", got)
	}
}

func TestDispatchNoHandler(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher(t)

	resp := d.Dispatch(context.Background(), f.signer.request(`{"type":2,"data":{"name":"search"}}`))
	if resp.Status != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.Status)
	}
	got := f.rec.last(t)
	if got.Key != "search" || got.Err != "" || got.Kind != KindChatInput {
		t.Errorf("record = %+v", got)
	}
}

func TestDispatchRejections(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher(t)
	other := newSigner(t)

	tests := []struct {
		name   string
		req    Request
		status int
	}{
		{"wrong key", other.request(`{"type":1}`), http.StatusUnauthorized},
		{"no headers", Request{Header: http.Header{}, Body: []byte(`{"type":1}`)}, http.StatusUnauthorized},
		{"not json", f.signer.request(`nope`), http.StatusBadRequest},
		{"no type", f.signer.request(`{"id":"1"}`), http.StatusBadRequest},
		{"unknown type", f.signer.request(`{"type":42}`), http.StatusBadRequest},
		{"command without data", f.signer.request(`{"type":2}`), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := d.Dispatch(context.Background(), tt.req)
			if resp.Status != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.Status, tt.status, resp.Body)
			}
			if got := f.rec.last(t); got.State != StateRejected || got.Status != tt.status {
				t.Errorf("record = %+v", got)
			}
		})
	}
}

func TestDispatchSyncRunsHandler(t *testing.T) {
	f := newFixture(t)
	f.reg.Register(&SlashCommand{
		Definition: &discordgo.ApplicationCommand{Name: "ping"},
		Run: func(ctx context.Context, ic *ChatInputCommand) error {
			return ic.ReplyEphemeral(ctx, "pong")
		},
	})
	d := f.dispatcher(t)

	resp := d.Dispatch(context.Background(), f.signer.request(chatInputBody))
	if resp.Status != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.Status)
	}
	if f.rest.respondCount() != 1 || f.rest.lastRespond().Data.Content != "pong" {
		t.Error("handler reply not sent")
	}
	got := f.rec.last(t)
	if got.State != StateResponded || got.Response != Replied || got.UserID != "u1" || got.Key != "ping" {
		t.Errorf("record = %+v", got)
	}
}

func TestDispatchHandlerErrorAndPanic(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		run  func(context.Context, *ChatInputCommand) error
		want string
	}{
		{"error", func(context.Context, *ChatInputCommand) error { return boom }, "boom"},
		{"panic", func(context.Context, *ChatInputCommand) error { panic("kaboom") }, "panic: kaboom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.reg.Register(&SlashCommand{Definition: &discordgo.ApplicationCommand{Name: "ping"}, Run: tt.run})
			d := f.dispatcher(t)

			resp := d.Dispatch(context.Background(), f.signer.request(chatInputBody))
			if resp.Status != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", resp.Status)
			}
			if strings.Contains(string(resp.Body), "boom") {
				t.Error("handler error leaked into the response body")
			}
			if got := f.rec.last(t); !strings.Contains(got.Err, tt.want) {
				t.Errorf("record err = %q, want it to contain %q", got.Err, tt.want)
			}
		})
	}
}

func TestDispatchHandlerErrorType(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher(t)
	boom := errors.New("boom")

	in := mustInteraction(t, chatInputBody, f.rest)
	var rec DispatchRecord
	err := d.execute(context.Background(), quietLogger(), in, "ping", func(context.Context) error { return boom }, &rec)

	var hee *HandlerExecutionError
	if !errors.As(err, &hee) {
		t.Fatalf("expected *HandlerExecutionError, got %T", err)
	}
	if hee.Kind != KindChatInput || hee.Key != "ping" || !errors.Is(err, boom) {
		t.Errorf("bad error: %+v", hee)
	}

	err = d.execute(context.Background(), quietLogger(), in, "ping", func(context.Context) error { panic(42) }, &rec)
	var pe *PanicError
	if !errors.As(err, &pe) || pe.Value != 42 {
		t.Errorf("expected wrapped *PanicError, got %v", err)
	}
}

func TestDispatchBackground(t *testing.T) {
	f := newFixture(t)
	ran := make(chan struct{}, 1)
	f.reg.Register(&SlashCommand{
		Definition: &discordgo.ApplicationCommand{Name: "ping"},
		Run: func(ctx context.Context, ic *ChatInputCommand) error {
			ran <- struct{}{}
			return ic.ReplyEphemeral(ctx, "pong")
		},
	})
	sched := &queueScheduler{}
	d := f.dispatcher(t, WithMode(ModeBackground), WithScheduler(sched))
	if d.Mode() != ModeBackground {
		t.Fatalf("mode = %s", d.Mode())
	}

	// el contexto de la request se cancela apenas se contesta
	ctx, cancel := context.WithCancel(context.Background())
	resp := d.Dispatch(ctx, f.signer.request(chatInputBody))
	cancel()
	if resp.Status != http.StatusAccepted || string(resp.Body) != `{}` {
		t.Fatalf("got %d %q", resp.Status, resp.Body)
	}
	select {
	case <-ran:
		t.Fatal("handler ran before the scheduler")
	default:
	}

	sched.runAll()
	<-ran
	if f.rest.respondCount() != 1 {
		t.Error("background handler should still reach Discord after the request ended")
	}
	if got := f.rec.last(t); got.State != StateResponded || got.Status != http.StatusAccepted {
		t.Errorf("record = %+v", got)
	}
}

func TestDispatchBackgroundWithoutSchedulerIsSync(t *testing.T) {
	f := newFixture(t)
	f.reg.Register(&SlashCommand{
		Definition: &discordgo.ApplicationCommand{Name: "ping"},
		Run:        func(context.Context, *ChatInputCommand) error { return nil },
	})
	d := f.dispatcher(t, WithMode(ModeBackground))
	if d.Mode() != ModeSync {
		t.Fatalf("mode = %s, want sync", d.Mode())
	}
	if resp := d.Dispatch(context.Background(), f.signer.request(chatInputBody)); resp.Status != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.Status)
	}
}

func TestDispatchRoutesEveryKind(t *testing.T) {
	f := newFixture(t)
	var got []string
	note := func(s string) { got = append(got, s) }
	f.reg.Register(
		&SlashCommand{
			Definition:   &discordgo.ApplicationCommand{Name: "search"},
			Run:          func(context.Context, *ChatInputCommand) error { note("run"); return nil },
			Autocomplete: func(context.Context, *Autocomplete) error { note("autocomplete"); return nil },
		},
		&ContextCommand{
			Definition: &discordgo.ApplicationCommand{Name: "Who", Type: discordgo.UserApplicationCommand},
			User:       func(context.Context, *UserCommand) error { note("user"); return nil },
		},
		&ContextCommand{
			Definition: &discordgo.ApplicationCommand{Name: "Quote", Type: discordgo.MessageApplicationCommand},
			Message:    func(context.Context, *MessageCommand) error { note("message"); return nil },
		},
		&ComponentHandler{Prefix: "btn", Run: func(_ context.Context, c *Component) error { note("component:" + c.CustomID.FirstParam()); return nil }},
		&ModalHandler{Prefix: "form", Run: func(_ context.Context, m *ModalSubmit) error { note("modal:" + m.CustomID.Component()); return nil }},
	)
	d := f.dispatcher(t)

	for _, body := range []string{
		`{"type":2,"user":{"id":"u"},"data":{"name":"search","type":1}}`,
		`{"type":4,"user":{"id":"u"},"data":{"name":"search","type":1,"options":[{"name":"q","type":3,"value":"d","focused":true}]}}`,
		`{"type":2,"user":{"id":"u"},"data":{"name":"Who","type":2,"target_id":"u9"}}`,
		`{"type":2,"user":{"id":"u"},"data":{"name":"Quote","type":3,"target_id":"m9"}}`,
		`{"type":3,"user":{"id":"u"},"data":{"custom_id":"btn/yes?7","component_type":2}}`,
		`{"type":5,"user":{"id":"u"},"data":{"custom_id":"form/feedback","components":[]}}`,
	} {
		if resp := d.Dispatch(context.Background(), f.signer.request(body)); resp.Status != http.StatusNoContent {
			t.Errorf("%s: status %d (%s)", body, resp.Status, resp.Body)
		}
	}
	want := []string{"run", "autocomplete", "user", "message", "component:7", "modal:feedback"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("routed %v, want %v", got, want)
	}
}

func TestDispatchRecorderFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.rec.err = errors.New("db down")
	d := f.dispatcher(t)
	if resp := d.Dispatch(context.Background(), f.signer.request(`{"type":1}`)); resp.Status != http.StatusOK {
		t.Errorf("status = %d", resp.Status)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeSync, "sync": ModeSync, " Background ": ModeBackground} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseMode("async"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestDispatchBadDataKeepsKey(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher(t)

	resp := d.Dispatch(context.Background(), f.signer.request(`{"type":3,"data":{"custom_id":"btn/x","values":"nope"}}`))
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Status)
	}
	if got := f.rec.last(t); got.Key != "btn" || got.State != StateRejected {
		t.Errorf("record = %+v", got)
	}
}
