package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

type Mode int

const (
	// ModeSync waits for the handler before answering the webhook.
	ModeSync Mode = iota
	// ModeBackground answers 202 right away and runs the handler on the host's Scheduler.
	ModeBackground
)

func (m Mode) String() string {
	if m == ModeBackground {
		return "background"
	}
	return "sync"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sync":
		return ModeSync, nil
	case "background":
		return ModeBackground, nil
	}
	return ModeSync, fmt.Errorf("unknown execution mode %q", s)
}

// State is where a dispatch is in its lifecycle.
type State int

const (
	StateReceived State = iota
	StateVerifying
	StateRejected
	StateClassifying
	StatePingAck
	StateRouting
	StateExecuting
	StateResponded
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateVerifying:
		return "verifying"
	case StateRejected:
		return "rejected"
	case StateClassifying:
		return "classifying"
	case StatePingAck:
		return "ping_ack"
	case StateRouting:
		return "routing"
	case StateExecuting:
		return "executing"
	case StateResponded:
		return "responded"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Request is what a host hands over: headers and the raw, unread body.
type Request struct {
	Header http.Header
	Body   []byte
}

type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Scheduler runs work after the HTTP response went out. The host must keep the
// process alive until fn returns.
type Scheduler interface {
	Go(fn func())
}

// DispatchRecord is one line of the dispatch audit log.
type DispatchRecord struct {
	DispatchID    uuid.UUID
	InteractionID string
	ApplicationID string
	GuildID       string
	UserID        string
	Kind          Kind
	Key           string
	State         State
	Response      ResponseState
	Status        int
	Err           string
	ReceivedAt    time.Time
	Duration      time.Duration
}

// Recorder stores DispatchRecords. Optional; write only, never read back during dispatch.
type Recorder interface {
	Record(ctx context.Context, rec DispatchRecord) error
}

type Option func(*Dispatcher)

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

func WithMode(m Mode) Option { return func(d *Dispatcher) { d.mode = m } }

func WithScheduler(s Scheduler) Option { return func(d *Dispatcher) { d.scheduler = s } }

func WithRecorder(r Recorder) Option { return func(d *Dispatcher) { d.recorder = r } }

func WithRestTimeout(t time.Duration) Option { return func(d *Dispatcher) { d.restTimeout = t } }

type Dispatcher struct {
	verifier    *Verifier
	registry    *Registry
	rest        RestClient
	log         *slog.Logger
	mode        Mode
	scheduler   Scheduler
	recorder    Recorder
	restTimeout time.Duration
}

func NewDispatcher(v *Verifier, reg *Registry, rest RestClient, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		verifier:    v,
		registry:    reg,
		rest:        rest,
		log:         slog.Default(),
		restTimeout: DefaultRestTimeout,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Mode is the effective mode: background without a scheduler runs sync.
func (d *Dispatcher) Mode() Mode {
	if d.mode == ModeBackground && d.scheduler != nil {
		return ModeBackground
	}
	return ModeSync
}

var (
	pongBody     = []byte(`{"type":1}`)
	acceptedBody = []byte(`{}`)
)

func text(status int, msg string) Response {
	return Response{Status: status, ContentType: "text/plain; charset=utf-8", Body: []byte(msg)}
}

func jsonResponse(status int, body []byte) Response {
	return Response{Status: status, ContentType: "application/json", Body: body}
}

// Dispatch is the only entry point. It never returns an error: every failure
// becomes a status code, and handler details stay in the log.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	rec := DispatchRecord{DispatchID: uuid.New(), ReceivedAt: time.Now(), State: StateReceived}
	log := d.log.With("dispatch_id", rec.DispatchID.String())

	rec.State = StateVerifying
	done := step(log, "verify")
	p, err := d.verifier.Verify(req.Header, req.Body)
	done()
	if err != nil {
		rec.State = StateRejected
		rec.Err = err.Error()
		var resp Response
		if errors.Is(err, ErrInvalidSignature) {
			log.Warn("interaction rejected", "reason", "signature", "err", err)
			resp = text(http.StatusUnauthorized, "invalid request signature")
		} else {
			log.Warn("interaction rejected", "reason", "payload", "err", err)
			resp = text(http.StatusBadRequest, "malformed interaction")
		}
		rec.Status = resp.Status
		d.record(ctx, log, rec)
		return resp
	}

	rec.InteractionID = p.ID
	rec.ApplicationID = p.ApplicationID
	rec.GuildID = p.GuildID
	log = log.With("interaction_id", p.ID)

	rec.State = StateClassifying
	kind, err := Classify(p)
	if err != nil {
		rec.State = StateRejected
		rec.Err = err.Error()
		rec.Status = http.StatusBadRequest
		log.Warn("interaction rejected", "reason", "type", "err", err)
		d.record(ctx, log, rec)
		return text(http.StatusBadRequest, "unsupported interaction type")
	}
	rec.Kind = kind
	log = log.With("kind", kind.String())

	if kind == KindPing {
		rec.State = StatePingAck
		rec.Status = http.StatusOK
		log.Debug("ping")
		d.record(ctx, log, rec)
		return jsonResponse(http.StatusOK, pongBody)
	}

	h := NewHandle(d.rest, p.ID, p.ApplicationID, p.Token, p.Type, d.restTimeout)
	in, err := NewInteraction(p, kind, h)
	if err != nil {
		// el payload no decodifica, pero el log igual lleva a quién iba dirigido
		rec.Key = CommandNameOf(p)
		if rec.Key == "" {
			rec.Key = ParsePrefix(CustomIDOf(p))
		}
		rec.State = StateRejected
		rec.Err = err.Error()
		rec.Status = http.StatusBadRequest
		log.Warn("interaction rejected", "reason", "data", "err", err)
		d.record(ctx, log, rec)
		return text(http.StatusBadRequest, "malformed interaction")
	}
	rec.UserID = in.base().UserID()

	rec.State = StateRouting
	key, run := d.route(in)
	rec.Key = key
	log = log.With("key", key)
	if run == nil {
		rec.State = StateResponded
		rec.Status = http.StatusNoContent
		log.Info("no handler registered")
		d.record(ctx, log, rec)
		return Response{Status: http.StatusNoContent}
	}

	// el handler no se cancela nunca desde aquí, aunque el cliente HTTP se vaya
	hctx := context.WithoutCancel(ctx)

	if d.Mode() == ModeBackground {
		rec.Status = http.StatusAccepted
		d.scheduler.Go(func() {
			d.execute(hctx, log, in, key, run, &rec)
			d.record(hctx, log, rec)
		})
		return jsonResponse(http.StatusAccepted, acceptedBody)
	}

	err = d.execute(hctx, log, in, key, run, &rec)
	if err != nil {
		rec.Status = http.StatusInternalServerError
		d.record(ctx, log, rec)
		return text(http.StatusInternalServerError, "internal server error")
	}
	rec.Status = http.StatusNoContent
	d.record(ctx, log, rec)
	return Response{Status: http.StatusNoContent}
}

type runFunc func(ctx context.Context) error

// route picks the handler for in. A nil runFunc means nothing is registered.
func (d *Dispatcher) route(in Interaction) (string, runFunc) {
	switch ic := in.(type) {
	case *ChatInputCommand:
		h, _ := d.registry.ResolveCommand(ic.Command.Name)
		if sc, ok := h.(*SlashCommand); ok && sc.Run != nil {
			return ic.Command.Name, func(ctx context.Context) error { return sc.Run(ctx, ic) }
		}
		return ic.Command.Name, nil

	case *Autocomplete:
		h, _ := d.registry.ResolveCommand(ic.Command.Name)
		if sc, ok := h.(*SlashCommand); ok && sc.Autocomplete != nil {
			return ic.Command.Name, func(ctx context.Context) error { return sc.Autocomplete(ctx, ic) }
		}
		return ic.Command.Name, nil

	case *UserCommand:
		h, _ := d.registry.ResolveCommand(ic.Command.Name)
		if cc, ok := h.(*ContextCommand); ok && cc.User != nil {
			return ic.Command.Name, func(ctx context.Context) error { return cc.User(ctx, ic) }
		}
		return ic.Command.Name, nil

	case *MessageCommand:
		h, _ := d.registry.ResolveCommand(ic.Command.Name)
		if cc, ok := h.(*ContextCommand); ok && cc.Message != nil {
			return ic.Command.Name, func(ctx context.Context) error { return cc.Message(ctx, ic) }
		}
		return ic.Command.Name, nil

	case *Component:
		prefix := ic.CustomID.Prefix()
		if h, ok := d.registry.ResolveComponent(ic.CustomID.Raw); ok {
			return prefix, func(ctx context.Context) error { return h.Run(ctx, ic) }
		}
		return prefix, nil

	case *ModalSubmit:
		prefix := ic.CustomID.Prefix()
		if h, ok := d.registry.ResolveModal(ic.CustomID.Raw); ok {
			return prefix, func(ctx context.Context) error { return h.Run(ctx, ic) }
		}
		return prefix, nil

	case *Ping:
		return "", nil
	}
	return "", nil
}

// execute runs the handler, turning errors and panics into *HandlerExecutionError.
func (d *Dispatcher) execute(ctx context.Context, log *slog.Logger, in Interaction, key string, run runFunc, rec *DispatchRecord) (err error) {
	rec.State = StateExecuting
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panic", "panic", r, "stack", string(debug.Stack()))
			err = &PanicError{Value: r}
		}
		if err != nil {
			err = &HandlerExecutionError{Kind: in.Kind(), Key: key, InteractionID: in.base().ID, Err: err}
			rec.Err = err.Error()
		}
		rec.State = StateResponded
		rec.Response = in.base().State()
		rec.Duration = time.Since(start)

		if err != nil {
			log.Error("handler failed", "err", err, "response_state", rec.Response.String(), "took", rec.Duration)
			return
		}
		log.Info("handled", "response_state", rec.Response.String(), "took", rec.Duration)
	}()

	return run(ctx)
}

const recordTimeout = 3 * time.Second

func (d *Dispatcher) record(ctx context.Context, log *slog.Logger, rec DispatchRecord) {
	if d.recorder == nil {
		return
	}
	if rec.Duration == 0 {
		rec.Duration = time.Since(rec.ReceivedAt)
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := d.recorder.Record(ctx, rec); err != nil {
		log.Warn("audit record failed", "err", err)
	}
}

// interface guard: *discordgo.Session es el RestClient real.
var _ RestClient = (*discordgo.Session)(nil)
