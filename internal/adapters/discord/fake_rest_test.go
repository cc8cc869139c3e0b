package discord

import (
	"crypto/ed25519"
	"encoding/hex"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

// fakeRest records every call. delay makes calls wait (honouring the request
// context) so timeouts can be exercised.
type fakeRest struct {
	mu         sync.Mutex
	responds   []*discordgo.InteractionResponse
	edits      []*discordgo.WebhookEdit
	followups  []*discordgo.WebhookParams
	deletes    int
	respondErr error
	delay      time.Duration
}

func (f *fakeRest) wait(opts []discordgo.RequestOption) error {
	if f.delay == 0 {
		return nil
	}
	cfg := &discordgo.RequestConfig{Request: &http.Request{}}
	for _, o := range opts {
		o(cfg)
	}
	ctx := cfg.Request.Context()
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeRest) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, opts ...discordgo.RequestOption) error {
	if err := f.wait(opts); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.respondErr != nil {
		return f.respondErr
	}
	f.responds = append(f.responds, resp)
	return nil
}

func (f *fakeRest) InteractionResponseEdit(_ *discordgo.Interaction, e *discordgo.WebhookEdit, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
	if err := f.wait(opts); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, e)
	return &discordgo.Message{ID: "orig"}, nil
}

func (f *fakeRest) InteractionResponseDelete(_ *discordgo.Interaction, opts ...discordgo.RequestOption) error {
	if err := f.wait(opts); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return nil
}

func (f *fakeRest) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, p *discordgo.WebhookParams, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
	if err := f.wait(opts); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, p)
	return &discordgo.Message{ID: "f" + strconv.Itoa(len(f.followups))}, nil
}

func (f *fakeRest) FollowupMessageEdit(_ *discordgo.Interaction, id string, e *discordgo.WebhookEdit, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
	if err := f.wait(opts); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, e)
	return &discordgo.Message{ID: id}, nil
}

func (f *fakeRest) FollowupMessageDelete(_ *discordgo.Interaction, _ string, opts ...discordgo.RequestOption) error {
	if err := f.wait(opts); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return nil
}

func (f *fakeRest) respondCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.responds)
}

func (f *fakeRest) lastRespond() *discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responds) == 0 {
		return nil
	}
	return f.responds[len(f.responds)-1]
}

// signer firma bodies como lo hace Discord.
type signer struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func newSigner(t *testing.T) *signer {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return &signer{pub: pub, priv: priv}
}

func (s *signer) publicHex() string { return hex.EncodeToString(s.pub) }

func (s *signer) verifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(s.publicHex())
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return v
}

func (s *signer) headers(body string) http.Header {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := ed25519.Sign(s.priv, append([]byte(ts), body...))
	h := http.Header{}
	h.Set(HeaderSignature, hex.EncodeToString(sig))
	h.Set(HeaderTimestamp, ts)
	return h
}

func (s *signer) request(body string) Request {
	return Request{Header: s.headers(body), Body: []byte(body)}
}

// mustPayload decodes body as if it had passed verification.
func mustPayload(t *testing.T, s *signer, body string) *Payload {
	t.Helper()
	p, err := s.verifier(t).Verify(s.headers(body), []byte(body))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return p
}

func mustInteraction(t *testing.T, body string, rest RestClient) Interaction {
	t.Helper()
	p := mustPayload(t, newSigner(t), body)
	kind, err := Classify(p)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	in, err := NewInteraction(p, kind, NewHandle(rest, p.ID, p.ApplicationID, p.Token, p.Type, 0))
	if err != nil {
		t.Fatalf("NewInteraction: %v", err)
	}
	return in
}
