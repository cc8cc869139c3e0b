package discord

import (
	"encoding/hex"
	"errors"
	"net/http"
	"testing"
)

func TestVerifyAcceptsSignedBody(t *testing.T) {
	s := newSigner(t)
	body := `{"id":"1","application_id":"app","type":1,"token":"tok","version":1}`

	p, err := s.verifier(t).Verify(s.headers(body), []byte(body))
	if err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if p.Type != 1 || p.ID != "1" || p.Token != "tok" {
		t.Errorf("unexpected payload %+v", p)
	}
	if string(p.raw) != body {
		t.Errorf("raw body not kept")
	}
}

func TestVerifyRejectsMismatchedSignature(t *testing.T) {
	s := newSigner(t)
	signed := `{"type":1}`
	sent := `{"type":2}`

	// firma y timestamp bien formados, pero de otro body
	_, err := s.verifier(t).Verify(s.headers(signed), []byte(sent))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyRejectsOtherKey(t *testing.T) {
	s := newSigner(t)
	other := newSigner(t)
	body := `{"type":1}`

	_, err := other.verifier(t).Verify(s.headers(body), []byte(body))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyRejectsTamperedTimestamp(t *testing.T) {
	s := newSigner(t)
	body := `{"type":1}`
	h := s.headers(body)
	h.Set(HeaderTimestamp, "1")

	if _, err := s.verifier(t).Verify(h, []byte(body)); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyHeaderProblems(t *testing.T) {
	s := newSigner(t)
	body := `{"type":1}`
	good := s.headers(body)

	tests := []struct {
		name   string
		header http.Header
	}{
		{"no headers", http.Header{}},
		{"no signature", http.Header{HeaderTimestamp: good[HeaderTimestamp]}},
		{"no timestamp", http.Header{HeaderSignature: good[HeaderSignature]}},
		{"bad hex", http.Header{HeaderSignature: {"zz-not-hex"}, HeaderTimestamp: good[HeaderTimestamp]}},
		{"short signature", http.Header{HeaderSignature: {hex.EncodeToString([]byte("short"))}, HeaderTimestamp: good[HeaderTimestamp]}},
	}
	v := s.verifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(tt.header, []byte(body)); !errors.Is(err, ErrInvalidSignature) {
				t.Errorf("expected ErrInvalidSignature, got %v", err)
			}
		})
	}
}

func TestVerifyMalformedBodies(t *testing.T) {
	s := newSigner(t)
	v := s.verifier(t)

	for _, body := range []string{``, `   `, `not json`, `{"id":"1"}`, `{"type":"1"}`, `[]`} {
		t.Run(body, func(t *testing.T) {
			_, err := v.Verify(s.headers(body), []byte(body))
			if !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("body %q: expected ErrMalformedPayload, got %v", body, err)
			}
		})
	}
}

func TestNewVerifierRejectsBadKeys(t *testing.T) {
	for _, key := range []string{"", "xyz", "abcd"} {
		if _, err := NewVerifier(key); err == nil {
			t.Errorf("key %q: expected error", key)
		}
	}
}
