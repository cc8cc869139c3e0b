package discord

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

// Verifier autentica los webhooks de interacciones con la public key de la app.
type Verifier struct {
	key ed25519.PublicKey
}

func NewVerifier(hexPublicKey string) (*Verifier, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(hexPublicKey))
	if err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key: want %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return &Verifier{key: ed25519.PublicKey(raw)}, nil
}

// Verify checks the signature over timestamp||body and only then decodes the body.
// Nothing is returned unless both steps pass.
func (v *Verifier) Verify(header http.Header, body []byte) (*Payload, error) {
	if header.Get(HeaderSignature) == "" || header.Get(HeaderTimestamp) == "" {
		return nil, fmt.Errorf("%w: missing signature headers", ErrInvalidSignature)
	}

	req := &http.Request{
		Method: http.MethodPost,
		Header: header.Clone(),
		Body:   io.NopCloser(bytes.NewReader(body)),
	}
	if !discordgo.VerifyInteraction(req, v.key) {
		return nil, ErrInvalidSignature
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.Type == 0 {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedPayload)
	}
	p.raw = body
	return &p, nil
}
