package httpdiscord

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/jose-valero/discord-interactions/internal/adapters/discord"
)

type LambdaHandler func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// NewLambdaHandler adapta el dispatcher a API Gateway HTTP API (payload v2).
// Lambda no tiene nada parecido a waitUntil: el dispatcher debe ir en modo sync.
func NewLambdaHandler(d Dispatcher, log *slog.Logger) LambdaHandler {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		if m := req.RequestContext.HTTP.Method; m != "" && m != http.MethodPost {
			return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusMethodNotAllowed, Body: "method not allowed"}, nil
		}

		body := []byte(req.Body)
		if req.IsBase64Encoded {
			dec, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				log.Warn("lambda: invalid base64 body", "err", err)
				return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid base64"}, nil
			}
			body = dec
		}
		if len(body) > MaxBodyBytes {
			return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusRequestEntityTooLarge, Body: "request too large"}, nil
		}

		resp := d.Dispatch(ctx, discord.Request{Header: toHeader(req.Headers), Body: body})

		out := events.APIGatewayV2HTTPResponse{StatusCode: resp.Status, Body: string(resp.Body)}
		if resp.ContentType != "" {
			out.Headers = map[string]string{"Content-Type": resp.ContentType}
		}
		return out, nil
	}
}

// toHeader: API Gateway manda los nombres en minúscula; Set los canoniza.
func toHeader(in map[string]string) http.Header {
	h := make(http.Header, len(in))
	for k, v := range in {
		h.Set(k, v)
	}
	return h
}
