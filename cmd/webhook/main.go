// Lambda detrás de API Gateway HTTP API. Siempre sync: Lambda congela el proceso
// apenas devolvemos la respuesta.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jose-valero/discord-interactions/internal/adapters/httpdiscord"
	"github.com/jose-valero/discord-interactions/internal/app/bootstrap"
	"github.com/jose-valero/discord-interactions/internal/infra/config"
	"github.com/jose-valero/discord-interactions/internal/infra/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("error", "json").Error("config", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, "json")
	if err := cfg.Validate(); err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	// sin scheduler: ModeBackground degrada a sync
	app, err := bootstrap.Build(context.Background(), cfg, log, nil)
	if err != nil {
		log.Error("bootstrap", "err", err)
		os.Exit(1)
	}

	lambda.Start(httpdiscord.NewLambdaHandler(app.Dispatcher, log))
}
