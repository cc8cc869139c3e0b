// Lista los últimos dispatches del audit log.
//
//	audit -kind chat_input -kind component -n 20
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jose-valero/discord-interactions/internal/infra/config"
	"github.com/jose-valero/discord-interactions/internal/infra/logging"
	"github.com/jose-valero/discord-interactions/internal/infra/storage"
)

type kindsFlag []string

func (k *kindsFlag) String() string { return strings.Join(*k, ",") }

func (k *kindsFlag) Set(v string) error {
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			*k = append(*k, s)
		}
	}
	return nil
}

func main() {
	var kinds kindsFlag
	flag.Var(&kinds, "kind", "filtra por kind (repetible o separado por coma)")
	limit := flag.Int("n", 50, "cuántas filas")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.New("error", "text").Error("config", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rows, err := storage.NewAuditRepo(db).ListRecent(ctx, kinds, *limit)
	if err != nil {
		log.Error("list", "err", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RECEIVED\tKIND\tKEY\tUSER\tSTATE\tRESPONSE\tSTATUS\tTOOK\tERROR")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ReceivedAt.Local().Format(time.DateTime), r.Kind, r.HandlerKey, r.UserID,
			r.State, r.ResponseState, r.HTTPStatus, r.Duration, r.Error)
	}
	_ = w.Flush()
}
