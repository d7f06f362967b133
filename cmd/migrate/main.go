package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/storage/postgres"
)

const defaultTimeout = 30 * time.Second

// migrate создаёт схему журнала заказов в PostgreSQL.
func main() {
	var dsn string
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: CAIXA_JOURNAL__POSTGRES__DSN)")
	flag.Parse()

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("CAIXA_JOURNAL__POSTGRES__DSN"))
	}
	if dsn == "" {
		fail("CAIXA_JOURNAL__POSTGRES__DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		fail("ensure schema failed: %v", err)
	}
	fmt.Println("journal schema ready")
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
