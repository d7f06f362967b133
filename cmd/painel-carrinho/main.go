package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/render"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/storage/redisstore"
)

// painel-carrinho — экран покупателя: читает зеркало корзины из redis
// и печатает её содержимое. Исчезновение ключа трактуется как пустая
// корзина.
func main() {
	var (
		redisAddr string
		interval  time.Duration
	)
	flag.StringVar(&redisAddr, "redis", "localhost:6379", "redis address with cart mirror")
	flag.DurationVar(&interval, "interval", 2*time.Second, "mirror poll interval")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	logger := log.WithField("component", "painel-carrinho")

	mirror := redisstore.NewMirrorStore(redis.NewClient(&redis.Options{Addr: redisAddr}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithField("redis", redisAddr).Info("запускаем панель корзины")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	printMirror(ctx, mirror, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info("панель корзины остановлена")
			return
		case <-ticker.C:
			printMirror(ctx, mirror, logger)
		}
	}
}

func printMirror(ctx context.Context, mirror *redisstore.MirrorStore, logger *log.Entry) {
	snapshot, err := mirror.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrMirrorEmpty) {
			fmt.Println(render.EmptyPlaceholder)
			return
		}
		logger.WithError(err).Warn("failed to read cart mirror")
		return
	}

	fmt.Printf("Cliente: %s (%s, %s)\n", snapshot.ClienteNome, snapshot.Tipo, snapshot.Pagamento)
	var total float64
	for _, item := range snapshot.Itens {
		total += item.Subtotal()
		fmt.Printf("  %dx %-30s %s\n", item.Quantity, item.Name, render.FormatBRL(item.Subtotal()))
	}
	fmt.Printf("Total: %s\n", render.FormatBRL(total))
}
