package cozinha

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/metrics"
)

// defaultPollInterval — периодичность фонового опроса кухни.
const defaultPollInterval = 30 * time.Second

// Subscriber получает свежий список заказов после каждого удачного опроса.
type Subscriber func(orders []domain.KitchenOrder)

// PollerOptions задаёт параметры опроса кухни.
type PollerOptions struct {
	Logger       *log.Entry
	Metrics      *metrics.CaixaMetrics
	PollInterval time.Duration
}

// Option настраивает Poller.
type Option func(*PollerOptions)

// WithLogger задаёт logger для поллера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *PollerOptions) {
		opts.Logger = logger
	}
}

// WithMetrics задаёт метрики терминала.
func WithMetrics(m *metrics.CaixaMetrics) Option {
	return func(opts *PollerOptions) {
		opts.Metrics = m
	}
}

// WithPollInterval задаёт частоту опроса кухни.
func WithPollInterval(interval time.Duration) Option {
	return func(opts *PollerOptions) {
		opts.PollInterval = interval
	}
}

// Poller периодически забирает активные заказы кухни и раздаёт их
// подписчикам. Смена статуса заказа не перезапускает цикл: после
// успешного обновления выполняется немедленный внеочередной опрос,
// и панель получает свежие данные без перезагрузки.
type Poller struct {
	gateway      domain.KitchenGateway
	logger       *log.Entry
	metrics      *metrics.CaixaMetrics
	pollInterval time.Duration

	mu          sync.Mutex
	orders      []domain.KitchenOrder
	lastPolled  time.Time
	subscribers []Subscriber
}

// NewPoller создаёт поллер кухни.
func NewPoller(gateway domain.KitchenGateway, options ...Option) *Poller {
	opts := PollerOptions{
		PollInterval: defaultPollInterval,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "cozinha-poller")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}

	return &Poller{
		gateway:      gateway,
		logger:       logger,
		metrics:      opts.Metrics,
		pollInterval: opts.PollInterval,
	}
}

// Subscribe регистрирует получателя обновлений. Подписки оформляются
// до запуска Run.
func (p *Poller) Subscribe(fn Subscriber) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, fn)
}

// Run запускает периодический опрос кухни до отмены ctx.
func (p *Poller) Run(ctx context.Context) {
	if p.gateway == nil {
		p.logger.Warn("kitchen poller is disabled: gateway is nil")
		return
	}

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.PollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce выполняет один цикл опроса.
func (p *Poller) PollOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	orders, err := p.gateway.ListActive(ctx)
	if err != nil {
		p.logger.WithError(err).Warn("failed to list active kitchen orders")
		p.recordPoll("error")
		return
	}
	p.recordPoll("success")

	p.mu.Lock()
	p.orders = orders
	p.lastPolled = time.Now()
	subscribers := make([]Subscriber, len(p.subscribers))
	copy(subscribers, p.subscribers)
	p.mu.Unlock()

	for _, fn := range subscribers {
		fn(orders)
	}
}

// UpdateStatus меняет статус заказа на кухне и при успехе сразу
// перечитывает список заказов.
func (p *Poller) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	if err := p.gateway.UpdateStatus(ctx, orderID, status); err != nil {
		p.logger.WithError(err).WithField("order_id", orderID).Warn("failed to update kitchen order status")
		return err
	}

	p.logger.WithFields(log.Fields{
		"order_id": orderID,
		"status":   status,
	}).Info("kitchen order status updated")

	p.PollOnce(ctx)
	return nil
}

// Orders возвращает заказы последнего удачного опроса.
func (p *Poller) Orders() []domain.KitchenOrder {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.KitchenOrder, len(p.orders))
	copy(out, p.orders)
	return out
}

// LastPolled возвращает время последнего удачного опроса.
func (p *Poller) LastPolled() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPolled
}

func (p *Poller) recordPoll(result string) {
	if p.metrics != nil {
		p.metrics.RecordKitchenPoll(result)
	}
}
