package caixa

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/metrics"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/notify"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/render"
)

const (
	// DefaultTipo — тип заказа по умолчанию (прилавок).
	DefaultTipo = "balcao"
	// mirrorFallbackPagamento подставляется в снимок зеркала,
	// пока кассир не выбрал форму оплаты.
	mirrorFallbackPagamento = "dinheiro"

	msgCartEmpty         = "Adicione pelo menos um item ao pedido!"
	msgCustomerRequired  = "Por favor, informe o nome do cliente!"
	msgPaymentRequired   = "Por favor, selecione uma forma de pagamento!"
	msgConnectionFailure = "Erro ao criar pedido! Verifique sua conexão."
	msgOrderCreated      = "Pedido criado com sucesso!"
)

// FormState — текущие поля формы заказа.
type FormState struct {
	ClienteNome string `json:"cliente_nome"`
	Tipo        string `json:"tipo"`
	Pagamento   string `json:"forma_pagamento"`
	Observacoes string `json:"observacoes"`
}

// SubmitResult — исход успешной отправки заказа.
type SubmitResult struct {
	QRCode string
	View   render.ViewModel
}

// Options задаёт необязательные зависимости контроллера.
type Options struct {
	Journal domain.JournalRepository
	Events  domain.EventPublisher
	Toasts  *notify.Center
	Metrics *metrics.CaixaMetrics
	Logger  *log.Entry
	Clock   func() time.Time
}

// Option настраивает Controller.
type Option func(*Options)

// WithJournal задаёт журнал отправленных заказов.
func WithJournal(journal domain.JournalRepository) Option {
	return func(opts *Options) { opts.Journal = journal }
}

// WithEvents задаёт publisher событий терминала.
func WithEvents(events domain.EventPublisher) Option {
	return func(opts *Options) { opts.Events = events }
}

// WithToasts задаёт центр уведомлений.
func WithToasts(toasts *notify.Center) Option {
	return func(opts *Options) { opts.Toasts = toasts }
}

// WithMetrics задаёт метрики терминала.
func WithMetrics(m *metrics.CaixaMetrics) Option {
	return func(opts *Options) { opts.Metrics = m }
}

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) { opts.Logger = logger }
}

// WithClock задаёт источник времени (для тестов).
func WithClock(clock func() time.Time) Option {
	return func(opts *Options) { opts.Clock = clock }
}

// Controller владеет корзиной и состоянием формы одного терминала.
// Все мутации проходят через него: инварианты корзины (уникальность
// по товару, отсутствие неположительных количеств) и асимметрия зеркала
// (delete-on-empty / write-on-nonempty) обеспечиваются в одном месте.
type Controller struct {
	mu sync.Mutex

	cart domain.Cart
	form FormState

	mirror  domain.MirrorStore
	gateway domain.OrderGateway
	journal domain.JournalRepository
	events  domain.EventPublisher
	toasts  *notify.Center
	metrics *metrics.CaixaMetrics
	logger  *log.Entry
	now     func() time.Time

	// submitting блокирует повторную отправку, пока первая в полёте.
	submitting bool
}

// NewController создаёт контроллер корзины.
func NewController(mirror domain.MirrorStore, gateway domain.OrderGateway, options ...Option) *Controller {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "caixa-controller")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	toasts := opts.Toasts
	if toasts == nil {
		toasts = notify.NewCenter()
	}

	return &Controller{
		form:    FormState{Tipo: DefaultTipo},
		mirror:  mirror,
		gateway: gateway,
		journal: opts.Journal,
		events:  opts.Events,
		toasts:  toasts,
		metrics: opts.Metrics,
		logger:  logger,
		now:     clock,
	}
}

// AddItem добавляет товар в корзину (или увеличивает количество
// существующей позиции) и перерисовывает корзину.
func (c *Controller) AddItem(ctx context.Context, productID, name, priceText string) (render.ViewModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.cart.Add(productID, name, priceText); err != nil {
		return render.Render(&c.cart), err
	}

	c.recordMutation("add")
	c.syncMirror(ctx)
	return c.renderLocked(), nil
}

// RemoveItem удаляет позицию по индексу; индекс вне диапазона — no-op.
func (c *Controller) RemoveItem(ctx context.Context, index int) render.ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cart.Remove(index)
	c.recordMutation("remove")
	c.syncMirror(ctx)
	return c.renderLocked()
}

// ChangeQuantity прибавляет delta к количеству позиции;
// неположительный итог удаляет позицию целиком.
func (c *Controller) ChangeQuantity(ctx context.Context, index, delta int) render.ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cart.ChangeQuantity(index, delta)
	c.recordMutation("change_qty")
	c.syncMirror(ctx)
	return c.renderLocked()
}

// SetForm обновляет поля формы; изменение полей, попадающих в снимок,
// переписывает зеркало (как input-листенеры исходной кассы).
func (c *Controller) SetForm(ctx context.Context, form FormState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form = form
	c.syncMirror(ctx)
}

// Form возвращает текущее состояние формы.
func (c *Controller) Form() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// View перерисовывает корзину без мутации.
func (c *Controller) View() render.ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return render.Render(&c.cart)
}

// Submit отправляет заказ. Проверки идут строго по порядку: непустая
// корзина, имя клиента (после trim), форма оплаты. Любая ошибка
// оставляет корзину нетронутой; успех очищает корзину, форму и зеркало.
func (c *Controller) Submit(ctx context.Context) (SubmitResult, error) {
	c.mu.Lock()

	if c.submitting {
		c.mu.Unlock()
		c.recordSubmit("in_flight")
		return SubmitResult{}, domain.ErrSubmitInFlight
	}

	if c.cart.IsEmpty() {
		c.mu.Unlock()
		c.toasts.Push(notify.LevelError, msgCartEmpty)
		c.recordSubmit("validation")
		return SubmitResult{}, domain.ErrCartEmpty
	}

	clienteNome := strings.TrimSpace(c.form.ClienteNome)
	if clienteNome == "" {
		c.mu.Unlock()
		c.toasts.PushFocus(notify.LevelError, msgCustomerRequired, domain.FocusTarget(domain.ErrCustomerNameRequired))
		c.recordSubmit("validation")
		return SubmitResult{}, domain.ErrCustomerNameRequired
	}

	if c.form.Pagamento == "" {
		c.mu.Unlock()
		c.toasts.PushFocus(notify.LevelError, msgPaymentRequired, domain.FocusTarget(domain.ErrPaymentMethodRequired))
		c.recordSubmit("validation")
		return SubmitResult{}, domain.ErrPaymentMethodRequired
	}

	payload := domain.OrderPayload{
		Tipo:           c.form.Tipo,
		ClienteNome:    clienteNome,
		FormaPagamento: c.form.Pagamento,
		Observacoes:    c.form.Observacoes, // наблюдения уходят как есть, без trim
		Itens:          c.cart.Items(),
	}
	c.submitting = true
	c.mu.Unlock()

	started := c.now()
	confirmation, err := c.gateway.CreateOrder(ctx, payload)
	elapsed := c.now().Sub(started)

	c.mu.Lock()
	c.submitting = false

	if c.metrics != nil {
		c.metrics.RecordSubmitDuration(elapsed)
	}

	if err != nil {
		c.mu.Unlock()
		var rejected *domain.OrderRejectedError
		if errors.As(err, &rejected) {
			c.toasts.Push(notify.LevelError, "Erro ao criar pedido: "+rejected.Message)
			c.recordSubmit("rejected")
			c.publishEvent(payload.ClienteNome, kafka.NewOrderRejectedEvent(payload, rejected.Message))
		} else {
			c.toasts.Push(notify.LevelError, msgConnectionFailure)
			c.recordSubmit("unavailable")
		}
		return SubmitResult{}, err
	}

	// Успех: зеркало удаляется, корзина и форма сбрасываются.
	if mirrorErr := c.mirror.Delete(ctx); mirrorErr != nil {
		c.logger.WithError(mirrorErr).Warn("failed to delete cart mirror after submit")
	} else if c.metrics != nil {
		c.metrics.RecordMirrorWrite("delete")
	}

	c.cart.Reset()
	c.form = FormState{Tipo: DefaultTipo}
	c.recordMutation("reset")
	view := c.renderLocked()
	c.mu.Unlock()

	journalID := c.appendJournal(ctx, payload, confirmation.QRCode)
	c.publishEvent(payload.ClienteNome, kafka.NewOrderFinalizedEvent(journalID, payload, confirmation.QRCode))

	c.toasts.Push(notify.LevelSuccess, msgOrderCreated)
	c.recordSubmit("success")
	c.logger.WithField("cliente", payload.ClienteNome).Info("order submitted")

	return SubmitResult{QRCode: confirmation.QRCode, View: view}, nil
}

// renderLocked перерисовывает корзину и обновляет gauge позиций.
// Вызывается только под mu.
func (c *Controller) renderLocked() render.ViewModel {
	if c.metrics != nil {
		c.metrics.SetCartLines(c.cart.Len())
	}
	return render.Render(&c.cart)
}

// syncMirror поддерживает контракт зеркала: пустая корзина удаляет ключ,
// непустая перезаписывает снимок. Ошибки зеркала не прерывают работу кассы.
// Вызывается только под mu.
func (c *Controller) syncMirror(ctx context.Context) {
	if c.cart.IsEmpty() {
		if err := c.mirror.Delete(ctx); err != nil {
			c.logger.WithError(err).Warn("failed to delete cart mirror")
			return
		}
		if c.metrics != nil {
			c.metrics.RecordMirrorWrite("delete")
		}
		return
	}

	pagamento := c.form.Pagamento
	if pagamento == "" {
		pagamento = mirrorFallbackPagamento
	}
	tipo := c.form.Tipo
	if tipo == "" {
		tipo = DefaultTipo
	}

	snapshot := domain.NewCartSnapshot(&c.cart, c.form.ClienteNome, tipo, pagamento, c.now())
	if err := c.mirror.Set(ctx, snapshot); err != nil {
		c.logger.WithError(err).Warn("failed to write cart mirror")
		return
	}
	if c.metrics != nil {
		c.metrics.RecordMirrorWrite("write")
	}
}

func (c *Controller) appendJournal(ctx context.Context, payload domain.OrderPayload, qrCode string) string {
	if c.journal == nil {
		return ""
	}

	entry := domain.JournalEntry{
		ID:        uuid.NewString(),
		Payload:   payload,
		QRCode:    qrCode,
		CreatedAt: c.now().UTC(),
	}
	if err := c.journal.Append(ctx, entry); err != nil {
		c.logger.WithError(err).Warn("failed to append order journal")
		return ""
	}
	return entry.ID
}

func (c *Controller) publishEvent(key string, event *kafka.OrderEvent) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(kafka.TopicOrderEvents, key, event); err != nil {
		c.logger.WithError(err).Warn("failed to publish order event")
	}
}

func (c *Controller) recordMutation(op string) {
	if c.metrics != nil {
		c.metrics.RecordCartMutation(op)
	}
}

func (c *Controller) recordSubmit(result string) {
	if c.metrics != nil {
		c.metrics.RecordSubmit(result)
	}
}

// Toasts возвращает центр уведомлений терминала.
func (c *Controller) Toasts() *notify.Center {
	return c.toasts
}
