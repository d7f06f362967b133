package caixa

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/notify"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/storage/memory"
)

type stubGateway struct {
	mu       sync.Mutex
	payloads []domain.OrderPayload
	confirm  domain.OrderConfirmation
	err      error
	block    chan struct{}
}

func (g *stubGateway) CreateOrder(_ context.Context, payload domain.OrderPayload) (domain.OrderConfirmation, error) {
	if g.block != nil {
		<-g.block
	}
	g.mu.Lock()
	g.payloads = append(g.payloads, payload)
	g.mu.Unlock()
	if g.err != nil {
		return domain.OrderConfirmation{}, g.err
	}
	return g.confirm, nil
}

func (g *stubGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.payloads)
}

func newTestController(gateway domain.OrderGateway) (*Controller, domain.MirrorStore) {
	mirror := memory.NewMirrorStore()
	controller := NewController(mirror, gateway,
		WithJournal(memory.NewJournalRepository()),
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
	)
	return controller, mirror
}

func TestControllerAddItemMirrorsCart(t *testing.T) {
	ctx := context.Background()
	controller, mirror := newTestController(&stubGateway{})

	view, err := controller.AddItem(ctx, "1", "Pão de queijo", "5.00")
	require.NoError(t, err)
	require.False(t, view.Empty)
	require.Equal(t, "5.00", view.Total)

	snapshot, err := mirror.Get(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Itens, 1)
	require.Equal(t, "balcao", snapshot.Tipo)
	// форма оплаты ещё не выбрана, снимок получает значение по умолчанию
	require.Equal(t, "dinheiro", snapshot.Pagamento)
	require.Equal(t, int64(1700000000000), snapshot.Timestamp)
}

func TestControllerEmptyCartDeletesMirror(t *testing.T) {
	ctx := context.Background()
	controller, mirror := newTestController(&stubGateway{})

	_, err := controller.AddItem(ctx, "1", "Café", "3.50")
	require.NoError(t, err)

	view := controller.RemoveItem(ctx, 0)
	require.True(t, view.Empty)

	_, err = mirror.Get(ctx)
	require.ErrorIs(t, err, domain.ErrMirrorEmpty)
}

func TestControllerAddItemInvalidPrice(t *testing.T) {
	ctx := context.Background()
	controller, _ := newTestController(&stubGateway{})

	_, err := controller.AddItem(ctx, "1", "Café", "abc")
	require.ErrorIs(t, err, domain.ErrPriceInvalid)
	require.True(t, controller.View().Empty)
}

func TestControllerSetFormRefreshesMirror(t *testing.T) {
	ctx := context.Background()
	controller, mirror := newTestController(&stubGateway{})

	_, err := controller.AddItem(ctx, "1", "Café", "3.50")
	require.NoError(t, err)

	controller.SetForm(ctx, FormState{ClienteNome: "Maria", Tipo: "mesa", Pagamento: "pix"})

	snapshot, err := mirror.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "Maria", snapshot.ClienteNome)
	require.Equal(t, "mesa", snapshot.Tipo)
	require.Equal(t, "pix", snapshot.Pagamento)
}

func TestControllerSubmitValidationOrder(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{}
	controller, _ := newTestController(gateway)

	_, err := controller.Submit(ctx)
	require.ErrorIs(t, err, domain.ErrCartEmpty)

	_, err = controller.AddItem(ctx, "1", "Café", "3.50")
	require.NoError(t, err)

	controller.SetForm(ctx, FormState{ClienteNome: "   ", Tipo: "balcao", Pagamento: "pix"})
	_, err = controller.Submit(ctx)
	require.ErrorIs(t, err, domain.ErrCustomerNameRequired)

	controller.SetForm(ctx, FormState{ClienteNome: "João", Tipo: "balcao"})
	_, err = controller.Submit(ctx)
	require.ErrorIs(t, err, domain.ErrPaymentMethodRequired)

	// ни одна из проверок не должна была дойти до шлюза
	require.Equal(t, 0, gateway.calls())
	require.False(t, controller.View().Empty)
}

func TestControllerSubmitSuccessResetsState(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{confirm: domain.OrderConfirmation{QRCode: "data:image/png;base64,abc"}}
	controller, mirror := newTestController(gateway)

	_, err := controller.AddItem(ctx, "1", "Café", "3.50")
	require.NoError(t, err)
	controller.SetForm(ctx, FormState{ClienteNome: "  João  ", Tipo: "balcao", Pagamento: "pix", Observacoes: "  sem açúcar  "})

	result, err := controller.Submit(ctx)
	require.NoError(t, err)
	require.Equal(t, "data:image/png;base64,abc", result.QRCode)
	require.True(t, result.View.Empty)

	require.Equal(t, 1, gateway.calls())
	payload := gateway.payloads[0]
	require.Equal(t, "João", payload.ClienteNome)
	require.Equal(t, "  sem açúcar  ", payload.Observacoes)
	require.Equal(t, "pix", payload.FormaPagamento)
	require.Len(t, payload.Itens, 1)

	_, err = mirror.Get(ctx)
	require.ErrorIs(t, err, domain.ErrMirrorEmpty)

	form := controller.Form()
	require.Empty(t, form.ClienteNome)
	require.Equal(t, DefaultTipo, form.Tipo)
	require.Empty(t, form.Pagamento)
}

func TestControllerSubmitRejectedKeepsCart(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{err: &domain.OrderRejectedError{Message: "estoque insuficiente"}}
	controller, mirror := newTestController(gateway)

	_, err := controller.AddItem(ctx, "1", "Café", "3.50")
	require.NoError(t, err)
	controller.SetForm(ctx, FormState{ClienteNome: "João", Tipo: "balcao", Pagamento: "pix"})

	_, err = controller.Submit(ctx)
	require.True(t, domain.IsRejected(err))

	require.False(t, controller.View().Empty)
	_, err = mirror.Get(ctx)
	require.NoError(t, err)
}

func TestControllerSubmitGatewayUnavailableKeepsCart(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{err: domain.ErrGatewayUnavailable}
	controller, _ := newTestController(gateway)

	_, err := controller.AddItem(ctx, "1", "Café", "3.50")
	require.NoError(t, err)
	controller.SetForm(ctx, FormState{ClienteNome: "João", Tipo: "balcao", Pagamento: "pix"})

	_, err = controller.Submit(ctx)
	require.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	require.False(t, controller.View().Empty)

	toasts := controller.Toasts().Active()
	require.NotEmpty(t, toasts)
	last := toasts[len(toasts)-1]
	require.Equal(t, notify.LevelError, last.Level)
	require.Equal(t, "Erro ao criar pedido! Verifique sua conexão.", last.Message)
}

func TestControllerSubmitInFlightGuard(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{block: make(chan struct{})}
	controller, _ := newTestController(gateway)

	_, err := controller.AddItem(ctx, "1", "Café", "3.50")
	require.NoError(t, err)
	controller.SetForm(ctx, FormState{ClienteNome: "João", Tipo: "balcao", Pagamento: "pix"})

	firstDone := make(chan error, 1)
	go func() {
		_, submitErr := controller.Submit(ctx)
		firstDone <- submitErr
	}()

	require.Eventually(t, func() bool {
		_, secondErr := controller.Submit(ctx)
		return errors.Is(secondErr, domain.ErrSubmitInFlight)
	}, time.Second, 5*time.Millisecond)

	close(gateway.block)
	require.NoError(t, <-firstDone)
	require.Equal(t, 1, gateway.calls())
}
