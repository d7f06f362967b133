package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/catalog"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/health"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/service/caixa"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/service/cozinha"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/storage/memory"
)

type fakeOrderGateway struct {
	confirm domain.OrderConfirmation
	err     error
}

func (g *fakeOrderGateway) CreateOrder(context.Context, domain.OrderPayload) (domain.OrderConfirmation, error) {
	if g.err != nil {
		return domain.OrderConfirmation{}, g.err
	}
	return g.confirm, nil
}

type fakeKitchenGateway struct {
	orders    []domain.KitchenOrder
	updateErr error
}

func (g *fakeKitchenGateway) ListActive(context.Context) ([]domain.KitchenOrder, error) {
	return g.orders, nil
}

func (g *fakeKitchenGateway) UpdateStatus(context.Context, int64, string) error {
	return g.updateErr
}

func newTestRouter(t *testing.T, orderGateway domain.OrderGateway, kitchenGateway domain.KitchenGateway) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	controller := caixa.NewController(memory.NewMirrorStore(), orderGateway,
		caixa.WithJournal(memory.NewJournalRepository()),
	)
	poller := cozinha.NewPoller(kitchenGateway)
	handler := NewHandler(controller, poller, memory.NewJournalRepository(), nil)
	handler.SetProducts([]catalog.Product{
		{ID: "1", Nome: "Pão de queijo", Codigo: "PDQ", Preco: "5.00", Categoria: "10"},
		{ID: "2", Nome: "Café expresso", Codigo: "CAF", Preco: "3.50", Categoria: "20"},
	})

	return NewRouter(handler, health.NewHandler("test"), prometheus.NewRegistry(), nil)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAddCartItemAndGetCart(t *testing.T) {
	router := newTestRouter(t, &fakeOrderGateway{}, &fakeKitchenGateway{})

	rec := doJSON(t, router, http.MethodPost, "/carrinho/itens", `{"produto_id":"1","nome":"Pão de queijo","preco":"5.00"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/carrinho/itens", `{"produto_id":"1","nome":"Pão de queijo","preco":"5.00"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/carrinho", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Carrinho struct {
			Total      string `json:"total"`
			ItensCount int    `json:"itens_count"`
			Itens      []struct {
				Quantidade int `json:"quantidade"`
			} `json:"itens"`
		} `json:"carrinho"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "10.00", payload.Carrinho.Total)
	require.Equal(t, 1, payload.Carrinho.ItensCount)
	require.Equal(t, 2, payload.Carrinho.Itens[0].Quantidade)
}

func TestAddCartItemInvalidPrice(t *testing.T) {
	router := newTestRouter(t, &fakeOrderGateway{}, &fakeKitchenGateway{})

	rec := doJSON(t, router, http.MethodPost, "/carrinho/itens", `{"produto_id":"1","nome":"Café","preco":"abc"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "preco_invalido")
}

func TestRemoveCartItemOutOfRange(t *testing.T) {
	router := newTestRouter(t, &fakeOrderGateway{}, &fakeKitchenGateway{})

	rec := doJSON(t, router, http.MethodPost, "/carrinho/itens", `{"produto_id":"1","nome":"Café","preco":"3.50"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/carrinho/itens/5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Vazio bool   `json:"vazio"`
		Total string `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.False(t, view.Vazio)
	require.Equal(t, "3.50", view.Total)
}

func TestChangeQuantityToZeroRemovesLine(t *testing.T) {
	router := newTestRouter(t, &fakeOrderGateway{}, &fakeKitchenGateway{})

	rec := doJSON(t, router, http.MethodPost, "/carrinho/itens", `{"produto_id":"1","nome":"Café","preco":"3.50"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/carrinho/itens/0/quantidade", `{"delta":-1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Vazio       bool   `json:"vazio"`
		Placeholder string `json:"placeholder"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.True(t, view.Vazio)
	require.Equal(t, "Carrinho vazio", view.Placeholder)
}

func TestSubmitCartValidation(t *testing.T) {
	router := newTestRouter(t, &fakeOrderGateway{}, &fakeKitchenGateway{})

	rec := doJSON(t, router, http.MethodPost, "/carrinho/finalizar", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/carrinho/itens", `{"produto_id":"1","nome":"Café","preco":"3.50"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/carrinho/finalizar", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), `"focus":"cliente-nome"`)
}

func TestSubmitCartSuccess(t *testing.T) {
	gateway := &fakeOrderGateway{confirm: domain.OrderConfirmation{QRCode: "data:image/png;base64,abc"}}
	router := newTestRouter(t, gateway, &fakeKitchenGateway{})

	rec := doJSON(t, router, http.MethodPost, "/carrinho/itens", `{"produto_id":"1","nome":"Café","preco":"3.50"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/carrinho/formulario", `{"cliente_nome":"João","tipo":"balcao","forma_pagamento":"pix"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/carrinho/finalizar", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		QRCode  string `json:"qr_code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "data:image/png;base64,abc", resp.QRCode)

	rec = doJSON(t, router, http.MethodGet, "/carrinho", "")
	require.Contains(t, rec.Body.String(), `"vazio":true`)
}

func TestSubmitCartGatewayUnavailable(t *testing.T) {
	gateway := &fakeOrderGateway{err: domain.ErrGatewayUnavailable}
	router := newTestRouter(t, gateway, &fakeKitchenGateway{})

	rec := doJSON(t, router, http.MethodPost, "/carrinho/itens", `{"produto_id":"1","nome":"Café","preco":"3.50"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodPut, "/carrinho/formulario", `{"cliente_nome":"João","tipo":"balcao","forma_pagamento":"pix"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/carrinho/finalizar", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	// ошибка отправки оставляет корзину нетронутой и порождает уведомление
	rec = doJSON(t, router, http.MethodGet, "/carrinho", "")
	require.Contains(t, rec.Body.String(), `"vazio":false`)

	rec = doJSON(t, router, http.MethodGet, "/notificacoes", "")
	require.Contains(t, rec.Body.String(), "Verifique sua conexão")
}

func TestListCatalogFilters(t *testing.T) {
	router := newTestRouter(t, &fakeOrderGateway{}, &fakeKitchenGateway{})

	rec := doJSON(t, router, http.MethodGet, "/cardapio?busca=caf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Café expresso")
	require.NotContains(t, rec.Body.String(), "Pão de queijo")

	rec = doJSON(t, router, http.MethodGet, "/cardapio?categoria=10", "")
	require.Contains(t, rec.Body.String(), "Pão de queijo")
	require.NotContains(t, rec.Body.String(), "Café expresso")

	rec = doJSON(t, router, http.MethodGet, "/cardapio", "")
	require.Contains(t, rec.Body.String(), "Pão de queijo")
	require.Contains(t, rec.Body.String(), "Café expresso")
}

func TestKitchenEndpoints(t *testing.T) {
	kitchen := &fakeKitchenGateway{
		orders: []domain.KitchenOrder{{ID: 9, NumeroPedido: "P-009", Status: "preparando"}},
	}
	router := newTestRouter(t, &fakeOrderGateway{}, kitchen)

	rec := doJSON(t, router, http.MethodPost, "/cozinha/pedidos/9/status", `{"status":"pronto"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "P-009")

	rec = doJSON(t, router, http.MethodGet, "/cozinha/pedidos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "P-009")
}

func TestKitchenUpdateStatusRejected(t *testing.T) {
	kitchen := &fakeKitchenGateway{updateErr: domain.ErrKitchenUpdateFailed}
	router := newTestRouter(t, &fakeOrderGateway{}, kitchen)

	rec := doJSON(t, router, http.MethodPost, "/cozinha/pedidos/9/status", `{"status":"pronto"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
