package cozinha_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/gateway/cozinha"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger.WithField("component", "test")
}

func TestUpdateStatus_Success(t *testing.T) {
	var gotPath, gotStatus, gotCSRF string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotStatus = r.PostFormValue("status")
		gotCSRF = r.PostFormValue("csrfmiddlewaretoken")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "status": gotStatus})
	}))
	defer server.Close()

	client, err := cozinha.NewClient(server.URL, testLogger())
	require.NoError(t, err)

	require.NoError(t, client.UpdateStatus(context.Background(), 42, "preparando"))
	require.Equal(t, "/cozinha/atualizar-status/42/", gotPath)
	require.Equal(t, "preparando", gotStatus)
	// Cookie нет — токен пустой, но поле всё равно присутствует.
	require.Equal(t, "", gotCSRF)
}

func TestUpdateStatus_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
	}))
	defer server.Close()

	client, err := cozinha.NewClient(server.URL, testLogger())
	require.NoError(t, err)

	err = client.UpdateStatus(context.Background(), 7, "pronto")
	require.ErrorIs(t, err, domain.ErrKitchenUpdateFailed)
}

func TestUpdateStatus_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client, err := cozinha.NewClient(server.URL, testLogger())
	require.NoError(t, err)

	err = client.UpdateStatus(context.Background(), 7, "pronto")
	require.ErrorIs(t, err, domain.ErrGatewayUnavailable)
}

func TestListActive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cozinha/listar-pedidos/", r.URL.Path)
		_, _ = w.Write([]byte(`{"pedidos":[
			{"id": 1, "numero_pedido": "0001", "tipo": "Balcão", "mesa": "", "status": "Pendente",
			 "itens": [{"produto": "Café", "quantidade": 2, "observacoes": ""}],
			 "criado_em": "11:42"}
		]}`))
	}))
	defer server.Close()

	client, err := cozinha.NewClient(server.URL, testLogger())
	require.NoError(t, err)

	orders, err := client.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, int64(1), orders[0].ID)
	require.Equal(t, "0001", orders[0].NumeroPedido)
	require.Len(t, orders[0].Itens, 1)
	require.Equal(t, "Café", orders[0].Itens[0].Produto)
	require.Equal(t, 2, orders[0].Itens[0].Quantidade)
}

func TestListActive_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, err := cozinha.NewClient(server.URL, testLogger())
	require.NoError(t, err)

	_, err = client.ListActive(context.Background())
	require.ErrorIs(t, err, domain.ErrGatewayUnavailable)
}
