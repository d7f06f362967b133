package pedido

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/catalog"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
)

const (
	createOrderPath  = "/caixa/criar-pedido/"
	listProductsPath = "/caixa/produtos/"

	// csrfCookieName — имя cookie с CSRF-токеном Django.
	csrfCookieName = "csrftoken"
	// csrfHeader — заголовок, в котором сервер ожидает токен.
	csrfHeader = "X-CSRFToken"

	// fallbackErrorMessage подставляется, когда сервер вернул отказ без текста.
	fallbackErrorMessage = "Erro desconhecido"

	defaultTimeout = 10 * time.Second
)

// Client — HTTP-клиент сервиса заказов (Django-бэкенд кассы).
// Держит cookie jar: CSRF-токен приходит cookie-ой при первом GET
// и дальше отправляется заголовком на каждый POST.
type Client struct {
	baseURL *url.URL
	httpc   *http.Client
	logger  *log.Entry
}

// NewClient создаёт клиента сервиса заказов.
func NewClient(baseURL string, logger *log.Entry) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse order service url: %w", err)
	}
	if logger == nil {
		logger = log.WithField("component", "pedido-client")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		baseURL: parsed,
		httpc: &http.Client{
			Jar:     jar,
			Timeout: defaultTimeout,
		},
		logger: logger,
	}, nil
}

// Prime выполняет GET на корень сервиса, чтобы сервер выдал csrftoken cookie.
// Ошибка не фатальна: POST уйдёт с пустым токеном, сервер решает сам.
func (c *Client) Prime(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.String(), nil)
	if err != nil {
		return fmt.Errorf("build prime request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("prime csrf cookie: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

// CSRFToken возвращает значение cookie csrftoken из cookie jar:
// первая cookie с точно совпадающим именем, URL-декодированная.
// Отсутствие cookie даёт пустой токен — он всё равно отправляется.
func (c *Client) CSRFToken() string {
	for _, cookie := range c.httpc.Jar.Cookies(c.baseURL) {
		if cookie.Name == csrfCookieName {
			if decoded, err := url.QueryUnescape(cookie.Value); err == nil {
				return decoded
			}
			return cookie.Value
		}
	}
	return ""
}

// createOrderResponse — wire-формат ответа сервиса заказов.
type createOrderResponse struct {
	Success bool   `json:"success"`
	QRCode  string `json:"qr_code"`
	Error   string `json:"error"`
}

// CreateOrder отправляет заказ одним POST-запросом.
// Транспортные сбои и нечитаемое тело — ErrGatewayUnavailable;
// success=false — *domain.OrderRejectedError с текстом сервера.
func (c *Client) CreateOrder(ctx context.Context, payload domain.OrderPayload) (domain.OrderConfirmation, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("marshal order payload: %w", err)
	}

	endpoint := c.baseURL.JoinPath(createOrderPath).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("build create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(csrfHeader, c.CSRFToken())

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("order service request failed")
		return domain.OrderConfirmation{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.WithError(err).Warn("order service returned unreadable body")
		return domain.OrderConfirmation{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	if !parsed.Success {
		message := parsed.Error
		if message == "" {
			message = fallbackErrorMessage
		}
		return domain.OrderConfirmation{}, &domain.OrderRejectedError{Message: message}
	}

	c.logger.WithField("cliente", payload.ClienteNome).Info("order created")
	return domain.OrderConfirmation{QRCode: parsed.QRCode}, nil
}

// listProductsResponse — wire-формат списка товаров кассы.
type listProductsResponse struct {
	Produtos []struct {
		ID        json.Number `json:"id"`
		Nome      string      `json:"nome"`
		Descricao string      `json:"descricao"`
		Preco     string      `json:"preco"`
		Categoria string      `json:"categoria"`
	} `json:"produtos"`
}

// FetchProducts загружает каталог товаров для cardápio терминала.
func (c *Client) FetchProducts(ctx context.Context) ([]catalog.Product, error) {
	endpoint := c.baseURL.JoinPath(listProductsPath).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build list products request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed listProductsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	products := make([]catalog.Product, 0, len(parsed.Produtos))
	for _, p := range parsed.Produtos {
		products = append(products, catalog.Product{
			ID:        p.ID.String(),
			Nome:      p.Nome,
			Codigo:    p.ID.String(),
			Descricao: p.Descricao,
			Preco:     p.Preco,
			Categoria: p.Categoria,
		})
	}
	return products, nil
}

// Ping проверяет доступность сервиса заказов (для health check).
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

var _ domain.OrderGateway = (*Client)(nil)
