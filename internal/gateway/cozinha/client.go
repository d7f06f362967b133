package cozinha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
)

const (
	updateStatusPathFmt = "/cozinha/atualizar-status/%d/"
	listOrdersPath      = "/cozinha/listar-pedidos/"

	csrfCookieName = "csrftoken"
	// csrfFormField — CSRF передаётся полем формы, не заголовком:
	// endpoint принимает form-encoded тело.
	csrfFormField = "csrfmiddlewaretoken"

	defaultTimeout = 10 * time.Second
)

// Client — HTTP-клиент кухонного сервиса.
type Client struct {
	baseURL *url.URL
	httpc   *http.Client
	logger  *log.Entry
}

// NewClient создаёт клиента кухни.
func NewClient(baseURL string, logger *log.Entry) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse kitchen service url: %w", err)
	}
	if logger == nil {
		logger = log.WithField("component", "cozinha-client")
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

func (c *Client) csrfToken() string {
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

type updateStatusResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// UpdateStatus переводит заказ в новый статус одним form-encoded POST.
func (c *Client) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	form := url.Values{}
	form.Set("status", status)
	form.Set(csrfFormField, c.csrfToken())

	endpoint := c.baseURL.JoinPath(fmt.Sprintf(updateStatusPathFmt, orderID)).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build update status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed updateStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	if !parsed.Success {
		return domain.ErrKitchenUpdateFailed
	}

	c.logger.WithFields(log.Fields{
		"pedido_id": strconv.FormatInt(orderID, 10),
		"status":    status,
	}).Info("kitchen status updated")
	return nil
}

type listOrdersResponse struct {
	Pedidos []domain.KitchenOrder `json:"pedidos"`
}

// ListActive возвращает активные заказы для ленты кухни.
func (c *Client) ListActive(ctx context.Context) ([]domain.KitchenOrder, error) {
	endpoint := c.baseURL.JoinPath(listOrdersPath).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build list orders request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed listOrdersResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	return parsed.Pedidos, nil
}

var _ domain.KitchenGateway = (*Client)(nil)
