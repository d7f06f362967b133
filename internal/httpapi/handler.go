package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/catalog"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/service/caixa"
	"github.com/vladislavdragonenkov/caixa-terminal/internal/service/cozinha"
)

// Handler — HTTP-обработчики терминала кассы.
type Handler struct {
	controller *caixa.Controller
	poller     *cozinha.Poller
	journal    domain.JournalRepository
	logger     *log.Entry

	mu       sync.RWMutex
	products []catalog.Product
}

// NewHandler создаёт обработчики терминала.
func NewHandler(controller *caixa.Controller, poller *cozinha.Poller, journal domain.JournalRepository, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}
	return &Handler{
		controller: controller,
		poller:     poller,
		journal:    journal,
		logger:     logger,
	}
}

// SetProducts обновляет cardápio, раздаваемый терминалом.
func (h *Handler) SetProducts(products []catalog.Product) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.products = products
}

type addItemReq struct {
	ProdutoID string `json:"produto_id" binding:"required"`
	Nome      string `json:"nome" binding:"required"`
	Preco     string `json:"preco" binding:"required"`
}

type changeQtyReq struct {
	Delta int `json:"delta" binding:"required"`
}

type kitchenStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// AddCartItem добавляет позицию в корзину.
func (h *Handler) AddCartItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	view, err := h.controller.AddItem(c.Request.Context(), req.ProdutoID, req.Nome, req.Preco)
	if err != nil {
		if errors.Is(err, domain.ErrPriceInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "preco_invalido"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// RemoveCartItem удаляет позицию по индексу. Индекс вне диапазона —
// no-op, корзина возвращается как есть.
func (h *Handler) RemoveCartItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	c.JSON(http.StatusOK, h.controller.RemoveItem(c.Request.Context(), index))
}

// ChangeCartItemQuantity прибавляет delta к количеству позиции.
func (h *Handler) ChangeCartItemQuantity(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	var req changeQtyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	c.JSON(http.StatusOK, h.controller.ChangeQuantity(c.Request.Context(), index, req.Delta))
}

// GetCart возвращает текущее представление корзины и форму заказа.
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"carrinho":   h.controller.View(),
		"formulario": h.controller.Form(),
	})
}

// UpdateForm обновляет поля формы заказа.
func (h *Handler) UpdateForm(c *gin.Context) {
	var form caixa.FormState
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	h.controller.SetForm(c.Request.Context(), form)
	c.JSON(http.StatusOK, gin.H{"formulario": h.controller.Form()})
}

// SubmitCart отправляет заказ на сервер столовой.
func (h *Handler) SubmitCart(c *gin.Context) {
	result, err := h.controller.Submit(c.Request.Context())
	if err != nil {
		h.writeSubmitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"qr_code":  result.QRCode,
		"carrinho": result.View,
	})
}

func (h *Handler) writeSubmitError(c *gin.Context, err error) {
	var rejected *domain.OrderRejectedError
	switch {
	case errors.Is(err, domain.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "pedido já está sendo enviado"})
	case errors.Is(err, domain.ErrCartEmpty),
		errors.Is(err, domain.ErrCustomerNameRequired),
		errors.Is(err, domain.ErrPaymentMethodRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   err.Error(),
			"focus":   domain.FocusTarget(err),
		})
	case errors.As(err, &rejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": rejected.Message})
	case errors.Is(err, domain.ErrGatewayUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Erro ao criar pedido! Verifique sua conexão."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}

// ListCatalog отдаёт cardápio с фильтрами поиска и категории.
func (h *Handler) ListCatalog(c *gin.Context) {
	busca := c.Query("busca")
	categoria := c.Query("categoria")

	h.mu.RLock()
	products := h.products
	h.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{"produtos": catalog.Filter(products, busca, categoria)})
}

// ListJournal отдаёт журнал отправленных заказов, новые первыми.
func (h *Handler) ListJournal(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
			return
		}
		limit = parsed
	}

	entries, err := h.journal.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list order journal")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "journal_unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pedidos": entries})
}

// ListKitchenOrders отдаёт снимок последнего удачного опроса кухни.
func (h *Handler) ListKitchenOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"pedidos":       h.poller.Orders(),
		"atualizado_em": h.poller.LastPolled(),
	})
}

// UpdateKitchenStatus меняет статус заказа на кухне.
func (h *Handler) UpdateKitchenStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	var req kitchenStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	if err := h.poller.UpdateStatus(c.Request.Context(), orderID, req.Status); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrKitchenUpdateFailed) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "pedidos": h.poller.Orders()})
}

// ListNotifications отдаёт активные уведомления терминала.
func (h *Handler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notificacoes": h.controller.Toasts().Active()})
}

// DismissNotification скрывает уведомление до истечения TTL.
func (h *Handler) DismissNotification(c *gin.Context) {
	h.controller.Toasts().Dismiss(c.Param("id"))
	c.Status(http.StatusNoContent)
}
