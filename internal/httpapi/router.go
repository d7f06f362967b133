package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/health"
)

// NewRouter собирает маршруты терминала.
func NewRouter(h *Handler, healthHandler *health.Handler, gatherer prometheus.Gatherer, logger *log.Entry) *gin.Engine {
	if logger == nil {
		logger = log.WithField("component", "http")
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", gin.WrapH(healthHandler))
	r.GET("/readyz", gin.WrapF(healthHandler.ReadinessHandler))
	r.GET("/livez", gin.WrapF(health.LivenessHandler))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	carrinho := r.Group("/carrinho")
	{
		carrinho.GET("", h.GetCart)
		carrinho.POST("/itens", h.AddCartItem)
		carrinho.DELETE("/itens/:index", h.RemoveCartItem)
		carrinho.POST("/itens/:index/quantidade", h.ChangeCartItemQuantity)
		carrinho.PUT("/formulario", h.UpdateForm)
		carrinho.POST("/finalizar", h.SubmitCart)
	}

	r.GET("/cardapio", h.ListCatalog)
	r.GET("/pedidos", h.ListJournal)

	cozinha := r.Group("/cozinha")
	{
		cozinha.GET("/pedidos", h.ListKitchenOrders)
		cozinha.POST("/pedidos/:id/status", h.UpdateKitchenStatus)
	}

	r.GET("/notificacoes", h.ListNotifications)
	r.DELETE("/notificacoes/:id", h.DismissNotification)

	return r
}

// requestLogger пишет access-лог в logrus.
func requestLogger(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		}).Debug("http request")
	}
}
