package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vitrine/internal/domain"
	"vitrine/internal/logger"
	"vitrine/internal/metrics"
	"vitrine/internal/service/authrelay"
	"vitrine/internal/service/cart"
	"vitrine/internal/service/checkout"
	"vitrine/internal/service/insights"
	"vitrine/internal/service/push"
	"vitrine/internal/service/session"
)

type CatalogService interface {
	Store(ctx context.Context, slug string) (domain.Store, error)
	Offers(ctx context.Context, slug string) ([]domain.Offer, error)
	Offer(ctx context.Context, slug, productID string) (domain.Offer, error)
	Invalidate(ctx context.Context, slug string) error
}

type CheckoutService interface {
	Submit(ctx context.Context, store domain.Store, c *cart.Store, in checkout.Input) (domain.CheckoutResult, error)
}

type OrderSource interface {
	GetOrderStatus(ctx context.Context, slug, orderID string) (domain.OrderStatus, error)
}

type AuthService interface {
	Login(ctx context.Context, in authrelay.LoginInput) (authrelay.Session, error)
	Check(token string) error
	Me(ctx context.Context, token string) (domain.User, error)
}

// MerchantBackend is the part of the backend API the portal proxies as is.
type MerchantBackend interface {
	GetSettings(ctx context.Context, token, slug string) (domain.StoreSettings, error)
	UpdateSettings(ctx context.Context, token, slug string, s domain.StoreSettings) (domain.StoreSettings, error)
	ListInventory(ctx context.Context, token, slug string) ([]domain.InventoryItem, error)
	UpdateInventory(ctx context.Context, token, slug, productID string, upd domain.InventoryUpdate) (domain.InventoryItem, error)
	ListThreads(ctx context.Context, token, slug string) ([]domain.Thread, error)
	ListMessages(ctx context.Context, token, slug, threadID string) ([]domain.Message, error)
	SendMessage(ctx context.Context, token, slug, threadID, body string) (domain.Message, error)
}

type InsightsService interface {
	Dashboard(ctx context.Context, token, slug, rangeKey string) (insights.Dashboard, error)
}

type PushService interface {
	Subscribe(ctx context.Context, storeID, userID string, in push.SubscribeInput) (domain.PushSubscription, error)
	Unsubscribe(ctx context.Context, storeID, endpoint string) error
	Notify(ctx context.Context, token string, store domain.Store, msg domain.PushMessage) (int, error)
	UnreadRose(storeID string, total int) bool
}

// Options carries the HTTP-level settings.
type Options struct {
	SessionCookie string
	AuthCookie    string
	CookieSecure  bool
	CORSOrigins   []string

	OrderPollInterval        time.Duration
	ThreadsPollInterval      time.Duration
	ConversationPollInterval time.Duration

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

// Deps groups service dependencies for the router.
type Deps struct {
	Catalog  CatalogService
	Checkout CheckoutService
	Orders   OrderSource
	Auth     AuthService
	Merchant MerchantBackend
	Insights InsightsService
	Push     PushService
	Sessions *session.Registry
	Metrics  *metrics.Metrics
	Options  Options
}

func (d *Deps) validate() error {
	switch {
	case d.Catalog == nil:
		return errors.New("httpserver: catalog service is required")
	case d.Sessions == nil:
		return errors.New("httpserver: session registry is required")
	case d.Checkout == nil || d.Orders == nil:
		return errors.New("httpserver: checkout and order services are required")
	case d.Auth == nil || d.Merchant == nil:
		return errors.New("httpserver: auth and merchant services are required")
	case d.Insights == nil || d.Push == nil:
		return errors.New("httpserver: insights and push services are required")
	}
	if d.Options.SessionCookie == "" {
		d.Options.SessionCookie = "vitrine_session"
	}
	if d.Options.AuthCookie == "" {
		d.Options.AuthCookie = "vitrine_auth"
	}
	if d.Options.OrderPollInterval <= 0 {
		d.Options.OrderPollInterval = 30 * time.Second
	}
	if d.Options.ThreadsPollInterval <= 0 {
		d.Options.ThreadsPollInterval = 20 * time.Second
	}
	if d.Options.ConversationPollInterval <= 0 {
		d.Options.ConversationPollInterval = 15 * time.Second
	}
	return nil
}

type handlers struct {
	Deps
	log     *logger.Logger
	streams context.Context
}

// buildRouter wires routes for the API. streams is cancelled on shutdown to
// end open event streams.
func buildRouter(log *logger.Logger, db Pinger, deps Deps, streams context.Context) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	if streams == nil {
		streams = context.Background()
	}
	h := &handlers{Deps: deps, log: log, streams: streams}

	router := gin.New()
	router.Use(
		requestIDMiddleware(log),
		loggingMiddleware(log),
		metricsMiddleware(deps.Metrics),
		gin.Recovery(),
		corsMiddleware(deps.Options.CORSOrigins),
	)

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	if deps.Options.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.Options.MetricsHandler))
	}

	shop := router.Group("/s/:storeSlug", storeMiddleware(deps.Catalog, log))
	shop.GET("/catalog", h.catalog)
	shop.GET("/orders/:orderId", h.orderStatus)
	shop.GET("/orders/:orderId/stream", h.orderStream)

	cartGroup := shop.Group("", sessionMiddleware(deps.Sessions, deps.Options, log))
	cartGroup.GET("/cart", h.withSession(h.getCart))
	cartGroup.POST("/cart/lines", h.withSession(h.addLine))
	cartGroup.POST("/cart/lines/:lineId/increment", h.withSession(h.incrementLine))
	cartGroup.POST("/cart/lines/:lineId/decrement", h.withSession(h.decrementLine))
	cartGroup.DELETE("/cart/lines/:lineId", h.withSession(h.removeLine))
	cartGroup.DELETE("/cart", h.withSession(h.clearCart))
	cartGroup.POST("/checkout", h.withSession(h.checkout))

	d := cartGroup.Group("/products/:productId/draft")
	d.GET("", h.withDraft(h.getDraft))
	d.PATCH("", h.withDraft(h.patchDraft))
	d.DELETE("", h.withSession(h.unmountDraft))
	d.POST("/open", h.withDraft(h.openDraft))
	d.POST("/additionals/:additionalId/toggle", h.withDraft(h.toggleAdditional))
	d.POST("/summary", h.withDraft(h.advanceToSummary))
	d.POST("/back", h.withDraft(h.backToConfig))
	d.POST("/confirm", h.withDraft(h.confirmDraft))
	d.POST("/discard", h.withDraft(h.discardDraftLine))
	d.POST("/close", h.withDraft(h.closeDraft))
	d.POST("/custom", h.withDraft(h.submitCustom))
	d.POST("/edit", h.withDraft(h.requestEdit))
	d.DELETE("/preview/:lineId", h.withDraft(h.removePreviewLine))

	admin := router.Group("/admin/:storeSlug", storeMiddleware(deps.Catalog, log))
	admin.POST("/session", h.login)
	admin.DELETE("/session", h.logout)

	authed := admin.Group("", authMiddleware(deps.Auth, deps.Options))
	authed.GET("/me", h.me)
	authed.GET("/settings", h.getSettings)
	authed.PUT("/settings", h.updateSettings)
	authed.GET("/inventory", h.listInventory)
	authed.PATCH("/inventory/:productId", h.updateInventory)
	authed.POST("/push/subscriptions", h.subscribePush)
	authed.DELETE("/push/subscriptions", h.unsubscribePush)

	authed.GET("/insights", moduleGate("insights"), h.insightsDashboard)

	inbox := authed.Group("/inbox", moduleGate("whatsapp"))
	inbox.GET("/threads", h.listThreads)
	inbox.GET("/threads/stream", h.threadsStream)
	inbox.GET("/threads/:threadId/messages", h.listMessages)
	inbox.POST("/threads/:threadId/messages", h.sendMessage)
	inbox.GET("/threads/:threadId/stream", h.conversationStream)

	return router, nil
}
