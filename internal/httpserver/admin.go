package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vitrine/internal/domain"
	"vitrine/internal/service/authrelay"
	"vitrine/internal/service/push"
)

type sendMessageRequest struct {
	Body string `json:"body" binding:"required,max=4096"`
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

type threadsEvent struct {
	Threads     []domain.Thread `json:"threads"`
	UnreadTotal int             `json:"unreadTotal"`
}

func (h *handlers) login(c *gin.Context) {
	var in authrelay.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	sess, err := h.Auth.Login(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	if maxAge <= 0 {
		writeError(c, http.StatusUnauthorized, "unauthorized", "session already expired")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Options.AuthCookie, sess.Token, maxAge, "/admin", "", h.Options.CookieSecure, true)
	h.log.Info(h.log.WithField(c.Request.Context(), "user_id", sess.User.ID), "admin.login")
	c.JSON(http.StatusOK, gin.H{"user": sess.User, "expiresAt": sess.ExpiresAt})
}

func (h *handlers) logout(c *gin.Context) {
	clearAuthCookie(c, h.Options)
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	user, err := h.Auth.Me(c.Request.Context(), tokenFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handlers) getSettings(c *gin.Context) {
	settings, err := h.Merchant.GetSettings(c.Request.Context(), tokenFrom(c), storeFrom(c).Slug)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *handlers) updateSettings(c *gin.Context) {
	var in domain.StoreSettings
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	slug := storeFrom(c).Slug
	settings, err := h.Merchant.UpdateSettings(c.Request.Context(), tokenFrom(c), slug, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.invalidateCatalog(c.Request.Context(), slug)
	c.JSON(http.StatusOK, settings)
}

func (h *handlers) listInventory(c *gin.Context) {
	items, err := h.Merchant.ListInventory(c.Request.Context(), tokenFrom(c), storeFrom(c).Slug)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *handlers) updateInventory(c *gin.Context) {
	var upd domain.InventoryUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		bindError(c, err)
		return
	}
	if upd.Availability != nil {
		switch *upd.Availability {
		case domain.AvailabilityAvailable, domain.AvailabilityUnavailable, domain.AvailabilityContactToOrder:
		default:
			h.respondError(c, domain.Invalid("availability", "must be available, unavailable or contact_to_order"))
			return
		}
	}
	if upd.Stock != nil && *upd.Stock < 0 {
		h.respondError(c, domain.Invalid("stock", "must not be negative"))
		return
	}
	if upd.PriceCents != nil && *upd.PriceCents < 0 {
		h.respondError(c, domain.Invalid("priceCents", "must not be negative"))
		return
	}

	slug := storeFrom(c).Slug
	item, err := h.Merchant.UpdateInventory(c.Request.Context(), tokenFrom(c), slug, c.Param("productId"), upd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.invalidateCatalog(c.Request.Context(), slug)
	c.JSON(http.StatusOK, item)
}

// invalidateCatalog drops cached storefront data after a merchant edit. A
// failure only delays the change until the cache entry expires.
func (h *handlers) invalidateCatalog(ctx context.Context, slug string) {
	if err := h.Catalog.Invalidate(ctx, slug); err != nil {
		h.log.Warn(h.log.WithField(ctx, "error", err.Error()), "catalog.invalidate_failed")
	}
}

func (h *handlers) insightsDashboard(c *gin.Context) {
	rangeKey := strings.TrimSpace(c.Query("range"))
	dash, err := h.Insights.Dashboard(c.Request.Context(), tokenFrom(c), storeFrom(c).Slug, rangeKey)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *handlers) listThreads(c *gin.Context) {
	threads, err := h.Merchant.ListThreads(c.Request.Context(), tokenFrom(c), storeFrom(c).Slug)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, threadsEvent{Threads: threads, UnreadTotal: domain.UnreadTotal(threads)})
}

// threadsStream polls the inbox and notifies the store's devices whenever the
// unread total rises.
func (h *handlers) threadsStream(c *gin.Context) {
	store, token := storeFrom(c), tokenFrom(c)
	streamPoll(h, c, "inbox_threads", "threads", h.Options.ThreadsPollInterval,
		func(ctx context.Context) (threadsEvent, error) {
			threads, err := h.Merchant.ListThreads(ctx, token, store.Slug)
			if err != nil {
				return threadsEvent{}, err
			}
			ev := threadsEvent{Threads: threads, UnreadTotal: domain.UnreadTotal(threads)}
			if h.Push.UnreadRose(store.ID, ev.UnreadTotal) {
				h.notifyUnread(ctx, token, store, ev.UnreadTotal)
			}
			return ev, nil
		},
		nil,
	)
}

func (h *handlers) notifyUnread(ctx context.Context, token string, store domain.Store, unread int) {
	msg := domain.PushMessage{
		Title: store.Name,
		Body:  unreadBody(unread),
		URL:   "/admin/" + store.Slug + "/inbox",
	}
	sent, err := h.Push.Notify(ctx, token, store, msg)
	logCtx := h.log.WithFields(ctx, map[string]any{"sent": sent, "unread": unread})
	if err != nil {
		h.log.Error(logCtx, "push.notify_failed", err)
		return
	}
	h.log.Info(logCtx, "push.notified")
}

func unreadBody(n int) string {
	if n == 1 {
		return "1 unread message"
	}
	return strconv.Itoa(n) + " unread messages"
}

func (h *handlers) listMessages(c *gin.Context) {
	msgs, err := h.Merchant.ListMessages(c.Request.Context(), tokenFrom(c), storeFrom(c).Slug, c.Param("threadId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *handlers) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	msg, err := h.Merchant.SendMessage(c.Request.Context(), tokenFrom(c), storeFrom(c).Slug, c.Param("threadId"), req.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *handlers) conversationStream(c *gin.Context) {
	slug, token, threadID := storeFrom(c).Slug, tokenFrom(c), c.Param("threadId")
	streamPoll(h, c, "inbox_conversation", "messages", h.Options.ConversationPollInterval,
		func(ctx context.Context) ([]domain.Message, error) {
			return h.Merchant.ListMessages(ctx, token, slug, threadID)
		},
		nil,
	)
}

func (h *handlers) subscribePush(c *gin.Context) {
	var in push.SubscribeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.Auth.Me(c.Request.Context(), tokenFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	sub, err := h.Push.Subscribe(c.Request.Context(), storeFrom(c).ID, user.ID, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *handlers) unsubscribePush(c *gin.Context) {
	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Push.Unsubscribe(c.Request.Context(), storeFrom(c).ID, req.Endpoint); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
