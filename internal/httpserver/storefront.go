package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vitrine/internal/domain"
	"vitrine/internal/service/cart"
	"vitrine/internal/service/checkout"
	"vitrine/internal/service/draft"
	"vitrine/internal/service/session"
)

type catalogResponse struct {
	Store  storeSummary   `json:"store"`
	Offers []domain.Offer `json:"offers"`
}

type storeSummary struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	IsOpen   bool   `json:"isOpen"`
}

type addLineRequest struct {
	ProductID     string   `json:"productId" binding:"required"`
	Quantity      int      `json:"quantity" binding:"min=0,max=999"`
	AdditionalIDs []string `json:"additionalIds"`
	ItemNotes     string   `json:"itemNotes" binding:"max=500"`
}

// withSession runs fn holding the shopper's session lock.
func (h *handlers) withSession(fn func(*gin.Context, *session.Session)) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessionFrom(c)
		if sess == nil {
			writeError(c, http.StatusInternalServerError, "internal", "session missing")
			return
		}
		sess.Lock()
		defer sess.Unlock()
		fn(c, sess)
	}
}

// mutateCart applies fn and answers with the resulting cart snapshot.
func (h *handlers) mutateCart(c *gin.Context, sess *session.Session, op string, fn func(*cart.Store) error) {
	if err := h.countMutations(sess, op, func() error { return fn(sess.Cart) }); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Cart.Snapshot())
}

// countMutations runs fn and counts every cart change it causes under op.
func (h *handlers) countMutations(sess *session.Session, op string, fn func() error) error {
	unsubscribe := sess.Cart.Subscribe(func(cart.Snapshot) {
		h.Metrics.IncCartMutation(op)
	})
	defer unsubscribe()
	return fn()
}

func (h *handlers) catalog(c *gin.Context) {
	store := storeFrom(c)
	offers, err := h.Catalog.Offers(c.Request.Context(), store.Slug)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogResponse{
		Store: storeSummary{
			Slug:     store.Slug,
			Name:     store.Name,
			Currency: store.Currency,
			IsOpen:   store.IsOpen,
		},
		Offers: offers,
	})
}

func (h *handlers) getCart(c *gin.Context, sess *session.Session) {
	c.JSON(http.StatusOK, sess.Cart.Snapshot())
}

func (h *handlers) addLine(c *gin.Context, sess *session.Session) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	offer, err := h.Catalog.Offer(c.Request.Context(), storeFrom(c).Slug, strings.TrimSpace(req.ProductID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	payload, err := draft.QuickPayload(offer, req.AdditionalIDs, req.Quantity, req.ItemNotes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.mutateCart(c, sess, "add", func(s *cart.Store) error { return s.Add(payload) })
}

func (h *handlers) incrementLine(c *gin.Context, sess *session.Session) {
	lineID := c.Param("lineId")
	h.mutateCart(c, sess, "increment", func(s *cart.Store) error { return s.Increment(lineID) })
}

func (h *handlers) decrementLine(c *gin.Context, sess *session.Session) {
	lineID := c.Param("lineId")
	h.mutateCart(c, sess, "decrement", func(s *cart.Store) error {
		s.Decrement(lineID)
		return nil
	})
}

func (h *handlers) removeLine(c *gin.Context, sess *session.Session) {
	lineID := c.Param("lineId")
	h.mutateCart(c, sess, "remove", func(s *cart.Store) error {
		s.RemoveLine(lineID)
		return nil
	})
}

func (h *handlers) clearCart(c *gin.Context, sess *session.Session) {
	h.mutateCart(c, sess, "clear", func(s *cart.Store) error {
		s.Clear()
		return nil
	})
}

func (h *handlers) checkout(c *gin.Context, sess *session.Session) {
	var in checkout.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	var res domain.CheckoutResult
	err := h.countMutations(sess, "checkout", func() (err error) {
		res, err = h.Checkout.Submit(c.Request.Context(), storeFrom(c), sess.Cart, in)
		return err
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log.Info(h.log.WithField(c.Request.Context(), "order_id", res.OrderID), "checkout.submitted")
	c.JSON(http.StatusCreated, res)
}

func (h *handlers) orderStatus(c *gin.Context) {
	status, err := h.Orders.GetOrderStatus(c.Request.Context(), storeFrom(c).Slug, c.Param("orderId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// orderStream pushes the order status every poll until the order is final.
func (h *handlers) orderStream(c *gin.Context) {
	slug, orderID := storeFrom(c).Slug, c.Param("orderId")
	if _, err := h.Orders.GetOrderStatus(c.Request.Context(), slug, orderID); err != nil {
		h.respondError(c, err)
		return
	}
	streamPoll(h, c, "order_status", "status", h.Options.OrderPollInterval,
		func(ctx context.Context) (domain.OrderStatus, error) {
			return h.Orders.GetOrderStatus(ctx, slug, orderID)
		},
		domain.OrderStatus.Final,
	)
}
