package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vitrine/internal/domain"
	"vitrine/internal/service/cart"
	"vitrine/internal/service/draft"
	"vitrine/internal/service/session"
)

type draftResponse struct {
	Draft           draft.View          `json:"draft"`
	Preview         []draft.PreviewLine `json:"preview"`
	PreviewSubtotal int64               `json:"previewSubtotal"`
	Cart            cart.Snapshot       `json:"cart"`
}

type patchDraftRequest struct {
	Quantity  *int    `json:"quantity"`
	ItemNotes *string `json:"itemNotes" binding:"omitempty,max=500"`
}

type editRequest struct {
	LineID    string `json:"lineId" binding:"required"`
	ProductID string `json:"productId" binding:"required"`
}

type draftHandler func(*gin.Context, *session.Session, *draft.Controller)

// withDraft mounts (or refreshes) the controller of :productId with the
// current catalog entry before running fn under the session lock.
func (h *handlers) withDraft(fn draftHandler) gin.HandlerFunc {
	return h.withSession(func(c *gin.Context, sess *session.Session) {
		offer, err := h.Catalog.Offer(c.Request.Context(), storeFrom(c).Slug, c.Param("productId"))
		if err != nil {
			h.respondError(c, err)
			return
		}
		fn(c, sess, sess.Controller(offer))
	})
}

func draftState(sess *session.Session, ctl *draft.Controller) draftResponse {
	return draftResponse{
		Draft:           ctl.View(),
		Preview:         ctl.Preview(),
		PreviewSubtotal: ctl.PreviewSubtotal(),
		Cart:            sess.Cart.Snapshot(),
	}
}

// respondDraft answers with the draft state, or the error when err is set.
func (h *handlers) respondDraft(c *gin.Context, sess *session.Session, ctl *draft.Controller, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftState(sess, ctl))
}

func (h *handlers) getDraft(c *gin.Context, sess *session.Session, ctl *draft.Controller) {
	h.respondDraft(c, sess, ctl, nil)
}

func (h *handlers) patchDraft(c *gin.Context, sess *session.Session, ctl *draft.Controller) {
	var req patchDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.Quantity != nil {
		if err := ctl.SetQuantity(*req.Quantity); err != nil {
			h.respondError(c, err)
			return
		}
	}
	if req.ItemNotes != nil {
		if err := ctl.SetNotes(*req.ItemNotes); err != nil {
			h.respondError(c, err)
			return
		}
	}
	h.respondDraft(c, sess, ctl, nil)
}

func (h *handlers) openDraft(c *gin.Context, sess *session.Session, ctl *draft.Controller) {
	ctl.Open()
	h.respondDraft(c, sess, ctl, nil)
}

func (h *handlers) toggleAdditional(c *gin.Context, sess *session.Session, ctl *draft.Controller) {
	h.respondDraft(c, sess, ctl, ctl.ToggleAdditional(c.Param("additionalId")))
}

func (h *handlers) advanceToSummary(c *gin.Context, sess *session.Session, ctl *draft.Controller) {
	h.respondDraft(c, sess, ctl, ctl.AdvanceToSummary())
}

func (h *handlers) backToConfig(c *gin.Context, sess *session.Session, ctl *draft.Controller) {
	h.respondDraft(c, sess, ctl, ctl.BackToConfig())
}

func (h *handlers) confirmDraft(c *gin.Context, sess *session.Session, ctl *draft.Controller) {
	var committed bool
	err := h.countMutations(sess, "confirm", func() (err error) {
		committed, err = ctl.Confirm()
		return err
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"committed": committed, "state": draftState(sess, ctl)})
}

func (h *handlers) discardDraftLine(c *gin.Context, sess *session.Session, ctl *draft.Controller) {
	_ = h.countMutations(sess, "discard", func() error {
		ctl.DiscardDraftLine()
		return nil
	})
	h.respondDraft(c, sess, ctl, nil)
}

func (h *handlers) closeDraft(c *gin.Context, sess *session.Session, ctl *draft.Controller) {
	ctl.Close()
	h.respondDraft(c, sess, ctl, nil)
}

func (h *handlers) submitCustom(c *gin.Context, sess *session.Session, ctl *draft.Controller) {
	var in draft.CustomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	if err := h.countMutations(sess, "custom", func() error { return ctl.SubmitCustom(in) }); err != nil {
		h.respondError(c, err)
		return
	}
	h.respondDraft(c, sess, ctl, nil)
}

// requestEdit asks for a cart line to be edited from the current product's
// draft. Lines of another product go to that product's controller, which is
// mounted first when the product is still in the catalog.
func (h *handlers) requestEdit(c *gin.Context, sess *session.Session, ctl *draft.Controller) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.ProductID != ctl.ProductID() && !sess.Bus.Mounted(req.ProductID) {
		offer, err := h.Catalog.Offer(c.Request.Context(), storeFrom(c).Slug, req.ProductID)
		switch {
		case err == nil:
			sess.Controller(offer)
		case !errors.Is(err, domain.ErrNotFound):
			h.respondError(c, err)
			return
		}
	}
	handled, err := ctl.RequestEdit(req.LineID, req.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	target := ctl
	if req.ProductID != ctl.ProductID() {
		if other, ok := sess.Mounted(req.ProductID); ok {
			target = other
		}
	}
	c.JSON(http.StatusOK, gin.H{"handled": handled, "state": draftState(sess, target)})
}

// unmountDraft releases the product's controller once the storefront stops
// rendering it. Edit requests for the product mount it again.
func (h *handlers) unmountDraft(c *gin.Context, sess *session.Session) {
	sess.Unmount(c.Param("productId"))
	c.Status(http.StatusNoContent)
}

func (h *handlers) removePreviewLine(c *gin.Context, sess *session.Session, ctl *draft.Controller) {
	_ = h.countMutations(sess, "remove", func() error {
		ctl.RemovePreviewLine(c.Param("lineId"))
		return nil
	})
	h.respondDraft(c, sess, ctl, nil)
}
