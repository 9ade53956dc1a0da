package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/larek/internal/api/middleware"
	"github.com/jafarshop/larek/internal/domain"
	"github.com/jafarshop/larek/internal/events"
	"github.com/jafarshop/larek/internal/storefront"
	"github.com/jafarshop/larek/pkg/errors"
)

// HandleIndex handles GET /
func HandleIndex(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := middleware.GetShopFromContext(c)
		if !ok {
			c.String(http.StatusInternalServerError, "session unavailable")
			return
		}

		// a failed load leaves the banner on the page
		if err := shop.Load(c.Request.Context(), c.Query("reload") == "1"); err != nil {
			logger.Warn("Rendering without catalog", zap.String("session_id", shop.ID.String()), zap.Error(err))
		}

		page, err := shop.Render()
		if err != nil {
			logger.Error("Failed to render page", zap.Error(err))
			c.String(http.StatusInternalServerError, "internal error")
			return
		}

		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	}
}

// HandleIntent emits an intent without payload, e.g. POST /basket/open
func HandleIntent(name events.Name, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		dispatch(c, logger, func(shop *storefront.Shop) error {
			return shop.Dispatch(c.Request.Context(), name, nil)
		})
	}
}

// HandleProductIntent emits an intent carrying the :id path parameter,
// e.g. POST /cards/:id/select
func HandleProductIntent(name events.Name, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		dispatch(c, logger, func(shop *storefront.Shop) error {
			return shop.Dispatch(c.Request.Context(), name, c.Param("id"))
		})
	}
}

// HandleFormFields emits a change for every posted field of the step, then
// the submit intent when one is given
func HandleFormFields(step domain.Step, submit events.Name, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		changes := make([]events.FieldChangePayload, 0, len(step.Fields()))
		for _, field := range step.Fields() {
			value, posted := c.GetPostForm(string(field))
			if !posted {
				continue
			}
			if field == domain.FieldPayment && value != "" && !domain.PaymentMethod(value).IsValid() {
				c.String(http.StatusBadRequest, "unknown payment method")
				return
			}
			changes = append(changes, events.FieldChangePayload{Field: field, Value: value})
		}

		dispatch(c, logger, func(shop *storefront.Shop) error {
			ctx := c.Request.Context()
			for _, change := range changes {
				if err := shop.Dispatch(ctx, events.FieldChange(step, change.Field), change); err != nil {
					return err
				}
			}
			if submit == "" {
				return nil
			}
			return shop.Dispatch(ctx, submit, nil)
		})
	}
}

// dispatch runs fn against the session and answers with post/redirect/get.
// Remote failures also redirect: the page shows them in its banner.
func dispatch(c *gin.Context, logger *zap.Logger, fn func(shop *storefront.Shop) error) {
	shop, ok := middleware.GetShopFromContext(c)
	if !ok {
		c.String(http.StatusInternalServerError, "session unavailable")
		return
	}

	err := fn(shop)
	switch e := err.(type) {
	case nil, *errors.NetworkError, *errors.DecodeError:
		c.Redirect(http.StatusSeeOther, "/")
	case *errors.ErrInvalidStateTransition:
		c.String(http.StatusConflict, e.Error())
	case *errors.ErrNotFound:
		c.String(http.StatusNotFound, e.Error())
	case *errors.ErrNotPurchasable:
		c.String(http.StatusUnprocessableEntity, e.Error())
	case *errors.ErrInvalidField:
		c.String(http.StatusBadRequest, e.Error())
	default:
		logger.Error("Failed to handle intent",
			zap.String("session_id", shop.ID.String()),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.String(http.StatusInternalServerError, "internal error")
	}
}
