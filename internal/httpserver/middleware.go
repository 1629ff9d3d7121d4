package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vitrine/internal/domain"
	"vitrine/internal/logger"
	"vitrine/internal/metrics"
	"vitrine/internal/service/session"
)

const requestIDHeader = "X-Request-Id"

type ctxKey string

const (
	storeCtxKey   ctxKey = "store"
	sessionCtxKey ctxKey = "session"
	tokenCtxKey   ctxKey = "token"
)

var defaultCORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

func requestIDMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)
		c.Request = c.Request.WithContext(log.WithRequestID(c.Request.Context(), reqID))
		c.Next()
	}
}

func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := log.WithFields(c.Request.Context(), map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		log.Debug(ctx, "request.start")

		c.Next()

		ctx = log.WithFields(ctx, map[string]any{
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		log.Info(ctx, "request.complete")
	}
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, c.Writer.Status())
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Content-Type", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           5 * time.Minute,
	})
}

// storeMiddleware resolves :storeSlug into the tenant store.
func storeMiddleware(catalog CatalogService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := strings.TrimSpace(c.Param("storeSlug"))
		if slug == "" {
			writeError(c, http.StatusBadRequest, "invalid_store", "store slug is required")
			return
		}
		store, err := catalog.Store(c.Request.Context(), slug)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(c, http.StatusNotFound, "store_not_found", "store not found")
				return
			}
			log.Error(log.WithStoreSlug(c.Request.Context(), slug), "store.resolve_failed", err)
			writeError(c, http.StatusBadGateway, "upstream_error", "could not load store")
			return
		}
		ctx := log.WithStoreSlug(c.Request.Context(), store.Slug)
		ctx = context.WithValue(ctx, storeCtxKey, store)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// sessionMiddleware attaches the shopper session named by the session cookie,
// issuing a new one when the cookie is missing, expired or from another store.
// Every response renews the cookie for another session TTL.
func sessionMiddleware(reg *session.Registry, opts Options, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := storeFrom(c)
		id, _ := c.Cookie(opts.SessionCookie)
		sess, _ := reg.Resolve(store.Slug, id)
		// the cookie slides with the session so an active shopper keeps it
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.SessionCookie, sess.ID, int(reg.TTL().Seconds()), "/s/"+store.Slug, "", opts.CookieSecure, true)
		ctx := log.WithSessionID(c.Request.Context(), sess.ID)
		ctx = context.WithValue(ctx, sessionCtxKey, sess)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// authMiddleware requires a live merchant token in the auth cookie and makes
// it available to the admin proxy handlers.
func authMiddleware(auth AuthService, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(opts.AuthCookie)
		if err != nil || token == "" {
			writeError(c, http.StatusUnauthorized, "unauthorized", "sign in required")
			return
		}
		if err := auth.Check(token); err != nil {
			clearAuthCookie(c, opts)
			writeError(c, http.StatusUnauthorized, "unauthorized", "sign in again")
			return
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), tokenCtxKey, token))
		c.Next()
	}
}

// moduleGate rejects routes of a module the store has not enabled.
func moduleGate(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !storeFrom(c).ModuleEnabled(name) {
			writeError(c, http.StatusForbidden, "module_disabled", name+" is not enabled for this store")
			return
		}
		c.Next()
	}
}

func storeFrom(c *gin.Context) domain.Store {
	store, _ := c.Request.Context().Value(storeCtxKey).(domain.Store)
	return store
}

func sessionFrom(c *gin.Context) *session.Session {
	sess, _ := c.Request.Context().Value(sessionCtxKey).(*session.Session)
	return sess
}

func tokenFrom(c *gin.Context) string {
	token, _ := c.Request.Context().Value(tokenCtxKey).(string)
	return token
}

func clearAuthCookie(c *gin.Context, opts Options) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(opts.AuthCookie, "", -1, "/admin", "", opts.CookieSecure, true)
}
