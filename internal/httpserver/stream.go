package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"vitrine/internal/poll"
)

// streamPoll polls fetch every interval and forwards each result to the
// client as an SSE event until the client goes away, the server shuts down
// or done reports true for a delivered value.
func streamPoll[T any](h *handlers, c *gin.Context, name, event string, interval time.Duration, fetch func(context.Context) (T, error), done func(T) bool) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	stop := context.AfterFunc(h.streams, cancel)
	defer stop()

	logCtx := h.log.WithField(ctx, "stream", name)
	p := &poll.Poller[T]{
		Name:     name,
		Interval: interval,
		Fetch:    fetch,
		OnError: func(err error) {
			h.log.Warn(h.log.WithField(logCtx, "error", err.Error()), "stream.fetch_failed")
		},
		Observer: h.Metrics,
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	h.log.Debug(logCtx, "stream.open")
	for v := range p.Run(ctx) {
		c.SSEvent(event, v)
		c.Writer.Flush()
		if done != nil && done(v) {
			break
		}
	}
	h.log.Debug(logCtx, "stream.closed")
}
