package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quickDeliver/internal/realtime"
)

const keepAliveInterval = 15 * time.Second

// OrderEvents streams order snapshots as Server-Sent Events. The first event
// is the current snapshot; later events carry strictly newer versions.
func (h *Handler) OrderEvents(c *gin.Context) {
	ctx := c.Request.Context()
	sub, snap, err := h.Svc.WatchOrder(ctx, principal(c), c.Param("id"), realtime.DefaultBuffer)
	if err != nil {
		writeError(c, err)
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("order", snap)
	c.Writer.Flush()

	last := snap.Version
	tick := time.NewTicker(keepAliveInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if _, err := c.Writer.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			c.Writer.Flush()
		case o, ok := <-sub.C:
			if !ok {
				return
			}
			if o.Version <= last {
				continue
			}
			last = o.Version
			c.SSEvent("order", o)
			c.Writer.Flush()
		}
	}
}
