package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abelbrown/screener/internal/logging"
	"github.com/abelbrown/screener/internal/otel"
)

const (
	countKey     = "count"
	errDetailKey = "error_detail"
)

// requestLog logs each request on completion and mirrors it to the event
// trail. 4xx log at warn, 5xx at error.
func requestLog(events *otel.Logger, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}

	return func(c *gin.Context) {
		if skipped[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		dur := time.Since(start)

		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"dur", dur,
			"bytes", c.Writer.Size(),
		}
		if n, ok := c.Get(countKey); ok {
			kv = append(kv, "count", n)
		}
		if d, ok := c.Get(errDetailKey); ok {
			kv = append(kv, "detail", d)
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			logging.Error("request failed", kv...)
		case status >= 400:
			logging.Warn("request rejected", kv...)
		default:
			logging.Info("request", kv...)
		}

		ev := otel.Event{
			Level:  otel.LevelInfo,
			Kind:   otel.KindRequest,
			Comp:   "server",
			Dur:    dur,
			Status: status,
			Msg:    c.Request.Method + " " + c.Request.URL.Path,
		}
		if n, ok := c.Get(countKey); ok {
			ev.Count, _ = n.(int)
		}
		if status >= 400 {
			ev.Level = otel.LevelWarn
		}
		events.Emit(ev)
	}
}

// recovery turns a handler panic into a plain-text 500.
func recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logging.Error("panic recovered", "path", c.Request.URL.Path, "panic", fmt.Sprint(r))
				c.AbortWithStatus(http.StatusInternalServerError)
				c.Writer.WriteString("internal server error")
			}
		}()
		c.Next()
	}
}
