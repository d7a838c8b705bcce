// Package server is the reference stock service: it serves the stored
// snapshot over HTTP, unfiltered at GET /stocks and filtered at POST /filter,
// as JSON or as an HTML page depending on the Accept header.
package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abelbrown/screener/internal/otel"
	"github.com/abelbrown/screener/internal/query"
	"github.com/abelbrown/screener/internal/stock"
)

// Source provides the snapshot. *store.Store satisfies it.
type Source interface {
	Select(ctx context.Context, q query.Query) ([]stock.Record, error)
	Count(ctx context.Context) (int, error)
}

// Config configures New. Source is required.
type Config struct {
	Source         Source
	AllowedOrigins []string     // CORS; empty disables the CORS middleware
	Events         *otel.Logger // optional
}

// Server wires the routes onto a gin engine.
type Server struct {
	engine *gin.Engine
	src    Source
	events *otel.Logger
	start  time.Time
}

type filterRequest struct {
	Query *string `json:"query"`
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// New builds the service.
func New(cfg Config) (*Server, error) {
	if cfg.Source == nil {
		return nil, errors.New("server: nil Source")
	}
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		engine: gin.New(),
		src:    cfg.Source,
		events: cfg.Events,
		start:  time.Now(),
	}
	s.engine.SetHTMLTemplate(tmpl)

	s.engine.Use(requestLog(s.events, "/health"), recovery())
	if len(cfg.AllowedOrigins) > 0 {
		s.engine.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s.engine.GET("/health", s.health)
	s.engine.GET("/stocks", s.listAll)
	s.engine.POST("/filter", s.filter)
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) health(c *gin.Context) {
	n, err := s.src.Count(c.Request.Context())
	if err != nil {
		c.String(http.StatusServiceUnavailable, "store unavailable: %v", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"stocks":         n,
		"uptime_seconds": int64(time.Since(s.start).Seconds()),
	})
}

func (s *Server) listAll(c *gin.Context) {
	s.respond(c, "", query.Query{})
}

func (s *Server) filter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == nil {
		c.String(http.StatusBadRequest, "invalid request body: expected {\"query\": \"...\"}")
		return
	}

	q, err := query.Parse(*req.Query)
	if err != nil {
		var se *query.SyntaxError
		if errors.As(err, &se) {
			c.Set(errDetailKey, se.Reason)
		}
		c.String(http.StatusBadRequest, "%s", err.Error())
		return
	}
	s.respond(c, *req.Query, q)
}

// respond writes the selection in the negotiated representation.
func (s *Server) respond(c *gin.Context, raw string, q query.Query) {
	records, err := s.src.Select(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "could not read stocks")
		return
	}
	c.Set(countKey, len(records))

	switch c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) {
	case gin.MIMEHTML:
		c.HTML(http.StatusOK, "stocks.html", pageData{
			Query:   raw,
			Headers: headers(),
			Stocks:  records,
		})
	default:
		c.JSON(http.StatusOK, records)
	}
}
