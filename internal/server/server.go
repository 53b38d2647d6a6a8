// Package server exposes the JSON API the browser editor talks to. Handlers
// are thin: they decode the request, hand it to the core workflow with a
// per-request gateway, and return the structured outcome. The bearer token
// arrives on every request and is never stored server-side.
package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pokrova/contentctl/internal/cache"
	"github.com/pokrova/contentctl/internal/config"
	"github.com/pokrova/contentctl/internal/github"
	"github.com/pokrova/contentctl/internal/translate"
)

// GatewayFactory builds a gateway bound to one request's credential.
type GatewayFactory func(token string) github.Gateway

// Server wires the admin API routes.
type Server struct {
	cfg        *config.Config
	translator *translate.Client
	previews   *cache.Store // may be nil
	newGateway GatewayFactory
}

// New creates a Server. previews may be nil to disable caching.
func New(cfg *config.Config, translator *translate.Client, previews *cache.Store, factory GatewayFactory) *Server {
	if factory == nil {
		factory = func(token string) github.Gateway {
			return github.NewHTTPClient(cfg.APIBaseURL, cfg.Owner, cfg.Repo, token)
		}
	}
	return &Server{cfg: cfg, translator: translator, previews: previews, newGateway: factory}
}

// Router builds the gin engine with all admin routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api", s.requireToken)
	{
		api.GET("/:collection", s.handleList)
		api.POST("/:collection", s.handleCreate)
		api.GET("/:collection/:uid", s.handleGet)
		api.PUT("/:collection/:uid", s.handleSave)
		api.DELETE("/:collection/:uid", s.handleDelete)
		api.POST("/:collection/:uid/translate", s.handleTranslate)
	}

	return r
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	return s.Router().Run(s.cfg.Listen())
}

const gatewayKey = "gateway"

// requireToken extracts the bearer credential and binds a gateway to the
// request context. The server never persists the token.
func (s *Server) requireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	c.Set(gatewayKey, s.newGateway(token))
	c.Next()
}

func (s *Server) gateway(c *gin.Context) github.Gateway {
	return c.MustGet(gatewayKey).(github.Gateway)
}
