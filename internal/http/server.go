package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Server wraps the gin engine in an http.Server so the process can drain
// in-flight requests on shutdown.
type Server struct {
	Engine *gin.Engine
	srv    *http.Server
}

func NewServer(cfg RouterConfig, address string) *Server {
	engine := NewRouter(cfg)
	return &Server{
		Engine: engine,
		srv:    &http.Server{Addr: address, Handler: engine},
	}
}

func (s *Server) Run() error {
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
