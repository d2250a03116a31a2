// web/server.go
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rustyeddy/termwatch/supervisor"
)

// Server is the read-only ops surface: liveness, supervisor status, and
// Prometheus metrics. It never touches the activity stores.
type Server struct {
	status func() supervisor.Status
	router *gin.Engine
}

func New(status func() supervisor.Status) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{status: status, router: r}
	r.GET("/healthz", s.healthz)
	r.GET("/status", s.getStatus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.status())
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until the listener fails. The caller treats a return as
// fatal; the monitor itself keeps running only while this does.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
