package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/moyoez/filemigrate/api/controllers"
	"github.com/moyoez/filemigrate/api/middlewares"
	"github.com/moyoez/filemigrate/api/models"
	"github.com/moyoez/filemigrate/api/notifyhub"
	"github.com/moyoez/filemigrate/tool"
)

// Server is the local control API used by the UI to submit batches and read status.
type Server struct {
	port   int
	engine *gin.Engine
	server *http.Server
	mu     sync.RWMutex
}

// NewServer creates a new API server instance listening on port.
func NewServer(port int) *Server {
	return &Server{port: port}
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())

	self := engine.Group("/api/self/v1", middlewares.OnlyAllowLocal)
	{
		self.POST("/upload-batch", controllers.UserUploadBatch) // Start a batch from local files and folders
		self.GET("/batch/:id", controllers.UserBatchGet)        // Batch snapshot with per-item outcomes
		self.GET("/batches", controllers.UserBatchList)         // Live batch ids
		self.GET("/status", controllers.UserStatus)             // Latest status report and poll health
		self.GET("/config", controllers.UserConfigGet)          // Effective config after flag overrides
		if hub := models.GetNotifyHub(); hub != nil {
			self.GET("/notify-ws", notifyhub.HandleNotifyWS(hub))
		}
	}
	return engine
}

// Handler returns the routed engine without starting a listener.
func (s *Server) Handler() http.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		s.engine = s.setupRoutes()
	}
	return s.engine
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	handler := s.Handler()

	s.mu.Lock()
	s.server = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: handler,
	}
	srv := s.server
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Starting API server on http://%s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests; in-flight uploads keep running in the background.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
