// Package api is the HTTP backend the client talks to: accounts, follows,
// push registration, image fan-out and photo uploads.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jesseruder/electric-lullaby/internal/config"
	"github.com/jesseruder/electric-lullaby/internal/models"
	"github.com/jesseruder/electric-lullaby/internal/server/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Store is the persistence the handlers need. *database.DB implements it.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateSession(ctx context.Context, token, userID string) error
	UserForToken(ctx context.Context, token string) (*models.User, error)
	Follow(ctx context.Context, followerID, followedID string) error
	SetPushToken(ctx context.Context, pushToken, userID string) error
	UserForPushToken(ctx context.Context, pushToken string) (*models.User, error)
	EnqueueForFollowers(ctx context.Context, senderID, url string) ([]string, error)
	TakePendingImages(ctx context.Context, userID string) ([]string, error)
}

// Server represents the HTTP server
type Server struct {
	router    *gin.Engine
	srv       *http.Server
	store     Store
	hub       *websocket.Hub
	config    *config.ServerConfig
	logger    *log.Logger
	startTime time.Time
}

// NewServer creates a new server instance with all routes registered.
func NewServer(cfg *config.ServerConfig, store Store, hub *websocket.Hub, logger *log.Logger) *Server {
	gin.DefaultWriter = logger.Writer()
	gin.DefaultErrorWriter = logger.Writer()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cfg.GetCorsConfig()))
	r.MaxMultipartMemory = 8 << 20

	s := &Server{
		router:    r,
		store:     store,
		hub:       hub,
		config:    cfg,
		logger:    logger,
		startTime: time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.health)
	s.router.Static("/uploads", s.config.UploadDir)
	s.router.GET("/notifications", s.notifications)

	s.router.POST("/login", s.login)
	s.router.POST("/signup", s.signup)
	s.router.POST("/follow", s.follow)
	s.router.POST("/pushToken", s.pushToken)
	s.router.POST("/imageUrls", s.imageURLs)
	s.router.POST("/sendImage", s.sendImage)
	s.router.POST("/upload", s.upload)
}

// Router returns the gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Uptime is the time since the server was created.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// Start listens in the background. Listen errors are reported on the
// returned channel.
func (s *Server) Start() <-chan error {
	errs := make(chan error, 1)
	s.srv = &http.Server{
		Addr:    ":" + s.config.Port,
		Handler: s.router,
	}

	go func() {
		s.logger.Printf("electric-lullaby backend running on :%s", s.config.Port)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("Server error: %v", err)
			errs <- err
		}
		close(errs)
	}()
	return errs
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	s.logger.Println("Shutting down server...")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %v", err)
	}
	s.logger.Println("Server exited")
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"uptime":      s.Uptime().Truncate(time.Second).String(),
		"connections": s.hub.Connections(),
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) notifications(c *gin.Context) {
	websocket.ServeWs(s.hub, s.lookupDevice, c.Writer, c.Request)
}

func (s *Server) lookupDevice(ctx context.Context, pushToken string) (string, error) {
	user, err := s.store.UserForPushToken(ctx, pushToken)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}
