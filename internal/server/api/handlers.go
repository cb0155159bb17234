package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jesseruder/electric-lullaby/internal/crypto"
	"github.com/jesseruder/electric-lullaby/internal/models"
	"github.com/jesseruder/electric-lullaby/internal/server/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, models.ErrorResponse{Error: msg})
}

func (s *Server) login(c *gin.Context) {
	var req models.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := s.store.GetUserByUsername(c, req.Username)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			s.logger.Printf("login %s: %v", req.Username, err)
		}
		fail(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		fail(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	s.issueToken(c, user)
}

func (s *Server) signup(c *gin.Context) {
	var req models.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.logger.Printf("signup %s: %v", req.Username, err)
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := s.store.CreateUser(c, req.Username, hash)
	if errors.Is(err, database.ErrUsernameTaken) {
		fail(c, http.StatusConflict, "Username already taken")
		return
	}
	if err != nil {
		s.logger.Printf("signup %s: %v", req.Username, err)
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Printf("New user registered: %s", user.Username)
	s.issueToken(c, user)
}

func (s *Server) issueToken(c *gin.Context, user *models.User) {
	token, err := crypto.GenerateToken()
	if err == nil {
		err = s.store.CreateSession(c, token, user.ID)
	}
	if err != nil {
		s.logger.Printf("session for %s: %v", user.Username, err)
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, models.TokenResponse{Token: token})
}

// authorize resolves a session token, writing a 401 when it is unknown.
func (s *Server) authorize(c *gin.Context, token string) (*models.User, bool) {
	if token == "" {
		fail(c, http.StatusUnauthorized, "Missing token")
		return nil, false
	}
	user, err := s.store.UserForToken(c, token)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			s.logger.Printf("session %s: %v", crypto.HashToken(token)[:12], err)
		}
		fail(c, http.StatusUnauthorized, "Invalid token")
		return nil, false
	}
	return user, true
}

func (s *Server) follow(c *gin.Context) {
	var req models.FollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}
	user, ok := s.authorize(c, req.Token)
	if !ok {
		return
	}

	target, err := s.store.GetUserByUsername(c, strings.TrimSpace(req.UserToFollow))
	if err != nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if target.ID == user.ID {
		fail(c, http.StatusBadRequest, "You can't follow yourself")
		return
	}
	if err := s.store.Follow(c, user.ID, target.ID); err != nil {
		s.logger.Printf("follow %s -> %s: %v", user.Username, target.Username, err)
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Printf("%s now follows %s", user.Username, target.Username)
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

func (s *Server) pushToken(c *gin.Context) {
	var req models.PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}
	user, ok := s.authorize(c, req.Token)
	if !ok {
		return
	}
	if req.PushToken == "" {
		fail(c, http.StatusBadRequest, "Missing pushToken")
		return
	}

	if err := s.store.SetPushToken(c, req.PushToken, user.ID); err != nil {
		s.logger.Printf("push token for %s: %v", user.Username, err)
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

func (s *Server) imageURLs(c *gin.Context) {
	var req models.ImageURLsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}
	user, ok := s.authorize(c, req.Token)
	if !ok {
		return
	}

	urls, err := s.store.TakePendingImages(c, user.ID)
	if err != nil {
		s.logger.Printf("images for %s: %v", user.Username, err)
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, models.ImageURLsResponse{URLs: urls})
}

func (s *Server) sendImage(c *gin.Context) {
	var req models.SendImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}
	user, ok := s.authorize(c, req.Token)
	if !ok {
		return
	}
	if req.URL == "" {
		fail(c, http.StatusBadRequest, "Missing url")
		return
	}

	recipients, err := s.store.EnqueueForFollowers(c, user.ID, req.URL)
	if err != nil {
		s.logger.Printf("send image from %s: %v", user.Username, err)
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	for _, r := range recipients {
		s.hub.Notify(r, user.Username)
	}

	s.logger.Printf("%s sent an image to %d followers", user.Username, len(recipients))
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

func (s *Server) upload(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		fail(c, http.StatusBadRequest, "Missing photo")
		return
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		fail(c, http.StatusBadRequest, "Only images can be uploaded")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(s.config.UploadDir, name)); err != nil {
		s.logger.Printf("save upload: %v", err)
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{Location: s.config.PublicURL + "/uploads/" + name})
}
