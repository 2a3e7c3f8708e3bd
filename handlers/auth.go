package handlers

import (
	"context"
	"errors"
	"net/http"
	"spotfinder/auth"
	"spotfinder/db"
	"spotfinder/middleware"
	"spotfinder/models"
	"spotfinder/services"
	"spotfinder/store"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

type Rewarder interface {
	Award(ctx context.Context, userID int64, delta int) (models.User, error)
	Welcome(u models.User)
}

type TokenIssuer interface {
	Issue(user models.User) (string, error)
}

type AuthHandler struct {
	users   UserStore
	rewards Rewarder
	tokens  TokenIssuer
	log     *zap.Logger
}

func NewAuthHandler(users UserStore, rewards Rewarder, tokens TokenIssuer, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, rewards: rewards, tokens: tokens, log: log}
}

// Routes mounts the identity API. limit guards the credential endpoints.
func (h *AuthHandler) Routes(r gin.IRouter, requireAuth, serviceKey, limit gin.HandlerFunc) {
	g := r.Group("/auth")
	g.POST("/register", limit, h.Register)
	g.POST("/login", limit, h.Login)
	g.GET("/me", requireAuth, h.Me)
	g.PUT("/add-points", serviceKey, h.AddPoints)
	g.GET("/users/:username", h.PublicProfile)
}

type RegisterInput struct {
	Username string `json:"username" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		h.log.Error("hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user, err := h.users.Create(c.Request.Context(), input.Username, input.Email, hash)
	if errors.Is(err, db.ErrDuplicateKey) {
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
		return
	}
	if err != nil {
		h.log.Error("register user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	h.rewards.Welcome(user)

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password required"})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.log.Error("login lookup", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.log.Error("issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    services.ProfileOf(user),
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	id, _ := middleware.CurrentUser(c)

	user, err := h.users.GetByID(c.Request.Context(), id.UserID)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.log.Error("me lookup", zap.Int64("user_id", id.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "You are authenticated",
		"user":    services.ProfileOf(user),
	})
}

type AddPointsInput struct {
	UserID int64 `json:"userId" binding:"required,gt=0"`
	Amount *int  `json:"amount" binding:"required"`
}

// AddPoints is the internal award endpoint called by other services.
func (h *AuthHandler) AddPoints(c *gin.Context) {
	var input AddPointsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and amount are required"})
		return
	}

	user, err := h.rewards.Award(c.Request.Context(), input.UserID, *input.Amount)
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	case errors.Is(err, store.ErrNegativeBalance):
		c.JSON(http.StatusConflict, gin.H{"error": "Points cannot go below zero"})
		return
	case err != nil:
		h.log.Error("add points", zap.Int64("user_id", input.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update points"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"points":   user.Points,
		"status":   services.StatusOf(user.Points),
	})
}

func (h *AuthHandler) PublicProfile(c *gin.Context) {
	user, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.log.Error("public profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, models.PublicProfile{
		Username: user.Username,
		Status:   services.StatusOf(user.Points),
	})
}
