package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rewear-api/internal/core/auth"
	"rewear-api/internal/domain"
	"rewear-api/internal/notify"
	"rewear-api/internal/repo"
	resp "rewear-api/internal/transport/http/response"
	"rewear-api/pkg/utils"
)

type AuthHandler struct {
	db             *gorm.DB
	jwter          *auth.JWTer
	log            *zap.Logger
	sink           notify.Sink
	startingPoints int
}

func NewAuthHandler(db *gorm.DB, jwter *auth.JWTer, log *zap.Logger, sink notify.Sink, startingPoints int) *AuthHandler {
	return &AuthHandler{db: db, jwter: jwter, log: log, sink: sink, startingPoints: startingPoints}
}

func (h *AuthHandler) MountAPI(pub, authed *gin.RouterGroup) {
	pub.POST("/auth/register", h.Register)
	pub.POST("/auth/login", h.Login)
	authed.GET("/auth/profile", h.Profile)
	authed.PUT("/auth/profile", h.UpdateProfile)
}

type registerIn struct {
	FullName string `json:"fullName" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
	City     string `json:"city" binding:"omitempty,max=64"`
	State    string `json:"state" binding:"omitempty,max=64"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in registerIn
	if !bindJSON(c, &in) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	users := repo.NewUserRepo(h.db.WithContext(c))
	existing, err := users.FindByEmail(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error"))
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, resp.Fail("User already exists with this email"))
		return
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: utils.HashPassword(in.Password),
		Phone:        in.Phone,
		City:         in.City,
		State:        in.State,
		Points:       h.startingPoints, // 注册即送
		Role:         domain.RoleUser,
	}
	if err := users.Create(u); err != nil {
		// 并发注册撞唯一索引
		c.JSON(http.StatusBadRequest, resp.Fail("User already exists with this email"))
		return
	}

	token, err := h.jwter.Issue(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.Fail("issue token failed"))
		return
	}

	notify.Dispatch(h.log, h.sink, notify.Welcome(u.Email, u.FullName, u.Points))

	c.JSON(http.StatusCreated, resp.OK("User registered successfully", gin.H{
		"user":  u,
		"token": token,
	}))
}

type loginIn struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in loginIn
	if !bindJSON(c, &in) {
		return
	}

	users := repo.NewUserRepo(h.db.WithContext(c))
	u, err := users.FindByEmail(strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error"))
		return
	}
	if u == nil || !utils.CheckPassword(in.Password, u.PasswordHash) {
		c.JSON(http.StatusBadRequest, resp.Fail("Invalid credentials"))
		return
	}

	token, err := h.jwter.Issue(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.Fail("issue token failed"))
		return
	}

	c.JSON(http.StatusOK, resp.OK("Login successful", gin.H{
		"user":  u,
		"token": token,
	}))
}

func (h *AuthHandler) Profile(c *gin.Context) {
	users := repo.NewUserRepo(h.db.WithContext(c))
	u, err := users.FindByID(userID(c))
	if err != nil || u == nil {
		c.JSON(http.StatusNotFound, resp.Fail("User not found"))
		return
	}
	c.JSON(http.StatusOK, resp.OK("OK", gin.H{"user": u}))
}

type profileIn struct {
	FullName string `json:"fullName" binding:"omitempty,max=64"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
	City     string `json:"city" binding:"omitempty,max=64"`
	State    string `json:"state" binding:"omitempty,max=64"`
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var in profileIn
	if !bindJSON(c, &in) {
		return
	}

	users := repo.NewUserRepo(h.db.WithContext(c))
	u, err := users.FindByID(userID(c))
	if err != nil || u == nil {
		c.JSON(http.StatusNotFound, resp.Fail("User not found"))
		return
	}

	if in.FullName != "" {
		u.FullName = strings.TrimSpace(in.FullName)
	}
	if in.Phone != "" {
		u.Phone = in.Phone
	}
	if in.City != "" {
		u.City = in.City
	}
	if in.State != "" {
		u.State = in.State
	}
	if err := users.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error"))
		return
	}
	c.JSON(http.StatusOK, resp.OK("Profile updated successfully", gin.H{"user": u}))
}
