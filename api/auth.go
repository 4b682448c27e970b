package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airtickets/internal/apierror"
	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/service/account"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service account.AccountUseCase
}

type registerRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type identityResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewAuthHandler(service account.AccountUseCase) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register mounts the public credential routes.
func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)
}

// RegisterProfile mounts routes that need a verified identity.
func (h *AuthHandler) RegisterProfile(router *gin.RouterGroup) {
	router.GET("/me", h.me)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	identity, err := h.service.Register(c.Request.Context(), account.RegisterInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		apierror.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, toIdentityResponse(identity))
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.service.Login(c.Request.Context(), account.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		apierror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token.Value, ExpiresAt: token.ExpiresAt})
}

func (h *AuthHandler) me(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	identity, err := h.service.Me(c.Request.Context(), caller.ID)
	if err != nil {
		apierror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, toIdentityResponse(identity))
}

func toIdentityResponse(identity *domain.Identity) identityResponse {
	return identityResponse{
		ID:          identity.ID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		CreatedAt:   identity.CreatedAt,
	}
}
