package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillpath/backend/internal/http/response"
	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/services"
	"github.com/skillpath/backend/internal/types"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "invalid registration body")
		return
	}
	user := &types.User{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := h.authService.RegisterUser(c.Request.Context(), user); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "invalid login body")
		return
	}
	access, refresh, err := h.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, tokenPairResponse{AccessToken: access, RefreshToken: refresh})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "invalid refresh body")
		return
	}
	access, refresh, err := h.authService.RefreshUser(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, tokenPairResponse{AccessToken: access, RefreshToken: refresh})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.LogoutUser(c.Request.Context()); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"logged_out": true})
}
