package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uatas-cs/complaint-service/internal/middleware"
	"github.com/uatas-cs/complaint-service/internal/model"
	"github.com/uatas-cs/complaint-service/internal/service"
)

type AuthHandler struct {
	users *service.UserService
}

func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

// Register is the public self-registration endpoint; accounts always start
// as staff.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Phone, req.Password, model.RoleStaff)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"` // username or email
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	token, user, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

type addUserRequest struct {
	registerRequest
	Role string `json:"role"`
}

// AddUser lets an admin create accounts with any role.
func (h *AuthHandler) AddUser(c *gin.Context) {
	var req addUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Phone, req.Password, req.Role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), c.Query("role"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *AuthHandler) QCUsers(c *gin.Context) {
	users, err := h.users.QCUsers(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
