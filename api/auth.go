package api

import (
	"net/http"

	"github.com/Domenick1991/airtech/internal/service/auth"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service auth.AuthUseCase
}

type signUpRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"max=30"`
	LastName  string `json:"last_name" binding:"max=30"`
	Password  string `json:"password" binding:"required,max=72"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword        string `json:"old_password" binding:"required,max=256"`
	NewPassword        string `json:"new_password" binding:"required,max=72"`
	ConfirmNewPassword string `json:"confirm_new_password" binding:"required,max=72"`
}

type profileRequest struct {
	Email       *string `json:"email" binding:"omitempty,email"`
	FirstName   *string `json:"first_name" binding:"omitempty,min=1,max=30"`
	LastName    *string `json:"last_name" binding:"omitempty,min=1,max=30"`
	IsActive    *bool   `json:"is_active"`
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
}

type sessionResponse struct {
	Token string        `json:"token"`
	User  *userResponse `json:"user,omitempty"`
}

func NewAuthHandler(service auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register mounts the auth routes. Sign-up and sign-in stay public; the rest
// run behind authenticated.
func (h *AuthHandler) Register(router *gin.RouterGroup, authenticated gin.HandlerFunc) {
	router.POST("/signup", h.signUp)
	router.POST("/sign-in", h.signIn)
	router.POST("/change-password", authenticated, h.changePassword)
	router.GET("/users", authenticated, h.listUsers)
	router.GET("/users/:id", authenticated, h.getUser)
	router.PUT("/users/:id", authenticated, h.updateUser)
}

func (h *AuthHandler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	_, err := h.service.SignUp(c.Request.Context(), auth.SignUpInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, messageResponse{Message: auth.MsgRegistered})
}

func (h *AuthHandler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	session, err := h.service.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	user := newUserResponse(session.User)
	c.JSON(http.StatusOK, sessionResponse{Token: session.Token, User: &user})
}

func (h *AuthHandler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	key, err := h.service.ChangePassword(c.Request.Context(), currentUser(c), auth.ChangePasswordInput{
		OldPassword:        req.OldPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Token: key})
}

func (h *AuthHandler) listUsers(c *gin.Context) {
	page, err := pageFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	users, err := h.service.ListUsers(c.Request.Context(), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(users, newUserResponse))
}

func (h *AuthHandler) getUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *AuthHandler) updateUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), currentUser(c), id, auth.ProfilePatch{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		IsActive:    req.IsActive,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}
