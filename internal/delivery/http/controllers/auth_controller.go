package controllers

import (
	"log/slog"
	"net/http"

	"churchadmin/internal/delivery/http/helpers"
	"churchadmin/internal/delivery/http/middleware"
	"churchadmin/internal/domain"
)

// RegisterRequest is the request body for POST /auth/register
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      *domain.User `json:"user"`
}

type ResetLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Creates an account with the default member role.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Account"
// @Success 201 {object} helpers.Result "data is the created user"
// @Failure 400 {object} helpers.Result "VALIDATION_ERROR"
// @Failure 409 {object} helpers.Result "EMAIL_ALREADY_EXISTS"
// @Router /auth/register [post]
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.Register(r.Context(), &domain.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, "USER_REGISTERED", "User registered successfully", user)
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} helpers.Result "data is a LoginResponse"
// @Failure 401 {object} helpers.Result "INVALID_CREDENTIALS"
// @Failure 403 {object} helpers.Result "ACCOUNT_INACTIVE"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "LOGIN_SUCCESS", "Login successful", LoginResponse{
		Token:     res.Token,
		TokenType: "Bearer",
		User:      res.User,
	})
}

// Profile godoc
// @Summary Current user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.Result
// @Failure 401 {object} helpers.Result "UNAUTHORIZED"
// @Router /auth/profile [get]
func (c *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Service.Profile(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "PROFILE_FETCHED", "Profile fetched successfully", user)
}

// RequestResetPasswordLink godoc
// @Summary Email a password reset link
// @Description Always reports success so that registered emails cannot be probed.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body ResetLinkRequest true "Email"
// @Success 200 {object} helpers.Result
// @Router /auth/requestResetPasswordLink [post]
func (c *AuthController) RequestResetPasswordLink(w http.ResponseWriter, r *http.Request) {
	var req ResetLinkRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "RESET_LINK_SENT", "If the email is registered, a reset link has been sent", nil)
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body ResetPasswordRequest true "Token and new password"
// @Success 200 {object} helpers.Result
// @Failure 401 {object} helpers.Result "INVALID_TOKEN"
// @Router /auth/resetPassword [post]
func (c *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "PASSWORD_RESET", "Password has been reset", nil)
}
