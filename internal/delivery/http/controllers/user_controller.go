package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"churchadmin/internal/delivery/http/helpers"
	"churchadmin/internal/delivery/http/middleware"
	"churchadmin/internal/domain"
)

const dateLayout = "2006-01-02"

// EditProfileRequest is the request body for POST /users/profile/edit. Omitted fields are unchanged.
type EditProfileRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,min=1"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender      *string `json:"gender"`
}

func (req *EditProfileRequest) toUpdate() *domain.ProfileUpdate {
	p := &domain.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		City:        req.City,
		Gender:      req.Gender,
	}
	if req.DateOfBirth != nil {
		// format already checked by the datetime rule
		if dob, err := time.Parse(dateLayout, *req.DateOfBirth); err == nil {
			p.DateOfBirth = &dob
		}
	}
	return p
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type SetStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// ListUsers godoc
// @Summary List users with their role names
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.Result
// @Router /users/getAll [get]
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.Service.ListUsers(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "USERS_FETCHED", "Users fetched successfully", users)
}

// GetUser godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} helpers.Result
// @Failure 404 {object} helpers.Result "USER_NOT_FOUND"
// @Router /users/getDetail/{id} [get]
func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "id", domain.ErrUserNotFound)
	if !ok {
		return
	}
	user, err := c.Service.GetUser(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "USER_FETCHED", "User fetched successfully", user)
}

// EditProfile godoc
// @Summary Edit the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EditProfileRequest true "Fields to change"
// @Success 200 {object} helpers.Result
// @Failure 400 {object} helpers.Result "NO_FIELDS"
// @Router /users/profile/edit [post]
func (c *UserController) EditProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req EditProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.UpdateProfile(r.Context(), userID, req.toUpdate())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "PROFILE_UPDATED", "Profile updated successfully", user)
}

// SetRole godoc
// @Summary Change a user's role
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body SetRoleRequest true "Role name"
// @Success 200 {object} helpers.Result
// @Failure 404 {object} helpers.Result "ROLE_NOT_FOUND, USER_NOT_FOUND"
// @Router /users/setRole/{id} [post]
func (c *UserController) SetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "id", domain.ErrUserNotFound)
	if !ok {
		return
	}
	var req SetRoleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.SetRole(r.Context(), id, req.Role); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "ROLE_UPDATED", "Role updated successfully", nil)
}

// SetStatus activates or deactivates a user.
func (c *UserController) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "id", domain.ErrUserNotFound)
	if !ok {
		return
	}
	var req SetStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.SetStatus(r.Context(), id, *req.IsActive); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "STATUS_UPDATED", "Status updated successfully", nil)
}

func (c *UserController) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := c.Service.ListRoles(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "ROLES_FETCHED", "Roles fetched successfully", roles)
}
