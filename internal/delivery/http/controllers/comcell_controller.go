package controllers

import (
	"log/slog"
	"net/http"

	"churchadmin/internal/delivery/http/helpers"
	"churchadmin/internal/domain"
)

// CreateGroupRequest is the request body for POST /comcell/createComcellGroup.
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category" validate:"required,oneof=adult youth"`
	Description *string `json:"description"`
	LeaderID    string  `json:"leader_id" validate:"required,uuid"`
	CoLeaderID  *string `json:"co_leader_id" validate:"omitempty,uuid"`
}

// UpdateGroupRequest is the request body for POST /comcell/updateComcellGroup/{id}.
// An empty co_leader_id removes the co-leader.
type UpdateGroupRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category" validate:"omitempty,oneof=adult youth"`
	Description *string `json:"description"`
	LeaderID    *string `json:"leader_id" validate:"omitempty,uuid"`
	CoLeaderID  *string `json:"co_leader_id" validate:"omitempty,uuid"`
}

// AddGroupMembersRequest is the request body for POST /comcell/addMemberToComcellGroup.
type AddGroupMembersRequest struct {
	GroupID string   `json:"group_id" validate:"required"`
	UserIDs []string `json:"user_ids" validate:"required,min=1"`
}

// SetGroupMemberRequest is the request body for POST /comcell/setMemberDetail.
type SetGroupMemberRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required,uuid"`
	Role    string `json:"role" validate:"required"`
}

// RemoveGroupMemberRequest is the request body for POST /comcell/removeMemberFromComcellGroup.
type RemoveGroupMemberRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required,uuid"`
}

type ComcellController struct {
	Logger  *slog.Logger
	Service domain.GroupService
}

func NewComcellController(logger *slog.Logger, svc domain.GroupService) *ComcellController {
	return &ComcellController{Logger: logger, Service: svc}
}

// CreateGroup godoc
// @Summary Create a comcell group
// @Tags comcell
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group body CreateGroupRequest true "Group"
// @Success 201 {object} helpers.Result
// @Failure 400 {object} helpers.Result "DUPLICATE_LEADER"
// @Failure 404 {object} helpers.Result "USER_NOT_FOUND"
// @Failure 409 {object} helpers.Result "USER_ALREADY_ASSIGNED"
// @Router /comcell/createComcellGroup [post]
func (c *ComcellController) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	group, err := c.Service.CreateGroup(r.Context(), &domain.ComcellGroup{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		LeaderID:    req.LeaderID,
		CoLeaderID:  req.CoLeaderID,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, "GROUP_CREATED", "Comcell group created successfully", group)
}

// ListGroups godoc
// @Summary List comcell groups
// @Tags comcell
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.Result
// @Router /comcell/getAll [get]
func (c *ComcellController) ListGroups(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, "")
}

// ListAdultGroups lists adult groups.
func (c *ComcellController) ListAdultGroups(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, domain.CategoryAdult)
}

// ListYouthGroups lists youth groups.
func (c *ComcellController) ListYouthGroups(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, domain.CategoryYouth)
}

func (c *ComcellController) list(w http.ResponseWriter, r *http.Request, category string) {
	groups, err := c.Service.ListGroups(r.Context(), category)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "GROUPS_FETCHED", "Comcell groups fetched successfully", groups)
}

// GetGroupDetail godoc
// @Summary Get a comcell group with its members
// @Tags comcell
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 200 {object} helpers.Result
// @Failure 404 {object} helpers.Result "GROUP_NOT_FOUND"
// @Router /comcell/getComcellGroupDetail/{id} [get]
func (c *ComcellController) GetGroupDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	group, err := c.Service.GetGroup(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "GROUP_FETCHED", "Comcell group fetched successfully", group)
}

// GetGroupMembers returns only the member list of a group.
func (c *ComcellController) GetGroupMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	group, err := c.Service.GetGroup(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	members := group.Members
	if members == nil {
		members = []*domain.GroupMember{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "MEMBERS_FETCHED", "Group members fetched successfully", members)
}

// GetGroupByUser godoc
// @Summary Get the comcell group a user belongs to
// @Tags comcell
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} helpers.Result
// @Failure 404 {object} helpers.Result "USER_NOT_IN_GROUP"
// @Router /comcell/getComcellFromUserId/{userId} [get]
func (c *ComcellController) GetGroupByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := helpers.PathUUID(w, r, "userId", domain.ErrUserNotFound)
	if !ok {
		return
	}
	group, err := c.Service.GetGroupByUser(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "GROUP_FETCHED", "Comcell group fetched successfully", group)
}

// UpdateGroup godoc
// @Summary Update a comcell group
// @Tags comcell
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Param group body UpdateGroupRequest true "Fields to change"
// @Success 200 {object} helpers.Result
// @Router /comcell/updateComcellGroup/{id} [post]
func (c *ComcellController) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateGroupRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	group, err := c.Service.UpdateGroup(r.Context(), id, &domain.GroupUpdate{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		LeaderID:    req.LeaderID,
		CoLeaderID:  req.CoLeaderID,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "GROUP_UPDATED", "Comcell group updated successfully", group)
}

// DeleteGroup godoc
// @Summary Delete a comcell group
// @Tags comcell
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 200 {object} helpers.Result
// @Failure 409 {object} helpers.Result "GROUP_HAS_EVENTS"
// @Router /comcell/deleteComcellGroup/{id} [delete]
func (c *ComcellController) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.DeleteGroup(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "GROUP_DELETED", "Comcell group deleted successfully", nil)
}

// AddMembers godoc
// @Summary Add users to a comcell group
// @Tags comcell
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddGroupMembersRequest true "Members"
// @Success 200 {object} helpers.Result
// @Failure 409 {object} helpers.Result "USER_ALREADY_ASSIGNED"
// @Router /comcell/addMemberToComcellGroup [post]
func (c *ComcellController) AddMembers(w http.ResponseWriter, r *http.Request) {
	var req AddGroupMembersRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.AddMembers(r.Context(), req.GroupID, req.UserIDs); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "MEMBERS_ADDED", "Members added successfully", nil)
}

// SetMemberRole godoc
// @Summary Change a member's role in a comcell group
// @Tags comcell
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SetGroupMemberRequest true "Role"
// @Success 200 {object} helpers.Result
// @Failure 400 {object} helpers.Result "INVALID_ROLE"
// @Router /comcell/setMemberDetail [post]
func (c *ComcellController) SetMemberRole(w http.ResponseWriter, r *http.Request) {
	var req SetGroupMemberRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.SetMemberRole(r.Context(), req.GroupID, req.UserID, req.Role); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "MEMBER_UPDATED", "Member updated successfully", nil)
}

// RemoveMember godoc
// @Summary Remove a member from a comcell group
// @Tags comcell
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RemoveGroupMemberRequest true "Member"
// @Success 200 {object} helpers.Result
// @Failure 409 {object} helpers.Result "CANNOT_REMOVE"
// @Router /comcell/removeMemberFromComcellGroup [post]
func (c *ComcellController) RemoveMember(w http.ResponseWriter, r *http.Request) {
	var req RemoveGroupMemberRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.RemoveMember(r.Context(), req.GroupID, req.UserID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "MEMBER_REMOVED", "Member removed successfully", nil)
}
