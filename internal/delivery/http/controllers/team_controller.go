package controllers

import (
	"log/slog"
	"net/http"

	"churchadmin/internal/delivery/http/helpers"
	"churchadmin/internal/domain"
)

type CreateTeamRequest struct {
	Name string `json:"name" validate:"required"`
}

type TeamRequest struct {
	TeamID string `json:"team_id" validate:"required"`
}

type AddTeamMembersRequest struct {
	TeamID  string   `json:"team_id" validate:"required"`
	UserIDs []string `json:"user_ids" validate:"required,min=1"`
}

// SetTeamMemberRequest updates a team member. A present position_ids replaces all positions.
type SetTeamMemberRequest struct {
	TeamID      string    `json:"team_id" validate:"required"`
	UserID      string    `json:"user_id" validate:"required,uuid"`
	Role        *string   `json:"role"`
	IsActive    *bool     `json:"is_active"`
	Note        *string   `json:"note"`
	PositionIDs *[]string `json:"position_ids"`
}

type RemoveTeamMemberRequest struct {
	TeamID string `json:"team_id" validate:"required"`
	UserID string `json:"user_id" validate:"required,uuid"`
}

type ListPositionsRequest struct {
	TeamType string `json:"team_type" validate:"required"`
}

type CreatePositionRequest struct {
	Label  string `json:"label" validate:"required"`
	TeamID string `json:"team_id" validate:"required"`
}

// AddedMembers reports how many members were inserted.
type AddedMembers struct {
	Added int64 `json:"added"`
}

type TeamController struct {
	Logger  *slog.Logger
	Service domain.TeamService
}

func NewTeamController(logger *slog.Logger, svc domain.TeamService) *TeamController {
	return &TeamController{Logger: logger, Service: svc}
}

// ListMainTeams godoc
// @Summary List the main (protected) ministry teams
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.Result
// @Router /teams/getAllMain [get]
func (c *TeamController) ListMainTeams(w http.ResponseWriter, r *http.Request) {
	c.listTeams(w, r, true)
}

// ListOtherTeams godoc
// @Summary List the other teams
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.Result
// @Router /teams/getAllOther [get]
func (c *TeamController) ListOtherTeams(w http.ResponseWriter, r *http.Request) {
	c.listTeams(w, r, false)
}

func (c *TeamController) listTeams(w http.ResponseWriter, r *http.Request, protected bool) {
	teams, err := c.Service.ListTeams(r.Context(), protected)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "TEAMS_FETCHED", "Teams fetched successfully", teams)
}

// CreateTeam godoc
// @Summary Create a team
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTeamRequest true "Team"
// @Success 201 {object} helpers.Result
// @Failure 409 {object} helpers.Result "TEAM_EXISTS"
// @Router /teams/create [post]
func (c *TeamController) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	team, err := c.Service.CreateTeam(r.Context(), req.Name)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, "TEAM_CREATED", "Team created successfully", team)
}

// DeleteTeam godoc
// @Summary Delete a team
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Team ID"
// @Success 200 {object} helpers.Result
// @Failure 403 {object} helpers.Result "TEAM_PROTECTED"
// @Router /teams/delete/{id} [delete]
func (c *TeamController) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.DeleteTeam(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "TEAM_DELETED", "Team deleted successfully", nil)
}

// GetMembers godoc
// @Summary List members of a team with their positions
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TeamRequest true "Team"
// @Success 200 {object} helpers.Result
// @Router /teams/getMembers [post]
func (c *TeamController) GetMembers(w http.ResponseWriter, r *http.Request) {
	var req TeamRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	members, err := c.Service.ListMembers(r.Context(), req.TeamID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "MEMBERS_FETCHED", "Team members fetched successfully", members)
}

// GetNonMembers lists active users that are not in the team.
func (c *TeamController) GetNonMembers(w http.ResponseWriter, r *http.Request) {
	var req TeamRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	users, err := c.Service.ListNonMembers(r.Context(), req.TeamID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "USERS_FETCHED", "Users fetched successfully", users)
}

// AddMembers godoc
// @Summary Add users to a team
// @Description Unknown user ids are skipped.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddTeamMembersRequest true "Members"
// @Success 200 {object} helpers.Result
// @Failure 400 {object} helpers.Result "NO_VALID_MEMBERS"
// @Router /teams/addMemberToTeam [post]
func (c *TeamController) AddMembers(w http.ResponseWriter, r *http.Request) {
	var req AddTeamMembersRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	n, err := c.Service.AddMembers(r.Context(), req.TeamID, req.UserIDs)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "MEMBERS_ADDED", "Members added successfully", AddedMembers{Added: n})
}

// SetMemberDetail updates a member's role, status, note and positions.
func (c *TeamController) SetMemberDetail(w http.ResponseWriter, r *http.Request) {
	var req SetTeamMemberRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	err := c.Service.UpdateMember(r.Context(), req.TeamID, req.UserID, &domain.TeamMemberUpdate{
		Role:        req.Role,
		IsActive:    req.IsActive,
		Note:        req.Note,
		PositionIDs: req.PositionIDs,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "MEMBER_UPDATED", "Member updated successfully", nil)
}

func (c *TeamController) RemoveMember(w http.ResponseWriter, r *http.Request) {
	var req RemoveTeamMemberRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.RemoveMember(r.Context(), req.TeamID, req.UserID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "MEMBER_REMOVED", "Member removed successfully", nil)
}

// ListPositions godoc
// @Summary List positions of a team type
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ListPositionsRequest true "Team type, e.g. singer"
// @Success 200 {object} helpers.Result
// @Router /teams/getAllPositions [post]
func (c *TeamController) ListPositions(w http.ResponseWriter, r *http.Request) {
	var req ListPositionsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	positions, err := c.Service.ListPositions(r.Context(), req.TeamType)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "POSITIONS_FETCHED", "Positions fetched successfully", positions)
}

// CreatePosition godoc
// @Summary Create a position for a team
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreatePositionRequest true "Position"
// @Success 201 {object} helpers.Result
// @Failure 409 {object} helpers.Result "POSITION_EXISTS"
// @Router /teams/createPosition [post]
func (c *TeamController) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req CreatePositionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	pos, err := c.Service.CreatePosition(r.Context(), req.Label, req.TeamID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, "POSITION_CREATED", "Position created successfully", pos)
}

// DeletePosition godoc
// @Summary Delete a position
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Position ID"
// @Success 200 {object} helpers.Result
// @Failure 409 {object} helpers.Result "POSITION_IN_USE"
// @Router /teams/deletePosition/{id} [delete]
func (c *TeamController) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.DeletePosition(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "POSITION_DELETED", "Position deleted successfully", nil)
}
