package controllers

import (
	"log/slog"
	"net/http"

	"churchadmin/internal/delivery/http/helpers"
	"churchadmin/internal/domain"
)

// GetAttendanceRequest is the request body for POST /events/getAttendance.
type GetAttendanceRequest struct {
	EventIDs []string `json:"eventIds" validate:"dive,uuid"`
}

// UpdateAttendanceRequest is the request body for POST /events/updateAttendance.
type UpdateAttendanceRequest struct {
	Updates []domain.AttendanceUpdate `json:"updates" validate:"dive"`
}

// UpdatedAttendance reports how many rows a bulk update changed.
type UpdatedAttendance struct {
	Updated int64 `json:"updated"`
}

// EventController serves group event listings and the attendance endpoints.
type EventController struct {
	Logger     *slog.Logger
	Events     domain.EventService
	Attendance domain.AttendanceService
}

func NewEventController(logger *slog.Logger, events domain.EventService, attendance domain.AttendanceService) *EventController {
	return &EventController{
		Logger:     logger,
		Events:     events,
		Attendance: attendance,
	}
}

// GetAllEventByGroupID godoc
// @Summary List events linked to a group
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 200 {object} helpers.Result
// @Failure 404 {object} helpers.Result "GROUP_NOT_FOUND"
// @Router /events/getAllEventByGroupId/{id} [get]
func (c *EventController) GetAllEventByGroupID(w http.ResponseWriter, r *http.Request) {
	c.listGroupEvents(w, r, domain.ScopeGroup)
}

// GetComcellEventsByGroupID godoc
// @Summary List public events plus the group's own events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 200 {object} helpers.Result
// @Failure 404 {object} helpers.Result "GROUP_NOT_FOUND"
// @Router /events/getComcellEventsByGroupId/{id} [get]
func (c *EventController) GetComcellEventsByGroupID(w http.ResponseWriter, r *http.Request) {
	c.listGroupEvents(w, r, domain.ScopeCombined)
}

func (c *EventController) listGroupEvents(w http.ResponseWriter, r *http.Request, scope string) {
	groupID, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	events, err := c.Events.ListGroupEvents(r.Context(), groupID, scope)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "EVENTS_FETCHED", "Events fetched successfully", events)
}

// GetAttendance godoc
// @Summary Attendance rows grouped by event id
// @Description Every requested event id is present in the result; events without rows map to an empty list.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GetAttendanceRequest true "Event ids"
// @Success 200 {object} helpers.Result
// @Failure 400 {object} helpers.Result "NO_EVENT_IDS"
// @Router /events/getAttendance [post]
func (c *EventController) GetAttendance(w http.ResponseWriter, r *http.Request) {
	var req GetAttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	byEvent, err := c.Attendance.GetAttendance(r.Context(), req.EventIDs)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "ATTENDANCE_FETCHED", "Attendance fetched successfully", byEvent)
}

// UpdateAttendance godoc
// @Summary Bulk update attendance rows
// @Description Rows are matched by attendance_id; unknown ids are ignored.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateAttendanceRequest true "Updates"
// @Success 200 {object} helpers.Result
// @Failure 400 {object} helpers.Result "NO_UPDATES, INVALID_STATUS, VALIDATION_ERROR"
// @Router /events/updateAttendance [post]
func (c *EventController) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	var req UpdateAttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	n, err := c.Attendance.UpdateAttendance(r.Context(), req.Updates)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "ATTENDANCE_UPDATED", "Attendance updated successfully", UpdatedAttendance{Updated: n})
}

// GetAttendanceStats godoc
// @Summary Per-member attendance statistics of a group
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param groupId path string true "Group ID"
// @Param scope query string false "group (default) or combined"
// @Success 200 {object} helpers.Result "code STATS_FETCHED, or NO_MEMBERS with an empty member list"
// @Failure 400 {object} helpers.Result "INVALID_SCOPE"
// @Failure 404 {object} helpers.Result "GROUP_NOT_FOUND"
// @Router /events/getAttendanceStats/{groupId} [get]
func (c *EventController) GetAttendanceStats(w http.ResponseWriter, r *http.Request) {
	groupID, ok := helpers.PathID(w, r, "groupId")
	if !ok {
		return
	}
	report, err := c.Attendance.GetAttendanceStats(r.Context(), groupID, r.URL.Query().Get("scope"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if len(report.Members) == 0 {
		helpers.WriteJSONSuccess(w, http.StatusOK, "NO_MEMBERS", "Group has no members", report)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "STATS_FETCHED", "Attendance stats fetched successfully", report)
}
