package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"churchadmin/internal/delivery/http/helpers"
	"churchadmin/internal/delivery/http/middleware"
	"churchadmin/internal/domain"
)

// CreateEventRequest is the request body for POST /core/event/create.
type CreateEventRequest struct {
	Name            string                              `json:"name" validate:"required"`
	Type            string                              `json:"type"`
	StartTime       time.Time                           `json:"start_time" validate:"required"`
	EndTime         time.Time                           `json:"end_time" validate:"required"`
	Location        *string                             `json:"location"`
	Description     *string                             `json:"description"`
	IsPublic        *bool                               `json:"is_public"`
	Status          string                              `json:"status" validate:"omitempty,oneof=draft published"`
	GroupIDs        []string                            `json:"group_ids"`
	Speakers        []domain.PersonInput                `json:"speakers"`
	Translators     []domain.PersonInput                `json:"translators"`
	Songs           []domain.SongInput                  `json:"songs" validate:"dive"`
	Presentations   []domain.PresentationInput          `json:"presentations" validate:"dive"`
	TeamAssignments map[string][]domain.TeamMemberInput `json:"team_assignments" validate:"dive,dive"`
}

func (req *CreateEventRequest) toInput(userID string) *domain.CreateEventInput {
	return &domain.CreateEventInput{
		Name:            strings.TrimSpace(req.Name),
		Type:            req.Type,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Location:        req.Location,
		Description:     req.Description,
		IsPublic:        req.IsPublic,
		Status:          req.Status,
		CreatedBy:       userID,
		GroupIDs:        req.GroupIDs,
		Speakers:        req.Speakers,
		Translators:     req.Translators,
		Songs:           req.Songs,
		Presentations:   req.Presentations,
		TeamAssignments: req.TeamAssignments,
	}
}

// UpdateEventRequest is the request body for PUT /core/event/update/{id}. Omitted fields are unchanged.
type UpdateEventRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1"`
	Type        *string    `json:"type"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Location    *string    `json:"location"`
	Description *string    `json:"description"`
	IsPublic    *bool      `json:"is_public"`
	Status      *string    `json:"status" validate:"omitempty,oneof=draft published"`
}

// CreatedEvent is the data of a successful create.
type CreatedEvent struct {
	ID string `json:"id"`
}

type CoreEventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewCoreEventController(logger *slog.Logger, svc domain.EventService) *CoreEventController {
	return &CoreEventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates the event with its speakers, translators, songs, presentations, team assignments and group links in one transaction. Attendance rows are seeded for the members of every linked group.
// @Tags core-event
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event aggregate"
// @Success 201 {object} helpers.Result "data.id is the new event id"
// @Failure 400 {object} helpers.Result "VALIDATION_ERROR, INVALID_TIME_RANGE"
// @Failure 404 {object} helpers.Result "GROUP_NOT_FOUND"
// @Failure 409 {object} helpers.Result "EVENT_SLOT_TAKEN"
// @Failure 500 {object} helpers.Result "CREATE_FAILED"
// @Router /core/event/create [post]
func (c *CoreEventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	id, err := c.Service.CreateEvent(r.Context(), req.toInput(userID))
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			helpers.WriteServiceError(w, r, c.Logger, err)
			return
		}
		c.Logger.ErrorContext(r.Context(), "event creation failed", "path", r.URL.Path, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeCreateFailed, "Failed to create event")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, "EVENT_CREATED", "Event created successfully", CreatedEvent{ID: id})
}

// GetAllEventPublic godoc
// @Summary List upcoming public events
// @Tags core-event
// @Produce json
// @Param type query string false "Comma separated event types"
// @Success 200 {object} helpers.Result
// @Router /core/event/getAllEventPublic [get]
func (c *CoreEventController) GetAllEventPublic(w http.ResponseWriter, r *http.Request) {
	c.listEvents(w, r, domain.PeriodUpcoming, true)
}

// GetAllPastEventPublic godoc
// @Summary List past public events
// @Tags core-event
// @Produce json
// @Param year query int false "Year"
// @Param month query int false "Month (1-12)"
// @Param type query string false "Comma separated event types"
// @Success 200 {object} helpers.Result
// @Router /core/event/getAllPostEventPublic [get]
func (c *CoreEventController) GetAllPastEventPublic(w http.ResponseWriter, r *http.Request) {
	c.listEvents(w, r, domain.PeriodPast, true)
}

// GetAllEventAdmin godoc
// @Summary List upcoming events (admin)
// @Tags core-event
// @Produce json
// @Security BearerAuth
// @Param status query string false "draft or published"
// @Param type query string false "Comma separated event types"
// @Success 200 {object} helpers.Result
// @Router /core/event/getAllEventAdmin [get]
func (c *CoreEventController) GetAllEventAdmin(w http.ResponseWriter, r *http.Request) {
	c.listEvents(w, r, domain.PeriodUpcoming, false)
}

// GetAllPastEventAdmin godoc
// @Summary List past events (admin)
// @Tags core-event
// @Produce json
// @Security BearerAuth
// @Param status query string false "draft or published"
// @Param year query int false "Year"
// @Param month query int false "Month (1-12)"
// @Success 200 {object} helpers.Result
// @Router /core/event/getAllPostEventAdmin [get]
func (c *CoreEventController) GetAllPastEventAdmin(w http.ResponseWriter, r *http.Request) {
	c.listEvents(w, r, domain.PeriodPast, false)
}

func (c *CoreEventController) listEvents(w http.ResponseWriter, r *http.Request, period string, public bool) {
	f, err := parseEventFilter(r, period, public)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	events, err := c.Service.ListEvents(r.Context(), f)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "EVENTS_FETCHED", "Events fetched successfully", events)
}

func parseEventFilter(r *http.Request, period string, public bool) (domain.EventFilter, error) {
	q := r.URL.Query()
	f := domain.EventFilter{Period: period, PublicOnly: public}
	if !public {
		f.Status = q.Get("status")
	}
	if s := q.Get("type"); s != "" {
		for _, t := range strings.Split(s, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Types = append(f.Types, t)
			}
		}
	}
	if period == domain.PeriodPast {
		if s := q.Get("year"); s != "" {
			y, err := strconv.Atoi(s)
			if err != nil || y < 1 {
				return f, errors.New("year must be a positive number")
			}
			f.Year = y
		}
		if s := q.Get("month"); s != "" {
			m, err := strconv.Atoi(s)
			if err != nil || m < 1 || m > 12 {
				return f, errors.New("month must be between 1 and 12")
			}
			f.Month = m
		}
	}
	return f, nil
}

// GetEventByID godoc
// @Summary Get an event with all its details
// @Tags core-event
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.Result "data is an EventDetail"
// @Failure 404 {object} helpers.Result "EVENT_NOT_FOUND"
// @Router /core/event/get/{id} [get]
func (c *CoreEventController) GetEventByID(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "id", domain.ErrEventNotFound)
	if !ok {
		return
	}
	detail, err := c.Service.GetEvent(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "EVENT_FETCHED", "Event fetched successfully", detail)
}

// UpdateEvent godoc
// @Summary Update event core fields
// @Tags core-event
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} helpers.Result
// @Failure 400 {object} helpers.Result "NO_FIELDS, INVALID_TIME_RANGE"
// @Failure 404 {object} helpers.Result "EVENT_NOT_FOUND"
// @Failure 409 {object} helpers.Result "EVENT_SLOT_TAKEN"
// @Router /core/event/update/{id} [put]
func (c *CoreEventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "id", domain.ErrEventNotFound)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), id, &domain.EventUpdate{
		Name:        req.Name,
		Type:        req.Type,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Status:      req.Status,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "EVENT_UPDATED", "Event updated successfully", event)
}

// DeleteEvent godoc
// @Summary Delete an event and everything attached to it
// @Tags core-event
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.Result
// @Failure 404 {object} helpers.Result "EVENT_NOT_FOUND"
// @Router /core/event/delete/{id} [delete]
func (c *CoreEventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "id", domain.ErrEventNotFound)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "EVENT_DELETED", "Event deleted successfully", nil)
}
