package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"churchadmin/internal/delivery/http/helpers"
	"churchadmin/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventController_groupEvents(t *testing.T) {
	events := &fakeEventService{events: []*domain.Event{{ID: "e-1"}}}
	c := NewEventController(testLogger, events, &fakeAttendanceService{})

	rec := serve("GET /events/getAllEventByGroupId/{id}", c.GetAllEventByGroupID,
		newRequest(t, http.MethodGet, "/events/getAllEventByGroupId/Group-1", nil, "u-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Group-1", events.lastGroupID)
	assert.Equal(t, domain.ScopeGroup, events.lastScope)

	rec = serve("GET /events/getComcellEventsByGroupId/{id}", c.GetComcellEventsByGroupID,
		newRequest(t, http.MethodGet, "/events/getComcellEventsByGroupId/Group-1", nil, "u-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ScopeCombined, events.lastScope)

	events.listErr = domain.ErrGroupNotFound
	rec = serve("GET /events/getAllEventByGroupId/{id}", c.GetAllEventByGroupID,
		newRequest(t, http.MethodGet, "/events/getAllEventByGroupId/Group-x", nil, "u-1"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "GROUP_NOT_FOUND", decodeEnvelope(t, rec).Code)
}

func TestEventController_GetAttendance(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{name: "fetched", body: map[string]any{"eventIds": []string{sundayEvent, fridayEvent}}, wantStatus: http.StatusOK, wantCode: "ATTENDANCE_FETCHED"},
		{name: "no ids", body: map[string]any{"eventIds": []string{}}, svcErr: domain.ErrNoEventIDs, wantStatus: http.StatusBadRequest, wantCode: "NO_EVENT_IDS"},
		{name: "malformed id", body: map[string]any{"eventIds": []string{sundayEvent, "e-1"}}, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			att := &fakeAttendanceService{
				records: map[string][]*domain.AttendanceRecord{
					sundayEvent: {{ID: "a-1", EventID: sundayEvent, UserID: "u-1", Status: domain.AttendanceAbsent}},
					fridayEvent: {},
				},
				getErr: tt.svcErr,
			}
			c := NewEventController(testLogger, &fakeEventService{}, att)
			rec := serve("POST /events/getAttendance", c.GetAttendance, newRequest(t, http.MethodPost, "/events/getAttendance", tt.body, "u-1"))

			require.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.Equal(t, tt.wantCode, env.Code)
			if tt.wantStatus == http.StatusOK {
				var data map[string][]map[string]any
				require.NoError(t, json.Unmarshal(env.Data, &data))
				assert.Len(t, data[sundayEvent], 1)
				assert.NotNil(t, data[fridayEvent])
				assert.Empty(t, data[fridayEvent])
			}
		})
	}
}

func TestEventController_UpdateAttendance(t *testing.T) {
	const id = "7f1c2a9e-5b0d-4c1e-9a55-0d6f2b3c4e5f"
	tests := []struct {
		name       string
		body       any
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "updated",
			body:       map[string]any{"updates": []map[string]any{{"attendance_id": id, "status": "present", "notes": "on time"}}},
			wantStatus: http.StatusOK,
			wantCode:   "ATTENDANCE_UPDATED",
		},
		{
			name:       "invalid status",
			body:       map[string]any{"updates": []map[string]any{{"attendance_id": id, "status": "asleep"}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeValidation,
		},
		{
			name:       "bad id",
			body:       map[string]any{"updates": []map[string]any{{"attendance_id": "42", "status": "present"}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeValidation,
		},
		{
			name:       "empty",
			body:       map[string]any{"updates": []map[string]any{}},
			svcErr:     domain.ErrNoUpdates,
			wantStatus: http.StatusBadRequest,
			wantCode:   "NO_UPDATES",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			att := &fakeAttendanceService{updated: 1, updateErr: tt.svcErr}
			c := NewEventController(testLogger, &fakeEventService{}, att)
			rec := serve("POST /events/updateAttendance", c.UpdateAttendance, newRequest(t, http.MethodPost, "/events/updateAttendance", tt.body, "u-1"))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeEnvelope(t, rec).Code)
		})
	}
}

func TestEventController_GetAttendanceStats(t *testing.T) {
	last := domain.AttendancePresent
	tests := []struct {
		name       string
		target     string
		report     *domain.AttendanceReport
		svcErr     error
		wantStatus int
		wantCode   string
		wantScope  string
	}{
		{
			name:   "stats",
			target: "/events/getAttendanceStats/Group-1",
			report: &domain.AttendanceReport{GroupID: "Group-1", Scope: "group", TotalEvents: 4, Members: []*domain.MemberAttendance{
				{UserID: "u-1", UserName: "Ann L.", TotalEvents: 4, Attended: 3, Percentage: 75, LastEventStatus: &last, Streak: 2},
			}},
			wantStatus: http.StatusOK,
			wantCode:   "STATS_FETCHED",
		},
		{
			name:       "no members",
			target:     "/events/getAttendanceStats/Group-1?scope=combined",
			report:     &domain.AttendanceReport{GroupID: "Group-1", Scope: "combined", Members: []*domain.MemberAttendance{}},
			wantStatus: http.StatusOK,
			wantCode:   "NO_MEMBERS",
			wantScope:  "combined",
		},
		{
			name:       "unknown group",
			target:     "/events/getAttendanceStats/Group-x",
			svcErr:     domain.ErrGroupNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "GROUP_NOT_FOUND",
		},
		{
			name:       "bad scope",
			target:     "/events/getAttendanceStats/Group-1?scope=everything",
			svcErr:     domain.ErrInvalidScope,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_SCOPE",
			wantScope:  "everything",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			att := &fakeAttendanceService{report: tt.report, statsErr: tt.svcErr}
			c := NewEventController(testLogger, &fakeEventService{}, att)
			rec := serve("GET /events/getAttendanceStats/{groupId}", c.GetAttendanceStats, newRequest(t, http.MethodGet, tt.target, nil, "u-1"))

			require.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.Equal(t, tt.wantCode, env.Code)
			assert.Equal(t, tt.wantScope, att.lastScope)
			if tt.wantCode == "NO_MEMBERS" {
				var data domain.AttendanceReport
				require.NoError(t, json.Unmarshal(env.Data, &data))
				assert.NotNil(t, data.Members)
				assert.Empty(t, data.Members)
			}
		})
	}
}
