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

func TestComcellController_CreateGroup(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{name: "created", body: map[string]any{"name": "Hope", "category": "adult", "leader_id": memberAnn, "co_leader_id": memberBen}, wantStatus: http.StatusCreated, wantCode: "GROUP_CREATED"},
		{name: "bad category", body: map[string]any{"name": "Hope", "category": "senior", "leader_id": memberAnn}, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeValidation},
		{name: "missing leader", body: map[string]any{"name": "Hope", "category": "youth"}, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeValidation},
		{name: "same leaders", body: map[string]any{"name": "Hope", "category": "adult", "leader_id": memberAnn, "co_leader_id": memberAnn}, svcErr: domain.ErrDuplicateLeader, wantStatus: http.StatusBadRequest, wantCode: "DUPLICATE_LEADER"},
		{name: "leader taken", body: map[string]any{"name": "Hope", "category": "adult", "leader_id": memberAnn}, svcErr: domain.ErrUserAlreadyAssigned, wantStatus: http.StatusConflict, wantCode: "USER_ALREADY_ASSIGNED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeGroupService{group: &domain.ComcellGroup{ID: "Group-1a2b3c4d", Name: "Hope"}, err: tt.svcErr}
			c := NewComcellController(testLogger, svc)
			rec := serve("POST /comcell/createComcellGroup", c.CreateGroup, newRequest(t, http.MethodPost, "/comcell/createComcellGroup", tt.body, "u-admin"))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeEnvelope(t, rec).Code)
		})
	}
}

func TestComcellController_listByCategory(t *testing.T) {
	svc := &fakeGroupService{groups: []*domain.ComcellGroup{}}
	c := NewComcellController(testLogger, svc)

	serve("GET /comcell/getAllYouth", c.ListYouthGroups, newRequest(t, http.MethodGet, "/comcell/getAllYouth", nil, "u-1"))
	assert.Equal(t, domain.CategoryYouth, svc.lastCategory)

	serve("GET /comcell/getAllAdult", c.ListAdultGroups, newRequest(t, http.MethodGet, "/comcell/getAllAdult", nil, "u-1"))
	assert.Equal(t, domain.CategoryAdult, svc.lastCategory)

	rec := serve("GET /comcell/getAll", c.ListGroups, newRequest(t, http.MethodGet, "/comcell/getAll", nil, "u-1"))
	assert.Equal(t, "", svc.lastCategory)
	assert.Equal(t, "GROUPS_FETCHED", decodeEnvelope(t, rec).Code)
}

func TestComcellController_GetGroupMembers(t *testing.T) {
	svc := &fakeGroupService{group: &domain.ComcellGroup{ID: "Group-1"}}
	c := NewComcellController(testLogger, svc)
	rec := serve("GET /comcell/getComcellGroupMembers/{id}", c.GetGroupMembers, newRequest(t, http.MethodGet, "/comcell/getComcellGroupMembers/Group-1", nil, "u-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", string(decodeEnvelope(t, rec).Data))
}

func TestComcellController_GetGroupByUser_notInGroup(t *testing.T) {
	c := NewComcellController(testLogger, &fakeGroupService{err: domain.ErrUserNotInGroup})
	rec := serve("GET /comcell/getComcellFromUserId/{userId}", c.GetGroupByUser, newRequest(t, http.MethodGet, "/comcell/getComcellFromUserId/"+memberAnn, nil, "u-1"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "USER_NOT_IN_GROUP", decodeEnvelope(t, rec).Code)
}

func TestComcellController_UpdateGroup_clearsCoLeader(t *testing.T) {
	svc := &fakeGroupService{group: &domain.ComcellGroup{ID: "Group-1"}}
	c := NewComcellController(testLogger, svc)
	rec := serve("POST /comcell/updateComcellGroup/{id}", c.UpdateGroup,
		newRequest(t, http.MethodPost, "/comcell/updateComcellGroup/Group-1", map[string]any{"co_leader_id": ""}, "u-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastUpdate.CoLeaderID)
	assert.Equal(t, "", *svc.lastUpdate.CoLeaderID)
	assert.Nil(t, svc.lastUpdate.Name)
}

func TestComcellController_members(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		svc := &fakeGroupService{}
		c := NewComcellController(testLogger, svc)
		body := map[string]any{"group_id": "Group-1", "user_ids": []string{"u-3", "u-4"}}
		rec := serve("POST /comcell/addMemberToComcellGroup", c.AddMembers, newRequest(t, http.MethodPost, "/comcell/addMemberToComcellGroup", body, "u-1"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"u-3", "u-4"}, svc.lastUserIDs)
	})

	t.Run("add requires users", func(t *testing.T) {
		c := NewComcellController(testLogger, &fakeGroupService{})
		body := map[string]any{"group_id": "Group-1", "user_ids": []string{}}
		rec := serve("POST /comcell/addMemberToComcellGroup", c.AddMembers, newRequest(t, http.MethodPost, "/comcell/addMemberToComcellGroup", body, "u-1"))

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid role", func(t *testing.T) {
		c := NewComcellController(testLogger, &fakeGroupService{err: domain.ErrInvalidRole})
		body := map[string]any{"group_id": "Group-1", "user_id": memberCara, "role": "pastor"}
		rec := serve("POST /comcell/setMemberDetail", c.SetMemberRole, newRequest(t, http.MethodPost, "/comcell/setMemberDetail", body, "u-1"))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_ROLE", decodeEnvelope(t, rec).Code)
	})

	t.Run("cannot remove leader", func(t *testing.T) {
		c := NewComcellController(testLogger, &fakeGroupService{err: domain.ErrCannotRemove})
		body := map[string]any{"group_id": "Group-1", "user_id": memberAnn}
		rec := serve("POST /comcell/removeMemberFromComcellGroup", c.RemoveMember, newRequest(t, http.MethodPost, "/comcell/removeMemberFromComcellGroup", body, "u-1"))

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "CANNOT_REMOVE", decodeEnvelope(t, rec).Code)
	})
}

func TestComcellController_DeleteGroup_hasEvents(t *testing.T) {
	c := NewComcellController(testLogger, &fakeGroupService{err: domain.ErrGroupHasEvents})
	rec := serve("DELETE /comcell/deleteComcellGroup/{id}", c.DeleteGroup, newRequest(t, http.MethodDelete, "/comcell/deleteComcellGroup/Group-1", nil, "u-1"))

	require.Equal(t, http.StatusConflict, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
}
