package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"churchadmin/internal/delivery/http/middleware"
	"churchadmin/internal/domain"

	"github.com/stretchr/testify/require"
)

// Stored ids are UUIDs; handlers reject anything else before reaching a service.
const (
	memberAnn     = "5d0c6f0e-2a7b-4f3e-9d41-7c2b1e8a9f01"
	memberBen     = "8a4e2c9b-1f6d-4b0a-a3e7-0d9c5b2f7e12"
	memberCara    = "c3b9e1d4-6a2f-4e8c-b5d0-9f7a1c3e5b23"
	unknownMember = "f0e1d2c3-b4a5-4968-8776-655443322110"
	sundayEvent   = "1e2d3c4b-5a69-4788-9a0b-c1d2e3f4a5b6"
	fridayEvent   = "2f3e4d5c-6b7a-4899-8a1b-d2e3f4a5b6c7"
	sermonVideo   = "9b8a7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// newRequest builds a request with an optional JSON body and authenticated user.
func newRequest(t *testing.T, method, target string, body any, userID string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	return req
}

// serve routes req through a mux so that path values are populated.
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createID     string
	createErr    error
	lastCreate   *domain.CreateEventInput
	detail       *domain.EventDetail
	getErr       error
	events       []*domain.Event
	listErr      error
	lastFilter   domain.EventFilter
	lastGroupID  string
	lastScope    string
	updated      *domain.Event
	updateErr    error
	lastUpdate   *domain.EventUpdate
	deleteErr    error
	lastDeleteID string
}

func (f *fakeEventService) CreateEvent(_ context.Context, in *domain.CreateEventInput) (string, error) {
	f.lastCreate = in
	return f.createID, f.createErr
}

func (f *fakeEventService) GetEvent(_ context.Context, id string) (*domain.EventDetail, error) {
	return f.detail, f.getErr
}

func (f *fakeEventService) ListEvents(_ context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	f.lastFilter = filter
	return f.events, f.listErr
}

func (f *fakeEventService) ListGroupEvents(_ context.Context, groupID, scope string) ([]*domain.Event, error) {
	f.lastGroupID, f.lastScope = groupID, scope
	return f.events, f.listErr
}

func (f *fakeEventService) UpdateEvent(_ context.Context, id string, u *domain.EventUpdate) (*domain.Event, error) {
	f.lastUpdate = u
	return f.updated, f.updateErr
}

func (f *fakeEventService) DeleteEvent(_ context.Context, id string) error {
	f.lastDeleteID = id
	return f.deleteErr
}

type fakeAttendanceService struct {
	records     map[string][]*domain.AttendanceRecord
	getErr      error
	lastIDs     []string
	updated     int64
	updateErr   error
	lastUpdates []domain.AttendanceUpdate
	report      *domain.AttendanceReport
	statsErr    error
	lastScope   string
}

func (f *fakeAttendanceService) GetAttendance(_ context.Context, ids []string) (map[string][]*domain.AttendanceRecord, error) {
	f.lastIDs = ids
	return f.records, f.getErr
}

func (f *fakeAttendanceService) UpdateAttendance(_ context.Context, u []domain.AttendanceUpdate) (int64, error) {
	f.lastUpdates = u
	return f.updated, f.updateErr
}

func (f *fakeAttendanceService) GetAttendanceStats(_ context.Context, groupID, scope string) (*domain.AttendanceReport, error) {
	f.lastScope = scope
	return f.report, f.statsErr
}

type fakeGroupService struct {
	group        *domain.ComcellGroup
	groups       []*domain.ComcellGroup
	err          error
	lastCategory string
	lastCreate   *domain.ComcellGroup
	lastUpdate   *domain.GroupUpdate
	lastUserIDs  []string
	lastRole     string
}

func (f *fakeGroupService) CreateGroup(_ context.Context, g *domain.ComcellGroup) (*domain.ComcellGroup, error) {
	f.lastCreate = g
	return f.group, f.err
}

func (f *fakeGroupService) GetGroup(_ context.Context, id string) (*domain.ComcellGroup, error) {
	return f.group, f.err
}

func (f *fakeGroupService) GetGroupByUser(_ context.Context, userID string) (*domain.ComcellGroup, error) {
	return f.group, f.err
}

func (f *fakeGroupService) ListGroups(_ context.Context, category string) ([]*domain.ComcellGroup, error) {
	f.lastCategory = category
	return f.groups, f.err
}

func (f *fakeGroupService) UpdateGroup(_ context.Context, id string, u *domain.GroupUpdate) (*domain.ComcellGroup, error) {
	f.lastUpdate = u
	return f.group, f.err
}

func (f *fakeGroupService) DeleteGroup(_ context.Context, id string) error { return f.err }

func (f *fakeGroupService) AddMembers(_ context.Context, groupID string, userIDs []string) error {
	f.lastUserIDs = userIDs
	return f.err
}

func (f *fakeGroupService) SetMemberRole(_ context.Context, groupID, userID, role string) error {
	f.lastRole = role
	return f.err
}

func (f *fakeGroupService) RemoveMember(_ context.Context, groupID, userID string) error { return f.err }

type fakeTeamService struct {
	teams         []*domain.Team
	team          *domain.Team
	members       []*domain.TeamMember
	users         []*domain.User
	positions     []*domain.Position
	position      *domain.Position
	added         int64
	err           error
	lastProtected bool
	lastUpdate    *domain.TeamMemberUpdate
	lastTeamType  string
}

func (f *fakeTeamService) ListTeams(_ context.Context, protected bool) ([]*domain.Team, error) {
	f.lastProtected = protected
	return f.teams, f.err
}

func (f *fakeTeamService) CreateTeam(_ context.Context, name string) (*domain.Team, error) {
	return f.team, f.err
}

func (f *fakeTeamService) DeleteTeam(_ context.Context, id string) error { return f.err }

func (f *fakeTeamService) ListMembers(_ context.Context, teamID string) ([]*domain.TeamMember, error) {
	return f.members, f.err
}

func (f *fakeTeamService) ListNonMembers(_ context.Context, teamID string) ([]*domain.User, error) {
	return f.users, f.err
}

func (f *fakeTeamService) AddMembers(_ context.Context, teamID string, userIDs []string) (int64, error) {
	return f.added, f.err
}

func (f *fakeTeamService) UpdateMember(_ context.Context, teamID, userID string, u *domain.TeamMemberUpdate) error {
	f.lastUpdate = u
	return f.err
}

func (f *fakeTeamService) RemoveMember(_ context.Context, teamID, userID string) error { return f.err }

func (f *fakeTeamService) ListPositions(_ context.Context, teamType string) ([]*domain.Position, error) {
	f.lastTeamType = teamType
	return f.positions, f.err
}

func (f *fakeTeamService) CreatePosition(_ context.Context, label, teamID string) (*domain.Position, error) {
	return f.position, f.err
}

func (f *fakeTeamService) DeletePosition(_ context.Context, id string) error { return f.err }

type fakeAuthService struct {
	user       *domain.User
	result     *domain.AuthResult
	err        error
	lastInput  *domain.RegisterInput
	lastEmail  string
	lastToken  string
	lastUserID string
}

func (f *fakeAuthService) Register(_ context.Context, in *domain.RegisterInput) (*domain.User, error) {
	f.lastInput = in
	return f.user, f.err
}

func (f *fakeAuthService) Login(_ context.Context, email, password string) (*domain.AuthResult, error) {
	f.lastEmail = email
	return f.result, f.err
}

func (f *fakeAuthService) Profile(_ context.Context, userID string) (*domain.User, error) {
	f.lastUserID = userID
	return f.user, f.err
}

func (f *fakeAuthService) RequestPasswordReset(_ context.Context, email string) error {
	f.lastEmail = email
	return f.err
}

func (f *fakeAuthService) ResetPassword(_ context.Context, token, newPassword string) error {
	f.lastToken = token
	return f.err
}

type fakeUserService struct {
	users      []*domain.User
	user       *domain.User
	roles      []*domain.Role
	err        error
	lastID     string
	lastUpdate *domain.ProfileUpdate
	lastRole   string
	lastActive *bool
}

func (f *fakeUserService) ListUsers(_ context.Context) ([]*domain.User, error) { return f.users, f.err }

func (f *fakeUserService) GetUser(_ context.Context, id string) (*domain.User, error) {
	f.lastID = id
	return f.user, f.err
}

func (f *fakeUserService) UpdateProfile(_ context.Context, id string, p *domain.ProfileUpdate) (*domain.User, error) {
	f.lastID, f.lastUpdate = id, p
	return f.user, f.err
}

func (f *fakeUserService) SetRole(_ context.Context, id, roleName string) error {
	f.lastID, f.lastRole = id, roleName
	return f.err
}

func (f *fakeUserService) SetStatus(_ context.Context, id string, active bool) error {
	f.lastID, f.lastActive = id, &active
	return f.err
}

func (f *fakeUserService) ListRoles(_ context.Context) ([]*domain.Role, error) { return f.roles, f.err }

type fakeVideoService struct {
	video      *domain.Video
	videos     []*domain.Video
	total      int
	tags       []*domain.Tag
	err        error
	lastCreate *domain.Video
	lastFilter domain.VideoFilter
	lastUpdate *domain.VideoUpdate
}

func (f *fakeVideoService) CreateVideo(_ context.Context, v *domain.Video) (*domain.Video, error) {
	f.lastCreate = v
	return f.video, f.err
}

func (f *fakeVideoService) GetVideo(_ context.Context, id string) (*domain.Video, error) {
	return f.video, f.err
}

func (f *fakeVideoService) ListVideos(_ context.Context, filter domain.VideoFilter) ([]*domain.Video, int, error) {
	f.lastFilter = filter
	return f.videos, f.total, f.err
}

func (f *fakeVideoService) UpdateVideo(_ context.Context, id string, u *domain.VideoUpdate) (*domain.Video, error) {
	f.lastUpdate = u
	return f.video, f.err
}

func (f *fakeVideoService) DeleteVideo(_ context.Context, id string) error { return f.err }

func (f *fakeVideoService) ListTags(_ context.Context) ([]*domain.Tag, error) { return f.tags, f.err }
