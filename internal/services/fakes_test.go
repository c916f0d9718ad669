package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"churchadmin/internal/domain"
)

var errInjected = errors.New("injected failure")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// eventRows is everything one event aggregate wrote.
type eventRows struct {
	events        []*domain.Event
	groupLinks    []string
	attendance    map[string][]string
	slots         []*domain.EventSpeakerSlot
	songs         []*domain.EventSong
	presentations []*domain.EventPresentation
	teams         []string
	teamMembers   []*domain.EventTeamMember
}

func (r *eventRows) count() int {
	n := len(r.events) + len(r.groupLinks) + len(r.slots) + len(r.songs) + len(r.presentations) + len(r.teams) + len(r.teamMembers)
	for _, users := range r.attendance {
		n += len(users)
	}
	return n
}

// fakeEventStore applies a transaction's writes only when fn returns nil.
type fakeEventStore struct {
	committed   eventRows
	members     map[string][]string // group id -> user ids
	activeTeams map[string]bool
	takenSlots  map[string]bool // group id
	failOn      string
	nextID      int
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{
		committed:   eventRows{attendance: map[string][]string{}},
		members:     map[string][]string{},
		activeTeams: map[string]bool{},
		takenSlots:  map[string]bool{},
	}
}

func (s *fakeEventStore) WithinTx(ctx context.Context, fn func(w domain.EventWriter) error) error {
	w := &fakeEventWriter{store: s, pending: eventRows{attendance: map[string][]string{}}}
	if err := fn(w); err != nil {
		return err
	}
	c := &s.committed
	c.events = append(c.events, w.pending.events...)
	c.groupLinks = append(c.groupLinks, w.pending.groupLinks...)
	for k, v := range w.pending.attendance {
		c.attendance[k] = append(c.attendance[k], v...)
	}
	c.slots = append(c.slots, w.pending.slots...)
	c.songs = append(c.songs, w.pending.songs...)
	c.presentations = append(c.presentations, w.pending.presentations...)
	c.teams = append(c.teams, w.pending.teams...)
	c.teamMembers = append(c.teamMembers, w.pending.teamMembers...)
	return nil
}

type fakeEventWriter struct {
	store   *fakeEventStore
	pending eventRows
}

func (w *fakeEventWriter) id(prefix string) string {
	w.store.nextID++
	return fmt.Sprintf("%s-%d", prefix, w.store.nextID)
}

func (w *fakeEventWriter) fail(step string) error {
	if w.store.failOn == step {
		return errInjected
	}
	return nil
}

func (w *fakeEventWriter) InsertEvent(ctx context.Context, e *domain.Event) error {
	if err := w.fail("event"); err != nil {
		return err
	}
	e.ID = w.id("ev")
	w.pending.events = append(w.pending.events, e)
	return nil
}

func (w *fakeEventWriter) LinkGroup(ctx context.Context, eventID, groupID string, start, end time.Time) error {
	if w.store.takenSlots[groupID] {
		return domain.ErrEventSlotTaken
	}
	w.pending.groupLinks = append(w.pending.groupLinks, groupID)
	return nil
}

func (w *fakeEventWriter) SeedAttendance(ctx context.Context, eventID string, groupIDs []string) (int64, error) {
	if err := w.fail("attendance"); err != nil {
		return 0, err
	}
	seen := map[string]bool{}
	for _, g := range groupIDs {
		for _, u := range w.store.members[g] {
			if !seen[u] {
				seen[u] = true
				w.pending.attendance[eventID] = append(w.pending.attendance[eventID], u)
			}
		}
	}
	return int64(len(seen)), nil
}

func (w *fakeEventWriter) InsertSpeakerSlot(ctx context.Context, s *domain.EventSpeakerSlot) error {
	if err := w.fail("speaker"); err != nil {
		return err
	}
	s.ID = w.id("slot")
	w.pending.slots = append(w.pending.slots, s)
	return nil
}

func (w *fakeEventWriter) AttachTranslator(ctx context.Context, eventID, speakerUserID string, translatorID, translatorName *string) (bool, error) {
	for _, s := range w.pending.slots {
		if s.EventID == eventID && s.SpeakerID != nil && *s.SpeakerID == speakerUserID && s.Type != nil && *s.Type == domain.SpeakerTypeUser {
			s.TranslatorID = translatorID
			s.TranslatorName = translatorName
			return true, nil
		}
	}
	return false, nil
}

func (w *fakeEventWriter) InsertSong(ctx context.Context, s *domain.EventSong) error {
	if err := w.fail("song"); err != nil {
		return err
	}
	s.ID = w.id("song")
	w.pending.songs = append(w.pending.songs, s)
	return nil
}

func (w *fakeEventWriter) InsertPresentation(ctx context.Context, p *domain.EventPresentation) error {
	if err := w.fail("presentation"); err != nil {
		return err
	}
	p.ID = w.id("pres")
	w.pending.presentations = append(w.pending.presentations, p)
	return nil
}

func (w *fakeEventWriter) ActiveTeamExists(ctx context.Context, teamID string) (bool, error) {
	return w.store.activeTeams[teamID], nil
}

func (w *fakeEventWriter) InsertEventTeam(ctx context.Context, eventID, teamID string) (string, error) {
	w.pending.teams = append(w.pending.teams, teamID)
	return w.id("et"), nil
}

func (w *fakeEventWriter) InsertEventTeamMember(ctx context.Context, m *domain.EventTeamMember) error {
	if err := w.fail("team_member"); err != nil {
		return err
	}
	m.ID = w.id("etm")
	w.pending.teamMembers = append(w.pending.teamMembers, m)
	return nil
}

// fakeEventRepo serves reads for GetEvent and the list operations.
type fakeEventRepo struct {
	byID        map[string]*domain.Event
	slots       []*domain.EventSpeakerSlot
	songs       []*domain.EventSong
	teamMembers []*domain.EventTeamMember
	lastFilter  domain.EventFilter
	lastScope   string
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: map[string]*domain.Event{}}
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	f.lastFilter = filter
	return []*domain.Event{}, nil
}

func (f *fakeEventRepo) ListByGroup(ctx context.Context, groupID, scope string) ([]*domain.Event, error) {
	f.lastScope = scope
	return []*domain.Event{}, nil
}

func (f *fakeEventRepo) ListSpeakerSlots(ctx context.Context, eventID string) ([]*domain.EventSpeakerSlot, error) {
	return f.slots, nil
}

func (f *fakeEventRepo) ListSongs(ctx context.Context, eventID string) ([]*domain.EventSong, error) {
	return f.songs, nil
}

func (f *fakeEventRepo) ListPresentations(ctx context.Context, eventID string) ([]*domain.EventPresentation, error) {
	return []*domain.EventPresentation{}, nil
}

func (f *fakeEventRepo) ListTeamMembers(ctx context.Context, eventID string) ([]*domain.EventTeamMember, error) {
	return f.teamMembers, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, u *domain.EventUpdate) (*domain.Event, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.Name != nil {
		e.Name = *u.Name
	}
	if u.StartTime != nil {
		e.StartTime = *u.StartTime
	}
	if u.EndTime != nil {
		e.EndTime = *u.EndTime
	}
	return e, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeGroupRepo is an in-memory GroupRepository.
type fakeGroupRepo struct {
	groups      map[string]*domain.ComcellGroup
	memberships map[string]*domain.GroupMember // user id -> membership
	eventCounts map[string]int
	updated     *domain.ComcellGroup
	roleSet     string
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		groups:      map[string]*domain.ComcellGroup{},
		memberships: map[string]*domain.GroupMember{},
		eventCounts: map[string]int{},
	}
}

func (f *fakeGroupRepo) addMember(groupID, userID, role, first, last string) {
	f.memberships[userID] = &domain.GroupMember{GroupID: groupID, UserID: userID, Role: role, FirstName: first, LastName: last}
}

func (f *fakeGroupRepo) Create(ctx context.Context, g *domain.ComcellGroup) error {
	f.groups[g.ID] = g
	f.addMember(g.ID, g.LeaderID, domain.GroupRoleLeader, "", "")
	if g.CoLeaderID != nil {
		f.addMember(g.ID, *g.CoLeaderID, domain.GroupRoleCoLeader, "", "")
	}
	return nil
}

func (f *fakeGroupRepo) GetByID(ctx context.Context, id string) (*domain.ComcellGroup, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGroupRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := f.groups[id]
	return ok, nil
}

func (f *fakeGroupRepo) List(ctx context.Context, category string) ([]*domain.ComcellGroup, error) {
	out := []*domain.ComcellGroup{}
	for _, g := range f.groups {
		if category == "" || g.Category == category {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGroupRepo) Update(ctx context.Context, g *domain.ComcellGroup) error {
	if _, ok := f.groups[g.ID]; !ok {
		return domain.ErrNotFound
	}
	f.groups[g.ID] = g
	f.updated = g
	return nil
}

func (f *fakeGroupRepo) Delete(ctx context.Context, id string) error {
	delete(f.groups, id)
	return nil
}

func (f *fakeGroupRepo) CountEvents(ctx context.Context, id string) (int, error) {
	return f.eventCounts[id], nil
}

func (f *fakeGroupRepo) ListMembers(ctx context.Context, groupID string) ([]*domain.GroupMember, error) {
	out := []*domain.GroupMember{}
	for _, m := range f.memberships {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeGroupRepo) GetMembership(ctx context.Context, userID string) (*domain.GroupMember, error) {
	m, ok := f.memberships[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeGroupRepo) AddMembers(ctx context.Context, groupID string, userIDs []string) error {
	for _, id := range userIDs {
		f.addMember(groupID, id, domain.GroupRoleMember, "", "")
	}
	return nil
}

func (f *fakeGroupRepo) SetMemberRole(ctx context.Context, groupID, userID, role string) error {
	f.roleSet = role
	return nil
}

func (f *fakeGroupRepo) RemoveMember(ctx context.Context, groupID, userID string) error {
	delete(f.memberships, userID)
	return nil
}

// fakeAttendanceRepo returns canned analytics rows.
type fakeAttendanceRepo struct {
	records      []*domain.AttendanceRecord
	events       []domain.EventRef
	statuses     []domain.MemberStatus
	updated      []domain.AttendanceUpdate
	knownIDs     map[string]bool
	statusCalled bool
}

func (f *fakeAttendanceRepo) ListByEventIDs(ctx context.Context, eventIDs []string) ([]*domain.AttendanceRecord, error) {
	return f.records, nil
}

func (f *fakeAttendanceRepo) BulkUpdate(ctx context.Context, updates []domain.AttendanceUpdate) (int64, error) {
	f.updated = updates
	var n int64
	for _, u := range updates {
		if f.knownIDs[u.AttendanceID] {
			n++
		}
	}
	return n, nil
}

func (f *fakeAttendanceRepo) ListQualifyingEvents(ctx context.Context, groupID, scope string) ([]domain.EventRef, error) {
	return f.events, nil
}

func (f *fakeAttendanceRepo) ListMemberStatuses(ctx context.Context, eventIDs, userIDs []string) ([]domain.MemberStatus, error) {
	f.statusCalled = true
	return f.statuses, nil
}

// fakeUserRepo is an in-memory UserRepository keyed by id.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	created   *domain.User
	password  map[string]string
	lastLogin map[string]time.Time
	roleSet   map[string]string
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{
		byID:      map[string]*domain.User{},
		password:  map[string]string{},
		lastLogin: map[string]time.Time{},
		roleSet:   map[string]string{},
	}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	u.ID = fmt.Sprintf("u-%d", len(f.byID)+1)
	f.byID[u.ID] = u
	f.created = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	out := []string{}
	for _, id := range ids {
		if _, ok := f.byID[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id string, p *domain.ProfileUpdate) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.City != nil {
		u.City = p.City
	}
	return u, nil
}

func (f *fakeUserRepo) SetRole(ctx context.Context, id, roleID string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	f.roleSet[id] = roleID
	return nil
}

func (f *fakeUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeUserRepo) SetPassword(ctx context.Context, id, hash string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	f.password[id] = hash
	return nil
}

func (f *fakeUserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	f.lastLogin[id] = at
	return nil
}

type fakeRoleRepo struct {
	roles []*domain.Role
}

func (f *fakeRoleRepo) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	for _, r := range f.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (f *fakeRoleRepo) List(ctx context.Context) ([]*domain.Role, error) {
	return f.roles, nil
}
