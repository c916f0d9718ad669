package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"churchadmin/internal/domain"
)

type eventService struct {
	store          domain.EventStore
	eventRepo      domain.EventRepository
	groupRepo      domain.GroupRepository
	teamKeys       map[string]string
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService creates an EventService. teamKeys maps a payload team key
// ("team-singer") to the id of the team it assigns members to.
func NewEventService(
	store domain.EventStore,
	eventRepo domain.EventRepository,
	groupRepo domain.GroupRepository,
	teamKeys map[string]string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		store:          store,
		eventRepo:      eventRepo,
		groupRepo:      groupRepo,
		teamKeys:       teamKeys,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// CreateEvent persists the event with all of its dependent rows in one transaction
// and returns the new event id. Nothing is persisted when any step fails.
func (s *eventService) CreateEvent(ctx context.Context, in *domain.CreateEventInput) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if in.StartTime.After(in.EndTime) {
		return "", domain.ErrInvalidTimeRange
	}
	groupIDs := dedupe(in.GroupIDs)
	for _, id := range groupIDs {
		ok, err := s.groupRepo.Exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check group %s: %w", id, err)
		}
		if !ok {
			return "", domain.ErrGroupNotFound.WithMessage("Group %s not found", id)
		}
	}

	startedAt := s.now().UTC()
	event := newEvent(in, startedAt)

	err := s.store.WithinTx(ctx, func(w domain.EventWriter) error {
		if err := w.InsertEvent(ctx, event); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		for _, groupID := range groupIDs {
			if err := w.LinkGroup(ctx, event.ID, groupID, event.StartTime, event.EndTime); err != nil {
				return fmt.Errorf("link group %s: %w", groupID, err)
			}
		}
		if len(groupIDs) > 0 {
			if _, err := w.SeedAttendance(ctx, event.ID, groupIDs); err != nil {
				return fmt.Errorf("seed attendance: %w", err)
			}
		}
		if err := s.writeSpeakers(ctx, w, event.ID, in.Speakers, in.Translators); err != nil {
			return err
		}
		for _, song := range in.Songs {
			order := song.Order
			if order == 0 {
				order = 1
			}
			row := &domain.EventSong{EventID: event.ID, Title: song.Title, SongOrder: order, SongKey: song.Key, BPM: song.BPM}
			if err := w.InsertSong(ctx, row); err != nil {
				return fmt.Errorf("insert song: %w", err)
			}
		}
		for _, p := range in.Presentations {
			uploadedAt := startedAt
			if p.UploadedAt != nil {
				uploadedAt = *p.UploadedAt
			}
			row := &domain.EventPresentation{
				EventID: event.ID, FileName: p.FileName, FileSize: p.FileSize,
				FileType: p.FileType, FileURL: p.FileURL, UploadedAt: uploadedAt,
			}
			if err := w.InsertPresentation(ctx, row); err != nil {
				return fmt.Errorf("insert presentation: %w", err)
			}
		}
		return s.writeTeams(ctx, w, event.ID, in.TeamAssignments)
	})
	if err != nil {
		return "", err
	}
	return event.ID, nil
}

func newEvent(in *domain.CreateEventInput, now time.Time) *domain.Event {
	e := &domain.Event{
		Name:        in.Name,
		Type:        in.Type,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Location:    in.Location,
		Description: in.Description,
		IsPublic:    true,
		Status:      in.Status,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if e.Type == "" {
		e.Type = domain.EventTypeOther
	}
	if in.IsPublic != nil {
		e.IsPublic = *in.IsPublic
	}
	if e.Status == "" {
		e.Status = domain.EventStatusDraft
	}
	return e
}

func (s *eventService) writeSpeakers(ctx context.Context, w domain.EventWriter, eventID string, speakers, translators []domain.PersonInput) error {
	userSpeakers := make(map[string]bool)
	for i, p := range speakers {
		slot := &domain.EventSpeakerSlot{EventID: eventID, Type: personType(p)}
		slot.SpeakerID, slot.SpeakerName = personIdentity(p)
		if slot.SpeakerID == nil && slot.SpeakerName == nil {
			s.logger.WarnContext(ctx, "skipping speaker without user id or name", "event_id", eventID, "index", i)
			continue
		}
		if err := w.InsertSpeakerSlot(ctx, slot); err != nil {
			return fmt.Errorf("insert speaker: %w", err)
		}
		if p.NormalizedType() == domain.SpeakerTypeUser && p.UserID != "" {
			userSpeakers[p.UserID] = true
		}
	}

	for i, p := range translators {
		id, name := personIdentity(p)
		if id == nil && name == nil {
			s.logger.WarnContext(ctx, "skipping translator without user id or name", "event_id", eventID, "index", i)
			continue
		}
		if p.NormalizedType() == domain.SpeakerTypeUser && userSpeakers[p.UserID] {
			merged, err := w.AttachTranslator(ctx, eventID, p.UserID, id, name)
			if err != nil {
				return fmt.Errorf("attach translator: %w", err)
			}
			if merged {
				continue
			}
		}
		slot := &domain.EventSpeakerSlot{EventID: eventID, Type: personType(p), TranslatorID: id, TranslatorName: name}
		if err := w.InsertSpeakerSlot(ctx, slot); err != nil {
			return fmt.Errorf("insert translator: %w", err)
		}
	}
	return nil
}

func personType(p domain.PersonInput) *string {
	t := p.NormalizedType()
	if t == "" {
		return nil
	}
	return &t
}

// personIdentity returns the user id for registered users and the name otherwise.
// Registered users keep their name too when one is supplied.
func personIdentity(p domain.PersonInput) (id, name *string) {
	if p.NormalizedType() == domain.SpeakerTypeUser && p.UserID != "" {
		uid := p.UserID
		id = &uid
	}
	if p.Name != "" {
		n := p.Name
		name = &n
	}
	return id, name
}

func (s *eventService) writeTeams(ctx context.Context, w domain.EventWriter, eventID string, assignments map[string][]domain.TeamMemberInput) error {
	keys := make([]string, 0, len(assignments))
	for k := range assignments {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		members := assignments[key]
		teamID, ok := s.teamKeys[key]
		if !ok {
			s.logger.WarnContext(ctx, "skipping unknown team key", "event_id", eventID, "team_key", key)
			continue
		}
		active, err := w.ActiveTeamExists(ctx, teamID)
		if err != nil {
			return fmt.Errorf("check team %s: %w", teamID, err)
		}
		if !active {
			s.logger.WarnContext(ctx, "skipping inactive or missing team", "event_id", eventID, "team_key", key, "team_id", teamID)
			continue
		}
		eventTeamID, err := w.InsertEventTeam(ctx, eventID, teamID)
		if err != nil {
			return fmt.Errorf("insert event team %s: %w", teamID, err)
		}
		for _, m := range members {
			row := &domain.EventTeamMember{EventTeamID: eventTeamID, TeamID: teamID, UserID: m.UserID, RoleName: m.Role, Details: m.Details}
			if err := w.InsertEventTeamMember(ctx, row); err != nil {
				return fmt.Errorf("insert event team member: %w", err)
			}
		}
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}

	slots, err := s.eventRepo.ListSpeakerSlots(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	songs, err := s.eventRepo.ListSongs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	presentations, err := s.eventRepo.ListPresentations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list presentations: %w", err)
	}
	members, err := s.eventRepo.ListTeamMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}

	detail := &domain.EventDetail{
		Event:           event,
		Speakers:        make([]*domain.EventSpeakerSlot, 0),
		Translators:     make([]*domain.EventSpeakerSlot, 0),
		Songs:           songs,
		Presentations:   presentations,
		TeamAssignments: make(map[string][]*domain.EventTeamMember, len(s.teamKeys)),
	}
	for _, slot := range slots {
		if slot.HasSpeaker() {
			detail.Speakers = append(detail.Speakers, slot)
		} else {
			detail.Translators = append(detail.Translators, slot)
		}
	}

	keyByTeam := make(map[string]string, len(s.teamKeys))
	for key, teamID := range s.teamKeys {
		keyByTeam[teamID] = key
		detail.TeamAssignments[key] = make([]*domain.EventTeamMember, 0)
	}
	for _, m := range members {
		key, ok := keyByTeam[m.TeamID]
		if !ok {
			key = m.TeamID
		}
		detail.TeamAssignments[key] = append(detail.TeamAssignments[key], m)
	}
	return detail, nil
}

func (s *eventService) ListEvents(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if f.Now.IsZero() {
		f.Now = s.now().UTC()
	}
	if f.Period != domain.PeriodPast {
		f.Period = domain.PeriodUpcoming
	}
	return s.eventRepo.List(ctx, f)
}

func (s *eventService) ListGroupEvents(ctx context.Context, groupID, scope string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	scope, err := normalizeScope(scope)
	if err != nil {
		return nil, err
	}
	ok, err := s.groupRepo.Exists(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	return s.eventRepo.ListByGroup(ctx, groupID, scope)
}

func (s *eventService) UpdateEvent(ctx context.Context, id string, u *domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if u.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if u.StartTime != nil || u.EndTime != nil {
		current, err := s.eventRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrEventNotFound
			}
			return nil, err
		}
		start, end := current.StartTime, current.EndTime
		if u.StartTime != nil {
			start = *u.StartTime
		}
		if u.EndTime != nil {
			end = *u.EndTime
		}
		if start.After(end) {
			return nil, domain.ErrInvalidTimeRange
		}
	}

	event, err := s.eventRepo.Update(ctx, id, u)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrEventNotFound
		}
		return err
	}
	return nil
}

func normalizeScope(scope string) (string, error) {
	switch scope {
	case "", domain.ScopeGroup:
		return domain.ScopeGroup, nil
	case domain.ScopeCombined:
		return domain.ScopeCombined, nil
	}
	return "", domain.ErrInvalidScope
}

// dedupe returns ids without blanks and repeats, keeping first occurrence order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
