package domain

import (
	"context"
	"strings"
	"time"
)

// Event status and type values.
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventTypeOther       = "other"
)

// Speaker slot types.
const (
	SpeakerTypeUser  = "user"
	SpeakerTypeGuest = "guest"
)

// Group event listing scopes.
const (
	ScopeGroup    = "group"
	ScopeCombined = "combined"
)

// Event represents a scheduled church event (service, comcell meeting, retreat, ...).
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    *string   `json:"location,omitempty"`
	IsPublic    bool      `json:"is_public"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by"`
	GroupIDs    []string  `json:"group_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventSpeakerSlot is one speaker and/or translator row of an event.
// swagger:model EventSpeakerSlot
type EventSpeakerSlot struct {
	ID             string  `json:"id"`
	EventID        string  `json:"event_id"`
	Type           *string `json:"type"`
	SpeakerID      *string `json:"speaker_id"`
	SpeakerName    *string `json:"speaker_name"`
	TranslatorID   *string `json:"translator_id"`
	TranslatorName *string `json:"translator_name"`
}

// HasSpeaker reports whether the slot names a speaker (registered or guest).
func (s *EventSpeakerSlot) HasSpeaker() bool {
	return s.SpeakerID != nil || s.SpeakerName != nil
}

// EventSong is one entry of an event setlist.
// swagger:model EventSong
type EventSong struct {
	ID        string  `json:"id"`
	EventID   string  `json:"event_id"`
	Title     string  `json:"title"`
	SongOrder int     `json:"song_order"`
	SongKey   *string `json:"song_key"`
	BPM       *int    `json:"bpm"`
}

// EventPresentation holds file metadata for slides shown at an event.
// swagger:model EventPresentation
type EventPresentation struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	FileName   string    `json:"file_name"`
	FileSize   int64     `json:"file_size"`
	FileType   string    `json:"file_type"`
	FileURL    string    `json:"file_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// EventTeamMember is a user serving on a team for a given event.
// swagger:model EventTeamMember
type EventTeamMember struct {
	ID          string  `json:"id"`
	EventTeamID string  `json:"event_team_id"`
	TeamID      string  `json:"team_id"`
	TeamName    string  `json:"team_name,omitempty"`
	UserID      string  `json:"user_id"`
	UserName    string  `json:"user_name,omitempty"`
	RoleName    *string `json:"role_name"`
	Details     *string `json:"details"`
}

// PersonInput describes a speaker or translator in a create payload.
type PersonInput struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// NormalizedType returns "user" or "guest" for a valid type (case-insensitive, trimmed), or "" otherwise.
func (p PersonInput) NormalizedType() string {
	t := strings.ToLower(strings.TrimSpace(p.Type))
	if t == SpeakerTypeUser || t == SpeakerTypeGuest {
		return t
	}
	return ""
}

// SongInput describes a setlist entry in a create payload.
type SongInput struct {
	Title string  `json:"title" validate:"required"`
	Order int     `json:"order" validate:"gte=0"`
	Key   *string `json:"key"`
	BPM   *int    `json:"bpm" validate:"omitempty,gt=0"`
}

// PresentationInput describes an uploaded presentation in a create payload.
type PresentationInput struct {
	FileName   string     `json:"fileName" validate:"required"`
	FileSize   int64      `json:"fileSize" validate:"gte=0"`
	FileType   string     `json:"fileType"`
	FileURL    string     `json:"fileUrl" validate:"required"`
	UploadedAt *time.Time `json:"uploadedAt"`
}

// TeamMemberInput is one member listed under a team key.
type TeamMemberInput struct {
	UserID  string  `json:"user_id" validate:"required"`
	Role    *string `json:"role_in_event"`
	Details *string `json:"details"`
}

// CreateEventInput is the full aggregate persisted by EventService.CreateEvent.
type CreateEventInput struct {
	Name            string
	Type            string
	StartTime       time.Time
	EndTime         time.Time
	Location        *string
	Description     *string
	IsPublic        *bool
	Status          string
	CreatedBy       string
	GroupIDs        []string
	Speakers        []PersonInput
	Translators     []PersonInput
	Songs           []SongInput
	Presentations   []PresentationInput
	TeamAssignments map[string][]TeamMemberInput
}

// EventDetail is an event together with its dependent rows.
// swagger:model EventDetail
type EventDetail struct {
	*Event
	Speakers        []*EventSpeakerSlot           `json:"speakers"`
	Translators     []*EventSpeakerSlot           `json:"translators"`
	Songs           []*EventSong                  `json:"songs"`
	Presentations   []*EventPresentation          `json:"presentations"`
	TeamAssignments map[string][]*EventTeamMember `json:"team_assignments"`
}

// Event list periods.
const (
	PeriodUpcoming = "upcoming"
	PeriodPast     = "past"
)

// EventFilter selects events for the public and admin listings.
type EventFilter struct {
	Period     string
	PublicOnly bool
	Status     string
	Types      []string
	Year       int
	Month      int
	Now        time.Time
}

// EventUpdate holds optional core field changes; nil fields are unchanged.
type EventUpdate struct {
	Name        *string
	Type        *string
	StartTime   *time.Time
	EndTime     *time.Time
	Location    *string
	Description *string
	IsPublic    *bool
	Status      *string
}

// IsEmpty reports whether no field is set.
func (u *EventUpdate) IsEmpty() bool {
	return u.Name == nil && u.Type == nil && u.StartTime == nil && u.EndTime == nil &&
		u.Location == nil && u.Description == nil && u.IsPublic == nil && u.Status == nil
}

// EventWriter performs the writes of one event aggregate on a transactional handle.
type EventWriter interface {
	InsertEvent(ctx context.Context, e *Event) error
	LinkGroup(ctx context.Context, eventID, groupID string, start, end time.Time) error
	SeedAttendance(ctx context.Context, eventID string, groupIDs []string) (int64, error)
	InsertSpeakerSlot(ctx context.Context, s *EventSpeakerSlot) error
	AttachTranslator(ctx context.Context, eventID, speakerUserID string, translatorID, translatorName *string) (bool, error)
	InsertSong(ctx context.Context, s *EventSong) error
	InsertPresentation(ctx context.Context, p *EventPresentation) error
	ActiveTeamExists(ctx context.Context, teamID string) (bool, error)
	InsertEventTeam(ctx context.Context, eventID, teamID string) (string, error)
	InsertEventTeamMember(ctx context.Context, m *EventTeamMember) error
}

// EventStore runs fn inside one transaction. The transaction is committed only
// when fn returns nil; otherwise every write made through the writer is rolled back.
type EventStore interface {
	WithinTx(ctx context.Context, fn func(w EventWriter) error) error
}

// EventRepository defines reads and single-unit updates of events.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, f EventFilter) ([]*Event, error)
	ListByGroup(ctx context.Context, groupID, scope string) ([]*Event, error)
	ListSpeakerSlots(ctx context.Context, eventID string) ([]*EventSpeakerSlot, error)
	ListSongs(ctx context.Context, eventID string) ([]*EventSong, error)
	ListPresentations(ctx context.Context, eventID string) ([]*EventPresentation, error)
	ListTeamMembers(ctx context.Context, eventID string) ([]*EventTeamMember, error)
	Update(ctx context.Context, id string, u *EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService composes, reads and maintains events.
type EventService interface {
	CreateEvent(ctx context.Context, in *CreateEventInput) (string, error)
	GetEvent(ctx context.Context, id string) (*EventDetail, error)
	ListEvents(ctx context.Context, f EventFilter) ([]*Event, error)
	ListGroupEvents(ctx context.Context, groupID, scope string) ([]*Event, error)
	UpdateEvent(ctx context.Context, id string, u *EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
}
