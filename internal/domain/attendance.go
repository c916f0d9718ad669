package domain

import (
	"context"
	"time"
)

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceExcused = "excused"
	AttendanceLate    = "late"
)

// ValidAttendanceStatus reports whether s is a known attendance status.
func ValidAttendanceStatus(s string) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceExcused, AttendanceLate:
		return true
	}
	return false
}

// AttendanceRecord is one member's attendance at one event.
// swagger:model AttendanceRecord
type AttendanceRecord struct {
	ID        string    `json:"id" db:"id"`
	EventID   string    `json:"event_id" db:"event_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Status    string    `json:"status" db:"status"`
	Notes     *string   `json:"notes" db:"notes"`
	UserName  string    `json:"user_name" db:"user_name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AttendanceUpdate changes one attendance row.
type AttendanceUpdate struct {
	AttendanceID string  `json:"attendance_id" validate:"required,uuid"`
	Status       string  `json:"status" validate:"required,oneof=present absent excused late"`
	Notes        *string `json:"notes"`
}

// EventRef is a qualifying event for attendance statistics.
type EventRef struct {
	ID        string    `db:"id"`
	StartTime time.Time `db:"start_time"`
}

// MemberStatus is a member's recorded status for one event.
type MemberStatus struct {
	EventID string `db:"event_id"`
	UserID  string `db:"user_id"`
	Status  string `db:"status"`
}

// MemberAttendance is the per-member attendance summary of a group.
// swagger:model MemberAttendance
type MemberAttendance struct {
	UserID          string  `json:"user_id"`
	UserName        string  `json:"user_name"`
	TotalEvents     int     `json:"total_events"`
	Attended        int     `json:"attended"`
	Percentage      int     `json:"percentage"`
	LastEventStatus *string `json:"last_event_status"`
	Streak          int     `json:"streak"`
}

// AttendanceReport is the attendance summary for every member of a group.
// swagger:model AttendanceReport
type AttendanceReport struct {
	GroupID     string              `json:"group_id"`
	Scope       string              `json:"scope"`
	TotalEvents int                 `json:"total_events"`
	Members     []*MemberAttendance `json:"members"`
}

// AttendanceRepository defines attendance storage.
type AttendanceRepository interface {
	ListByEventIDs(ctx context.Context, eventIDs []string) ([]*AttendanceRecord, error)
	BulkUpdate(ctx context.Context, updates []AttendanceUpdate) (int64, error)
	// ListQualifyingEvents returns the group's events for scope, most recent first.
	ListQualifyingEvents(ctx context.Context, groupID, scope string) ([]EventRef, error)
	ListMemberStatuses(ctx context.Context, eventIDs, userIDs []string) ([]MemberStatus, error)
}

// AttendanceService reads and updates attendance and derives statistics.
type AttendanceService interface {
	GetAttendance(ctx context.Context, eventIDs []string) (map[string][]*AttendanceRecord, error)
	UpdateAttendance(ctx context.Context, updates []AttendanceUpdate) (int64, error)
	GetAttendanceStats(ctx context.Context, groupID, scope string) (*AttendanceReport, error)
}
