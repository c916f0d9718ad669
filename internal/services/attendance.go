package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"churchadmin/internal/domain"
)

type attendanceService struct {
	attendanceRepo domain.AttendanceRepository
	groupRepo      domain.GroupRepository
	contextTimeout time.Duration
}

func NewAttendanceService(attendanceRepo domain.AttendanceRepository, groupRepo domain.GroupRepository, timeout time.Duration) domain.AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		groupRepo:      groupRepo,
		contextTimeout: timeout,
	}
}

// GetAttendance returns the attendance rows of each requested event, keyed by event id.
// Events without rows map to an empty slice.
func (s *attendanceService) GetAttendance(ctx context.Context, eventIDs []string) (map[string][]*domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ids := dedupe(eventIDs)
	if len(ids) == 0 {
		return nil, domain.ErrNoEventIDs
	}
	records, err := s.attendanceRepo.ListByEventIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}

	byEvent := make(map[string][]*domain.AttendanceRecord, len(ids))
	for _, id := range ids {
		byEvent[id] = make([]*domain.AttendanceRecord, 0)
	}
	for _, r := range records {
		byEvent[r.EventID] = append(byEvent[r.EventID], r)
	}
	return byEvent, nil
}

// UpdateAttendance applies all updates in one statement and returns the number of rows changed.
func (s *attendanceService) UpdateAttendance(ctx context.Context, updates []domain.AttendanceUpdate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if len(updates) == 0 {
		return 0, domain.ErrNoUpdates
	}
	for _, u := range updates {
		if !domain.ValidAttendanceStatus(u.Status) {
			return 0, domain.ErrInvalidStatus.WithMessage("Invalid attendance status %q", u.Status)
		}
	}
	return s.attendanceRepo.BulkUpdate(ctx, updates)
}

// GetAttendanceStats summarizes every group member's attendance over the group's qualifying events.
func (s *attendanceService) GetAttendanceStats(ctx context.Context, groupID, scope string) (*domain.AttendanceReport, error) {
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

	events, err := s.attendanceRepo.ListQualifyingEvents(ctx, groupID, scope)
	if err != nil {
		return nil, fmt.Errorf("list qualifying events: %w", err)
	}
	members, err := s.groupRepo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	report := &domain.AttendanceReport{
		GroupID:     groupID,
		Scope:       scope,
		TotalEvents: len(events),
		Members:     make([]*domain.MemberAttendance, 0, len(members)),
	}
	if len(members) == 0 {
		return report, nil
	}

	eventIDs := make([]string, len(events))
	for i, e := range events {
		eventIDs[i] = e.ID
	}
	userIDs := make([]string, len(members))
	for i, m := range members {
		userIDs[i] = m.UserID
	}
	statuses, err := s.attendanceRepo.ListMemberStatuses(ctx, eventIDs, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list member statuses: %w", err)
	}

	report.Members = computeMemberStats(events, members, statuses)
	return report, nil
}

// computeMemberStats derives per-member statistics. events must be ordered most recent first.
func computeMemberStats(events []domain.EventRef, members []*domain.GroupMember, statuses []domain.MemberStatus) []*domain.MemberAttendance {
	byUser := make(map[string]map[string]string, len(members))
	for _, st := range statuses {
		if byUser[st.UserID] == nil {
			byUser[st.UserID] = make(map[string]string)
		}
		byUser[st.UserID][st.EventID] = st.Status
	}

	total := len(events)
	out := make([]*domain.MemberAttendance, 0, len(members))
	for _, m := range members {
		recorded := byUser[m.UserID]
		stats := &domain.MemberAttendance{
			UserID:      m.UserID,
			UserName:    domain.ShortName(m.FirstName, m.LastName),
			TotalEvents: total,
		}

		streakOpen := true
		for _, e := range events {
			status, ok := recorded[e.ID]
			if ok && stats.LastEventStatus == nil {
				last := status
				stats.LastEventStatus = &last
			}
			present := ok && status == domain.AttendancePresent
			if present {
				stats.Attended++
			}
			if streakOpen {
				if present {
					stats.Streak++
				} else {
					streakOpen = false
				}
			}
		}
		stats.Percentage = percentage(stats.Attended, total)
		out = append(out, stats)
	}
	return out
}

func percentage(attended, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(attended) / float64(total) * 100))
}
