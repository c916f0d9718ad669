package domain

import "fmt"

// Kind classifies a domain error for the transport layer.
type Kind int

const (
	KindInvalid Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is an expected domain failure. It carries a flat string code that is
// reported to clients as-is in the response envelope.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is a domain error with the same code, so that
// errors built with a custom message still match the pre-declared values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError returns a domain error.
func NewError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Generic errors.
var (
	ErrNotFound     = NewError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrConflict     = NewError(KindConflict, "CONFLICT", "Resource already exists")
	ErrInvalidInput = NewError(KindInvalid, "INVALID_INPUT", "Invalid input")
	ErrForbidden    = NewError(KindForbidden, "FORBIDDEN", "Forbidden")
)

// Event and attendance errors.
var (
	ErrEventNotFound    = NewError(KindNotFound, "EVENT_NOT_FOUND", "Event not found")
	ErrEventSlotTaken   = NewError(KindConflict, "EVENT_SLOT_TAKEN", "Event already exists in this group at this time")
	ErrInvalidTimeRange = NewError(KindInvalid, "INVALID_TIME_RANGE", "Start time must not be after end time")
	ErrNoEventIDs       = NewError(KindInvalid, "NO_EVENT_IDS", "No event ids provided")
	ErrNoUpdates        = NewError(KindInvalid, "NO_UPDATES", "No attendance updates provided")
	ErrInvalidStatus    = NewError(KindInvalid, "INVALID_STATUS", "Invalid attendance status")
	ErrInvalidScope     = NewError(KindInvalid, "INVALID_SCOPE", "Scope must be group or combined")
)

// Group errors.
var (
	ErrGroupNotFound       = NewError(KindNotFound, "GROUP_NOT_FOUND", "Group not found")
	ErrGroupHasEvents      = NewError(KindConflict, "GROUP_HAS_EVENTS", "Group still has events")
	ErrDuplicateLeader     = NewError(KindInvalid, "DUPLICATE_LEADER", "Leader and co-leader must be different users")
	ErrUserAlreadyAssigned = NewError(KindConflict, "USER_ALREADY_ASSIGNED", "User already belongs to a group")
	ErrUserNotInGroup      = NewError(KindNotFound, "USER_NOT_IN_GROUP", "User is not a member of any group")
	ErrMemberNotFound      = NewError(KindNotFound, "MEMBER_NOT_FOUND", "Member not found")
	ErrInvalidRole         = NewError(KindInvalid, "INVALID_ROLE", "Role must be member, leader or co-leader")
	ErrInvalidCategory     = NewError(KindInvalid, "INVALID_CATEGORY", "Category must be adult or youth")
	ErrCannotRemove        = NewError(KindConflict, "CANNOT_REMOVE", "Leader or co-leader cannot be removed")
)

// Team errors.
var (
	ErrTeamNotFound     = NewError(KindNotFound, "TEAM_NOT_FOUND", "Team not found")
	ErrTeamProtected    = NewError(KindForbidden, "TEAM_PROTECTED", "Main teams cannot be deleted")
	ErrTeamExists       = NewError(KindConflict, "TEAM_EXISTS", "Team already exists")
	ErrNoValidMembers   = NewError(KindInvalid, "NO_VALID_MEMBERS", "No valid members to add")
	ErrPositionExists   = NewError(KindConflict, "POSITION_EXISTS", "Position already exists")
	ErrPositionInUse    = NewError(KindConflict, "POSITION_IN_USE", "Position is assigned to team members")
	ErrPositionNotFound = NewError(KindNotFound, "POSITION_NOT_FOUND", "Position not found")
)

// User and auth errors.
var (
	ErrUserNotFound       = NewError(KindNotFound, "USER_NOT_FOUND", "User not found")
	ErrDuplicateEmail     = NewError(KindConflict, "EMAIL_ALREADY_EXISTS", "Email already registered")
	ErrInvalidCredentials = NewError(KindUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrAccountInactive    = NewError(KindForbidden, "ACCOUNT_INACTIVE", "Account is inactive")
	ErrInvalidToken       = NewError(KindUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
	ErrRoleNotFound       = NewError(KindNotFound, "ROLE_NOT_FOUND", "Role not found")
	ErrNoFieldsToUpdate   = NewError(KindInvalid, "NO_FIELDS", "No fields to update")
)

// Video errors.
var (
	ErrVideoNotFound = NewError(KindNotFound, "VIDEO_NOT_FOUND", "Video not found")
)
