package services

import (
	"errors"
	"fmt"

	"github.com/tausug-confession/confession-backend/internal/repository"
)

// Kind classifies a service failure; handlers map it to an HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindForbidden
	KindNotFound
	KindConflict
	KindSetupRequired
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindSetupRequired:
		return "setup_required"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	// Fields carries per-field validation messages keyed by json name.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind and message so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func invalid(format string, args ...interface{}) *Error {
	return newError(KindValidation, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

var (
	ErrInvalidCredentials = newError(KindAuthentication, "Invalid email or password")
	ErrInvalidToken       = newError(KindAuthentication, "Invalid token")
	ErrTokenExpired       = newError(KindAuthentication, "Token expired")
	ErrTokenRequired      = newError(KindAuthentication, "Access token required")
	ErrAccountSuspended   = newError(KindForbidden, "Account suspended")
	ErrAdminRequired      = newError(KindForbidden, "Admin access required")
	ErrAdminLoginDenied   = newError(KindAuthentication, "Access denied. Admin privileges required.")
	ErrModeratorRequired  = newError(KindForbidden, "Moderator access required")
	ErrInsufficientRole   = newError(KindForbidden, "Insufficient permissions")

	ErrEmailTaken    = newError(KindConflict, "Email already exists")
	ErrUsernameTaken = newError(KindConflict, "Username already exists")
	ErrNotUpgradable = newError(KindValidation, "Only users can be upgraded to members")

	ErrUserNotFound       = newError(KindNotFound, "User not found")
	ErrConfessionNotFound = newError(KindNotFound, "Confession not found")
	ErrChapterNotFound    = newError(KindNotFound, "Chapter not found")
	ErrCommentNotFound    = newError(KindNotFound, "Comment not found")
	ErrBadgeNotFound      = newError(KindNotFound, "Badge not found")
	ErrReportNotFound     = newError(KindNotFound, "Report not found")

	ErrConfessionForbidden   = newError(KindForbidden, "You do not have access to this confession")
	ErrNotConfessionOwner    = newError(KindForbidden, "Not authorized to modify this confession")
	ErrNotCommentOwner       = newError(KindForbidden, "Not authorized to edit this comment")
	ErrPublishRequiresMember = newError(KindForbidden, "Only members can publish confessions")
	ErrRemovedConfession     = newError(KindForbidden, "Removed confessions can only be restored by a moderator")

	ErrUnpublishedConfession = newError(KindValidation, "Cannot comment on unpublished confession")
	ErrParentMismatch        = newError(KindValidation, "Parent comment does not belong to this confession")

	ErrSelfFollow       = newError(KindValidation, "Cannot follow yourself")
	ErrAlreadyFollowing = newError(KindConflict, "Already following this user")
	ErrNotFollowing     = newError(KindNotFound, "Follow relationship not found")

	ErrAlreadyAwarded = newError(KindConflict, "User already has this badge")

	ErrSelfRoleChange = newError(KindValidation, "Cannot change your own role")
	ErrSelfBan        = newError(KindValidation, "Cannot ban yourself")
	ErrSelfDelete     = newError(KindValidation, "Cannot delete yourself")
	ErrReportTarget   = newError(KindValidation, "A report must reference a confession, comment or user")
	ErrInvalidAction  = newError(KindValidation, "Invalid moderation action")

	ErrSetupRequired = newError(KindSetupRequired, "Database tables are not set up")
)

// storeErr converts a repository failure into a service error. notFound is
// returned for repository.ErrNotFound when non-nil.
func storeErr(err error, notFound *Error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, repository.ErrNotProvisioned):
		return &Error{Kind: KindSetupRequired, Message: ErrSetupRequired.Message, Err: err}
	default:
		return &Error{Kind: KindInternal, Message: op, Err: err}
	}
}
