package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Ownership codes
	AlreadyOwned Code = 200001
	NotOwned     Code = 200002
	NotCompleted Code = 200003

	// Gift codes
	SelfGift      Code = 300001
	DuplicateGift Code = 300002
	NotPending    Code = 300003

	// Watchlist codes
	NotEarnable    Code = 400001
	NotTracked     Code = 400002
	TaskNotAllowed Code = 400003

	// Social graph codes
	SelfFollow       Code = 500001
	AlreadyFollowing Code = 500002
	NotFollowing     Code = 500003
)

// Kind classifies a code for the transport layer.
type Kind string

const (
	KindUnknown         Kind = "Unknown"
	KindNotFound        Kind = "NotFound"
	KindForbidden       Kind = "Forbidden"
	KindConflict        Kind = "Conflict"
	KindInvalidState    Kind = "InvalidState"
	KindValidationError Kind = "ValidationError"
	KindUnauthenticated Kind = "Unauthenticated"
)

func (c Code) Kind() Kind {
	switch c {
	case NotFound, NotOwned, NotCompleted, NotTracked, NotFollowing:
		return KindNotFound
	case PermissionDenied:
		return KindForbidden
	case AlreadyExists, AlreadyOwned, DuplicateGift, SelfGift, NotPending, SelfFollow, AlreadyFollowing:
		return KindConflict
	case Unavailable, NotEarnable, TaskNotAllowed:
		return KindInvalidState
	case BadRequest:
		return KindValidationError
	case Unauthenticated:
		return KindUnauthenticated
	}

	return KindUnknown
}
