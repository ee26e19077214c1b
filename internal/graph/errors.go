package graph

// Error codes reported in the "extensions" of a GraphQL error.
const (
	ErrCodeChannelNotFound = "channel_not_found"
	ErrCodeMemberNotFound  = "member_not_found"
	ErrCodeUnavailable     = "unavailable"
	ErrCodeInternal        = "internal"

	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// ResolverError wraps a code and human-readable message.
type ResolverError struct {
	Code    string
	Message string
	Err     error
}

func (e *ResolverError) Error() string {
	return e.Message
}

func (e *ResolverError) Unwrap() error {
	return e.Err
}

// Extensions exposes the code to clients.
func (e *ResolverError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

func resolverError(code, msg string, err error) *ResolverError {
	return &ResolverError{Code: code, Message: msg, Err: err}
}
