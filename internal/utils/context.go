package utils

// contextKey is a type used for context keys to avoid conflicts with other packages' context keys.
type contextKey struct {
	name string
}

// Returns string representation of the context key.
func (c *contextKey) String() string {
	return c.name
}

// Keys of values stored on the gin context. gin stores values by string, so handlers use Key.String().
var (
	TraceIdKey          = &contextKey{"traceId"}
	CurrentUserKey      = &contextKey{"currentUser"}
	SessionIdKey        = &contextKey{"sessionId"}
	LocaleKey           = &contextKey{"locale"}
	SanitizedPayloadKey = &contextKey{"sanitizedPayload"}
	FormErrorsKey       = &contextKey{"formErrors"}
)
