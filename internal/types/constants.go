package types

const (
	ContextUserKey = "user"

	// MessageServerError is shown in place of any internal failure.
	MessageServerError = "Server error"
)
