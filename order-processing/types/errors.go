package types

// RenderError represents a failure while laying out or encoding the invoice document
type RenderError struct {
	Msg string
}

func (e *RenderError) Error() string {
	return e.Msg
}

// SettingsLookupError represents an unreachable or malformed shop settings record.
// It is always resolved to the fallback address and never leaves the resolver.
type SettingsLookupError struct {
	Msg string
}

func (e *SettingsLookupError) Error() string {
	return e.Msg
}

// DispatchError represents a transport failure for a single recipient
type DispatchError struct {
	Role    RecipientRole
	Address string
	Msg     string
}

func (e *DispatchError) Error() string {
	return string(e.Role) + " <" + e.Address + ">: " + e.Msg
}

// NoOperatorAddressError signals that no notification address could be resolved
type NoOperatorAddressError struct {
	Msg string
}

func (e *NoOperatorAddressError) Error() string {
	return e.Msg
}

// ValidationError represents an event that cannot be processed at all
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}
