package erp

// DocumentStatus is the send lifecycle state of a sales document
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "PENDING"
	DocumentStatusSent      DocumentStatus = "SENT"
	DocumentStatusFailed    DocumentStatus = "FAILED"
	DocumentStatusCancelled DocumentStatus = "CANCELLED"
)

// AllDocumentStatuses lists every status in lifecycle order
var AllDocumentStatuses = []DocumentStatus{
	DocumentStatusPending,
	DocumentStatusSent,
	DocumentStatusFailed,
	DocumentStatusCancelled,
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known value
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusSent, DocumentStatusFailed, DocumentStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for statuses that never change again
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusSent || s == DocumentStatusCancelled
}

// CanTransitionTo checks if a transition to target is allowed
func (s DocumentStatus) CanTransitionTo(target DocumentStatus) bool {
	switch s {
	case DocumentStatusPending:
		return target == DocumentStatusSent || target == DocumentStatusFailed || target == DocumentStatusCancelled
	case DocumentStatusFailed:
		return target == DocumentStatusSent || target == DocumentStatusFailed || target == DocumentStatusCancelled
	default:
		return false
	}
}

// CanRetry reports whether a document in this status may be sent
func (s DocumentStatus) CanRetry() bool {
	return s == DocumentStatusPending || s == DocumentStatusFailed
}

// CanCancel reports whether a document in this status may be cancelled
func (s DocumentStatus) CanCancel() bool {
	return s == DocumentStatusPending || s == DocumentStatusFailed
}
