package payment

import "context"

// Status is a payment state reported by the backend's check-status
// endpoint.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further status checks are meaningful.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Succeeded reports whether the payment completed successfully.
func (s Status) Succeeded() bool {
	return s == StatusSuccess || s == StatusCompleted
}

// StatusChecker queries the backend for a payment's current status.
type StatusChecker interface {
	CheckStatus(ctx context.Context, reference string) (Status, error)
}

// CheckFunc adapts a function to the StatusChecker interface.
type CheckFunc func(ctx context.Context, reference string) (Status, error)

func (f CheckFunc) CheckStatus(ctx context.Context, reference string) (Status, error) {
	return f(ctx, reference)
}
