package service

import "context"

// IAlerterService sends operational alerts to the on-call chat
// Implementations may be absent, callers check for nil
type IAlerterService interface {
	SendAlert(ctx context.Context, message string) error
}
