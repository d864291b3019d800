package infrastructure

import "context"

// MessagePublisher sends events to the user_events topic
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
