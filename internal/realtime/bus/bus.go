package bus

import (
	"context"

	"github.com/yungbote/lessonplan-backend/internal/realtime"
)

// Bus carries progress messages between processes sharing one redis.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}
