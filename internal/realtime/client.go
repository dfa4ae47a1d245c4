package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

// Client is one connected progress subscriber.
type Client struct {
	ID       uuid.UUID
	Channels map[string]bool
	Outbound chan Message
	Logger   *logger.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// Done is closed when the hub has dropped the client.
func (c *Client) Done() <-chan struct{} { return c.done }
