package realtime

import (
	"context"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

// Emitter publishes progress events. Implementations never fail the caller.
type Emitter interface {
	Emit(ctx context.Context, ev types.ProgressEvent)
}

// Publisher is the cross-process transport used by BusEmitter.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// HubEmitter delivers straight to the in-process hub.
type HubEmitter struct {
	Hub *Hub
}

func (e *HubEmitter) Emit(ctx context.Context, ev types.ProgressEvent) {
	if e == nil || e.Hub == nil {
		return
	}
	e.Hub.BroadcastEvent(ev)
}

// BusEmitter publishes through a bus whose forwarder feeds the hub on every
// instance. If publishing fails the event is delivered locally instead.
type BusEmitter struct {
	Bus      Publisher
	Fallback *Hub
	Log      *logger.Logger
}

func (e *BusEmitter) Emit(ctx context.Context, ev types.ProgressEvent) {
	if e == nil {
		return
	}
	msg := Message{Channel: GlobalChannel, Event: EventProgress, Data: ev}
	if e.Bus != nil {
		err := e.Bus.Publish(context.WithoutCancel(ctx), msg)
		if err == nil {
			return
		}
		if e.Log != nil {
			e.Log.Warn("progress bus publish failed; delivering locally", "task_id", ev.TaskID, "error", err)
		}
	}
	if e.Fallback != nil {
		e.Fallback.BroadcastEvent(ev)
	}
}

// MultiEmitter fans out to several emitters in order.
type MultiEmitter []Emitter

func (m MultiEmitter) Emit(ctx context.Context, ev types.ProgressEvent) {
	for _, e := range m {
		if e != nil {
			e.Emit(ctx, ev)
		}
	}
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, ev types.ProgressEvent)

func (f EmitterFunc) Emit(ctx context.Context, ev types.ProgressEvent) { f(ctx, ev) }
