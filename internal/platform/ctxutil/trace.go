package ctxutil

import "context"

type traceDataKey struct{}

// TraceData travels with a request. TaskID is filled from the route for task
// endpoints and by the generation service once a task is created.
type TraceData struct {
	TraceID   string
	RequestID string
	TaskID    string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

// SetTaskID records id on the request's trace data, if there is any.
func SetTaskID(ctx context.Context, id string) {
	if td := GetTraceData(ctx); td != nil && td.TaskID == "" {
		td.TaskID = id
	}
}

// TaskID returns the task the request concerns, or "".
func TaskID(ctx context.Context) string {
	if td := GetTraceData(ctx); td != nil {
		return td.TaskID
	}
	return ""
}
