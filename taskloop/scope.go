package taskloop

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Execution scope handed by a loop to the task it runs. A Scope cannot be built outside of this
// package: holding one proves the code runs on the loop that created it.
type Scope struct {
	// Context bound to the task execution. Canceled when the loop exits.
	ctx context.Context
	// Loop which runs the task.
	loop *Loop
}

// Return the context bound to the task execution.
func (scope *Scope) Context() context.Context {
	return scope.ctx
}

// Return the loop which runs the task.
func (scope *Scope) Loop() *Loop {
	return scope.loop
}

// # Description
//
// Start work on a new background goroutine. The work function receives a context canceled when
// the loop exits and returns the task the loop must run with its results, or nil. The returned
// task is posted to the loop even when the loop has reached its maximum number of pending tasks;
// if the loop has stopped meanwhile, it is dropped.
//
// The work function must not use the scope: it does not run on the loop.
func (scope *Scope) Background(name string, work func(ctx context.Context) Task) {
	loop := scope.loop
	// Link the background span to the task span without making it a child: the task ends first
	link := trace.LinkFromContext(scope.ctx)
	ctx := scope.ctx
	loop.background.Add(1)
	go func() {
		defer loop.background.Done()
		bctx, span := loop.tracer.Start(ctx, spanLoopBackground,
			trace.WithNewRoot(),
			trace.WithLinks(link),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attribute.String(attrLoopId, loop.id.String()),
				attribute.String(attrBackgroundName, name),
			))
		next := work(bctx)
		span.End()
		if next == nil {
			return
		}
		if err := loop.post(next, false); err != nil {
			loop.drop(bctx, next, err)
		}
	}()
}
