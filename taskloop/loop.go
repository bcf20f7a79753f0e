// Package taskloop provides an owner loop: a goroutine which executes, one at a time and in
// submission order, the tasks posted to it from any goroutine.
//
// Objects which must only be mutated by their owner (a websocket connection and its ready state
// for example) are addressed from other goroutines through a Handle. Blocking work is started
// from a task with Scope.Background and reports back by returning the Task the owner loop must
// run next: background goroutines never touch owned state directly.
package taskloop

import (
	"context"
	"fmt"
	"sync"

	"github.com/eapache/queue"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// A unit of work executed exactly once by an owner loop.
type Task interface {
	// Run the task. The provided scope is only valid for the duration of the call and on the
	// loop goroutine.
	Run(scope *Scope)
}

// Adapter which allows the use of ordinary functions as tasks.
type TaskFunc func(scope *Scope)

// Run calls f(scope).
func (f TaskFunc) Run(scope *Scope) {
	f(scope)
}

// Owner loop which runs posted tasks in FIFO order on a single goroutine.
type Loop struct {
	// Unique identifier of the loop. Handles use it to check they are resolved by their owner.
	id uuid.UUID
	// Configuration options used by the loop.
	opts *LoopOptions
	// Mutex which protects pending, stopped and running.
	mu sync.Mutex
	// Tasks waiting to be executed.
	pending *queue.Queue
	// Set once Stop has been called: Post is rejected afterwards.
	stopped bool
	// Set once Run has been called.
	running bool
	// Channel with capacity 1 used to wake up the loop when a task is posted.
	wakeup chan struct{}
	// Closed by Stop.
	stopChannel chan struct{}
	// Closed when Run exits.
	doneChannel chan struct{}
	// Used to ensure stopChannel is closed once.
	stopSync *sync.Once
	// Tracks background goroutines started from tasks.
	background *sync.WaitGroup
	// Logger
	logger *zap.Logger
	// Tracer used to instrument task execution.
	tracer trace.Tracer
	// Number of executed tasks.
	executedCounter metric.Int64Counter
	// Number of tasks that could not be posted back by background goroutines.
	droppedCounter metric.Int64Counter
}

// # Description
//
// Factory - Return a new, non-running owner loop. Tasks can be posted before the loop runs:
// they are queued and executed once Run is called.
//
// # Inputs
//
//   - opts: Loop configuration options. If nil, default options are used.
//   - logger: Logger to use. If nil, a Nop logger is used.
//   - tracerProvider: OpenTelemetry tracer provider to use. If nil, global TracerProvider is used.
//   - meterProvider: OpenTelemetry meter provider to use. If nil, global MeterProvider is used.
//
// # Return
//
// A new loop or an error if provided options are invalid.
func NewLoop(
	opts *LoopOptions,
	logger *zap.Logger,
	tracerProvider trace.TracerProvider,
	meterProvider metric.MeterProvider) (*Loop, error) {
	// Use default options if not set
	if opts == nil {
		opts = NewLoopOptions()
	}
	// Validate options
	if err := Validate(opts); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracerProvider == nil {
		tracerProvider = otel.GetTracerProvider()
	}
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}
	meter := meterProvider.Meter(pkgName, metric.WithInstrumentationVersion(pkgVersion))
	executed, err := meter.Int64Counter(metricTasksExecuted,
		metric.WithDescription("Number of tasks executed by owner loops"))
	if err != nil {
		return nil, err
	}
	dropped, err := meter.Int64Counter(metricTasksDropped,
		metric.WithDescription("Number of tasks dropped because their owner loop had stopped"))
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	return &Loop{
		id:              id,
		opts:            opts,
		pending:         queue.New(),
		wakeup:          make(chan struct{}, 1),
		stopChannel:     make(chan struct{}),
		doneChannel:     make(chan struct{}),
		stopSync:        &sync.Once{},
		background:      &sync.WaitGroup{},
		logger:          logger.With(zap.String("loop", id.String())),
		tracer:          tracerProvider.Tracer(pkgName, trace.WithInstrumentationVersion(pkgVersion)),
		executedCounter: executed,
		droppedCounter:  dropped,
	}, nil
}

// Return the unique identifier of the loop.
func (loop *Loop) Id() uuid.UUID {
	return loop.id
}

// # Description
//
// Post a task to the loop. The task will be run once, on the loop goroutine, after all tasks
// previously posted to this loop. Post never blocks and can be called from any goroutine.
//
// # Return
//
// nil on success, ErrLoopStopped if Stop has been called or a LoopFullError if the loop has
// reached its maximum number of pending tasks.
func (loop *Loop) Post(task Task) error {
	return loop.post(task, true)
}

// Add a task to the pending queue and wake the loop up. The pending tasks limit only applies
// when bounded is true: background results are accepted as long as the loop has not stopped so
// an operation started by the loop always gets its outcome back.
func (loop *Loop) post(task Task, bounded bool) error {
	if task == nil {
		return fmt.Errorf("provided task is nil")
	}
	loop.mu.Lock()
	if loop.stopped {
		loop.mu.Unlock()
		return ErrLoopStopped
	}
	if bounded && loop.opts.MaxPendingTasks > 0 && loop.pending.Length() >= loop.opts.MaxPendingTasks {
		loop.mu.Unlock()
		return LoopFullError{Capacity: loop.opts.MaxPendingTasks}
	}
	loop.pending.Add(task)
	loop.mu.Unlock()
	// Wake the loop up - a pending signal is enough
	select {
	case loop.wakeup <- struct{}{}:
	default:
	}
	return nil
}

// # Description
//
// Post fn to the loop and block until it has run or until ctx is done. Used by code which does
// not run on the loop to interact with loop-owned objects.
//
// # Return
//
// nil once fn has run, the Post error or the context error.
func (loop *Loop) Do(ctx context.Context, fn func(scope *Scope)) error {
	done := make(chan struct{})
	err := loop.Post(TaskFunc(func(scope *Scope) {
		defer close(done)
		fn(scope)
	}))
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// # Description
//
// Run the loop on the calling goroutine, which becomes the owner goroutine. Run blocks until
// Stop is called or ctx is done.
//
// When Stop is called and DrainOnStop is enabled, tasks already queued are executed before Run
// returns. Tasks left in the queue are dropped.
//
// # Return
//
// nil when stopped by Stop, the context error when ctx is done, or an error if the loop is
// already running or has been stopped before running.
func (loop *Loop) Run(ctx context.Context) error {
	loop.mu.Lock()
	if loop.running {
		loop.mu.Unlock()
		return fmt.Errorf("loop is already running")
	}
	if loop.stopped {
		loop.mu.Unlock()
		return ErrLoopStopped
	}
	loop.running = true
	loop.mu.Unlock()
	defer close(loop.doneChannel)
	// Context given to tasks and background goroutines - canceled when the loop exits
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	loop.logger.Debug("owner loop started")
	for {
		select {
		case <-ctx.Done():
			loop.stopPosting()
			loop.dropPending()
			loop.logger.Debug("owner loop interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		case <-loop.stopChannel:
			if loop.opts.DrainOnStop {
				loop.runPending(loopCtx)
			}
			loop.dropPending()
			loop.logger.Debug("owner loop stopped")
			return nil
		case <-loop.wakeup:
			loop.runPending(loopCtx)
		}
	}
}

// # Description
//
// Stop the loop: no task can be posted anymore and Run exits. If the loop is running, Stop
// blocks until Run has returned and background goroutines started by tasks have exited, or
// until ctx is done.
func (loop *Loop) Stop(ctx context.Context) error {
	loop.stopPosting()
	loop.stopSync.Do(func() { close(loop.stopChannel) })
	loop.mu.Lock()
	running := loop.running
	loop.mu.Unlock()
	if !running {
		return nil
	}
	select {
	case <-loop.doneChannel:
	case <-ctx.Done():
		return ctx.Err()
	}
	// Wait background goroutines: their context is canceled once Run has exited
	waited := make(chan struct{})
	go func() {
		loop.background.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

/*************************************************************************************************/
/* UTILS                                                                                         */
/*************************************************************************************************/

func (loop *Loop) stopPosting() {
	loop.mu.Lock()
	loop.stopped = true
	loop.mu.Unlock()
}

// Execute queued tasks until the queue is empty or, if DrainOnStop is disabled, until Stop is
// called.
func (loop *Loop) runPending(ctx context.Context) {
	for {
		if !loop.opts.DrainOnStop {
			select {
			case <-loop.stopChannel:
				return
			default:
			}
		}
		loop.mu.Lock()
		if loop.pending.Length() == 0 {
			loop.mu.Unlock()
			return
		}
		task := loop.pending.Remove().(Task)
		loop.mu.Unlock()
		loop.execute(ctx, task)
	}
}

// Drop all queued tasks.
func (loop *Loop) dropPending() {
	loop.mu.Lock()
	count := loop.pending.Length()
	for loop.pending.Length() > 0 {
		loop.pending.Remove()
	}
	loop.mu.Unlock()
	if count > 0 {
		loop.logger.Warn("pending tasks dropped", zap.Int("count", count))
		loop.droppedCounter.Add(context.Background(), int64(count),
			metric.WithAttributes(attribute.String(attrLoopId, loop.id.String())))
	}
}

// Run a single task with its own span and scope.
func (loop *Loop) execute(ctx context.Context, task Task) {
	ctx, span := loop.tracer.Start(ctx, spanLoopTask,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(attrLoopId, loop.id.String()),
			attribute.String(attrTaskType, fmt.Sprintf("%T", task)),
		))
	defer span.End()
	task.Run(&Scope{ctx: ctx, loop: loop})
	loop.executedCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String(attrLoopId, loop.id.String())))
	span.SetStatus(codes.Ok, codes.Ok.String())
}

// Record a task which could not be posted back to the loop.
func (loop *Loop) drop(ctx context.Context, task Task, err error) {
	loop.logger.Warn("task dropped", zap.String("task", fmt.Sprintf("%T", task)), zap.Error(err))
	loop.droppedCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String(attrLoopId, loop.id.String())))
}
