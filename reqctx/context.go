//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package reqctx

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bassosimone/runtimex"
	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/fiber"
)

var nextRequestID atomic.Uint64

// normalState holds the fields live only in [ModeNormal]. A [Context] in
// recording mode never allocates this.
type normalState struct {
	enqueueReply func(mcroute.Reply)
	reqComplete  func()

	cfg ConfigSnapshot

	replyOnce sync.Once
	reply     mcroute.Reply

	replyLogger  mcroute.ReplyLogger
	extraLoggers []mcroute.ReplyLogger
}

// recordingState holds the fields live only in [ModeRecording].
type recordingState struct {
	dest  DestinationVisitor
	split ShardSplitVisitor
	done  chan<- struct{}

	closeOnce sync.Once
}

// Context is the per-request state every [RouteHandle] invocation carries.
// The zero value is not usable; construct with [New], [NewRecording], or
// [NewRecordingNotify].
type Context struct {
	mu sync.Mutex

	id     uint64
	spanID string
	worker *fiber.Worker

	req              mcroute.Request
	priority         mcroute.Priority
	failoverDisabled bool
	senderID         uint64
	userIP           string

	mode      Mode
	normal    *normalState
	recording *recordingState

	state State
	bg    sync.WaitGroup

	logger mcroute.SLogger
}

// New constructs a normal-mode [*Context] under exclusive ownership:
// enqueueReply is invoked exactly once, by [Context.SendReply]; reqComplete
// is invoked exactly once, strictly afterward, once every background
// goroutine the context spawned has finished.
func New(
	worker *fiber.Worker, req mcroute.Request,
	enqueueReply func(mcroute.Reply), reqComplete func(), priority mcroute.Priority) *Context {
	runtimex.Assert(worker != nil)
	runtimex.Assert(enqueueReply != nil)
	runtimex.Assert(reqComplete != nil)

	c := &Context{
		id:     nextRequestID.Add(1),
		spanID: mcroute.NewSpanID(),
		worker: worker,
		req:    req,
		priority: priority,
		mode:   ModeNormal,
		normal: &normalState{enqueueReply: enqueueReply, reqComplete: reqComplete},
		state:  StateNew,
		logger: mcroute.DefaultSLogger(),
	}
	c.logger.Info("requestAccepted",
		slog.Uint64("requestID", c.id),
		slog.String("spanID", c.spanID),
		slog.String("mode", c.mode.String()),
	)
	worker.TrackRequest(c.id, c.abortOnDrain)
	return c
}

// abortOnDrain is the callback registered with [fiber.Worker.TrackRequest]:
// if the worker's drain deadline expires before c has replied on its own,
// this forces it to complete with [mcroute.Aborted] instead of hanging.
func (c *Context) abortOnDrain() {
	c.SendReply(mcroute.NewErrorReply(mcroute.Aborted, "worker drain deadline exceeded"))
}

// NewRecording constructs a recording-mode [*Context]. No configuration
// snapshot is needed since recording never dispatches to upstream transport.
func NewRecording(worker *fiber.Worker, dest DestinationVisitor, split ShardSplitVisitor) *Context {
	runtimex.Assert(worker != nil)
	return &Context{
		id:        nextRequestID.Add(1),
		spanID:    mcroute.NewSpanID(),
		worker:    worker,
		mode:      ModeRecording,
		recording: &recordingState{dest: dest, split: split},
		state:     StateNew,
		logger:    mcroute.DefaultSLogger(),
	}
}

// NewRecordingNotify is [NewRecording] plus a channel closed once the
// context's background work finishes (the [Context.Close] call plus any
// goroutines spawned before it), the Go rendition of signaling a baton.
func NewRecordingNotify(
	worker *fiber.Worker, done chan<- struct{}, dest DestinationVisitor, split ShardSplitVisitor) *Context {
	c := NewRecording(worker, dest, split)
	c.recording.done = done
	return c
}

// SetLogger installs the [mcroute.SLogger] used for lifecycle events.
// Defaults to [mcroute.DefaultSLogger] (a no-op) if never called. The
// requestAccepted event is logged inside [New], before SetLogger can be
// called, so it always goes to the default logger.
func (c *Context) SetLogger(logger mcroute.SLogger) {
	runtimex.Assert(logger != nil)
	c.logger = logger
}

// SetUserIP records the originating client IP, surfaced via [Context.UserIP].
func (c *Context) SetUserIP(ip string) {
	c.userIP = ip
}

// SetSenderID records an opaque per-connection sender identifier, surfaced
// via [Context.SenderID].
func (c *Context) SetSenderID(id uint64) {
	c.senderID = id
}

// SetFailoverDisabled forces every [route.Failover] this context passes
// through to contact only its first child.
func (c *Context) SetFailoverDisabled(disabled bool) {
	c.failoverDisabled = disabled
}

// SetReplyLogger installs the primary [mcroute.ReplyLogger].
func (c *Context) SetReplyLogger(logger mcroute.ReplyLogger) {
	runtimex.Assert(c.mode == ModeNormal)
	c.normal.replyLogger = logger
}

// AddReplyLogger appends an additional [mcroute.ReplyLogger].
func (c *Context) AddReplyLogger(logger mcroute.ReplyLogger) {
	runtimex.Assert(c.mode == ModeNormal)
	c.normal.extraLoggers = append(c.normal.extraLoggers, logger)
}

// Process attaches a configuration snapshot and transitions the context
// from [StateNew] to [StateProcessing]. Returns [ErrAlreadyProcessed] if
// called more than once.
func (c *Context) Process(cfg ConfigSnapshot) error {
	runtimex.Assert(c.mode == ModeNormal)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateNew {
		return ErrAlreadyProcessed
	}
	c.normal.cfg = cfg
	c.state = StateProcessing
	return nil
}

// Spawn starts fn on a new goroutine tracked by the context's background
// work accounting: [Context.SendReply]/[Context.Close] will not trigger
// their completion callback until every goroutine started this way has
// returned. The same *Context pointer should be passed into fn so the
// spawned goroutine observes the caller's request the same way a
// synchronous child would.
func (c *Context) Spawn(fn func()) {
	c.bg.Add(1)
	c.worker.Spawn(func() {
		defer c.bg.Done()
		fn()
	})
}

// SendReply stores reply if none is stored yet (a second call is ignored)
// and invokes the enqueueReply callback passed to [New] exactly once.
// Panics if called on a recording-mode context: recording contexts never
// produce a client-visible reply.
func (c *Context) SendReply(reply mcroute.Reply) {
	runtimex.Assert(c.mode == ModeNormal)

	c.normal.replyOnce.Do(func() {
		c.mu.Lock()
		c.normal.reply = reply
		c.state = StateReplied
		c.mu.Unlock()

		c.worker.UntrackRequest(c.id)

		c.logger.Info("requestReplied",
			slog.Uint64("requestID", c.id),
			slog.String("spanID", c.spanID),
			slog.String("result", reply.Result.String()),
		)

		c.normal.enqueueReply(reply)
		c.awaitCompletion()
	})
}

// awaitCompletion starts the watcher that transitions the context to
// [StateCompleted] and runs the caller's completion callback, hopped to the
// worker's main goroutine, once every spawned background goroutine has
// finished. It is safe to start this watcher here because every [Spawn]
// call for this request happened synchronously during the Route call that
// produced reply, which by construction has already returned.
func (c *Context) awaitCompletion() {
	go func() {
		c.bg.Wait()
		c.worker.RunInMain(func() {
			c.mu.Lock()
			c.state = StateCompleted
			c.mu.Unlock()

			c.logger.Info("requestCompleted",
				slog.Uint64("requestID", c.id),
				slog.String("spanID", c.spanID),
			)
			c.normal.reqComplete()
		})
	}()
}

// Dispatch is the worker boundary: it fetches the routing tree attached by
// [Context.Process], runs it against ctx's request, and sends the result via
// [Context.SendReply]. A panic escaping the route tree (a programmer error
// in a [RouteHandle] implementation, never an expected failure mode) is
// recovered here and converted to a [mcroute.LocalError] reply rather than
// crashing the worker goroutine; the context still completes normally.
// Returns [ErrNotAvailable] if [Context.Process] was never called on c.
// Panics if called on a recording-mode context.
func (c *Context) Dispatch(ctx context.Context, op mcroute.Op) error {
	runtimex.Assert(c.mode == ModeNormal)

	root, err := c.ProxyRoute()
	if err != nil {
		return err
	}

	reply := c.routeRecovering(ctx, root, op)
	c.SendReply(reply)
	return nil
}

// routeRecovering calls root.Route, converting a panic into a LocalError
// reply instead of letting it unwind past the worker boundary.
func (c *Context) routeRecovering(ctx context.Context, root RouteHandle, op mcroute.Op) (reply mcroute.Reply) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Info("routePanic",
				slog.Uint64("requestID", c.id),
				slog.String("spanID", c.spanID),
				slog.Any("recovered", r),
			)
			reply = mcroute.NewErrorReply(mcroute.LocalError, fmt.Sprintf("panic: %v", r))
		}
	}()
	return root.Route(ctx, c, c.req, op)
}

// Close marks a recording-mode context as done traversing. Once every
// background goroutine it spawned finishes, the notify channel passed to
// [NewRecordingNotify] (if any) is closed. Panics if called on a
// normal-mode context.
func (c *Context) Close() {
	runtimex.Assert(c.mode == ModeRecording)

	c.recording.closeOnce.Do(func() {
		go func() {
			c.bg.Wait()
			if c.recording.done != nil {
				close(c.recording.done)
			}
		}()
	})
}

// RecordDestination invokes the destination visitor passed to
// [NewRecording] when in recording mode; no-op in normal mode.
func (c *Context) RecordDestination(dest mcroute.DestinationDescription) {
	if c.mode != ModeRecording {
		return
	}
	if c.recording.dest != nil {
		c.recording.dest(dest)
	}
}

// RecordShardSplitter invokes the shard-splitter visitor passed to
// [NewRecording] when in recording mode; no-op in normal mode.
func (c *Context) RecordShardSplitter(splitter mcroute.ShardSplitterDescription) {
	if c.mode != ModeRecording {
		return
	}
	if c.recording.split != nil {
		c.recording.split(splitter)
	}
}

// OnReplyReceived logs a stats sample via the primary and additional
// [mcroute.ReplyLogger]s when in normal mode; no-op in recording mode.
func (c *Context) OnReplyReceived(
	client mcroute.ClientDescription, req mcroute.Request, reply mcroute.Reply,
	start, end time.Time, op mcroute.Op) {
	if c.mode != ModeNormal {
		return
	}
	if c.normal.replyLogger != nil {
		c.normal.replyLogger.LogReply(client, req, reply, start, end, op)
	}
	for _, logger := range c.normal.extraLoggers {
		logger.LogReply(client, req, reply, start, end, op)
	}
}

// SenderID returns the opaque per-connection sender identifier set via
// [Context.SetSenderID].
func (c *Context) SenderID() uint64 {
	return c.senderID
}

// RequestID returns the context's stable, monotonic per-process request id.
func (c *Context) RequestID() uint64 {
	return c.id
}

// SpanID returns the context's UUIDv7 span id, used to correlate this
// request's log lines across goroutines.
func (c *Context) SpanID() string {
	return c.spanID
}

// Request returns the original, immutable request this context carries.
func (c *Context) Request() mcroute.Request {
	return c.req
}

// Priority returns the context's priority.
func (c *Context) Priority() mcroute.Priority {
	return c.priority
}

// FailoverDisabled reports whether every [route.Failover] reached through
// this context should contact only its first child.
func (c *Context) FailoverDisabled() bool {
	return c.failoverDisabled
}

// UserIP returns the originating client IP, or "" if never set.
func (c *Context) UserIP() string {
	return c.userIP
}

// Mode returns the context's mode.
func (c *Context) Mode() Mode {
	return c.mode
}

// State returns the context's current lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ProxyRoute returns the routing tree's root handle. Returns
// [ErrNotAvailable] in recording mode or before [Context.Process] has run.
func (c *Context) ProxyRoute() (RouteHandle, error) {
	cfg, err := c.ProxyConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Root(), nil
}

// ProxyConfig returns the configuration snapshot attached by
// [Context.Process]. Returns [ErrNotAvailable] in recording mode or before
// Process has run.
func (c *Context) ProxyConfig() (ConfigSnapshot, error) {
	if c.mode != ModeNormal {
		return nil, ErrNotAvailable
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.normal.cfg == nil {
		return nil, ErrNotAvailable
	}
	return c.normal.cfg, nil
}
