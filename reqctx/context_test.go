// SPDX-License-Identifier: GPL-3.0-or-later

package reqctx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/fiber"
)

type fakeSnapshot struct {
	root RouteHandle
}

func (s *fakeSnapshot) Root() RouteHandle {
	return s.root
}

type fakeHandle struct {
	name string
}

func (h *fakeHandle) Route(context.Context, *Context, mcroute.Request, mcroute.Op) mcroute.Reply {
	return mcroute.Reply{}
}

func (h *fakeHandle) Traverse(context.Context, *Context, mcroute.Request, mcroute.Op, Visitor) {
}

func (h *fakeHandle) Name() string {
	return h.name
}

func TestContextSendReplyOnlyOnce(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	var replies []mcroute.Reply
	done := make(chan struct{})

	c := New(worker, mcroute.NewRequest([]byte("k")),
		func(r mcroute.Reply) { replies = append(replies, r) },
		func() { close(done) },
		mcroute.PriorityNormal)

	c.SendReply(mcroute.NewReply(mcroute.Stored))
	c.SendReply(mcroute.NewReply(mcroute.NotStored))

	<-done
	require.Len(t, replies, 1)
	assert.Equal(t, mcroute.Stored, replies[0].Result)
}

func TestContextDrainDeadlineCompletesWithAborted(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	var replies []mcroute.Reply
	done := make(chan struct{})

	New(worker, mcroute.NewRequest([]byte("k")),
		func(r mcroute.Reply) { replies = append(replies, r) },
		func() { close(done) },
		mcroute.PriorityNormal)

	blocked := make(chan struct{})
	worker.Spawn(func() { <-blocked })
	defer close(blocked)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := worker.Drain(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	<-done
	require.Len(t, replies, 1)
	assert.Equal(t, mcroute.Aborted, replies[0].Result)
}

func TestContextUntrackedAfterReplyDoesNotAbortOnDrain(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	var replies []mcroute.Reply
	done := make(chan struct{})

	c := New(worker, mcroute.NewRequest([]byte("k")),
		func(r mcroute.Reply) { replies = append(replies, r) },
		func() { close(done) },
		mcroute.PriorityNormal)

	c.SendReply(mcroute.NewReply(mcroute.Stored))
	<-done

	err := worker.Drain(context.Background())
	require.NoError(t, err)

	require.Len(t, replies, 1)
	assert.Equal(t, mcroute.Stored, replies[0].Result)
}

func TestContextReqCompleteAfterBackgroundWork(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	var repliedAt, completedAt time.Time
	replied := make(chan struct{})
	completed := make(chan struct{})

	c := New(worker, mcroute.NewRequest([]byte("k")),
		func(mcroute.Reply) { repliedAt = time.Now(); close(replied) },
		func() { completedAt = time.Now(); close(completed) },
		mcroute.PriorityNormal)

	bgDone := make(chan struct{})
	c.Spawn(func() {
		time.Sleep(20 * time.Millisecond)
		close(bgDone)
	})

	c.SendReply(mcroute.NewReply(mcroute.Stored))

	<-replied
	select {
	case <-completed:
		t.Fatal("reqComplete fired before the spawned goroutine finished")
	case <-bgDone:
	}
	<-completed

	assert.True(t, completedAt.After(repliedAt) || completedAt.Equal(repliedAt))
}

func TestContextProcessTwiceErrors(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	c := New(worker, mcroute.NewRequest([]byte("k")),
		func(mcroute.Reply) {}, func() {}, mcroute.PriorityNormal)

	snap := &fakeSnapshot{root: &fakeHandle{name: "root"}}
	require.NoError(t, c.Process(snap))
	require.ErrorIs(t, c.Process(snap), ErrAlreadyProcessed)
}

func TestContextProxyRouteAndConfig(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	c := New(worker, mcroute.NewRequest([]byte("k")),
		func(mcroute.Reply) {}, func() {}, mcroute.PriorityNormal)

	_, err := c.ProxyRoute()
	require.ErrorIs(t, err, ErrNotAvailable)

	root := &fakeHandle{name: "root"}
	require.NoError(t, c.Process(&fakeSnapshot{root: root}))

	handle, err := c.ProxyRoute()
	require.NoError(t, err)
	assert.Equal(t, "root", handle.Name())
}

func TestContextRecordingModeSendReplyPanics(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	c := NewRecording(worker, nil, nil)

	assert.Panics(t, func() {
		c.SendReply(mcroute.NewReply(mcroute.Stored))
	})
}

func TestContextRecordingModeProxyConfigUnavailable(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	c := NewRecording(worker, nil, nil)

	_, err := c.ProxyConfig()
	require.ErrorIs(t, err, ErrNotAvailable)
}

func TestContextRecordDestinationAndShardSplitter(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	var destSeen mcroute.DestinationDescription
	var splitSeen mcroute.ShardSplitterDescription

	c := NewRecording(worker,
		func(d mcroute.DestinationDescription) { destSeen = d },
		func(s mcroute.ShardSplitterDescription) { splitSeen = s })

	c.RecordDestination(mcroute.DestinationDescription{PoolName: "a"})
	c.RecordShardSplitter(mcroute.ShardSplitterDescription{Name: "hash"})

	assert.Equal(t, "a", destSeen.PoolName)
	assert.Equal(t, "hash", splitSeen.Name)
}

func TestContextNewRecordingNotify(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	done := make(chan struct{})
	c := NewRecordingNotify(worker, done, nil, nil)

	bgDone := make(chan struct{})
	c.Spawn(func() {
		time.Sleep(10 * time.Millisecond)
		close(bgDone)
	})

	c.Close()

	select {
	case <-done:
		t.Fatal("notify fired before the spawned goroutine finished")
	case <-bgDone:
	}
	<-done
}

func TestContextStateTransitions(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	completed := make(chan struct{})
	c := New(worker, mcroute.NewRequest([]byte("k")),
		func(mcroute.Reply) {}, func() { close(completed) }, mcroute.PriorityNormal)

	assert.Equal(t, StateNew, c.State())

	require.NoError(t, c.Process(&fakeSnapshot{root: &fakeHandle{name: "root"}}))
	assert.Equal(t, StateProcessing, c.State())

	c.SendReply(mcroute.NewReply(mcroute.Stored))
	<-completed
	assert.Equal(t, StateCompleted, c.State())
}

func TestContextOnReplyReceivedInvokesLoggers(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	c := New(worker, mcroute.NewRequest([]byte("k")),
		func(mcroute.Reply) {}, func() {}, mcroute.PriorityNormal)

	var primary, extra int
	c.SetReplyLogger(mcroute.ReplyLoggerFunc(
		func(mcroute.ClientDescription, mcroute.Request, mcroute.Reply, time.Time, time.Time, mcroute.Op) {
			primary++
		}))
	c.AddReplyLogger(mcroute.ReplyLoggerFunc(
		func(mcroute.ClientDescription, mcroute.Request, mcroute.Reply, time.Time, time.Time, mcroute.Op) {
			extra++
		}))

	now := time.Now()
	c.OnReplyReceived(mcroute.ClientDescription{IP: "127.0.0.1"}, mcroute.NewRequest([]byte("k")),
		mcroute.NewReply(mcroute.Stored), now, now, mcroute.OpSet)

	assert.Equal(t, 1, primary)
	assert.Equal(t, 1, extra)
}

func TestContextDispatchSendsRouteReply(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	var got mcroute.Reply
	done := make(chan struct{})
	c := New(worker, mcroute.NewRequest([]byte("k")),
		func(r mcroute.Reply) { got = r; close(done) },
		func() {}, mcroute.PriorityNormal)

	root := &fakeHandle{name: "root"}
	require.NoError(t, c.Process(&fakeSnapshot{root: root}))
	require.NoError(t, c.Dispatch(context.Background(), mcroute.OpGet))

	<-done
	assert.Equal(t, mcroute.Reply{}, got)
}

func TestContextDispatchWithoutProcessErrors(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	c := New(worker, mcroute.NewRequest([]byte("k")),
		func(mcroute.Reply) {}, func() {}, mcroute.PriorityNormal)

	require.ErrorIs(t, c.Dispatch(context.Background(), mcroute.OpGet), ErrNotAvailable)
}

type panickingHandle struct{}

func (panickingHandle) Route(context.Context, *Context, mcroute.Request, mcroute.Op) mcroute.Reply {
	panic("route handle exploded")
}

func (panickingHandle) Traverse(context.Context, *Context, mcroute.Request, mcroute.Op, Visitor) {
}

func (panickingHandle) Name() string {
	return "panicking"
}

func TestContextDispatchRecoversPanicAsLocalError(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	var got mcroute.Reply
	done := make(chan struct{})
	c := New(worker, mcroute.NewRequest([]byte("k")),
		func(r mcroute.Reply) { got = r; close(done) },
		func() {}, mcroute.PriorityNormal)

	require.NoError(t, c.Process(&fakeSnapshot{root: panickingHandle{}}))

	assert.NotPanics(t, func() {
		require.NoError(t, c.Dispatch(context.Background(), mcroute.OpGet))
	})

	<-done
	assert.Equal(t, mcroute.LocalError, got.Result)
}

func TestContextAccessors(t *testing.T) {
	worker := fiber.NewWorker()
	defer worker.Shutdown()

	c := New(worker, mcroute.NewRequest([]byte("k")),
		func(mcroute.Reply) {}, func() {}, mcroute.PriorityCritical)

	c.SetUserIP("10.0.0.1")
	c.SetSenderID(42)
	c.SetFailoverDisabled(true)

	assert.Equal(t, "10.0.0.1", c.UserIP())
	assert.Equal(t, uint64(42), c.SenderID())
	assert.True(t, c.FailoverDisabled())
	assert.Equal(t, mcroute.PriorityCritical, c.Priority())
	assert.Equal(t, ModeNormal, c.Mode())
	assert.NotEmpty(t, c.SpanID())
	assert.NotZero(t, c.RequestID())
}
