package commitproc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/raftzoo/zoocore/pkg/consensus"
	"github.com/raftzoo/zoocore/pkg/request"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	require.True(t, cond(), "condition never became true")
}

func newTestProcessor(t *testing.T) (*Processor, *MockStore, *MockEngine) {
	ctrl := gomock.NewController(t)
	st := NewMockStore(ctrl)
	engine := NewMockEngine(ctrl)
	st.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	engine.EXPECT().Propose(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	p := New(st, engine, 64)
	go p.Run()
	t.Cleanup(p.Shutdown)
	return p, st, engine
}

func TestProcessor_CommitOrderingAndReadWriteInterleave(t *testing.T) {
	p, _, _ := newTestProcessor(t)

	p.Enqueue(request.Request{SessionID: 1, Xid: 1, Op: &request.ExistsOp{Path: "/a"}})
	p.Enqueue(request.Request{SessionID: 1, Xid: 2, Op: &request.SetDataOp{Path: "/a", Version: -1}})
	p.Enqueue(request.Request{SessionID: 1, Xid: 3, Op: &request.ExistsOp{Path: "/a"}})

	waitFor(t, func() bool { return p.Responses().Len(1) == 1 })
	responses := p.Responses().Drain(1)
	require.Len(t, responses, 1)
	assert.Equal(t, int64(1), responses[0].Xid)

	// x=3 must not respond until x=2's commit arrives.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, p.Responses().Len(1))

	p.Commit(1, 2, 100, mustEncode(t, &request.SetDataOp{Path: "/a", Version: -1}))

	waitFor(t, func() bool { return p.Responses().Len(1) == 2 })
	responses = p.Responses().Drain(1)
	require.Len(t, responses, 2)
	assert.Equal(t, int64(2), responses[0].Xid)
	assert.Equal(t, int64(3), responses[1].Xid)
}

func TestProcessor_CommitTimeout(t *testing.T) {
	p, _, _ := newTestProcessor(t)

	p.Enqueue(request.Request{SessionID: 5, Xid: 100, Op: &request.SetDataOp{Path: "/a", Version: -1}})
	waitFor(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return len(p.pendingWritesBySession[5]) == 1
	})

	p.OnError(5, 100, true, consensus.ErrorTimeout)

	waitFor(t, func() bool { return p.Responses().Len(5) == 1 })
	resp := p.Responses().Drain(5)[0]
	assert.Equal(t, request.ZOPERATIONTIMEOUT, resp.Code)
	assert.Equal(t, int64(100), resp.Xid)
	assert.Equal(t, int64(0), resp.Zxid)

	p.mu.Lock()
	_, hasPending := p.pendingBySession[5]
	_, hasWrites := p.pendingWritesBySession[5]
	p.mu.Unlock()
	assert.False(t, hasPending)
	assert.False(t, hasWrites)
}

func TestProcessor_ShutdownDrainsInputQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := NewMockStore(ctrl)
	engine := NewMockEngine(ctrl)

	p := New(st, engine, 64)
	p.input.push(request.Request{SessionID: 9, Xid: 1, Op: &request.ExistsOp{Path: "/a"}})

	p.mu.Lock()
	p.shuttingDown = true
	p.mu.Unlock()

	go p.Run()
	<-p.stopped

	responses := p.Responses().Drain(9)
	require.Len(t, responses, 1)
	assert.Equal(t, request.ZSESSIONEXPIRED, responses[0].Code)
}

func TestProcessor_CrossSessionIndependence(t *testing.T) {
	p, _, _ := newTestProcessor(t)

	p.Enqueue(request.Request{SessionID: 1, Xid: 1, Op: &request.SetDataOp{Path: "/a", Version: -1}})
	p.Enqueue(request.Request{SessionID: 2, Xid: 1, Op: &request.ExistsOp{Path: "/b"}})

	waitFor(t, func() bool { return p.Responses().Len(2) == 1 })
	resp := p.Responses().Drain(2)[0]
	assert.Equal(t, request.ZOK, resp.Code)

	assert.Equal(t, 0, p.Responses().Len(1))
}

func mustEncode(t *testing.T, op request.Op) []byte {
	t.Helper()
	payload, err := request.Encode(op)
	require.NoError(t, err)
	return payload
}
