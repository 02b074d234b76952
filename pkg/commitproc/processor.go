// Package commitproc implements the commit-ordering pipeline: accept
// client requests, order them per session, forward writes through
// consensus, interleave locally-safe reads with committed writes, and
// emit responses (spec.md §4.6).
package commitproc

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/raftzoo/zoocore/pkg/consensus"
	"github.com/raftzoo/zoocore/pkg/metrics"
	"github.com/raftzoo/zoocore/pkg/request"
	"github.com/raftzoo/zoocore/pkg/store"
)

var _ consensus.Sink = (*Processor)(nil)

type sessionXid struct {
	session int64
	xid     int64
}

type errEntry struct {
	accepted bool
	code     consensus.ErrorCode
}

type committedEntry struct {
	sessionID int64
	xid       int64
	zxid      int64
	payload   []byte
}

// Processor is the commit-ordering pipeline. Exactly one worker
// goroutine runs the main loop (Run); producers call Enqueue, Commit,
// and OnError concurrently from other goroutines.
type Processor struct {
	store  store.Store
	engine consensus.Engine
	sink   *ResponseSink
	input  *inputQueue

	// mu guards everything below: the committed queue, the errors map,
	// and the pending-by-session maps. Producers take it only briefly, to
	// append to committed or errors or to wake the worker; input has its
	// own mutex so a producer blocked on a full input queue never holds
	// this one.
	mu   sync.Mutex
	cond *sync.Cond

	committed []committedEntry
	errors    map[sessionXid]errEntry

	pendingBySession       map[int64][]request.Request
	pendingWritesBySession map[int64][]request.Request
	writeEnqueuedAt        map[sessionXid]time.Time

	lastZxid     int64
	shuttingDown bool
	stopped      chan struct{}
}

// New returns a processor bound to st and engine, with an input queue
// bounded at inputBound (spec.md §5 nominates 20,000). Call Run on its
// own goroutine to start the worker; it returns once Shutdown completes.
func New(st store.Store, engine consensus.Engine, inputBound int) *Processor {
	p := &Processor{
		store:                  st,
		engine:                 engine,
		sink:                   NewResponseSink(),
		input:                  newInputQueue(inputBound),
		errors:                 make(map[sessionXid]errEntry),
		pendingBySession:       make(map[int64][]request.Request),
		pendingWritesBySession: make(map[int64][]request.Request),
		writeEnqueuedAt:        make(map[sessionXid]time.Time),
		stopped:                make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Responses returns the sink the worker emits responses into.
func (p *Processor) Responses() *ResponseSink {
	return p.sink
}

// SetEngine installs the consensus engine writes are proposed to. It
// exists because a raftconsensus.Node's FSM must be constructed with a
// reference to this processor before the Node itself exists, so the
// engine can't always be supplied at New time; callers must call this
// before any write reaches Enqueue.
func (p *Processor) SetEngine(engine consensus.Engine) {
	p.mu.Lock()
	p.engine = engine
	p.mu.Unlock()
}

// Enqueue appends req to the input queue, blocking while it is at
// capacity. Writes are proposed to consensus later, from drainInput,
// once pendingWritesBySession bookkeeping for them exists — proposing
// here instead would let a Commit race in before that bookkeeping is
// recorded, and applyCommitted's foreign-commit fallback would apply it
// immediately while the still-pending input entry later got enqueued a
// second time, permanently stalling that session's reads. Once Shutdown
// has started, Enqueue drops req instead of blocking.
func (p *Processor) Enqueue(req request.Request) {
	p.mu.Lock()
	down := p.shuttingDown
	p.mu.Unlock()
	if down {
		return
	}

	p.input.push(req)
	p.mu.Lock()
	p.cond.Broadcast()
	p.mu.Unlock()
}

// Commit implements consensus.Sink. It is called by the consensus engine
// once a write is durably replicated and ready to apply.
func (p *Processor) Commit(sessionID, xid, zxid int64, payload []byte) {
	p.mu.Lock()
	p.committed = append(p.committed, committedEntry{sessionID: sessionID, xid: xid, zxid: zxid, payload: payload})
	p.cond.Broadcast()
	p.mu.Unlock()
}

// OnError implements consensus.Sink. It is called by the consensus
// engine when a proposed write could not be replicated.
func (p *Processor) OnError(sessionID, xid int64, accepted bool, code consensus.ErrorCode) {
	p.mu.Lock()
	p.errors[sessionXid{sessionID, xid}] = errEntry{accepted: accepted, code: code}
	p.cond.Broadcast()
	p.mu.Unlock()
}

// Shutdown stops the worker, waits for it to drain input_queue with
// SESSION_EXPIRED responses, and returns once the worker goroutine has
// exited. Safe to call once; a second call blocks until the first's
// drain completes.
func (p *Processor) Shutdown() {
	p.mu.Lock()
	p.shuttingDown = true
	p.cond.Broadcast()
	p.mu.Unlock()
	p.input.close()
	<-p.stopped
}

// Run executes the worker loop until Shutdown is called. It must be
// invoked on exactly one goroutine.
func (p *Processor) Run() {
	defer close(p.stopped)
	for {
		p.mu.Lock()
		for len(p.errors) == 0 && len(p.pendingBySession) == 0 && p.input.len() == 0 && len(p.committed) == 0 && !p.shuttingDown {
			p.cond.Wait()
		}
		shuttingDown := p.shuttingDown
		p.mu.Unlock()

		if shuttingDown {
			p.drainOnShutdown()
			return
		}

		p.drainErrors()
		p.drainInput()
		p.serveSafeReads()
		p.applyCommitted()
	}
}

func (p *Processor) drainOnShutdown() {
	for _, req := range p.input.drain() {
		p.sink.Push(req.SessionID, req.Respond(0, request.ZSESSIONEXPIRED))
	}
}

// drainErrors implements spec.md §4.6 step 3.
func (p *Processor) drainErrors() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, entry := range p.errors {
		pending := p.pendingBySession[key.session]
		idx := -1
		for i, r := range pending {
			if r.Xid == key.xid {
				idx = i
				break
			}
		}
		if idx == -1 {
			log.WithFields(log.Fields{"session": key.session, "xid": key.xid}).
				Error("commitproc: error reported for a request not found in pending, internal ordering invariant violated")
			delete(p.errors, key)
			continue
		}

		req := pending[idx]
		pending = append(pending[:idx:idx], pending[idx+1:]...)
		if len(pending) == 0 {
			delete(p.pendingBySession, key.session)
		} else {
			p.pendingBySession[key.session] = pending
		}
		removeFromWrites(p.pendingWritesBySession, key.session, key.xid)
		p.observeCommitLatencyLocked(key.session, key.xid)

		code := request.ZCONNECTIONLOSS
		if entry.code == consensus.ErrorTimeout {
			code = request.ZOPERATIONTIMEOUT
		}
		p.sink.Push(key.session, req.Respond(0, code))
		delete(p.errors, key)
	}
}

func removeFromWrites(m map[int64][]request.Request, session, xid int64) {
	writes, ok := m[session]
	if !ok {
		return
	}
	for i, w := range writes {
		if w.Xid == xid {
			writes = append(writes[:i:i], writes[i+1:]...)
			break
		}
	}
	if len(writes) == 0 {
		delete(m, session)
	} else {
		m[session] = writes
	}
}

// drainInput implements spec.md §4.6 step 4. Writes are proposed to
// consensus here, after pendingWritesBySession already reflects them, so
// a Commit arriving the instant Propose returns always finds its
// bookkeeping in place (see Enqueue).
func (p *Processor) drainInput() {
	reqs := p.input.drain()
	if len(reqs) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	engine := p.engine
	for _, req := range reqs {
		if req.Op.IsRead() {
			p.pendingBySession[req.SessionID] = append(p.pendingBySession[req.SessionID], req)
			continue
		}

		payload, err := request.Encode(req.Op)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"session": req.SessionID, "xid": req.Xid,
			}).Error("commitproc: failed to encode write for consensus, dropping")
			p.sink.Push(req.SessionID, req.Respond(0, request.ZSYSTEMERROR))
			continue
		}

		p.pendingBySession[req.SessionID] = append(p.pendingBySession[req.SessionID], req)
		p.pendingWritesBySession[req.SessionID] = append(p.pendingWritesBySession[req.SessionID], req)
		p.writeEnqueuedAt[sessionXid{req.SessionID, req.Xid}] = time.Now()
		metrics.PendingWritesDepth.Inc()

		if err := engine.Propose(req.SessionID, req.Xid, payload); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"session": req.SessionID, "xid": req.Xid,
			}).Warn("commitproc: propose failed, request will surface via on_error")
			p.errors[sessionXid{req.SessionID, req.Xid}] = errEntry{code: consensus.ErrorOther}
		}
	}
}

// observeCommitLatencyLocked records how long a write sat pending before
// being resolved (committed or errored) and drops its bookkeeping entry.
// Callers must hold p.mu.
func (p *Processor) observeCommitLatencyLocked(session, xid int64) {
	key := sessionXid{session, xid}
	if started, ok := p.writeEnqueuedAt[key]; ok {
		metrics.CommitLatencySeconds.Observe(time.Since(started).Seconds())
		delete(p.writeEnqueuedAt, key)
		metrics.PendingWritesDepth.Dec()
	}
}

// serveSafeReads implements spec.md §4.6 step 5.
func (p *Processor) serveSafeReads() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for session, pending := range p.pendingBySession {
		writes := p.pendingWritesBySession[session]
		i := 0
		for i < len(pending) {
			head := pending[i]
			if !head.Op.IsRead() {
				break
			}
			if len(writes) > 0 && head.Xid >= writes[0].Xid {
				break
			}
			p.applyAndRespondLocked(head)
			i++
		}
		if i == 0 {
			continue
		}
		remaining := pending[i:]
		if len(remaining) == 0 {
			delete(p.pendingBySession, session)
		} else {
			p.pendingBySession[session] = remaining
		}
	}
}

// applyCommitted implements spec.md §4.6 step 6.
func (p *Processor) applyCommitted() {
	p.mu.Lock()
	defer p.mu.Unlock()

	committed := p.committed
	p.committed = nil

	for _, c := range committed {
		writes := p.pendingWritesBySession[c.sessionID]
		if len(writes) == 0 {
			// A write this node never had pending locally, e.g. a
			// follower applying a leader's write. This node's own writes
			// are only proposed once drainInput has recorded them, so
			// their commits always find a pending entry.
			op, err := request.Decode(c.payload)
			if err != nil {
				log.WithError(err).WithFields(log.Fields{
					"session": c.sessionID, "xid": c.xid,
				}).Error("commitproc: failed to decode committed write payload")
				continue
			}
			applyErr := p.store.Apply(c.sessionID, op)
			p.bumpZxidLocked(c.zxid)
			resp := request.Request{SessionID: c.sessionID, Xid: c.xid, Op: op}.Respond(c.zxid, request.CodeFromError(applyErr))
			p.sink.Push(c.sessionID, resp)
			continue
		}

		if writes[0].Xid != c.xid {
			log.WithFields(log.Fields{
				"session": c.sessionID, "xid": c.xid, "expected_xid": writes[0].Xid,
			}).Error("commitproc: commit arrived out of submission order, internal ordering invariant violated")
			continue
		}

		req := writes[0]
		err := p.store.Apply(req.SessionID, req.Op)
		p.bumpZxidLocked(c.zxid)
		p.sink.Push(req.SessionID, req.Respond(c.zxid, request.CodeFromError(err)))
		p.observeCommitLatencyLocked(c.sessionID, c.xid)

		if len(writes) == 1 {
			delete(p.pendingWritesBySession, c.sessionID)
		} else {
			p.pendingWritesBySession[c.sessionID] = writes[1:]
		}
		removeHeadMatching(p.pendingBySession, c.sessionID, c.xid)
	}
}

func removeHeadMatching(m map[int64][]request.Request, session, xid int64) {
	pending := m[session]
	if len(pending) == 0 || pending[0].Xid != xid {
		log.WithFields(log.Fields{"session": session, "xid": xid}).
			Error("commitproc: pending_by_session head did not match the committed write, internal ordering invariant violated")
		return
	}
	if len(pending) == 1 {
		delete(m, session)
	} else {
		m[session] = pending[1:]
	}
}

// applyAndRespondLocked applies req against the store and emits its
// response. Callers must hold p.mu.
func (p *Processor) applyAndRespondLocked(req request.Request) {
	err := p.store.Apply(req.SessionID, req.Op)
	resp := req.Respond(p.lastZxid, request.CodeFromError(err))
	p.sink.Push(req.SessionID, resp)
}

func (p *Processor) bumpZxidLocked(zxid int64) {
	if zxid > p.lastZxid {
		p.lastZxid = zxid
	}
}
