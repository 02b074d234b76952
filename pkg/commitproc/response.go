package commitproc

import (
	"sync"

	"github.com/raftzoo/zoocore/pkg/request"
)

// ResponseSink is the thread-safe, per-session queue of responses the
// commit processor's worker emits into. A session's responses are
// always appended in xid order by construction of the worker loop; Drain
// hands the caller everything queued for a session so far, in that
// order.
type ResponseSink struct {
	mu        sync.Mutex
	bySession map[int64][]request.Response
}

// NewResponseSink returns an empty sink.
func NewResponseSink() *ResponseSink {
	return &ResponseSink{bySession: make(map[int64][]request.Response)}
}

// Push appends resp to sessionID's response queue.
func (s *ResponseSink) Push(sessionID int64, resp request.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySession[sessionID] = append(s.bySession[sessionID], resp)
}

// Drain removes and returns every response queued for sessionID.
func (s *ResponseSink) Drain(sessionID int64) []request.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.bySession[sessionID]
	delete(s.bySession, sessionID)
	return out
}

// Len reports how many responses are queued for sessionID.
func (s *ResponseSink) Len(sessionID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bySession[sessionID])
}
