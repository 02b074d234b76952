package raftconsensus

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/hashicorp/raft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raftzoo/zoocore/pkg/consensus"
	"github.com/raftzoo/zoocore/pkg/store"
)

type fakeSink struct {
	bytes.Buffer
	canceled bool
	closed   bool
}

func (s *fakeSink) ID() string    { return "fake" }
func (s *fakeSink) Cancel() error { s.canceled = true; return nil }
func (s *fakeSink) Close() error  { s.closed = true; return nil }

var _ raft.SnapshotSink = (*fakeSink)(nil)

type recordedCommit struct {
	sessionID int64
	xid       int64
	zxid      int64
	payload   []byte
}

type recordingSink struct {
	commits []recordedCommit
}

func (s *recordingSink) Commit(sessionID, xid, zxid int64, payload []byte) {
	s.commits = append(s.commits, recordedCommit{sessionID, xid, zxid, payload})
}

func (s *recordingSink) OnError(int64, int64, bool, consensus.ErrorCode) {}

var _ consensus.Sink = (*recordingSink)(nil)

func TestFSM_ApplyDeliversToSink(t *testing.T) {
	sink := &recordingSink{}
	fsm := NewFSM(sink, store.NewMemStore(), 10)

	data, err := encodeLogEntry(7, 3, []byte("payload"), "req-1")
	require.NoError(t, err)

	result := fsm.Apply(&raft.Log{Index: 42, Term: 1, Data: data})
	assert.Nil(t, result)
	require.Len(t, sink.commits, 1)
	assert.Equal(t, int64(7), sink.commits[0].sessionID)
	assert.Equal(t, int64(3), sink.commits[0].xid)
	assert.Equal(t, int64(42), sink.commits[0].zxid)
	assert.Equal(t, []byte("payload"), sink.commits[0].payload)
}

func TestFSM_ApplyBadPayloadLogsAndReturnsError(t *testing.T) {
	sink := &recordingSink{}
	fsm := NewFSM(sink, store.NewMemStore(), 10)

	result := fsm.Apply(&raft.Log{Index: 1, Data: []byte("not json")})
	assert.Error(t, result.(error))
	assert.Empty(t, sink.commits)
}

func TestFSM_SnapshotAndRestoreRoundTrip(t *testing.T) {
	st := store.NewMemStore()
	st.ACLs().Set(5, []store.ACLEntry{{Scheme: "world", ID: "anyone", Perms: 0x1f}})
	st.Strings().Set("cluster_name", "zoocore-test")

	sink := &recordingSink{}
	fsm := NewFSM(sink, st, 10)

	snap, err := fsm.Snapshot()
	require.NoError(t, err)

	sinkFile := &fakeSink{}
	require.NoError(t, snap.Persist(sinkFile))
	assert.True(t, sinkFile.closed)
	assert.False(t, sinkFile.canceled)

	gz, err := gzip.NewReader(bytes.NewReader(sinkFile.Bytes()))
	require.NoError(t, err)
	gz.Close()

	restored := store.NewMemStore()
	fsm2 := NewFSM(sink, restored, 10)
	require.NoError(t, fsm2.Restore(nopCloser{bytes.NewReader(sinkFile.Bytes())}))

	acls, ok := restored.ACLs().Get(5)
	require.True(t, ok)
	require.Len(t, acls, 1)
	assert.Equal(t, "anyone", acls[0].ID)

	name, ok := restored.Strings().Get("cluster_name")
	require.True(t, ok)
	assert.Equal(t, "zoocore-test", name)
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
