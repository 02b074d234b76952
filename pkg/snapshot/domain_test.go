package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raftzoo/zoocore/pkg/batch"
	"github.com/raftzoo/zoocore/pkg/store"
)

func tempFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "snapshot.bin")
}

func TestSerializeACLs_EmptyCollectionBytes(t *testing.T) {
	path := tempFile(t)
	require.NoError(t, SerializeACLs(store.NewACLTable(), path, 10, batch.VersionV3))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	expected := append([]byte("SnapHead"), 0x03)
	expected = append(expected, []byte("SnapTail")...)
	expected = append(expected, 0, 0, 0, 0) // no batch ever flushed, running checksum stays zero

	assert.Equal(t, expected, data)

	acls := store.NewACLTable()
	require.NoError(t, RebuildACLs(path, acls))
	assert.Equal(t, 0, acls.Len())
}

func TestSerializeACLs_RoundTrip(t *testing.T) {
	path := tempFile(t)
	acls := store.NewACLTable()
	acls.Set(7, []store.ACLEntry{{Perms: 31, Scheme: "world", ID: "anyone"}})

	require.NoError(t, SerializeACLs(acls, path, 10, batch.VersionV3))

	restored := store.NewACLTable()
	require.NoError(t, RebuildACLs(path, restored))

	entries, ok := restored.Get(7)
	require.True(t, ok)
	assert.Equal(t, []store.ACLEntry{{Perms: 31, Scheme: "world", ID: "anyone"}}, entries)
}

func TestSerializeACLs_FlippedByteFailsChecksum(t *testing.T) {
	path := tempFile(t)
	acls := store.NewACLTable()
	acls.Set(7, []store.ACLEntry{{Perms: 31, Scheme: "world", ID: "anyone"}})
	require.NoError(t, SerializeACLs(acls, path, 10, batch.VersionV3))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[9+16+2] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	err = RebuildACLs(path, store.NewACLTable())
	require.Error(t, err)
}

func TestSerializeIntMap_BatchBoundary(t *testing.T) {
	path := tempFile(t)
	m := store.NewGenericMap[uint64]()
	for i := 0; i < 25; i++ {
		m.Set(string(rune('a'+i)), uint64(i))
	}
	require.NoError(t, SerializeIntMap(m, path, 10, batch.VersionV3))

	restored := store.NewGenericMap[uint64]()
	require.NoError(t, RebuildIntMap(path, restored))
	assert.Equal(t, 25, restored.Len())
	for i := 0; i < 25; i++ {
		v, ok := restored.Get(string(rune('a' + i)))
		require.True(t, ok)
		assert.Equal(t, uint64(i), v)
	}
}

func TestSerializeSessions_WithAuth(t *testing.T) {
	path := tempFile(t)
	sessions := store.NewSessionTable()
	sessions.NextSessionID() // allocate id 1 so PeekNextSessionID() reflects a counter that has moved
	sessions.CreateSession(42, 30000)
	sessions.SetAuth(42, []store.AuthID{{Scheme: "digest", ID: "user:hash"}})

	peeked := sessions.PeekNextSessionID()
	nextID, err := SerializeSessions(sessions, path, 10, batch.VersionV3)
	require.NoError(t, err)
	assert.Equal(t, peeked, nextID)

	restored := store.NewSessionTable()
	require.NoError(t, RebuildSessions(path, restored))

	timeout, ok := restored.Timeout(42)
	require.True(t, ok)
	assert.Equal(t, int64(30000), timeout)
	assert.Equal(t, []store.AuthID{{Scheme: "digest", ID: "user:hash"}}, restored.Auth(42))
}

func TestSerializeEphemerals_RoundTrip(t *testing.T) {
	path := tempFile(t)
	eph := store.NewEphemeralIndex()
	eph.Add(5, "/a")
	eph.Add(5, "/b")
	eph.Add(9, "/c")

	require.NoError(t, SerializeEphemerals(eph, path, 10, batch.VersionV3))

	restored := store.NewEphemeralIndex()
	require.NoError(t, RebuildEphemerals(path, restored))
	assert.Equal(t, []string{"/a", "/b"}, restored.Paths(5))
	assert.Equal(t, []string{"/c"}, restored.Paths(9))
}

func TestSerializeStringMap_RoundTrip(t *testing.T) {
	path := tempFile(t)
	m := store.NewGenericMap[string]()
	m.Set("cluster_id", "abc-123")

	require.NoError(t, SerializeStringMap(m, path, 10, batch.VersionV3))

	restored := store.NewGenericMap[string]()
	require.NoError(t, RebuildStringMap(path, restored))
	v, ok := restored.Get("cluster_id")
	require.True(t, ok)
	assert.Equal(t, "abc-123", v)
}

func TestSerializeIntMap_LegacyVersionRoundTrip(t *testing.T) {
	path := tempFile(t)
	m := store.NewGenericMap[uint64]()
	m.Set("a", 1)
	m.Set("b", 2)

	require.NoError(t, SerializeIntMap(m, path, 10, batch.VersionV1))

	restored := store.NewGenericMap[uint64]()
	require.NoError(t, RebuildIntMap(path, restored))
	va, _ := restored.Get("a")
	vb, _ := restored.Get("b")
	assert.Equal(t, uint64(1), va)
	assert.Equal(t, uint64(2), vb)
}
