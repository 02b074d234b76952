package snapshot

import (
	"github.com/raftzoo/zoocore/pkg/batch"
	"github.com/raftzoo/zoocore/pkg/store"
	"github.com/raftzoo/zoocore/pkg/wire"
)

// SerializeSessions writes sessions to path as a sequence of SESSION
// batches. Each record is `session_id_i64 | timeout_ms_i64 | auth_ids`
// where auth_ids is count-prefixed `(scheme_str, id_str)` pairs. It
// returns the next session id sampled before iteration begins, so the
// caller can pair it with the snapshot it just took; spec.md §5 requires
// the session table's lock to be acquired before the auth table's, which
// SessionTable.ForEach already does internally.
func SerializeSessions(sessions *store.SessionTable, path string, batchSize int, version batch.SnapshotVersion) (int64, error) {
	nextID := sessions.PeekNextSessionID()

	w, err := Open(path, version)
	if err != nil {
		return 0, err
	}
	acc := newBatchAccumulator(w, batch.TypeSession, batchSize, "session")

	var forEachErr error
	sessions.ForEach(func(id int64, timeoutMS int64, auth []store.AuthID) {
		if forEachErr != nil {
			return
		}
		var buf wire.Buffer
		buf.PutI64(id)
		buf.PutI64(timeoutMS)
		buf.PutVectorHeader(len(auth))
		for _, a := range auth {
			buf.PutString(a.Scheme)
			buf.PutString(a.ID)
		}
		forEachErr = acc.Add(buf.Bytes())
	})
	if forEachErr != nil {
		w.Close()
		return 0, forEachErr
	}
	if err := acc.Finish(); err != nil {
		return 0, err
	}
	return nextID, nil
}

// RebuildSessions replays a SESSION snapshot file into sessions.
func RebuildSessions(path string, sessions *store.SessionTable) error {
	return forEachElement(path, "session", func(elem []byte) error {
		r := wire.NewReader(elem)
		id, err := r.I64()
		if err != nil {
			return err
		}
		timeoutMS, err := r.I64()
		if err != nil {
			return err
		}
		count, err := r.VectorHeader()
		if err != nil {
			return err
		}
		auth := make([]store.AuthID, 0, count)
		for i := 0; i < count; i++ {
			scheme, err := r.String()
			if err != nil {
				return err
			}
			authID, err := r.String()
			if err != nil {
				return err
			}
			auth = append(auth, store.AuthID{Scheme: scheme, ID: authID})
		}
		sessions.CreateSession(id, timeoutMS)
		if len(auth) > 0 {
			sessions.SetAuth(id, auth)
		}
		return nil
	})
}
