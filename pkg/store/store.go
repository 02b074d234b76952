package store

import (
	"fmt"

	"github.com/raftzoo/zoocore/pkg/request"
)

// Store is what the commit processor applies committed writes and safe
// reads against. Committed zxid assignment happens above this interface
// (in the consensus engine); Apply only executes op against local state
// and fills in its result fields.
type Store interface {
	Apply(sessionID int64, op request.Op) error

	NextSessionID() int64
	ACLs() *ACLTable
	Sessions() *SessionTable
	Ephemerals() *EphemeralIndex
	Strings() *GenericMap[string]
	Ints() *GenericMap[uint64]
}

// MemStore is the in-memory Store used by the commit processor and by
// snapshot serialization. It composes the data tree with the session,
// ACL, and ephemeral-node collections, and two open-ended generic maps
// used for small pieces of cluster-wide key/value state (e.g. cluster
// id counters) that don't warrant their own domain type.
type MemStore struct {
	tree       *Tree
	sessions   *SessionTable
	acls       *ACLTable
	ephemerals *EphemeralIndex
	strings    *GenericMap[string]
	ints       *GenericMap[uint64]
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		tree:       NewTree(),
		sessions:   NewSessionTable(),
		acls:       NewACLTable(),
		ephemerals: NewEphemeralIndex(),
		strings:    NewGenericMap[string](),
		ints:       NewGenericMap[uint64](),
	}
}

func (s *MemStore) NextSessionID() int64        { return s.sessions.NextSessionID() }
func (s *MemStore) ACLs() *ACLTable             { return s.acls }
func (s *MemStore) Sessions() *SessionTable     { return s.sessions }
func (s *MemStore) Ephemerals() *EphemeralIndex { return s.ephemerals }
func (s *MemStore) Strings() *GenericMap[string] { return s.strings }
func (s *MemStore) Ints() *GenericMap[uint64]    { return s.ints }

// Apply executes op against the tree, updating the ephemeral index for
// creates and deletes of ephemeral nodes so it stays derivable from the
// tree without a second source of truth drifting out of sync.
func (s *MemStore) Apply(sessionID int64, op request.Op) error {
	switch o := op.(type) {
	case *request.CreateOp:
		name, err := s.tree.Create(o.Path, o.Data, o.Sequential, o.Ephemeral, sessionID)
		if err != nil {
			return err
		}
		o.ZNodeName = name
		if o.Ephemeral {
			s.ephemerals.Add(sessionID, name)
		}
		return nil

	case *request.DeleteOp:
		if err := s.tree.Delete(o.Path, o.Version); err != nil {
			return err
		}
		s.ephemerals.Remove(sessionID, o.Path)
		return nil

	case *request.ExistsOp:
		exists, err := s.tree.Exists(o.Path)
		if err != nil {
			return err
		}
		o.Exists = exists
		return nil

	case *request.GetDataOp:
		data, version, err := s.tree.GetData(o.Path)
		if err != nil {
			return err
		}
		o.Data, o.Version = data, version
		return nil

	case *request.SetDataOp:
		return s.tree.SetData(o.Path, o.Data, o.Version)

	case *request.GetChildrenOp:
		children, err := s.tree.GetChildren(o.Path)
		if err != nil {
			return err
		}
		o.Children = children
		return nil

	case *request.SyncOp:
		return nil

	default:
		return fmt.Errorf("store: unsupported op type %T", op)
	}
}

// ReplaceCollections atomically swaps in the ACL, session, ephemeral, and
// generic-map collections, used when installing a restored snapshot. The
// data tree itself is outside this module's snapshot format (spec.md's
// reserved TypeData) and is left untouched.
func (s *MemStore) ReplaceCollections(acls *ACLTable, sessions *SessionTable, eph *EphemeralIndex, strings *GenericMap[string], ints *GenericMap[uint64]) {
	s.acls = acls
	s.sessions = sessions
	s.ephemerals = eph
	s.strings = strings
	s.ints = ints
}

// ExpireSession removes a session's entry, its auth list, and every
// ephemeral node it owned. Each collection's lock is taken and released
// on its own, so no two of them are ever held at once.
func (s *MemStore) ExpireSession(sessionID int64) {
	for _, path := range s.ephemerals.Paths(sessionID) {
		_ = s.tree.Delete(path, -1)
	}
	s.sessions.Remove(sessionID)
	s.ephemerals.RemoveSession(sessionID)
}
