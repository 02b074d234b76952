// Package raftconsensus implements consensus.Engine over hashicorp/raft,
// proposing writes as log entries and delivering commits back to a
// consensus.Sink (the commit processor) through an FSM.
package raftconsensus

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
	log "github.com/sirupsen/logrus"

	"github.com/raftzoo/zoocore/pkg/consensus"
)

// Config configures a Node.
type Config struct {
	NodeID    string
	BindAddr  string
	DataDir   string
	Bootstrap bool

	// BatchSize is the batch size the FSM's snapshot serializers use.
	BatchSize int

	// ApplyTimeout bounds how long a proposed write may wait to be
	// accepted by Raft; a write that times out there is reported through
	// OnError as consensus.ErrorTimeout. It does not bound the commit.
	ApplyTimeout time.Duration
}

// Node wraps hashicorp/raft with this module's configuration, and
// implements consensus.Engine.
type Node struct {
	raft      *raft.Raft
	transport *raft.NetworkTransport
	fsm       *FSM
	config    *raft.Config
	nodeID    string

	logStore      raft.LogStore
	stableStore   raft.StableStore
	snapshotStore raft.SnapshotStore

	leaderCh     chan bool
	applyTimeout time.Duration
}

// NewNode starts a Raft node backed by BoltDB log/stable stores and a
// file-based snapshot store, bootstrapping a single-node cluster when
// cfg.Bootstrap is set.
func NewNode(cfg Config, fsm *FSM) (*Node, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("raftconsensus: data dir is required")
	}
	if cfg.ApplyTimeout == 0 {
		cfg.ApplyTimeout = 5 * time.Second
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("raftconsensus: create data dir: %w", err)
	}

	raftConfig := raft.DefaultConfig()
	raftConfig.LocalID = raft.ServerID(cfg.NodeID)
	raftConfig.Logger = newLogrusHCLogger("raft")

	addr, err := net.ResolveTCPAddr("tcp", cfg.BindAddr)
	if err != nil {
		return nil, fmt.Errorf("raftconsensus: resolve bind addr: %w", err)
	}
	transport, err := raft.NewTCPTransport(cfg.BindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("raftconsensus: create transport: %w", err)
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "raft-log.db"))
	if err != nil {
		transport.Close()
		return nil, fmt.Errorf("raftconsensus: create log store: %w", err)
	}

	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "raft-stable.db"))
	if err != nil {
		logStore.Close()
		transport.Close()
		return nil, fmt.Errorf("raftconsensus: create stable store: %w", err)
	}

	snapshotStore, err := raft.NewFileSnapshotStore(cfg.DataDir, 3, os.Stderr)
	if err != nil {
		stableStore.Close()
		logStore.Close()
		transport.Close()
		return nil, fmt.Errorf("raftconsensus: create snapshot store: %w", err)
	}

	leaderCh := make(chan bool, 10)
	raftConfig.NotifyCh = leaderCh

	r, err := raft.NewRaft(raftConfig, fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		stableStore.Close()
		logStore.Close()
		transport.Close()
		return nil, fmt.Errorf("raftconsensus: create raft: %w", err)
	}

	node := &Node{
		raft:          r,
		transport:     transport,
		fsm:           fsm,
		config:        raftConfig,
		nodeID:        cfg.NodeID,
		logStore:      logStore,
		stableStore:   stableStore,
		snapshotStore: snapshotStore,
		leaderCh:      leaderCh,
		applyTimeout:  cfg.ApplyTimeout,
	}

	if cfg.Bootstrap {
		configuration := raft.Configuration{
			Servers: []raft.Server{
				{ID: raft.ServerID(cfg.NodeID), Address: transport.LocalAddr()},
			},
		}
		if f := r.BootstrapCluster(configuration); f.Error() != nil {
			node.Close()
			return nil, fmt.Errorf("raftconsensus: bootstrap cluster: %w", f.Error())
		}
		log.WithFields(log.Fields{"node_id": cfg.NodeID, "addr": cfg.BindAddr}).Info("raftconsensus: cluster bootstrapped")
	}

	return node, nil
}

// Propose implements consensus.Engine. It hands the write to Raft and
// returns without waiting for the commit: the commit reaches the FSM's
// sink through Apply, and a failure to replicate is reported to the same
// sink through OnError from a background goroutine.
func (n *Node) Propose(sessionID, xid int64, payload []byte) error {
	requestID := uuid.New().String()
	data, err := encodeLogEntry(sessionID, xid, payload, requestID)
	if err != nil {
		return fmt.Errorf("raftconsensus: encode log entry: %w", err)
	}
	log.WithFields(log.Fields{"request_id": requestID, "session": sessionID, "xid": xid}).
		Debug("raftconsensus: proposing write")
	f := n.raft.Apply(data, n.applyTimeout)
	go func() {
		err := f.Error()
		if resp, ok := f.Response().(error); err == nil && ok {
			err = resp
		}
		if err != nil {
			code := consensus.ErrorOther
			if errors.Is(err, raft.ErrEnqueueTimeout) {
				code = consensus.ErrorTimeout
			}
			n.fsm.sink.OnError(sessionID, xid, false, code)
		}
	}()
	return nil
}

// IsLeader implements consensus.Engine.
func (n *Node) IsLeader() bool {
	return n.raft.State() == raft.Leader
}

// AddVoter adds a voting member to the cluster.
func (n *Node) AddVoter(nodeID, addr string, timeout time.Duration) error {
	f := n.raft.AddVoter(raft.ServerID(nodeID), raft.ServerAddress(addr), 0, timeout)
	return f.Error()
}

// LeaderCh notifies on leadership changes, per hashicorp/raft's NotifyCh.
func (n *Node) LeaderCh() <-chan bool {
	return n.leaderCh
}

// Snapshot forces a snapshot outside the normal threshold-triggered path.
func (n *Node) Snapshot() error {
	return n.raft.Snapshot().Error()
}

// Close shuts down the Raft node and its backing stores.
func (n *Node) Close() error {
	if err := n.raft.Shutdown().Error(); err != nil {
		log.WithError(err).Warn("raftconsensus: error during shutdown")
	}
	n.stableStore.(*raftboltdb.BoltStore).Close()
	n.logStore.(*raftboltdb.BoltStore).Close()
	return n.transport.Close()
}
