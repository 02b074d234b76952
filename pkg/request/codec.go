package request

import (
	"encoding/json"
	"fmt"
)

// wireOp is the JSON envelope an Op crosses the consensus boundary in.
// Only one of the embedded pointers is set; Kind says which. This
// mirrors how a Raft log entry is typically framed in this codebase's
// surrounding ecosystem: a small type tag plus a typed payload, encoded
// with encoding/json rather than a second bespoke binary format — the
// ZooKeeper big-endian convention in package wire is reserved for
// records that must match the client wire protocol, which this payload
// never leaves the cluster to do.
type wireOp struct {
	Kind string

	Create      *CreateOp      `json:",omitempty"`
	Delete      *DeleteOp      `json:",omitempty"`
	Exists      *ExistsOp      `json:",omitempty"`
	GetData     *GetDataOp     `json:",omitempty"`
	SetData     *SetDataOp     `json:",omitempty"`
	GetChildren *GetChildrenOp `json:",omitempty"`
	Sync        *SyncOp        `json:",omitempty"`
}

// Encode serializes op for proposal to consensus.
func Encode(op Op) ([]byte, error) {
	w := wireOp{}
	switch o := op.(type) {
	case *CreateOp:
		w.Kind, w.Create = "create", o
	case *DeleteOp:
		w.Kind, w.Delete = "delete", o
	case *ExistsOp:
		w.Kind, w.Exists = "exists", o
	case *GetDataOp:
		w.Kind, w.GetData = "get_data", o
	case *SetDataOp:
		w.Kind, w.SetData = "set_data", o
	case *GetChildrenOp:
		w.Kind, w.GetChildren = "get_children", o
	case *SyncOp:
		w.Kind, w.Sync = "sync", o
	default:
		return nil, fmt.Errorf("request: unsupported op type %T", op)
	}
	return json.Marshal(w)
}

// Decode is Encode's inverse, used when a node applies a commit for a
// session it does not hold the original Op pending for locally (a
// follower applying a leader's write).
func Decode(payload []byte) (Op, error) {
	var w wireOp
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, err
	}
	switch w.Kind {
	case "create":
		return w.Create, nil
	case "delete":
		return w.Delete, nil
	case "exists":
		return w.Exists, nil
	case "get_data":
		return w.GetData, nil
	case "set_data":
		return w.SetData, nil
	case "get_children":
		return w.GetChildren, nil
	case "sync":
		return w.Sync, nil
	default:
		return nil, fmt.Errorf("request: unknown op kind %q", w.Kind)
	}
}
