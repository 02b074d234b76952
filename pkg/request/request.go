// Package request models the tagged variant of client operations the
// commit processor orders and applies, plus the response shape it
// produces. Each Op is the same struct used for both the operation's
// input fields and the store's output fields, mirroring this module's
// established request/response-pointer convention rather than
// introducing a second result type per operation.
package request

// Code is a ZooKeeper-style response error code.
type Code int32

const (
	ZOK                Code = 0
	ZSYSTEMERROR       Code = -1
	ZCONNECTIONLOSS    Code = -4
	ZSESSIONEXPIRED    Code = -112
	ZOPERATIONTIMEOUT  Code = -117
)

// CodeFromError maps a store error to a response code. nil maps to ZOK;
// any other error maps to the generic ZSYSTEMERROR, since the store
// layer (an out-of-scope named collaborator per spec) doesn't define a
// richer error taxonomy of its own.
func CodeFromError(err error) Code {
	if err == nil {
		return ZOK
	}
	return ZSYSTEMERROR
}

// Op is a single client operation. IsRead determines whether the commit
// processor can serve it directly from local state (spec.md §4.6 step 5)
// or must forward it through consensus first. MakeResponse packages the
// op's current result fields (populated by the store's Apply call) into
// a Response carrying the given zxid/code.
type Op interface {
	IsRead() bool
	MakeResponse(zxid int64, code Code) Response
}

// Response is what the commit processor hands to the response sink.
type Response struct {
	Xid     int64
	Zxid    int64
	Code    Code
	Payload any
}

// Request is one (session_id, xid, request) tuple as it flows through
// the commit processor's queues.
type Request struct {
	SessionID int64
	Xid       int64
	Op        Op
}

// Respond builds this request's Response, stamping in the Xid the op
// itself doesn't know about.
func (r Request) Respond(zxid int64, code Code) Response {
	resp := r.Op.MakeResponse(zxid, code)
	resp.Xid = r.Xid
	return resp
}

// CreateOp creates a znode at Path holding Data. ZNodeName is filled in
// by the store after a successful apply.
type CreateOp struct {
	Path       string
	Data       []byte
	Sequential bool
	Ephemeral  bool

	ZNodeName string
}

func (*CreateOp) IsRead() bool { return false }
func (o *CreateOp) MakeResponse(zxid int64, code Code) Response {
	return Response{Zxid: zxid, Code: code, Payload: CreateResult{ZNodeName: o.ZNodeName}}
}

// CreateResult is CreateOp's payload.
type CreateResult struct {
	ZNodeName string
}

// DeleteOp deletes the znode at Path if Version matches (-1 skips the
// check).
type DeleteOp struct {
	Path    string
	Version int64
}

func (*DeleteOp) IsRead() bool { return false }
func (*DeleteOp) MakeResponse(zxid int64, code Code) Response {
	return Response{Zxid: zxid, Code: code}
}

// ExistsOp reports whether a znode is present at Path. Exists is filled
// in by the store.
type ExistsOp struct {
	Path string

	Exists bool
}

func (*ExistsOp) IsRead() bool { return true }
func (o *ExistsOp) MakeResponse(zxid int64, code Code) Response {
	return Response{Zxid: zxid, Code: code, Payload: ExistsResult{Exists: o.Exists}}
}

// ExistsResult is ExistsOp's payload.
type ExistsResult struct {
	Exists bool
}

// GetDataOp reads the data and version at Path. Data and Version are
// filled in by the store.
type GetDataOp struct {
	Path string

	Data    []byte
	Version int64
}

func (*GetDataOp) IsRead() bool { return true }
func (o *GetDataOp) MakeResponse(zxid int64, code Code) Response {
	return Response{Zxid: zxid, Code: code, Payload: GetDataResult{Data: o.Data, Version: o.Version}}
}

// GetDataResult is GetDataOp's payload.
type GetDataResult struct {
	Data    []byte
	Version int64
}

// SetDataOp writes Data to Path if Version matches.
type SetDataOp struct {
	Path    string
	Data    []byte
	Version int64
}

func (*SetDataOp) IsRead() bool { return false }
func (*SetDataOp) MakeResponse(zxid int64, code Code) Response {
	return Response{Zxid: zxid, Code: code}
}

// GetChildrenOp lists Path's immediate children. Children is filled in
// by the store.
type GetChildrenOp struct {
	Path string

	Children []string
}

func (*GetChildrenOp) IsRead() bool { return true }
func (o *GetChildrenOp) MakeResponse(zxid int64, code Code) Response {
	return Response{Zxid: zxid, Code: code, Payload: GetChildrenResult{Children: o.Children}}
}

// GetChildrenResult is GetChildrenOp's payload.
type GetChildrenResult struct {
	Children []string
}

// SyncOp waits for updates pending at submission time to propagate. It
// never mutates the store.
type SyncOp struct {
	Path string
}

func (*SyncOp) IsRead() bool { return true }
func (*SyncOp) MakeResponse(zxid int64, code Code) Response {
	return Response{Zxid: zxid, Code: code}
}
