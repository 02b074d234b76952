package commitproc

// Hand-written in the shape go.uber.org/mock's mockgen would generate for
// consensus.Engine.

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

type MockEngine struct {
	ctrl     *gomock.Controller
	recorder *MockEngineMockRecorder
}

type MockEngineMockRecorder struct {
	mock *MockEngine
}

func NewMockEngine(ctrl *gomock.Controller) *MockEngine {
	mock := &MockEngine{ctrl: ctrl}
	mock.recorder = &MockEngineMockRecorder{mock}
	return mock
}

func (m *MockEngine) EXPECT() *MockEngineMockRecorder {
	return m.recorder
}

func (m *MockEngine) Propose(sessionID, xid int64, payload []byte) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Propose", sessionID, xid, payload)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockEngineMockRecorder) Propose(sessionID, xid, payload interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Propose", reflect.TypeOf((*MockEngine)(nil).Propose), sessionID, xid, payload)
}

func (m *MockEngine) IsLeader() bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "IsLeader")
	ret0, _ := ret[0].(bool)
	return ret0
}

func (mr *MockEngineMockRecorder) IsLeader() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "IsLeader", reflect.TypeOf((*MockEngine)(nil).IsLeader))
}
