package mfvec

import (
	"github.com/stretchr/testify/mock"

	"github.com/hupe1980/mfvec/model"
	"github.com/hupe1980/mfvec/peer"
)

// MockPeer is a mock implementation of peer.Peer.
type MockPeer struct {
	mock.Mock
}

var _ peer.Peer = (*MockPeer)(nil)

func (m *MockPeer) Bind(initialSize int) (model.Handle, error) {
	args := m.Called(initialSize)
	return args.Get(0).(model.Handle), args.Error(1)
}

func (m *MockPeer) Unbind(h model.Handle) error {
	args := m.Called(h)
	return args.Error(0)
}

func (m *MockPeer) Read(h model.Handle) ([]model.Vec3, error) {
	args := m.Called(h)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Vec3), args.Error(1)
}

func (m *MockPeer) Write(h model.Handle, tuples []model.Vec3) error {
	args := m.Called(h, tuples)
	return args.Error(0)
}

func (m *MockPeer) Size(h model.Handle) (int, error) {
	args := m.Called(h)
	return args.Int(0), args.Error(1)
}
