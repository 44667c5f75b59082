// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/mock"
)

// MockNATSConn implements INatsConn for testing
type MockNATSConn struct {
	mock.Mock
	disconnected bool
}

func (m *MockNATSConn) IsConnected() bool {
	return !m.disconnected
}

func (m *MockNATSConn) Publish(subj string, data []byte) error {
	args := m.Called(subj, data)
	return args.Error(0)
}

func (m *MockNATSConn) Request(subj string, data []byte, timeout time.Duration) (*nats.Msg, error) {
	args := m.Called(subj, data, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*nats.Msg), args.Error(1)
}
