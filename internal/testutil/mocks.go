package testutil

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

// MockRecordLog is a mock of RecordLog.
type MockRecordLog struct {
	mock.Mock
}

func (m *MockRecordLog) Append(ctx context.Context, entries ...ports.Append) ([]int64, error) {
	args := m.Called(ctx, entries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockRecordLog) List(ctx context.Context, collection, key string, asOf int64) ([]ports.StoredRecord, error) {
	args := m.Called(ctx, collection, key, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.StoredRecord), args.Error(1)
}

func (m *MockRecordLog) Head(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordLog) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockModelRepo is a mock of ModelRepository.
type MockModelRepo struct {
	mock.Mock
}

func (m *MockModelRepo) Get(ctx context.Context, id string, asOf int64) (*domain.AIModel, error) {
	args := m.Called(ctx, id, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AIModel), args.Error(1)
}

func (m *MockModelRepo) List(ctx context.Context, filter domain.ModelFilter, asOf int64) ([]*domain.AIModel, error) {
	args := m.Called(ctx, filter, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AIModel), args.Error(1)
}

// MockAuditLogRepo is a mock of AuditLogRepository.
type MockAuditLogRepo struct {
	mock.Mock
}

func (m *MockAuditLogRepo) List(ctx context.Context, filter domain.AuditFilter, asOf int64) ([]*domain.AuditLogEntry, error) {
	args := m.Called(ctx, filter, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditLogEntry), args.Error(1)
}

func (m *MockAuditLogRepo) Last(ctx context.Context) (*domain.AuditLogEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditLogEntry), args.Error(1)
}

// MockTextCompleter is a mock of TextCompleter.
type MockTextCompleter struct {
	mock.Mock
}

func (m *MockTextCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

// MockArtifactStore is a mock of ArtifactStore.
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Stage(ctx context.Context, packID string) (ports.ArtifactStaging, error) {
	args := m.Called(ctx, packID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.ArtifactStaging), args.Error(1)
}

func (m *MockArtifactStore) Open(ctx context.Context, packID, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, packID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockArtifactStore) Remove(ctx context.Context, packID string) error {
	args := m.Called(ctx, packID)
	return args.Error(0)
}

// MockArtifactStaging is a mock of ArtifactStaging.
type MockArtifactStaging struct {
	mock.Mock
}

func (m *MockArtifactStaging) Write(name string, data []byte) error {
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockArtifactStaging) Commit() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockArtifactStaging) Discard() error {
	args := m.Called()
	return args.Error(0)
}
