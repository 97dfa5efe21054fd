package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

type ArtifactStore struct {
	mu    sync.RWMutex
	packs map[string]map[string][]byte
}

func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{packs: make(map[string]map[string][]byte)}
}

func (s *ArtifactStore) Stage(ctx context.Context, packID string) (ports.ArtifactStaging, error) {
	s.mu.RLock()
	_, exists := s.packs[packID]
	s.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("stage %s: pack already exists", packID)
	}
	return &staging{store: s, packID: packID, files: make(map[string][]byte)}, nil
}

func (s *ArtifactStore) Open(ctx context.Context, packID, name string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.packs[packID][name]
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *ArtifactStore) Remove(ctx context.Context, packID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.packs, packID)
	return nil
}

// Files lists committed file names of a pack, sorted.
func (s *ArtifactStore) Files(packID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for name := range s.packs[packID] {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type staging struct {
	store  *ArtifactStore
	packID string
	files  map[string][]byte
	done   bool
}

func (st *staging) Write(name string, data []byte) error {
	if st.done {
		return fmt.Errorf("write %s: staging closed", name)
	}
	st.files[name] = slices.Clone(data)
	return nil
}

func (st *staging) Commit() (string, error) {
	if st.done {
		return "", fmt.Errorf("commit %s: staging closed", st.packID)
	}
	st.store.mu.Lock()
	defer st.store.mu.Unlock()
	if _, exists := st.store.packs[st.packID]; exists {
		return "", fmt.Errorf("commit %s: pack already exists", st.packID)
	}
	st.store.packs[st.packID] = st.files
	st.done = true
	return "memory://evidence_packs/" + st.packID, nil
}

func (st *staging) Discard() error {
	st.done = true
	st.files = nil
	return nil
}
