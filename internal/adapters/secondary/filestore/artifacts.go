package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

const (
	packsDir      = "evidence_packs"
	stagingPrefix = ".staging-"
	// staging dirs older than this are leftovers of a crashed generation
	staleStaging = time.Hour
)

// ArtifactStore lays packs out as <root>/evidence_packs/<pack id>/<file>.
// Files are staged in a hidden sibling directory and published with a
// single directory rename.
type ArtifactStore struct {
	root string
}

func NewArtifactStore(root string) (*ArtifactStore, error) {
	dir := filepath.Join(root, packsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts dir: %w", err)
	}
	sweepStaging(dir, time.Now().Add(-staleStaging))
	return &ArtifactStore{root: root}, nil
}

// sweepStaging removes staging dirs last modified before cutoff. Younger
// ones may belong to a generation still running in another process.
func sweepStaging(dir string, cutoff time.Time) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.WithError(err).WithField("dir", dir).Warn("Failed to scan for stale staging dirs")
		return
	}
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), stagingPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			log.WithError(err).WithField("dir", path).Warn("Failed to remove stale staging dir")
			continue
		}
		log.WithField("dir", path).Info("Removed stale staging dir")
	}
}

func (s *ArtifactStore) packPath(packID string) (string, error) {
	if !safeName(packID) {
		return "", domain.Invalid("evidence_pack_id", fmt.Sprintf("unsafe id %q", packID))
	}
	return filepath.Join(s.root, packsDir, packID), nil
}

func (s *ArtifactStore) Stage(ctx context.Context, packID string) (ports.ArtifactStaging, error) {
	final, err := s.packPath(packID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Lstat(final); err == nil {
		return nil, fmt.Errorf("stage %s: pack already exists", packID)
	}
	dir, err := os.MkdirTemp(filepath.Join(s.root, packsDir), stagingPrefix+packID+"-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &diskStaging{dir: dir, final: final}, nil
}

func (s *ArtifactStore) Open(ctx context.Context, packID, name string) (io.ReadCloser, error) {
	dir, err := s.packPath(packID)
	if err != nil {
		return nil, err
	}
	if !safeName(name) {
		return nil, domain.ErrArtifactNotFound
	}
	path := filepath.Join(dir, name)
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrArtifactNotFound
		}
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	return os.Open(path)
}

func (s *ArtifactStore) Remove(ctx context.Context, packID string) error {
	dir, err := s.packPath(packID)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

type diskStaging struct {
	dir   string
	final string
	done  bool
}

func (st *diskStaging) Write(name string, data []byte) error {
	if st.done {
		return fmt.Errorf("write %s: staging closed", name)
	}
	if !safeName(name) {
		return fmt.Errorf("write %s: unsafe file name", name)
	}
	f, err := os.OpenFile(filepath.Join(st.dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (st *diskStaging) Commit() (string, error) {
	if st.done {
		return "", fmt.Errorf("commit: staging closed")
	}
	if _, err := os.Lstat(st.final); err == nil {
		return "", fmt.Errorf("commit: %s already exists", st.final)
	}
	if err := os.Rename(st.dir, st.final); err != nil {
		return "", fmt.Errorf("publish pack: %w", err)
	}
	st.done = true
	if err := syncDir(filepath.Dir(st.final)); err != nil {
		// the pack is visible but not durable; unpublish it
		if rmErr := os.RemoveAll(st.final); rmErr != nil {
			log.WithError(rmErr).WithField("dir", st.final).Error("Failed to unpublish pack")
		}
		return "", fmt.Errorf("sync packs dir: %w", err)
	}
	return st.final, nil
}

func (st *diskStaging) Discard() error {
	if st.done {
		return nil
	}
	st.done = true
	return os.RemoveAll(st.dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

func safeName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.HasPrefix(name, ".")
}
