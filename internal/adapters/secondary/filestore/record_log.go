package filestore

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"

	"model-governance-service/internal/adapters/secondary/memory"
	ports "model-governance-service/internal/core/ports/output"
)

const (
	fileExt = ".ndjson"
	// lockFile guards the directory against a second writer process.
	lockFile = "LOCK"
	// commitFile holds one line per acknowledged batch. Records above the
	// last committed head are discarded at open.
	commitFile = "commits.log"
)

// ErrLocked is returned by Open when another process holds the data dir.
var ErrLocked = errors.New("data dir is locked by another process")

// line is the on-disk form of one record inside <collection>.ndjson.
type line struct {
	Seq  int64           `json:"seq"`
	Key  string          `json:"key"`
	Data json.RawMessage `json:"data"`
}

type commitLine struct {
	Head int64 `json:"head"`
}

// RecordLog keeps one append-only NDJSON file per collection and serves
// reads from an in-memory index rebuilt at open.
type RecordLog struct {
	dir     string
	lock    *flock.Flock
	writeMu sync.Mutex
	index   *memory.RecordLog
	files   map[string]*os.File
	commits *os.File
}

// Open takes the directory lock and loads every collection file under dir.
// A torn final line left by a crash is truncated away, as is any record
// written by a batch whose commit line never made it to disk.
func Open(dir string) (*RecordLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	lock := flock.New(filepath.Join(dir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}

	rl, err := load(dir)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	rl.lock = lock
	return rl, nil
}

func load(dir string) (*RecordLog, error) {
	commitPath := filepath.Join(dir, commitFile)
	committed, journaled, err := loadCommitted(commitPath)
	if err != nil {
		return nil, err
	}
	if !journaled {
		// a dir without a journal predates it; every complete line counts
		committed = math.MaxInt64
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*"+fileExt))
	if err != nil {
		return nil, err
	}
	var all []ports.StoredRecord
	for _, path := range paths {
		collection := strings.TrimSuffix(filepath.Base(path), fileExt)
		recs, err := loadCollection(path, collection, committed)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Seq < all[j].Seq })

	index := memory.NewRecordLog()
	if err := index.Restore(all...); err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}
	commits, err := os.OpenFile(commitPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open commit journal: %w", err)
	}
	rl := &RecordLog{dir: dir, index: index, files: make(map[string]*os.File), commits: commits}
	head, _ := index.Head(context.Background())
	if !journaled && head > 0 {
		if err := rl.commit(head); err != nil {
			_ = commits.Close()
			return nil, fmt.Errorf("stamp commit journal: %w", err)
		}
	}
	log.WithFields(log.Fields{"dir": dir, "records": len(all), "head": head}).Info("File record log opened")
	return rl, nil
}

// loadCommitted returns the head of the last complete commit line. ok is
// false when the journal does not exist yet.
func loadCommitted(path string) (head int64, ok bool, err error) {
	err = readLines(path, func(raw []byte, offset int64) (bool, error) {
		var c commitLine
		if err := json.Unmarshal(raw, &c); err != nil {
			return false, fmt.Errorf("%s: corrupt commit at offset %d: %w", path, offset, err)
		}
		head = c.Head
		return true, nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	return head, err == nil, err
}

func loadCollection(path, collection string, committed int64) ([]ports.StoredRecord, error) {
	var out []ports.StoredRecord
	err := readLines(path, func(raw []byte, offset int64) (bool, error) {
		var ln line
		if err := json.Unmarshal(raw, &ln); err != nil {
			return false, fmt.Errorf("%s: corrupt record at offset %d: %w", path, offset, err)
		}
		if ln.Seq > committed {
			// sequences grow along the file, so the rest is uncommitted too
			log.WithFields(log.Fields{"file": path, "seq": ln.Seq, "committed": committed}).
				Warn("Discarding uncommitted records")
			return false, nil
		}
		out = append(out, ports.StoredRecord{Seq: ln.Seq, Collection: collection, Key: ln.Key, Data: ln.Data})
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// readLines calls fn for every complete line of path. When fn returns false
// or the file ends in a torn line, the file is truncated at that line.
func readLines(path string, fn func(raw []byte, offset int64) (bool, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return err
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	var good int64
	r := bufio.NewReader(bytes.NewReader(data))
	for {
		raw, err := r.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			break // a final line without newline was never acknowledged
		}
		if err != nil {
			return err
		}
		keep, err := fn(raw, good)
		if err != nil {
			return err
		}
		if !keep {
			break
		}
		good += int64(len(raw))
	}
	if good < int64(len(data)) {
		log.WithFields(log.Fields{"file": path, "offset": good}).Warn("Truncating file tail")
		if err := os.Truncate(path, good); err != nil {
			return fmt.Errorf("truncate %s: %w", path, err)
		}
	}
	return nil
}

// Append writes every entry, then a commit line for the batch, fsyncing each
// file before publishing to readers. If any write fails, every touched file
// is truncated back to its prior size.
func (s *RecordLog) Append(ctx context.Context, entries ...ports.Append) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := memory.ValidateAppends(entries); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	head, _ := s.index.Head(ctx)
	recs := make([]ports.StoredRecord, len(entries))
	buffers := make(map[string]*bytes.Buffer)
	var order []string
	for i, e := range entries {
		seq := head + int64(i) + 1
		recs[i] = ports.StoredRecord{Seq: seq, Collection: e.Collection, Key: e.Key, Data: e.Data}
		raw, err := json.Marshal(line{Seq: seq, Key: e.Key, Data: e.Data})
		if err != nil {
			return nil, fmt.Errorf("encode %s record: %w", e.Collection, err)
		}
		buf, ok := buffers[e.Collection]
		if !ok {
			buf = new(bytes.Buffer)
			buffers[e.Collection] = buf
			order = append(order, e.Collection)
		}
		buf.Write(raw)
		buf.WriteByte('\n')
	}

	sizes := make(map[string]int64, len(order))
	for _, collection := range order {
		f, err := s.file(collection)
		if err == nil {
			var info os.FileInfo
			if info, err = f.Stat(); err == nil {
				sizes[collection] = info.Size()
				if _, err = f.Write(buffers[collection].Bytes()); err == nil {
					err = f.Sync()
				}
			}
		}
		if err != nil {
			s.rollback(sizes)
			return nil, fmt.Errorf("append to %s: %w", collection, err)
		}
	}
	if err := s.commit(recs[len(recs)-1].Seq); err != nil {
		s.rollback(sizes)
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	if err := s.index.Restore(recs...); err != nil {
		return nil, err
	}
	seqs := make([]int64, len(recs))
	for i, r := range recs {
		seqs[i] = r.Seq
	}
	return seqs, nil
}

func (s *RecordLog) commit(head int64) error {
	info, err := s.commits.Stat()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(commitLine{Head: head})
	if err != nil {
		return err
	}
	if _, err = s.commits.Write(append(raw, '\n')); err == nil {
		err = s.commits.Sync()
	}
	if err != nil {
		if tErr := s.commits.Truncate(info.Size()); tErr != nil {
			log.WithError(tErr).Error("Failed to roll back partial commit line")
		}
		return err
	}
	return nil
}

func (s *RecordLog) rollback(sizes map[string]int64) {
	for collection, size := range sizes {
		f := s.files[collection]
		if err := f.Truncate(size); err != nil {
			log.WithError(err).WithField("collection", collection).Error("Failed to roll back partial append")
		}
	}
}

func (s *RecordLog) file(collection string) (*os.File, error) {
	if f, ok := s.files[collection]; ok {
		return f, nil
	}
	f, err := os.OpenFile(filepath.Join(s.dir, collection+fileExt), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	s.files[collection] = f
	return f, nil
}

func (s *RecordLog) List(ctx context.Context, collection, key string, asOf int64) ([]ports.StoredRecord, error) {
	return s.index.List(ctx, collection, key, asOf)
}

func (s *RecordLog) Head(ctx context.Context) (int64, error) {
	return s.index.Head(ctx)
}

func (s *RecordLog) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	var errs []error
	for name, f := range s.files {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	s.files = make(map[string]*os.File)
	if s.commits != nil {
		if err := s.commits.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close commit journal: %w", err))
		}
		s.commits = nil
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("unlock data dir: %w", err))
		}
		s.lock = nil
	}
	return errors.Join(errs...)
}
