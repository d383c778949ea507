// Copyright © 2025 The Gomon Project.

package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/zosmac/gomodel/model"
	"github.com/zosmac/gomodel/sample"
)

var (
	// ErrNotFound reports that no stored sample satisfies a request.
	ErrNotFound = errors.New("sample not found")

	encMode cbor.EncMode
	decMode cbor.DecMode
)

type (
	// Store is a directory of samples, one file per sample named by its timestamp.
	Store struct {
		sync.Mutex
		dir         string
		compression Compression
	}

	// Direction to search from a timestamp for a stored sample.
	Direction int

	// entry is a stored sample file.
	entry struct {
		timestamp   time.Time
		name        string
		compression Compression
	}
)

const (
	// Backward finds the sample at or before a timestamp.
	Backward Direction = iota
	// Forward finds the sample at or after a timestamp.
	Forward
)

func init() {
	var err error
	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	if encMode, err = encOptions.EncMode(); err != nil {
		panic("store: CBOR encoder initialization failed: " + err.Error())
	}
	decOptions := cbor.DecOptions{TextUnmarshaler: cbor.TextUnmarshalerTextString}
	if decMode, err = decOptions.DecMode(); err != nil {
		panic("store: CBOR decoder initialization failed: " + err.Error())
	}
}

// Open opens the store in dir, creating the directory if necessary. Samples
// are written with compression, and read with whichever they were written.
func Open(dir string, compression Compression) (*Store, error) {
	if int(compression) >= len(compressions) {
		return nil, fmt.Errorf("unsupported compression %s", compression)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open store %s: %w", dir, err)
	}
	return &Store{dir: dir, compression: compression}, nil
}

// Dir returns the store's directory.
func (st *Store) Dir() string {
	return st.dir
}

// Put stores a sample, named by its timestamp.
func (st *Store) Put(s *sample.Sample) error {
	buf, err := encMode.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode sample: %w", err)
	}
	if buf, err = st.compression.compress(buf); err != nil {
		return err
	}

	st.Lock()
	defer st.Unlock()

	path := filepath.Join(st.dir, strconv.FormatInt(s.Timestamp.UnixNano(), 10)+st.compression.ext())
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write sample: %w", err)
	}
	return nil
}

// Get returns the stored sample nearest to timestamp in the direction given.
func (st *Store) Get(timestamp time.Time, dir Direction) (*sample.Sample, error) {
	st.Lock()
	defer st.Unlock()

	es, err := st.entries()
	if err != nil {
		return nil, err
	}
	i, ok := search(es, timestamp, dir)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, dir, timestamp.Format(time.RFC3339Nano))
	}
	return st.read(es[i])
}

// Latest returns the most recently stored sample.
func (st *Store) Latest() (*sample.Sample, error) {
	st.Lock()
	defer st.Unlock()

	es, err := st.entries()
	if err != nil {
		return nil, err
	}
	if len(es) == 0 {
		return nil, fmt.Errorf("%w: store %s is empty", ErrNotFound, st.dir)
	}
	return st.read(es[len(es)-1])
}

// Prune removes the samples stored before a time, returning how many were removed.
func (st *Store) Prune(before time.Time) (int, error) {
	st.Lock()
	defer st.Unlock()

	es, err := st.entries()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range es {
		if !e.timestamp.Before(before) {
			break
		}
		if err := os.Remove(filepath.Join(st.dir, e.name)); err != nil {
			return n, fmt.Errorf("prune %s: %w", e.name, err)
		}
		n++
	}
	return n, nil
}

// Replay derives the model of the sample stored at or before timestamp,
// with rates against the sample stored before it.
func (st *Store) Replay(timestamp time.Time) (*model.Model, error) {
	st.Lock()
	defer st.Unlock()

	es, err := st.entries()
	if err != nil {
		return nil, err
	}
	i, ok := search(es, timestamp, Backward)
	if !ok {
		return nil, fmt.Errorf("%w: replay %s", ErrNotFound, timestamp.Format(time.RFC3339Nano))
	}
	cur, err := st.read(es[i])
	if err != nil {
		return nil, err
	}

	var last *model.Last
	if i > 0 {
		prev, err := st.read(es[i-1])
		if err != nil {
			return nil, err
		}
		last = &model.Last{Sample: prev, Elapsed: cur.Timestamp.Sub(prev.Timestamp)}
	}
	return model.New(cur.Timestamp, cur, last), nil
}

// entries lists the stored samples in timestamp order.
func (st *Store) entries() ([]entry, error) {
	des, err := os.ReadDir(st.dir)
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", st.dir, err)
	}
	var es []entry
	for _, de := range des {
		if de.IsDir() {
			continue
		}
		c, base, ok := compressionOf(de.Name())
		if !ok {
			continue
		}
		ns, err := strconv.ParseInt(base, 10, 64)
		if err != nil {
			continue
		}
		es = append(es, entry{timestamp: time.Unix(0, ns), name: de.Name(), compression: c})
	}
	slices.SortFunc(es, func(a, b entry) int {
		return a.timestamp.Compare(b.timestamp)
	})
	return es, nil
}

// search finds the entry at timestamp, or the nearest one in the direction given.
func search(es []entry, timestamp time.Time, dir Direction) (int, bool) {
	i, found := slices.BinarySearchFunc(es, timestamp, func(e entry, t time.Time) int {
		return e.timestamp.Compare(t)
	})
	switch {
	case found:
		return i, true
	case dir == Forward:
		return i, i < len(es)
	default:
		return i - 1, i > 0
	}
}

func (st *Store) read(e entry) (*sample.Sample, error) {
	buf, err := os.ReadFile(filepath.Join(st.dir, e.name))
	if err != nil {
		return nil, fmt.Errorf("read sample: %w", err)
	}
	if buf, err = e.compression.decompress(buf); err != nil {
		return nil, fmt.Errorf("read sample %s: %w", e.name, err)
	}
	var s sample.Sample
	if err := decMode.Unmarshal(buf, &s); err != nil {
		return nil, fmt.Errorf("decode sample %s: %w", e.name, err)
	}
	return &s, nil
}

// String names the direction.
func (d Direction) String() string {
	if d == Forward {
		return "at or after"
	}
	return "at or before"
}
