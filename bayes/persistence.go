package bayes

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

const snapshotSchemaVersion uint16 = 1
const defaultSnapshotFilePath = "/tmp/codebayes.msgpack"

type tempFile interface {
	io.Writer
	Sync() error
	Close() error
	Name() string
}

var (
	errNilWriter          = errors.New("writer is nil")
	errNilReader          = errors.New("reader is nil")
	errPathNotAbsolute    = errors.New("path must be absolute")
	errUnsupportedVersion = errors.New("unsupported snapshot schema")
	errInvalidCapacity    = errors.New("invalid capacity in snapshot")
	errMemoryOverflow     = errors.New("snapshot holds more observations than its capacity")
	createTemp            = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	renameFile            = os.Rename
	removeFile            = os.Remove
)

type observation[F comparable, C cmp.Ordered] struct {
	Category C   `msgpack:"c"`
	Features []F `msgpack:"f"`
}

// snapshot stores the remembered observations rather than the derived counts,
// so a restored classifier is rebuilt through Learn and stays consistent.
type snapshot[F comparable, C cmp.Ordered] struct {
	Schema   uint16              `msgpack:"schema"`
	Capacity uint32              `msgpack:"capacity"`
	Memory   []observation[F, C] `msgpack:"memory"`
}

// Save writes the classifier's memory to w using msgpack encoding.
func (c *Classifier[F, C]) Save(w io.Writer) error {
	if w == nil {
		return errNilWriter
	}

	capacity, err := safecast.Conv[uint32](c.Capacity())
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidCapacity, err)
	}

	observations := c.Observations()
	state := snapshot[F, C]{
		Schema:   snapshotSchemaVersion,
		Capacity: capacity,
		Memory:   make([]observation[F, C], len(observations)),
	}
	for i, cl := range observations {
		state.Memory[i] = observation[F, C]{Category: cl.Category, Features: cl.Features}
	}

	if err := msgpack.NewEncoder(w).Encode(&state); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return nil
}

// Load reads a msgpack snapshot from r and replaces the classifier's state.
func (c *Classifier[F, C]) Load(r io.Reader) error {
	if r == nil {
		return errNilReader
	}

	var state snapshot[F, C]
	if err := msgpack.NewDecoder(r).Decode(&state); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	if err := validateSnapshot(state); err != nil {
		return err
	}
	capacity, err := safecast.Conv[int](state.Capacity)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidCapacity, err)
	}

	restored := newMemory[F, C](capacity)
	for _, obs := range state.Memory {
		restored.Learn(obs.Category, obs.Features)
	}
	c.Memory = restored

	return nil
}

// SaveToFile writes the snapshot to path atomically.
func (c *Classifier[F, C]) SaveToFile(path string) error {
	path = resolveSnapshotPath(path)
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %q", errPathNotAbsolute, path)
	}

	dir := filepath.Dir(path)
	tmp, err := createTemp(dir, ".codebayes-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tmp.Name()
	defer removeFile(tempPath)

	if err := c.Save(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := renameFile(tempPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// LoadFromFile reads a snapshot written by SaveToFile.
func (c *Classifier[F, C]) LoadFromFile(path string) error {
	path = resolveSnapshotPath(path)
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %q", errPathNotAbsolute, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()

	return c.Load(f)
}

func validateSnapshot[F comparable, C cmp.Ordered](state snapshot[F, C]) error {
	if state.Schema != snapshotSchemaVersion {
		return fmt.Errorf("%w: %d", errUnsupportedVersion, state.Schema)
	}
	if state.Capacity == 0 {
		return fmt.Errorf("%w: %d", errInvalidCapacity, state.Capacity)
	}
	if uint64(len(state.Memory)) > uint64(state.Capacity) {
		return fmt.Errorf("%w: %d > %d", errMemoryOverflow, len(state.Memory), state.Capacity)
	}
	return nil
}

func resolveSnapshotPath(path string) string {
	if path == "" {
		return defaultSnapshotFilePath
	}
	return path
}
