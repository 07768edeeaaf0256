package share

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/example/sharesheet/pkg/utils"
)

const (
	// DefaultDirName is the staging directory created under os.TempDir.
	DefaultDirName = "sharesheet-share"

	// MaxNameLength is the longest unique name the manager will produce.
	MaxNameLength = 255

	dirPerm fs.FileMode = 0o700

	tempPattern = ".staging-*"
)

// Option configures a Manager.
type Option func(*Manager)

// withDirName sets the staging directory name. It must be a single plain path
// element; anything else makes every operation fail with ErrInvalidName.
func withDirName(name string) Option {
	return func(m *Manager) {
		m.dirName = name
	}
}

// WithMaxSize limits the size of a single staged payload. Zero disables the
// limit.
func WithMaxSize(n int64) Option {
	return func(m *Manager) {
		m.maxSize = n
	}
}

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager owns the staging directory and every file it writes there.
// Construction touches nothing on disk; the directory is created on first use.
type Manager struct {
	root    string
	dirName string
	maxSize int64
	logger  *slog.Logger

	mu      sync.Mutex
	tracked []*StagedFile
}

// NewManager returns a Manager rooted at os.TempDir.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		root:    os.TempDir(),
		dirName: DefaultDirName,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the staging directory path. It may not exist yet.
func (m *Manager) Dir() string {
	return filepath.Join(m.root, m.dirName)
}

func (m *Manager) validDirName() bool {
	if m.dirName == "" || m.dirName == "." || m.dirName == ".." {
		return false
	}
	return utils.SanitizeFilename(m.dirName) == m.dirName
}

// EnsureDir creates the staging directory if needed and returns its path.
// An existing entry that is not a real directory is refused.
func (m *Manager) EnsureDir() (string, error) {
	const op = "ensure"
	if !m.validDirName() {
		return "", newError(op, m.dirName, ErrInvalidName)
	}

	dir := m.Dir()
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", newError(op, dir, err)
	}

	info, err := os.Lstat(dir)
	if err != nil {
		return "", newError(op, dir, err)
	}
	if info.Mode()&fs.ModeSymlink != 0 || !info.IsDir() {
		return "", newError(op, dir, ErrPathTraversal)
	}
	return dir, nil
}

// Create writes payload into a new file named after name and returns its
// descriptor. name is untrusted: names with a ".." element are rejected, the
// rest is reduced to its last element and filtered to [A-Za-z0-9._-].
func (m *Manager) Create(ctx context.Context, name string, payload []byte) (*StagedFile, error) {
	const op = "stage"

	if err := ctx.Err(); err != nil {
		return nil, newError(op, name, err)
	}

	dir, err := m.EnsureDir()
	if err != nil {
		return nil, err
	}

	if utils.HasTraversal(name) {
		return nil, newError(op, name, ErrPathTraversal)
	}
	sanitized := utils.SanitizeFilename(name)
	if sanitized == "" {
		return nil, newError(op, name, ErrInvalidName)
	}
	if m.maxSize > 0 && int64(len(payload)) > m.maxSize {
		return nil, newError(op, name, fmt.Errorf("%w (%d > %d bytes)", ErrTooLarge, len(payload), m.maxSize))
	}

	canonDir, err := canonicalDir(dir)
	if err != nil {
		return nil, newError(op, name, err)
	}

	id := uuid.NewString()
	sanitized = utils.TruncateFilename(sanitized, MaxNameLength-len(id)-1)
	unique := id + "-" + sanitized

	candidate, err := filepath.Abs(filepath.Join(canonDir, unique))
	if err != nil {
		return nil, newError(op, name, err)
	}
	if !isDirectChild(canonDir, candidate) {
		return nil, newError(op, name, ErrPathTraversal)
	}

	f := &StagedFile{
		Name:          name,
		SanitizedName: sanitized,
		UniqueName:    unique,
		Path:          candidate,
		Size:          int64(len(payload)),
		MIMEType:      DetectMIMEType(sanitized, payload),
	}

	if err := ctx.Err(); err != nil {
		return nil, newError(op, name, err)
	}
	if err := writeFileAtomic(canonDir, candidate, payload); err != nil {
		return nil, newError(op, name, err)
	}

	sum := blake3.Sum256(payload)
	f.Digest = hex.EncodeToString(sum[:])
	f.state.Store(int32(StateWritten))

	m.mu.Lock()
	m.tracked = append(m.tracked, f)
	m.mu.Unlock()

	m.logger.Debug("staged file", "path", f.Path, "size", f.Size, "mime", f.MIMEType)
	return f, nil
}

// Release deletes f from disk. It is idempotent and never fails: errors are
// logged. Only files this manager created and still tracks are removed.
func (m *Manager) Release(f *StagedFile) {
	if f == nil || !f.markReleased() {
		return
	}

	if !m.untrack(f) {
		// Already swept by CleanupAll or never ours.
		return
	}

	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.logger.Warn("failed to remove staged file", "path", f.Path, "error", err)
		return
	}
	m.logger.Debug("released staged file", "path", f.Path)
}

// CleanupAll removes the whole staging directory, including files created by
// earlier processes. A missing directory is not an error.
func (m *Manager) CleanupAll() error {
	const op = "cleanup"
	if !m.validDirName() {
		return newError(op, m.dirName, ErrInvalidName)
	}

	m.mu.Lock()
	swept := m.tracked
	m.tracked = nil
	m.mu.Unlock()

	for _, f := range swept {
		f.markReleased()
	}

	dir := m.Dir()
	if err := os.RemoveAll(dir); err != nil {
		return newError(op, dir, err)
	}
	m.logger.Debug("removed staging directory", "dir", dir, "tracked", len(swept))
	return nil
}

// Tracked returns the files created and not yet released, oldest first.
func (m *Manager) Tracked() []*StagedFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*StagedFile, len(m.tracked))
	copy(out, m.tracked)
	return out
}

func (m *Manager) untrack(f *StagedFile) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tracked {
		if t == f {
			m.tracked = append(m.tracked[:i], m.tracked[i+1:]...)
			return true
		}
	}
	return false
}

func canonicalDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// isDirectChild reports whether path sits immediately inside dir. Both must be
// absolute and clean.
func isDirectChild(dir, path string) bool {
	prefix := strings.TrimSuffix(dir, string(filepath.Separator)) + string(filepath.Separator)
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	if rest == "" || rest == "." || rest == ".." || strings.ContainsRune(rest, filepath.Separator) {
		return false
	}
	return filepath.Dir(path) == filepath.Clean(dir)
}

// writeFileAtomic writes data to a temp file in dir and renames it to path, so
// readers never observe a partial file.
func writeFileAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	// CreateTemp opens the file with mode 0600.
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
