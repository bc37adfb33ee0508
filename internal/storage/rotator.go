package storage

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
)

// Rotation defaults
const (
	DefaultMaxMatchesPerFile = 1000
	DefaultMaxFileAge        = 1 * time.Hour
)

// FileRotator writes normalized matches, one JSON object per line, into a
// hot file that is moved to warm storage once it is full or old enough.
type FileRotator struct {
	mu sync.Mutex

	hotDir  string // active writes
	warmDir string // closed files awaiting indexing
	coldDir string // gzip archives

	maxMatches int
	maxAge     time.Duration
	now        func() time.Time
	logger     *slog.Logger

	currentFile   *os.File
	currentWriter *bufio.Writer
	currentPath   string
	matchCount    int
	fileOpenedAt  time.Time
	seq           int
}

// Option configures a FileRotator.
type Option func(*FileRotator)

// WithMaxMatches rotates after n matches per file.
func WithMaxMatches(n int) Option {
	return func(r *FileRotator) {
		if n > 0 {
			r.maxMatches = n
		}
	}
}

// WithMaxAge rotates files older than d.
func WithMaxAge(d time.Duration) Option {
	return func(r *FileRotator) {
		if d > 0 {
			r.maxAge = d
		}
	}
}

// WithLogger sets the logger for rotation events.
func WithLogger(l *slog.Logger) Option {
	return func(r *FileRotator) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewFileRotator creates the hot/warm/cold layout under baseDir and opens
// the first hot file.
func NewFileRotator(baseDir string, opts ...Option) (*FileRotator, error) {
	r := &FileRotator{
		hotDir:     filepath.Join(baseDir, "hot"),
		warmDir:    filepath.Join(baseDir, "warm"),
		coldDir:    filepath.Join(baseDir, "cold"),
		maxMatches: DefaultMaxMatchesPerFile,
		maxAge:     DefaultMaxFileAge,
		now:        time.Now,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, dir := range []string{r.hotDir, r.warmDir, r.coldDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := r.rotate(); err != nil {
		return nil, err
	}
	return r, nil
}

// SetColdDir moves cold storage elsewhere (e.g. a bigger disk).
func (r *FileRotator) SetColdDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create cold directory: %w", err)
	}
	r.mu.Lock()
	r.coldDir = path
	r.mu.Unlock()
	return nil
}

// WarmDir is where closed files land.
func (r *FileRotator) WarmDir() string { return r.warmDir }

// ColdDir is where compressed archives land.
func (r *FileRotator) ColdDir() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.coldDir
}

// WriteMatch appends one match line, flushes it and rotates if needed.
func (r *FileRotator) WriteMatch(match any) error {
	data, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("failed to marshal match: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentFile == nil {
		return fmt.Errorf("rotator is closed")
	}
	if _, err := r.currentWriter.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write match: %w", err)
	}
	if err := r.currentWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	r.matchCount++

	if r.shouldRotate() {
		return r.rotate()
	}
	return nil
}

func (r *FileRotator) shouldRotate() bool {
	if r.currentFile == nil {
		return true
	}
	if r.matchCount >= r.maxMatches {
		return true
	}
	return r.now().Sub(r.fileOpenedAt) >= r.maxAge
}

// rotate closes the current file, moves it to warm and opens a new one.
func (r *FileRotator) rotate() error {
	if err := r.closeCurrent(); err != nil {
		return err
	}

	r.seq++
	filename := fmt.Sprintf("matches_%s_%03d.ndjson", r.now().Format("2006-01-02_15-04-05"), r.seq)
	r.currentPath = filepath.Join(r.hotDir, filename)

	file, err := os.Create(r.currentPath)
	if err != nil {
		return fmt.Errorf("failed to create new file: %w", err)
	}
	r.currentFile = file
	r.currentWriter = bufio.NewWriterSize(file, 64*1024)
	r.matchCount = 0
	r.fileOpenedAt = r.now()

	r.logger.Debug("opened hot file", "file", filename)
	return nil
}

func (r *FileRotator) closeCurrent() error {
	if r.currentFile == nil {
		return nil
	}
	if err := r.currentWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush before rotation: %w", err)
	}
	if err := r.currentFile.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	r.currentFile = nil

	name := filepath.Base(r.currentPath)
	if r.matchCount == 0 {
		return os.Remove(r.currentPath)
	}
	if err := os.Rename(r.currentPath, filepath.Join(r.warmDir, name)); err != nil {
		return fmt.Errorf("failed to move to warm storage: %w", err)
	}
	r.logger.Info("moved file to warm storage", "file", name, "matches", r.matchCount)
	return nil
}

// Close flushes the current file and moves it to warm if it has data.
func (r *FileRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeCurrent()
}

// Stats returns the match count and name of the hot file.
func (r *FileRotator) Stats() (matchesInCurrentFile int, currentFileName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.matchCount, filepath.Base(r.currentPath)
}

// WarmFiles lists closed files in name (and therefore creation) order.
func WarmFiles(warmDir string) ([]string, error) {
	entries, err := os.ReadDir(warmDir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".ndjson") {
			continue
		}
		files = append(files, filepath.Join(warmDir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// CompressToCold gzips a warm file into coldDir and removes the original.
// It returns the archive path.
func CompressToCold(warmPath, coldDir string) (string, error) {
	src, err := os.Open(warmPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	coldPath := filepath.Join(coldDir, filepath.Base(warmPath)+".gz")
	dst, err := os.Create(coldPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	if err := os.Remove(warmPath); err != nil {
		return "", err
	}
	return coldPath, nil
}
