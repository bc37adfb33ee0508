package storage

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

type line struct {
	MatchID string `json:"match_id"`
}

func TestFileRotator_RotatesOnCount(t *testing.T) {
	dir := t.TempDir()
	r, err := NewFileRotator(dir, WithMaxMatches(2))
	if err != nil {
		t.Fatalf("NewFileRotator: %v", err)
	}

	for _, id := range []string{"NA1_1", "NA1_2", "NA1_3"} {
		if err := r.WriteMatch(line{MatchID: id}); err != nil {
			t.Fatalf("WriteMatch(%s): %v", id, err)
		}
	}
	if n, _ := r.Stats(); n != 1 {
		t.Errorf("Expected 1 match in hot file, got %d", n)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	files, err := WarmFiles(r.WarmDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 warm files, got %v", files)
	}
	if got := countLines(t, files[0]); got != 2 {
		t.Errorf("Expected 2 lines in first file, got %d", got)
	}

	hot, _ := os.ReadDir(filepath.Join(dir, "hot"))
	if len(hot) != 0 {
		t.Errorf("Expected empty hot dir after close, got %d entries", len(hot))
	}
}

func TestFileRotator_RotatesOnAge(t *testing.T) {
	r, err := NewFileRotator(t.TempDir(), WithMaxAge(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	clock := time.Now()
	r.now = func() time.Time { return clock }
	r.fileOpenedAt = clock

	r.WriteMatch(line{MatchID: "NA1_1"})
	if files, _ := WarmFiles(r.WarmDir()); len(files) != 0 {
		t.Fatalf("Rotated too early: %v", files)
	}
	clock = clock.Add(2 * time.Minute)
	r.WriteMatch(line{MatchID: "NA1_2"})

	files, _ := WarmFiles(r.WarmDir())
	if len(files) != 1 {
		t.Fatalf("Expected age rotation to produce 1 file, got %d", len(files))
	}
	if got := countLines(t, files[0]); got != 2 {
		t.Errorf("Expected 2 lines, got %d", got)
	}
	if n, _ := r.Stats(); n != 0 {
		t.Errorf("Expected fresh hot file, got %d matches", n)
	}
	r.Close()
}

func TestFileRotator_EmptyFileRemoved(t *testing.T) {
	r, err := NewFileRotator(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r.Close()
	files, _ := WarmFiles(r.WarmDir())
	if len(files) != 0 {
		t.Errorf("Expected no warm files, got %v", files)
	}
	if err := r.WriteMatch(line{}); err == nil {
		t.Error("Expected error writing to closed rotator")
	}
}

func TestCompressToCold(t *testing.T) {
	r, err := NewFileRotator(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r.WriteMatch(line{MatchID: "NA1_1"})
	r.Close()

	files, _ := WarmFiles(r.WarmDir())
	cold, err := CompressToCold(files[0], r.ColdDir())
	if err != nil {
		t.Fatalf("CompressToCold: %v", err)
	}
	if _, err := os.Stat(files[0]); !os.IsNotExist(err) {
		t.Error("Expected warm file to be removed")
	}

	f, err := os.Open(cold)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("archive is not gzip: %v", err)
	}
	sc := bufio.NewScanner(gz)
	if !sc.Scan() || sc.Text() != `{"match_id":"NA1_1"}` {
		t.Errorf("Unexpected archive content %q", sc.Text())
	}
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
	}
	return n
}
