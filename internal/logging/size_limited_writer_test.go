package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSizeLimitedWriterTruncatesAtCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duel-server.log")
	w, err := newSizeLimitedWriter(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer w.Close()

	chunk := bytes.Repeat([]byte("a"), 600*1024)
	for i := 0; i < 3; i++ {
		if _, err := w.Write(chunk); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() > 1024*1024 {
		t.Fatalf("log grew to %d bytes past the 1MB cap", info.Size())
	}
	// The last write survives the truncation whole.
	if info.Size() != int64(len(chunk)) {
		t.Fatalf("log size = %d, want %d", info.Size(), len(chunk))
	}
}

func TestSizeLimitedWriterReopensAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duel-server.log")
	w, err := newSizeLimitedWriter(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := w.Write([]byte("second\n")); err != nil {
		t.Fatalf("write after close: %v", err)
	}
	defer w.Close()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(b) != "first\nsecond\n" {
		t.Fatalf("log contents = %q", b)
	}
}
