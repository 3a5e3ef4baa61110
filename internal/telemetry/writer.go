package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileWriter appends telemetry events to rotating JSON Lines files. Buffering
// happens upstream in the queue; the writer itself is synchronous and is only
// called from the worker goroutine, the mutex guards rotation against Flush
// from shutdown.
type FileWriter struct {
	fileTemplate string // e.g. "/var/log/alias-gateway/events-%s.jsonl"
	maxSize      int64  // maximum size in bytes before rotation
	maxFiles     int    // maximum number of rotated files to keep

	mu          sync.Mutex
	currentFile string
	file        *os.File
	writer      *bufio.Writer
	currentSize int64
}

// NewFileWriter creates the writer and opens the initial file.
func NewFileWriter(fileTemplate string, maxSize int64, maxFiles int) (*FileWriter, error) {
	w := &FileWriter{
		fileTemplate: fileTemplate,
		maxSize:      maxSize,
		maxFiles:     maxFiles,
	}
	if err := w.openFile(); err != nil {
		return nil, err
	}
	return w, nil
}

// newFileName applies the current timestamp to the file template. The
// timestamp format used is "20060102150405".
func (w *FileWriter) newFileName() string {
	timestamp := time.Now().Format("20060102150405")
	return fmt.Sprintf(w.fileTemplate, timestamp)
}

// openFile opens (or creates) the active file and prepares the buffered
// writer. It also ensures that the directory for the file exists.
func (w *FileWriter) openFile() error {
	w.currentFile = w.newFileName()
	dir := filepath.Dir(w.currentFile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(w.currentFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	w.currentSize = fi.Size()
	w.file = file
	w.writer = bufio.NewWriter(file)
	return nil
}

// rotateIfNeeded rotates the file when adding n bytes would exceed the max
// size. Caller must hold the mutex.
func (w *FileWriter) rotateIfNeeded(n int) error {
	if w.currentSize+int64(n) < w.maxSize {
		return nil
	}

	if err := w.writer.Flush(); err != nil {
		return err
	}
	if err := w.file.Close(); err != nil {
		return err
	}

	// The new file gets a new timestamp
	if err := w.openFile(); err != nil {
		return err
	}
	return w.cleanupOldFiles()
}

// cleanupOldFiles removes the oldest rotated files if more than maxFiles exist.
func (w *FileWriter) cleanupOldFiles() error {
	pattern := fmt.Sprintf(w.fileTemplate, "*")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	sort.Slice(matches, func(i, j int) bool {
		fi, err1 := os.Stat(matches[i])
		fj, err2 := os.Stat(matches[j])
		if err1 != nil || err2 != nil {
			return false
		}
		return fi.ModTime().Before(fj.ModTime())
	})

	excess := len(matches) - w.maxFiles
	for i := 0; i < excess; i++ {
		_ = os.Remove(matches[i])
	}
	return nil
}

// WriteBatch appends each record as one JSON line and flushes. Records that
// fail to marshal are skipped; a batch is all-or-nothing only at the I/O
// level, not per record.
func (w *FileWriter) WriteBatch(records []map[string]interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			continue
		}
		line := string(data) + "\n"
		n := len(line)

		if err := w.rotateIfNeeded(n); err != nil {
			return err
		}
		if _, err := w.writer.WriteString(line); err != nil {
			return err
		}
		w.currentSize += int64(n)
	}

	return w.writer.Flush()
}

// Close flushes and closes the active file.
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Flush(); err != nil {
		return err
	}
	return w.file.Close()
}
