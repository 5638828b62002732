package log

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	defaultFileMode = 0644
	defaultDirMode  = 0755

	secondsPerDay = 24 * 60 * 60

	// rotation is checked at most once per interval, not on every write
	_rotateCheckInterval = time.Second
)

// RotateWriter is an io.Writer over a log file that rotates by size and
// by a daily split hour. Rotated files get a timestamp suffix.
type RotateWriter struct {
	mu         sync.Mutex
	path       string
	splitHour  int
	splitMB    int
	fd         *os.File
	createTime time.Time
	lastCheck  time.Time
	now        func() time.Time
}

// NewRotateWriter opens (or creates) path for appending.
func NewRotateWriter(path string, splitHour, splitMB int) (*RotateWriter, error) {
	if len(path) == 0 {
		return nil, errors.New("filename is empty")
	}
	w := &RotateWriter{
		path:      path,
		splitHour: splitHour,
		splitMB:   splitMB,
		now:       time.Now,
	}
	fd, createTime, err := openLogFile(path)
	if err != nil {
		return nil, err
	}
	w.fd, w.createTime = fd, createTime
	return w, nil
}

// Write appends p, rotating first if the file is due.
func (w *RotateWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fd == nil {
		return 0, os.ErrClosed
	}
	now := w.now()
	if now.Sub(w.lastCheck) >= _rotateCheckInterval {
		w.lastCheck = now
		if err := w.rotateIfNeeded(now); err != nil {
			return 0, err
		}
	}
	return w.fd.Write(p)
}

// Close closes the current file.
func (w *RotateWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fd == nil {
		return nil
	}
	err := w.fd.Close()
	w.fd = nil
	return err
}

func (w *RotateWriter) rotateIfNeeded(now time.Time) error {
	fi, err := os.Stat(w.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("stat file: %w", err)
		}
		// moved away underneath us
		return w.reopen()
	}

	if !shouldRotateByTime(w.createTime, now, w.splitHour) && !shouldRotateBySize(fi.Size(), w.splitMB) {
		return nil
	}
	if err := moveLogFile(w.fd, w.path, now); err != nil {
		return fmt.Errorf("move log file: %w", err)
	}
	w.fd = nil
	return w.reopen()
}

func (w *RotateWriter) reopen() error {
	if w.fd != nil {
		_ = w.fd.Close()
	}
	fd, createTime, err := openLogFile(w.path)
	if err != nil {
		return fmt.Errorf("open new log file: %w", err)
	}
	w.fd = fd
	w.createTime = createTime
	return nil
}

func shouldRotateByTime(createTime, now time.Time, splitHour int) bool {
	if splitHour == 0 {
		return false
	}
	if createTime.Unix()+secondsPerDay <= now.Unix() {
		return true
	}
	if createTime.Day() == now.Day() {
		return now.Hour() >= splitHour && createTime.Hour() < splitHour
	}
	return now.Hour() >= splitHour
}

func shouldRotateBySize(size int64, splitMB int) bool {
	if splitMB == 0 {
		return false
	}
	return size >= int64(splitMB)<<20
}

func moveLogFile(oldFD *os.File, filePath string, now time.Time) error {
	if oldFD != nil {
		if err := oldFD.Close(); err != nil {
			return fmt.Errorf("close old file: %w", err)
		}
	}

	newFilePath, err := backupFileName(filePath, now)
	if err != nil {
		return err
	}
	if err := os.Rename(filePath, newFilePath); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

// backupFileName appends a YYYYMMDD-HHMMSS suffix, stepping a second on collision.
func backupFileName(filePath string, now time.Time) (string, error) {
	ext := filepath.Ext(filePath)
	baseName := strings.TrimSuffix(filePath, ext)

	for i := 0; i < 5; i++ {
		ts := now.Add(time.Duration(i) * time.Second)
		candidate := fmt.Sprintf("%s%s.%s", baseName, ext, ts.Format("20060102-150405"))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("stat backup: %w", err)
		}
	}
	return "", errors.New("cannot generate unique backup filename")
}

func openLogFile(filePath string) (*os.File, time.Time, error) {
	dir := filepath.Dir(filePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return nil, time.Time{}, fmt.Errorf("create directory: %w", err)
		}
	}

	fd, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, defaultFileMode)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("open file: %w", err)
	}

	// Go has no portable creation time, ModTime is the closest we get.
	fi, err := fd.Stat()
	if err != nil {
		fd.Close()
		return nil, time.Time{}, fmt.Errorf("stat new file: %w", err)
	}
	createTime := fi.ModTime()
	if fi.Size() == 0 {
		createTime = time.Now()
	}
	return fd, createTime, nil
}
