package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DailyRotatingWriter is an io.Writer that switches to a new file when the date changes.
type DailyRotatingWriter struct {
	file           *os.File
	currentDate    string
	logDir         string
	filenameFormat string
	now            func() time.Time
	mu             sync.Mutex
}

func NewDailyRotatingWriter(logDir string, filenameFormat string) (*DailyRotatingWriter, error) {
	w := &DailyRotatingWriter{
		logDir:         logDir,
		filenameFormat: filenameFormat,
		now:            time.Now,
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.rotateIfNeeded(); err != nil {
		return nil, err
	}
	return w, nil
}

// rotateIfNeeded must be called with mu held.
func (w *DailyRotatingWriter) rotateIfNeeded() error {
	today := w.now().Format("2006-01-02")
	if today == w.currentDate && w.file != nil {
		return nil
	}

	if w.file != nil {
		w.file.Close()
		w.file = nil
	}

	path := filepath.Join(w.logDir, fmt.Sprintf(w.filenameFormat, today))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	w.file = file
	w.currentDate = today
	return nil
}

// Path is the file currently written to.
func (w *DailyRotatingWriter) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return filepath.Join(w.logDir, fmt.Sprintf(w.filenameFormat, w.currentDate))
}

func (w *DailyRotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.rotateIfNeeded(); err != nil {
		return 0, err
	}
	return w.file.Write(p)
}

func (w *DailyRotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		return err
	}
	return nil
}
