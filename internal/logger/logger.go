package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger wraps a *log.Logger and the rotating file behind it.
type Logger struct {
	*log.Logger
	writer *DailyRotatingWriter
}

// Setup returns a logger writing to logDir/<name>-YYYY-MM-DD.log. When
// console is set, lines are mirrored to stdout.
func Setup(logDir, name string, console bool) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %v", err)
	}

	fileWriter, err := NewDailyRotatingWriter(logDir, name+"-%s.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create log writer: %v", err)
	}

	var out io.Writer = fileWriter
	if console {
		out = io.MultiWriter(os.Stdout, fileWriter)
	}

	l := &Logger{
		Logger: log.New(out, "", log.LstdFlags|log.Lshortfile),
		writer: fileWriter,
	}
	l.Printf("Logging initialized to %s", fileWriter.Path())
	return l, nil
}

// Fallback logs to stderr only, for when the log directory is unusable.
func Fallback() *Logger {
	return &Logger{Logger: log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: log.New(io.Discard, "", 0)}
}

func (l *Logger) Close() error {
	if l.writer != nil {
		return l.writer.Close()
	}
	return nil
}
