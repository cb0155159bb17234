package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const diagnosticsFile = "diagnostics.jsonl"

var fileMutex sync.Mutex

// Diagnostic records the values around a failed upload.
type Diagnostic struct {
	Time           time.Time `json:"time"`
	LocalPath      string    `json:"local_path"`
	UploadLocation string    `json:"upload_location,omitempty"`
	Error          string    `json:"error"`
}

// AppendDiagnostic adds one record to dir/diagnostics.jsonl.
func AppendDiagnostic(dir string, d Diagnostic) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create diagnostics directory: %v", err)
	}

	fileMutex.Lock()
	defer fileMutex.Unlock()

	f, err := os.OpenFile(filepath.Join(dir, diagnosticsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open diagnostics file: %v", err)
	}
	defer f.Close()

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostic: %v", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write diagnostic: %v", err)
	}
	return nil
}

// LoadDiagnostics returns every record in dir, skipping malformed lines.
func LoadDiagnostics(dir string) ([]Diagnostic, error) {
	data, err := os.ReadFile(filepath.Join(dir, diagnosticsFile))
	if os.IsNotExist(err) {
		return []Diagnostic{}, nil
	}
	if err != nil {
		return nil, err
	}

	var out []Diagnostic
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		var d Diagnostic
		if err := json.Unmarshal([]byte(line), &d); err == nil {
			out = append(out, d)
		}
	}
	return out, nil
}
