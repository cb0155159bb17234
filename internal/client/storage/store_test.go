package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jesseruder/electric-lullaby/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "credentials.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestItemLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.GetItem(ctx, "missing"); err != nil || ok {
		t.Fatalf("GetItem(missing) = ok %v, err %v", ok, err)
	}
	if err := s.SetItem(ctx, "k", "v1"); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if err := s.SetItem(ctx, "k", "v2"); err != nil {
		t.Fatalf("SetItem overwrite: %v", err)
	}
	if v, ok, _ := s.GetItem(ctx, "k"); !ok || v != "v2" {
		t.Errorf("GetItem = %q,%v want v2", v, ok)
	}
	if err := s.RemoveItem(ctx, "k"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if _, ok, _ := s.GetItem(ctx, "k"); ok {
		t.Error("item should be gone")
	}
}

func TestSessionSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if sess, err := s.LoadSession(ctx); err != nil || sess != nil {
		t.Fatalf("LoadSession on empty store = %v, %v", sess, err)
	}
	if err := s.SaveSession(ctx, models.Session{Token: "t1", Username: "ada"}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	sess, err := s.LoadSession(ctx)
	if err != nil || sess == nil {
		t.Fatalf("LoadSession = %v, %v", sess, err)
	}
	if sess.Token != "t1" || sess.Username != "ada" {
		t.Errorf("session = %+v", sess)
	}

	if err := s.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if sess, _ := s.LoadSession(ctx); sess != nil {
		t.Errorf("session after clear = %+v", sess)
	}
}

func TestDiagnosticsAppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	if got, err := LoadDiagnostics(dir); err != nil || len(got) != 0 {
		t.Fatalf("LoadDiagnostics(empty) = %v, %v", got, err)
	}

	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	AppendDiagnostic(dir, Diagnostic{Time: now, LocalPath: "/tmp/a.jpg", Error: "boom"})
	AppendDiagnostic(dir, Diagnostic{Time: now, LocalPath: "/tmp/b.jpg", Error: "bang"})

	f, _ := os.OpenFile(filepath.Join(dir, diagnosticsFile), os.O_APPEND|os.O_WRONLY, 0644)
	f.WriteString("not json\n")
	f.Close()

	got, err := LoadDiagnostics(dir)
	if err != nil {
		t.Fatalf("LoadDiagnostics: %v", err)
	}
	if len(got) != 2 || got[1].LocalPath != "/tmp/b.jpg" || got[0].Error != "boom" {
		t.Errorf("diagnostics = %+v", got)
	}
}
