package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

// backends returns every backend that can run without external services.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return map[string]Store{
		"file":   fs,
		"memory": NewMemoryStore(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			if _, err := s.Get(ctx, SlotCompany); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(empty) error = %v, want ErrNotFound", err)
			}
			if err := s.Set(ctx, SlotCompany, []byte(`{"name":"Toko"}`)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := s.Set(ctx, SlotCompany, []byte(`{"name":"Toko Baru"}`)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := s.Get(ctx, SlotCompany)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != `{"name":"Toko Baru"}` {
				t.Errorf("Get() = %s", got)
			}
			if err := s.Delete(ctx, SlotCompany); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if err := s.Delete(ctx, SlotCompany); err != nil {
				t.Errorf("Delete(missing) error = %v", err)
			}
			if _, err := s.Get(ctx, SlotCompany); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestFileStoreLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := s.Set(ctx, SlotSettings, []byte(`{}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != SlotSettings+".json" {
		t.Errorf("directory contents = %v, want only %s.json", entries, SlotSettings)
	}

	if err := s.Set(ctx, "../escape", []byte(`{}`)); err == nil {
		t.Error("Set() accepted a key with a path separator")
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	_ = s.Set(ctx, "k", buf)
	buf[0] = 'x'

	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("Get() = %s, want abc", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		backend string
		wantErr bool
	}{
		{"", false},
		{"file", false},
		{"memory", false},
		{"sqlite", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := Open(ctx, Options{Backend: tt.backend, Dir: t.TempDir()})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if s != nil {
				s.Close()
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"disk full", &os.PathError{Op: "write", Path: "x", Err: syscall.ENOSPC}, KindQuotaExceeded},
		{"quota", fmt.Errorf("write: %w", syscall.EDQUOT), KindQuotaExceeded},
		{"permission", &os.PathError{Op: "open", Path: "x", Err: os.ErrPermission}, KindAccessDenied},
		{"redis oom", errors.New("OOM command not allowed when used memory > 'maxmemory'"), KindQuotaExceeded},
		{"redis acl", errors.New("NOPERM this user has no permissions"), KindAccessDenied},
		{"redis auth", errors.New("WRONGPASS invalid username-password pair"), KindAccessDenied},
		{"sentinel", ErrQuotaExceeded, KindQuotaExceeded},
		{"parse", fmt.Errorf("%w: bad", ErrParse), KindParse},
		{"other", errors.New("connection reset"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.want {
				t.Errorf("classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPersistError(t *testing.T) {
	cause := errors.New("OOM")
	err := error(newPersistError("save", SlotInvoices, cause))

	if !errors.Is(err, ErrQuotaExceeded) {
		t.Error("errors.Is(ErrQuotaExceeded) = false")
	}
	if errors.Is(err, ErrAccessDenied) {
		t.Error("errors.Is(ErrAccessDenied) = true")
	}
	if !errors.Is(err, cause) {
		t.Error("cause is not unwrapped")
	}

	var pErr *PersistError
	if !errors.As(err, &pErr) {
		t.Fatal("errors.As failed")
	}
	if pErr.Message() != "Storage quota exceeded. Try reducing image sizes or clearing old data." {
		t.Errorf("Message() = %q", pErr.Message())
	}
}
