package credstore

import (
	"context"
	"errors"
	"testing"
)

// storeContract runs the behavior every backend must share.
func storeContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("GetAbsent", func(t *testing.T) {
		if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get absent key: err = %v, want ErrNotFound", err)
		}
	})

	t.Run("SetGet", func(t *testing.T) {
		if err := s.Set(ctx, KeyAuthToken, "tok-1"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		v, err := s.Get(ctx, KeyAuthToken)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if v != "tok-1" {
			t.Errorf("Get = %q, want %q", v, "tok-1")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := s.Set(ctx, KeyAuthToken, "tok-2"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		v, _ := s.Get(ctx, KeyAuthToken)
		if v != "tok-2" {
			t.Errorf("Get after overwrite = %q, want %q", v, "tok-2")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := s.Delete(ctx, KeyAuthToken); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := s.Get(ctx, KeyAuthToken); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteAbsent", func(t *testing.T) {
		if err := s.Delete(ctx, "never-written"); err != nil {
			t.Errorf("Delete of absent key: err = %v, want nil", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "horse-battery-staple")
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	storeContract(t, s)
}

func TestFileStoreWrongPassphrase(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(dir, "right")
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := s.Set(ctx, KeyAuthToken, "secret-token"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	wrong, err := NewFileStore(dir, "wrong")
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if _, err := wrong.Get(ctx, KeyAuthToken); err == nil {
		t.Fatal("Get with wrong passphrase succeeded")
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(dir, "p")
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := s.Set(ctx, KeyUserRole, "farm-admin"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	reopened, err := NewFileStore(dir, "p")
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	v, err := reopened.Get(ctx, KeyUserRole)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if v != "farm-admin" {
		t.Errorf("Get = %q, want %q", v, "farm-admin")
	}
}
