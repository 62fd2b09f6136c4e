package backend

import (
	"context"
	"path/filepath"
	"testing"

	"gastobot/internal/core"
	"gastobot/internal/ledger"
)

func TestBackendTypeIsValid(t *testing.T) {
	for _, bt := range []BackendType{FileBackend, SQLiteBackend, MemoryBackend} {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("sheets").IsValid() {
		t.Error("unknown backend type should be invalid")
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	factory := NewFactory(nil)
	result, err := factory.CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend failed: %v", err)
	}
	if result.Ledger == nil {
		t.Fatal("ledger missing")
	}
	if result.Cleanup != nil {
		t.Fatal("memory backend needs no cleanup")
	}
}

func TestCreateFileBackend(t *testing.T) {
	factory := NewFactory(nil)
	result, err := factory.CreateBackend(context.Background(), Config{
		Type:     FileBackend,
		FilePath: filepath.Join(t.TempDir(), "gastos.csv"),
	})
	if err != nil {
		t.Fatalf("CreateBackend failed: %v", err)
	}

	ctx := context.Background()
	if _, err := result.Ledger.Append(ctx, ledger.AppendParams{Value: core.Money{Cents: 100}, Category: "outros"}); err != nil {
		t.Fatalf("file backend append failed: %v", err)
	}
}

func TestCreateBackendValidation(t *testing.T) {
	factory := NewFactory(nil)

	if _, err := factory.CreateBackend(context.Background(), Config{Type: "sheets"}); err == nil {
		t.Fatal("unknown backend type should fail")
	}
	if _, err := factory.CreateBackend(context.Background(), Config{Type: FileBackend}); err == nil {
		t.Fatal("file backend without a path should fail")
	}
	if _, err := factory.CreateBackend(context.Background(), Config{Type: SQLiteBackend}); err == nil {
		t.Fatal("sqlite backend without a path should fail")
	}
}
