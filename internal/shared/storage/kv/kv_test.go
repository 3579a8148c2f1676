package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"career-backend/internal/shared/storage/db"
	localstore "career-backend/internal/shared/storage/object/local"
)

// exerciseStore runs the same get/set/delete sequence against any backend.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, "resumes"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}
	if err := store.Set(ctx, "resumes", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "resumes", []byte(`[{"id":"2"}]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := store.Get(ctx, "resumes")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[{"id":"2"}]` {
		t.Fatalf("expected overwritten value, got %s", got)
	}
	if err := store.Set(ctx, "activeResumeId", []byte("2")); err != nil {
		t.Fatalf("set second key: %v", err)
	}
	if err := store.Delete(ctx, "activeResumeId"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "activeResumeId"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "never-written"); err != nil {
		t.Fatalf("delete of missing key should succeed: %v", err)
	}
	if got, err := store.Get(ctx, "resumes"); err != nil || string(got) != `[{"id":"2"}]` {
		t.Fatalf("unrelated key changed: %s %v", got, err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	value := []byte("abc")
	if err := store.Set(context.Background(), "k", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'z'
	got, _ := store.Get(context.Background(), "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller slice: %s", got)
	}
}

func TestObjectBackedStore(t *testing.T) {
	dir := t.TempDir()
	store := NewObjectBackedStore(localstore.New(dir), "workspace")
	exerciseStore(t, store)

	if _, err := os.Stat(filepath.Join(dir, "workspace", "resumes.json")); err != nil {
		t.Fatalf("expected snapshot file on disk: %v", err)
	}
}

func TestSQLStoreSQLite(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := db.ConnectSQLite(ctx, filepath.Join(t.TempDir(), "kv.db"), db.DefaultServerOptions())
	if err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	defer sqlDB.Close()
	if err := db.RunMigrations(ctx, sqlDB, db.DialectSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	exerciseStore(t, NewSQLStore(sqlDB, db.DialectSQLite))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, RedisOptions{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	defer client.Close()
	prefix := "career-test:" + t.Name() + ":"
	store := NewRedisStore(client, prefix)
	defer func() {
		_ = store.Delete(ctx, "resumes")
	}()
	exerciseStore(t, store)
}

func TestNewRedisClientRequiresAddr(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), RedisOptions{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
