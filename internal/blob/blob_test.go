package blob

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func exercise(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	info, err := store.Put(ctx, "saves/c1/s1.json", strings.NewReader(`{"name":"V"}`), PutOptions{ContentType: "application/json", Metadata: map[string]string{"character": "c1"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 12 || info.ContentType != "application/json" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if _, err := store.Put(ctx, "saves/c1/s1.json", strings.NewReader("x"), PutOptions{}); !errors.Is(err, ErrExists) {
		t.Fatalf("expected exists error, got %v", err)
	}
	if _, err := store.Put(ctx, "saves/c2/s9.json", strings.NewReader("{}"), PutOptions{}); err != nil {
		t.Fatalf("put second: %v", err)
	}
	got, rc, err := store.Get(ctx, "saves/c1/s1.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"name":"V"}` || got.Metadata["character"] != "c1" {
		t.Fatalf("unexpected blob: %s %+v", body, got)
	}
	list, err := store.List(ctx, "saves/c1/")
	if err != nil || len(list) != 1 || list[0].Key != "saves/c1/s1.json" {
		t.Fatalf("unexpected list: %+v %v", list, err)
	}
	if _, err := store.Head(ctx, "saves/none.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	ok, err := store.Delete(ctx, "saves/c1/s1.json")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "saves/c1/s1.json")
	if err != nil || ok {
		t.Fatalf("second delete should report missing: %v %v", ok, err)
	}
}

func TestMemoryStore(t *testing.T) {
	store, err := Open(context.Background(), Config{Driver: DriverMemory})
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, store)
	if _, err := store.PresignURL(context.Background(), "k", SignedURLOptions{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
}

func TestFilesystemStore(t *testing.T) {
	root := filepath.Join(t.TempDir(), "blobs")
	store, err := Open(context.Background(), Config{FSRoot: root})
	if err != nil {
		t.Fatal(err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("empty driver should select filesystem, got %s", store.Driver())
	}
	exercise(t, store)
	for _, bad := range []string{"", "/abs", "../escape", "a/../../b", "x.meta"} {
		if _, err := store.Put(context.Background(), bad, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("expected key %q to be rejected", bad)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "tape"}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := Open(context.Background(), Config{Driver: DriverS3}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}
