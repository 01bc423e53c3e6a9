package cache

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tahazakir/corpusqa/internal/models"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("haiku", "Answer using citations.", "What is HarmBench?")
	b := Fingerprint("haiku", "Answer using citations.", "What is HarmBench?")

	if a != b {
		t.Errorf("identical inputs produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64-character hex digest, got %d characters", len(a))
	}
	for _, r := range a {
		if !strings.ContainsRune("0123456789abcdef", r) {
			t.Fatalf("fingerprint contains non-hex character %q", r)
		}
	}
}

func TestFingerprintDistinguishesFields(t *testing.T) {
	base := Fingerprint("haiku", "system", "user")

	cases := []struct {
		name                string
		model, system, user string
	}{
		{"different model", "sonnet", "system", "user"},
		{"different system", "haiku", "system2", "user"},
		{"different user", "haiku", "system", "user2"},
		// Moving bytes across field boundaries must change the key.
		{"shifted boundary", "haiku", "systemu", "ser"},
		{"empty fields swapped", "haiku", "systemuser", ""},
	}
	for _, tc := range cases {
		if got := Fingerprint(tc.model, tc.system, tc.user); got == base {
			t.Errorf("%s: fingerprint collided with base triple", tc.name)
		}
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	key := Fingerprint("haiku", "sys", "msg")
	entry := &Entry{Model: "haiku", Response: "answer [hb, hb_c01]", LatencyMS: 412.5}

	if err := store.Store(key, entry); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, found, err := store.Lookup(key)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !found {
		t.Fatal("expected entry to be found after Store")
	}
	if got.Response != entry.Response || got.Model != entry.Model || got.LatencyMS != entry.LatencyMS {
		t.Errorf("round trip mutated entry: got %+v, want %+v", got, entry)
	}

	// Re-storing identical content is idempotent.
	if err := store.Store(key, entry); err != nil {
		t.Errorf("idempotent Store returned error: %v", err)
	}
}

func TestFileStoreLookupAbsent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	_, found, err := store.Lookup(Fingerprint("m", "s", "u"))
	if err != nil {
		t.Fatalf("Lookup on empty store: %v", err)
	}
	if found {
		t.Error("expected absent entry, got found=true")
	}
}

func TestGetOrCallReplayMiss(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	rc := New(store, true)

	calls := 0
	_, _, err = rc.GetOrCall(context.Background(), "haiku", "sys", "msg", func(ctx context.Context) (string, error) {
		calls++
		return "live", nil
	})

	if calls != 0 {
		t.Errorf("replay mode performed %d live calls, want 0", calls)
	}
	if !models.IsMissingCacheEntry(err) {
		t.Errorf("expected MissingCacheEntry error, got %v", err)
	}
}

func TestGetOrCallLiveThenCached(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	rc := New(store, false)

	calls := 0
	live := func(ctx context.Context) (string, error) {
		calls++
		return "generated answer", nil
	}

	entry, hit, err := rc.GetOrCall(context.Background(), "haiku", "sys", "msg", live)
	if err != nil {
		t.Fatalf("first GetOrCall: %v", err)
	}
	if hit {
		t.Error("first call reported a cache hit on an unseeded key")
	}
	if calls != 1 {
		t.Fatalf("live call invoked %d times, want 1", calls)
	}
	if entry.Response != "generated answer" {
		t.Errorf("unexpected response: %q", entry.Response)
	}

	entry2, hit, err := rc.GetOrCall(context.Background(), "haiku", "sys", "msg", live)
	if err != nil {
		t.Fatalf("second GetOrCall: %v", err)
	}
	if !hit {
		t.Error("second call missed the cache")
	}
	if calls != 1 {
		t.Errorf("live call invoked %d times after second GetOrCall, want 1", calls)
	}
	if entry2.Response != entry.Response {
		t.Errorf("cached response %q differs from original %q", entry2.Response, entry.Response)
	}
}

func TestGetOrCallSeededReplay(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	// Seed in live mode, then replay against the same directory.
	if _, _, err := New(store, false).GetOrCall(context.Background(), "haiku", "sys", "msg", func(ctx context.Context) (string, error) {
		return "seeded", nil
	}); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	replayStore, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	entry, hit, err := New(replayStore, true).GetOrCall(context.Background(), "haiku", "sys", "msg", func(ctx context.Context) (string, error) {
		t.Fatal("live call invoked in replay mode with seeded key")
		return "", nil
	})
	if err != nil {
		t.Fatalf("replay GetOrCall: %v", err)
	}
	if !hit || entry.Response != "seeded" {
		t.Errorf("replay returned hit=%v response=%q, want hit=true response=%q", hit, entry.Response, "seeded")
	}
}

func TestGetOrCallLiveError(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	rc := New(store, false)

	wantErr := errors.New("upstream down")
	_, _, err = rc.GetOrCall(context.Background(), "haiku", "sys", "msg", func(ctx context.Context) (string, error) {
		return "", wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected live error to surface, got %v", err)
	}

	// A failed live call must not persist anything.
	_, found, err := store.Lookup(Fingerprint("haiku", "sys", "msg"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found {
		t.Error("failed live call left a cache entry behind")
	}
}
