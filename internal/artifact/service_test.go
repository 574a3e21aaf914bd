package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"pkghub/internal/models"
	"pkghub/internal/store"
)

type fixture struct {
	st      *store.Store
	svc     *Service
	ownerID string
	pkgID   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st, err := store.Open(store.DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	owner := &models.User{Firstname: "John", Lastname: "Doe", Email: "john@example.com", PasswordHash: "x", IsActive: true}
	if err := st.CreateUser(ctx, owner); err != nil {
		t.Fatalf("create user: %v", err)
	}
	pkg := &models.Package{Name: "bundle", CreatedBy: owner.ID}
	if err := st.CreatePackage(ctx, pkg); err != nil {
		t.Fatalf("create package: %v", err)
	}
	return fixture{st: st, svc: NewService(st), ownerID: owner.ID, pkgID: pkg.ID}
}

func TestPutAndGetRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payload := []byte{0x00, 0x01, 0xfe, 0xff, 0x00}

	created, err := f.svc.Put(ctx, f.pkgID, " report.bin ", f.ownerID, payload)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if created.ID == "" || created.Name != "report.bin" {
		t.Fatalf("unexpected artifact: %#v", created.ArtifactSummary)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	full, err := f.svc.GetWithPayload(ctx, created.ID)
	if err != nil {
		t.Fatalf("get with payload: %v", err)
	}
	if !bytes.Equal(full.Payload, payload) {
		t.Fatalf("payload mismatch: got %v want %v", full.Payload, payload)
	}

	summary, err := f.svc.GetSummary(ctx, created.ID)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if summary.ID != created.ID || summary.SizeBytes != int64(len(payload)) {
		t.Fatalf("unexpected summary: %#v", summary)
	}
}

func TestPutRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		artName string
		payload []byte
	}{
		{name: "blank name", artName: "  ", payload: []byte("x")},
		{name: "empty payload", artName: "a.txt", payload: nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Put(ctx, f.pkgID, tc.artName, f.ownerID, tc.payload)
			if !InvalidInput.Has(err) {
				t.Fatalf("expected InvalidInput, got %v", err)
			}
		})
	}
}

func TestPutUnknownPackagePersistsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Put(ctx, "pk-zzzzzz", "a.txt", f.ownerID, []byte("hello"))
	if !NotFound.Has(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	_, err = f.svc.Put(ctx, f.pkgID, "a.txt", "us-zzzzzz", []byte("hello"))
	if !NotFound.Has(err) {
		t.Fatalf("expected NotFound for unknown owner, got %v", err)
	}

	count, err := f.st.CountArtifacts(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no artifacts, got %d", count)
	}
}

func TestGetMissingArtifact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.GetSummary(ctx, "af-zzzzzz"); !NotFound.Has(err) {
		t.Fatalf("expected NotFound summary, got %v", err)
	}
	if _, err := f.svc.GetWithPayload(ctx, "af-zzzzzz"); !NotFound.Has(err) {
		t.Fatalf("expected NotFound payload, got %v", err)
	}
}

func TestListModes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inputs := map[string][]byte{"a.txt": []byte("hello"), "b.txt": []byte("world")}
	for _, name := range []string{"a.txt", "b.txt"} {
		if _, err := f.svc.Put(ctx, f.pkgID, name, f.ownerID, inputs[name]); err != nil {
			t.Fatalf("put %s: %v", name, err)
		}
	}

	summaries, err := f.svc.ListSummaries(ctx, f.pkgID)
	if err != nil {
		t.Fatalf("list summaries: %v", err)
	}
	if len(summaries) != 2 || summaries[0].Name != "a.txt" || summaries[1].Name != "b.txt" {
		t.Fatalf("unexpected summaries: %#v", summaries)
	}

	full, err := f.svc.ListWithPayloads(ctx, f.pkgID)
	if err != nil {
		t.Fatalf("list with payloads: %v", err)
	}
	if len(full) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(full))
	}
	for _, artifact := range full {
		if !bytes.Equal(artifact.Payload, inputs[artifact.Name]) {
			t.Fatalf("%s payload mismatch: %q", artifact.Name, artifact.Payload)
		}
	}

	if _, err := f.svc.ListSummaries(ctx, "pk-zzzzzz"); !NotFound.Has(err) {
		t.Fatalf("expected NotFound for unknown package, got %v", err)
	}
	if _, err := f.svc.ListWithPayloads(ctx, "pk-zzzzzz"); !NotFound.Has(err) {
		t.Fatalf("expected NotFound for unknown package, got %v", err)
	}
}

func TestPutDuplicateNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Put(ctx, f.pkgID, "same.txt", f.ownerID, []byte("one"))
	if err != nil {
		t.Fatalf("first put: %v", err)
	}
	second, err := f.svc.Put(ctx, f.pkgID, "same.txt", f.ownerID, []byte("two"))
	if err != nil {
		t.Fatalf("second put: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected distinct ids for duplicate names")
	}
}

func TestConcurrentPuts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	payloads := [][]byte{[]byte("left"), []byte("right")}
	ids := make([]string, len(payloads))
	errs := make([]error, len(payloads))

	var wg sync.WaitGroup
	for i := range payloads {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := f.svc.Put(ctx, f.pkgID, fmt.Sprintf("part-%d", i), f.ownerID, payloads[i])
			ids[i] = created.ID
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i := range payloads {
		if errs[i] != nil {
			t.Fatalf("put %d: %v", i, errs[i])
		}
		got, err := f.svc.GetWithPayload(ctx, ids[i])
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if !bytes.Equal(got.Payload, payloads[i]) {
			t.Fatalf("put %d: payload mismatch %q", i, got.Payload)
		}
	}
}

func TestNotFoundKeepsStoreCause(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Put(ctx, "pk-zzzzzz", "a.txt", f.ownerID, []byte("x"))
	if !errors.Is(err, store.ErrPackageNotFound) {
		t.Fatalf("expected package cause, got %v", err)
	}
	_, err = f.svc.Put(ctx, f.pkgID, "a.txt", "us-zzzzzz", []byte("x"))
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected user cause, got %v", err)
	}
}
