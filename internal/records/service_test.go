package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"career-backend/internal/shared/storage/kv"
)

func newTestService(t *testing.T, kind Kind) (*Service, *kv.MemoryStore, *time.Time) {
	t.Helper()
	store := kv.NewMemoryStore()
	svc := NewService(kind, NewKVRepo(store))
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	return svc, store, &clock
}

func TestAddAssignsTimestampIDsAndBumpsCollisions(t *testing.T) {
	svc, _, clock := newTestService(t, KindResume)
	ctx := context.Background()

	first, err := svc.Add(ctx, "Backend", "Go, Postgres")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.ID != "1714564800000" {
		t.Fatalf("unexpected id %s", first.ID)
	}
	second, err := svc.Add(ctx, "Frontend", "React")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if second.ID != "1714564800001" {
		t.Fatalf("expected bumped id, got %s", second.ID)
	}

	*clock = clock.Add(time.Second)
	third, err := svc.Add(ctx, "Data", "Spark")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if third.ID != "1714564801000" {
		t.Fatalf("unexpected id %s", third.ID)
	}

	snap, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snap.Records) != 3 || snap.Records[0].Title != "Backend" || snap.Records[2].Title != "Data" {
		t.Fatalf("expected insertion order, got %+v", snap.Records)
	}
}

func TestAddValidation(t *testing.T) {
	svc, _, _ := newTestService(t, KindResume)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "  ", "content"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty title, got %v", err)
	}
	if _, err := svc.Add(ctx, "title", "\n"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty content, got %v", err)
	}
}

func TestUpdateRefreshesTimestamp(t *testing.T) {
	svc, _, clock := newTestService(t, KindJobDescription)
	ctx := context.Background()

	rec, err := svc.Add(ctx, "SRE", "on call")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	*clock = clock.Add(time.Hour)

	updated, err := svc.Update(ctx, rec.ID, " Senior SRE ", "on call, less")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != rec.ID || updated.Title != "Senior SRE" || updated.Content != "on call, less" {
		t.Fatalf("unexpected update %+v", updated)
	}
	if !updated.UpdatedAt.Equal(*clock) {
		t.Fatalf("updatedAt not refreshed: %v", updated.UpdatedAt)
	}

	if _, err := svc.Update(ctx, "missing", "t", "c"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteClearsActivePointer(t *testing.T) {
	svc, store, clock := newTestService(t, KindResume)
	ctx := context.Background()

	a, _ := svc.Add(ctx, "A", "a")
	*clock = clock.Add(time.Millisecond * 5)
	b, _ := svc.Add(ctx, "B", "b")

	if _, err := svc.SetActive(ctx, a.ID); err != nil {
		t.Fatalf("set active: %v", err)
	}
	if err := svc.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete b: %v", err)
	}
	if active, err := svc.Active(ctx); err != nil || active.ID != a.ID {
		t.Fatalf("deleting another record must keep active, got %+v %v", active, err)
	}

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete a: %v", err)
	}
	if _, err := svc.Active(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no active record, got %v", err)
	}
	if _, err := store.Get(ctx, "activeResumeId"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected active key removed, got %v", err)
	}
	if err := svc.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

// flakyRepo fails the selected save operation.
type flakyRepo struct {
	Repo
	failRecords bool
	failActive  bool
}

func (r *flakyRepo) SaveRecords(ctx context.Context, kind Kind, records []Record) error {
	if r.failRecords {
		return errors.New("records write failed")
	}
	return r.Repo.SaveRecords(ctx, kind, records)
}

func (r *flakyRepo) SaveActive(ctx context.Context, kind Kind, id string) error {
	if r.failActive {
		return errors.New("active write failed")
	}
	return r.Repo.SaveActive(ctx, kind, id)
}

func TestDeleteActiveNeverLeavesDanglingPointer(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepo{Repo: NewKVRepo(kv.NewMemoryStore())}
	svc := NewService(KindJobDescription, repo)

	rec, err := svc.Add(ctx, "Platform", "Run the platform")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.SetActive(ctx, rec.ID); err != nil {
		t.Fatalf("set active: %v", err)
	}

	repo.failActive = true
	if err := svc.Delete(ctx, rec.ID); err == nil {
		t.Fatalf("expected delete to fail")
	}
	snap, _ := svc.List(ctx)
	if len(snap.Records) != 1 || snap.ActiveID != rec.ID {
		t.Fatalf("failed pointer clear must leave state untouched, got %+v", snap)
	}

	repo.failActive, repo.failRecords = false, true
	if err := svc.Delete(ctx, rec.ID); err == nil {
		t.Fatalf("expected delete to fail")
	}
	snap, _ = svc.List(ctx)
	if snap.ActiveID != "" {
		t.Fatalf("expected pointer cleared, got %q", snap.ActiveID)
	}
	if len(snap.Records) != 1 {
		t.Fatalf("expected record kept after failed save, got %d", len(snap.Records))
	}
}

func TestSetActiveRejectsUnknownID(t *testing.T) {
	svc, _, _ := newTestService(t, KindJobDescription)
	ctx := context.Background()

	if _, err := svc.SetActive(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	rec, _ := svc.Add(ctx, "PM", "roadmaps")
	if got, err := svc.SetActive(ctx, rec.ID); err != nil || got != rec.ID {
		t.Fatalf("set active: %q %v", got, err)
	}
	if got, err := svc.SetActive(ctx, ""); err != nil || got != "" {
		t.Fatalf("clear active: %q %v", got, err)
	}
	snap, _ := svc.List(ctx)
	if snap.ActiveID != "" {
		t.Fatalf("expected cleared pointer, got %q", snap.ActiveID)
	}
}

func TestToggle(t *testing.T) {
	svc, _, _ := newTestService(t, KindResume)
	ctx := context.Background()
	rec, _ := svc.Add(ctx, "A", "a")

	got, err := svc.Toggle(ctx, rec.ID)
	if err != nil || got != rec.ID {
		t.Fatalf("first toggle: %q %v", got, err)
	}
	got, err = svc.Toggle(ctx, rec.ID)
	if err != nil || got != "" {
		t.Fatalf("second toggle should clear: %q %v", got, err)
	}
	if _, err := svc.Toggle(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	svc, _, clock := newTestService(t, KindJobDescription)
	ctx := context.Background()
	a, _ := svc.Add(ctx, "A", "a")
	*clock = clock.Add(time.Second)
	b, _ := svc.Add(ctx, "B", "b")

	if _, err := svc.Resolve(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without active, got %v", err)
	}
	_, _ = svc.SetActive(ctx, a.ID)
	if got, _ := svc.Resolve(ctx, ""); got.ID != a.ID {
		t.Fatalf("expected active record, got %+v", got)
	}
	if got, _ := svc.Resolve(ctx, b.ID); got.ID != b.ID {
		t.Fatalf("expected explicit record, got %+v", got)
	}
}

func TestKVRepoLayout(t *testing.T) {
	store := kv.NewMemoryStore()
	repo := NewKVRepo(store)
	ctx := context.Background()

	snap, err := repo.Load(ctx, KindJobDescription)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if snap.Records == nil || len(snap.Records) != 0 || snap.ActiveID != "" {
		t.Fatalf("unexpected empty snapshot %+v", snap)
	}

	recs := []Record{{ID: "1", Title: "t", Content: "c", UpdatedAt: time.Unix(0, 0).UTC()}}
	if err := repo.SaveRecords(ctx, KindJobDescription, recs); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.SaveActive(ctx, KindJobDescription, "1"); err != nil {
		t.Fatalf("save active: %v", err)
	}

	raw, err := store.Get(ctx, "jobDescriptions")
	if err != nil {
		t.Fatalf("get collection: %v", err)
	}
	want := `[{"id":"1","title":"t","content":"c","updatedAt":"1970-01-01T00:00:00Z"}]`
	if string(raw) != want {
		t.Fatalf("unexpected stored json %s", raw)
	}
	rawActive, _ := store.Get(ctx, "activeJobDescriptionId")
	if string(rawActive) != "1" {
		t.Fatalf("unexpected active value %q", rawActive)
	}

	// JSON-encoded values written by older clients still load.
	_ = store.Set(ctx, "activeJobDescriptionId", []byte(`"1"`))
	snap, _ = repo.Load(ctx, KindJobDescription)
	if snap.ActiveID != "1" {
		t.Fatalf("expected quoted id decoded, got %q", snap.ActiveID)
	}
	_ = store.Set(ctx, "activeJobDescriptionId", []byte(`null`))
	snap, _ = repo.Load(ctx, KindJobDescription)
	if snap.ActiveID != "" {
		t.Fatalf("expected null to read as empty, got %q", snap.ActiveID)
	}
}

func TestCollectionsAreIndependent(t *testing.T) {
	store := kv.NewMemoryStore()
	repo := NewKVRepo(store)
	resumes := NewService(KindResume, repo)
	jds := NewService(KindJobDescription, repo)
	ctx := context.Background()

	if _, err := resumes.Add(ctx, "R", "r"); err != nil {
		t.Fatalf("add resume: %v", err)
	}
	snap, err := jds.List(ctx)
	if err != nil {
		t.Fatalf("list jds: %v", err)
	}
	if len(snap.Records) != 0 {
		t.Fatalf("job descriptions should be empty, got %+v", snap.Records)
	}
}
