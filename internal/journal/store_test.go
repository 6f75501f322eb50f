package journal

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"meetbot/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "journal.db"),
		slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	if err != nil {
		t.Fatalf("cannot open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RunLifecycle(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	ref := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	if err := store.StartRun(ctx, "run-1", "call with a@b.com", ref); err != nil {
		t.Fatalf("start run: %v", err)
	}
	if err := store.SetState(ctx, "run-1", "extracting"); err != nil {
		t.Fatalf("set state: %v", err)
	}
	if err := store.FinishRun(ctx, "run-1", "completed", ""); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].ID != "run-1" || runs[0].State != "completed" || runs[0].Error != "" {
		t.Errorf("unexpected run: %+v", runs[0])
	}
	if runs[0].Request != "call with a@b.com" {
		t.Errorf("unexpected request: %q", runs[0].Request)
	}
}

func TestStore_FailedRunKeepsError(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.StartRun(ctx, "run-1", "x", time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := store.FinishRun(ctx, "run-1", "failed", "notes creation failed: notion 500"); err != nil {
		t.Fatal(err)
	}

	runs, err := store.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if runs[0].State != "failed" || runs[0].Error != "notes creation failed: notion 500" {
		t.Errorf("unexpected run: %+v", runs[0])
	}
}

func TestStore_ArtifactsInCreationOrder(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.StartRun(ctx, "run-1", "x", time.Now()); err != nil {
		t.Fatal(err)
	}
	for _, a := range []domain.Artifact{
		{Step: domain.StepEvent, Kind: "event", Ref: "evt-1"},
		{Step: domain.StepNotes, Kind: "notes-page", Ref: "notes-1"},
		{Step: domain.StepFollowUp, Kind: "task", Ref: "task-1"},
	} {
		if err := store.AddArtifact(ctx, "run-1", a); err != nil {
			t.Fatalf("add artifact: %v", err)
		}
	}

	artifacts, err := store.Artifacts(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(artifacts) != 3 {
		t.Fatalf("expected 3 artifacts, got %d", len(artifacts))
	}
	wantRefs := []string{"evt-1", "notes-1", "task-1"}
	for i, want := range wantRefs {
		if artifacts[i].Ref != want {
			t.Errorf("artifact %d: expected %q, got %q", i, want, artifacts[i].Ref)
		}
	}
	if artifacts[0].Step != domain.StepEvent {
		t.Errorf("unexpected step: %q", artifacts[0].Step)
	}
}

func TestStore_RecentRunsLimit(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		if err := store.StartRun(ctx, id, "x", time.Now()); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}
