package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bsid.es/despertador"
	dsqlite "bsid.es/despertador/sqlite"
)

var refFireAt = time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC)

func mustOpenStore(tb testing.TB, path string) *dsqlite.Store {
	tb.Helper()
	store, err := dsqlite.Open(path, 2)
	if err != nil {
		tb.Fatal(err)
	}
	return store
}

func mustCloseStore(tb testing.TB, store *dsqlite.Store) {
	tb.Helper()
	if err := store.Close(); err != nil {
		tb.Fatal(err)
	}
}

func TestStoreCreateGet(t *testing.T) {
	ctx := context.Background()
	store := mustOpenStore(t, filepath.Join(t.TempDir(), "alarms.db"))
	defer mustCloseStore(t, store)

	created, err := store.Create(ctx, refFireAt, "wake up")
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 {
		t.Error("expected non-zero id")
	}
	if !created.Active {
		t.Error("expected created alarm to be active")
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.FireAt.Equal(refFireAt) {
		t.Errorf("wrong fire time\ngot:  %v\nwant: %v", got.FireAt, refFireAt)
	}
	if got.Label != "wake up" {
		t.Errorf("wrong label\ngot:  %s\nwant: %s", got.Label, "wake up")
	}
}

func TestStoreDefaultLabel(t *testing.T) {
	ctx := context.Background()
	store := mustOpenStore(t, filepath.Join(t.TempDir(), "alarms.db"))
	defer mustCloseStore(t, store)

	created, err := store.Create(ctx, refFireAt, "")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := created.Label, despertador.DefaultLabel(created.ID); got != want {
		t.Errorf("wrong label\ngot:  %s\nwant: %s", got, want)
	}
	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Label != created.Label {
		t.Errorf("label not persisted\ngot:  %s\nwant: %s", got.Label, created.Label)
	}
}

func TestStoreMonotonicIDsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "alarms.db")

	store := mustOpenStore(t, path)
	first, err := store.Create(ctx, refFireAt, "a")
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Create(ctx, refFireAt, "b")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, second.ID); err != nil {
		t.Fatal(err)
	}
	mustCloseStore(t, store)

	store = mustOpenStore(t, path)
	defer mustCloseStore(t, store)
	third, err := store.Create(ctx, refFireAt, "c")
	if err != nil {
		t.Fatal(err)
	}
	if third.ID <= second.ID {
		t.Errorf("id reused after reopen\ngot:  %d\nwant: > %d", third.ID, second.ID)
	}
	if first.ID == third.ID {
		t.Error("expected distinct ids")
	}
}

func TestStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := mustOpenStore(t, filepath.Join(t.TempDir(), "alarms.db"))
	defer mustCloseStore(t, store)

	created, err := store.Create(ctx, refFireAt, "a")
	if err != nil {
		t.Fatal(err)
	}

	moved := refFireAt.Add(1 * time.Hour)
	updated, err := store.Update(ctx, created.ID, func(a *despertador.Alarm) error {
		a.FireAt = moved
		a.Active = false
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !updated.FireAt.Equal(moved) || updated.Active {
		t.Errorf("wrong updated record: %+v", updated)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.FireAt.Equal(moved) || got.Active {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestStoreUpdateMissing(t *testing.T) {
	ctx := context.Background()
	store := mustOpenStore(t, filepath.Join(t.TempDir(), "alarms.db"))
	defer mustCloseStore(t, store)

	called := false
	_, err := store.Update(ctx, 42, func(a *despertador.Alarm) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if got, want := despertador.ErrorCode(err), despertador.ErrNotFound; got != want {
		t.Errorf("wrong error code\ngot:  %s\nwant: %s", got, want)
	}
	if called {
		t.Error("mutator called for missing record")
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := mustOpenStore(t, filepath.Join(t.TempDir(), "alarms.db"))
	defer mustCloseStore(t, store)

	created, err := store.Create(ctx, refFireAt, "a")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, created.ID); despertador.ErrorCode(err) != despertador.ErrNotFound {
		t.Errorf("wrong error for second delete\ngot:  %v\nwant: %s", err, despertador.ErrNotFound)
	}
}

func TestStoreListOrder(t *testing.T) {
	ctx := context.Background()
	store := mustOpenStore(t, filepath.Join(t.TempDir(), "alarms.db"))
	defer mustCloseStore(t, store)

	labels := []string{"a", "b", "c"}
	for _, label := range labels {
		if _, err := store.Create(ctx, refFireAt, label); err != nil {
			t.Fatal(err)
		}
	}
	alarms, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(alarms) != len(labels) {
		t.Fatalf("wrong length\ngot:  %d\nwant: %d", len(alarms), len(labels))
	}
	for i, alarm := range alarms {
		if alarm.Label != labels[i] {
			t.Errorf("wrong order at %d\ngot:  %s\nwant: %s", i, alarm.Label, labels[i])
		}
	}
}

func TestStoreDueBefore(t *testing.T) {
	ctx := context.Background()
	store := mustOpenStore(t, filepath.Join(t.TempDir(), "alarms.db"))
	defer mustCloseStore(t, store)

	early, err := store.Create(ctx, refFireAt, "early")
	if err != nil {
		t.Fatal(err)
	}
	late, err := store.Create(ctx, refFireAt.Add(1*time.Hour), "late")
	if err != nil {
		t.Fatal(err)
	}
	inactive, err := store.Create(ctx, refFireAt, "inactive")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Update(ctx, inactive.ID, func(a *despertador.Alarm) error {
		a.Active = false
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	due, err := store.DueBefore(ctx, refFireAt.Add(1*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0] != early.ID {
		t.Errorf("wrong due set\ngot:  %v\nwant: [%d]", due, early.ID)
	}

	due, err = store.DueBefore(ctx, refFireAt.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 2 || due[0] != early.ID || due[1] != late.ID {
		t.Errorf("wrong due set\ngot:  %v\nwant: [%d %d]", due, early.ID, late.ID)
	}
}

func TestStoreCurrent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "alarms.db")
	store := mustOpenStore(t, path)

	if _, ok, err := store.Current(ctx); err != nil {
		t.Fatal(err)
	} else if ok {
		t.Error("expected no ringing alarm")
	}

	created, err := store.Create(ctx, refFireAt, "a")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetCurrent(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	mustCloseStore(t, store)

	// The ringing id survives a restart.
	store = mustOpenStore(t, path)
	defer mustCloseStore(t, store)
	id, ok, err := store.Current(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || id != created.ID {
		t.Errorf("wrong ringing alarm\ngot:  %d (%v)\nwant: %d", id, ok, created.ID)
	}

	if err := store.ClearCurrent(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := store.Current(ctx); err != nil {
		t.Fatal(err)
	} else if ok {
		t.Error("expected ringing alarm to be cleared")
	}
}
