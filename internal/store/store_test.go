package store

import (
	"context"
	"errors"
	"testing"
)

type item struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`
}

func (i item) RecordID() string { return i.ID }

func (i item) Clone() item {
	c := i
	c.Tags = append([]string(nil), i.Tags...)
	return c
}

const testKey = "items"

func newTestStore(t *testing.T) (*Store[item], *MemorySlot) {
	t.Helper()
	slot := NewMemorySlot()
	return New[item](slot, testKey), slot
}

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	if _, err := s.Create(ctx, item{ID: "a", Name: "first"}); err != nil {
		t.Fatal(err)
	}
	snap, err := s.Create(ctx, item{ID: "b", Name: "second"})
	if err != nil {
		t.Fatal(err)
	}
	if len(snap) != 2 || snap[1].ID != "b" {
		t.Errorf("snapshot = %+v", snap)
	}
	if _, err := s.Create(ctx, item{ID: "a"}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate err = %v", err)
	}
	if s.Version() != 2 {
		t.Errorf("version = %d, want 2", s.Version())
	}
}

func TestListIsACopy(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	s.Create(ctx, item{ID: "a", Tags: []string{"x"}})

	list, _ := s.List(ctx)
	list[0].Name = "changed"
	list[0].Tags[0] = "changed"

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "" || got.Tags[0] != "x" {
		t.Errorf("store mutated through snapshot: %+v", got)
	}
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	for _, id := range []string{"a", "b", "c"} {
		s.Create(ctx, item{ID: id})
	}
	snap, err := s.Delete(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap) != 2 || snap[0].ID != "a" || snap[1].ID != "c" {
		t.Errorf("after delete = %+v", snap)
	}
	if _, err := s.Delete(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestUpdateAndModify(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	s.Create(ctx, item{ID: "a", Name: "one"})
	s.Create(ctx, item{ID: "b", Name: "two"})

	snap, err := s.Update(ctx, item{ID: "a", Name: "uno"})
	if err != nil {
		t.Fatal(err)
	}
	if snap[0].Name != "uno" {
		t.Errorf("update lost position: %+v", snap)
	}
	if _, err := s.Update(ctx, item{ID: "zz"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing err = %v", err)
	}

	boom := errors.New("boom")
	before := s.Version()
	if _, err := s.Modify(ctx, "b", func(i *item) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("modify err = %v", err)
	}
	if s.Version() != before {
		t.Error("failed modify must not write")
	}
	got, err := s.Modify(ctx, "b", func(i *item) error { i.Name = "dos"; return nil })
	if err != nil || got.Name != "dos" {
		t.Errorf("modify = %+v, %v", got, err)
	}
}

func TestVersionConflictBetweenWriters(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	tab1 := New[item](slot, testKey)
	tab2 := New[item](slot, testKey)

	if err := tab2.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := tab1.Create(ctx, item{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if _, err := tab2.Create(ctx, item{ID: "b"}); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale write err = %v, want ErrVersionConflict", err)
	}
	// the conflict reloaded tab2, so a retry keeps both records
	snap, err := tab2.Create(ctx, item{ID: "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(snap) != 2 {
		t.Errorf("after retry = %+v", snap)
	}
}

func TestUnreadablePayloadStartsEmpty(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	if _, err := slot.Save(ctx, testKey, []byte("{not json"), 0); err != nil {
		t.Fatal(err)
	}
	s := New[item](slot, testKey)
	list, err := s.List(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("list = %+v, %v", list, err)
	}
	if _, err := s.Create(ctx, item{ID: "a"}); err != nil {
		t.Errorf("write over bad payload: %v", err)
	}
}

func TestReplaceAllClearAndHooks(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	var changes []Change
	s.OnChange(func(c Change) { changes = append(changes, c) })

	if _, err := s.ReplaceAll(ctx, []item{{ID: "a"}, {ID: "a"}}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate import err = %v", err)
	}
	if _, err := s.ReplaceAll(ctx, []item{{ID: "a"}, {ID: "b"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	list, _ := s.List(ctx)
	if len(list) != 0 {
		t.Errorf("after clear = %+v", list)
	}
	if len(changes) != 2 || changes[0].Action != ActionReplaced || changes[1].Action != ActionCleared {
		t.Errorf("changes = %+v", changes)
	}
	if changes[1].Slot != testKey || changes[1].Version != 2 {
		t.Errorf("change = %+v", changes[1])
	}
}
