package results

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "data", "results.db")
	st, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st, dsn
}

func TestRecordAndTop(t *testing.T) {
	st, _ := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	rounds := []Round{
		{ScreenID: "a", Score: 3, Corrects: 4, Skips: 1, StartedAt: base, FinishedAt: base.Add(time.Minute)},
		{ScreenID: "b", Score: 7, Corrects: 7, StartedAt: base, FinishedAt: base.Add(2 * time.Minute)},
		{ScreenID: "c", Score: 3, Corrects: 3, StartedAt: base, FinishedAt: base.Add(30 * time.Second)},
		{ScreenID: "d", Score: -2, Skips: 2, StartedAt: base, FinishedAt: base.Add(time.Minute)},
	}
	for _, r := range rounds {
		id, err := st.Record(ctx, r)
		if err != nil {
			t.Fatalf("Record(%s): %v", r.ScreenID, err)
		}
		if id <= 0 {
			t.Errorf("Record(%s) id = %d", r.ScreenID, id)
		}
	}

	top, err := st.Top(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"b", "c", "a"}
	if len(top) != len(want) {
		t.Fatalf("Top(3) returned %d rows", len(top))
	}
	for i, id := range want {
		if top[i].ScreenID != id {
			t.Errorf("Top[%d] = %s, want %s", i, top[i].ScreenID, id)
		}
	}
	if !top[0].FinishedAt.Equal(base.Add(2*time.Minute)) || top[0].Corrects != 7 {
		t.Errorf("row fields not round-tripped: %+v", top[0])
	}

	all, err := st.Top(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 || all[3].Score != -2 {
		t.Errorf("Top(0) = %+v", all)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	st, dsn := openTemp(t)
	if _, err := st.Record(context.Background(), Round{ScreenID: "x", Score: 1}); err != nil {
		t.Fatal(err)
	}
	_ = st.Close()

	again, err := Open(dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()
	top, err := again.Top(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 {
		t.Errorf("rows after reopen = %d, want 1", len(top))
	}
}

func TestTopClampsLimit(t *testing.T) {
	st, _ := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < MaxLimit+5; i++ {
		if _, err := st.Record(ctx, Round{ScreenID: "s", Score: i, StartedAt: base, FinishedAt: base}); err != nil {
			t.Fatal(err)
		}
	}

	for _, limit := range []int{MaxLimit + 1, 20_000_000_000, 1 << 62} {
		top, err := st.Top(ctx, limit)
		if err != nil {
			t.Fatalf("Top(%d): %v", limit, err)
		}
		if len(top) != MaxLimit {
			t.Errorf("Top(%d) returned %d rows, want %d", limit, len(top), MaxLimit)
		}
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct{ in, want int }{
		{-1, DefaultLimit},
		{0, DefaultLimit},
		{1, 1},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
		{1 << 62, MaxLimit},
	}
	for _, tc := range cases {
		if got := ClampLimit(tc.in); got != tc.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTopEmpty(t *testing.T) {
	st, _ := openTemp(t)
	top, err := st.Top(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if top == nil || len(top) != 0 {
		t.Errorf("Top on empty journal = %#v", top)
	}
}
