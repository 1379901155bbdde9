package daily

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/congressle/apps/go-server/internal/roster"
	"github.com/robalobadob/congressle/apps/go-server/internal/store"
)

func testRoster(n int) *roster.Roster {
	ms := make([]roster.Member, n)
	for i := range ms {
		ms[i] = roster.Member{ID: fmt.Sprintf("m%d", i), Name: fmt.Sprintf("Member %d", i), State: "TX"}
	}
	return roster.New(ms)
}

func TestSamePeriodSameSelection(t *testing.T) {
	sel := NewSelector(testRoster(50), DefaultPolicy("salt"))
	start := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	want, ok := sel.SelectForInstant(start)
	if !ok {
		t.Fatal("expected a selection")
	}
	for _, off := range []time.Duration{time.Millisecond, time.Hour, 12 * time.Hour, Day - time.Millisecond} {
		got, _ := sel.SelectForInstant(start.Add(off))
		if got.ID != want.ID {
			t.Errorf("offset %s: got %s, want %s", off, got.ID, want.ID)
		}
	}
}

func TestSelectionIsReproducibleAcrossSelectors(t *testing.T) {
	r := testRoster(50)
	a := NewSelector(r, DefaultPolicy("salt"))
	b := NewSelector(r, DefaultPolicy("salt"))
	at := time.Date(2031, 2, 3, 4, 5, 6, 0, time.UTC)
	ma, _ := a.SelectForInstant(at)
	mb, _ := b.SelectForInstant(at)
	if ma.ID != mb.ID {
		t.Errorf("independent selectors disagree: %s vs %s", ma.ID, mb.ID)
	}
}

func TestSelectionVariesAcrossDays(t *testing.T) {
	sel := NewSelector(testRoster(100), DefaultPolicy("salt"))
	seen := map[string]bool{}
	day := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		m, _ := sel.SelectForInstant(day.Add(time.Duration(i) * Day))
		seen[m.ID] = true
	}
	if len(seen) < 5 {
		t.Errorf("selection looks constant: only %d distinct members in 30 days", len(seen))
	}
}

func TestPolicyKeysAndIndex(t *testing.T) {
	p := DefaultPolicy("s")
	at := time.Date(2026, 10, 19, 23, 59, 59, 0, time.UTC)
	if k := p.Key(at); k != "2026-10-19" {
		t.Errorf("expected date key, got %s", k)
	}
	if k := p.Key(at.Add(time.Second)); k != "2026-10-20" {
		t.Errorf("expected rollover at UTC midnight, got %s", k)
	}
	// Same instant in another zone maps to the same key.
	ny := at.In(time.FixedZone("EST", -5*3600))
	if p.Key(ny) != p.Key(at) {
		t.Error("key depends on time zone")
	}

	short := Policy{Period: time.Minute, Salt: "s"}
	if k := short.Key(time.Unix(120, 0)); k != "p2" {
		t.Errorf("expected p2, got %s", k)
	}
	if idx := short.PeriodIndex(time.Unix(-1, 0)); idx != -1 {
		t.Errorf("expected floor for negative times, got %d", idx)
	}

	// A zero period falls back to a day.
	if (Policy{}).Key(at) != "2026-10-19" {
		t.Error("zero period should behave as daily")
	}
}

func TestFractionRange(t *testing.T) {
	p := DefaultPolicy("range")
	for i := int64(0); i < 1000; i++ {
		f := p.Fraction(i)
		if f < 0 || f >= 1 {
			t.Fatalf("fraction %v out of range for %d", f, i)
		}
	}
	if p.Fraction(7) != p.Fraction(7) {
		t.Error("fraction is not deterministic")
	}
	if DefaultPolicy("a").Fraction(7) == DefaultPolicy("b").Fraction(7) {
		t.Error("salt has no effect")
	}
	if p.Index(time.Now(), 0) != 0 {
		t.Error("empty roster should give index 0")
	}
}

func TestEmptyRoster(t *testing.T) {
	sel := NewSelector(roster.New(nil), DefaultPolicy("s"))
	if _, ok := sel.SelectForInstant(time.Now()); ok {
		t.Error("expected no selection from an empty roster")
	}
	if _, ok := sel.PuzzleAt(time.Now()); ok {
		t.Error("expected no puzzle from an empty roster")
	}
}

func TestPuzzleAtProjectsSelection(t *testing.T) {
	sel := NewSelector(testRoster(10), DefaultPolicy("s"))
	at := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	m, _ := sel.SelectForInstant(at)
	p, ok := sel.PuzzleAt(at)
	if !ok || p.SourceID != m.ID || p.Answer.Name != m.Name {
		t.Errorf("puzzle does not match selection: %+v vs %+v", p, m)
	}
}

func TestResultsStore(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "daily.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	s := NewStore(db)

	results := []Result{
		{PlayerID: "slow", Period: "d1", MemberID: "m", Guesses: 3, Solved: true, ElapsedMs: 9000},
		{PlayerID: "fast", Period: "d1", MemberID: "m", Guesses: 3, Solved: true, ElapsedMs: 1000},
		{PlayerID: "few", Period: "d1", MemberID: "m", Guesses: 1, Solved: true, ElapsedMs: 50000},
		{PlayerID: "lost", Period: "d1", MemberID: "m", Guesses: 5, Solved: false, ElapsedMs: 10},
		{PlayerID: "fast", Period: "d2", MemberID: "n", Guesses: 2, Solved: true, ElapsedMs: 1},
	}
	for _, r := range results {
		if err := s.InsertResult(ctx, r); err != nil {
			t.Fatalf("insert %s: %v", r.PlayerID, err)
		}
	}
	// Duplicate is ignored.
	if err := s.InsertResult(ctx, Result{PlayerID: "lost", Period: "d1", Guesses: 1, Solved: true}); err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}

	played, err := s.AlreadyPlayed(ctx, "fast", "d1")
	if err != nil || !played {
		t.Errorf("expected played, got %v %v", played, err)
	}
	played, _ = s.AlreadyPlayed(ctx, "nobody", "d1")
	if played {
		t.Error("expected not played")
	}

	rows, err := s.Leaderboard(ctx, "d1", 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	order := []string{"few", "fast", "slow", "lost"}
	if len(rows) != len(order) {
		t.Fatalf("expected %d rows, got %d", len(order), len(rows))
	}
	for i, id := range order {
		if rows[i].PlayerID != id {
			t.Errorf("row %d: got %s, want %s", i, rows[i].PlayerID, id)
		}
	}
	if rows[3].Solved {
		t.Error("duplicate insert must not overwrite the first result")
	}
}
