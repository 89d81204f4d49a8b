package daily

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/zenikatas/minesweeper/apps/go-server/internal/database"
)

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	ts := time.Date(2026, 3, 2, 5, 0, 0, 0, loc) // 2026-03-01 19:00 UTC
	if got := DateKey(ts); got != "2026-03-01" {
		t.Fatalf("DateKey = %s, want 2026-03-01", got)
	}
}

func TestSeedDeterministic(t *testing.T) {
	day := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	sameDay := time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC)
	nextDay := day.Add(24 * time.Hour)

	a := Seed(day, "salt")
	if a != Seed(sameDay, "salt") {
		t.Fatalf("seed changed within a day")
	}
	if a == Seed(nextDay, "salt") {
		t.Fatalf("seed should change across days")
	}
	if a == Seed(day, "other") {
		t.Fatalf("seed should depend on salt")
	}
	if a < 0 {
		t.Fatalf("seed must be non-negative: %d", a)
	}
}

func TestStoreResultsAndLeaderboard(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	s := NewStore(db)
	date := "2026-10-19"

	played, err := s.AlreadyPlayed(ctx, "u1", date)
	if err != nil || played {
		t.Fatalf("AlreadyPlayed before insert = %v, %v", played, err)
	}

	results := []Result{
		{UserID: "u1", Date: date, Seed: 7, Reveals: 12, ElapsedMs: 9000},
		{UserID: "u2", Date: date, Seed: 7, Reveals: 30, ElapsedMs: 4000},
		{UserID: "u3", Date: date, Seed: 7, Reveals: 10, ElapsedMs: 9000},
		{UserID: "u1", Date: date, Seed: 7, Reveals: 1, ElapsedMs: 1}, // ignored duplicate
		{UserID: "u4", Date: "2026-10-18", Seed: 3, Reveals: 1, ElapsedMs: 1},
	}
	for _, r := range results {
		if err := s.InsertResult(ctx, r); err != nil {
			t.Fatalf("InsertResult(%+v): %v", r, err)
		}
	}

	if played, _ := s.AlreadyPlayed(ctx, "u1", date); !played {
		t.Fatalf("u1 should have played")
	}

	top, err := s.Leaderboard(ctx, date, 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	want := []string{"u2", "u3", "u1"}
	if len(top) != len(want) {
		t.Fatalf("leaderboard = %+v", top)
	}
	for i, id := range want {
		if top[i].UserID != id {
			t.Fatalf("rank %d = %s, want %s (%+v)", i+1, top[i].UserID, id, top)
		}
	}
	if top[2].ElapsedMs != 9000 {
		t.Fatalf("duplicate insert overwrote u1: %+v", top[2])
	}
}
