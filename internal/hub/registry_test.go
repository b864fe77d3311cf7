package hub

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"wara2_bot/internal/game"
)

func fillTable(t *testing.T, g *game.Game) {
	t.Helper()
	for i := int64(1); i <= 4; i++ {
		if err := g.AddPlayer(i, "p", nil); err != nil {
			t.Fatalf("AddPlayer: %v", err)
		}
	}
}

func TestCreateGetDelete(t *testing.T) {
	r := New(time.Hour)

	g, err := r.Create(1, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := r.Get(1)
	if err != nil || got != g {
		t.Fatalf("Get returned %v, %v", got, err)
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d, want 1", r.Count())
	}

	if _, err := r.Get(2); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing: got %v, want ErrNotFound", err)
	}

	if !r.Delete(1) {
		t.Error("Delete returned false for existing game")
	}
	if r.Delete(1) {
		t.Error("Delete returned true for removed game")
	}
	if _, err := r.Get(1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: got %v, want ErrNotFound", err)
	}
}

func TestCreateReplacesOnlyInactive(t *testing.T) {
	r := New(time.Hour)
	rng := rand.New(rand.NewSource(2))

	// брошенный набор заменяется молча
	first, _ := r.Create(1, rng)
	second, err := r.Create(1, rng)
	if err != nil {
		t.Fatalf("replace forming game: %v", err)
	}
	if second == first {
		t.Error("expected a fresh instance")
	}

	// идущая партия не заменяется
	fillTable(t, second)
	if err := second.DealAndStart(); err != nil {
		t.Fatalf("DealAndStart: %v", err)
	}
	if _, err := r.Create(1, rng); !errors.Is(err, ErrActiveGame) {
		t.Errorf("replace active game: got %v, want ErrActiveGame", err)
	}
}

func TestSweepIdle(t *testing.T) {
	r := New(6 * time.Hour)
	rng := rand.New(rand.NewSource(3))
	r.Create(1, rng)
	r.Create(2, rng)

	var notified []int64
	r.SetEvictCallback(func(chatID int64) { notified = append(notified, chatID) })

	// в пределах порога ничего не вытесняется
	if evicted := r.SweepIdle(time.Now().Add(time.Hour)); len(evicted) != 0 {
		t.Fatalf("early sweep evicted %v", evicted)
	}

	evicted := r.SweepIdle(time.Now().Add(7 * time.Hour))
	if len(evicted) != 2 {
		t.Fatalf("evicted %d games, want 2", len(evicted))
	}
	if len(notified) != 2 {
		t.Errorf("callback fired %d times, want 2", len(notified))
	}
	if r.Count() != 0 {
		t.Errorf("Count after sweep = %d, want 0", r.Count())
	}
}

func TestSweeperStop(t *testing.T) {
	r := New(time.Hour)
	r.StartSweeper(10 * time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	r.Stop()
	// повторный Stop безопасен
	r.Stop()
}
