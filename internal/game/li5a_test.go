package game

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
)

// собирает стол из 4 игроков с детерминированным генератором
func newTestGame(t *testing.T, seed int64) *Game {
	t.Helper()
	g := NewGame(100, rand.New(rand.NewSource(seed)))
	for i := int64(1); i <= 4; i++ {
		if err := g.AddPlayer(i, names[i-1], nil); err != nil {
			t.Fatalf("AddPlayer(%d): %v", i, err)
		}
	}
	return g
}

var names = []string{"Alice", "Bob", "Carol", "Dave"}

// сумма карт на руках, во взятке и в выигранных взятках: должна всегда
// равняться 52 - карты не появляются и не исчезают
func totalCards(g *Game) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	total := len(g.trickPile)
	for _, p := range g.players {
		total += len(p.hand)
		for _, trick := range p.tricksWon {
			total += len(trick)
		}
	}
	return total
}

func mustDeal(t *testing.T, g *Game) {
	t.Helper()
	if err := g.DealAndStart(); err != nil {
		t.Fatalf("DealAndStart: %v", err)
	}
}

// выбирает и подтверждает подарок за каждого игрока, затем применяет обмен
func mustExchange(t *testing.T, g *Game) {
	t.Helper()
	for _, p := range g.Players() {
		if err := g.SelectGift(p.ID, p.Hand()[:3]); err != nil {
			t.Fatalf("SelectGift(%d): %v", p.ID, err)
		}
	}
	if err := g.ApplyAllGifts(); err != nil {
		t.Fatalf("ApplyAllGifts: %v", err)
	}
}

func TestAddPlayer(t *testing.T) {
	g := NewGame(100, rand.New(rand.NewSource(1)))

	if err := g.AddPlayer(1, "Alice", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddPlayer(1, "Alice", nil); !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("duplicate join: got %v, want ErrAlreadyJoined", err)
	}
	for i := int64(2); i <= 4; i++ {
		if err := g.AddPlayer(i, "p", nil); err != nil {
			t.Fatalf("AddPlayer(%d): %v", i, err)
		}
	}
	if err := g.AddPlayer(5, "Eve", nil); !errors.Is(err, ErrGameFull) {
		t.Errorf("fifth player: got %v, want ErrGameFull", err)
	}

	mustDeal(t, g)
	if err := g.AddPlayer(6, "late", nil); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("join after deal: got %v, want ErrWrongPhase", err)
	}
}

func TestRemovePlayer(t *testing.T) {
	g := NewGame(100, rand.New(rand.NewSource(1)))
	g.AddPlayer(1, "Alice", nil)
	g.AddPlayer(2, "Bob", nil)

	if err := g.RemovePlayer(2); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if g.PlayerCount() != 1 {
		t.Errorf("PlayerCount = %d, want 1", g.PlayerCount())
	}
	if err := g.RemovePlayer(2); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("remove absent: got %v, want ErrUnknownPlayer", err)
	}
}

func TestDealAndStart(t *testing.T) {
	g := NewGame(100, rand.New(rand.NewSource(2)))
	g.AddPlayer(1, "Alice", nil)
	if err := g.DealAndStart(); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("short table: got %v, want ErrNotEnoughPlayers", err)
	}

	g = newTestGame(t, 2)
	mustDeal(t, g)

	if g.Phase() != PhaseGifting {
		t.Errorf("phase = %s, want gifting", g.Phase())
	}
	seen := make(map[Position]bool)
	for _, p := range g.Players() {
		if p.HandSize() != 13 {
			t.Errorf("player %d has %d cards, want 13", p.ID, p.HandSize())
		}
		if seen[p.Position] {
			t.Errorf("position %s assigned twice", p.Position)
		}
		seen[p.Position] = true
	}
	if len(seen) != 4 {
		t.Errorf("assigned %d distinct positions, want 4", len(seen))
	}
	if totalCards(g) != 52 {
		t.Errorf("totalCards = %d, want 52", totalCards(g))
	}
}

func TestSelectGift(t *testing.T) {
	g := newTestGame(t, 3)

	if err := g.SelectGift(1, nil); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("gift before deal: got %v, want ErrWrongPhase", err)
	}
	mustDeal(t, g)

	p, _ := g.Player(1)
	hand := p.Hand()

	if err := g.SelectGift(1, hand[:2]); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("two cards: got %v, want ErrInvalidSelection", err)
	}
	foreign := []Card{hand[0], hand[1], {Rank("0"), Suit("none")}}
	if err := g.SelectGift(1, foreign); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("foreign card: got %v, want ErrInvalidSelection", err)
	}
	if err := g.SelectGift(99, hand[:3]); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("unknown player: got %v, want ErrUnknownPlayer", err)
	}

	// повторный выбор заменяет прежний
	if err := g.SelectGift(1, hand[:3]); err != nil {
		t.Fatalf("first selection: %v", err)
	}
	if err := g.SelectGift(1, hand[3:6]); err != nil {
		t.Fatalf("reselection: %v", err)
	}
	sel := p.Selection()
	if len(sel) != 3 || sel[0] != hand[3] {
		t.Errorf("selection not replaced: %v", sel)
	}

	if g.AllGiftsSelected() {
		t.Error("AllGiftsSelected must be false with one selection")
	}
	// выбор не трогает руку до применения обмена
	if p.HandSize() != 13 {
		t.Errorf("hand size after selection = %d, want 13", p.HandSize())
	}
}

func TestApplyAllGifts(t *testing.T) {
	g := newTestGame(t, 4)
	mustDeal(t, g)

	if err := g.ApplyAllGifts(); !errors.Is(err, ErrGiftsPending) {
		t.Fatalf("premature exchange: got %v, want ErrGiftsPending", err)
	}

	// запоминаем руки и подарки до обмена
	before := make(map[int64][]Card)
	gifts := make(map[Position][]Card)
	for _, p := range g.Players() {
		before[p.ID] = p.Hand()
		gift := p.Hand()[:3]
		gifts[p.Position] = gift
		if err := g.SelectGift(p.ID, gift); err != nil {
			t.Fatalf("SelectGift: %v", err)
		}
	}
	if !g.AllGiftsSelected() {
		t.Fatal("AllGiftsSelected must be true")
	}
	if err := g.ApplyAllGifts(); err != nil {
		t.Fatalf("ApplyAllGifts: %v", err)
	}

	if g.Phase() != PhasePlaying {
		t.Errorf("phase = %s, want playing", g.Phase())
	}
	if totalCards(g) != 52 {
		t.Errorf("totalCards = %d, want 52", totalCards(g))
	}

	// обмен одновременный: рука после равна руке до минус свой подарок
	// плюс подарок соседа, чей GiftTarget указывает на это место
	giver := make(map[Position]Position)
	for _, pos := range Positions {
		giver[pos.GiftTarget()] = pos
	}
	for _, p := range g.Players() {
		want := make(map[Card]int)
		for _, c := range before[p.ID] {
			want[c]++
		}
		for _, c := range gifts[p.Position] {
			want[c]--
		}
		for _, c := range gifts[giver[p.Position]] {
			want[c]++
		}
		got := make(map[Card]int)
		for _, c := range p.Hand() {
			got[c]++
		}
		if p.HandSize() != 13 {
			t.Errorf("player %d hand = %d cards, want 13", p.ID, p.HandSize())
		}
		for c, n := range want {
			if got[c] != n {
				t.Errorf("player %d: card %v count = %d, want %d", p.ID, c, got[c], n)
			}
		}
	}

	if err := g.ApplyAllGifts(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("second exchange: got %v, want ErrWrongPhase", err)
	}
}

func TestPlayCardTurnOrder(t *testing.T) {
	g := newTestGame(t, 5)
	mustDeal(t, g)
	mustExchange(t, g)

	current, pos := g.CurrentPlayer()
	if current == nil {
		t.Fatal("no current player in playing phase")
	}

	// ход вне очереди отклоняется и ничего не меняет
	var other *Player
	for _, p := range g.Players() {
		if p.ID != current.ID {
			other = p
			break
		}
	}
	otherHand := other.Hand()
	if err := g.PlayCard(other.ID, otherHand[0]); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("out of turn: got %v, want ErrNotYourTurn", err)
	}
	if other.HandSize() != 13 {
		t.Errorf("rejected play mutated hand: %d cards", other.HandSize())
	}

	// карта не из руки
	if err := g.PlayCard(current.ID, Card{Rank("0"), Suit("none")}); !errors.Is(err, ErrIllegalCard) {
		t.Errorf("foreign card: got %v, want ErrIllegalCard", err)
	}

	// заходящий волен ходить любой картой
	lead := current.Hand()[0]
	if err := g.PlayCard(current.ID, lead); err != nil {
		t.Fatalf("lead play: %v", err)
	}

	// ход переходит к следующему месту по кругу
	next, nextPos := g.CurrentPlayer()
	if nextPos != Positions[(pos.Index()+1)%MaxPlayers] {
		t.Errorf("turn moved to %s, want %s", nextPos, Positions[(pos.Index()+1)%MaxPlayers])
	}

	// обязанность отвечать в масть: карта другой масти при наличии
	// заходной отклоняется
	var offSuit, inSuit *Card
	for _, c := range next.Hand() {
		c := c
		if c.Suit == lead.Suit {
			inSuit = &c
		} else {
			offSuit = &c
		}
	}
	if inSuit != nil && offSuit != nil {
		if err := g.PlayCard(next.ID, *offSuit); !errors.Is(err, ErrIllegalCard) {
			t.Errorf("off-suit with suit in hand: got %v, want ErrIllegalCard", err)
		}
		if err := g.PlayCard(next.ID, *inSuit); err != nil {
			t.Errorf("follow suit: %v", err)
		}
	}
}

// играет первую допустимую карту за текущего игрока
func playAny(t *testing.T, g *Game) {
	t.Helper()
	p, _ := g.CurrentPlayer()
	if p == nil {
		t.Fatal("no current player")
	}
	_, legal, err := g.TurnView(p.ID)
	if err != nil {
		t.Fatalf("TurnView: %v", err)
	}
	if len(legal) == 0 {
		t.Fatal("no legal plays")
	}
	if err := g.PlayCard(p.ID, legal[0]); err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
}

func TestTrickResolution(t *testing.T) {
	g := newTestGame(t, 6)
	mustDeal(t, g)
	mustExchange(t, g)

	if _, err := g.ResolveTrick(); !errors.Is(err, ErrTrickIncomplete) {
		t.Fatalf("early resolve: got %v, want ErrTrickIncomplete", err)
	}

	_, leaderPos := g.CurrentPlayer()
	for i := 0; i < MaxPlayers; i++ {
		playAny(t, g)
	}
	if !g.TrickComplete() {
		t.Fatal("trick must be complete after 4 plays")
	}

	result, err := g.ResolveTrick()
	if err != nil {
		t.Fatalf("ResolveTrick: %v", err)
	}
	if result.TrickNumber != 1 {
		t.Errorf("TrickNumber = %d, want 1", result.TrickNumber)
	}
	if len(result.Cards) != 4 {
		t.Errorf("trick has %d cards, want 4", len(result.Cards))
	}

	// заходная масть взятки - масть первой карты заходившего
	leadSuit := result.Cards[0].Suit
	wantOffset := TrickWinnerIndex(result.Cards, leadSuit)
	wantPos := Positions[(leaderPos.Index()+wantOffset)%MaxPlayers]
	if result.WinnerSeat != wantPos {
		t.Errorf("winner seat = %s, want %s", result.WinnerSeat, wantPos)
	}

	// победитель заходит в следующую взятку
	next, nextPos := g.CurrentPlayer()
	if next.ID != result.WinnerID || nextPos != result.WinnerSeat {
		t.Errorf("next leader = %d/%s, want winner %d/%s",
			next.ID, nextPos, result.WinnerID, result.WinnerSeat)
	}

	winner, _ := g.Player(result.WinnerID)
	if len(winner.TricksWon()) != 1 {
		t.Errorf("winner recorded %d tricks, want 1", len(winner.TricksWon()))
	}
	if totalCards(g) != 52 {
		t.Errorf("totalCards = %d, want 52", totalCards(g))
	}
}

// доигрывает текущий раунд до конца и возвращает его итог
func playOutRound(t *testing.T, g *Game) RoundResult {
	t.Helper()
	for trick := 0; trick < TricksPerRound; trick++ {
		for i := 0; i < MaxPlayers; i++ {
			playAny(t, g)
		}
		if _, err := g.ResolveTrick(); err != nil {
			t.Fatalf("ResolveTrick: %v", err)
		}
		if got := totalCards(g); got != 52 {
			t.Fatalf("after trick %d: totalCards = %d, want 52", trick+1, got)
		}
	}
	if !g.RoundComplete() {
		t.Fatal("round must be complete after 13 tricks")
	}
	result, err := g.ResolveRound()
	if err != nil {
		t.Fatalf("ResolveRound: %v", err)
	}
	return result
}

func TestFullRound(t *testing.T) {
	g := newTestGame(t, 7)
	mustDeal(t, g)
	mustExchange(t, g)

	if _, err := g.ResolveRound(); !errors.Is(err, ErrRoundIncomplete) {
		t.Fatalf("early round resolve: got %v, want ErrRoundIncomplete", err)
	}

	result := playOutRound(t, g)

	// весь раунд стоит ровно 36 очков на двоих
	if sum := result.TeamPoints[TeamA] + result.TeamPoints[TeamB]; sum != 36 {
		t.Errorf("round points sum = %d, want 36", sum)
	}
	if result.GameOver {
		t.Fatal("game must not end after the first round")
	}

	// пересдача: снова фаза обмена, полные руки, счет сохранен
	if g.Phase() != PhaseGifting {
		t.Errorf("phase after round = %s, want gifting", g.Phase())
	}
	for _, p := range g.Players() {
		if p.HandSize() != 13 {
			t.Errorf("player %d redeal hand = %d, want 13", p.ID, p.HandSize())
		}
		if p.Selection() != nil {
			t.Errorf("player %d selection survived redeal", p.ID)
		}
	}
	scores := g.Scores()
	if scores[TeamA] != result.Totals[TeamA] || scores[TeamB] != result.Totals[TeamB] {
		t.Errorf("scores = %v, totals = %v", scores, result.Totals)
	}
}

func TestGameOverThreshold(t *testing.T) {
	// раунд добавляет командам 36 очков на двоих, поэтому итог каждого
	// случая предсказуем: с нуля порог недостижим, со 100/100 его
	// пересекает хотя бы одна команда, со 101/150 - обе
	tests := []struct {
		name         string
		teamA, teamB int
		wantOver     bool
	}{
		{"fresh game never ends", 0, 0, false},
		{"both teams on the brink", 100, 100, true},
		{"both already past the line", 101, 150, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, 8)
			mustDeal(t, g)
			mustExchange(t, g)

			// подкручиваем накопленный счет так, чтобы раунд дал нужный итог
			g.mu.Lock()
			g.scores[TeamA] = tt.teamA
			g.scores[TeamB] = tt.teamB
			g.mu.Unlock()
			result := playOutRound(t, g)

			gotOverA := result.Totals[TeamA] >= LosingScore
			gotOverB := result.Totals[TeamB] >= LosingScore
			if result.TeamALost != gotOverA || result.TeamBLost != gotOverB {
				t.Errorf("lost flags = %v/%v, totals = %v",
					result.TeamALost, result.TeamBLost, result.Totals)
			}
			if result.GameOver != (gotOverA || gotOverB) {
				t.Errorf("GameOver = %v with totals %v", result.GameOver, result.Totals)
			}
			if result.GameOver != tt.wantOver {
				t.Errorf("GameOver = %v, want %v", result.GameOver, tt.wantOver)
			}

			if result.GameOver {
				if g.Phase() != PhaseGameOver {
					t.Errorf("phase = %s, want game_over", g.Phase())
				}

				// завершенный стол не принимает ни подарков, ни ходов
				anyCards := []Card{
					{RankTwo, SuitClubs},
					{RankThree, SuitClubs},
					{RankFour, SuitClubs},
				}
				if err := g.SelectGift(1, anyCards); !errors.Is(err, ErrWrongPhase) {
					t.Errorf("SelectGift after game over: got %v, want ErrWrongPhase", err)
				}
				if err := g.PlayCard(1, anyCards[0]); !errors.Is(err, ErrWrongPhase) {
					t.Errorf("PlayCard after game over: got %v, want ErrWrongPhase", err)
				}
				if len(result.Outcomes) != 4 {
					t.Fatalf("outcomes = %d, want 4", len(result.Outcomes))
				}
				for _, o := range result.Outcomes {
					p, _ := g.Player(o.ID)
					lost := (p.Position.Team() == TeamA && result.TeamALost) ||
						(p.Position.Team() == TeamB && result.TeamBLost)
					if o.Won == lost {
						t.Errorf("player %d Won = %v, team lost = %v", o.ID, o.Won, lost)
					}
				}
			} else if len(result.Outcomes) != 0 {
				t.Errorf("outcomes populated without game over: %v", result.Outcomes)
			}
		})
	}
}

// читатели руки и выбора из чужих горутин (клавиатуры, трансляция)
// не должны конфликтовать с обменом и розыгрышем; ловится под -race
func TestPlayerReadsDuringMutations(t *testing.T) {
	g := newTestGame(t, 21)
	mustDeal(t, g)
	for _, p := range g.Players() {
		if err := g.SelectGift(p.ID, p.Hand()[:3]); err != nil {
			t.Fatalf("SelectGift(%d): %v", p.ID, err)
		}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for _, p := range g.Players() {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				_ = p.Hand()
				_ = p.HandSize()
				_ = p.Selection()
				_ = p.TricksWon()
				_ = p.RoundPoints()
			}
		}()
	}

	// обмен сортирует все руки на месте, взятка двигает их дальше
	if err := g.ApplyAllGifts(); err != nil {
		t.Fatalf("ApplyAllGifts: %v", err)
	}
	for i := 0; i < MaxPlayers; i++ {
		playAny(t, g)
	}
	if _, err := g.ResolveTrick(); err != nil {
		t.Fatalf("ResolveTrick: %v", err)
	}

	close(stop)
	wg.Wait()

	if totalCards(g) != 52 {
		t.Errorf("totalCards = %d, want 52", totalCards(g))
	}
}

func TestSnapshot(t *testing.T) {
	g := newTestGame(t, 9)
	mustDeal(t, g)
	mustExchange(t, g)

	playAny(t, g)
	playAny(t, g)

	snap := g.Snapshot()
	if snap.Phase != PhasePlaying {
		t.Errorf("snapshot phase = %s, want playing", snap.Phase)
	}
	if len(snap.Seats) != 4 {
		t.Fatalf("snapshot seats = %d, want 4", len(snap.Seats))
	}
	if len(snap.TrickPile) != 2 {
		t.Fatalf("snapshot trick pile = %d, want 2", len(snap.TrickPile))
	}

	// первая карта взятки лежит с места заходившего, вторая - со следующего
	first := snap.TrickPile[0].Seat
	second := snap.TrickPile[1].Seat
	if second != Positions[(first.Index()+1)%MaxPlayers] {
		t.Errorf("pile seats %s,%s are not consecutive", first, second)
	}
	if snap.CurrentSeat != Positions[(first.Index()+2)%MaxPlayers] {
		t.Errorf("current seat = %s, want two after leader %s", snap.CurrentSeat, first)
	}
	if snap.LeadSuit == "" {
		t.Error("lead suit missing from snapshot")
	}
}
