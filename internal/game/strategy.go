package game

import (
	"math/rand"
	"sort"
)

// TurnView - то, что стратегия видит перед ходом: своя рука, заходная
// масть и карты, уже лежащие во взятке
type TurnView struct {
	Hand      []Card
	LeadSuit  Suit
	TrickPile []Card
}

// Strategy - подключаемая способность выбирать ход и подарок.
// Вызывается снаружи движка (слоем презентации) перед PlayCard и
// SelectGift; обязана возвращать карты только из текущей руки и
// ход только из legal.
type Strategy interface {
	ChooseCard(view TurnView, legal []Card) Card
	ChooseGift(hand []Card) []Card
}

// Difficulty - уровень игры бота
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"   // случайный допустимый ход
	DifficultyMedium Difficulty = "medium" // базовая стратегия
	DifficultyHard   Difficulty = "hard"   // расширенная стратегия
)

// BotStrategy реализует Strategy для автоматических игроков
type BotStrategy struct {
	difficulty Difficulty
	rng        *rand.Rand
}

// NewBotStrategy создает стратегию заданной сложности
func NewBotStrategy(difficulty Difficulty, rng *rand.Rand) *BotStrategy {
	return &BotStrategy{difficulty: difficulty, rng: rng}
}

// ChooseCard выбирает ход из допустимых карт
func (s *BotStrategy) ChooseCard(view TurnView, legal []Card) Card {
	if len(legal) == 0 {
		return Card{}
	}
	if s.difficulty == DifficultyEasy {
		return legal[s.rng.Intn(len(legal))]
	}
	// hard пока играет средней стратегией
	return s.chooseMedium(view, legal)
}

// базовая стратегия: заходить младшей картой без очков; при обязанности
// отвечать в масть - бить минимально возможной, иначе сгружать самую
// дорогую карту
func (s *BotStrategy) chooseMedium(view TurnView, legal []Card) Card {
	leading := view.LeadSuit == ""

	if leading {
		var safe []Card
		for _, c := range legal {
			if c.PointValue() == 0 {
				safe = append(safe, c)
			}
		}
		if len(safe) > 0 {
			return lowestCard(safe)
		}
		return cheapestCard(legal)
	}

	forcedToFollow := true
	for _, c := range legal {
		if c.Suit != view.LeadSuit {
			forcedToFollow = false
			break
		}
	}

	if forcedToFollow {
		// старшая карта заходной масти, уже сыгранная во взятке
		highest := -1
		for _, c := range view.TrickPile {
			if c.Suit == view.LeadSuit && c.Rank.Order() > highest {
				highest = c.Rank.Order()
			}
		}
		var beating []Card
		for _, c := range legal {
			if c.Rank.Order() > highest {
				beating = append(beating, c)
			}
		}
		if len(beating) > 0 {
			return lowestCard(beating)
		}
		return mostExpensiveCard(legal)
	}

	// масти нет - сгружаем очки сопернику
	return mostExpensiveCard(legal)
}

// ChooseGift выбирает 3 карты для обмена. Сосед по подарку всегда из
// команды соперника, поэтому легкий бот дарит случайные карты, а
// остальные - самые дорогие по очкам.
func (s *BotStrategy) ChooseGift(hand []Card) []Card {
	if len(hand) < 3 {
		return nil
	}
	if s.difficulty == DifficultyEasy {
		idx := s.rng.Perm(len(hand))[:3]
		gift := make([]Card, 0, 3)
		for _, i := range idx {
			gift = append(gift, hand[i])
		}
		return gift
	}

	sorted := make([]Card, len(hand))
	copy(sorted, hand)
	sort.Slice(sorted, func(i, j int) bool {
		pi, pj := sorted[i].PointValue(), sorted[j].PointValue()
		if pi != pj {
			return pi > pj
		}
		return cardSortKey(sorted[i]) < cardSortKey(sorted[j])
	})
	gift := make([]Card, 3)
	copy(gift, sorted[:3])
	return gift
}

func lowestCard(cards []Card) Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if cardSortKey(c) < cardSortKey(best) {
			best = c
		}
	}
	return best
}

func cheapestCard(cards []Card) Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.PointValue() < best.PointValue() ||
			(c.PointValue() == best.PointValue() && cardSortKey(c) < cardSortKey(best)) {
			best = c
		}
	}
	return best
}

func mostExpensiveCard(cards []Card) Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.PointValue() > best.PointValue() ||
			(c.PointValue() == best.PointValue() && cardSortKey(c) < cardSortKey(best)) {
			best = c
		}
	}
	return best
}
