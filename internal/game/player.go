package game

import "sync"

// Player - участник одной партии. Отрицательные ID зарезервированы за
// ботами и никогда не попадают в статистику. Human и бот различаются
// только наличием Strategy - наследования нет.
//
// Мутации всегда идут под мьютексом стола; собственный мьютекс игрока
// защищает читателей из презентационного слоя, которые берут руку и
// выбор из своих горутин, не трогая стол. Порядок захвата фиксирован:
// сначала мьютекс стола, потом игрока.
type Player struct {
	ID       int64
	Name     string
	Position Position

	mu        sync.RWMutex
	hand      []Card
	tricksWon [][]Card
	selection []Card // подтвержденный выбор 3 карт для обмена

	// Strategy == nil для людей: их выбор приходит извне через
	// SelectGift/PlayCard, движок никого не ждет и не блокируется
	Strategy Strategy
}

// NewPlayer создает игрока без места и карт
func NewPlayer(id int64, name string, strategy Strategy) *Player {
	return &Player{ID: id, Name: name, Strategy: strategy}
}

// IsBot сообщает, управляется ли игрок стратегией
func (p *Player) IsBot() bool {
	return p.ID < 0
}

// Hand возвращает копию текущей руки
func (p *Player) Hand() []Card {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.handCopyLocked()
}

func (p *Player) handCopyLocked() []Card {
	out := make([]Card, len(p.hand))
	copy(out, p.hand)
	return out
}

// HandSize возвращает число карт в руке
func (p *Player) HandSize() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.hand)
}

// SetHand заменяет руку целиком (свежая раздача)
func (p *Player) SetHand(cards []Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hand = make([]Card, len(cards))
	copy(p.hand, cards)
}

// AddCards добавляет карты в руку
func (p *Player) AddCards(cards []Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hand = append(p.hand, cards...)
}

// holdsAll проверяет, что все запрошенные карты (с учетом кратности)
// сейчас в руке. Вызывается под мьютексом стола либо игрока.
func (p *Player) holdsAll(cards []Card) bool {
	need := make(map[Card]int, len(cards))
	for _, c := range cards {
		need[c]++
	}
	for _, c := range p.hand {
		if need[c] > 0 {
			need[c]--
		}
	}
	for _, n := range need {
		if n > 0 {
			return false
		}
	}
	return true
}

// RemoveCards атомарно убирает карты из руки: либо убраны все, либо
// ни одной (проверка до изменения).
func (p *Player) RemoveCards(cards []Card) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.holdsAll(cards) {
		return ErrCardNotHeld
	}
	remove := make(map[Card]int, len(cards))
	for _, c := range cards {
		remove[c]++
	}
	kept := p.hand[:0]
	for _, c := range p.hand {
		if remove[c] > 0 {
			remove[c]--
			continue
		}
		kept = append(kept, c)
	}
	p.hand = kept
	return nil
}

// LegalPlays возвращает карты, которыми сейчас можно ходить.
// Заходящий волен ходить любой картой; остальные обязаны ходить в
// заходную масть, если она есть в руке, иначе - любой картой.
// Сброса по принуждению и козырей нет.
func (p *Player) LegalPlays(leadSuit Suit, leading bool) []Card {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if leading {
		return p.handCopyLocked()
	}
	var inSuit []Card
	for _, c := range p.hand {
		if c.Suit == leadSuit {
			inSuit = append(inSuit, c)
		}
	}
	if len(inSuit) > 0 {
		return inSuit
	}
	return p.handCopyLocked()
}

// сортировка руки для показа после обмена
func (p *Player) sortHand() {
	p.mu.Lock()
	defer p.mu.Unlock()
	SortHand(p.hand)
}

// RecordTrick записывает выигранную взятку в историю раунда
func (p *Player) RecordTrick(trick []Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	won := make([]Card, len(trick))
	copy(won, trick)
	p.tricksWon = append(p.tricksWon, won)
}

// TricksWon возвращает взятки, выигранные в текущем раунде
func (p *Player) TricksWon() [][]Card {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([][]Card, len(p.tricksWon))
	copy(out, p.tricksWon)
	return out
}

// RoundPoints - сумма очков по всем взяткам игрока за раунд
func (p *Player) RoundPoints() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	total := 0
	for _, trick := range p.tricksWon {
		total += TrickPoints(trick)
	}
	return total
}

// ClearRound сбрасывает историю взяток и выбор подарка перед новым раундом
func (p *Player) ClearRound() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tricksWon = nil
	p.selection = nil
}

// Selection возвращает подтвержденный выбор карт для обмена (nil если нет)
func (p *Player) Selection() []Card {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.selection == nil {
		return nil
	}
	out := make([]Card, len(p.selection))
	copy(out, p.selection)
	return out
}

func (p *Player) setSelection(cards []Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selection = cards
}

func (p *Player) clearSelection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selection = nil
}
