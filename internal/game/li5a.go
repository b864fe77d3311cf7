package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase - этап жизненного цикла партии
type Phase string

const (
	// PhaseForming - стол собирается, можно входить и выходить
	PhaseForming Phase = "forming"
	// PhaseGifting - обмен тремя картами перед розыгрышем
	PhaseGifting Phase = "gifting"
	// PhasePlaying - розыгрыш 13 взяток
	PhasePlaying Phase = "playing"
	// PhaseGameOver - команда набрала 101, стол можно удалять
	PhaseGameOver Phase = "game_over"
)

// LosingScore - команда, набравшая столько очков, проигрывает (включительно)
const LosingScore = 101

// TricksPerRound - взяток в одном раунде
const TricksPerRound = 13

// MaxPlayers - мест за столом
const MaxPlayers = 4

// Game - авторитетное состояние одной партии Li5a. Все операции
// сериализуются мьютексом: по одному действию на стол единовременно,
// разные столы независимы. Внутри критической секции нет никакого I/O.
type Game struct {
	mu sync.RWMutex

	ID     string // uuid экземпляра, для логов и истории
	ChatID int64

	phase        Phase
	players      []*Player // в порядке входа за стол
	seats        map[Position]*Player
	trickPile    []Card
	leadSuit     Suit // "" пока взятка пуста
	currentIdx   int  // индекс в Positions
	trickCount   int
	scores       map[Team]int
	rng          *rand.Rand
	lastActivity time.Time

	// показывать ли доску в группе (презентационный флаг, живет тут,
	// чтобы переживать смену раундов)
	showBoard bool
}

// ShowBoardEnabled сообщает, показывать ли доску в группе
func (g *Game) ShowBoardEnabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.showBoard
}

// ToggleShowBoard переключает показ доски и возвращает новое значение
func (g *Game) ToggleShowBoard() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.showBoard = !g.showBoard
	return g.showBoard
}

// NewGame создает пустой стол в фазе набора игроков. rng == nil дает
// генератор со временем в качестве зерна; тесты передают свой.
func NewGame(chatID int64, rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Game{
		ID:           uuid.NewString(),
		ChatID:       chatID,
		phase:        PhaseForming,
		seats:        make(map[Position]*Player),
		scores:       map[Team]int{TeamA: 0, TeamB: 0},
		rng:          rng,
		lastActivity: time.Now(),
		showBoard:    true,
	}
}

// Phase возвращает текущую фазу
func (g *Game) Phase() Phase {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.phase
}

// LastActivity - время последней успешной операции (для вытеснения простаивающих)
func (g *Game) LastActivity() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastActivity
}

// вызывается под блокировкой после каждой успешной мутации
func (g *Game) touch() {
	g.lastActivity = time.Now()
}

// AddPlayer сажает игрока за формирующийся стол
func (g *Game) AddPlayer(id int64, name string, strategy Strategy) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseForming {
		return ErrWrongPhase
	}
	for _, p := range g.players {
		if p.ID == id {
			return ErrAlreadyJoined
		}
	}
	if len(g.players) >= MaxPlayers {
		return ErrGameFull
	}
	g.players = append(g.players, NewPlayer(id, name, strategy))
	g.touch()
	return nil
}

// RemovePlayer убирает игрока, пока стол не начал игру
func (g *Game) RemovePlayer(id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseForming {
		return ErrWrongPhase
	}
	for i, p := range g.players {
		if p.ID == id {
			g.players = append(g.players[:i], g.players[i+1:]...)
			g.touch()
			return nil
		}
	}
	return ErrUnknownPlayer
}

// PlayerCount возвращает число игроков за столом
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.players)
}

// Players возвращает игроков в порядке входа
func (g *Game) Players() []*Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Player, len(g.players))
	copy(out, g.players)
	return out
}

// Player находит игрока по ID
func (g *Game) Player(id int64) (*Player, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.playerLocked(id)
}

func (g *Game) playerLocked(id int64) (*Player, error) {
	for _, p := range g.players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrUnknownPlayer
}

// DealAndStart закрывает набор: раздает места случайно и без повторов,
// сдает свежие 13-карточные руки и переводит стол в фазу обмена.
// Счет команд сохраняется между раундами, все остальное обнуляется.
func (g *Game) DealAndStart() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseForming {
		return ErrWrongPhase
	}
	if len(g.players) != MaxPlayers {
		return ErrNotEnoughPlayers
	}

	order := g.rng.Perm(MaxPlayers)
	for i, p := range g.players {
		pos := Positions[order[i]]
		p.Position = pos
		g.seats[pos] = p
	}

	g.dealRoundLocked()
	return nil
}

// сдача и сброс состояния раунда; места уже назначены
func (g *Game) dealRoundLocked() {
	hands := DealHands(g.rng)
	for i, pos := range Positions {
		p := g.seats[pos]
		p.ClearRound()
		p.SetHand(hands[i])
	}
	g.trickPile = nil
	g.leadSuit = ""
	g.currentIdx = 0
	g.trickCount = 0
	g.phase = PhaseGifting
	g.touch()
}

// SelectGift фиксирует выбор ровно 3 карт из руки игрока. Повторный
// вызов заменяет прежний выбор; хранится только подтвержденная тройка.
func (g *Game) SelectGift(playerID int64, cards []Card) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseGifting {
		return ErrWrongPhase
	}
	p, err := g.playerLocked(playerID)
	if err != nil {
		return err
	}
	if len(cards) != 3 || !p.holdsAll(cards) {
		return ErrInvalidSelection
	}
	sel := make([]Card, 3)
	copy(sel, cards)
	p.setSelection(sel)
	g.touch()
	return nil
}

// AllGiftsSelected - true, когда у каждого игрока подтверждены 3 карты
func (g *Game) AllGiftsSelected() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.allGiftsSelectedLocked()
}

func (g *Game) allGiftsSelectedLocked() bool {
	if g.phase != PhaseGifting {
		return false
	}
	for _, p := range g.players {
		if len(p.selection) != 3 {
			return false
		}
	}
	return true
}

// ApplyAllGifts выполняет одновременный обмен: сначала у всех дарящих
// забираются карты из рук до обмена, и только потом полученное
// добавляется адресатам. Исходящий подарок не может быть "заражен"
// только что полученными картами. Переводит стол в фазу розыгрыша,
// заходит случайное место.
func (g *Game) ApplyAllGifts() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseGifting {
		return ErrWrongPhase
	}
	if !g.allGiftsSelectedLocked() {
		return ErrGiftsPending
	}

	// фаза 1: забрать у каждого его подарок
	gifts := make(map[Position][]Card, MaxPlayers)
	for _, pos := range Positions {
		p := g.seats[pos]
		if err := p.RemoveCards(p.selection); err != nil {
			// выбор валидировался против руки, а рука в фазе обмена
			// не меняется - сюда попасть нельзя
			return err
		}
		gifts[pos] = p.selection
	}

	// фаза 2: раздать адресатам и привести руки в порядок
	for _, pos := range Positions {
		target := g.seats[pos.GiftTarget()]
		target.AddCards(gifts[pos])
	}
	for _, p := range g.players {
		p.clearSelection()
		p.sortHand()
	}

	g.phase = PhasePlaying
	g.trickPile = nil
	g.leadSuit = ""
	// первый заходящий выбирается равномерно случайно; при желании
	// заменяется на правило по карте
	g.currentIdx = g.rng.Intn(MaxPlayers)
	g.touch()
	return nil
}

// CurrentPlayer возвращает игрока, чей сейчас ход, и его место
func (g *Game) CurrentPlayer() (*Player, Position) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.phase != PhasePlaying {
		return nil, ""
	}
	pos := Positions[g.currentIdx]
	return g.seats[pos], pos
}

// TurnView собирает контекст хода для стратегии игрока
func (g *Game) TurnView(playerID int64) (TurnView, []Card, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p, err := g.playerLocked(playerID)
	if err != nil {
		return TurnView{}, nil, err
	}
	leading := len(g.trickPile) == 0
	legal := p.LegalPlays(g.leadSuit, leading)
	pile := make([]Card, len(g.trickPile))
	copy(pile, g.trickPile)
	return TurnView{Hand: p.Hand(), LeadSuit: g.leadSuit, TrickPile: pile}, legal, nil
}

// PlayCard разыгрывает карту. Отказывает, если сейчас не ход игрока
// или карта недопустима (нет в руке либо нарушает обязанность отвечать
// в масть). Первая карта взятки задает заходную масть.
func (g *Game) PlayCard(playerID int64, card Card) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhasePlaying {
		return ErrWrongPhase
	}
	p, err := g.playerLocked(playerID)
	if err != nil {
		return err
	}
	if g.seats[Positions[g.currentIdx]] != p {
		return ErrNotYourTurn
	}

	leading := len(g.trickPile) == 0
	legal := p.LegalPlays(g.leadSuit, leading)
	allowed := false
	for _, c := range legal {
		if c == card {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrIllegalCard
	}

	if leading {
		g.leadSuit = card.Suit
	}
	g.trickPile = append(g.trickPile, card)
	if err := p.RemoveCards([]Card{card}); err != nil {
		// карта только что найдена среди допустимых
		g.trickPile = g.trickPile[:len(g.trickPile)-1]
		return err
	}
	g.currentIdx = (g.currentIdx + 1) % MaxPlayers
	g.touch()
	return nil
}

// TrickComplete - true, когда во взятке 4 карты
func (g *Game) TrickComplete() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.trickPile) == MaxPlayers
}

// TrickResult - факты о разыгранной взятке для уведомлений
type TrickResult struct {
	WinnerID    int64
	WinnerName  string
	WinnerSeat  Position
	Points      int
	TrickNumber int // порядковый номер взятки в раунде, с единицы
	Cards       []Card
}

// ResolveTrick закрывает собранную взятку: восстанавливает, кто какую
// карту положил, определяет победителя, записывает взятку ему в
// историю и передает ему заход.
func (g *Game) ResolveTrick() (TrickResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhasePlaying {
		return TrickResult{}, ErrWrongPhase
	}
	if len(g.trickPile) != MaxPlayers {
		return TrickResult{}, ErrTrickIncomplete
	}

	// индекс уже прошел всех четверых, поэтому заходившего находим,
	// отступив назад на размер взятки - явный указатель "кто заходил"
	// не хранится
	leaderIdx := (g.currentIdx - len(g.trickPile) + MaxPlayers*2) % MaxPlayers

	winnerOffset := TrickWinnerIndex(g.trickPile, g.leadSuit)
	winnerPos := Positions[(leaderIdx+winnerOffset)%MaxPlayers]
	winner := g.seats[winnerPos]

	winner.RecordTrick(g.trickPile)
	result := TrickResult{
		WinnerID:    winner.ID,
		WinnerName:  winner.Name,
		WinnerSeat:  winnerPos,
		Points:      TrickPoints(g.trickPile),
		TrickNumber: g.trickCount + 1,
		Cards:       append([]Card(nil), g.trickPile...),
	}

	g.trickPile = nil
	g.leadSuit = ""
	g.currentIdx = winnerPos.Index() // победитель заходит в следующую взятку
	g.trickCount++
	g.touch()
	return result, nil
}

// RoundComplete - true, когда разыграны все 13 взяток
func (g *Game) RoundComplete() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.trickCount >= TricksPerRound
}

// PlayerOutcome - итог партии для одного игрока
type PlayerOutcome struct {
	ID    int64
	Name  string
	IsBot bool
	Won   bool
}

// RoundResult - факты о закрытом раунде для уведомлений и статистики
type RoundResult struct {
	TeamPoints map[Team]int // очки команд за этот раунд
	Totals     map[Team]int // накопленный счет
	TeamALost  bool
	TeamBLost  bool
	GameOver   bool
	// Outcomes заполняется только при GameOver
	Outcomes []PlayerOutcome
}

// ResolveRound подводит итог раунда: суммирует очки взяток по командам
// (команда выводится из места), прибавляет к накопленному счету и
// проверяет порог в 101. Проигравших нет - пересдача и возврат в фазу
// обмена; иначе партия закончена. Обе команды могут пересечь порог
// одновременно - тогда проигрывают обе.
func (g *Game) ResolveRound() (RoundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhasePlaying {
		return RoundResult{}, ErrWrongPhase
	}
	if g.trickCount < TricksPerRound {
		return RoundResult{}, ErrRoundIncomplete
	}

	roundPoints := map[Team]int{TeamA: 0, TeamB: 0}
	for _, pos := range Positions {
		roundPoints[pos.Team()] += g.seats[pos].RoundPoints()
	}
	g.scores[TeamA] += roundPoints[TeamA]
	g.scores[TeamB] += roundPoints[TeamB]

	result := RoundResult{
		TeamPoints: roundPoints,
		Totals:     map[Team]int{TeamA: g.scores[TeamA], TeamB: g.scores[TeamB]},
		TeamALost:  g.scores[TeamA] >= LosingScore,
		TeamBLost:  g.scores[TeamB] >= LosingScore,
	}
	result.GameOver = result.TeamALost || result.TeamBLost

	if result.GameOver {
		g.phase = PhaseGameOver
		for _, p := range g.players {
			teamLost := (p.Position.Team() == TeamA && result.TeamALost) ||
				(p.Position.Team() == TeamB && result.TeamBLost)
			result.Outcomes = append(result.Outcomes, PlayerOutcome{
				ID:    p.ID,
				Name:  p.Name,
				IsBot: p.IsBot(),
				Won:   !teamLost,
			})
		}
		g.touch()
		return result, nil
	}

	// пересдача: те же места, свежая колода, снова обмен
	g.dealRoundLocked()
	return result, nil
}

// Scores возвращает накопленный счет команд
func (g *Game) Scores() map[Team]int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return map[Team]int{TeamA: g.scores[TeamA], TeamB: g.scores[TeamB]}
}
