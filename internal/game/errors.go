package game

import "errors"

// Все ошибки - локальные отказы валидации. Движок ничего не повторяет
// сам и никогда не оставляет состояние частично измененным: операция
// либо применяется целиком, либо отклоняется целиком.
var (
	ErrWrongPhase       = errors.New("действие недоступно в текущей фазе игры")
	ErrNotYourTurn      = errors.New("сейчас не ваш ход")
	ErrIllegalCard      = errors.New("этой картой сейчас ходить нельзя")
	ErrInvalidSelection = errors.New("нужно выбрать ровно 3 карты из своей руки")
	ErrAlreadyJoined    = errors.New("игрок уже за столом")
	ErrGameFull         = errors.New("все места за столом заняты")
	ErrUnknownPlayer    = errors.New("игрок не найден за этим столом")
	ErrNotEnoughPlayers = errors.New("для начала игры нужно 4 игрока")
	ErrGiftsPending     = errors.New("не все игроки выбрали карты для обмена")
	ErrTrickIncomplete  = errors.New("взятка еще не собрана")
	ErrRoundIncomplete  = errors.New("раунд еще не доигран")
	ErrCardNotHeld      = errors.New("карты нет в руке")
)
