package game

// Position - место за столом. Порядок мест фиксирован и задает
// очередность ходов (по индексу, по кругу).
type Position string

const (
	PositionTop    Position = "top"
	PositionLeft   Position = "left"
	PositionBottom Position = "bottom"
	PositionRight  Position = "right"
)

// Positions - рассадка в порядке очередности ходов
var Positions = [4]Position{PositionTop, PositionLeft, PositionBottom, PositionRight}

// Team выводится из места и нигде не хранится отдельно
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// Team возвращает команду места: top/bottom - A, left/right - B
func (p Position) Team() Team {
	if p == PositionTop || p == PositionBottom {
		return TeamA
	}
	return TeamB
}

// GiftTarget - кому это место дарит карты. Цикл подарков фиксирован
// (top→left→bottom→right→top) и не совпадает с очередностью ходов.
func (p Position) GiftTarget() Position {
	switch p {
	case PositionTop:
		return PositionLeft
	case PositionLeft:
		return PositionBottom
	case PositionBottom:
		return PositionRight
	default:
		return PositionTop
	}
}

// Index возвращает номер места в очередности ходов (-1 если место неизвестно)
func (p Position) Index() int {
	for i, pos := range Positions {
		if pos == p {
			return i
		}
	}
	return -1
}
