package game

import (
	"fmt"
	"math/rand"
	"sort"
)

// Suit - масть карты
type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
)

// Rank - достоинство карты, от двойки до туза
type Rank string

const (
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "10"
	RankJack  Rank = "jack"
	RankQueen Rank = "queen"
	RankKing  Rank = "king"
	RankAce   Rank = "ace"
)

// порядок возрастания старшинства
var Ranks = []Rank{
	RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven, RankEight,
	RankNine, RankTen, RankJack, RankQueen, RankKing, RankAce,
}

var Suits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

var rankOrder = map[Rank]int{
	RankTwo: 0, RankThree: 1, RankFour: 2, RankFive: 3, RankSix: 4,
	RankSeven: 5, RankEight: 6, RankNine: 7, RankTen: 8,
	RankJack: 9, RankQueen: 10, RankKing: 11, RankAce: 12,
}

var suitSymbols = map[Suit]string{
	SuitHearts:   "♥️",
	SuitDiamonds: "♦️",
	SuitClubs:    "♣️",
	SuitSpades:   "♠️",
}

var rankSymbols = map[Rank]string{
	RankTwo: "2", RankThree: "3", RankFour: "4", RankFive: "5", RankSix: "6",
	RankSeven: "7", RankEight: "8", RankNine: "9", RankTen: "10",
	RankJack: "J", RankQueen: "Q", RankKing: "K", RankAce: "A",
}

// Order возвращает индекс достоинства в порядке возрастания (-1 если неизвестно)
func (r Rank) Order() int {
	if o, ok := rankOrder[r]; ok {
		return o
	}
	return -1
}

// Card - неизменяемая пара (достоинство, масть), сравнение по значению
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// String возвращает короткую запись карты, например "A♥️"
func (c Card) String() string {
	rs, ok1 := rankSymbols[c.Rank]
	ss, ok2 := suitSymbols[c.Suit]
	if !ok1 || !ok2 {
		return "??"
	}
	return rs + ss
}

// PointValue - очки карты по правилам Li5a:
// любая черва - 1, десятка бубен - 10, дама пик - 13, остальные - 0
func (c Card) PointValue() int {
	switch {
	case c.Suit == SuitHearts:
		return 1
	case c.Suit == SuitDiamonds && c.Rank == RankTen:
		return 10
	case c.Suit == SuitSpades && c.Rank == RankQueen:
		return 13
	default:
		return 0
	}
}

// ключ сортировки только для отображения: группировка по масти, затем по достоинству
func cardSortKey(c Card) int {
	suitOrder := map[Suit]int{SuitClubs: 0, SuitDiamonds: 1, SuitSpades: 2, SuitHearts: 3}
	return suitOrder[c.Suit]*len(Ranks) + c.Rank.Order()
}

// SortHand упорядочивает руку для показа игроку. На правила не влияет.
func SortHand(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		return cardSortKey(cards[i]) < cardSortKey(cards[j])
	})
}

// NewDeck возвращает полную колоду из 52 разных карт в детерминированном порядке
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// DealHands тасует свежую колоду и раздает 4 руки по 13 карт.
// Раздача - непрерывные срезы равномерной перестановки: честно и
// покрывает колоду целиком без пересечений.
func DealHands(rng *rand.Rand) [4][]Card {
	deck := NewDeck()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	var hands [4][]Card
	for i := 0; i < 4; i++ {
		hand := make([]Card, 13)
		copy(hand, deck[i*13:(i+1)*13])
		SortHand(hand)
		hands[i] = hand
	}
	return hands
}

// TrickWinnerIndex возвращает индекс выигравшей карты во взятке.
// Выигрывает старшая карта заходной масти; карты других мастей не
// выигрывают никогда (козырей нет). Если заходной масти во взятке нет
// (при корректном учете недостижимо), побеждает индекс 0 - защитный
// fallback вместо паники.
func TrickWinnerIndex(trick []Card, leadSuit Suit) int {
	winner := 0
	highest := -1
	for i, c := range trick {
		if c.Suit != leadSuit {
			continue
		}
		if o := c.Rank.Order(); o > highest {
			highest = o
			winner = i
		}
	}
	return winner
}

// TrickPoints - сумма очков всех карт взятки
func TrickPoints(trick []Card) int {
	total := 0
	for _, c := range trick {
		total += c.PointValue()
	}
	return total
}

// ParseCard разбирает пару достоинство/масть из callback-данных клавиатуры
func ParseCard(rank, suit string) (Card, error) {
	c := Card{Rank: Rank(rank), Suit: Suit(suit)}
	if c.Rank.Order() < 0 {
		return Card{}, fmt.Errorf("неизвестное достоинство: %q", rank)
	}
	if _, ok := suitSymbols[c.Suit]; !ok {
		return Card{}, fmt.Errorf("неизвестная масть: %q", suit)
	}
	return c, nil
}
