package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"wara2_bot/internal/game"
	"wara2_bot/internal/hub"
	"wara2_bot/internal/logger"
	"wara2_bot/internal/metrics"
	"wara2_bot/internal/repository"
)

// имена ботов, подставляются при добивке стола до четырех
var botNames = []string{
	"Card Shark", "Poker Face", "Royal Flush", "Wild Card",
	"Ace", "Dealer", "HighCard", "CleverBot",
	"CardMaster", "GameBot", "Lucky Draw", "Full House",
}

// GameService - единственная точка, через которую презентационный слой
// трогает столы: оркестрация реестра, движка, статистики, метрик и
// live-трансляции доски. Сам сервис не шлет сообщений пользователям -
// он возвращает факты, уведомления остаются за вызывающим.
type GameService struct {
	registry *hub.Registry
	stats    *repository.StatsRepository // nil - статистика выключена
	board    *BoardBroadcaster
	log      *slog.Logger
}

// NewGameService собирает сервис. stats допускает nil.
func NewGameService(registry *hub.Registry, stats *repository.StatsRepository) *GameService {
	return &GameService{
		registry: registry,
		stats:    stats,
		board:    NewBoardBroadcaster(),
		log:      logger.With("component", "game_service"),
	}
}

// Registry отдает реестр composition root'у (для sweeper'а и колбэков)
func (s *GameService) Registry() *hub.Registry {
	return s.registry
}

// Board отдает трансляцию доски HTTP-слою
func (s *GameService) Board() *BoardBroadcaster {
	return s.board
}

// CreateGame создает стол для чата
func (s *GameService) CreateGame(chatID int64) (*game.Game, error) {
	g, err := s.registry.Create(chatID, nil)
	if err != nil {
		return nil, err
	}
	metrics.ActiveTables.Set(float64(s.registry.Count()))
	s.publish(g)
	return g, nil
}

// Game возвращает стол чата
func (s *GameService) Game(chatID int64) (*game.Game, error) {
	return s.registry.Get(chatID)
}

// Join сажает человека за стол
func (s *GameService) Join(chatID, userID int64, name string) error {
	g, err := s.registry.Get(chatID)
	if err != nil {
		return err
	}
	if err := g.AddPlayer(userID, name, nil); err != nil {
		return err
	}
	s.publish(g)
	return nil
}

// Leave убирает человека из-за формирующегося стола
func (s *GameService) Leave(chatID, userID int64) error {
	g, err := s.registry.Get(chatID)
	if err != nil {
		return err
	}
	if err := g.RemovePlayer(userID); err != nil {
		return err
	}
	s.publish(g)
	return nil
}

// StartMatch добивает стол ботами заданной сложности до четырех мест,
// раздает карты и открывает фазу обмена
func (s *GameService) StartMatch(chatID int64, difficulty game.Difficulty) (*game.Game, error) {
	g, err := s.registry.Get(chatID)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(rand.Int63()))
	for i := g.PlayerCount(); i < game.MaxPlayers; i++ {
		botID := -int64(i + 1)
		name := fmt.Sprintf("%s (AI)", botNames[rng.Intn(len(botNames))])
		strategy := game.NewBotStrategy(difficulty, rng)
		if err := g.AddPlayer(botID, name, strategy); err != nil {
			return nil, err
		}
	}

	if err := g.DealAndStart(); err != nil {
		return nil, err
	}
	metrics.GamesStarted.Inc()
	s.log.Info("match started", "chat_id", chatID, "game_id", g.ID)
	s.publish(g)
	return g, nil
}

// SelectGift фиксирует выбор игрока; когда выбрали все - сразу
// проводит обмен. Возвращает true, если начался розыгрыш.
func (s *GameService) SelectGift(chatID, playerID int64, cards []game.Card) (bool, error) {
	g, err := s.registry.Get(chatID)
	if err != nil {
		return false, err
	}
	if err := g.SelectGift(playerID, cards); err != nil {
		return false, err
	}
	s.publish(g)

	if !g.AllGiftsSelected() {
		return false, nil
	}
	if err := g.ApplyAllGifts(); err != nil {
		// параллельное последнее подтверждение: обмен уже провел другой
		// вызов, а выбор этого игрока все равно учтен - для него это успех
		if errors.Is(err, game.ErrWrongPhase) {
			return false, nil
		}
		return false, err
	}
	s.log.Info("gifts exchanged", "chat_id", chatID, "game_id", g.ID)
	s.publish(g)
	return true, nil
}

// PlayTurnResult - все, что произошло за один ход: сам ход всегда,
// взятка - если собралась, итог раунда - если раунд закрылся
type PlayTurnResult struct {
	Trick *game.TrickResult
	Round *game.RoundResult
}

// PlayCard разыгрывает карту и закрывает взятку/раунд, если ход их
// завершил. Статистика пишется из фактов, боты не учитываются.
func (s *GameService) PlayCard(ctx context.Context, chatID, playerID int64, card game.Card) (PlayTurnResult, error) {
	g, err := s.registry.Get(chatID)
	if err != nil {
		return PlayTurnResult{}, err
	}
	if err := g.PlayCard(playerID, card); err != nil {
		return PlayTurnResult{}, err
	}
	s.recordCardPlayed(ctx, playerID)

	var result PlayTurnResult
	if g.TrickComplete() {
		trick, err := g.ResolveTrick()
		if err != nil {
			return result, err
		}
		metrics.TricksResolved.Inc()
		s.recordTrickWon(ctx, trick.WinnerID)
		result.Trick = &trick

		if g.RoundComplete() {
			round, err := g.ResolveRound()
			if err != nil {
				return result, err
			}
			metrics.RoundsResolved.Inc()
			result.Round = &round

			if round.GameOver {
				metrics.GamesFinished.Inc()
				s.recordGameResults(ctx, round.Outcomes)
			}
		}
	}

	s.publish(g)
	return result, nil
}

// EndGame удаляет стол немедленно и безусловно
func (s *GameService) EndGame(chatID int64) bool {
	ok := s.registry.Delete(chatID)
	if ok {
		metrics.ActiveTables.Set(float64(s.registry.Count()))
		s.board.Close(chatID)
	}
	return ok
}

func (s *GameService) publish(g *game.Game) {
	s.board.Publish(g.ChatID, g.Snapshot())
}

func (s *GameService) recordCardPlayed(ctx context.Context, playerID int64) {
	if s.stats == nil || playerID < 0 {
		return
	}
	if err := s.stats.AddCardsPlayed(ctx, playerID, 1); err != nil {
		s.log.Error("failed to record card played", "user_id", playerID, "error", err)
	}
}

func (s *GameService) recordTrickWon(ctx context.Context, playerID int64) {
	if s.stats == nil || playerID < 0 {
		return
	}
	if err := s.stats.AddTricksWon(ctx, playerID, 1); err != nil {
		s.log.Error("failed to record trick win", "user_id", playerID, "error", err)
	}
}

func (s *GameService) recordGameResults(ctx context.Context, outcomes []game.PlayerOutcome) {
	if s.stats == nil {
		return
	}
	for _, o := range outcomes {
		if o.IsBot {
			continue
		}
		if err := s.stats.RecordGameResult(ctx, o.ID, o.Name, o.Won); err != nil {
			s.log.Error("failed to record game result", "user_id", o.ID, "error", err)
		}
	}
}
