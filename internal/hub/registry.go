// Package hub хранит активные столы по chat id и вытесняет простаивающие.
package hub

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"wara2_bot/internal/game"
	"wara2_bot/internal/logger"
)

var (
	// ErrNotFound - для этого чата нет стола
	ErrNotFound = errors.New("игра в этом чате не найдена")
	// ErrActiveGame - в чате уже идет партия
	ErrActiveGame = errors.New("в этом чате уже идет игра")
)

// DefaultIdleAfter - стол без операций дольше этого срока вытесняется
const DefaultIdleAfter = 6 * time.Hour

// DefaultSweepInterval - период фоновой очистки
const DefaultSweepInterval = time.Hour

// Registry владеет экземплярами Game: создание, поиск, удаление и
// фоновая очистка. Никакого другого глобального состояния нет - объект
// собирается в composition root и передается дальше по ссылке.
type Registry struct {
	mu        sync.RWMutex
	games     map[int64]*game.Game
	idleAfter time.Duration
	log       *slog.Logger

	// уведомление внешнего слоя о вытеснении, чтобы тот мог написать в чат
	onEvict func(chatID int64)

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New создает пустой реестр. idleAfter <= 0 берет значение по умолчанию.
func New(idleAfter time.Duration) *Registry {
	if idleAfter <= 0 {
		idleAfter = DefaultIdleAfter
	}
	return &Registry{
		games:     make(map[int64]*game.Game),
		idleAfter: idleAfter,
		log:       logger.With("component", "hub"),
		stopCh:    make(chan struct{}),
	}
}

// SetEvictCallback устанавливает обработчик вытеснения (до запуска Sweep)
func (r *Registry) SetEvictCallback(fn func(chatID int64)) {
	r.onEvict = fn
}

// Create создает свежий стол для чата. Активная партия (не forming и
// не game_over) не заменяется; брошенный набор или доигранная партия -
// заменяются молча.
func (r *Registry) Create(chatID int64, rng *rand.Rand) (*game.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.games[chatID]; ok {
		phase := existing.Phase()
		if phase != game.PhaseForming && phase != game.PhaseGameOver {
			return nil, ErrActiveGame
		}
	}

	g := game.NewGame(chatID, rng)
	r.games[chatID] = g
	r.log.Info("game created", "chat_id", chatID, "game_id", g.ID)
	return g, nil
}

// Get возвращает стол чата
func (r *Registry) Get(chatID int64) (*game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[chatID]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

// Delete удаляет стол немедленно и безусловно. Операции над уже
// удаленным столом получают ErrNotFound при следующем Get.
func (r *Registry) Delete(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[chatID]
	if !ok {
		return false
	}
	delete(r.games, chatID)
	r.log.Info("game deleted", "chat_id", chatID, "game_id", g.ID)
	return true
}

// Count возвращает число активных столов
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// SweepIdle удаляет столы, простаивающие дольше порога, независимо от
// фазы, и возвращает затронутые чаты. Колбэки зовутся вне блокировки.
func (r *Registry) SweepIdle(now time.Time) []int64 {
	r.mu.Lock()
	var evicted []int64
	for chatID, g := range r.games {
		if now.Sub(g.LastActivity()) > r.idleAfter {
			delete(r.games, chatID)
			evicted = append(evicted, chatID)
		}
	}
	r.mu.Unlock()

	for _, chatID := range evicted {
		r.log.Info("idle game evicted", "chat_id", chatID)
		if r.onEvict != nil {
			r.onEvict(chatID)
		}
	}
	return evicted
}

// StartSweeper запускает фоновую очистку с заданным периодом
func (r *Registry) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stopCh:
				return
			case <-ticker.C:
				if n := len(r.SweepIdle(time.Now())); n > 0 {
					r.log.Info("sweep finished", "evicted", n)
				}
			}
		}
	}()
}

// Stop останавливает фоновую очистку
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}
