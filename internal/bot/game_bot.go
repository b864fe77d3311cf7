package bot

import (
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"wara2_bot/internal/game"
	"wara2_bot/internal/logger"
	"wara2_bot/internal/repository"
	"wara2_bot/internal/service"
)

// GameBot - телеграм-обвязка над игровым сервисом: команды, колбэки
// клавиатур, ведение ходов ботов. Вся игровая логика живет в движке;
// здесь только уведомления и разбор ввода.
type GameBot struct {
	bot   *tgbotapi.BotAPI
	svc   *service.GameService
	stats *repository.StatsRepository // nil - статистика выключена
	log   *slog.Logger

	defaultDifficulty game.Difficulty
	thinkDelay        time.Duration // пауза "обдумывания" хода бота

	mu sync.Mutex
	// в каком групповом чате играет пользователь (колбэки приходят из личек)
	userGames map[int64]int64
	// незафиксированные отметки карт для обмена: chat -> user -> карты
	giftPicks map[int64]map[int64]map[game.Card]bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewGameBot авторизуется в Telegram и собирает бота
func NewGameBot(token string, svc *service.GameService, stats *repository.StatsRepository,
	difficulty game.Difficulty, thinkDelay time.Duration) (*GameBot, error) {

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "game_bot")
	log.Info("game bot authorized", "username", api.Self.UserName)

	return &GameBot{
		bot:               api,
		svc:               svc,
		stats:             stats,
		log:               log,
		defaultDifficulty: difficulty,
		thinkDelay:        thinkDelay,
		userGames:         make(map[int64]int64),
		giftPicks:         make(map[int64]map[int64]map[game.Card]bool),
		stopCh:            make(chan struct{}),
	}, nil
}

// Start крутит long-poll цикл обновлений до вызова Stop
func (b *GameBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			switch {
			case update.CallbackQuery != nil:
				b.wg.Add(1)
				go func(q *tgbotapi.CallbackQuery) {
					defer b.wg.Done()
					b.handleCallback(q)
				}(update.CallbackQuery)

			case update.Message != nil && update.Message.IsCommand():
				b.wg.Add(1)
				go func(msg *tgbotapi.Message) {
					defer b.wg.Done()
					b.handleCommand(msg)
				}(update.Message)
			}
		}
	}
}

// Stop останавливает цикл и дожидается обработчиков в полете
func (b *GameBot) Stop() {
	close(b.stopCh)
	b.bot.StopReceivingUpdates()
	b.wg.Wait()
}

// NotifyGameEvicted сообщает чату о вытеснении простаивающей партии.
// Ставится колбэком вытеснения в composition root.
func (b *GameBot) NotifyGameEvicted(chatID int64) {
	b.forgetGame(chatID)
	b.send(chatID, "⚠️ This game has been inactive for too long and has been automatically ended.")
}

// привязка игроков к групповому чату на время партии
func (b *GameBot) rememberGame(chatID int64, players []*game.Player) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range players {
		if !p.IsBot() {
			b.userGames[p.ID] = chatID
		}
	}
}

func (b *GameBot) forgetGame(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for userID, c := range b.userGames {
		if c == chatID {
			delete(b.userGames, userID)
		}
	}
	delete(b.giftPicks, chatID)
}

func (b *GameBot) gameChatOf(userID int64) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	chatID, ok := b.userGames[userID]
	return chatID, ok
}

func (b *GameBot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.bot.Send(msg); err != nil {
		b.log.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *GameBot) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	_, err := b.bot.Send(msg)
	if err != nil {
		b.log.Error("failed to send keyboard", "chat_id", chatID, "error", err)
	}
	return err
}

func (b *GameBot) answerCallback(q *tgbotapi.CallbackQuery, text string) {
	if _, err := b.bot.Request(tgbotapi.NewCallback(q.ID, text)); err != nil {
		b.log.Warn("failed to answer callback", "error", err)
	}
}
