package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"wara2_bot/internal/game"
	"wara2_bot/internal/service"
)

func (b *GameBot) handleCallback(q *tgbotapi.CallbackQuery) {
	data := q.Data
	switch {
	case strings.HasPrefix(data, "difficulty_"):
		b.handleDifficulty(q, strings.TrimPrefix(data, "difficulty_"))
	case strings.HasPrefix(data, "gift_"):
		b.handleGiftToggle(q, strings.TrimPrefix(data, "gift_"))
	case data == "confirm_gift":
		b.handleGiftConfirm(q)
	case strings.HasPrefix(data, "play_"):
		b.handlePlay(q, strings.TrimPrefix(data, "play_"))
	default:
		b.answerCallback(q, "")
	}
}

// выбор сложности ботов запускает партию
func (b *GameBot) handleDifficulty(q *tgbotapi.CallbackQuery, raw string) {
	chatID := q.Message.Chat.ID
	difficulty := game.Difficulty(raw)
	switch difficulty {
	case game.DifficultyEasy, game.DifficultyMedium, game.DifficultyHard:
	default:
		difficulty = b.defaultDifficulty
	}

	g, err := b.svc.StartMatch(chatID, difficulty)
	if err != nil {
		if errors.Is(err, game.ErrWrongPhase) {
			b.answerCallback(q, "The game has already started")
			return
		}
		b.log.Error("failed to start match", "chat_id", chatID, "error", err)
		b.answerCallback(q, "Could not start the game")
		return
	}
	b.answerCallback(q, "Game started!")

	b.rememberGame(chatID, g.Players())
	b.send(chatID, teamsText(g.Snapshot()))
	b.startGifting(chatID)
}

// открытие фазы обмена: люди получают клавиатуры в личку, боты дарят сами
func (b *GameBot) startGifting(chatID int64) {
	g, err := b.svc.Game(chatID)
	if err != nil {
		return
	}

	b.mu.Lock()
	b.giftPicks[chatID] = make(map[int64]map[game.Card]bool)
	b.mu.Unlock()

	for _, p := range g.Players() {
		if p.IsBot() {
			continue
		}
		target := p.Position.GiftTarget()
		recipient := "your neighbour"
		if rp, ok := seatPlayer(g, target); ok {
			recipient = rp.Name
		}
		text := fmt.Sprintf(
			"🎮 You are the %s player in Team %s.\n\nPlease select 3 cards to gift to %s.",
			p.Position, p.Position.Team(), recipient)
		if err := b.sendWithKeyboard(p.ID, text, giftKeyboard(p.Hand(), nil)); err != nil {
			b.send(chatID, "⚠️ I couldn't send a private message to one of the players. "+
				"Please make sure everyone has started a private chat with me first.")
		}
	}

	// боты выбирают подарок сразу, без пауз - фаза обмена не пошаговая
	for _, p := range g.Players() {
		if !p.IsBot() || p.Strategy == nil {
			continue
		}
		gift := p.Strategy.ChooseGift(p.Hand())
		started, err := b.svc.SelectGift(chatID, p.ID, gift)
		if err != nil {
			b.log.Error("bot gift failed", "chat_id", chatID, "bot_id", p.ID, "error", err)
			continue
		}
		if started {
			b.beginPlay(chatID)
			return
		}
	}
}

// отметка/снятие карты в клавиатуре обмена
func (b *GameBot) handleGiftToggle(q *tgbotapi.CallbackQuery, raw string) {
	userID := q.From.ID
	chatID, ok := b.gameChatOf(userID)
	if !ok {
		b.answerCallback(q, "You are not in an active game")
		return
	}
	card, err := parseCardData(raw)
	if err != nil {
		b.answerCallback(q, "Unknown card")
		return
	}

	b.mu.Lock()
	if b.giftPicks[chatID] == nil {
		b.giftPicks[chatID] = make(map[int64]map[game.Card]bool)
	}
	picks := b.giftPicks[chatID][userID]
	if picks == nil {
		picks = make(map[game.Card]bool)
		b.giftPicks[chatID][userID] = picks
	}
	if picks[card] {
		delete(picks, card)
	} else if len(picks) >= 3 {
		b.mu.Unlock()
		b.answerCallback(q, "You already selected 3 cards - deselect one first")
		return
	} else {
		picks[card] = true
	}
	selected := make(map[game.Card]bool, len(picks))
	for c := range picks {
		selected[c] = true
	}
	b.mu.Unlock()

	b.answerCallback(q, "")

	g, err := b.svc.Game(chatID)
	if err != nil {
		return
	}
	p, err := g.Player(userID)
	if err != nil {
		return
	}
	markup := giftKeyboard(p.Hand(), selected)
	edit := tgbotapi.NewEditMessageReplyMarkup(q.Message.Chat.ID, q.Message.MessageID, markup)
	if _, err := b.bot.Request(edit); err != nil {
		b.log.Warn("failed to edit gift keyboard", "error", err)
	}
}

// подтверждение тройки карт
func (b *GameBot) handleGiftConfirm(q *tgbotapi.CallbackQuery) {
	userID := q.From.ID
	chatID, ok := b.gameChatOf(userID)
	if !ok {
		b.answerCallback(q, "You are not in an active game")
		return
	}

	b.mu.Lock()
	picks := b.giftPicks[chatID][userID]
	cards := make([]game.Card, 0, len(picks))
	for c := range picks {
		cards = append(cards, c)
	}
	b.mu.Unlock()

	if len(cards) != 3 {
		b.answerCallback(q, "Select exactly 3 cards first")
		return
	}

	started, err := b.svc.SelectGift(chatID, userID, cards)
	if err != nil {
		if errors.Is(err, game.ErrInvalidSelection) {
			b.answerCallback(q, "Those cards are not all in your hand anymore")
		} else if errors.Is(err, game.ErrWrongPhase) {
			b.answerCallback(q, "Gifting is already over")
		} else {
			b.log.Error("gift confirm failed", "chat_id", chatID, "user_id", userID, "error", err)
			b.answerCallback(q, "Could not confirm your gift")
		}
		return
	}

	b.answerCallback(q, "Gift confirmed!")
	labels := make([]string, len(cards))
	for i, c := range cards {
		labels[i] = c.String()
	}
	b.send(userID, fmt.Sprintf("🎁 You gifted: %s\nWaiting for the other players...",
		strings.Join(labels, " ")))

	if started {
		b.beginPlay(chatID)
	}
}

// старт розыгрыша после обмена
func (b *GameBot) beginPlay(chatID int64) {
	g, err := b.svc.Game(chatID)
	if err != nil {
		return
	}
	b.send(chatID, "🃏 All gifts exchanged! The playing phase begins - 13 tricks ahead.")
	if g.ShowBoardEnabled() {
		b.send(chatID, boardText(g.Snapshot()))
	}
	b.promptTurn(chatID)
}

// promptTurn ведет очередь ходов: человеку шлет клавиатуру допустимых
// карт в личку, за бота запускает отдельную горутину с паузой
func (b *GameBot) promptTurn(chatID int64) {
	g, err := b.svc.Game(chatID)
	if err != nil || g.Phase() != game.PhasePlaying {
		return
	}
	p, pos := g.CurrentPlayer()
	if p == nil {
		return
	}

	if p.IsBot() {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.botTurn(chatID, p.ID)
		}()
		return
	}

	if g.ShowBoardEnabled() {
		b.send(chatID, fmt.Sprintf("👉 It's %s's turn (%s).", p.Name, pos))
	}
	view, legal, err := g.TurnView(p.ID)
	if err != nil {
		return
	}
	text := "👉 It's your turn."
	if view.LeadSuit != "" {
		text = fmt.Sprintf("👉 It's your turn. Lead suit: %s", suitLabel(view.LeadSuit))
	}
	b.sendWithKeyboard(p.ID, text, playKeyboard(legal))
}

// ход бота: пауза на "обдумывание" вне каких-либо блокировок стола
func (b *GameBot) botTurn(chatID, botID int64) {
	select {
	case <-b.stopCh:
		return
	case <-time.After(b.thinkDelay):
	}

	g, err := b.svc.Game(chatID)
	if err != nil {
		return // стол уже удален
	}
	p, err := g.Player(botID)
	if err != nil || p.Strategy == nil {
		return
	}
	view, legal, err := g.TurnView(botID)
	if err != nil || len(legal) == 0 {
		return
	}
	card := p.Strategy.ChooseCard(view, legal)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := b.svc.PlayCard(ctx, chatID, botID, card)
	if err != nil {
		b.log.Error("bot play failed", "chat_id", chatID, "bot_id", botID, "error", err)
		return
	}

	if g.ShowBoardEnabled() {
		b.send(chatID, fmt.Sprintf("🤖 %s played %s", p.Name, card))
	}
	b.afterPlay(chatID, result)
}

// ход человека по кнопке
func (b *GameBot) handlePlay(q *tgbotapi.CallbackQuery, raw string) {
	userID := q.From.ID
	chatID, ok := b.gameChatOf(userID)
	if !ok {
		b.answerCallback(q, "You are not in an active game")
		return
	}
	card, err := parseCardData(raw)
	if err != nil {
		b.answerCallback(q, "Unknown card")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := b.svc.PlayCard(ctx, chatID, userID, card)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrNotYourTurn):
			b.answerCallback(q, "It's not your turn")
		case errors.Is(err, game.ErrIllegalCard):
			b.answerCallback(q, "You must follow the lead suit")
		case errors.Is(err, game.ErrWrongPhase):
			b.answerCallback(q, "The playing phase is over")
		default:
			b.log.Error("play failed", "chat_id", chatID, "user_id", userID, "error", err)
			b.answerCallback(q, "Could not play that card")
		}
		return
	}
	b.answerCallback(q, fmt.Sprintf("Played %s", card))

	g, gerr := b.svc.Game(chatID)
	if gerr == nil && g.ShowBoardEnabled() {
		if p, perr := g.Player(userID); perr == nil {
			b.send(chatID, fmt.Sprintf("🂠 %s played %s", p.Name, card))
		}
	}
	b.afterPlay(chatID, result)
}

// afterPlay разносит факты завершенного хода и двигает игру дальше
func (b *GameBot) afterPlay(chatID int64, result service.PlayTurnResult) {
	if result.Trick != nil {
		t := result.Trick
		labels := make([]string, len(t.Cards))
		for i, c := range t.Cards {
			labels[i] = c.String()
		}
		b.send(chatID, fmt.Sprintf("🏆 %s wins trick %d (%s) - %d points.",
			t.WinnerName, t.TrickNumber, strings.Join(labels, " "), t.Points))
	}

	if result.Round != nil {
		b.finishRound(chatID, result.Round)
		return
	}
	b.promptTurn(chatID)
}

// итог раунда: либо новая пересдача и обмен, либо конец партии
func (b *GameBot) finishRound(chatID int64, round *game.RoundResult) {
	b.send(chatID, roundText(round))

	if !round.GameOver {
		b.send(chatID, "🔄 New round! Check your private chat to pick cards to gift.")
		b.startGifting(chatID)
		return
	}

	b.send(chatID, gameOverText(round))
	b.svc.EndGame(chatID)
	b.forgetGame(chatID)
}

func seatPlayer(g *game.Game, pos game.Position) (*game.Player, bool) {
	for _, p := range g.Players() {
		if p.Position == pos {
			return p, true
		}
	}
	return nil, false
}

// разбирает "<rank>_<suit>" из callback-данных
func parseCardData(raw string) (game.Card, error) {
	parts := strings.SplitN(raw, "_", 2)
	if len(parts) != 2 {
		return game.Card{}, fmt.Errorf("bad card data: %q", raw)
	}
	return game.ParseCard(parts[0], parts[1])
}
