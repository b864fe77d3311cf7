package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"wara2_bot/internal/game"
	"wara2_bot/internal/hub"
)

func (b *GameBot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.send(msg.Chat.ID,
			"👋 Welcome to the Wara2 Card Games Bot!\n\n"+
				"Add me to a group chat and use /startgame to play Li5a - "+
				"a 4-player trick-taking game where the first team to 101 points loses!")
	case "games":
		b.send(msg.Chat.ID,
			"🎮 Available games:\n\n"+
				"Li5a - a 4-player trick-taking game where the first team to 101 points loses.\n"+
				"Use /startgame in a group chat to begin.")
	case "startgame":
		b.cmdStartGame(msg)
	case "join":
		b.cmdJoin(msg)
	case "leave":
		b.cmdLeave(msg)
	case "endgame":
		b.cmdEndGame(msg)
	case "score":
		b.cmdScore(msg)
	case "stats":
		b.cmdStats(msg)
	case "toggle_board_visibility":
		b.cmdToggleBoard(msg)
	case "help":
		b.send(msg.Chat.ID, helpText)
	}
}

func (b *GameBot) cmdStartGame(msg *tgbotapi.Message) {
	if !msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup() {
		b.send(msg.Chat.ID, "⚠️ Games can only be started in group chats.")
		return
	}
	chatID := msg.Chat.ID

	if _, err := b.svc.CreateGame(chatID); err != nil {
		if errors.Is(err, hub.ErrActiveGame) {
			b.send(chatID, "⚠️ There is already an active game in this chat. Use /endgame to end it first.")
			return
		}
		b.log.Error("failed to create game", "chat_id", chatID, "error", err)
		b.send(chatID, "⚠️ Could not create the game. Please try again.")
		return
	}

	if err := b.svc.Join(chatID, msg.From.ID, displayName(msg.From)); err != nil {
		b.log.Error("failed to join creator", "chat_id", chatID, "error", err)
	}

	b.sendWithKeyboard(chatID,
		fmt.Sprintf("🎮 A new Li5a game is forming!\n\n"+
			"%s has joined. Use /join to take a seat (up to 4 players).\n"+
			"Empty seats will be filled with AI players - pick their difficulty to start.",
			displayName(msg.From)),
		difficultyKeyboard())
}

func (b *GameBot) cmdJoin(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	err := b.svc.Join(chatID, msg.From.ID, displayName(msg.From))
	switch {
	case err == nil:
		g, gerr := b.svc.Game(chatID)
		seated := 0
		if gerr == nil {
			seated = g.PlayerCount()
		}
		b.send(chatID, fmt.Sprintf("✅ %s joined the game (%d/4).", displayName(msg.From), seated))
	case errors.Is(err, hub.ErrNotFound):
		b.send(chatID, "⚠️ No game is forming in this chat. Use /startgame first.")
	case errors.Is(err, game.ErrAlreadyJoined):
		b.send(chatID, "⚠️ You are already in the game.")
	case errors.Is(err, game.ErrGameFull):
		b.send(chatID, "⚠️ The game is full.")
	case errors.Is(err, game.ErrWrongPhase):
		b.send(chatID, "⚠️ The game has already started.")
	default:
		b.log.Error("join failed", "chat_id", chatID, "error", err)
	}
}

func (b *GameBot) cmdLeave(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	err := b.svc.Leave(chatID, msg.From.ID)
	switch {
	case err == nil:
		b.send(chatID, fmt.Sprintf("👋 %s left the game.", displayName(msg.From)))
	case errors.Is(err, game.ErrWrongPhase):
		b.send(chatID, "⚠️ You can only leave before the game starts.")
	case errors.Is(err, hub.ErrNotFound), errors.Is(err, game.ErrUnknownPlayer):
		b.send(chatID, "⚠️ You are not in a game in this chat.")
	default:
		b.log.Error("leave failed", "chat_id", chatID, "error", err)
	}
}

func (b *GameBot) cmdEndGame(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if b.svc.EndGame(chatID) {
		b.forgetGame(chatID)
		b.send(chatID, "🏁 The game has been ended.")
	} else {
		b.send(chatID, "⚠️ No game to end in this chat.")
	}
}

func (b *GameBot) cmdScore(msg *tgbotapi.Message) {
	g, err := b.svc.Game(msg.Chat.ID)
	if err != nil {
		b.send(msg.Chat.ID, "⚠️ No game in this chat.")
		return
	}
	b.send(msg.Chat.ID, scoreText(g.Snapshot()))
}

func (b *GameBot) cmdStats(msg *tgbotapi.Message) {
	if b.stats == nil {
		b.send(msg.Chat.ID, "⚠️ Statistics are not available.")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := b.stats.GetByUserID(ctx, msg.From.ID)
	if err != nil {
		b.log.Error("failed to load stats", "user_id", msg.From.ID, "error", err)
		b.send(msg.Chat.ID, "⚠️ Could not load your statistics.")
		return
	}
	if stats == nil {
		b.send(msg.Chat.ID, fmt.Sprintf("You haven't played any games yet, %s!", displayName(msg.From)))
		return
	}
	b.send(msg.Chat.ID, statsText(displayName(msg.From), stats))
}

func (b *GameBot) cmdToggleBoard(msg *tgbotapi.Message) {
	g, err := b.svc.Game(msg.Chat.ID)
	if err != nil {
		b.send(msg.Chat.ID, "⚠️ No game in this chat.")
		return
	}
	if g.ToggleShowBoard() {
		b.send(msg.Chat.ID, "👁 Board display in the group is ON.")
	} else {
		b.send(msg.Chat.ID, "🙈 Board display in the group is OFF.")
	}
}

func displayName(u *tgbotapi.User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.UserName
}
