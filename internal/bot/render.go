package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"wara2_bot/internal/domain"
	"wara2_bot/internal/game"
)

const helpText = `🃏 Li5a - a 4-player trick-taking card game.

Two teams of two: Top+Bottom vs Left+Right. Every round each player
gifts 3 cards to a neighbour, then 13 tricks are played. Hearts are
1 point each, 10♦️ is 10 points and Q♠️ is 13 points. Points are BAD:
the first team to reach 101 loses the game.

Commands:
/startgame - open a new table in this group
/join - take a seat at the table
/leave - leave before the game starts
/endgame - close the table
/score - current score and board
/stats - your personal statistics
/toggle_board_visibility - show or hide the board in the group
/help - this message`

func difficultyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("😌 Easy", "difficulty_easy"),
			tgbotapi.NewInlineKeyboardButtonData("🙂 Medium", "difficulty_medium"),
			tgbotapi.NewInlineKeyboardButtonData("😈 Hard", "difficulty_hard"),
		),
	)
}

// клавиатура обмена: рука по 4 карты в ряд, выбранные помечены галочкой
func giftKeyboard(hand []game.Card, selected map[game.Card]bool) tgbotapi.InlineKeyboardMarkup {
	rows := cardRows(hand, "gift", selected)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Confirm gift", "confirm_gift"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// клавиатура хода: только допустимые карты
func playKeyboard(legal []game.Card) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(cardRows(legal, "play", nil)...)
}

func cardRows(cards []game.Card, action string, selected map[game.Card]bool) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range cards {
		label := c.String()
		if selected[c] {
			label = "✅ " + label
		}
		data := fmt.Sprintf("%s_%s_%s", action, c.Rank, c.Suit)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, data))
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func suitLabel(s game.Suit) string {
	switch s {
	case game.SuitHearts:
		return "♥️ hearts"
	case game.SuitDiamonds:
		return "♦️ diamonds"
	case game.SuitClubs:
		return "♣️ clubs"
	case game.SuitSpades:
		return "♠️ spades"
	}
	return string(s)
}

func teamsText(snap game.Snapshot) string {
	var a, bTeam []string
	for _, s := range snap.Seats {
		switch s.Team {
		case game.TeamA:
			a = append(a, fmt.Sprintf("%s (%s)", s.Name, s.Position))
		case game.TeamB:
			bTeam = append(bTeam, fmt.Sprintf("%s (%s)", s.Name, s.Position))
		}
	}
	return fmt.Sprintf("🎲 The table is set!\n\n🔵 Team A: %s\n🔴 Team B: %s\n\nCheck your private chat to pick 3 cards to gift.",
		strings.Join(a, " + "), strings.Join(bTeam, " + "))
}

func scoreText(snap game.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Score (first to %d loses)\n", game.LosingScore)
	fmt.Fprintf(&sb, "🔵 Team A: %d\n🔴 Team B: %d\n", snap.Scores[game.TeamA], snap.Scores[game.TeamB])
	if snap.Phase == game.PhasePlaying {
		fmt.Fprintf(&sb, "\nTrick %d of %d\n", snap.TrickCount+1, game.TricksPerRound)
		sb.WriteString(boardText(snap))
	}
	return sb.String()
}

// boardText рисует стол текстом: места, взятые взятки, текущая взятка
func boardText(snap game.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("🪑 Table:\n")
	for _, s := range snap.Seats {
		marker := "  "
		if snap.Phase == game.PhasePlaying && s.Position == snap.CurrentSeat {
			marker = "👉"
		}
		bot := ""
		if s.IsBot {
			bot = " 🤖"
		}
		fmt.Fprintf(&sb, "%s %s: %s%s - %d tricks, %d cards\n",
			marker, s.Position, s.Name, bot, s.TricksWon, s.HandSize)
	}
	if len(snap.TrickPile) > 0 {
		sb.WriteString("\nOn the table:")
		for _, pc := range snap.TrickPile {
			fmt.Fprintf(&sb, " %s(%s)", pc.Card, pc.Seat)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func statsText(name string, stats *domain.PlayerStats) string {
	return fmt.Sprintf(
		"📈 Stats for %s\n\nGames played: %d\nGames won: %d\nGames lost: %d\nWin rate: %.0f%%\nTricks won: %d\nCards played: %d",
		name, stats.GamesPlayed, stats.GamesWon, stats.GamesLost,
		stats.WinRate(), stats.TricksWon, stats.CardsPlayed)
}

func roundText(round *game.RoundResult) string {
	return fmt.Sprintf(
		"🏁 Round over!\n\nRound points:\n🔵 Team A: %d\n🔴 Team B: %d\n\nTotal score:\n🔵 Team A: %d\n🔴 Team B: %d",
		round.TeamPoints[game.TeamA], round.TeamPoints[game.TeamB],
		round.Totals[game.TeamA], round.Totals[game.TeamB])
}

func gameOverText(round *game.RoundResult) string {
	var verdict string
	switch {
	case round.TeamALost && round.TeamBLost:
		verdict = "😱 Both teams crossed the line - everyone loses!"
	case round.TeamALost:
		verdict = "🔴 Team B wins! Team A crossed the line."
	default:
		verdict = "🔵 Team A wins! Team B crossed the line."
	}
	var winners []string
	for _, o := range round.Outcomes {
		if o.Won {
			winners = append(winners, o.Name)
		}
	}
	text := "🎉 GAME OVER!\n\n" + verdict
	if len(winners) > 0 {
		text += "\n\n🏆 Winners: " + strings.Join(winners, ", ")
	}
	return text
}
