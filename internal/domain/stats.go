package domain

import "time"

// PlayerStats - накопленная статистика человека-игрока между партиями.
// Ключ - telegram user id; боты (отрицательные id) сюда не попадают.
type PlayerStats struct {
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	GamesPlayed int64     `json:"games_played"`
	GamesWon    int64     `json:"games_won"`
	GamesLost   int64     `json:"games_lost"`
	TricksWon   int64     `json:"tricks_won"`
	CardsPlayed int64     `json:"cards_played"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WinRate - процент побед
func (s *PlayerStats) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.GamesWon) / float64(s.GamesPlayed) * 100
}
