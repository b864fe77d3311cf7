package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wara2_bot/internal/domain"
)

type StatsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// получает статистику по id игрока, nil если записей нет
func (r *StatsRepository) GetByUserID(ctx context.Context, userID int64) (*domain.PlayerStats, error) {
	row := r.db.QueryRow(ctx, `
		SELECT user_id, name, games_played, games_won, games_lost, tricks_won, cards_played, updated_at
		FROM player_stats
		WHERE user_id = $1
	`, userID)

	var s domain.PlayerStats
	if err := row.Scan(
		&s.UserID, &s.Name, &s.GamesPlayed, &s.GamesWon, &s.GamesLost,
		&s.TricksWon, &s.CardsPlayed, &s.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// записывает итог партии: сыграна + победа либо поражение
func (r *StatsRepository) RecordGameResult(ctx context.Context, userID int64, name string, won bool) error {
	wonInc, lostInc := 0, 1
	if won {
		wonInc, lostInc = 1, 0
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO player_stats (user_id, name, games_played, games_won, games_lost, tricks_won, cards_played, updated_at)
		VALUES ($1, $2, 1, $3, $4, 0, 0, now())
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			games_played = player_stats.games_played + 1,
			games_won = player_stats.games_won + $3,
			games_lost = player_stats.games_lost + $4,
			updated_at = now()
	`, userID, name, wonInc, lostInc)
	return err
}

// прибавляет выигранные взятки
func (r *StatsRepository) AddTricksWon(ctx context.Context, userID int64, n int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO player_stats (user_id, name, games_played, games_won, games_lost, tricks_won, cards_played, updated_at)
		VALUES ($1, '', 0, 0, 0, $2, 0, now())
		ON CONFLICT (user_id) DO UPDATE SET
			tricks_won = player_stats.tricks_won + $2,
			updated_at = now()
	`, userID, n)
	return err
}

// прибавляет сыгранные карты
func (r *StatsRepository) AddCardsPlayed(ctx context.Context, userID int64, n int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO player_stats (user_id, name, games_played, games_won, games_lost, tricks_won, cards_played, updated_at)
		VALUES ($1, '', 0, 0, 0, 0, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET
			cards_played = player_stats.cards_played + $2,
			updated_at = now()
	`, userID, n)
	return err
}

// возвращает лучших игроков по числу побед
func (r *StatsRepository) Leaderboard(ctx context.Context, limit int) ([]domain.PlayerStats, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, name, games_played, games_won, games_lost, tricks_won, cards_played, updated_at
		FROM player_stats
		WHERE games_played > 0
		ORDER BY games_won DESC, games_played ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PlayerStats
	for rows.Next() {
		var s domain.PlayerStats
		if err := rows.Scan(
			&s.UserID, &s.Name, &s.GamesPlayed, &s.GamesWon, &s.GamesLost,
			&s.TricksWon, &s.CardsPlayed, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
