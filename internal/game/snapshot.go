package game

// SeatView - игрок глазами наблюдателя: без руки, только ее размер
type SeatView struct {
	PlayerID      int64    `json:"player_id"`
	Name          string   `json:"name"`
	Team          Team     `json:"team"`
	HandSize      int      `json:"hand_size"`
	TricksWon     int      `json:"tricks_won"`
	GiftConfirmed bool     `json:"gift_confirmed"`
	IsBot         bool     `json:"is_bot"`
	Position      Position `json:"position"`
}

// PlayedCard - карта взятки вместе с местом, с которого она сыграна
type PlayedCard struct {
	Card Card     `json:"card"`
	Seat Position `json:"seat"`
}

// Snapshot - read-only проекция состояния стола для отрисовки: доска в
// группе, live-трансляция, отладка. Руки игроков сюда не входят - их
// каждый получает отдельно через Hand().
type Snapshot struct {
	GameID      string       `json:"game_id"`
	ChatID      int64        `json:"chat_id"`
	Phase       Phase        `json:"phase"`
	Seats       []SeatView   `json:"seats"`
	TrickPile   []PlayedCard `json:"trick_pile"`
	LeadSuit    Suit         `json:"lead_suit,omitempty"`
	CurrentSeat Position     `json:"current_seat,omitempty"`
	TrickCount  int          `json:"trick_count"`
	Scores      map[Team]int `json:"scores"`
}

// Snapshot строит проекцию под read-блокировкой
func (g *Game) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := Snapshot{
		GameID:     g.ID,
		ChatID:     g.ChatID,
		Phase:      g.phase,
		LeadSuit:   g.leadSuit,
		TrickCount: g.trickCount,
		Scores:     map[Team]int{TeamA: g.scores[TeamA], TeamB: g.scores[TeamB]},
	}

	if g.phase == PhaseForming {
		for _, p := range g.players {
			snap.Seats = append(snap.Seats, SeatView{
				PlayerID: p.ID,
				Name:     p.Name,
				IsBot:    p.IsBot(),
			})
		}
		return snap
	}

	for _, pos := range Positions {
		p := g.seats[pos]
		snap.Seats = append(snap.Seats, SeatView{
			PlayerID:      p.ID,
			Name:          p.Name,
			Team:          pos.Team(),
			HandSize:      len(p.hand),
			TricksWon:     len(p.tricksWon),
			GiftConfirmed: len(p.selection) == 3,
			IsBot:         p.IsBot(),
			Position:      pos,
		})
	}

	if g.phase == PhasePlaying {
		snap.CurrentSeat = Positions[g.currentIdx]
		// восстанавливаем, кто положил какую карту текущей взятки,
		// отступая назад от индекса текущего хода
		leaderIdx := (g.currentIdx - len(g.trickPile) + MaxPlayers*2) % MaxPlayers
		for i, c := range g.trickPile {
			snap.TrickPile = append(snap.TrickPile, PlayedCard{
				Card: c,
				Seat: Positions[(leaderIdx+i)%MaxPlayers],
			})
		}
	}
	return snap
}
