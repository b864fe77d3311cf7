// Package metrics - счетчики prometheus, отдаются через /metrics
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveTables - столы, живущие в реестре прямо сейчас
	ActiveTables = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wara2_active_tables",
		Help: "Number of game tables currently registered.",
	})

	// GamesStarted - сколько партий дошло до раздачи
	GamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wara2_games_started_total",
		Help: "Games that reached the deal.",
	})

	// GamesFinished - партии, закончившиеся порогом в 101
	GamesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wara2_games_finished_total",
		Help: "Games that ended with a losing team.",
	})

	// TricksResolved - разыгранные взятки по всем столам
	TricksResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wara2_tricks_resolved_total",
		Help: "Tricks resolved across all tables.",
	})

	// RoundsResolved - закрытые раунды по всем столам
	RoundsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wara2_rounds_resolved_total",
		Help: "Rounds resolved across all tables.",
	})

	// TablesEvicted - столы, вытесненные за простой
	TablesEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wara2_tables_evicted_total",
		Help: "Idle tables removed by the sweeper.",
	})
)
