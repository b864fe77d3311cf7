package service

import (
	"encoding/json"
	"sync"

	"wara2_bot/internal/game"
	"wara2_bot/internal/logger"
)

// BoardBroadcaster раздает снапшоты доски подписчикам live-трансляции.
// Публикация неблокирующая: отставший подписчик теряет кадр, а не
// тормозит стол.
type BoardBroadcaster struct {
	mu   sync.RWMutex
	subs map[int64]map[chan []byte]struct{}
	last map[int64][]byte // последний кадр для новых подписчиков
}

func NewBoardBroadcaster() *BoardBroadcaster {
	return &BoardBroadcaster{
		subs: make(map[int64]map[chan []byte]struct{}),
		last: make(map[int64][]byte),
	}
}

// Subscribe подписывает на снапшоты стола; cancel обязателен.
// Новый подписчик сразу получает последний известный кадр.
func (b *BoardBroadcaster) Subscribe(chatID int64) (<-chan []byte, func()) {
	ch := make(chan []byte, 8)

	b.mu.Lock()
	if b.subs[chatID] == nil {
		b.subs[chatID] = make(map[chan []byte]struct{})
	}
	b.subs[chatID][ch] = struct{}{}
	if frame, ok := b.last[chatID]; ok {
		ch <- frame
	}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[chatID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(b.subs, chatID)
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish рассылает снапшот всем подписчикам стола
func (b *BoardBroadcaster) Publish(chatID int64, snap game.Snapshot) {
	frame, err := json.Marshal(snap)
	if err != nil {
		logger.Error("failed to marshal board snapshot", "chat_id", chatID, "error", err)
		return
	}

	b.mu.Lock()
	b.last[chatID] = frame
	for ch := range b.subs[chatID] {
		select {
		case ch <- frame:
		default: // подписчик не успевает - пропускаем кадр
		}
	}
	b.mu.Unlock()
}

// Close закрывает трансляцию стола и отключает подписчиков
func (b *BoardBroadcaster) Close(chatID int64) {
	b.mu.Lock()
	for ch := range b.subs[chatID] {
		close(ch)
	}
	delete(b.subs, chatID)
	delete(b.last, chatID)
	b.mu.Unlock()
}
