// Package events — шина событий о выполненных бустах.
// Заменяет глобальные «window»-события: у каждого подписчика есть имя
// и функция отписки, после вызова которой доставка гарантированно прекращается.
package events

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// BoostCompleted — уведомление о выполненном бусте.
// Это единственный способ, которым зависимые экраны (очки, серия,
// прогресс челленджей по категории) узнают об изменении.
type BoostCompleted struct {
	UserID       int64     `json:"userId"`
	BoostID      string    `json:"boostId"`
	Category     string    `json:"category"`
	PointsEarned int       `json:"pointsEarned"`
	StreakBonus  int       `json:"streakBonus"`
	Streak       int       `json:"streak"`
	CompletedAt  time.Time `json:"completedAt"`
}

// Handler обрабатывает событие. Вызывается синхронно из Publish.
// Внутри обработчика нельзя подписываться, отписываться и публиковать.
type Handler func(ctx context.Context, e BoostCompleted)

type subscriber struct {
	name    string
	handler Handler
}

// Bus — синхронная шина с подписками по жизненному циклу.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]subscriber
}

// NewBus создаёт пустую шину.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]subscriber)}
}

// Subscribe регистрирует обработчик и возвращает функцию отписки.
// Отписку можно вызывать сколько угодно раз.
func (b *Bus) Subscribe(name string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = subscriber{name: name, handler: h}
	b.mu.Unlock()

	log.WithField("subscriber", name).Debug("Подписка на события бустов")

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			log.WithField("subscriber", name).Debug("Отписка от событий бустов")
		})
	}
}

// Publish доставляет событие всем текущим подписчикам.
// Паника в одном подписчике не мешает остальным.
//
// Удерживаем RLock на время доставки: отписка ждёт окончания
// текущей рассылки, поэтому после её возврата обработчик больше не вызовется.
func (b *Bus) Publish(ctx context.Context, e BoostCompleted) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, s := range b.subs {
		b.deliver(ctx, s, e)
	}
}

// Len возвращает число активных подписчиков.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) deliver(ctx context.Context, s subscriber, e BoostCompleted) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"component":  "events",
				"subscriber": s.name,
				"panic":      fmt.Sprintf("%v", r),
				"stack":      string(debug.Stack()),
			}).Error("ПАНИКА в подписчике — восстановлено")
		}
	}()
	s.handler(ctx, e)
}
