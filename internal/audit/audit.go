// Package audit рассылает события о создании, переходе и отказе наблюдателям.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action тип действия аудита
type Action string

const (
	ActionShorten Action = "shorten"
	ActionFollow  Action = "follow"
	ActionReject  Action = "reject"
)

// Event структура события аудита
type Event struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
	Action    Action `json:"action"`
	UserID    string `json:"user_id,omitempty"`
	URL       string `json:"url"`
	Slug      string `json:"slug,omitempty"`
	// Reason: код причины отказа для ActionReject
	Reason string `json:"reason,omitempty"`
}

// NewEvent создаёт новое событие аудита
func NewEvent(action Action, userID, url string) Event {
	return Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().Unix(),
		Action:    action,
		UserID:    userID,
		URL:       url,
	}
}

func (e Event) WithSlug(slug string) Event {
	e.Slug = slug
	return e
}

func (e Event) WithReason(reason string) Event {
	e.Reason = reason
	return e
}

type Observer interface {
	Notify(event Event)
	Close() error
}

type Publisher struct {
	mu          sync.Mutex
	subscribers []Observer
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Subscribe(o Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers = append(p.subscribers, o)
}

// Publish синхронно уведомляет подписчиков. nil-публикатор допустим.
func (p *Publisher) Publish(event Event) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.subscribers {
		s.Notify(event)
	}
}

// Close закрывает всех наблюдателей и возвращает первую ошибку
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var first error
	for _, obs := range p.subscribers {
		if err := obs.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
