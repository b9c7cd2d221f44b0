package userservice

import (
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	mu          sync.Mutex
	Published   map[string][]*message.Message
	PublishFunc func(topic string, msgs ...*message.Message) error
}

func (p *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	if p.PublishFunc != nil {
		return p.PublishFunc(topic, msgs...)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Published == nil {
		p.Published = make(map[string][]*message.Message)
	}
	p.Published[topic] = append(p.Published[topic], msgs...)
	return nil
}

func (p *FakePublisher) Close() error { return nil }

func (p *FakePublisher) Count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Published[topic])
}

var _ message.Publisher = (*FakePublisher)(nil)
