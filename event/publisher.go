package event

import (
	"fmt"
	"sync"
	"time"

	"github.com/linchenxuan/craftnet/log"
)

// Publisher includes multiple topics.
type Publisher struct {
	lock   sync.RWMutex
	topics map[string]*Topic
}

// NewPublisher returns a publisher with no topics.
func NewPublisher() *Publisher {
	return &Publisher{topics: make(map[string]*Topic)}
}

// NewTopic must create a topic before you can initiate a subscription.
// A zero timeout makes Publish wait for every subscriber.
func (p *Publisher) NewTopic(topicName string, timeout time.Duration) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if _, ok := p.topics[topicName]; ok {
		return fmt.Errorf("topic %s already create", topicName)
	}
	p.topics[topicName] = &Topic{
		timeout:     timeout,
		subscribers: []Subscriber{},
	}
	return nil
}

// HasTopic reports whether topicName was created.
func (p *Publisher) HasTopic(topicName string) bool {
	p.lock.RLock()
	defer p.lock.RUnlock()
	_, ok := p.topics[topicName]
	return ok
}

// RegisterSubscriber registers a subscriber.
func (p *Publisher) RegisterSubscriber(topicName string, fn Subscriber) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	topic, ok := p.topics[topicName]
	if !ok {
		return fmt.Errorf("topic %s not create", topicName)
	}

	topic.subscribers = append(topic.subscribers, fn)
	log.Debug().Str("topic", topicName).Int("num", len(topic.subscribers)).Msg("add subscribers")
	return nil
}

// Publish runs every subscriber of topicName concurrently with i and waits
// for them, up to the topic timeout.
func (p *Publisher) Publish(topicName string, i any) error {
	p.lock.RLock()
	topic, ok := p.topics[topicName]
	var subs []Subscriber
	var timeout time.Duration
	if ok {
		subs = append(subs, topic.subscribers...)
		timeout = topic.timeout
	}
	p.lock.RUnlock()

	if !ok {
		return fmt.Errorf("topic:%s not create", topicName)
	}

	log.Debug().Str("topic", topicName).Int("subscribers", len(subs)).Msg("publish event")

	var wg sync.WaitGroup
	for _, sub := range subs {
		sub := sub
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub(i)
		}()
	}

	if timeout <= 0 {
		wg.Wait()
		return nil
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		log.Warn().Str("topic", topicName).Dur("timeout", timeout).Msg("publish timed out waiting for subscribers")
	}
	return nil
}
