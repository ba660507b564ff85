package memory

import (
	"context"
	"sync"

	"taskboard/internal/store"
)

var _ store.Feed = (*Feed)(nil)

const subscriberBuffer = 16

// Feed is an in-process change feed. A slow subscriber drops changes rather than
// blocking publishers; subscribers reload full snapshots, so a dropped change is only
// lost when no other change for the topic is still buffered.
type Feed struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	ch   chan store.Change
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[string]map[*subscriber]struct{})}
}

func (f *Feed) Publish(ctx context.Context, change store.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return store.ErrFeedClosed
	}
	for sub := range f.subs[change.Topic] {
		select {
		case sub.ch <- change:
		default:
		}
	}
	return nil
}

func (f *Feed) Subscribe(ctx context.Context, topics ...string) (<-chan store.Change, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, store.ErrFeedClosed
	}

	sub := &subscriber{ch: make(chan store.Change, subscriberBuffer)}
	for _, topic := range topics {
		if f.subs[topic] == nil {
			f.subs[topic] = make(map[*subscriber]struct{})
		}
		f.subs[topic][sub] = struct{}{}
	}

	go func() {
		<-ctx.Done()
		f.remove(sub, topics)
	}()
	return sub.ch, nil
}

func (f *Feed) remove(sub *subscriber, topics []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, topic := range topics {
		delete(f.subs[topic], sub)
		if len(f.subs[topic]) == 0 {
			delete(f.subs, topic)
		}
	}
	sub.close()
}

// Close shuts the feed down. Every open subscription channel is closed, which
// subscribers observe as a feed failure.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	for topic, subs := range f.subs {
		for sub := range subs {
			sub.close()
		}
		delete(f.subs, topic)
	}
	return nil
}

// Subscribers returns the number of live subscriptions on topic.
func (f *Feed) Subscribers(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[topic])
}
