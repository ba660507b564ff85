package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskboard/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NotifyChannel is the LISTEN/NOTIFY channel every change is sent on.
const NotifyChannel = "taskboard_changes"

// PoolConfig holds connection pool settings for the notification pool.
type PoolConfig struct {
	// ConnString is a postgres:// URL.
	ConnString string

	// MaxConns bounds the pool used for publishing. The listen connection is taken
	// from the pool once and then held outside it. Default: 20
	MaxConns int32

	// ConnectTimeout in seconds. Default: 10
	ConnectTimeout int32
}

func (c *PoolConfig) applyDefaults() {
	if c.MaxConns == 0 {
		c.MaxConns = 20
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 10
	}
}

// NewPool creates a pgx pool and pings it.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	if cfg.ConnString == "" {
		return nil, fmt.Errorf("connection string is required")
	}
	cfg.applyDefaults()

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.ConnConfig.ConnectTimeout = time.Duration(cfg.ConnectTimeout) * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

var _ store.Feed = (*PostgresFeed)(nil)

// PostgresFeed sends every change on a single NOTIFY channel. One LISTEN connection is
// shared by all subscribers and changes are fanned out by topic in-process. The
// connection is opened by the first subscriber and released when the last one leaves.
type PostgresFeed struct {
	pool *pgxpool.Pool
	log  zerolog.Logger

	mu       sync.Mutex
	listener *listener
	closed   bool
}

// listener is one LISTEN connection and the subscribers it serves.
type listener struct {
	cancel context.CancelFunc
	done   chan struct{}
	subs   map[string]map[*subscriber]struct{}
	all    map[*subscriber]struct{}
}

type subscriber struct {
	ch   chan store.Change
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

func NewPostgresFeed(pool *pgxpool.Pool, log zerolog.Logger) *PostgresFeed {
	return &PostgresFeed{pool: pool, log: log.With().Str("component", "postgres_feed").Logger()}
}

func (f *PostgresFeed) Publish(ctx context.Context, change store.Change) error {
	data, err := encode(change)
	if err != nil {
		return err
	}
	if _, err := f.pool.Exec(ctx, "SELECT pg_notify($1, $2)", NotifyChannel, string(data)); err != nil {
		return fmt.Errorf("notify %s: %w", change.Topic, err)
	}
	return nil
}

// Subscribe registers for topics on the shared listen connection, opening it when no
// one is listening yet. The returned channel closes when ctx ends, when the feed is
// closed, or when the listen connection fails.
func (f *PostgresFeed) Subscribe(ctx context.Context, topics ...string) (<-chan store.Change, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, store.ErrFeedClosed
	}
	if f.listener == nil {
		l, err := f.listen(ctx)
		if err != nil {
			return nil, err
		}
		f.listener = l
	}

	l := f.listener
	sub := &subscriber{ch: make(chan store.Change, subscriberBuffer)}
	for _, topic := range topics {
		if l.subs[topic] == nil {
			l.subs[topic] = make(map[*subscriber]struct{})
		}
		l.subs[topic][sub] = struct{}{}
	}
	l.all[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-l.done:
		}
		f.remove(l, sub, topics)
	}()
	return sub.ch, nil
}

// Close stops the listen connection and closes every subscriber channel.
func (f *PostgresFeed) Close() error {
	f.mu.Lock()
	f.closed = true
	l := f.listener
	f.listener = nil
	f.mu.Unlock()

	if l != nil {
		l.cancel()
		<-l.done
	}
	return nil
}

// listen takes a connection out of the pool and starts LISTEN on it. Called with f.mu held.
func (f *PostgresFeed) listen(ctx context.Context) (*listener, error) {
	pc, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}
	// The connection keeps LISTEN state, so it never goes back to the pool.
	conn := pc.Hijack()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{NotifyChannel}.Sanitize()); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	l := &listener{
		cancel: cancel,
		done:   make(chan struct{}),
		subs:   make(map[string]map[*subscriber]struct{}),
		all:    make(map[*subscriber]struct{}),
	}
	go f.run(loopCtx, l, conn)
	f.log.Debug().Msg("Listen connection opened")
	return l, nil
}

func (f *PostgresFeed) run(ctx context.Context, l *listener, conn *pgx.Conn) {
	defer close(l.done)
	defer conn.Close(context.Background())
	defer f.shutdown(l)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				f.log.Error().Err(err).Msg("Listen connection failed")
			}
			return
		}
		change, err := decode(n.Payload)
		if err != nil {
			f.log.Error().Err(err).Msg("Dropping malformed change")
			continue
		}
		f.dispatch(l, change)
	}
}

func (f *PostgresFeed) dispatch(l *listener, change store.Change) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range l.subs[change.Topic] {
		offer(sub.ch, change)
	}
}

// shutdown detaches l from the feed and closes its subscribers.
func (f *PostgresFeed) shutdown(l *listener) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listener == l {
		f.listener = nil
	}
	for sub := range l.all {
		sub.close()
	}
	clear(l.subs)
	clear(l.all)
}

func (f *PostgresFeed) remove(l *listener, sub *subscriber, topics []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub.close()
	if _, ok := l.all[sub]; !ok {
		return
	}
	delete(l.all, sub)
	for _, topic := range topics {
		delete(l.subs[topic], sub)
		if len(l.subs[topic]) == 0 {
			delete(l.subs, topic)
		}
	}

	if len(l.all) == 0 && f.listener == l {
		f.listener = nil
		l.cancel()
		f.log.Debug().Msg("Last subscriber left, closing listen connection")
	}
}
