package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// State is the lifecycle state of the Redis subscription.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateBackoff
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateBackoff:
		return "backoff"
	default:
		return "closed"
	}
}

// SubscriberConfig bounds the reconnect behaviour. After MaxRetries
// consecutive failures the subscriber gives up and stays closed; clients
// then rely on polling until the process restarts.
type SubscriberConfig struct {
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func (c SubscriberConfig) withDefaults() SubscriberConfig {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 10
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30 * time.Second
	}
	return c
}

// Subscriber maintains one Redis Pub/Sub subscription with supervised
// reconnects. The retry counter resets once a subscription is confirmed.
type Subscriber struct {
	redis   *redis.Client
	channel string
	cfg     SubscriberConfig
	handle  func(payload string)

	mu    sync.RWMutex
	state State
}

// NewSubscriber creates a supervised subscriber for one channel.
func NewSubscriber(redisClient *redis.Client, channel string, cfg SubscriberConfig, handle func(payload string)) *Subscriber {
	return &Subscriber{
		redis:   redisClient,
		channel: channel,
		cfg:     cfg.withDefaults(),
		handle:  handle,
		state:   StateConnecting,
	}
}

// State returns the current lifecycle state.
func (s *Subscriber) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Subscriber) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run drives the subscription until the context is cancelled or the retry
// budget runs out (call in goroutine).
func (s *Subscriber) Run(ctx context.Context) {
	retries := 0

	for {
		s.setState(StateConnecting)

		pubsub := s.redis.Subscribe(ctx, s.channel)
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			if ctx.Err() != nil {
				s.setState(StateClosed)
				return
			}
			log.Warn().Err(err).Str("channel", s.channel).Msg("Redis subscribe failed")
			if !s.backoff(ctx, &retries) {
				return
			}
			continue
		}

		s.setState(StateOpen)
		retries = 0
		log.Info().Str("channel", s.channel).Msg("Redis subscription open")

		s.consume(ctx, pubsub)
		pubsub.Close()

		if ctx.Err() != nil {
			s.setState(StateClosed)
			return
		}
		log.Warn().Str("channel", s.channel).Msg("Redis subscription lost")
		if !s.backoff(ctx, &retries) {
			return
		}
	}
}

func (s *Subscriber) consume(ctx context.Context, pubsub *redis.PubSub) {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.handle(msg.Payload)
		}
	}
}

// backoff waits before the next attempt. Returns false when the retry
// budget is exhausted or the context is cancelled.
func (s *Subscriber) backoff(ctx context.Context, retries *int) bool {
	*retries++
	if *retries > s.cfg.MaxRetries {
		s.setState(StateClosed)
		log.Error().
			Int("retries", s.cfg.MaxRetries).
			Str("channel", s.channel).
			Msg("Redis subscription retry budget exhausted")
		return false
	}

	delay := s.cfg.BaseBackoff << (*retries - 1)
	if delay > s.cfg.MaxBackoff || delay <= 0 {
		delay = s.cfg.MaxBackoff
	}

	s.setState(StateBackoff)
	log.Info().
		Int("attempt", *retries).
		Dur("delay", delay).
		Str("channel", s.channel).
		Msg("Redis subscription backoff")

	select {
	case <-ctx.Done():
		s.setState(StateClosed)
		return false
	case <-time.After(delay):
		return true
	}
}
