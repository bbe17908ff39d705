package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tutorhive/tutorhive/internal/services"
)

// RedisFanoutQueue is the producer side: CreateOpen drops the session id on a
// Redis stream and returns, keeping broadcast cost out of the request path.
type RedisFanoutQueue struct {
	Redis  *redis.Client
	Stream string
}

func NewRedisFanoutQueue(rdb *redis.Client, stream string) *RedisFanoutQueue {
	if stream == "" {
		stream = "fanout:stream"
	}
	return &RedisFanoutQueue{Redis: rdb, Stream: stream}
}

func (q *RedisFanoutQueue) Enqueue(ctx context.Context, sessionID string) error {
	return q.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: q.Stream,
		Values: map[string]any{"session_id": sessionID},
	}).Err()
}

// FanoutWorkerPool consumes the stream through a consumer group and expands
// each published session into per-student notifications. Delivery is
// at-least-once; the fan-out service dedups per (session, recipient), so a
// replayed message cannot re-notify anyone.
type FanoutWorkerPool struct {
	Redis      *redis.Client
	Fanout     services.FanoutService
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *FanoutWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Fanout == nil {
		return errors.New("FanoutWorkerPool missing dependency: Redis/Fanout must be set")
	}
	if p.Stream == "" {
		p.Stream = "fanout:stream"
	}
	if p.Group == "" {
		p.Group = "fanout-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 3
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *FanoutWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *FanoutWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	sessionID := ""
	if v, ok := msg.Values["session_id"]; ok && v != nil {
		sessionID, _ = v.(string)
	}
	if sessionID == "" {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":   msg.ID,
		"session_id": sessionID,
	})

	result, err := p.Fanout.Broadcast(ctx, sessionID)
	if err != nil {
		log.WithError(err).Error("fan-out failed")
		return
	}

	log.WithFields(logrus.Fields{
		"sent":    result.Sent,
		"skipped": result.Skipped,
	}).Info("fan-out delivered")
}
