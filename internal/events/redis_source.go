package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/call-console/internal/api/dto"
	"github.com/spec-kit/call-console/internal/domain"
	"github.com/spec-kit/call-console/internal/observability"
)

var errMissingDeleteID = errors.New("delete event without call id")

// RedisSource delivers events published on two Redis pub/sub channels: one
// for call changes, one for transcript segments. Messages that fail strict
// row mapping are dropped at this boundary, logged at warn, and counted; they
// are never surfaced to subscribers.
type RedisSource struct {
	client          *redis.Client
	callsChannel    string
	segmentsChannel string
	logger          *zap.Logger
	metrics         *observability.Metrics
}

// NewRedisSource builds a source over an existing client.
func NewRedisSource(client *redis.Client, callsChannel, segmentsChannel string, logger *zap.Logger, metrics *observability.Metrics) *RedisSource {
	return &RedisSource{
		client:          client,
		callsChannel:    callsChannel,
		segmentsChannel: segmentsChannel,
		logger:          logger,
		metrics:         metrics,
	}
}

// Subscribe opens the pub/sub channels and pumps decoded events into the
// callbacks until the stop function is invoked or ctx is cancelled.
func (s *RedisSource) Subscribe(ctx context.Context, cb Callbacks) (func(), error) {
	sub := s.client.Subscribe(ctx, s.callsChannel, s.segmentsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	if cb.OnConnectionChange != nil {
		cb.OnConnectionChange(true)
	}

	done := make(chan struct{})
	go s.pump(ctx, sub, cb, done)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			_ = sub.Close()
			<-done
			if cb.OnConnectionChange != nil {
				cb.OnConnectionChange(false)
			}
		})
	}
	return stop, nil
}

func (s *RedisSource) pump(ctx context.Context, sub *redis.PubSub, cb Callbacks, done chan<- struct{}) {
	defer close(done)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			switch msg.Channel {
			case s.callsChannel:
				s.handleCallChange(msg.Payload, cb)
			case s.segmentsChannel:
				s.handleSegment(msg.Payload, cb)
			}
		}
	}
}

func (s *RedisSource) handleCallChange(payload string, cb Callbacks) {
	var envelope dto.CallChangeEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		s.drop("call_change", err)
		return
	}
	kind, err := ParseChangeKind(envelope.Kind)
	if err != nil {
		s.drop("call_change", err)
		return
	}

	var call domain.Call
	if kind == ChangeDelete {
		// Delete envelopes carry only the id.
		if envelope.Call.ID == "" {
			s.drop("call_change", errMissingDeleteID)
			return
		}
		call = domain.Call{ID: envelope.Call.ID}
	} else {
		call, err = envelope.Call.ToDomain()
		if err != nil {
			s.drop("call_change", err)
			return
		}
	}

	if cb.OnCallChange != nil {
		cb.OnCallChange(kind, call)
	}
}

func (s *RedisSource) handleSegment(payload string, cb Callbacks) {
	var row dto.SegmentRow
	if err := json.Unmarshal([]byte(payload), &row); err != nil {
		s.drop("segment", err)
		return
	}
	segment, err := row.ToDomain()
	if err != nil {
		s.drop("segment", err)
		return
	}

	if cb.OnSegment != nil {
		cb.OnSegment(segment)
	}
}

func (s *RedisSource) drop(kind string, err error) {
	s.metrics.RecordEventDropped(kind)
	s.logger.Warn("dropping malformed event", zap.String("kind", kind), zap.Error(err))
}
