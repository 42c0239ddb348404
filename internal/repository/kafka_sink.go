package repository

import (
	"context"
	"time"

	"TrendBoard/internal/domain/models"
	domrepo "TrendBoard/internal/domain/repository"
	pkgkafka "TrendBoard/pkg/kafka"
)

// Publisher is the subset of the Kafka producer used by KafkaSink.
type Publisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// SnapshotEvent is the message value published per instrument.
type SnapshotEvent struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Interval    string    `json:"interval"`
	models.SymbolSnapshot
}

// KafkaSink publishes one message per snapshot, keyed by instrument so
// every instrument stays on one partition.
type KafkaSink struct {
	pub   Publisher
	topic string
}

func NewKafkaSink(pub Publisher, topic string) *KafkaSink {
	return &KafkaSink{pub: pub, topic: topic}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Save(ctx context.Context, res *models.AggregateResult) error {
	if len(res.Snapshots) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(res.Snapshots))
	for _, snap := range res.Snapshots {
		msgs = append(msgs, pkgkafka.Message{
			Key: []byte(snap.Instrument),
			Value: SnapshotEvent{
				RunID:          res.RunID,
				GeneratedAt:    res.GeneratedAt,
				Interval:       res.Interval,
				SymbolSnapshot: snap,
			},
			Headers: map[string]string{"run_id": res.RunID},
		})
	}
	if err := s.pub.PublishBatch(ctx, s.topic, msgs); err != nil {
		return &models.PersistenceError{Sink: s.Name(), Err: err}
	}
	return nil
}

func (s *KafkaSink) Close() error { return s.pub.Close() }

var _ domrepo.Sink = (*KafkaSink)(nil)
