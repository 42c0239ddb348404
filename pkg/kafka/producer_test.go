package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishBatch(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "gzip", "snapshots")

	err := p.PublishBatch(context.Background(), "", []Message{
		{Key: []byte("AAA"), Value: map[string]int{"n": 1}, Headers: map[string]string{"run_id": "r1"}},
		{Key: []byte("BBB"), Value: "raw"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(w.msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(w.msgs))
	}
	if w.msgs[0].Topic != "snapshots" || string(w.msgs[0].Value) != `{"n":1}` {
		t.Fatalf("unexpected first message %+v", w.msgs[0])
	}
	if len(w.msgs[0].Headers) != 1 || w.msgs[0].Headers[0].Key != "run_id" || string(w.msgs[0].Headers[0].Value) != "r1" {
		t.Fatalf("unexpected headers %+v", w.msgs[0].Headers)
	}
	if string(w.msgs[1].Value) != "raw" {
		t.Fatalf("unexpected raw value %q", w.msgs[1].Value)
	}
}

func TestPublishEmptyBatchIsNoop(t *testing.T) {
	w := &recordingWriter{err: errors.New("should not be called")}
	p := newProducer(w, "gzip", "t")
	if err := p.PublishBatch(context.Background(), "t", nil); err != nil {
		t.Fatal(err)
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newProducer(&recordingWriter{err: boom}, "gzip", "t")
	if err := p.Publish(context.Background(), "t", []byte("k"), "v"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestClose(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "gzip", "t")
	_ = p.Close()
	if !w.closed {
		t.Fatalf("expected writer closed")
	}
}
