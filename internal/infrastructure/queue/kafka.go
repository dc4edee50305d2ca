// Package queue hands terminal payments to a worker that talks to the device.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/config"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaQueue publishes terminal payment tasks to a topic. A TerminalWorker in
// any gateway instance consumes them.
type KafkaQueue struct {
	writer messageWriter
}

func NewKafkaQueue(cfg config.KafkaConfig) *KafkaQueue {
	return &KafkaQueue{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.BrokerList()...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func newKafkaQueueWithWriter(w messageWriter) *KafkaQueue {
	return &KafkaQueue{writer: w}
}

// EnqueueTerminalPayment writes synchronously so a broker failure reaches the caller.
func (q *KafkaQueue) EnqueueTerminalPayment(ctx context.Context, task application.TerminalPaymentTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}

	err = q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.TransactionID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish terminal payment %s: %w", task.TransactionID, err)
	}
	return nil
}

func (q *KafkaQueue) Close() error {
	return q.writer.Close()
}

// DecodeTask parses a message written by EnqueueTerminalPayment.
func DecodeTask(value []byte) (application.TerminalPaymentTask, error) {
	var task application.TerminalPaymentTask
	if err := json.Unmarshal(value, &task); err != nil {
		return task, fmt.Errorf("decode terminal payment task: %w", err)
	}
	if task.TransactionID == "" || task.RemoteTransactionID == 0 || task.RemoteTerminalID == 0 {
		return task, fmt.Errorf("decode terminal payment task: incomplete task %q", value)
	}
	return task, nil
}

// NewKafkaReader joins the consumer group that performs terminal payments.
// Offsets are committed explicitly once a task is done.
func NewKafkaReader(cfg config.KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.BrokerList(),
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		MaxWait:        time.Second,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	})
}
