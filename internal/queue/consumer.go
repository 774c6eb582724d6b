package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/eventface/internal/models"
)

// MessageHandler processes one message. A returned error naks it for redelivery.
type MessageHandler func(ctx context.Context, msg jetstream.Msg) error

// ErrPermanent marks a failure that redelivery cannot fix; the message is terminated.
var ErrPermanent = errors.New("permanent failure")

type Consumer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewConsumer(natsURL string) (*Consumer, error) {
	nc, js, err := connect(natsURL)
	if err != nil {
		return nil, err
	}
	return &Consumer{nc: nc, js: js}, nil
}

// ConsumeIndexTasks hands index tasks to workerCount goroutines.
// Undecodable tasks are terminated instead of redelivered.
func (c *Consumer) ConsumeIndexTasks(ctx context.Context, consumerName string, workerCount int, handle func(context.Context, models.IndexTask) error) error {
	cons, err := c.durable(ctx, IndexStreamName, jetstream.ConsumerConfig{
		Name:          consumerName,
		Durable:       consumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       2 * time.Minute,
		MaxDeliver:    5,
		BackOff:       []time.Duration{5 * time.Second, 30 * time.Second, time.Minute, 5 * time.Minute},
		FilterSubject: IndexSubjectBase + ".>",
	})
	if err != nil {
		return err
	}

	c.run(ctx, cons, workerCount, func(ctx context.Context, msg jetstream.Msg) error {
		task, err := DecodeIndexTask(msg.Data())
		if err != nil {
			slog.Error("drop index task", "subject", msg.Subject(), "error", err)
			return ErrPermanent
		}
		return handle(ctx, task)
	})

	slog.Info("index task consumer started", "consumer", consumerName, "workers", workerCount)
	return nil
}

// ConsumeIndexResults delivers indexed notifications published from now on.
func (c *Consumer) ConsumeIndexResults(ctx context.Context, consumerName string, handle func(context.Context, models.IndexResult) error) error {
	cons, err := c.durable(ctx, IndexedStreamName, jetstream.ConsumerConfig{
		Name:          consumerName,
		Durable:       consumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       10 * time.Second,
		MaxDeliver:    3,
		FilterSubject: IndexedSubjectBase + ".>",
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return err
	}

	c.run(ctx, cons, 1, func(ctx context.Context, msg jetstream.Msg) error {
		var result models.IndexResult
		if err := json.Unmarshal(msg.Data(), &result); err != nil {
			slog.Error("drop index result", "subject", msg.Subject(), "error", err)
			return ErrPermanent
		}
		return handle(ctx, result)
	})

	slog.Info("index result consumer started", "consumer", consumerName)
	return nil
}

func (c *Consumer) durable(ctx context.Context, streamName string, cfg jetstream.ConsumerConfig) (jetstream.Consumer, error) {
	stream, err := c.js.Stream(ctx, streamName)
	if err != nil {
		return nil, fmt.Errorf("get stream %s: %w", streamName, err)
	}
	cons, err := stream.CreateOrUpdateConsumer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create consumer %s: %w", cfg.Name, err)
	}
	return cons, nil
}

// run fetches batches and fans messages out to workerCount goroutines until ctx ends.
func (c *Consumer) run(ctx context.Context, cons jetstream.Consumer, workerCount int, handler MessageHandler) {
	if workerCount < 1 {
		workerCount = 1
	}
	msgCh := make(chan jetstream.Msg, workerCount*2)

	go func() {
		defer close(msgCh)
		for {
			if ctx.Err() != nil {
				return
			}

			batch, err := cons.Fetch(workerCount, jetstream.FetchMaxWait(5*time.Second))
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("fetch messages error", "error", err)
				time.Sleep(time.Second)
				continue
			}

			for msg := range batch.Messages() {
				select {
				case msgCh <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	for i := 0; i < workerCount; i++ {
		go func(workerID int) {
			for msg := range msgCh {
				err := handler(ctx, msg)
				switch {
				case errors.Is(err, ErrPermanent):
					_ = msg.Term()
				case err != nil:
					slog.Error("process message error", "worker", workerID, "error", err, "subject", msg.Subject())
					_ = msg.Nak()
				default:
					_ = msg.Ack()
				}
			}
		}(i)
	}
}

// DecodeIndexTask parses and checks an index task payload.
func DecodeIndexTask(data []byte) (models.IndexTask, error) {
	var task models.IndexTask
	if err := json.Unmarshal(data, &task); err != nil {
		return task, fmt.Errorf("unmarshal index task: %w", err)
	}
	if task.IndexID == "" || task.ImageID == "" || task.SourceKey == "" {
		return task, fmt.Errorf("index task missing index_id, image_id or src_key")
	}
	return task, nil
}

func (c *Consumer) Close() {
	c.nc.Close()
}
