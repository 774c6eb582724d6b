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

const (
	IndexStreamName    = "INDEX"
	IndexSubjectBase   = "index.images"
	IndexedStreamName  = "INDEXED"
	IndexedSubjectBase = "indexed"
)

// ErrDuplicateTask is returned when JetStream drops a task whose message id was
// already published within the stream's duplicate window.
var ErrDuplicateTask = errors.New("index task already queued")

type Producer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewProducer(natsURL string) (*Producer, error) {
	nc, js, err := connect(natsURL)
	if err != nil {
		return nil, err
	}
	return &Producer{nc: nc, js: js}, nil
}

func connect(natsURL string) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create jetstream context: %w", err)
	}
	return nc, js, nil
}

func streamConfigs() []jetstream.StreamConfig {
	return []jetstream.StreamConfig{
		{
			Name:        IndexStreamName,
			Subjects:    []string{IndexSubjectBase + ".>"},
			Retention:   jetstream.WorkQueuePolicy,
			MaxAge:      72 * time.Hour,
			Storage:     jetstream.FileStorage,
			Duplicates:  10 * time.Minute,
			Description: "Event images waiting to be face-indexed",
		},
		{
			Name:        IndexedStreamName,
			Subjects:    []string{IndexedSubjectBase + ".>"},
			Retention:   jetstream.InterestPolicy,
			MaxAge:      24 * time.Hour,
			MaxMsgs:     1000000,
			Storage:     jetstream.FileStorage,
			Description: "Notifications for images added to the face index",
		},
	}
}

// EnsureStreams creates JetStream streams if they don't exist.
// Retries up to 30 times (1s apart) to handle NATS startup delay.
func (p *Producer) EnsureStreams(ctx context.Context) error {
	const maxAttempts = 30
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		allOK := true
		for _, cfg := range streamConfigs() {
			opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			_, err := p.js.CreateOrUpdateStream(opCtx, cfg)
			cancel()
			if err != nil {
				allOK = false
				if attempt == maxAttempts {
					return fmt.Errorf("create stream %s: %w (after %d attempts)", cfg.Name, err, maxAttempts)
				}
				slog.Warn("ensure NATS stream (retrying...)", "name", cfg.Name, "attempt", attempt, "error", err)
				break
			}
			slog.Info("ensured NATS stream", "name", cfg.Name)
		}
		if allOK {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}
	return nil
}

// PublishIndexTask queues one image for indexing. Tasks sharing a message id
// within the duplicate window are dropped by the server and reported as
// ErrDuplicateTask.
func (p *Producer) PublishIndexTask(ctx context.Context, task models.IndexTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal index task: %w", err)
	}

	msg := nats.NewMsg(IndexSubject(task.EventID.String()))
	msg.Data = payload
	msg.Header.Set(nats.MsgIdHdr, TaskMsgID(task))

	ack, err := p.js.PublishMsg(ctx, msg)
	if err != nil {
		return fmt.Errorf("publish index task %s: %w", task.ImageID, err)
	}
	if ack.Duplicate {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, task.ImageID)
	}
	return nil
}

// TaskMsgID is the JetStream deduplication id of a task. A run id scopes it to
// one reindex pass so later passes are not swallowed.
func TaskMsgID(task models.IndexTask) string {
	id := task.IndexID + "/" + task.ImageID
	if task.RunID != "" {
		id += "/" + task.RunID
	}
	return id
}

// PublishIndexResult announces an image that has been indexed.
func (p *Producer) PublishIndexResult(ctx context.Context, result models.IndexResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal index result: %w", err)
	}

	if _, err := p.js.Publish(ctx, IndexedSubject(result.EventID.String()), payload); err != nil {
		return fmt.Errorf("publish index result %s: %w", result.ImageID, err)
	}
	return nil
}

// QueueDepth returns the number of pending messages in the INDEX stream.
func (p *Producer) QueueDepth(ctx context.Context) (uint64, error) {
	stream, err := p.js.Stream(ctx, IndexStreamName)
	if err != nil {
		return 0, err
	}
	info, err := stream.Info(ctx)
	if err != nil {
		return 0, err
	}
	return info.State.Msgs, nil
}

func (p *Producer) Ping() error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

func (p *Producer) Close() {
	p.nc.Close()
}

func IndexSubject(eventID string) string {
	return IndexSubjectBase + "." + eventID
}

func IndexedSubject(eventID string) string {
	return IndexedSubjectBase + "." + eventID
}
