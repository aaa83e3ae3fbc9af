package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/Mousewarriors/SEIM-Project/internal/model"
)

// KafkaConfig holds Kafka source configuration.
type KafkaConfig struct {
	Brokers       []string      `json:"brokers"`
	Topic         string        `json:"topic"`
	ConsumerGroup string        `json:"consumer_group"`
	FetchMaxWait  time.Duration `json:"fetch_max_wait"`
}

// KafkaSource consumes events from a Kafka topic. Each record value is one
// JSON event; records that fail to decode are logged and skipped.
type KafkaSource struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewKafkaSource creates a Kafka-backed event source.
func NewKafkaSource(cfg KafkaConfig, logger *slog.Logger) (*KafkaSource, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	if cfg.FetchMaxWait <= 0 {
		cfg.FetchMaxWait = time.Second
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.FetchMaxWait(cfg.FetchMaxWait),
	}
	if cfg.ConsumerGroup != "" {
		opts = append(opts, kgo.ConsumerGroup(cfg.ConsumerGroup))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	return &KafkaSource{
		client: client,
		logger: logger.With("component", "kafka-source"),
	}, nil
}

func (k *KafkaSource) Fetch(ctx context.Context) ([]model.Event, error) {
	fetches := k.client.PollFetches(ctx)
	if fetches.IsClientClosed() {
		return nil, fmt.Errorf("kafka client closed")
	}
	if errs := fetches.Errors(); len(errs) > 0 {
		for _, err := range errs {
			k.logger.Error("fetch error",
				"topic", err.Topic,
				"partition", err.Partition,
				"error", err.Err,
			)
		}
		return nil, fmt.Errorf("poll fetches: %w", errs[0].Err)
	}

	var events []model.Event
	fetches.EachRecord(func(rec *kgo.Record) {
		var evt model.Event
		if err := json.Unmarshal(rec.Value, &evt); err != nil {
			k.logger.Warn("skipping undecodable event record",
				"topic", rec.Topic,
				"offset", rec.Offset,
				"error", err,
			)
			return
		}
		events = append(events, evt)
	})
	return events, nil
}

func (k *KafkaSource) Close() error {
	k.client.Close()
	return nil
}
