package deedseed

import (
	"context"
	"encoding/json"

	"github.com/deedlabs/deedseed/schema"
	"github.com/segmentio/kafka-go"
)

const (
	MintedTopic  = "deedseed_minted"
	AttemptTopic = "deedseed_attempt"
)

// KWriter publishes terminal attempt states and minted deeds for
// downstream consumers (indexers, notifications).
type KWriter struct {
	minted  *kafka.Writer
	attempt *kafka.Writer
}

func NewKWriter(uri string) *KWriter {
	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:     kafka.TCP(uri),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		}
	}
	return &KWriter{
		minted:  newWriter(MintedTopic),
		attempt: newWriter(AttemptTopic),
	}
}

func (kw *KWriter) PublishMinted(deed schema.DeedRecord) error {
	body, err := json.Marshal(deed)
	if err != nil {
		return err
	}
	return kw.minted.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(deed.TxHash),
		Value: body,
	})
}

func (kw *KWriter) PublishAttempt(attemptId string, res schema.MintResult) error {
	body, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return kw.attempt.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(attemptId),
		Value: body,
	})
}

func (kw *KWriter) Close() {
	kw.minted.Close()
	kw.attempt.Close()
}
