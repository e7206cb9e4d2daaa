package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

const headerEventType = "event-type"

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...Event) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := ToKafkaMessage(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// ToKafkaMessage keys the message by event type and aggregate so one order stays on one partition.
func ToKafkaMessage(e Event) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(e.Key()),
		Value: value,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(e.Type)},
		},
		Time: e.OccurredAt,
	}, nil
}

// FromKafkaMessage decodes a message written by ToKafkaMessage.
func FromKafkaMessage(msg kafka.Message) (Event, error) {
	var e Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
