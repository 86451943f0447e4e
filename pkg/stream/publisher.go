// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package stream

import (
	"context"
	"encoding/json"

	"github.com/moov-io/banksim/pkg/model"

	"gocloud.dev/pubsub"
)

// Publisher sends committed transactions to a pubsub topic as an audit
// feed. A nil Publisher drops everything, so callers never branch.
type Publisher struct {
	topic *pubsub.Topic
}

// NewPublisher opens the topic at url (mem://, kafka://, ...). An empty
// url returns a nil Publisher, which is safe to use.
func NewPublisher(ctx context.Context, url string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	topic, err := Topic(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Publisher{topic: topic}, nil
}

// NewKafkaPublisher opens the audit topic on a Kafka cluster instead of a
// pubsub URL.
func NewKafkaPublisher(brokers []string, topicName string) (*Publisher, error) {
	topic, err := KafkaTopic(brokers, topicName)
	if err != nil {
		return nil, err
	}
	return &Publisher{topic: topic}, nil
}

// Publish sends one transaction keyed by the account it landed on.
func (p *Publisher) Publish(ctx context.Context, iban string, tx *model.Transaction) error {
	if p == nil || p.topic == nil {
		return nil
	}
	body, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	return p.topic.Send(ctx, &pubsub.Message{
		Body: body,
		Metadata: map[string]string{
			"iban": iban,
		},
	})
}

func (p *Publisher) Shutdown(ctx context.Context) error {
	if p == nil || p.topic == nil {
		return nil
	}
	return p.topic.Shutdown(ctx)
}
