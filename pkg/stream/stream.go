// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package stream publishes committed transactions over gocloud.dev/pubsub.
// Topics are opened either from a pubsub URL (mem:// in tests) or from a
// Kafka broker list.
package stream

import (
	"context"
	"fmt"

	"github.com/Shopify/sarama"
	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/kafkapubsub"
	_ "gocloud.dev/pubsub/mempubsub"
)

func Topic(ctx context.Context, url string) (*pubsub.Topic, error) {
	return pubsub.OpenTopic(ctx, url)
}

func Subscription(ctx context.Context, url string) (*pubsub.Subscription, error) {
	return pubsub.OpenSubscription(ctx, url)
}

// KafkaTopic connects to the given brokers and opens topicName through a
// sarama.SyncProducer. Sends block until every in-sync replica acks.
func KafkaTopic(brokers []string, topicName string) (*pubsub.Topic, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("stream: no kafka brokers")
	}
	config := kafkapubsub.MinimalConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	return kafkapubsub.OpenTopic(brokers, config, topicName, nil)
}
