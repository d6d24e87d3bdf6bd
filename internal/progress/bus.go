// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package progress

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/metrics"
)

// Topic is the single bus topic carrying all batch progress events.
// Consumers filter on Event.JobID.
const Topic = "analysis.progress"

// subscriberBuffer is the per-subscriber output channel size. A consumer
// this far behind loses events instead of backpressuring the bus.
const subscriberBuffer = 64

// MetadataJobID is the message metadata key mirroring Event.JobID, letting
// consumers route without unmarshaling the payload.
const MetadataJobID = "job_id"

// Bus is the in-process pub/sub channel between batch runners and progress
// consumers. It wraps a Watermill GoChannel so consumers use the standard
// message.Subscriber contract and the publish side would survive a move to
// an external broker unchanged.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates an in-process progress bus.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: subscriberBuffer},
			watermill.NewSlogLogger(logging.NewSlogLogger()),
		),
	}
}

// Publish marshals ev onto the bus. Without subscribers the event is
// discarded, which is the correct behavior for a progress stream.
func (b *Bus) Publish(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal progress event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataJobID, ev.JobID)

	if err := b.pubsub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("publish progress event: %w", err)
	}
	metrics.ProgressEventsPublished.Inc()
	return nil
}

// Subscribe returns the stream of progress messages. The channel closes
// when ctx is cancelled or the bus shuts down. Consumers must Ack every
// message to keep their stream flowing.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, Topic)
}

// Close shuts the bus down and closes every subscriber channel.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Decode unmarshals a bus message back into an Event.
func Decode(msg *message.Message) (Event, error) {
	var ev Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return Event{}, fmt.Errorf("decode progress event: %w", err)
	}
	return ev, nil
}
