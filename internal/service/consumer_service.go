package service

import (
	"context"
	"encoding/json"

	"ai-synthesis-be/internal/mapper"
	"ai-synthesis-be/internal/pkg/logger"
	"ai-synthesis-be/internal/repository/contract"
	"ai-synthesis-be/internal/websocket"
	"ai-synthesis-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventBroadcaster pushes serialized events to live clients
type EventBroadcaster interface {
	Broadcast(ctx context.Context, frame websocket.Frame)
}

// EventPublisher forwards events to the external bus
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// ConsumerSinks are the optional destinations of a completed synthesis.
// A nil sink is skipped.
type ConsumerSinks struct {
	Stats       contract.StatsRepository
	Broadcaster EventBroadcaster
	Publisher   EventPublisher
	EventLogger logger.ILogger
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	sinks      ConsumerSinks
	logger     logger.ILogger
	mapper     *mapper.SynthesisMapper
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	sinks ConsumerSinks,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		sinks:      sinks,
		logger:     log,
		mapper:     mapper.NewSynthesisMapper(),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: telemetry is best effort and a retry would double count stats
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var data events.SynthesisCompleted
	if err := json.Unmarshal(msg.Payload, &data); err != nil {
		cs.logger.Error(telemetryModule, "Failed to unmarshal synthesis event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	details := map[string]interface{}{
		"synthesis_id":          data.SynthesisID,
		"category":              data.Category,
		"is_fallback":           data.IsFallback,
		"contributing_channels": data.ContributingChannels,
		"failed_channels":       data.FailedChannels,
		"synthesis_quality":     data.SynthesisQuality,
		"coherence":             data.Coherence,
		"harmony":               data.Harmony,
		"elapsed_ms":            data.ElapsedMs,
	}

	if cs.sinks.EventLogger != nil {
		cs.sinks.EventLogger.Info(telemetryModule, events.TypeSynthesisCompleted, details)
	}

	if cs.sinks.Stats != nil {
		if err := cs.sinks.Stats.Record(ctx, cs.mapper.ToRecord(data)); err != nil {
			cs.logger.Warn(telemetryModule, "Failed to record synthesis stats", map[string]interface{}{
				"synthesis_id": data.SynthesisID,
				"error":        err.Error(),
			})
		}
	}

	if cs.sinks.Broadcaster != nil {
		frame, err := json.Marshal(cs.mapper.ToEventMessage(data))
		if err != nil {
			cs.logger.Error(telemetryModule, "Failed to encode websocket frame", map[string]interface{}{
				"synthesis_id": data.SynthesisID,
				"error":        err.Error(),
			})
		} else {
			cs.sinks.Broadcaster.Broadcast(ctx, websocket.Frame{
				Category:   data.Category,
				IsFallback: data.IsFallback,
				Data:       frame,
			})
		}
	}

	if cs.sinks.Publisher != nil {
		if err := cs.sinks.Publisher.Publish(ctx, events.NewSynthesisCompleted(data)); err != nil {
			cs.logger.Warn(telemetryModule, "Failed to publish synthesis event", map[string]interface{}{
				"synthesis_id": data.SynthesisID,
				"error":        err.Error(),
			})
		}
	}

	cs.logger.Debug(telemetryModule, "Synthesis event processed", details)
}
