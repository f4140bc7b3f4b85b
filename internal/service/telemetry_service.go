package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-synthesis-be/internal/pkg/logger"
	"ai-synthesis-be/pkg/ai/synthesis"
	"ai-synthesis-be/pkg/events"
)

const telemetryModule = "TELEMETRY"

const telemetryPublishTimeout = 2 * time.Second

// TelemetryObserver forwards engine completion events into the in-process queue
type TelemetryObserver struct {
	publisher IPublisherService
	logger    logger.ILogger
}

var _ synthesis.Observer = &TelemetryObserver{}

func NewTelemetryObserver(publisher IPublisherService, log logger.ILogger) *TelemetryObserver {
	return &TelemetryObserver{
		publisher: publisher,
		logger:    log,
	}
}

func (t *TelemetryObserver) OnSynthesisCompleted(evt synthesis.Event) {
	payload, err := json.Marshal(events.FromSynthesisEvent(evt))
	if err != nil {
		t.logger.Error(telemetryModule, "Failed to encode synthesis event", map[string]interface{}{
			"synthesis_id": evt.SynthesisID,
			"error":        err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), telemetryPublishTimeout)
	defer cancel()

	if err := t.publisher.Publish(ctx, payload); err != nil {
		t.logger.Warn(telemetryModule, "Failed to queue synthesis event", map[string]interface{}{
			"synthesis_id": evt.SynthesisID,
			"error":        err.Error(),
		})
	}
}
