// Package eventutil carries helpers for watermill message handling.
package eventutil

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// UnmarshalPayload decodes a message payload into T and returns the
// correlation ID alongside it.
func UnmarshalPayload[T any](msg *message.Message, logger *slog.Logger) (string, T, error) {
	var payload T
	correlationID := msg.Metadata.Get(middleware.CorrelationIDMetadataKey)

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		if logger != nil {
			logger.Error("Failed to unmarshal event payload",
				slog.String("correlation_id", correlationID),
				slog.String("message_id", msg.UUID),
				slog.Any("error", err),
			)
		}
		return correlationID, payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return correlationID, payload, nil
}

// NewMessage marshals a payload into a fresh watermill message, propagating
// the correlation ID from the originating message when one is given.
func NewMessage(uuid string, payload any, origin *message.Message) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	msg := message.NewMessage(uuid, data)
	if origin != nil {
		middleware.SetCorrelationID(origin.Metadata.Get(middleware.CorrelationIDMetadataKey), msg)
	}
	return msg, nil
}
