// Package attr provides slog attribute helpers shared by every module.
package attr

import (
	"context"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

func Float64(key string, value float64) slog.Attr { return slog.Float64(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

func Time(key string, value time.Time) slog.Attr { return slog.Time(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

func Error(err error) slog.Attr { return slog.Any("error", err) }

func PlayerID(key string, id sharedtypes.PlayerID) slog.Attr {
	return slog.String(key, string(id))
}

func LeaderboardID(key string, id sharedtypes.LeaderboardID) slog.Attr {
	return slog.String(key, string(id))
}

func ReviewID(key string, id sharedtypes.ReviewID) slog.Attr {
	return slog.String(key, id.String())
}

type correlationIDKey struct{}

// WithCorrelationID stores a correlation ID on the context so service-layer
// logs can carry it without threading the raw message around.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

// ExtractCorrelationID returns the correlation ID attribute for the current
// context, or an empty attribute when none was set.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	if v, ok := ctx.Value(correlationIDKey{}).(string); ok && v != "" {
		return slog.String("correlation_id", v)
	}
	return slog.String("correlation_id", "")
}

// CorrelationIDFromMessage reads the watermill middleware metadata key.
func CorrelationIDFromMessage(msg *message.Message) string {
	return msg.Metadata.Get(middleware.CorrelationIDMetadataKey)
}
