package eventbus

import "context"

// Stream names and the subject spaces they own.
const (
	RankingStream       = "ranking"
	QualificationStream = "qualification"
	PlaylistStream      = "playlist"
)

// SetupStreams creates the JetStream streams every module publishes into.
// Called once at startup before any router begins consuming.
func SetupStreams(ctx context.Context, bus EventBus) error {
	if err := bus.CreateStream(ctx, RankingStream, "ranking.>"); err != nil {
		return err
	}
	if err := bus.CreateStream(ctx, QualificationStream, "qualification.>"); err != nil {
		return err
	}
	return bus.CreateStream(ctx, PlaylistStream, "playlist.>")
}
