package eventbus

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/nats-io/nats.go/jetstream"
)

// ClubStreams are the JetStream streams holding club messages.
var ClubStreams = []jetstream.StreamConfig{
	{Name: "CLUB_EVENTS", Subjects: []string{"event.>"}},
	{Name: "CLUB_USERS", Subjects: []string{"user.>"}},
}

// EnsureStream creates cfg's stream, or adds missing subjects to an existing
// one.
func (eb *eventBus) EnsureStream(ctx context.Context, cfg jetstream.StreamConfig) error {
	eb.streamMutex.Lock()
	defer eb.streamMutex.Unlock()

	if eb.createdStreams[cfg.Name] {
		return nil
	}

	stream, err := eb.js.Stream(ctx, cfg.Name)
	switch {
	case errors.Is(err, jetstream.ErrStreamNotFound):
		if _, err := eb.js.CreateStream(ctx, cfg); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", cfg.Name, err)
		}
		eb.logger.Info("Stream created", "stream_name", cfg.Name, "subjects", cfg.Subjects)
	case err != nil:
		return fmt.Errorf("failed to check stream %s: %w", cfg.Name, err)
	default:
		info, err := stream.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stream info: %w", err)
		}
		missing := false
		for _, subject := range cfg.Subjects {
			if !slices.Contains(info.Config.Subjects, subject) {
				info.Config.Subjects = append(info.Config.Subjects, subject)
				missing = true
			}
		}
		if missing {
			if _, err := eb.js.UpdateStream(ctx, info.Config); err != nil {
				return fmt.Errorf("failed to update stream %s: %w", cfg.Name, err)
			}
			eb.logger.Info("Stream updated with new subjects", "stream_name", cfg.Name)
		}
	}

	eb.createdStreams[cfg.Name] = true
	return nil
}
