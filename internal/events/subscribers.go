package events

import (
	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

// RegisterDefaultSubscribers attaches the metrics counters and the audit log to the bus.
func RegisterDefaultSubscribers(bus *EventBus, logger *zerolog.Logger) {
	audit := logger.With().Str("component", "audit").Logger()

	bookingHandler := func(event *Event) error {
		var p BookingEventPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		metrics.IncBookingTransition(p.Status)
		audit.Info().
			Str("event", event.Type).
			Int64("booking_id", p.BookingID).
			Int64("item_id", p.ItemID).
			Int64("booker_id", p.BookerID).
			Int64("actor_id", p.ActorID).
			Str("status", p.Status).
			Msg("booking event")
		return nil
	}

	bus.Subscribe(EventBookingCreated, bookingHandler)
	bus.Subscribe(EventBookingApproved, bookingHandler)
	bus.Subscribe(EventBookingRejected, bookingHandler)

	bus.Subscribe(EventCommentAdded, func(event *Event) error {
		var p CommentEventPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		metrics.IncComment()
		audit.Info().
			Int64("comment_id", p.CommentID).
			Int64("item_id", p.ItemID).
			Int64("author_id", p.AuthorID).
			Msg("comment added")
		return nil
	})
}
