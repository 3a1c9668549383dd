package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	now      Clock
	logger   *zerolog.Logger
}

var _ domain.BookingService = (*BookingService)(nil)

func NewBookingService(store domain.Store, eventBus domain.EventPublisher, now Clock, logger *zerolog.Logger) *BookingService {
	if now == nil {
		now = systemClock
	}
	return &BookingService{
		store:    store,
		eventBus: eventBus,
		now:      now,
		logger:   nopLogger(logger),
	}
}

func (s *BookingService) AddBooking(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	if !start.Before(end) {
		return nil, domain.Errorf(domain.ErrValidation, "booking start %s must be before end %s",
			start.Format(models.DateTimeLayout), end.Format(models.DateTimeLayout))
	}

	var created *models.Booking
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := requireUser(ctx, tx, bookerID); err != nil {
			return err
		}
		item, err := requireItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item.OwnedBy(bookerID) {
			return domain.Errorf(domain.ErrWrongOwner, "owner %d cannot book own item %d", bookerID, itemID)
		}

		if !item.Available {
			return domain.Errorf(domain.ErrItemNotAvailable, "item %d is not available", itemID)
		}
		busy, err := tx.HasApprovedOverlap(ctx, itemID, start, end)
		if err != nil {
			return err
		}
		if busy {
			// The in-flight item is marked unavailable; the rollback keeps the stored flag intact.
			item.Available = false
			return domain.Errorf(domain.ErrItemNotAvailable, "item %d is already booked for the requested period", itemID)
		}

		booking := models.Booking{
			Start:    start,
			End:      end,
			ItemID:   itemID,
			BookerID: bookerID,
			Status:   models.StatusWaiting,
		}
		if err := tx.CreateBooking(ctx, &booking); err != nil {
			return err
		}
		created, err = tx.GetBooking(ctx, booking.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingCreated, *created, bookerID)
	s.logger.Info().
		Int64("booking_id", created.ID).
		Int64("item_id", itemID).
		Int64("booker_id", bookerID).
		Msg("booking created")

	return created, nil
}

// Approve moves a WAITING booking to APPROVED or REJECTED. A booking is decided once.
func (s *BookingService) Approve(ctx context.Context, bookingID int64, approved bool, userID int64) (*models.Booking, error) {
	target := models.StatusRejected
	if approved {
		target = models.StatusApproved
	}

	var booking *models.Booking
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		var err error
		booking, err = s.loadBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status == target {
			return domain.Errorf(domain.ErrClashState, "booking %d is already %s", bookingID, target)
		}
		if booking.Status != models.StatusWaiting {
			return domain.Errorf(domain.ErrClashState, "booking %d was already %s", bookingID, booking.Status)
		}
		if !booking.Item.OwnedBy(userID) {
			return domain.Errorf(domain.ErrWrongOwner, "user %d is not the owner of item %d", userID, booking.ItemID)
		}
		if err := tx.UpdateBookingStatus(ctx, bookingID, target); err != nil {
			return err
		}
		booking.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.publishEvent(eventType, *booking, userID)

	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	if _, err := requireUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	booking, err := s.loadBooking(ctx, s.store, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookerID != userID && !booking.Item.OwnedBy(userID) {
		return nil, domain.Errorf(domain.ErrBookingNotFound, "booking %d is not visible to user %d", bookingID, userID)
	}
	return booking, nil
}

func (s *BookingService) ListForUser(ctx context.Context, userID int64, state string, page models.Page) ([]models.Booking, error) {
	return s.list(ctx, domain.BookingFilter{BookerID: userID}, userID, state, page)
}

func (s *BookingService) ListForOwner(ctx context.Context, ownerID int64, state string, page models.Page) ([]models.Booking, error) {
	return s.list(ctx, domain.BookingFilter{OwnerID: ownerID}, ownerID, state, page)
}

func (s *BookingService) list(ctx context.Context, filter domain.BookingFilter, userID int64, state string, page models.Page) ([]models.Booking, error) {
	parsed, err := parseState(state)
	if err != nil {
		return nil, err
	}
	if err := validatePage(page); err != nil {
		return nil, err
	}
	if _, err := requireUser(ctx, s.store, userID); err != nil {
		return nil, err
	}

	filter.State = parsed
	filter.Now = s.now()
	filter.Page = page
	return s.store.ListBookings(ctx, filter)
}

func (s *BookingService) loadBooking(ctx context.Context, repo domain.BookingRepository, id int64) (*models.Booking, error) {
	booking, err := repo.GetBooking(ctx, id)
	if errors.Is(err, domain.ErrNoRecord) {
		return nil, domain.Errorf(domain.ErrBookingNotFound, "booking with id %d not found", id)
	}
	return booking, err
}

func (s *BookingService) publishEvent(eventType string, booking models.Booking, actorID int64) {
	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		ItemName:  booking.Item.Name,
		OwnerID:   booking.Item.OwnerID,
		BookerID:  booking.BookerID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
		ActorID:   actorID,
	}

	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func parseState(state string) (models.BookingState, error) {
	parsed, err := models.ParseBookingState(state)
	if err != nil {
		return "", domain.Errorf(domain.ErrIllegalArgument, "%s", err.Error())
	}
	return parsed, nil
}
