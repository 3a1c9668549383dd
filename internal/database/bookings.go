package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

const tableBookings = "bookings"

type bookingRow struct {
	ID       int64     `db:"id"`
	Start    time.Time `db:"start_date"`
	End      time.Time `db:"end_date"`
	ItemID   int64     `db:"item_id"`
	BookerID int64     `db:"booker_id"`
	Status   string    `db:"status"`

	ItemName        string `db:"item_name"`
	ItemDescription string `db:"item_description"`
	ItemAvailable   bool   `db:"item_available"`
	ItemOwnerID     int64  `db:"item_owner_id"`
	ItemRequestID   *int64 `db:"item_request_id"`

	BookerName  string `db:"booker_name"`
	BookerEmail string `db:"booker_email"`
}

func (r bookingRow) toModel() models.Booking {
	return models.Booking{
		ID:       r.ID,
		Start:    r.Start,
		End:      r.End,
		ItemID:   r.ItemID,
		BookerID: r.BookerID,
		Status:   models.BookingStatus(r.Status),
		Item: models.Item{
			ID:          r.ItemID,
			Name:        r.ItemName,
			Description: r.ItemDescription,
			Available:   r.ItemAvailable,
			OwnerID:     r.ItemOwnerID,
			RequestID:   r.ItemRequestID,
		},
		Booker: models.User{
			ID:    r.BookerID,
			Name:  r.BookerName,
			Email: r.BookerEmail,
		},
	}
}

// bookingSelect joins every booking with its item and booker.
func (db *DB) bookingSelect() *goqu.SelectDataset {
	return db.dialect.From(goqu.T(tableBookings).As("b")).
		Join(goqu.T(tableItems).As("i"), goqu.On(goqu.I("i.id").Eq(goqu.I("b.item_id")))).
		Join(goqu.T(tableUsers).As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("b.booker_id")))).
		Select(
			goqu.I("b.id"),
			goqu.I("b.start_date"),
			goqu.I("b.end_date"),
			goqu.I("b.item_id"),
			goqu.I("b.booker_id"),
			goqu.I("b.status"),
			goqu.I("i.name").As("item_name"),
			goqu.I("i.description").As("item_description"),
			goqu.I("i.available").As("item_available"),
			goqu.I("i.owner_id").As("item_owner_id"),
			goqu.I("i.request_id").As("item_request_id"),
			goqu.I("u.name").As("booker_name"),
			goqu.I("u.email").As("booker_email"),
		)
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	id, err := db.insert(ctx, db.dialect.Insert(tableBookings).Rows(goqu.Record{
		"start_date": utc(booking.Start),
		"end_date":   utc(booking.End),
		"item_id":    booking.ItemID,
		"booker_id":  booking.BookerID,
		"status":     string(booking.Status),
	}))
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	booking.ID = id
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var row bookingRow
	if err := db.get(ctx, &row, db.bookingSelect().Where(goqu.I("b.id").Eq(id))); err != nil {
		if errors.Is(err, domain.ErrNoRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	b := row.toModel()
	return &b, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	err := db.exec(ctx, db.dialect.Update(tableBookings).Prepared(true).
		Set(goqu.Record{"status": string(status)}).
		Where(goqu.C("id").Eq(id)))
	if err != nil && !errors.Is(err, domain.ErrNoRecord) {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return err
}

// HasApprovedOverlap reports whether an approved booking of the item intersects [start, end).
func (db *DB) HasApprovedOverlap(ctx context.Context, itemID int64, start, end time.Time) (bool, error) {
	var count int
	ds := db.dialect.From(tableBookings).
		Select(goqu.COUNT("*")).
		Where(
			goqu.C("item_id").Eq(itemID),
			goqu.C("status").Eq(string(models.StatusApproved)),
			goqu.C("start_date").Lt(utc(end)),
			goqu.C("end_date").Gt(utc(start)),
		)
	if err := db.get(ctx, &count, ds); err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}
	return count > 0, nil
}

func stateExpression(state models.BookingState, now time.Time) exp.Expression {
	switch state {
	case models.StateCurrent:
		return goqu.And(goqu.I("b.start_date").Lt(now), goqu.I("b.end_date").Gt(now))
	case models.StatePast:
		return goqu.I("b.end_date").Lt(now)
	case models.StateFuture:
		return goqu.I("b.start_date").Gt(now)
	case models.StateWaiting:
		return goqu.I("b.status").Eq(string(models.StatusWaiting))
	case models.StateRejected:
		return goqu.I("b.status").Eq(string(models.StatusRejected))
	default:
		return nil
	}
}

// ListBookings returns the bookings of a booker or of an owner's items, newest start first.
func (db *DB) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]models.Booking, error) {
	ds := db.bookingSelect()
	if filter.BookerID != 0 {
		ds = ds.Where(goqu.I("b.booker_id").Eq(filter.BookerID))
	}
	if filter.OwnerID != 0 {
		ds = ds.Where(goqu.I("i.owner_id").Eq(filter.OwnerID))
	}
	if cond := stateExpression(filter.State, utc(filter.Now)); cond != nil {
		ds = ds.Where(cond)
	}
	ds = ds.Order(goqu.I("b.start_date").Desc(), goqu.I("b.id").Desc())

	var rows []bookingRow
	if err := db.selectAll(ctx, &rows, paged(ds, filter.Page)); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]models.Booking, 0, len(rows))
	for _, r := range rows {
		bookings = append(bookings, r.toModel())
	}
	return bookings, nil
}

func (db *DB) firstBooking(ctx context.Context, ds *goqu.SelectDataset) (*models.Booking, error) {
	var row bookingRow
	if err := db.get(ctx, &row, ds.Limit(1)); err != nil {
		if errors.Is(err, domain.ErrNoRecord) {
			return nil, nil
		}
		return nil, err
	}
	b := row.toModel()
	return &b, nil
}

// LastBooking is the latest started, non-rejected booking of the item.
func (db *DB) LastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	b, err := db.firstBooking(ctx, db.bookingSelect().
		Where(
			goqu.I("b.item_id").Eq(itemID),
			goqu.I("b.status").Neq(string(models.StatusRejected)),
			goqu.I("b.start_date").Lte(utc(now)),
		).
		Order(goqu.I("b.start_date").Desc(), goqu.I("b.id").Desc()))
	if err != nil {
		return nil, fmt.Errorf("failed to get last booking: %w", err)
	}
	return b, nil
}

// NextBooking is the earliest upcoming, non-rejected booking of the item.
func (db *DB) NextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	b, err := db.firstBooking(ctx, db.bookingSelect().
		Where(
			goqu.I("b.item_id").Eq(itemID),
			goqu.I("b.status").Neq(string(models.StatusRejected)),
			goqu.I("b.start_date").Gt(utc(now)),
		).
		Order(goqu.I("b.start_date").Asc(), goqu.I("b.id").Asc()))
	if err != nil {
		return nil, fmt.Errorf("failed to get next booking: %w", err)
	}
	return b, nil
}

// HasFinishedBooking reports whether the user has a booking of the item that ended before now.
func (db *DB) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	var count int
	ds := db.dialect.From(tableBookings).
		Select(goqu.COUNT("*")).
		Where(
			goqu.C("booker_id").Eq(bookerID),
			goqu.C("item_id").Eq(itemID),
			goqu.C("end_date").Lt(utc(now)),
		)
	if err := db.get(ctx, &count, ds); err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return count > 0, nil
}
