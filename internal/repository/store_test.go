package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Users(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ann := &models.User{Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, s.CreateUser(ctx, ann))
	assert.NotZero(t, ann.ID)

	err := s.CreateUser(ctx, &models.User{Name: "Other", Email: "ann@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailExists)

	// emails compare exactly, like the unique index of the relational store
	upper := &models.User{Name: "Upper", Email: "ANN@example.com"}
	require.NoError(t, s.CreateUser(ctx, upper))
	got, err := s.GetUserByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, upper.ID, got.ID)

	got, err = s.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, got.ID)

	_, err = s.GetUser(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNoRecord)
	assert.ErrorIs(t, s.DeleteUser(ctx, 999), domain.ErrNoRecord)
}

func TestMemoryStore_InTxRollback(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx domain.Store) error {
		require.NoError(t, tx.CreateUser(ctx, &models.User{Name: "Ann", Email: "ann@example.com"}))
		return tx.InTx(ctx, func(domain.Store) error { return boom })
	})
	assert.ErrorIs(t, err, boom)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, s.InTx(ctx, func(tx domain.Store) error {
		return tx.CreateUser(ctx, &models.User{Name: "Bob", Email: "bob@example.com"})
	}))
	users, _ = s.ListUsers(ctx)
	assert.Len(t, users, 1)
}

func TestMemoryStore_BookingsAndCascade(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	owner := &models.User{Name: "Owner", Email: "owner@example.com"}
	booker := &models.User{Name: "Booker", Email: "booker@example.com"}
	require.NoError(t, s.CreateUser(ctx, owner))
	require.NoError(t, s.CreateUser(ctx, booker))

	item := &models.Item{Name: "Drill", Description: "Cordless", Available: true, OwnerID: owner.ID}
	require.NoError(t, s.CreateItem(ctx, item))

	past := &models.Booking{ItemID: item.ID, BookerID: booker.ID, Start: now.Add(-2 * time.Hour), End: now.Add(-time.Hour), Status: models.StatusApproved}
	future := &models.Booking{ItemID: item.ID, BookerID: booker.ID, Start: now.Add(time.Hour), End: now.Add(2 * time.Hour), Status: models.StatusWaiting}
	require.NoError(t, s.CreateBooking(ctx, past))
	require.NoError(t, s.CreateBooking(ctx, future))

	got, err := s.GetBooking(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drill", got.Item.Name)
	assert.Equal(t, "Booker", got.Booker.Name)

	list, err := s.ListBookings(ctx, domain.BookingFilter{OwnerID: owner.ID, State: models.StateAll, Now: now})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, future.ID, list[0].ID)

	overlap, err := s.HasApprovedOverlap(ctx, item.ID, now.Add(-90*time.Minute), now)
	require.NoError(t, err)
	assert.True(t, overlap)

	finished, err := s.HasFinishedBooking(ctx, booker.ID, item.ID, now)
	require.NoError(t, err)
	assert.True(t, finished)

	last, _ := s.LastBooking(ctx, item.ID, now)
	next, _ := s.NextBooking(ctx, item.ID, now)
	require.NotNil(t, last)
	require.NotNil(t, next)
	assert.Equal(t, past.ID, last.ID)
	assert.Equal(t, future.ID, next.ID)

	require.NoError(t, s.DeleteUser(ctx, owner.ID))
	_, err = s.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNoRecord)
	_, err = s.GetBooking(ctx, past.ID)
	assert.ErrorIs(t, err, domain.ErrNoRecord)
}

func TestMemoryStore_Search(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, it := range []models.Item{
		{Name: "Drill", Description: "Cordless drill", Available: true, OwnerID: 1},
		{Name: "Old drill", Description: "Broken", Available: false, OwnerID: 1},
		{Name: "Saw", Description: "Sharp DRILL-free saw", Available: true, OwnerID: 1},
	} {
		it := it
		require.NoError(t, s.CreateItem(ctx, &it))
	}

	items, err := s.SearchItems(ctx, "drill", models.DefaultPage())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Drill", items[0].Name)
	assert.Equal(t, "Saw", items[1].Name)

	items, err = s.SearchItems(ctx, "drill", models.Page{From: 1, Size: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Saw", items[0].Name)
}
