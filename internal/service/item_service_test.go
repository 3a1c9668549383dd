package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestItemService_AddItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	asker := f.user(t, "asker")

	_, err := f.items.AddItem(ctx, 999, models.Item{Name: "drill", Description: "cordless", Available: true})
	requireKind(t, err, domain.ErrUserNotFound)

	missing := int64(999)
	_, err = f.items.AddItem(ctx, owner.ID, models.Item{Name: "drill", Description: "cordless", RequestID: &missing})
	requireKind(t, err, domain.ErrRequestNotFound)

	_, err = f.items.AddItem(ctx, owner.ID, models.Item{Name: " ", Description: "cordless"})
	requireKind(t, err, domain.ErrValidation)

	req, err := f.requests.AddRequest(ctx, asker.ID, models.ItemRequest{Description: "need a drill"})
	require.NoError(t, err)

	it, err := f.items.AddItem(ctx, owner.ID, models.Item{Name: "drill", Description: "cordless", Available: true, RequestID: &req.ID})
	require.NoError(t, err)
	assert.NotZero(t, it.ID)
	assert.Equal(t, owner.ID, it.OwnerID)
	require.NotNil(t, it.RequestID)
	assert.Equal(t, req.ID, *it.RequestID)
}

func TestItemService_UpdateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	other := f.user(t, "other")
	it := f.item(t, owner.ID, "tent")

	updated, err := f.items.UpdateItem(ctx, owner.ID, it.ID, models.ItemPatch{Name: strPtr("big tent")})
	require.NoError(t, err)
	assert.Equal(t, "big tent", updated.Name)
	assert.Equal(t, it.Description, updated.Description)
	assert.True(t, updated.Available)

	off := false
	updated, err = f.items.UpdateItem(ctx, owner.ID, it.ID, models.ItemPatch{Available: &off})
	require.NoError(t, err)
	assert.Equal(t, "big tent", updated.Name)
	assert.False(t, updated.Available)

	unchanged, err := f.items.UpdateItem(ctx, owner.ID, it.ID, models.ItemPatch{})
	require.NoError(t, err)
	assert.Equal(t, *updated, *unchanged)

	_, err = f.items.UpdateItem(ctx, other.ID, it.ID, models.ItemPatch{Name: strPtr("mine")})
	requireKind(t, err, domain.ErrWrongOwner)

	_, err = f.items.UpdateItem(ctx, owner.ID, 999, models.ItemPatch{Name: strPtr("x")})
	requireKind(t, err, domain.ErrItemNotFound)

	_, err = f.items.UpdateItem(ctx, owner.ID, it.ID, models.ItemPatch{Description: strPtr("")})
	requireKind(t, err, domain.ErrValidation)
}

func TestItemService_GetItemShowsBookingsToOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	booker := f.user(t, "booker")
	it := f.item(t, owner.ID, "bike")

	last := f.booking(t, booker.ID, it.ID, testNow.Add(-48*time.Hour), testNow.Add(-24*time.Hour))
	next := f.booking(t, booker.ID, it.ID, testNow.Add(24*time.Hour), testNow.Add(48*time.Hour))
	rejected := f.booking(t, booker.ID, it.ID, testNow.Add(2*time.Hour), testNow.Add(3*time.Hour))
	_, err := f.bookings.Approve(ctx, rejected.ID, false, owner.ID)
	require.NoError(t, err)

	forOwner, err := f.items.GetItem(ctx, it.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, forOwner.LastBooking)
	require.NotNil(t, forOwner.NextBooking)
	assert.Equal(t, last.ID, forOwner.LastBooking.ID)
	assert.Equal(t, next.ID, forOwner.NextBooking.ID)
	assert.NotNil(t, forOwner.Comments)

	forBooker, err := f.items.GetItem(ctx, it.ID, booker.ID)
	require.NoError(t, err)
	assert.Nil(t, forBooker.LastBooking)
	assert.Nil(t, forBooker.NextBooking)

	_, err = f.items.GetItem(ctx, 999, owner.ID)
	requireKind(t, err, domain.ErrItemNotFound)
}

func TestItemService_GetOwnerItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	booker := f.user(t, "booker")
	first := f.item(t, owner.ID, "hammer")
	second := f.item(t, owner.ID, "wrench")
	f.item(t, booker.ID, "not listed")
	b := f.booking(t, booker.ID, second.ID, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

	list, err := f.items.GetOwnerItems(ctx, owner.ID, models.DefaultPage())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Nil(t, list[0].NextBooking)
	require.NotNil(t, list[1].NextBooking)
	assert.Equal(t, b.ID, list[1].NextBooking.ID)

	paged, err := f.items.GetOwnerItems(ctx, owner.ID, models.Page{From: 1, Size: 5})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, second.ID, paged[0].ID)

	_, err = f.items.GetOwnerItems(ctx, 999, models.DefaultPage())
	requireKind(t, err, domain.ErrUserNotFound)
}

func TestItemService_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	drill := f.item(t, owner.ID, "Cordless Drill")
	hidden := f.item(t, owner.ID, "drill press")
	off := false
	_, err := f.items.UpdateItem(ctx, owner.ID, hidden.ID, models.ItemPatch{Available: &off})
	require.NoError(t, err)
	f.item(t, owner.ID, "hammer")

	found, err := f.items.Search(ctx, "dRiLl", models.DefaultPage())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, drill.ID, found[0].ID)

	byDescription, err := f.items.Search(ctx, "FOR RENT", models.DefaultPage())
	require.NoError(t, err)
	assert.Len(t, byDescription, 2)

	empty, err := f.items.Search(ctx, "  ", models.DefaultPage())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = f.items.Search(ctx, "drill", models.Page{From: 0, Size: -1})
	requireKind(t, err, domain.ErrValidation)
}

func TestItemService_DeleteItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	other := f.user(t, "other")
	it := f.item(t, owner.ID, "grill")

	requireKind(t, f.items.DeleteItem(ctx, other.ID, it.ID), domain.ErrWrongOwner)
	require.NoError(t, f.items.DeleteItem(ctx, owner.ID, it.ID))
	requireKind(t, f.items.DeleteItem(ctx, owner.ID, it.ID), domain.ErrItemNotFound)
}

func TestItemService_AddComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	booker := f.user(t, "booker")
	stranger := f.user(t, "stranger")
	it := f.item(t, owner.ID, "camera")

	f.booking(t, booker.ID, it.ID, testNow.Add(time.Hour), testNow.Add(2*time.Hour))
	_, err := f.items.AddComment(ctx, booker.ID, it.ID, "great")
	requireKind(t, err, domain.ErrIllegalArgument)

	_, err = f.items.AddComment(ctx, stranger.ID, it.ID, "great")
	requireKind(t, err, domain.ErrIllegalArgument)

	f.booking(t, booker.ID, it.ID, testNow.Add(-48*time.Hour), testNow.Add(-24*time.Hour))
	c, err := f.items.AddComment(ctx, booker.ID, it.ID, "great")
	require.NoError(t, err)
	assert.Equal(t, "booker", c.AuthorName)
	assert.Equal(t, testNow, c.Created)
	f.events.AssertCalled(t, "PublishJSON", events.EventCommentAdded, mock.Anything)

	_, err = f.items.AddComment(ctx, booker.ID, it.ID, "")
	requireKind(t, err, domain.ErrValidation)

	_, err = f.items.AddComment(ctx, 999, it.ID, "hi")
	requireKind(t, err, domain.ErrUserNotFound)

	_, err = f.items.AddComment(ctx, booker.ID, 999, "hi")
	requireKind(t, err, domain.ErrItemNotFound)

	details, err := f.items.GetItem(ctx, it.ID, stranger.ID)
	require.NoError(t, err)
	require.Len(t, details.Comments, 1)
	assert.Equal(t, "great", details.Comments[0].Text)
	assert.Equal(t, "booker", details.Comments[0].AuthorName)
}
