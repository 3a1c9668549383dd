package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
	"shareit/internal/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2022, 10, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	args := m.Called(eventType, payload)
	return args.Error(0)
}

type fixture struct {
	store    *repository.MemoryStore
	events   *mockPublisher
	users    *UserService
	items    *ItemService
	bookings *BookingService
	requests *RequestService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	pub := &mockPublisher{}
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Maybe()
	return &fixture{
		store:    store,
		events:   pub,
		users:    NewUserService(store, nil),
		items:    NewItemService(store, pub, fixedClock, nil),
		bookings: NewBookingService(store, pub, fixedClock, nil),
		requests: NewRequestService(store, fixedClock, nil),
	}
}

func (f *fixture) user(t *testing.T, name string) models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), models.User{Name: name, Email: name + "@example.com"})
	require.NoError(t, err)
	return *u
}

func (f *fixture) item(t *testing.T, ownerID int64, name string) models.Item {
	t.Helper()
	it, err := f.items.AddItem(context.Background(), ownerID, models.Item{Name: name, Description: name + " for rent", Available: true})
	require.NoError(t, err)
	return *it
}

func (f *fixture) booking(t *testing.T, bookerID, itemID int64, start, end time.Time) models.Booking {
	t.Helper()
	b, err := f.bookings.AddBooking(context.Background(), bookerID, itemID, start, end)
	require.NoError(t, err)
	return *b
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	require.NotEmpty(t, de.Description)
}
