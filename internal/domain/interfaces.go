package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	ListItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]models.Item, error)
	SearchItems(ctx context.Context, text string, page models.Page) ([]models.Item, error)
	ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]models.Item, error)
}

// BookingFilter narrows a booking listing. Exactly one of BookerID and OwnerID is set.
// A zero Page.Size returns every match.
type BookingFilter struct {
	BookerID int64
	OwnerID  int64
	State    models.BookingState
	Now      time.Time
	Page     models.Page
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	HasApprovedOverlap(ctx context.Context, itemID int64, start, end time.Time) (bool, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	// LastBooking and NextBooking return nil when the item has no such booking.
	LastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	NextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, itemIDs []int64) ([]models.Comment, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	ListRequestsByRequestor(ctx context.Context, requestorID int64) ([]models.ItemRequest, error)
	ListRequestsExcept(ctx context.Context, requestorID int64, page models.Page) ([]models.ItemRequest, error)
}

// Store is the persistence boundary of the server. Lookups of a missing row return ErrNoRecord.
type Store interface {
	UserRepository
	ItemRepository
	BookingRepository
	CommentRepository
	RequestRepository

	// InTx runs fn against a store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

type RateLimitRepository interface {
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type UserService interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, user models.User) (*models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type ItemService interface {
	AddItem(ctx context.Context, ownerID int64, item models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	GetItem(ctx context.Context, itemID, userID int64) (*models.ItemDetails, error)
	GetOwnerItems(ctx context.Context, ownerID int64, page models.Page) ([]models.ItemDetails, error)
	Search(ctx context.Context, text string, page models.Page) ([]models.Item, error)
	DeleteItem(ctx context.Context, ownerID, itemID int64) error
	AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error)
}

type BookingService interface {
	AddBooking(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error)
	Approve(ctx context.Context, bookingID int64, approved bool, userID int64) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error)
	ListForUser(ctx context.Context, userID int64, state string, page models.Page) ([]models.Booking, error)
	ListForOwner(ctx context.Context, ownerID int64, state string, page models.Page) ([]models.Booking, error)
	// ExportForOwner renders every booking of the owner's items in state as an XLSX workbook.
	ExportForOwner(ctx context.Context, ownerID int64, state string) ([]byte, error)
}

type RequestService interface {
	AddRequest(ctx context.Context, userID int64, request models.ItemRequest) (*models.RequestDetails, error)
	GetAllOwn(ctx context.Context, userID int64) ([]models.RequestDetails, error)
	GetAllPaging(ctx context.Context, userID int64, page models.Page) ([]models.RequestDetails, error)
	GetByID(ctx context.Context, userID, requestID int64) (*models.RequestDetails, error)
}
