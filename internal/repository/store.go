package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// MemoryStore is a map-backed domain.Store for tests and local runs.
// Transactions are serialized and roll back by restoring a snapshot.
type MemoryStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data memoryData
}

type memoryData struct {
	users    map[int64]models.User
	items    map[int64]models.Item
	bookings map[int64]models.Booking
	comments map[int64]models.Comment
	requests map[int64]models.ItemRequest
	lastID   int64
}

var _ domain.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: memoryData{
		users:    make(map[int64]models.User),
		items:    make(map[int64]models.Item),
		bookings: make(map[int64]models.Booking),
		comments: make(map[int64]models.Comment),
		requests: make(map[int64]models.ItemRequest),
	}}
}

func (d memoryData) clone() memoryData {
	c := memoryData{
		users:    make(map[int64]models.User, len(d.users)),
		items:    make(map[int64]models.Item, len(d.items)),
		bookings: make(map[int64]models.Booking, len(d.bookings)),
		comments: make(map[int64]models.Comment, len(d.comments)),
		requests: make(map[int64]models.ItemRequest, len(d.requests)),
		lastID:   d.lastID,
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.items {
		c.items[k] = v
	}
	for k, v := range d.bookings {
		c.bookings[k] = v
	}
	for k, v := range d.comments {
		c.comments[k] = v
	}
	for k, v := range d.requests {
		c.requests[k] = v
	}
	return c
}

// memoryTx is the store handed to InTx callbacks; nested InTx calls join the running transaction.
type memoryTx struct {
	*MemoryStore
}

func (t memoryTx) InTx(_ context.Context, fn func(tx domain.Store) error) error {
	return fn(t)
}

func (s *MemoryStore) InTx(_ context.Context, fn func(tx domain.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(memoryTx{s}); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) nextID() int64 {
	s.data.lastID++
	return s.data.lastID
}

func pageOf[T any](list []T, page models.Page) []T {
	if page.Size <= 0 {
		return list
	}
	lo, hi := page.Window(len(list))
	return list[lo:hi]
}

// Users

func (s *MemoryStore) emailTaken(email string, exceptID int64) bool {
	for _, u := range s.data.users {
		if u.ID != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(user.Email, 0) {
		return domain.Errorf(domain.ErrEmailExists, "email %s is already registered", user.Email)
	}
	user.ID = s.nextID()
	s.data.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.data.users[id]
	if !ok {
		return nil, domain.ErrNoRecord
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNoRecord
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.data.users))
	for _, u := range s.data.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.users[user.ID]; !ok {
		return domain.ErrNoRecord
	}
	if s.emailTaken(user.Email, user.ID) {
		return domain.Errorf(domain.ErrEmailExists, "email %s is already registered", user.Email)
	}
	s.data.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.users[id]; !ok {
		return domain.ErrNoRecord
	}
	delete(s.data.users, id)

	for itemID, it := range s.data.items {
		if it.OwnerID == id {
			s.deleteItemLocked(itemID)
		}
	}
	for bid, b := range s.data.bookings {
		if b.BookerID == id {
			delete(s.data.bookings, bid)
		}
	}
	for cid, c := range s.data.comments {
		if c.AuthorID == id {
			delete(s.data.comments, cid)
		}
	}
	for rid, r := range s.data.requests {
		if r.RequestorID == id {
			s.deleteRequestLocked(rid)
		}
	}
	return nil
}

func (s *MemoryStore) deleteRequestLocked(id int64) {
	delete(s.data.requests, id)
	for itemID, it := range s.data.items {
		if it.RequestID != nil && *it.RequestID == id {
			it.RequestID = nil
			s.data.items[itemID] = it
		}
	}
}

// Items

func (s *MemoryStore) CreateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.nextID()
	s.data.items[item.ID] = *item
	return nil
}

func (s *MemoryStore) GetItem(_ context.Context, id int64) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.data.items[id]
	if !ok {
		return nil, domain.ErrNoRecord
	}
	return &it, nil
}

func (s *MemoryStore) UpdateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.data.items[item.ID]
	if !ok {
		return domain.ErrNoRecord
	}
	stored.Name = item.Name
	stored.Description = item.Description
	stored.Available = item.Available
	s.data.items[item.ID] = stored
	return nil
}

func (s *MemoryStore) DeleteItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.items[id]; !ok {
		return domain.ErrNoRecord
	}
	s.deleteItemLocked(id)
	return nil
}

func (s *MemoryStore) deleteItemLocked(id int64) {
	delete(s.data.items, id)
	for bid, b := range s.data.bookings {
		if b.ItemID == id {
			delete(s.data.bookings, bid)
		}
	}
	for cid, c := range s.data.comments {
		if c.ItemID == id {
			delete(s.data.comments, cid)
		}
	}
}

func (s *MemoryStore) sortedItems(keep func(models.Item) bool) []models.Item {
	items := []models.Item{}
	for _, it := range s.data.items {
		if keep(it) {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (s *MemoryStore) ListItemsByOwner(_ context.Context, ownerID int64, page models.Page) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.sortedItems(func(it models.Item) bool { return it.OwnerID == ownerID })
	return pageOf(items, page), nil
}

func (s *MemoryStore) SearchItems(_ context.Context, text string, page models.Page) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(text)
	items := s.sortedItems(func(it models.Item) bool {
		return it.Available &&
			(strings.Contains(strings.ToLower(it.Name), needle) ||
				strings.Contains(strings.ToLower(it.Description), needle))
	})
	return pageOf(items, page), nil
}

func (s *MemoryStore) ListItemsByRequests(_ context.Context, requestIDs []int64) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[int64]struct{}, len(requestIDs))
	for _, id := range requestIDs {
		wanted[id] = struct{}{}
	}
	return s.sortedItems(func(it models.Item) bool {
		if it.RequestID == nil {
			return false
		}
		_, ok := wanted[*it.RequestID]
		return ok
	}), nil
}

// Bookings

func (s *MemoryStore) hydrate(b models.Booking) models.Booking {
	b.Item = s.data.items[b.ItemID]
	b.Booker = s.data.users[b.BookerID]
	return b
}

func (s *MemoryStore) CreateBooking(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking.ID = s.nextID()
	stored := *booking
	stored.Item, stored.Booker = models.Item{}, models.User{}
	s.data.bookings[booking.ID] = stored
	return nil
}

func (s *MemoryStore) GetBooking(_ context.Context, id int64) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data.bookings[id]
	if !ok {
		return nil, domain.ErrNoRecord
	}
	b = s.hydrate(b)
	return &b, nil
}

func (s *MemoryStore) UpdateBookingStatus(_ context.Context, id int64, status models.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data.bookings[id]
	if !ok {
		return domain.ErrNoRecord
	}
	b.Status = status
	s.data.bookings[id] = b
	return nil
}

func (s *MemoryStore) HasApprovedOverlap(_ context.Context, itemID int64, start, end time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.data.bookings {
		if b.ItemID == itemID && b.Status == models.StatusApproved && b.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) bookingsWhere(keep func(models.Booking) bool) []models.Booking {
	list := []models.Booking{}
	for _, b := range s.data.bookings {
		if keep(b) {
			list = append(list, s.hydrate(b))
		}
	}
	return list
}

func (s *MemoryStore) ListBookings(_ context.Context, filter domain.BookingFilter) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.bookingsWhere(func(b models.Booking) bool {
		if filter.BookerID != 0 && b.BookerID != filter.BookerID {
			return false
		}
		if filter.OwnerID != 0 && s.data.items[b.ItemID].OwnerID != filter.OwnerID {
			return false
		}
		return b.Matches(filter.State, filter.Now)
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].Start.Equal(list[j].Start) {
			return list[i].ID > list[j].ID
		}
		return list[i].Start.After(list[j].Start)
	})
	return pageOf(list, filter.Page), nil
}

func (s *MemoryStore) LastBooking(_ context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var last *models.Booking
	for _, b := range s.bookingsWhere(func(b models.Booking) bool {
		return b.ItemID == itemID && b.Status != models.StatusRejected && !b.Start.After(now)
	}) {
		if last == nil || b.Start.After(last.Start) || (b.Start.Equal(last.Start) && b.ID > last.ID) {
			b := b
			last = &b
		}
	}
	return last, nil
}

func (s *MemoryStore) NextBooking(_ context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var next *models.Booking
	for _, b := range s.bookingsWhere(func(b models.Booking) bool {
		return b.ItemID == itemID && b.Status != models.StatusRejected && b.Start.After(now)
	}) {
		if next == nil || b.Start.Before(next.Start) || (b.Start.Equal(next.Start) && b.ID < next.ID) {
			b := b
			next = &b
		}
	}
	return next, nil
}

func (s *MemoryStore) HasFinishedBooking(_ context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.data.bookings {
		if b.BookerID == bookerID && b.ItemID == itemID && b.End.Before(now) {
			return true, nil
		}
	}
	return false, nil
}

// Comments

func (s *MemoryStore) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment.ID = s.nextID()
	s.data.comments[comment.ID] = *comment
	return nil
}

func (s *MemoryStore) ListComments(_ context.Context, itemIDs []int64) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}
	comments := []models.Comment{}
	for _, c := range s.data.comments {
		if _, ok := wanted[c.ItemID]; ok {
			c.AuthorName = s.data.users[c.AuthorID].Name
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].Created.Equal(comments[j].Created) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].Created.Before(comments[j].Created)
	})
	return comments, nil
}

// Requests

func (s *MemoryStore) CreateRequest(_ context.Context, request *models.ItemRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	request.ID = s.nextID()
	s.data.requests[request.ID] = *request
	return nil
}

func (s *MemoryStore) GetRequest(_ context.Context, id int64) (*models.ItemRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.data.requests[id]
	if !ok {
		return nil, domain.ErrNoRecord
	}
	return &r, nil
}

func (s *MemoryStore) requestsWhere(keep func(models.ItemRequest) bool) []models.ItemRequest {
	list := []models.ItemRequest{}
	for _, r := range s.data.requests {
		if keep(r) {
			list = append(list, r)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Created.Equal(list[j].Created) {
			return list[i].ID > list[j].ID
		}
		return list[i].Created.After(list[j].Created)
	})
	return list
}

func (s *MemoryStore) ListRequestsByRequestor(_ context.Context, requestorID int64) ([]models.ItemRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requestsWhere(func(r models.ItemRequest) bool { return r.RequestorID == requestorID }), nil
}

func (s *MemoryStore) ListRequestsExcept(_ context.Context, requestorID int64, page models.Page) ([]models.ItemRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.requestsWhere(func(r models.ItemRequest) bool { return r.RequestorID != requestorID })
	return pageOf(list, page), nil
}
