// Package dto holds the JSON shapes exchanged with clients and the mapping to and from models.
package dto

import (
	"shareit/internal/models"
)

type UserDto struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserPatchDto is the body of a user update. Absent fields stay unchanged.
type UserPatchDto struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type ItemDto struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   *int64 `json:"requestId"`
}

type ItemPatchDto struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Available   *bool   `json:"available,omitempty"`
}

// BookingShort references a booking from an item view.
type BookingShort struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"bookerId"`
}

type ItemDtoForOut struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Available   bool          `json:"available"`
	RequestID   *int64        `json:"requestId"`
	LastBooking *BookingShort `json:"lastBooking"`
	NextBooking *BookingShort `json:"nextBooking"`
	Comments    []CommentDto  `json:"comments"`
}

type CommentDto struct {
	ID         int64    `json:"id"`
	Text       string   `json:"text"`
	ItemID     int64    `json:"itemId"`
	AuthorName string   `json:"authorName"`
	Created    DateTime `json:"created"`
}

type BookingInput struct {
	ItemID *int64    `json:"itemId"`
	Start  *DateTime `json:"start"`
	End    *DateTime `json:"end"`
}

type BookerRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ItemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type BookingDto struct {
	ID     int64     `json:"id"`
	Start  DateTime  `json:"start"`
	End    DateTime  `json:"end"`
	Status string    `json:"status"`
	Booker BookerRef `json:"booker"`
	Item   ItemRef   `json:"item"`
}

type ItemRequestInput struct {
	Description string    `json:"description"`
	Created     *DateTime `json:"created,omitempty"`
}

type ItemRequestDto struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Created     DateTime  `json:"created"`
	Items       []ItemDto `json:"items"`
}

func ToUserDto(u models.User) UserDto {
	return UserDto{ID: u.ID, Name: u.Name, Email: u.Email}
}

func ToUserDtos(users []models.User) []UserDto {
	out := make([]UserDto, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserDto(u))
	}
	return out
}

func (d UserDto) ToModel() models.User {
	return models.User{ID: d.ID, Name: d.Name, Email: d.Email}
}

func (d UserPatchDto) ToPatch() models.UserPatch {
	return models.UserPatch{Name: d.Name, Email: d.Email}
}

func ToItemDto(it models.Item) ItemDto {
	available := it.Available
	return ItemDto{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Available:   &available,
		RequestID:   it.RequestID,
	}
}

func ToItemDtos(items []models.Item) []ItemDto {
	out := make([]ItemDto, 0, len(items))
	for _, it := range items {
		out = append(out, ToItemDto(it))
	}
	return out
}

// ToModel maps a creation body. A missing availability maps to false.
func (d ItemDto) ToModel() models.Item {
	it := models.Item{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		RequestID:   d.RequestID,
	}
	if d.Available != nil {
		it.Available = *d.Available
	}
	return it
}

func (d ItemPatchDto) ToPatch() models.ItemPatch {
	return models.ItemPatch{Name: d.Name, Description: d.Description, Available: d.Available}
}

func toBookingShort(b *models.Booking) *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{ID: b.ID, BookerID: b.BookerID}
}

func ToItemDtoForOut(d models.ItemDetails) ItemDtoForOut {
	return ItemDtoForOut{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Available:   d.Available,
		RequestID:   d.RequestID,
		LastBooking: toBookingShort(d.LastBooking),
		NextBooking: toBookingShort(d.NextBooking),
		Comments:    ToCommentDtos(d.Comments),
	}
}

func ToItemDtosForOut(list []models.ItemDetails) []ItemDtoForOut {
	out := make([]ItemDtoForOut, 0, len(list))
	for _, d := range list {
		out = append(out, ToItemDtoForOut(d))
	}
	return out
}

func ToCommentDto(c models.Comment) CommentDto {
	return CommentDto{
		ID:         c.ID,
		Text:       c.Text,
		ItemID:     c.ItemID,
		AuthorName: c.AuthorName,
		Created:    NewDateTime(c.Created),
	}
}

func ToCommentDtos(comments []models.Comment) []CommentDto {
	out := make([]CommentDto, 0, len(comments))
	for _, c := range comments {
		out = append(out, ToCommentDto(c))
	}
	return out
}

func ToBookingDto(b models.Booking) BookingDto {
	return BookingDto{
		ID:     b.ID,
		Start:  NewDateTime(b.Start),
		End:    NewDateTime(b.End),
		Status: string(b.Status),
		Booker: BookerRef{ID: b.BookerID, Name: b.Booker.Name},
		Item:   ItemRef{ID: b.ItemID, Name: b.Item.Name},
	}
}

func ToBookingDtos(bookings []models.Booking) []BookingDto {
	out := make([]BookingDto, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, ToBookingDto(b))
	}
	return out
}

func (r ItemRequestInput) ToModel() models.ItemRequest {
	req := models.ItemRequest{Description: r.Description}
	if r.Created != nil {
		req.Created = r.Created.UTC()
	}
	return req
}

func ToItemRequestDto(d models.RequestDetails) ItemRequestDto {
	return ItemRequestDto{
		ID:          d.ID,
		Description: d.Description,
		Created:     NewDateTime(d.Created),
		Items:       ToItemDtos(d.Items),
	}
}

func ToItemRequestDtos(list []models.RequestDetails) []ItemRequestDto {
	out := make([]ItemRequestDto, 0, len(list))
	for _, d := range list {
		out = append(out, ToItemRequestDto(d))
	}
	return out
}
