package models

// ItemDetails is an item as shown to a reader. Bookings are set only for the owner.
type ItemDetails struct {
	Item
	LastBooking *Booking
	NextBooking *Booking
	Comments    []Comment
}

// RequestDetails is a request with the items offered in response to it.
type RequestDetails struct {
	ItemRequest
	Items []Item
}
