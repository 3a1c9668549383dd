package dto

import (
	"net/mail"
	"strconv"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func invalid(format string, args ...interface{}) error {
	return domain.Errorf(domain.ErrValidation, format, args...)
}

// ValidEmail reports whether s is a bare address such as user@example.com.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, "@")
}

func (d UserDto) ValidateCreate() error {
	if blank(d.Name) {
		return invalid("name must not be blank")
	}
	if blank(d.Email) {
		return invalid("email must not be blank")
	}
	if !ValidEmail(d.Email) {
		return invalid("email %q is not valid", d.Email)
	}
	return nil
}

func (d UserPatchDto) Validate() error {
	if d.Email != nil && !ValidEmail(*d.Email) {
		return invalid("email %q is not valid", *d.Email)
	}
	return nil
}

func (d ItemDto) ValidateCreate() error {
	if blank(d.Name) {
		return invalid("name must not be blank")
	}
	if blank(d.Description) {
		return invalid("description must not be blank")
	}
	if d.Available == nil {
		return invalid("available must be set")
	}
	return nil
}

// Validate checks a booking request against now. Start may equal now; end must lie in the future.
// Times are compared at whole seconds, the precision they are written with.
func (b BookingInput) Validate(now time.Time) error {
	if b.ItemID == nil {
		return invalid("itemId must be set")
	}
	if b.Start == nil || b.Start.IsZero() {
		return invalid("start must be set")
	}
	if b.End == nil || b.End.IsZero() {
		return invalid("end must be set")
	}
	now = now.Truncate(time.Second)
	start, end := b.Start.Truncate(time.Second), b.End.Truncate(time.Second)
	if start.Before(now) {
		return invalid("start %s is in the past", start.Format(models.DateTimeLayout))
	}
	if !end.After(now) {
		return invalid("end %s is not in the future", end.Format(models.DateTimeLayout))
	}
	if !start.Before(end) {
		return invalid("start %s must be before end %s",
			start.Format(models.DateTimeLayout), end.Format(models.DateTimeLayout))
	}
	return nil
}

func (r ItemRequestInput) Validate() error {
	if blank(r.Description) {
		return invalid("description must not be blank")
	}
	return nil
}

func (c CommentDto) Validate() error {
	if blank(c.Text) {
		return invalid("text must not be blank")
	}
	return nil
}

// ParsePage reads the from and size query values. Empty values take the defaults.
func ParsePage(from, size string) (models.Page, error) {
	page := models.DefaultPage()
	if from != "" {
		v, err := strconv.Atoi(from)
		if err != nil {
			return page, invalid("from must be an integer, got %q", from)
		}
		page.From = v
	}
	if size != "" {
		v, err := strconv.Atoi(size)
		if err != nil {
			return page, invalid("size must be an integer, got %q", size)
		}
		page.Size = v
	}
	if page.From < 0 {
		return page, invalid("from must not be negative, got %d", page.From)
	}
	if page.Size <= 0 {
		return page, invalid("size must be positive, got %d", page.Size)
	}
	return page, nil
}

// ParseState validates a booking state query value. An unknown value is an illegal argument.
func ParseState(value string) (models.BookingState, error) {
	state, err := models.ParseBookingState(value)
	if err != nil {
		return "", domain.Errorf(domain.ErrIllegalArgument, "%s", err.Error())
	}
	return state, nil
}

// ParseID reads a positive identifier from a path segment or header.
func ParseID(name, value string) (int64, error) {
	if blank(value) {
		return 0, invalid("%s is required", name)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("%s must be a positive integer, got %q", name, value)
	}
	return id, nil
}
