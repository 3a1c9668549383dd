package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

func nopLogger(logger *zerolog.Logger) *zerolog.Logger {
	if logger != nil {
		return logger
	}
	l := zerolog.Nop()
	return &l
}

func requireUser(ctx context.Context, repo domain.UserRepository, id int64) (*models.User, error) {
	user, err := repo.GetUser(ctx, id)
	if errors.Is(err, domain.ErrNoRecord) {
		return nil, domain.Errorf(domain.ErrUserNotFound, "user with id %d not found", id)
	}
	return user, err
}

func requireItem(ctx context.Context, repo domain.ItemRepository, id int64) (*models.Item, error) {
	item, err := repo.GetItem(ctx, id)
	if errors.Is(err, domain.ErrNoRecord) {
		return nil, domain.Errorf(domain.ErrItemNotFound, "item with id %d not found", id)
	}
	return item, err
}

func requireRequest(ctx context.Context, repo domain.RequestRepository, id int64) (*models.ItemRequest, error) {
	request, err := repo.GetRequest(ctx, id)
	if errors.Is(err, domain.ErrNoRecord) {
		return nil, domain.Errorf(domain.ErrRequestNotFound, "request with id %d not found", id)
	}
	return request, err
}

func validatePage(page models.Page) error {
	if page.From < 0 {
		return domain.Errorf(domain.ErrValidation, "from must not be negative, got %d", page.From)
	}
	if page.Size <= 0 {
		return domain.Errorf(domain.ErrValidation, "size must be positive, got %d", page.Size)
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
