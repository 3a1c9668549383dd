package service

import (
	"context"
	"errors"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	now      Clock
	logger   *zerolog.Logger
}

var _ domain.ItemService = (*ItemService)(nil)

func NewItemService(store domain.Store, eventBus domain.EventPublisher, now Clock, logger *zerolog.Logger) *ItemService {
	if now == nil {
		now = systemClock
	}
	return &ItemService{
		store:    store,
		eventBus: eventBus,
		now:      now,
		logger:   nopLogger(logger),
	}
}

func (s *ItemService) AddItem(ctx context.Context, ownerID int64, item models.Item) (*models.Item, error) {
	if blank(item.Name) {
		return nil, domain.Errorf(domain.ErrValidation, "item name must not be blank")
	}
	if blank(item.Description) {
		return nil, domain.Errorf(domain.ErrValidation, "item description must not be blank")
	}

	item.ID = 0
	item.OwnerID = ownerID
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := requireUser(ctx, tx, ownerID); err != nil {
			return err
		}
		if item.RequestID != nil {
			if _, err := requireRequest(ctx, tx, *item.RequestID); err != nil {
				return err
			}
		}
		return tx.CreateItem(ctx, &item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return &item, nil
}

func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	if patch.Name != nil && blank(*patch.Name) {
		return nil, domain.Errorf(domain.ErrValidation, "item name must not be blank")
	}
	if patch.Description != nil && blank(*patch.Description) {
		return nil, domain.Errorf(domain.ErrValidation, "item description must not be blank")
	}

	var updated *models.Item
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		item, err := requireItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if !item.OwnedBy(ownerID) {
			return domain.Errorf(domain.ErrWrongOwner, "user %d is not the owner of item %d", ownerID, itemID)
		}
		if patch.Empty() {
			updated = item
			return nil
		}
		patch.Apply(item)
		if err := tx.UpdateItem(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetItem returns the item with its comments. Last and next bookings are filled in for the owner only.
func (s *ItemService) GetItem(ctx context.Context, itemID, userID int64) (*models.ItemDetails, error) {
	item, err := requireItem(ctx, s.store, itemID)
	if err != nil {
		return nil, err
	}

	details := []models.ItemDetails{{Item: *item}}
	if err := s.attachComments(ctx, details); err != nil {
		return nil, err
	}
	if item.OwnedBy(userID) {
		if err := s.attachBookings(ctx, details); err != nil {
			return nil, err
		}
	}
	return &details[0], nil
}

func (s *ItemService) GetOwnerItems(ctx context.Context, ownerID int64, page models.Page) ([]models.ItemDetails, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	if _, err := requireUser(ctx, s.store, ownerID); err != nil {
		return nil, err
	}

	items, err := s.store.ListItemsByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}

	details := make([]models.ItemDetails, 0, len(items))
	for _, it := range items {
		details = append(details, models.ItemDetails{Item: it})
	}
	if err := s.attachComments(ctx, details); err != nil {
		return nil, err
	}
	if err := s.attachBookings(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}

// Search matches available items by name or description, ignoring case. Blank text finds nothing.
func (s *ItemService) Search(ctx context.Context, text string, page models.Page) ([]models.Item, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	if blank(text) {
		return []models.Item{}, nil
	}
	return s.store.SearchItems(ctx, text, page)
}

func (s *ItemService) DeleteItem(ctx context.Context, ownerID, itemID int64) error {
	return s.store.InTx(ctx, func(tx domain.Store) error {
		item, err := requireItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if !item.OwnedBy(ownerID) {
			return domain.Errorf(domain.ErrWrongOwner, "user %d is not the owner of item %d", ownerID, itemID)
		}
		err = tx.DeleteItem(ctx, itemID)
		if errors.Is(err, domain.ErrNoRecord) {
			return domain.Errorf(domain.ErrItemNotFound, "item with id %d not found", itemID)
		}
		return err
	})
}

// AddComment stores a comment by a user who has finished a booking of the item.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	if blank(text) {
		return nil, domain.Errorf(domain.ErrValidation, "comment text must not be blank")
	}

	now := s.now()
	var comment models.Comment
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		author, err := requireUser(ctx, tx, authorID)
		if err != nil {
			return err
		}
		if _, err := requireItem(ctx, tx, itemID); err != nil {
			return err
		}
		finished, err := tx.HasFinishedBooking(ctx, authorID, itemID, now)
		if err != nil {
			return err
		}
		if !finished {
			return domain.Errorf(domain.ErrIllegalArgument, "user %d has no finished booking of item %d", authorID, itemID)
		}

		comment = models.Comment{
			Text:       text,
			ItemID:     itemID,
			AuthorID:   authorID,
			AuthorName: author.Name,
			Created:    now,
		}
		return tx.CreateComment(ctx, &comment)
	})
	if err != nil {
		return nil, err
	}

	payload := events.CommentEventPayload{CommentID: comment.ID, ItemID: itemID, AuthorID: authorID}
	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventCommentAdded, payload); err != nil {
			s.logger.Error().Err(err).Str("event_type", events.EventCommentAdded).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}
	return &comment, nil
}

func (s *ItemService) attachComments(ctx context.Context, details []models.ItemDetails) error {
	if len(details) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(details))
	index := make(map[int64]int, len(details))
	for i, d := range details {
		ids = append(ids, d.ID)
		index[d.ID] = i
		details[i].Comments = []models.Comment{}
	}

	comments, err := s.store.ListComments(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if i, ok := index[c.ItemID]; ok {
			details[i].Comments = append(details[i].Comments, c)
		}
	}
	return nil
}

func (s *ItemService) attachBookings(ctx context.Context, details []models.ItemDetails) error {
	now := s.now()
	for i := range details {
		last, err := s.store.LastBooking(ctx, details[i].ID, now)
		if err != nil {
			return err
		}
		next, err := s.store.NextBooking(ctx, details[i].ID, now)
		if err != nil {
			return err
		}
		details[i].LastBooking = last
		details[i].NextBooking = next
	}
	return nil
}
