package service

import (
	"context"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	store  domain.Store
	now    Clock
	logger *zerolog.Logger
}

var _ domain.RequestService = (*RequestService)(nil)

func NewRequestService(store domain.Store, now Clock, logger *zerolog.Logger) *RequestService {
	if now == nil {
		now = systemClock
	}
	return &RequestService{store: store, now: now, logger: nopLogger(logger)}
}

func (s *RequestService) AddRequest(ctx context.Context, userID int64, request models.ItemRequest) (*models.RequestDetails, error) {
	if blank(request.Description) {
		return nil, domain.Errorf(domain.ErrValidation, "request description must not be blank")
	}

	request.ID = 0
	request.RequestorID = userID
	if request.Created.IsZero() {
		request.Created = s.now()
	}

	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := requireUser(ctx, tx, userID); err != nil {
			return err
		}
		return tx.CreateRequest(ctx, &request)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("user_id", userID).Msg("item request created")
	return &models.RequestDetails{ItemRequest: request, Items: []models.Item{}}, nil
}

func (s *RequestService) GetAllOwn(ctx context.Context, userID int64) ([]models.RequestDetails, error) {
	if _, err := requireUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	requests, err := s.store.ListRequestsByRequestor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

// GetAllPaging lists requests made by everyone except userID, newest first.
func (s *RequestService) GetAllPaging(ctx context.Context, userID int64, page models.Page) ([]models.RequestDetails, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	if _, err := requireUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	requests, err := s.store.ListRequestsExcept(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

func (s *RequestService) GetByID(ctx context.Context, userID, requestID int64) (*models.RequestDetails, error) {
	if _, err := requireUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	request, err := requireRequest(ctx, s.store, requestID)
	if err != nil {
		return nil, err
	}
	details, err := s.withItems(ctx, []models.ItemRequest{*request})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *RequestService) withItems(ctx context.Context, requests []models.ItemRequest) ([]models.RequestDetails, error) {
	details := make([]models.RequestDetails, 0, len(requests))
	if len(requests) == 0 {
		return details, nil
	}

	ids := make([]int64, 0, len(requests))
	index := make(map[int64]int, len(requests))
	for i, r := range requests {
		ids = append(ids, r.ID)
		index[r.ID] = i
		details = append(details, models.RequestDetails{ItemRequest: r, Items: []models.Item{}})
	}

	items, err := s.store.ListItemsByRequests(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.RequestID == nil {
			continue
		}
		if i, ok := index[*it.RequestID]; ok {
			details[i].Items = append(details[i].Items, it)
		}
	}
	return details, nil
}
