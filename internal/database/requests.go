package database

import (
	"context"
	"errors"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

const tableRequests = "requests"

func (db *DB) requestSelect() *goqu.SelectDataset {
	return db.dialect.From(tableRequests).Select("id", "description", "requestor_id", "created")
}

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	id, err := db.insert(ctx, db.dialect.Insert(tableRequests).Rows(goqu.Record{
		"description":  request.Description,
		"requestor_id": request.RequestorID,
		"created":      utc(request.Created),
	}))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	request.ID = id
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var request models.ItemRequest
	if err := db.get(ctx, &request, db.requestSelect().Where(goqu.C("id").Eq(id))); err != nil {
		if errors.Is(err, domain.ErrNoRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &request, nil
}

func (db *DB) ListRequestsByRequestor(ctx context.Context, requestorID int64) ([]models.ItemRequest, error) {
	requests := []models.ItemRequest{}
	ds := db.requestSelect().
		Where(goqu.C("requestor_id").Eq(requestorID)).
		Order(goqu.C("created").Desc(), goqu.C("id").Desc())
	if err := db.selectAll(ctx, &requests, ds); err != nil {
		return nil, fmt.Errorf("failed to list own requests: %w", err)
	}
	return requests, nil
}

// ListRequestsExcept pages through the requests of every other user, newest first.
func (db *DB) ListRequestsExcept(ctx context.Context, requestorID int64, page models.Page) ([]models.ItemRequest, error) {
	requests := []models.ItemRequest{}
	ds := db.requestSelect().
		Where(goqu.C("requestor_id").Neq(requestorID)).
		Order(goqu.C("created").Desc(), goqu.C("id").Desc())
	if err := db.selectAll(ctx, &requests, paged(ds, page)); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}
