package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

const tableItems = "items"

func (db *DB) itemSelect() *goqu.SelectDataset {
	return db.dialect.From(tableItems).
		Select("id", "name", "description", "available", "owner_id", "request_id")
}

func paged(ds *goqu.SelectDataset, page models.Page) *goqu.SelectDataset {
	if page.Size <= 0 {
		return ds
	}
	return ds.Limit(uint(page.Size)).Offset(uint(page.From))
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	id, err := db.insert(ctx, db.dialect.Insert(tableItems).Rows(goqu.Record{
		"name":        item.Name,
		"description": item.Description,
		"available":   item.Available,
		"owner_id":    item.OwnerID,
		"request_id":  nullableID(item.RequestID),
	}))
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	item.ID = id
	return nil
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	if err := db.get(ctx, &item, db.itemSelect().Where(goqu.C("id").Eq(id))); err != nil {
		if errors.Is(err, domain.ErrNoRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	err := db.exec(ctx, db.dialect.Update(tableItems).Prepared(true).
		Set(goqu.Record{
			"name":        item.Name,
			"description": item.Description,
			"available":   item.Available,
		}).
		Where(goqu.C("id").Eq(item.ID)))
	if err != nil && !errors.Is(err, domain.ErrNoRecord) {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return err
}

func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	err := db.exec(ctx, db.dialect.Delete(tableItems).Prepared(true).Where(goqu.C("id").Eq(id)))
	if err != nil && !errors.Is(err, domain.ErrNoRecord) {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return err
}

func (db *DB) ListItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]models.Item, error) {
	items := []models.Item{}
	ds := db.itemSelect().Where(goqu.C("owner_id").Eq(ownerID)).Order(goqu.C("id").Asc())
	if err := db.selectAll(ctx, &items, paged(ds, page)); err != nil {
		return nil, fmt.Errorf("failed to list owner items: %w", err)
	}
	return items, nil
}

// SearchItems matches text case-insensitively against name or description of available items.
func (db *DB) SearchItems(ctx context.Context, text string, page models.Page) ([]models.Item, error) {
	items := []models.Item{}
	pattern := "%" + strings.ToLower(text) + "%"
	lower := db.lowerFunc()
	ds := db.itemSelect().
		Where(
			goqu.C("available").Eq(true),
			goqu.Or(
				goqu.Func(lower, goqu.C("name")).Like(pattern),
				goqu.Func(lower, goqu.C("description")).Like(pattern),
			),
		).
		Order(goqu.C("id").Asc())
	if err := db.selectAll(ctx, &items, paged(ds, page)); err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return items, nil
}

func (db *DB) ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]models.Item, error) {
	items := []models.Item{}
	if len(requestIDs) == 0 {
		return items, nil
	}
	ds := db.itemSelect().Where(goqu.C("request_id").In(requestIDs)).Order(goqu.C("id").Asc())
	if err := db.selectAll(ctx, &items, ds); err != nil {
		return nil, fmt.Errorf("failed to list items by requests: %w", err)
	}
	return items, nil
}
