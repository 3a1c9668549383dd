package database

import (
	"context"
	"fmt"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

const tableComments = "comments"

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	id, err := db.insert(ctx, db.dialect.Insert(tableComments).Rows(goqu.Record{
		"text":      comment.Text,
		"item_id":   comment.ItemID,
		"author_id": comment.AuthorID,
		"created":   utc(comment.Created),
	}))
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	comment.ID = id
	return nil
}

// ListComments returns the comments of the given items with their author names, oldest first.
func (db *DB) ListComments(ctx context.Context, itemIDs []int64) ([]models.Comment, error) {
	comments := []models.Comment{}
	if len(itemIDs) == 0 {
		return comments, nil
	}
	ds := db.dialect.From(goqu.T(tableComments).As("c")).
		Join(goqu.T(tableUsers).As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("c.author_id")))).
		Select(
			goqu.I("c.id"),
			goqu.I("c.text"),
			goqu.I("c.item_id"),
			goqu.I("c.author_id"),
			goqu.I("u.name").As("author_name"),
			goqu.I("c.created"),
		).
		Where(goqu.I("c.item_id").In(itemIDs)).
		Order(goqu.I("c.created").Asc(), goqu.I("c.id").Asc())
	if err := db.selectAll(ctx, &comments, ds); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
