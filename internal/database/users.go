package database

import (
	"context"
	"errors"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

const tableUsers = "users"

func (db *DB) userSelect() *goqu.SelectDataset {
	return db.dialect.From(tableUsers).Select("id", "name", "email")
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	id, err := db.insert(ctx, db.dialect.Insert(tableUsers).Rows(goqu.Record{
		"name":  user.Name,
		"email": user.Email,
	}))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.ErrEmailExists, "email %s is already registered", user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := db.get(ctx, &user, db.userSelect().Where(goqu.C("id").Eq(id))); err != nil {
		if errors.Is(err, domain.ErrNoRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := db.get(ctx, &user, db.userSelect().Where(goqu.C("email").Eq(email))); err != nil {
		if errors.Is(err, domain.ErrNoRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := db.selectAll(ctx, &users, db.userSelect().Order(goqu.C("id").Asc())); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	err := db.exec(ctx, db.dialect.Update(tableUsers).Prepared(true).
		Set(goqu.Record{"name": user.Name, "email": user.Email}).
		Where(goqu.C("id").Eq(user.ID)))
	switch {
	case err == nil, errors.Is(err, domain.ErrNoRecord):
		return err
	case isUniqueViolation(err):
		return domain.Errorf(domain.ErrEmailExists, "email %s is already registered", user.Email)
	default:
		return fmt.Errorf("failed to update user: %w", err)
	}
}

func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	err := db.exec(ctx, db.dialect.Delete(tableUsers).Prepared(true).Where(goqu.C("id").Eq(id)))
	if err != nil && !errors.Is(err, domain.ErrNoRecord) {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return err
}
