package service

import (
	"context"
	"errors"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	store  domain.Store
	logger *zerolog.Logger
}

var _ domain.UserService = (*UserService)(nil)

func NewUserService(store domain.Store, logger *zerolog.Logger) *UserService {
	return &UserService{store: store, logger: nopLogger(logger)}
}

func (s *UserService) GetAll(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return requireUser(ctx, s.store, id)
}

func (s *UserService) Create(ctx context.Context, user models.User) (*models.User, error) {
	if blank(user.Name) {
		return nil, domain.Errorf(domain.ErrValidation, "user name must not be blank")
	}
	if blank(user.Email) {
		return nil, domain.Errorf(domain.ErrValidation, "user email must not be blank")
	}

	user.ID = 0
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if err := ensureEmailFree(ctx, tx, user.Email, 0); err != nil {
			return err
		}
		return tx.CreateUser(ctx, &user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	if patch.Name != nil && blank(*patch.Name) {
		return nil, domain.Errorf(domain.ErrValidation, "user name must not be blank")
	}
	if patch.Email != nil && blank(*patch.Email) {
		return nil, domain.Errorf(domain.ErrValidation, "user email must not be blank")
	}

	var updated *models.User
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		user, err := requireUser(ctx, tx, id)
		if err != nil {
			return err
		}
		if patch.Email != nil && *patch.Email != user.Email {
			if err := ensureEmailFree(ctx, tx, *patch.Email, id); err != nil {
				return err
			}
		}
		patch.Apply(user)
		if err := tx.UpdateUser(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.store.DeleteUser(ctx, id)
	if errors.Is(err, domain.ErrNoRecord) {
		return domain.Errorf(domain.ErrUserNotFound, "user with id %d not found", id)
	}
	if err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func ensureEmailFree(ctx context.Context, repo domain.UserRepository, email string, ownerID int64) error {
	existing, err := repo.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNoRecord) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != ownerID {
		return domain.Errorf(domain.ErrEmailExists, "email %s is already registered", email)
	}
	return nil
}
