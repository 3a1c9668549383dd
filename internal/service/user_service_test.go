package service

import (
	"context"
	"testing"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ann, err := f.users.Create(ctx, models.User{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	assert.NotZero(t, ann.ID)

	_, err = f.users.Create(ctx, models.User{Name: "Ann2", Email: "ann@example.com"})
	requireKind(t, err, domain.ErrEmailExists)

	_, err = f.users.Create(ctx, models.User{Name: "", Email: "x@example.com"})
	requireKind(t, err, domain.ErrValidation)

	bob, err := f.users.Create(ctx, models.User{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	all, err := f.users.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := f.users.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, models.SameUser(*bob, *got))

	_, err = f.users.GetByID(ctx, 999)
	requireKind(t, err, domain.ErrUserNotFound)

	renamed, err := f.users.Update(ctx, bob.ID, models.UserPatch{Name: strPtr("Robert")})
	require.NoError(t, err)
	assert.Equal(t, "Robert", renamed.Name)
	assert.Equal(t, "bob@example.com", renamed.Email)

	same, err := f.users.Update(ctx, bob.ID, models.UserPatch{Email: strPtr("bob@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "Robert", same.Name)

	_, err = f.users.Update(ctx, bob.ID, models.UserPatch{Email: strPtr("ann@example.com")})
	requireKind(t, err, domain.ErrEmailExists)

	_, err = f.users.Update(ctx, 999, models.UserPatch{Name: strPtr("ghost")})
	requireKind(t, err, domain.ErrUserNotFound)

	require.NoError(t, f.users.Delete(ctx, ann.ID))
	requireKind(t, f.users.Delete(ctx, ann.ID), domain.ErrUserNotFound)

	// The freed email can be registered again.
	_, err = f.users.Create(ctx, models.User{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
}
