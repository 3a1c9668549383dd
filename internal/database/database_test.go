package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "shareit.db"),
	}, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *DB, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, db.CreateUser(context.Background(), u))
	return u
}

func createItem(t *testing.T, db *DB, ownerID int64, name string, available bool) *models.Item {
	t.Helper()
	it := &models.Item{Name: name, Description: name + " description", Available: available, OwnerID: ownerID}
	require.NoError(t, db.CreateItem(context.Background(), it))
	return it
}

func createBooking(t *testing.T, db *DB, itemID, bookerID int64, start, end time.Time, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{ItemID: itemID, BookerID: bookerID, Start: start, End: end, Status: status}
	require.NoError(t, db.CreateBooking(context.Background(), b))
	return b
}

func TestOpen_InMemory(t *testing.T) {
	logger := zerolog.Nop()
	db, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, ":memory:", db.Path())
	createUser(t, db, "ann")
	users, err := db.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	logger := zerolog.Nop()
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, &logger)
	assert.Error(t, err)
}

func TestOpen_Reopen(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "reopen.db")
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, Path: path}

	db, err := Open(cfg, &logger)
	require.NoError(t, err)
	createUser(t, db, "ann")
	require.NoError(t, db.Close())

	db, err = Open(cfg, &logger)
	require.NoError(t, err)
	defer db.Close()
	users, err := db.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestInTx(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		err := db.InTx(ctx, func(tx domain.Store) error {
			return tx.CreateUser(ctx, &models.User{Name: "tx", Email: "tx@example.com"})
		})
		require.NoError(t, err)
		_, err = db.GetUserByEmail(ctx, "tx@example.com")
		assert.NoError(t, err)
	})

	t.Run("Rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.InTx(ctx, func(tx domain.Store) error {
			require.NoError(t, tx.CreateUser(ctx, &models.User{Name: "gone", Email: "gone@example.com"}))
			// nested calls reuse the transaction
			return tx.InTx(ctx, func(domain.Store) error { return boom })
		})
		assert.ErrorIs(t, err, boom)
		_, err = db.GetUserByEmail(ctx, "gone@example.com")
		assert.ErrorIs(t, err, domain.ErrNoRecord)
	})
}
