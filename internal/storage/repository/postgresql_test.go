package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/offer-service/internal/models"
	"github.com/magabrotheeeer/offer-service/internal/storage"
)

var errRejected = errors.New("rejected")

func TestStorage_Repository(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(s)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("CheckDatabaseReady", func(t *testing.T) {
		require.NoError(t, CheckDatabaseReady(ctx, s))
	})

	t.Run("CreateUser duplicate username", func(t *testing.T) {
		factory.CreateUser(t, "dup", true)
		err := s.CreateUser(ctx, &models.User{
			ID: uuid.NewString(), Username: "dup", PasswordHash: "x", Enabled: true, CreatedAt: now,
		})
		assert.ErrorIs(t, err, storage.ErrExists)
	})

	t.Run("FindEnabledUser", func(t *testing.T) {
		enabled := factory.CreateUser(t, "alice", true)
		disabled := factory.CreateUser(t, "bob", false)

		tests := []struct {
			name    string
			find    func() (*models.User, error)
			wantID  string
			wantErr error
		}{
			{"by id", func() (*models.User, error) { return s.FindEnabledUserByID(ctx, enabled.ID) }, enabled.ID, nil},
			{"by username", func() (*models.User, error) { return s.FindEnabledUserByUsername(ctx, "alice") }, enabled.ID, nil},
			{"disabled by id", func() (*models.User, error) { return s.FindEnabledUserByID(ctx, disabled.ID) }, "", storage.ErrNotFound},
			{"disabled by username", func() (*models.User, error) { return s.FindEnabledUserByUsername(ctx, "bob") }, "", storage.ErrNotFound},
			{"unknown id", func() (*models.User, error) { return s.FindEnabledUserByID(ctx, uuid.NewString()) }, "", storage.ErrNotFound},
			{"malformed id", func() (*models.User, error) { return s.FindEnabledUserByID(ctx, "not-a-uuid") }, "", storage.ErrNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				u, err := tt.find()
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
					assert.Nil(t, u)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, u.ID)
				assert.True(t, u.Enabled)
			})
		}
	})

	t.Run("CreateOffer and GetOffer", func(t *testing.T) {
		user := factory.CreateUser(t, "publisher", true)
		created := factory.CreateOffer(t, user.ID, "Bike", now, time.Minute)

		got, err := s.GetOffer(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Bike", got.Title)
		assert.True(t, created.Price.Equal(got.Price))
		assert.True(t, created.CreateTime.Equal(got.CreateTime))
		assert.Equal(t, time.Minute, got.TTL())
		assert.False(t, got.Canceled)
		assert.Equal(t, user.ID, got.PublisherID)
	})

	t.Run("GetOffer missing", func(t *testing.T) {
		_, err := s.GetOffer(ctx, uuid.NewString())
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.GetOffer(ctx, "42")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListOffersByPublisher", func(t *testing.T) {
		user := factory.CreateUser(t, "lister", true)
		empty := factory.CreateUser(t, "empty", true)
		first := factory.CreateOffer(t, user.ID, "First", now, time.Hour)
		second := factory.CreateOffer(t, user.ID, "Second", now.Add(time.Second), time.Hour)

		got, err := s.ListOffersByPublisher(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, first.ID, got[0].ID)
		assert.Equal(t, second.ID, got[1].ID)

		got, err = s.ListOffersByPublisher(ctx, empty.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ModifyOffer commits", func(t *testing.T) {
		user := factory.CreateUser(t, "modifier", true)
		o := factory.CreateOffer(t, user.ID, "Old title", now, time.Minute)
		title := "New title"
		ttl := 10 * time.Second
		price := decimal.RequireFromString("10.50")

		updated, err := s.ModifyOffer(ctx, o.ID, func(cur *models.Offer) error {
			return cur.ApplyEdits(models.OfferEdits{Title: &title, TTL: &ttl, Price: &price})
		})
		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)

		stored, err := s.GetOffer(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, title, stored.Title)
		assert.True(t, price.Equal(stored.Price))
		assert.True(t, o.CreateTime.Add(ttl).Equal(stored.EndTime))
	})

	t.Run("ModifyOffer rolls back on error", func(t *testing.T) {
		user := factory.CreateUser(t, "rollback", true)
		o := factory.CreateOffer(t, user.ID, "Keep me", now, time.Minute)

		_, err := s.ModifyOffer(ctx, o.ID, func(cur *models.Offer) error {
			cur.Title = "Changed"
			cur.Cancel()
			return errRejected
		})
		assert.ErrorIs(t, err, errRejected)

		stored, err := s.GetOffer(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "Keep me", stored.Title)
		assert.False(t, stored.Canceled)
	})

	t.Run("ModifyOffer missing", func(t *testing.T) {
		called := false
		_, err := s.ModifyOffer(ctx, uuid.NewString(), func(*models.Offer) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.False(t, called)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.GetOffer(cctx, uuid.NewString())
		assert.ErrorIs(t, err, context.Canceled)
	})
}
