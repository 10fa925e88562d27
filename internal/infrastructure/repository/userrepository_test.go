package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zevix-io/zevix/internal/domain/billing"
	"github.com/zevix-io/zevix/internal/domain/user"
	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewUserRepository(gdb, testLogger())
	ctx := context.Background()

	u, err := user.NewUser("Test@Example.com", "$2a$10$hash")
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID())

	got, err := repo.GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", got.Email())
	assert.Equal(t, billing.PlanNone, got.Plan())
	assert.Equal(t, "$2a$10$hash", got.PasswordHash())
}

func TestUserRepository_GetByEmailNormalizes(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewUserRepository(gdb, testLogger())
	ctx := context.Background()

	u, err := user.NewUser("a@x.com", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByEmail(ctx, "  A@X.COM ")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email())
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewUserRepository(gdb, testLogger())
	ctx := context.Background()

	u1, err := user.NewUser("a@x.com", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, u1))

	u2, err := user.NewUser("a@x.com", "otherhash")
	require.NoError(t, err)

	err = repo.Create(ctx, u2)
	require.Error(t, err)
	assert.True(t, apperrors.HasReason(err, "email_taken"))
}

func TestUserRepository_GetMissing(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewUserRepository(gdb, testLogger())

	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, user.ErrNotFound))
}

func TestUserRepository_UpdatePlan(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewUserRepository(gdb, testLogger())
	ctx := context.Background()

	u, err := user.NewUser("a@x.com", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, repo.UpdatePlan(ctx, "a@x.com", billing.PlanBusiness, 1700000000000))

	got, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, billing.PlanBusiness, got.Plan())
	assert.Equal(t, int64(1700000000000), got.ValidUntil())
}

func TestUserRepository_UpdatePlanMissingUser(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewUserRepository(gdb, testLogger())

	err := repo.UpdatePlan(context.Background(), "nobody@x.com", billing.PlanBasic, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, user.ErrNotFound))
}
