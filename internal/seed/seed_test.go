package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/skycomfort-server/internal/repository"
	"github.com/iliyamo/skycomfort-server/internal/repository/memory"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

func TestCatalogDecodes(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	require.Len(t, c.Services, 8)
	for _, e := range c.Services {
		_, err := e.toService()
		assert.NoError(t, err, e.Title)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	rep, err := Seed(ctx, store, 4, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Report{Users: 1, Services: 8}, rep)

	rep, err = Seed(ctx, store, 4, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Report{}, rep)

	services, err := store.Services().FindAll(ctx, repository.Filter{})
	require.NoError(t, err)
	assert.Len(t, services, 8)

	admin, err := store.Users().FindByEmail(ctx, "admin@skycomfort.com")
	require.NoError(t, err)
	assert.True(t, admin.IsStaff)
	assert.True(t, utils.VerifyPassword(admin.PasswordHash, "password123"))
}
