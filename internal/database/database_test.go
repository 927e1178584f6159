package database

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	db, err := Open("sqlite", "file:database_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db))
	require.NoError(t, Ping(db))

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}

	user := models.User{Email: "a@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
}
