package gormsource

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"user-registry/internal/domain/user"
	"user-registry/pkg/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.NewGormLogger(zaptest.NewLogger(t), 0.2, "info"),
	})
	require.NoError(t, err)

	// Every pooled connection would get its own in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&UserSchema{}))
	return db
}

func TestUserSource_FetchOrderedByID(t *testing.T) {
	db := setupTestDB(t)
	rows := []UserSchema{
		{ID: 3, Name: "Carol", Email: "carol@example.com"},
		{ID: 1, Name: "Alice", Email: "alice@example.com"},
		{ID: 2, Name: "Bob", Email: "bob@example.com"},
	}
	require.NoError(t, db.Create(&rows).Error)

	src := New(db, "sqlite://seed.db", zaptest.NewLogger(t))
	users, err := src.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []user.User{
		{ID: 1, Name: "Alice", Email: "alice@example.com"},
		{ID: 2, Name: "Bob", Email: "bob@example.com"},
		{ID: 3, Name: "Carol", Email: "carol@example.com"},
	}, users)
	assert.Equal(t, "sqlite://seed.db", src.Name())
}

func TestUserSource_EmptyTable(t *testing.T) {
	db := setupTestDB(t)

	users, err := New(db, "sqlite", zaptest.NewLogger(t)).Fetch(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserSource_MissingTable(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&UserSchema{}))

	_, err := New(db, "sqlite", zaptest.NewLogger(t)).Fetch(context.Background())

	assert.ErrorContains(t, err, "failed to list users")
}
