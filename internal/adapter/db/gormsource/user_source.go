package gormsource

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-registry/internal/domain/user"
)

// UserSource reads the startup user list from a SQL table through GORM.
// It never writes.
type UserSource struct {
	db   *gorm.DB    // GORM database connection
	name string      // source name used in logs and cache keys
	log  *zap.Logger // Structured logger for database operations
}

// New creates a new instance of UserSource.
func New(db *gorm.DB, name string, log *zap.Logger) *UserSource {
	return &UserSource{db: db, name: name, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey"` // Unique identifier
	Name  string `gorm:"not null"`   // User's display name
	Email string `gorm:"not null"`   // User's email address
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// Name implements registry.Source.
func (s *UserSource) Name() string {
	return s.name
}

// Fetch implements registry.Source. Rows come back ordered by id.
func (s *UserSource) Fetch(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := s.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		s.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = user.User{
			ID:    model.ID,
			Name:  model.Name,
			Email: model.Email,
		}
	}

	s.log.Debug("read user list from db", zap.Int("count", len(users)))
	return users, nil
}
