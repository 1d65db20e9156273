package registry

import domain "user-registry/internal/domain/user"

// CreateUserRequest represents the payload of a direct create command.
type CreateUserRequest struct {
	Name  string `validate:"required"`
	Email string `validate:"required"`
}

// UpdateUserRequest represents the payload of a direct update command.
type UpdateUserRequest struct {
	ID    int64
	Name  string `validate:"required"`
	Email string `validate:"required"`
}

// ListUsersRequest represents the request payload for listing users.
// A zero Limit returns every user.
type ListUsersRequest struct {
	Query string
	Page  int64
	Limit int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []domain.User
	Pagination *domain.Pagination
}

// Result is returned by commands that create or update a user.
type Result struct {
	User     domain.User
	Snapshot domain.Snapshot
}
