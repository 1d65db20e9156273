package registry

import (
	"context"

	domain "user-registry/internal/domain/user"
)

// Source provides the startup user list.
type Source interface {
	Fetch(ctx context.Context) ([]domain.User, error)
	Name() string
}

// Usecase defines the operations the transports drive on the registry.
type Usecase interface {
	Snapshot() domain.Snapshot
	Ready() <-chan struct{}
	Subscribe() (<-chan domain.Snapshot, func())

	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
	BeginCreate(ctx context.Context) domain.Snapshot
	BeginEdit(ctx context.Context, id int64) (domain.Snapshot, error)
	SetDraft(ctx context.Context, d domain.Draft) domain.Snapshot
	Submit(ctx context.Context) (*Result, error)
	SubmitDraft(ctx context.Context, d domain.Draft) (*Result, error)
	Create(ctx context.Context, in CreateUserRequest) (*Result, error)
	Update(ctx context.Context, in UpdateUserRequest) (*Result, error)
	Delete(ctx context.Context, id int64) domain.Snapshot
}
