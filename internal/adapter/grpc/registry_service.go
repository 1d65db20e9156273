package grpc

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "user-registry/internal/domain/user"
	"user-registry/internal/usecase/registry"
	"user-registry/pkg/logger"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "registry.v1.RegistryService"

// RegistryServiceServer is the server API for the registry service.
type RegistryServiceServer interface {
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListUsers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BeginEdit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BeginCreate(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetDraft(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Submit(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegistryServer implements the gRPC registry service
type RegistryServer struct {
	uc  registry.Usecase
	log *zap.Logger
}

var _ RegistryServiceServer = (*RegistryServer)(nil)

// NewRegistryServer creates a new gRPC registry service server
func NewRegistryServer(uc registry.Usecase, log *zap.Logger) *RegistryServer {
	return &RegistryServer{uc: uc, log: log}
}

// Register attaches the registry service to s.
func Register(s grpc.ServiceRegistrar, srv RegistryServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// GetSnapshot returns the current registry state.
func (s *RegistryServer) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return encode(s.uc.Snapshot())
}

// ListUsers handles gRPC ListUsers request
func (s *RegistryServer) ListUsers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in listUsersRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	out, err := s.uc.ListUsers(ctx, registry.ListUsersRequest{Query: in.Query, Page: in.Page, Limit: in.Limit})
	if err != nil {
		return nil, err
	}

	p := out.Pagination
	return encode(listUsersResponse{
		Users: out.Users,
		Pagination: &paginationMessage{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	})
}

// CreateUser handles gRPC CreateUser request
func (s *RegistryServer) CreateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in userRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("gRPC CreateUser request", zap.String("name", in.Name), zap.String("email", in.Email))
	res, err := s.uc.Create(ctx, registry.CreateUserRequest{Name: in.Name, Email: in.Email})
	if err != nil {
		return nil, err
	}
	return encode(resultMessage{User: res.User, Snapshot: res.Snapshot})
}

// UpdateUser handles gRPC UpdateUser request
func (s *RegistryServer) UpdateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in userRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("gRPC UpdateUser request", zap.Int64("id", in.ID))
	res, err := s.uc.Update(ctx, registry.UpdateUserRequest{ID: in.ID, Name: in.Name, Email: in.Email})
	if err != nil {
		return nil, err
	}
	return encode(resultMessage{User: res.User, Snapshot: res.Snapshot})
}

// DeleteUser handles gRPC DeleteUser request
func (s *RegistryServer) DeleteUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("gRPC DeleteUser request", zap.Int64("id", in.ID))
	return encode(s.uc.Delete(ctx, in.ID))
}

// BeginEdit loads a user into the form.
func (s *RegistryServer) BeginEdit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	snap, err := s.uc.BeginEdit(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return encode(snap)
}

// BeginCreate clears the form.
func (s *RegistryServer) BeginCreate(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return encode(s.uc.BeginCreate(ctx))
}

// SetDraft replaces the form fields.
func (s *RegistryServer) SetDraft(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in domain.Draft
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.uc.SetDraft(ctx, in))
}

// Submit commits the form.
func (s *RegistryServer) Submit(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	logger.WithContext(ctx, s.log).Info("gRPC Submit request")
	res, err := s.uc.Submit(ctx)
	if err != nil {
		return nil, err
	}
	return encode(resultMessage{User: res.User, Snapshot: res.Snapshot})
}
