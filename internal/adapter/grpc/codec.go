package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	domain "user-registry/internal/domain/user"
	pkgerrors "user-registry/pkg/errors"
)

type idRequest struct {
	ID int64 `json:"id"`
}

type listUsersRequest struct {
	Query string `json:"query"`
	Page  int64  `json:"page"`
	Limit int64  `json:"limit"`
}

type userRequest struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type paginationMessage struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

type listUsersResponse struct {
	Users      []domain.User      `json:"users"`
	Pagination *paginationMessage `json:"pagination"`
}

type resultMessage struct {
	User     domain.User     `json:"user"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

// decode copies the fields of a Struct message into dst.
func decode(in *structpb.Struct, dst any) error {
	if in == nil {
		return nil
	}
	data, err := protojson.Marshal(in)
	if err != nil {
		return pkgerrors.NewValidationError("", fmt.Sprintf("malformed request: %v", err))
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return pkgerrors.NewValidationError("", fmt.Sprintf("malformed request: %v", err))
	}
	return nil
}

// encode converts v into a Struct message using its JSON field names.
func encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode response", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode response", err)
	}
	return out, nil
}
