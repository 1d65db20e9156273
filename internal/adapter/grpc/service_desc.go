package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceDesc describes registry.v1.RegistryService. All messages are
// well-known types, so no generated code is involved.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RegistryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSnapshot", Handler: emptyHandler("GetSnapshot", RegistryServiceServer.GetSnapshot)},
		{MethodName: "ListUsers", Handler: structHandler("ListUsers", RegistryServiceServer.ListUsers)},
		{MethodName: "CreateUser", Handler: structHandler("CreateUser", RegistryServiceServer.CreateUser)},
		{MethodName: "UpdateUser", Handler: structHandler("UpdateUser", RegistryServiceServer.UpdateUser)},
		{MethodName: "DeleteUser", Handler: structHandler("DeleteUser", RegistryServiceServer.DeleteUser)},
		{MethodName: "BeginEdit", Handler: structHandler("BeginEdit", RegistryServiceServer.BeginEdit)},
		{MethodName: "BeginCreate", Handler: emptyHandler("BeginCreate", RegistryServiceServer.BeginCreate)},
		{MethodName: "SetDraft", Handler: structHandler("SetDraft", RegistryServiceServer.SetDraft)},
		{MethodName: "Submit", Handler: emptyHandler("Submit", RegistryServiceServer.Submit)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "registry/v1/registry.proto",
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func structHandler(name string, call func(RegistryServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RegistryServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RegistryServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func emptyHandler(name string, call func(RegistryServiceServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RegistryServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RegistryServiceServer), ctx, req.(*emptypb.Empty))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RegistryServiceClient is the client API for the registry service.
type RegistryServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRegistryServiceClient creates a client over cc.
func NewRegistryServiceClient(cc grpc.ClientConnInterface) *RegistryServiceClient {
	return &RegistryServiceClient{cc: cc}
}

// Call invokes a method taking a Struct request.
func (c *RegistryServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CallEmpty invokes a method taking an Empty request.
func (c *RegistryServiceClient) CallEmpty(ctx context.Context, method string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
