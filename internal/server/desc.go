package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "anvil.plugins.v1.Dependencies"

// DependenciesServer is the server API of the dependency service.
type DependenciesServer interface {
	ResolveCascade(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResolveConflicts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckAdmission(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DescribeDependencies(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the dependency service. Messages are google.protobuf.Struct
// values, so no generated code is needed on either side.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DependenciesServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ResolveCascade", Handler: unaryHandler("ResolveCascade", DependenciesServer.ResolveCascade)},
		{MethodName: "ResolveConflicts", Handler: unaryHandler("ResolveConflicts", DependenciesServer.ResolveConflicts)},
		{MethodName: "CheckAdmission", Handler: unaryHandler("CheckAdmission", DependenciesServer.CheckAdmission)},
		{MethodName: "DescribeDependencies", Handler: unaryHandler("DescribeDependencies", DependenciesServer.DescribeDependencies)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "anvil/plugins/v1/dependencies.proto",
}

// Register registers srv on s.
func Register(s grpc.ServiceRegistrar, srv DependenciesServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type unaryMethod func(DependenciesServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DependenciesServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DependenciesServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
