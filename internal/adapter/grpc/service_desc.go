package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the reconciliation service
const ServiceName = "hearthledger.v1.ReconciliationService"

// ReconciliationServer is the server API of hearthledger.v1.ReconciliationService.
// Requests and responses are google.protobuf.Struct documents.
type ReconciliationServer interface {
	CreateCheckpoint(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListCheckpoints(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RecalculateCheckpoints(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ReconciliationServiceDesc describes the service for grpc.Server.RegisterService
var ReconciliationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReconciliationServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateCheckpoint",
			Handler:    unaryHandler("CreateCheckpoint", ReconciliationServer.CreateCheckpoint),
		},
		{
			MethodName: "ListCheckpoints",
			Handler:    unaryHandler("ListCheckpoints", ReconciliationServer.ListCheckpoints),
		},
		{
			MethodName: "RecalculateCheckpoints",
			Handler:    unaryHandler("RecalculateCheckpoints", ReconciliationServer.RecalculateCheckpoints),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hearthledger/v1/reconciliation.proto",
}

// RegisterReconciliationServer registers srv on the given registrar
func RegisterReconciliationServer(s grpc.ServiceRegistrar, srv ReconciliationServer) {
	s.RegisterService(&ReconciliationServiceDesc, srv)
}

func unaryHandler(
	method string,
	call func(ReconciliationServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ReconciliationServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ReconciliationServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
