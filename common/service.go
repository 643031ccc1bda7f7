package common

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service and method names of the selection gRPC API.
const (
	ServiceName      = "selection.v1.ProductSelection"
	HandleMethodName = "Handle"
	HandleFullMethod = "/" + ServiceName + "/" + HandleMethodName
)

// SelectionServer handles command envelopes sent as protobuf Structs.
type SelectionServer interface {
	Handle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterSelectionServer registers srv on s.
func RegisterSelectionServer(s grpc.ServiceRegistrar, srv SelectionServer) {
	s.RegisterService(&SelectionServiceDesc, srv)
}

func handleHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SelectionServer).Handle(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: HandleFullMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SelectionServer).Handle(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// SelectionServiceDesc describes the selection service. There is no .proto
// for it; request and response are google.protobuf.Struct.
var SelectionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SelectionServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: HandleMethodName,
			Handler:    handleHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "selection/v1/selection.proto",
}

// SelectionClient is the client side of SelectionServer.
type SelectionClient interface {
	Handle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type selectionClient struct {
	cc grpc.ClientConnInterface
}

// NewSelectionClient creates a SelectionClient on cc.
func NewSelectionClient(cc grpc.ClientConnInterface) SelectionClient {
	return &selectionClient{cc}
}

func (c *selectionClient) Handle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, HandleFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
