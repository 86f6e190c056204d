package plugin

import (
	"context"

	"google.golang.org/grpc"
)

const (
	serviceName     = "lingua.provider.v1.Provider"
	methodTranslate = "/" + serviceName + "/Translate"
	methodDescribe  = "/" + serviceName + "/Describe"
)

// providerService is the server contract registered with gRPC.
type providerService interface {
	Translate(ctx context.Context, in *TranslateRequest) (*TranslateResponse, error)
	Describe(ctx context.Context, in *DescribeRequest) (*DescribeResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*providerService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Translate", Handler: translateHandler},
		{MethodName: "Describe", Handler: describeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lingua/provider.v1",
}

func translateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(TranslateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(providerService).Translate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodTranslate}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(providerService).Translate(ctx, req.(*TranslateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func describeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DescribeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(providerService).Describe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodDescribe}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(providerService).Describe(ctx, req.(*DescribeRequest))
	}
	return interceptor(ctx, in, info, handler)
}
