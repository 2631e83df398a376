package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"liyu1981.xyz/iot-camera-service/pkg/iot"
)

const ServiceName = "iot.CameraService"

const (
	MethodOnboardCamera    = "/" + ServiceName + "/OnboardCamera"
	MethodInitializeCamera = "/" + ServiceName + "/InitializeCamera"
	MethodGetCamera        = "/" + ServiceName + "/GetCamera"
	MethodListSensors      = "/" + ServiceName + "/ListSensors"
)

// CameraServiceServer speaks protobuf well-known types only, so no generated code is needed.
type CameraServiceServer interface {
	OnboardCamera(context.Context, *structpb.Struct) (*structpb.Struct, error)
	InitializeCamera(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetCamera(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListSensors(context.Context, *structpb.Struct) (*structpb.ListValue, error)
}

type IOTServer struct {
	Iot              *iot.IOT
	RateLimiterStore *iot.RateLimiterStore
}

var _ CameraServiceServer = (*IOTServer)(nil)

func (i *IOTServer) CheckCameraLimiter(cameraID string) bool {
	if i.RateLimiterStore == nil {
		return true
	}
	return i.RateLimiterStore.Allow(cameraID)
}

// methodHandler matches the Handler field of grpc.MethodDesc.
type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error)

func unaryHandler[Req any, Resp any](
	method string,
	newReq func() *Req,
	call func(CameraServiceServer, context.Context, *Req) (*Resp, error),
) methodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CameraServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CameraServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var CameraServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CameraServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "OnboardCamera",
			Handler: unaryHandler(MethodOnboardCamera,
				func() *structpb.Struct { return &structpb.Struct{} },
				CameraServiceServer.OnboardCamera),
		},
		{
			MethodName: "InitializeCamera",
			Handler: unaryHandler(MethodInitializeCamera,
				func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} },
				CameraServiceServer.InitializeCamera),
		},
		{
			MethodName: "GetCamera",
			Handler: unaryHandler(MethodGetCamera,
				func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} },
				CameraServiceServer.GetCamera),
		},
		{
			MethodName: "ListSensors",
			Handler: unaryHandler(MethodListSensors,
				func() *structpb.Struct { return &structpb.Struct{} },
				CameraServiceServer.ListSensors),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "iot/camera_service.proto",
}

func RegisterCameraServiceServer(s grpc.ServiceRegistrar, srv CameraServiceServer) {
	s.RegisterService(&CameraServiceDesc, srv)
}

type CameraServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCameraServiceClient(cc grpc.ClientConnInterface) *CameraServiceClient {
	return &CameraServiceClient{cc: cc}
}

func (c *CameraServiceClient) OnboardCamera(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodOnboardCamera, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CameraServiceClient) InitializeCamera(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodInitializeCamera, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CameraServiceClient) GetCamera(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodGetCamera, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CameraServiceClient) ListSensors(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, MethodListSensors, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
