package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
	"liyu1981.xyz/iot-camera-service/pkg/common"
)

// cameraIDOf reads the camera id a request is scoped to, "" when it has none.
func cameraIDOf(req any) string {
	switch r := req.(type) {
	case *wrapperspb.StringValue:
		return r.GetValue()
	case *structpb.Struct:
		return r.GetFields()["cameraId"].GetStringValue()
	}
	return ""
}

func (i *IOTServer) CreateRateLimitInterceptor(targetMethods []string) grpc.UnaryServerInterceptor {
	targetMethodMap := common.Reducer(targetMethods,
		func(m map[string]bool, method string) map[string]bool {
			m[method] = true
			return m
		},
		map[string]bool{},
	)

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if _, ok := targetMethodMap[info.FullMethod]; ok {
			if cameraID := cameraIDOf(req); cameraID != "" {
				if !i.CheckCameraLimiter(cameraID) {
					return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded")
				}
			}
		}

		return handler(ctx, req)
	}
}
