package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	z "github.com/Oudwins/zog"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"liyu1981.xyz/iot-camera-service/pkg/api"
	"liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/iot"
)

var onboardValidator = z.Struct(z.Shape{
	"cameraName":      z.String().Trim().Min(1).Required(),
	"firmwareVersion": z.String().Trim().Min(1).Required(),
})

type listSensorsRequest struct {
	CameraID string `zog:"cameraId"`
	Kind     string
}

var listSensorsValidator = z.Struct(z.Shape{
	"cameraID": z.String().Min(1).Required(),
	"kind":     z.String().Min(1).Required(),
})

func parseCameraID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: camera id %q is not a uuid", iot.ErrInvalidID, raw)
	}
	return id, nil
}

func invalidArgument(issues z.ZogIssueMap) error {
	return status.Errorf(codes.InvalidArgument, "%v: %v", iot.ErrValidation, common.IssueMessages(issues))
}

// toMessage re-encodes v through its JSON form so the wire shape matches the REST API.
func toMessage[M proto.Message](v any, m M) (M, error) {
	raw, err := json.Marshal(v)
	if err == nil {
		err = protojson.Unmarshal(raw, m)
	}
	if err != nil {
		var zero M
		return zero, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return m, nil
}

func (s *IOTServer) OnboardCamera(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in api.OnboardRequest
	if issues := onboardValidator.Parse(req.AsMap(), &in); issues != nil {
		return nil, invalidArgument(issues)
	}

	camera, err := s.Iot.Camera.CreateCamera(ctx, in.CameraName, in.FirmwareVersion)
	if err != nil {
		return nil, toStatus(MethodOnboardCamera, err)
	}

	return toMessage(api.OnboardResponseFromModel(camera), &structpb.Struct{})
}

func (s *IOTServer) InitializeCamera(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	cameraID, err := parseCameraID(req.GetValue())
	if err != nil {
		return nil, toStatus(MethodInitializeCamera, err)
	}

	camera, err := s.Iot.Camera.InitializeCamera(ctx, cameraID)
	if err != nil {
		return nil, toStatus(MethodInitializeCamera, err)
	}

	return toMessage(api.CameraFromModel(camera), &structpb.Struct{})
}

func (s *IOTServer) GetCamera(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	cameraID, err := parseCameraID(req.GetValue())
	if err != nil {
		return nil, toStatus(MethodGetCamera, err)
	}

	camera, err := s.Iot.Camera.GetCameraByID(ctx, cameraID)
	if err != nil {
		return nil, toStatus(MethodGetCamera, err)
	}

	return toMessage(api.CameraFromModel(camera), &structpb.Struct{})
}

func (s *IOTServer) ListSensors(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	var in listSensorsRequest
	if issues := listSensorsValidator.Parse(req.AsMap(), &in); issues != nil {
		return nil, invalidArgument(issues)
	}

	cameraID, err := parseCameraID(in.CameraID)
	if err != nil {
		return nil, toStatus(MethodListSensors, err)
	}
	kind, err := iot.ResolveSensorKind(in.Kind)
	if err != nil {
		return nil, toStatus(MethodListSensors, err)
	}
	service, err := s.Iot.Sensor(kind)
	if err != nil {
		return nil, toStatus(MethodListSensors, err)
	}

	sensors, err := service.ListSensorsByCamera(ctx, cameraID)
	if err != nil {
		return nil, toStatus(MethodListSensors, err)
	}

	return toMessage(api.SensorsFromModels(sensors), &structpb.ListValue{})
}
