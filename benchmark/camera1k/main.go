package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
	"liyu1981.xyz/iot-camera-service/pkg/api"
	"liyu1981.xyz/iot-camera-service/pkg/client"
	iotGrpc "liyu1981.xyz/iot-camera-service/pkg/grpc"
	"liyu1981.xyz/iot-camera-service/pkg/models"
)

var maxCameras int = 1000
var httpBaseURL string = "http://127.0.0.1:1080"
var grpcHostPort string = "127.0.0.1:10801"

var restClient *client.Client
var grpcClient *iotGrpc.CameraServiceClient

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
var rndMu sync.Mutex

func main() {
	ctx := context.Background()

	restClient = client.New(client.Config{BaseURL: httpBaseURL, Timeout: 10 * time.Second})
	if err := restClient.Health(ctx); err != nil {
		log.Fatal("HTTP server not available: ", err)
	}
	fmt.Printf("http server verified\n")

	conn, err := grpc.NewClient(grpcHostPort, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal("Failed to connect to gRPC server: ", err)
	}
	defer conn.Close()
	grpcClient = iotGrpc.NewCameraServiceClient(conn)

	fmt.Printf("gRPC client ready\n")

	cameraIDs := make([]uuid.UUID, maxCameras)

	startTime := time.Now()
	wg := sync.WaitGroup{}
	for i := range maxCameras {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cameraIDs[i] = onboard(ctx, fmt.Sprintf("bench-camera-%04d", i))
			fmt.Printf("\ronboarded camera %v", i)
		}()
	}
	wg.Wait()
	usedTime := time.Since(startTime)

	fmt.Printf(
		"\ronboarded %v cameras: used time=%v seconds, throughput=%v action/second\n",
		maxCameras, usedTime.Seconds(), float64(maxCameras)/usedTime.Seconds(),
	)

	startTime = time.Now()
	wg = sync.WaitGroup{}
	for i := range maxCameras {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doActions(ctx, cameraIDs[i])
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\n\rdid actions for %v cameras: used time=%v seconds, throughput=%v action/second\n",
		maxCameras, usedTime.Seconds(), float64(maxCameras*4)/usedTime.Seconds(),
	)
}

func flipCoin() bool {
	rndMu.Lock()
	defer rndMu.Unlock()
	return rnd.Int31n(100000)%2 == 0
}

func rndFloat64(min, max float64, decimal int) float64 {
	rndMu.Lock()
	val := min + rnd.Float64()*(max-min)
	rndMu.Unlock()
	multiplier := math.Pow10(decimal)
	return math.Round(val*multiplier) / multiplier
}

func pause() {
	rndMu.Lock()
	d := time.Duration(100+rnd.Int31n(1000)) * time.Millisecond
	rndMu.Unlock()
	time.Sleep(d)
}

func onboard(ctx context.Context, name string) uuid.UUID {
	if flipCoin() {
		resp, err := restClient.Onboard(ctx, name, "1.0.0")
		if err != nil {
			panic(err)
		}
		return resp.CameraID
	}

	req, _ := structpb.NewStruct(map[string]any{"cameraName": name, "firmwareVersion": "1.0.0"})
	resp, err := grpcClient.OnboardCamera(ctx, req)
	if err != nil {
		panic(err)
	}
	return uuid.MustParse(resp.GetFields()["cameraId"].GetStringValue())
}

// doActions walks one camera through initialize, upload, location and sensor
// calls. Initialize always runs first since the others need it.
func doActions(ctx context.Context, cameraID uuid.UUID) {
	actions := []func(context.Context, uuid.UUID) error{uploadImage, setLocation, createSensor}
	actionNames := []string{"UploadImage", "SetLocation", "CreateSensor"}
	rndMu.Lock()
	rnd.Shuffle(len(actions), func(i, j int) {
		actions[i], actions[j] = actions[j], actions[i]
		actionNames[i], actionNames[j] = actionNames[j], actionNames[i]
	})
	rndMu.Unlock()

	actions = append([]func(context.Context, uuid.UUID) error{initialize}, actions...)
	actionNames = append([]string{"Initialize"}, actionNames...)

	for index, action := range actions {
		if err := action(ctx, cameraID); err != nil {
			fmt.Printf("\nerror in %v for camera %v: %v\n", actionNames[index], cameraID, err)
			continue
		}
		fmt.Printf("\rexecuted action %v for camera %v", actionNames[index], cameraID)
		pause()
	}
}

func initialize(ctx context.Context, cameraID uuid.UUID) error {
	if flipCoin() {
		_, err := restClient.InitializeCamera(ctx, cameraID)
		return err
	}
	_, err := grpcClient.InitializeCamera(ctx, wrapperspb.String(cameraID.String()))
	return err
}

func uploadImage(ctx context.Context, cameraID uuid.UUID) error {
	frame := make([]byte, 64*1024)
	rndMu.Lock()
	rnd.Read(frame)
	rndMu.Unlock()
	_, err := restClient.UploadImage(ctx, cameraID, "frame-"+uuid.NewString(), frame)
	return err
}

func setLocation(ctx context.Context, cameraID uuid.UUID) error {
	_, err := restClient.SetLocation(ctx, cameraID, api.LocationRequest{
		Latitude:  rndFloat64(-89, 89, 6),
		Longitude: rndFloat64(-179, 179, 6),
		Address:   "benchmark site " + cameraID.String()[:8],
	})
	return err
}

func createSensor(ctx context.Context, cameraID uuid.UUID) error {
	kind := models.SensorTypeTemperature
	_, err := restClient.CreateSensor(ctx, cameraID, kind, api.SensorRequest{
		Name:       "bench-" + kind.Path(),
		Version:    "1",
		SensorType: string(kind),
		Data:       fmt.Sprintf(`{"celsius":%.2f}`, rndFloat64(-20, 50, 2)),
	})
	return err
}
