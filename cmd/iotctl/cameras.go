package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"liyu1981.xyz/iot-camera-service/pkg/api"
)

var (
	cameraID        string
	cameraName      string
	firmwareVersion string
	imageID         string
	imageFile       string
	latitude        float64
	longitude       float64
	address         string
	limiterRate     float64
	limiterBurst    int
)

var camerasCmd = &cobra.Command{
	Use:   "cameras",
	Short: "Manage cameras",
	Long:  `Onboard, initialize, list and delete cameras, upload images and set locations.`,
}

var camerasOnboardCmd = &cobra.Command{
	Use:     "onboard",
	Short:   "Register a new camera",
	Example: `  iotctl cameras onboard --name "gate-1" --firmware "1.0.0"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newClient().Onboard(cmd.Context(), cameraName, firmwareVersion)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out)
		}
		fmt.Printf("Onboarded camera %s (%s)\n", out.CameraID, out.CameraName)
		return nil
	},
}

var camerasInitializeCmd = &cobra.Command{
	Use:   "initialize",
	Short: "Mark an onboarded camera as initialized",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("camera id", cameraID)
		if err != nil {
			return err
		}
		camera, err := newClient().InitializeCamera(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printCameras(camera)
	},
}

var camerasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all cameras",
	RunE: func(cmd *cobra.Command, args []string) error {
		cameras, err := newClient().ListCameras(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cameras)
		}
		list := make([]*api.Camera, len(cameras))
		for i := range cameras {
			list[i] = &cameras[i]
		}
		return printCameras(list...)
	},
}

var camerasGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show one camera",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("camera id", cameraID)
		if err != nil {
			return err
		}
		camera, err := newClient().GetCamera(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printCameras(camera)
	},
}

var camerasDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a camera with its sensors and location",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("camera id", cameraID)
		if err != nil {
			return err
		}
		if err := newClient().DeleteCamera(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted camera %s\n", id)
		return nil
	},
}

var camerasUploadCmd = &cobra.Command{
	Use:     "upload",
	Short:   "Upload an image for an initialized camera",
	Example: `  iotctl cameras upload --id "camera_id" --image-id "frame-001" --file frame.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("camera id", cameraID)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(imageFile)
		if err != nil {
			return fmt.Errorf("reading image: %w", err)
		}
		camera, err := newClient().UploadImage(cmd.Context(), id, imageID, data)
		if err != nil {
			return err
		}
		return printCameras(camera)
	},
}

var camerasLocationCmd = &cobra.Command{
	Use:   "location",
	Short: "Show or set the location of a camera",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("camera id", cameraID)
		if err != nil {
			return err
		}

		c := newClient()
		var location *api.Location
		if cmd.Flags().Changed("address") {
			location, err = c.SetLocation(cmd.Context(), id, api.LocationRequest{
				Latitude:  latitude,
				Longitude: longitude,
				Address:   address,
			})
		} else {
			location, err = c.GetLocation(cmd.Context(), id)
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(location)
		}
		fmt.Printf("%s\t%.6f,%.6f\t%s\n", location.LocationID, location.Latitude, location.Longitude, location.Address)
		return nil
	},
}

var camerasLimiterCmd = &cobra.Command{
	Use:   "limiter",
	Short: "Replace the request rate limiter of a camera",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("camera id", cameraID)
		if err != nil {
			return err
		}
		if err := newClient().SetLimiter(cmd.Context(), id, limiterRate, limiterBurst); err != nil {
			return err
		}
		fmt.Printf("Limiter for %s set to rate %v, burst %d\n", id, limiterRate, limiterBurst)
		return nil
	},
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func printCameras(cameras ...*api.Camera) error {
	if jsonOutput {
		if len(cameras) == 1 {
			return printJSON(cameras[0])
		}
		return printJSON(cameras)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFIRMWARE\tINITIALIZED\tIMAGE\tADDRESS")
	fmt.Fprintln(w, "--\t----\t--------\t-----------\t-----\t-------")
	for _, cam := range cameras {
		image, where := "-", "-"
		if cam.ImageID != nil {
			image = *cam.ImageID
		}
		if cam.Location != nil {
			where = cam.Location.Address
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			cam.CameraID,
			cam.CameraName,
			cam.FirmwareVersion,
			formatTime(cam.InitializedAt),
			image,
			where,
		)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(camerasCmd)

	camerasCmd.AddCommand(camerasOnboardCmd)
	camerasCmd.AddCommand(camerasInitializeCmd)
	camerasCmd.AddCommand(camerasListCmd)
	camerasCmd.AddCommand(camerasGetCmd)
	camerasCmd.AddCommand(camerasDeleteCmd)
	camerasCmd.AddCommand(camerasUploadCmd)
	camerasCmd.AddCommand(camerasLocationCmd)
	camerasCmd.AddCommand(camerasLimiterCmd)

	camerasOnboardCmd.Flags().StringVar(&cameraName, "name", "", "Camera name")
	camerasOnboardCmd.Flags().StringVar(&firmwareVersion, "firmware", "", "Firmware version")
	_ = camerasOnboardCmd.MarkFlagRequired("name")
	_ = camerasOnboardCmd.MarkFlagRequired("firmware")

	for _, c := range []*cobra.Command{
		camerasInitializeCmd, camerasGetCmd, camerasDeleteCmd,
		camerasUploadCmd, camerasLocationCmd, camerasLimiterCmd,
	} {
		c.Flags().StringVar(&cameraID, "id", "", "ID of the camera")
		_ = c.MarkFlagRequired("id")
	}

	camerasUploadCmd.Flags().StringVar(&imageID, "image-id", "", "Image identifier")
	camerasUploadCmd.Flags().StringVar(&imageFile, "file", "", "Image file to upload")
	_ = camerasUploadCmd.MarkFlagRequired("image-id")
	_ = camerasUploadCmd.MarkFlagRequired("file")

	camerasLocationCmd.Flags().Float64Var(&latitude, "lat", 0, "Latitude, -90 to 90")
	camerasLocationCmd.Flags().Float64Var(&longitude, "lon", 0, "Longitude, -180 to 180")
	camerasLocationCmd.Flags().StringVar(&address, "address", "", "Street address, setting it updates the location")

	camerasLimiterCmd.Flags().Float64Var(&limiterRate, "rate", 0, "Requests per second")
	camerasLimiterCmd.Flags().IntVar(&limiterBurst, "burst", 0, "Burst size")
	_ = camerasLimiterCmd.MarkFlagRequired("rate")
	_ = camerasLimiterCmd.MarkFlagRequired("burst")
}
