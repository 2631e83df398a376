package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"liyu1981.xyz/iot-camera-service/pkg/api"
	"liyu1981.xyz/iot-camera-service/pkg/models"
)

var (
	sensorCameraID string
	sensorKind     string
	sensorID       string
	sensorName     string
	sensorVersion  string
	sensorData     string
)

var sensorsCmd = &cobra.Command{
	Use:   "sensors",
	Short: "Manage the motion, light and temperature sensors of a camera",
}

// sensorTarget resolves the --camera and --kind flags shared by every sensor command.
func sensorTarget() (uuid.UUID, models.SensorType, error) {
	id, err := parseID("camera id", sensorCameraID)
	if err != nil {
		return uuid.Nil, "", err
	}
	kind, ok := models.ParseSensorType(sensorKind)
	if !ok {
		return uuid.Nil, "", fmt.Errorf("unknown sensor kind %q, want one of motion, light, temperature", sensorKind)
	}
	return id, kind, nil
}

func sensorBody(kind models.SensorType) api.SensorRequest {
	return api.SensorRequest{
		Name:       sensorName,
		Version:    sensorVersion,
		SensorType: string(kind),
		Data:       sensorData,
	}
}

var sensorsCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Attach a sensor to a camera",
	Example: `  iotctl sensors create --camera "camera_id" --kind temperature --name "t1" --data '{"celsius":21}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, kind, err := sensorTarget()
		if err != nil {
			return err
		}
		sensor, err := newClient().CreateSensor(cmd.Context(), id, kind, sensorBody(kind))
		if err != nil {
			return err
		}
		return printSensors(*sensor)
	},
}

var sensorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the sensors of one kind on a camera",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, kind, err := sensorTarget()
		if err != nil {
			return err
		}
		sensors, err := newClient().ListSensors(cmd.Context(), id, kind)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(sensors)
		}
		return printSensors(sensors...)
	},
}

var sensorsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show one sensor",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, kind, err := sensorTarget()
		if err != nil {
			return err
		}
		sid, err := parseID("sensor id", sensorID)
		if err != nil {
			return err
		}
		sensor, err := newClient().GetSensor(cmd.Context(), id, kind, sid)
		if err != nil {
			return err
		}
		return printSensors(*sensor)
	},
}

var sensorsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace the name, version and data of a sensor",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, kind, err := sensorTarget()
		if err != nil {
			return err
		}
		sid, err := parseID("sensor id", sensorID)
		if err != nil {
			return err
		}
		sensor, err := newClient().UpdateSensor(cmd.Context(), id, kind, sid, sensorBody(kind))
		if err != nil {
			return err
		}
		return printSensors(*sensor)
	},
}

var sensorsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a sensor from a camera",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, kind, err := sensorTarget()
		if err != nil {
			return err
		}
		sid, err := parseID("sensor id", sensorID)
		if err != nil {
			return err
		}
		if err := newClient().DeleteSensor(cmd.Context(), id, kind, sid); err != nil {
			return err
		}
		fmt.Printf("Deleted sensor %s\n", sid)
		return nil
	},
}

func printSensors(sensors ...api.Sensor) error {
	if jsonOutput && len(sensors) == 1 {
		return printJSON(sensors[0])
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tNAME\tVERSION\tDATA")
	fmt.Fprintln(w, "--\t----\t----\t-------\t----")
	for _, s := range sensors {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.SensorID, s.SensorType, s.Name, s.Version, s.Data)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(sensorsCmd)

	all := []*cobra.Command{sensorsCreateCmd, sensorsListCmd, sensorsGetCmd, sensorsUpdateCmd, sensorsDeleteCmd}
	for _, c := range all {
		sensorsCmd.AddCommand(c)
		c.Flags().StringVar(&sensorCameraID, "camera", "", "ID of the camera")
		c.Flags().StringVar(&sensorKind, "kind", "", "Sensor kind: motion, light or temperature")
		_ = c.MarkFlagRequired("camera")
		_ = c.MarkFlagRequired("kind")
	}

	for _, c := range []*cobra.Command{sensorsGetCmd, sensorsUpdateCmd, sensorsDeleteCmd} {
		c.Flags().StringVar(&sensorID, "id", "", "ID of the sensor")
		_ = c.MarkFlagRequired("id")
	}

	for _, c := range []*cobra.Command{sensorsCreateCmd, sensorsUpdateCmd} {
		c.Flags().StringVar(&sensorName, "name", "", "Sensor name")
		c.Flags().StringVar(&sensorVersion, "version", "", "Sensor version")
		c.Flags().StringVar(&sensorData, "data", "", "Sensor payload, usually JSON")
		_ = c.MarkFlagRequired("name")
	}
}
