package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyIOTConfigFile string = "IOT_CONFIG_FILE"

	EnvKeyIOTDBType string = "IOT_DB_TYPE"
	EnvKeyIOTDbPath string = "IOT_DB_PATH"
	EnvKeyIOTDbDSN  string = "IOT_DB_DSN"

	EnvKeyIOTHttpHostPort string = "IOT_HTTP_HOST_PORT"
	EnvKeyIOTGrpcHostPort string = "IOT_GRPC_HOST_PORT"
	EnvKeyIOTAPIVersion   string = "IOT_API_VERSION"

	EnvKeyIOTDefaultRate  string = "IOT_DEFAULT_RATE"
	EnvKeyIOTDefaultBurst string = "IOT_DEFAULT_BURST"

	EnvKeyIOTBlobBackend          string = "IOT_BLOB_BACKEND"
	EnvKeyIOTBlobContainer        string = "IOT_BLOB_CONTAINER"
	EnvKeyIOTBlobConnectionString string = "IOT_BLOB_CONNECTION_STRING"
	EnvKeyIOTBlobMaxAttempts      string = "IOT_BLOB_MAX_ATTEMPTS"
	EnvKeyIOTBlobInitialDelay     string = "IOT_BLOB_INITIAL_DELAY"
	EnvKeyIOTBlobMaxDelay         string = "IOT_BLOB_MAX_DELAY"

	EnvKeyIOTMqttBroker     string = "IOT_EVENTS_MQTT_BROKER"
	EnvKeyIOTMqttClientID   string = "IOT_EVENTS_MQTT_CLIENT_ID"
	EnvKeyIOTMqttTopicRoot  string = "IOT_EVENTS_MQTT_TOPIC_ROOT"
	EnvKeyIOTAmqpURL        string = "IOT_EVENTS_AMQP_URL"
	EnvKeyIOTAmqpExchange   string = "IOT_EVENTS_AMQP_EXCHANGE"
	EnvKeyIOTInfluxURL      string = "IOT_EVENTS_INFLUX_URL"
	EnvKeyIOTInfluxToken    string = "IOT_EVENTS_INFLUX_TOKEN"
	EnvKeyIOTInfluxOrg      string = "IOT_EVENTS_INFLUX_ORG"
	EnvKeyIOTInfluxBucket   string = "IOT_EVENTS_INFLUX_BUCKET"
	EnvKeyIOTMetricsEnabled string = "IOT_METRICS_ENABLED"

	EnvKeyIOTLogDir string = "IOT_LOG_DIR"

	LoggerNameIOTCore         string = "iot_core"
	LoggerNameRestfulServer   string = "restful_server"
	LoggerNameGrpcServer      string = "grpc_server"
	LoggerNameEvents          string = "events"
	LoggerNameBlob            string = "blob"
	LoggerNameDatabase        string = "database"
	LoggerFieldIOTCategory    string = "category"
	LoggerCategoryIOTCamera   string = "camera"
	LoggerCategoryIOTSensor   string = "sensor"
	LoggerCategoryIOTLocation string = "location"
	LoggerCategoryIOTImage    string = "image"
)
