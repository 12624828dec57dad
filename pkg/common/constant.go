package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyDatabaseURL  string = "DATABASE_URL"
	EnvKeyLogLevel     string = "LOG_LEVEL"
	EnvKeyTritonDBType string = "TRITON_DB_TYPE"
	EnvKeyTritonDbPath string = "TRITON_DB_PATH"

	EnvKeyTritonHttpHostPort string = "TRITON_HTTP_HOST_PORT"

	EnvKeyTritonDefaultRate  string = "TRITON_DEFAULT_RATE"
	EnvKeyTritonDefaultBurst string = "TRITON_DEFAULT_BURST"

	EnvKeyCommandTTLSeconds       string = "COMMAND_TTL_SECONDS"
	EnvKeyDescentFreshnessSeconds string = "DESCENT_FRESHNESS_SECONDS"
	EnvKeyExpireSweepSeconds      string = "EXPIRE_SWEEP_SECONDS"
	EnvKeyDBPoolSize              string = "DB_POOL_SIZE"
	EnvKeyAdminResetEnabled       string = "ADMIN_RESET_ENABLED"

	LoggerNameAUVCore       string = "auv_core"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameSweeper       string = "sweeper"
	LoggerFieldAUVCategory  string = "category"
	LoggerCategoryIngest    string = "ingest"
	LoggerCategoryCommand   string = "command"
	LoggerCategoryDescent   string = "descent"
	LoggerCategoryAscent    string = "ascent"
	LoggerCategoryTraject   string = "trajectory"
	LoggerCategoryAdmin     string = "admin"
)
