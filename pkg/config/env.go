package config

const (
	EnvPrefix = "CATALOGCART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "CATALOGCART_APP_ENV"
	EnvPort     = "CATALOGCART_APP_PORT"
	EnvLogLevel = "CATALOGCART_LOG_LEVEL"

	EnvStorageDriver  = "CATALOGCART_STORAGE_DRIVER"
	EnvStorageCartKey = "CATALOGCART_STORAGE_CART_KEY"

	EnvDBDSN         = "CATALOGCART_DB_DSN"
	EnvDBDriver      = "CATALOGCART_DB_DRIVER"
	EnvDBAutoMigrate = "CATALOGCART_DB_AUTO_MIGRATE"

	EnvRedisURL  = "CATALOGCART_REDIS_URL"
	EnvRedisAddr = "CATALOGCART_REDIS_ADDR"

	EnvCatalogDir = "CATALOGCART_CATALOG_DIR"

	EnvSessionCookie = "CATALOGCART_SESSION_COOKIE"
)

const (
	StorageDriverMemory = "memory"
	StorageDriverRedis  = "redis"
	StorageDriverSQL    = "sql"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)
