package config

// EnvPrefix is the envconfig namespace for every setting in this service.
const EnvPrefix = "EQUIPMENT"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Env var names shared between Load, tests, and error messages.
const (
	EnvAppEnv    = "EQUIPMENT_APP_ENV"
	EnvPort      = "EQUIPMENT_APP_PORT"
	EnvDBDSN     = "EQUIPMENT_DB_DSN"
	EnvDBHost    = "EQUIPMENT_DB_HOST"
	EnvDBUser    = "EQUIPMENT_DB_USER"
	EnvDBName    = "EQUIPMENT_DB_NAME"
	EnvRedisURL  = "EQUIPMENT_REDIS_URL"
	EnvJWTSecret = "EQUIPMENT_JWT_SECRET"
	EnvJWTIssuer = "EQUIPMENT_JWT_ISSUER"
	EnvJWTExp    = "EQUIPMENT_JWT_EXPIRATION_MINUTES"

	EnvMemberSecretHash = "EQUIPMENT_MEMBER_SECRET_HASH"
	EnvAdminSecretHash  = "EQUIPMENT_ADMIN_SECRET_HASH"

	EnvGCPProjectID = "EQUIPMENT_GCP_PROJECT_ID"
	EnvGCSBucket    = "EQUIPMENT_GCS_BUCKET_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
