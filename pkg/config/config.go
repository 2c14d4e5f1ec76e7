package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Auth         AuthConfig
	Password     PasswordConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Media        MediaConfig
	Manifest     ManifestConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EQUIPMENT_APP_ENV" required:"true"`
	Port         string `envconfig:"EQUIPMENT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"EQUIPMENT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EQUIPMENT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"EQUIPMENT_DB_DSN"`
	Driver string `envconfig:"EQUIPMENT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EQUIPMENT_DB_HOST"`
	LegacyPort     int    `envconfig:"EQUIPMENT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EQUIPMENT_DB_USER"`
	LegacyPassword string `envconfig:"EQUIPMENT_DB_PASSWORD"`
	LegacyName     string `envconfig:"EQUIPMENT_DB_NAME"`
	LegacySSLMode  string `envconfig:"EQUIPMENT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EQUIPMENT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"EQUIPMENT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"EQUIPMENT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EQUIPMENT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EQUIPMENT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EQUIPMENT_REDIS_ADDR"`
	Password     string        `envconfig:"EQUIPMENT_REDIS_PASSWORD"`
	DB           int           `envconfig:"EQUIPMENT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EQUIPMENT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EQUIPMENT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EQUIPMENT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EQUIPMENT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EQUIPMENT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"EQUIPMENT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"EQUIPMENT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"EQUIPMENT_JWT_EXPIRATION_MINUTES" default:"720"`
}

// SessionTTL is the lifetime of a login session and of the cart bound to it.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// AuthConfig holds the two shared access secrets as Argon2id hash strings.
// There are no per-user accounts; one secret grants member access, the
// other grants administrator access.
type AuthConfig struct {
	MemberSecretHash string `envconfig:"EQUIPMENT_MEMBER_SECRET_HASH" required:"true"`
	AdminSecretHash  string `envconfig:"EQUIPMENT_ADMIN_SECRET_HASH" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"EQUIPMENT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EQUIPMENT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"EQUIPMENT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"EQUIPMENT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EQUIPMENT_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	LoginWindow  time.Duration `envconfig:"EQUIPMENT_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit int           `envconfig:"EQUIPMENT_RATE_LIMIT_LOGIN_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EQUIPMENT_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"EQUIPMENT_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"EQUIPMENT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"EQUIPMENT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"EQUIPMENT_GCS_BUCKET_NAME" required:"true"`
	// ObjectPrefix namespaces every uploaded image key inside the bucket.
	ObjectPrefix string `envconfig:"EQUIPMENT_GCS_OBJECT_PREFIX" default:"equipment-images"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"EQUIPMENT_MAX_UPLOAD_MB" default:"10"`
}

type ManifestConfig struct {
	RowsPerPage  int `envconfig:"EQUIPMENT_MANIFEST_ROWS_PER_PAGE" default:"22"`
	NameMaxWidth int `envconfig:"EQUIPMENT_MANIFEST_NAME_MAX_WIDTH" default:"28"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
