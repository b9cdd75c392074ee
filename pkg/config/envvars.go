package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "SKILLBAZAAR"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv                 = "SKILLBAZAAR_APP_ENV"
	EnvPort                   = "SKILLBAZAAR_APP_PORT"
	EnvDBDSN                  = "SKILLBAZAAR_DB_DSN"
	EnvDBHost                 = "SKILLBAZAAR_DB_HOST"
	EnvDBUser                 = "SKILLBAZAAR_DB_USER"
	EnvDBName                 = "SKILLBAZAAR_DB_NAME"
	EnvRedisURL               = "SKILLBAZAAR_REDIS_URL"
	EnvJWTSecret              = "SKILLBAZAAR_JWT_SECRET"
	EnvJWTIssuer              = "SKILLBAZAAR_JWT_ISSUER"
	EnvJWTExpMins             = "SKILLBAZAAR_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SKILLBAZAAR_REFRESH_TOKEN_TTL_MINUTES"
	EnvEsewaSecretKey         = "SKILLBAZAAR_ESEWA_SECRET_KEY"
)

var fallbackDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
