package config

const (
	// EnvPrefix is handed to envconfig; every field sets an explicit key.
	EnvPrefix = "MINIMART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "MINIMART_APP_ENV"
	EnvPort                   = "MINIMART_APP_PORT"
	EnvDBDSN                  = "MINIMART_DB_DSN"
	EnvDBHost                 = "MINIMART_DB_HOST"
	EnvDBUser                 = "MINIMART_DB_USER"
	EnvDBName                 = "MINIMART_DB_NAME"
	EnvRedisURL               = "MINIMART_REDIS_URL"
	EnvJWTSecret              = "MINIMART_JWT_SECRET"
	EnvJWTIssuer              = "MINIMART_JWT_ISSUER"
	EnvJWTExpMins             = "MINIMART_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "MINIMART_REFRESH_TOKEN_TTL_MINUTES"
	EnvVerificationCodeTTL    = "MINIMART_VERIFICATION_CODE_TTL"
	EnvCORSOrigins            = "MINIMART_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
