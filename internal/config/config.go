package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds the runtime configuration of the client. Each field
// corresponds to an environment variable. Optional values fall back to a
// default instead of halting.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	APIBaseURL      string // base URL of the remote FarmTrack API
	ProbeURL        string // connectivity probe URL (optional)
	HTTPTimeoutSec  int    // overall timeout for API calls in seconds
	StoreBackend    string // credential store backend: memory | file | redis | sql
	StoreDir        string // directory for the file backend
	StorePassphrase string // passphrase sealing the file backend
	DBDSN           string // MySQL DSN for the sql backend
	AMQPURL         string // broker URL for the sign-out bridge (optional)
}

// ServerConfig holds the configuration of the development stub server.
type ServerConfig struct {
	Env          string // application environment
	Port         string // HTTP port to listen on
	JWTSecret    string // secret used to sign issued tokens
	AccessTTLMin int    // issued token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for the seeded user passwords
}

// Load reads the client configuration. Required variables are enforced by
// must() and missing values cause the program to exit with a fatal log
// message.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),                        // environment (dev/test/prod)
		APIBaseURL:      must("API_BASE_URL"),                   // remote API root
		ProbeURL:        os.Getenv("PROBE_URL"),                 // empty -> built-in default
		HTTPTimeoutSec:  intDefault("HTTP_TIMEOUT_SEC", 30),     // API call timeout
		StoreBackend:    strDefault("CRED_STORE", "file"),       // credential store backend
		StoreDir:        strDefault("CRED_STORE_DIR", ".creds"), // file backend directory
		StorePassphrase: os.Getenv("CRED_STORE_PASSPHRASE"),     // required for the file backend
		DBDSN:           os.Getenv("DB_DSN"),                    // required for the sql backend
		AMQPURL:         os.Getenv("AMQP_URL"),                  // empty disables the bridge
	}
}

// LoadServer reads the stub server configuration.
func LoadServer() ServerConfig {
	return ServerConfig{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: intDefault("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:   intDefault("BCRYPT_COST", 10),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// strDefault returns the variable's value or a default when unset.
func strDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intDefault returns the variable parsed as an int, or a default when unset.
// A value that does not parse is fatal.
func intDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int in env var %s: %v", key, err)
	}
	return n
}
