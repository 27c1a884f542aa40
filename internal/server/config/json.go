package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/timecapsule/internal/flagx"
	"github.com/dmitrijs2005/timecapsule/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Empty
// values leave the current setting untouched.
type JsonConfig struct {
	HTTPAddr       string         `json:"http_addr"`
	DatabaseDSN    string         `json:"database_dsn"`
	SecretKey      string         `json:"secret_key"`
	SessionTTL     timex.Duration `json:"session_ttl"`
	Environment    string         `json:"environment"`
	TimeZone       string         `json:"time_zone"`
	LogLevel       string         `json:"log_level"`
	S3RootUser     string         `json:"s3_root_user"`
	S3RootPassword string         `json:"s3_root_password"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
	Credentials    struct {
		ACWPasswordHash string `json:"acw_password_hash"`
		SLSPasswordHash string `json:"sls_password_hash"`
	} `json:"credentials"`
}

// parseJson overlays values from the JSON file named by -c/-config.
// A missing flag is a no-op; an unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.Environment, c.Environment)
	setString(&config.TimeZone, c.TimeZone)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.Credentials.ACWPasswordHash, c.Credentials.ACWPasswordHash)
	setString(&config.Credentials.SLSPasswordHash, c.Credentials.SLSPasswordHash)
	if c.SessionTTL.Duration > 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
