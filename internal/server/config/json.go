package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/credvault/internal/flagx"
	"github.com/dmitrijs2005/credvault/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Interval
// fields use timex.Duration, which accepts both "30m" and integer
// nanoseconds. Pointer fields distinguish "absent" from "false"/"0".
type JsonConfig struct {
	HTTPAddr                    string         `json:"http_addr"`
	GRPCAddr                    string         `json:"grpc_addr"`
	DatabaseDSN                 *string        `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	JWTAlgorithm                string         `json:"jwt_algorithm"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	ResetTokenValidityDuration  timex.Duration `json:"reset_token_validity_duration"`
	HashCost                    int            `json:"hash_cost"`
	ResetBaseURL                string         `json:"reset_base_url"`
	ProjectName                 string         `json:"project_name"`
	SMTPHost                    string         `json:"smtp_host"`
	SMTPPort                    int            `json:"smtp_port"`
	SMTPUsername                string         `json:"smtp_username"`
	SMTPPassword                string         `json:"smtp_password"`
	SMTPSender                  string         `json:"smtp_sender"`
	SMTPUseTLS                  *bool          `json:"smtp_use_tls"`
	SMTPSuppressSend            *bool          `json:"smtp_suppress_send"`
	LogLevel                    string         `json:"log_level"`
	NotifyQueueSize             int            `json:"notify_queue_size"`
}

// parseJson overlays values from a JSON file onto config. The path comes
// from -c/-config or $CREDVAULT_CONFIG; without one nothing is loaded.
// Keys missing from the file leave the current values untouched.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigPath()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.JWTAlgorithm, c.JWTAlgorithm)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ResetTokenValidityDuration.Duration > 0 {
		config.ResetTokenValidityDuration = c.ResetTokenValidityDuration.Duration
	}
	setInt(&config.HashCost, c.HashCost)
	setString(&config.ResetBaseURL, c.ResetBaseURL)
	setString(&config.ProjectName, c.ProjectName)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUsername, c.SMTPUsername)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPSender, c.SMTPSender)
	if c.SMTPUseTLS != nil {
		config.SMTPUseTLS = *c.SMTPUseTLS
	}
	if c.SMTPSuppressSend != nil {
		config.SMTPSuppressSend = *c.SMTPSuppressSend
	}
	setString(&config.LogLevel, c.LogLevel)
	setInt(&config.NotifyQueueSize, c.NotifyQueueSize)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
