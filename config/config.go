package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/icodeforyou/elpris-go/logging"
	"github.com/icodeforyou/elpris-go/types"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16
	// If not assigned, the server will serve embedded files.
	// If assigned, the server will serve files from the directory,
	// that must contain a "static" and "templates" directory.
	// This is useful for development.
	WwwDir *string `mapstructure:"www_dir"`
}

type AppConfigDatabase struct {
	// Path to the SQLite price cache, no caching if empty
	Path string
	// How many days prices should be stored in database before they get purged
	DataRetentionDays *int `mapstructure:"data_retention_days"`
	// How many days daily backup files should be stored before they get deleted
	BackupRetentionDays *int `mapstructure:"backup_retention_days"`
}

func (d AppConfigDatabase) GetDataRetentionDays() int {
	if d.DataRetentionDays == nil {
		return 90
	}
	return *d.DataRetentionDays
}

func (d AppConfigDatabase) GetBackupRetentionDays() int {
	if d.BackupRetentionDays == nil {
		return 30
	}
	return *d.BackupRetentionDays
}

type AppConfigEnergyPrice struct {
	Area string `mapstructure:"area"` // "SE1", "SE2", "SE3", "SE4"
	// Providers in fallback order: "elprisetjustnu", "nordpool", default: both in that order
	Providers []string `mapstructure:"providers"`
	RunAt     string   `mapstructure:"run_at"`
	Tax       float64  `mapstructure:"tax_including_vat"` // Energy tax in SEK/kWh including VAT (energiskatt inkl. moms)
	GridFee   float64  `mapstructure:"grid_fee"`          // Grid transfer fee in SEK/kWh (elöverföring)
	// Charging power in kW used to estimate the cost of the charging window
	ChargingPower *float64 `mapstructure:"charging_power"`
}

func (e AppConfigEnergyPrice) GetArea() (types.Area, error) {
	return types.ParseArea(e.Area)
}

func (e AppConfigEnergyPrice) GetProviders() []string {
	if len(e.Providers) == 0 {
		return []string{"elprisetjustnu", "nordpool"}
	}
	return e.Providers
}

func (e AppConfigEnergyPrice) GetRunAt() string {
	if e.RunAt == "" {
		return "15 13,14,15 * * *"
	}
	return e.RunAt
}

type AppConfigAnalysis struct {
	// Length of the charging window, "2h", "4h", "8h" or a plain number of intervals
	Charging *string `mapstructure:"charging"`
	// List prices by price, most expensive first, instead of by time
	Sorted bool `mapstructure:"sorted"`
}

func (a AppConfigAnalysis) GetWindowLength() (int, error) {
	if a.Charging == nil {
		return 0, nil
	}
	return ParseWindowLength(*a.Charging)
}

type AppConfigMqtt struct {
	// MQTT publishing is disabled if no host is assigned
	Host     string
	Port     int16
	Username string
	Password string
	ClientId *string `mapstructure:"client_id"`
	// Topics are published as <topic_prefix>/<area>/analysis, default: "elpris"
	TopicPrefix *string `mapstructure:"topic_prefix"`
}

func (m AppConfigMqtt) Enabled() bool {
	return m.Host != ""
}

func (m AppConfigMqtt) GetClientId() string {
	if m.ClientId == nil {
		return "elpris"
	}
	return *m.ClientId
}

func (m AppConfigMqtt) GetTopicPrefix() string {
	if m.TopicPrefix == nil {
		return "elpris"
	}
	return strings.TrimSuffix(*m.TopicPrefix, "/")
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
	// Rotated JSON log file, no file logging if not assigned
	File *string `mapstructure:"file"`
	// Max size in megabytes before the log file gets rotated, default: 10
	FileMaxSize *int `mapstructure:"file_max_size"`
	// How many rotated log files to keep, default: 5
	FileMaxBackups *int `mapstructure:"file_max_backups"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return logging.LogAttrFormatJSON
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return logging.LogAttrFormatText
	}
	return logging.LogAttrFormatJSON
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

func (l AppConfigLogging) GetFileMaxSize() int {
	if l.FileMaxSize == nil {
		return 10
	}
	return *l.FileMaxSize
}

func (l AppConfigLogging) GetFileMaxBackups() int {
	if l.FileMaxBackups == nil {
		return 5
	}
	return *l.FileMaxBackups
}

type AppConfig struct {
	Api         AppConfigApi
	Database    AppConfigDatabase
	EnergyPrice AppConfigEnergyPrice `mapstructure:"energy_price"`
	Analysis    AppConfigAnalysis    `mapstructure:"analysis"`
	Mqtt        AppConfigMqtt        `mapstructure:"mqtt"`
	Logging     AppConfigLogging     `mapstructure:"logging"`
}

// Command line flags bound to config keys when present in the flag set.
var flagKeys = map[string]string{
	"zone":     "energy_price.area",
	"sorted":   "analysis.sorted",
	"charging": "analysis.charging",
}

// Load reads the config file at path, or config/config.yaml if path is
// empty, in which case a missing file is not an error. Environment
// variables (ENERGY_PRICE_AREA etc.) and flags override the file.
func Load(path string, flags *pflag.FlagSet) (*AppConfig, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper knows about
	for _, key := range []string{
		"api.address", "api.port", "api.www_dir",
		"database.path", "database.data_retention_days", "database.backup_retention_days",
		"energy_price.area", "energy_price.run_at", "energy_price.tax_including_vat",
		"energy_price.grid_fee", "energy_price.charging_power",
		"analysis.charging", "analysis.sorted",
		"mqtt.host", "mqtt.port", "mqtt.username", "mqtt.password", "mqtt.client_id", "mqtt.topic_prefix",
		"logging.console_level", "logging.db_level", "logging.file",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("unable to bind env for %s: %w", key, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("unable to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var c AppConfig

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	return &c, nil
}

// ParseWindowLength parses a charging window such as "4h" or "8". An empty
// string means no window.
func ParseWindowLength(s string) (int, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "h")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid charging window %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid charging window %q: must not be negative", s)
	}
	return n, nil
}
