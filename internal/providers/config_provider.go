package providers

import (
	"fmt"
	"path/filepath"
	"pvd/internal/structures"
	"strings"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "PVD_LOG_LEVEL")
	viper.BindEnv("monitor.pollInterval", "PVD_POLL_INTERVAL")
	viper.BindEnv("monitor.sourceUrl", "PVD_SOURCE_URL")
	viper.BindEnv("monitor.selfId", "PVD_SELF_ID")
	viper.BindEnv("storage.path", "PVD_STORAGE_PATH")
	viper.BindEnv("alerts.webhookUrl", "PVD_ALERT_WEBHOOK")
	viper.BindEnv("cache.enabled", "PVD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "PVD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	if conf.Analytics.DefaultWindowDays <= 0 {
		conf.Analytics.DefaultWindowDays = 30
	}
	if conf.Analytics.MaxWindowDays <= 0 {
		conf.Analytics.MaxWindowDays = 365
	}

	conf.AppName = "ProfileVisitorDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
