package main

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"github.com/paneq/awesome-openclaw-slack/pkg/app"
)

// loadConfig 加载配置文件，不存在时使用默认值
func loadConfig() (*app.Config, error) {
	v := viper.New()
	def := app.DefaultConfig()

	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.mode", def.Server.Mode)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.output", def.Log.Output)
	v.SetDefault("log.file_path", def.Log.FilePath)

	v.SetDefault("database.path", def.Database.Path)

	v.SetDefault("history.enabled", def.History.Enabled)
	v.SetDefault("history.retention", def.History.Retention)
	v.SetDefault("history.prune_cron", def.History.PruneCron)

	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	v.SetDefault("metrics.path", def.Metrics.Path)

	v.SetDefault("function.timeout", def.Function.Timeout)

	v.SetDefault("slack.default_account", def.Slack.DefaultAccount)
	v.SetDefault("slack.api_url", def.Slack.APIURL)
	v.SetDefault("slack.timeout", def.Slack.Timeout)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.openclaw-slack")
	}

	// 环境变量，如 OCSLACK_SERVER_PORT
	v.SetEnvPrefix("OCSLACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	config := &app.Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, err
	}
	return config, nil
}
