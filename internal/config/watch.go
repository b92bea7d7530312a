package config

import (
	"chief_monitor/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch re-decodes the configuration whenever the config file is written and
// passes it to onChange. Invalid reloads are logged and the previous config stays active.
func Watch(v *viper.Viper, log *logger.Logger, onChange func(*Config)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			log.Errorw("config_reload_failed", "path", e.Name, "err", err)
			return
		}
		log.Infow("config_reloaded", "path", e.Name)
		onChange(cfg)
	})
	v.WatchConfig()
}
