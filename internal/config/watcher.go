package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// ConfigWatcher 配置监听器,配置文件变更时重新加载并通知回调
type ConfigWatcher struct {
	config     *Config
	configPath string
	viper      *viper.Viper
	logger     logrus.FieldLogger
	callbacks  []func(*Config)
	mu         sync.RWMutex
	stopped    bool
	stopMu     sync.RWMutex
}

// NewConfigWatcher 创建配置监听器
func NewConfigWatcher(cfg *Config, configPath string, logger logrus.FieldLogger) *ConfigWatcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)

	return &ConfigWatcher{
		config:     cfg,
		configPath: configPath,
		viper:      v,
		logger:     logger.WithField("component", "config_watcher"),
		callbacks:  make([]func(*Config), 0),
	}
}

// OnConfigChange 注册配置变更回调
func (w *ConfigWatcher) OnConfigChange(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start 启动配置监听
func (w *ConfigWatcher) Start() error {
	if err := w.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	w.viper.WatchConfig()
	w.viper.OnConfigChange(func(e fsnotify.Event) {
		w.logger.WithField("file", e.Name).Info("config file changed")
		w.Reload()
	})
	return nil
}

// Reload 从已读取的配置重新解析并通知回调
func (w *ConfigWatcher) Reload() {
	w.stopMu.RLock()
	stopped := w.stopped
	w.stopMu.RUnlock()
	if stopped {
		return
	}

	newCfg, err := unmarshal(w.viper)
	if err != nil {
		w.logger.WithError(err).Error("failed to reload config")
		return
	}

	w.mu.RLock()
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	// 回调在锁外执行
	for _, callback := range callbacks {
		callback(newCfg)
	}

	w.mu.Lock()
	w.config = newCfg
	w.mu.Unlock()
}

// Stop 停止配置监听
func (w *ConfigWatcher) Stop() {
	w.stopMu.Lock()
	defer w.stopMu.Unlock()
	w.stopped = true
}

// GetConfig 获取当前配置
func (w *ConfigWatcher) GetConfig() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// LogLevelReloader 返回按新配置调整日志级别的回调
func LogLevelReloader(logger *logrus.Logger) func(*Config) {
	return func(cfg *Config) {
		level, err := logrus.ParseLevel(cfg.Log.Level)
		if err != nil {
			logger.WithField("level", cfg.Log.Level).Warn("ignoring invalid log level")
			return
		}
		if logger.GetLevel() != level {
			logger.SetLevel(level)
			logger.WithField("level", level.String()).Info("log level changed")
		}
	}
}
