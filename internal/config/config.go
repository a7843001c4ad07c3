package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string  `yaml:"log-level" env-default:"info"`
	HTTPPort   string  `yaml:"http-port" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env-default:"8080"`
	Redis      Redis   `yaml:"redis"`
	Session    Session `yaml:"session"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Session holds the liveness and persistence tunables of the replication layer.
type Session struct {
	CheckpointTTL     time.Duration `yaml:"checkpoint-ttl" env-default:"30m"`
	HeartbeatInterval time.Duration `yaml:"heartbeat-interval" env-default:"5s"`
	HeartbeatTimeout  time.Duration `yaml:"heartbeat-timeout" env-default:"15s"`
	HostSoftWait      time.Duration `yaml:"host-soft-wait" env-default:"30s"`
	HostRebuildAfter  time.Duration `yaml:"host-rebuild-after" env-default:"2m"`
	GuestRetryDelay   time.Duration `yaml:"guest-retry-delay" env-default:"3s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
