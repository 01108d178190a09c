package bridge

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"roland-ctrl/errcode"
)

// Config is the bridge configuration. It can be loaded from YAML and is
// overridden field by field from the command line.
type Config struct {
	Serial SerialConfig `yaml:"serial" json:"serial"`
	Robot  RobotConfig  `yaml:"robot" json:"robot"`
	MQTT   MQTTConfig   `yaml:"mqtt" json:"mqtt"`
}

// SerialConfig describes the relay's CDC device. USB ignores the line coding
// but the port is still opened at Baud.
type SerialConfig struct {
	Port          string `yaml:"port" json:"port"`
	Baud          int    `yaml:"baud" json:"baud"`
	ReadTimeoutMS int    `yaml:"read_timeout_ms" json:"read_timeout_ms"` // per read
}

type RobotConfig struct {
	Addr string `yaml:"addr" json:"addr"` // host:port of the robot command socket
}

// MQTTConfig enables the state mirror when URL is set.
type MQTTConfig struct {
	URL    string `yaml:"url" json:"url"`
	Prefix string `yaml:"prefix" json:"prefix"`
}

const (
	DefaultPort          = "/dev/ttyACM0"
	DefaultBaud          = 115200
	DefaultReadTimeoutMS = 10
	DefaultRobotAddr     = "roland:1110"
	DefaultMQTTPrefix    = "roland"
)

func DefaultConfig() Config {
	return Config{
		Serial: SerialConfig{
			Port:          DefaultPort,
			Baud:          DefaultBaud,
			ReadTimeoutMS: DefaultReadTimeoutMS,
		},
		Robot: RobotConfig{Addr: DefaultRobotAddr},
		MQTT:  MQTTConfig{Prefix: DefaultMQTTPrefix},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Keys absent from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errcode.Wrap(errcode.InvalidValue, "config", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Serial.Port == "":
		return errcode.Wrap(errcode.InvalidValue, "config", "serial.port is empty", nil)
	case c.Serial.Baud <= 0:
		return errcode.Wrap(errcode.InvalidValue, "config", "serial.baud must be positive", nil)
	case c.Serial.ReadTimeoutMS < 0:
		return errcode.Wrap(errcode.InvalidValue, "config", "serial.read_timeout_ms is negative", nil)
	case c.Robot.Addr == "" || !strings.Contains(c.Robot.Addr, ":"):
		return errcode.Wrap(errcode.InvalidValue, "config", "robot.addr must be host:port", nil)
	}
	return nil
}
