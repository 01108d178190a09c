// Command relay-bridge drives the robot from the relay's serial event stream.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"roland-ctrl/bus"
	"roland-ctrl/services/bridge"
)

var (
	configFile string
	flagCfg    = bridge.DefaultConfig()

	rootCmd = &cobra.Command{
		Use:          "relay-bridge",
		Short:        "Bridge the handheld relay to the robot",
		Long:         "Read relay events from the serial device and turn them into robot motion commands.",
		SilenceUsage: true,
		RunE:         run,
	}
)

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "YAML config file")
	f.StringVar(&flagCfg.Serial.Port, "port", flagCfg.Serial.Port, "relay serial device")
	f.IntVar(&flagCfg.Serial.Baud, "baud", flagCfg.Serial.Baud, "serial baud rate")
	f.StringVar(&flagCfg.Robot.Addr, "robot", flagCfg.Robot.Addr, "robot command address (host:port)")
	f.StringVar(&flagCfg.MQTT.URL, "mqtt", flagCfg.MQTT.URL, "MQTT broker URL for the state mirror (empty disables)")
	f.StringVar(&flagCfg.MQTT.Prefix, "mqtt-prefix", flagCfg.MQTT.Prefix, "MQTT topic prefix")

	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

// loadConfig starts from the file (or defaults) and applies explicitly set flags.
func loadConfig(fs *pflag.FlagSet) (bridge.Config, error) {
	cfg := bridge.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = bridge.LoadConfig(configFile); err != nil {
			return cfg, err
		}
	}
	if fs.Changed("port") {
		cfg.Serial.Port = flagCfg.Serial.Port
	}
	if fs.Changed("baud") {
		cfg.Serial.Baud = flagCfg.Serial.Baud
	}
	if fs.Changed("robot") {
		cfg.Robot.Addr = flagCfg.Robot.Addr
	}
	if fs.Changed("mqtt") {
		cfg.MQTT.URL = flagCfg.MQTT.URL
	}
	if fs.Changed("mqtt-prefix") {
		cfg.MQTT.Prefix = flagCfg.MQTT.Prefix
	}
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, _ []string) error {
	// glog reads its settings from the standard flag set.
	_ = flag.CommandLine.Parse(nil)
	defer glog.Flush()

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.NewBus(16)

	if cfg.MQTT.URL != "" {
		pub, err := bridge.DialMQTT(cfg.MQTT.URL)
		if err != nil {
			glog.Warningf("mqtt: %v; mirror disabled", err)
		} else {
			defer pub.Close()
			go bridge.NewMirror(pub, cfg.MQTT.Prefix, b.NewConnection("mirror")).Run(ctx)
		}
	}

	glog.Infof("bridge: %s -> %s", cfg.Serial.Port, cfg.Robot.Addr)
	if err := bridge.New(cfg, b.NewConnection("bridge")).Run(ctx); err != nil {
		glog.Errorf("bridge: %v", err)
		return err
	}
	glog.Info("bridge: stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
