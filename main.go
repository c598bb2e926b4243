package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"waitroom/internal/config"
	"waitroom/internal/engine"
	logger "waitroom/internal/logging"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "waitroom",
	Short: "Go/no-go reaction mini-game for waiting rooms",
	Long: `waitroom runs a short go/no-go reaction test: click when the target
appears, hold back when a distractor appears. Results can be exported as JSON or YAML.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "config", "directory containing config.yaml")
	rootCmd.AddCommand(serveCmd, playCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration, builds the logger and an engine whose
// settings follow config reloads from the next session on.
func bootstrap(console bool) (*config.Config, *zap.Logger, *engine.Engine, error) {
	conf, v, err := config.Load(configDir)
	if err != nil {
		return nil, nil, nil, err
	}
	if !console {
		conf.Logging.Console = false
	}

	log, err := logger.Init(conf.Logging)
	if err != nil {
		return nil, nil, nil, err
	}

	eng, err := engine.New(conf.Game.Settings(), log)
	if err != nil {
		return nil, nil, nil, err
	}

	watchGameSettings(v, log, eng)
	log.Info("Configuration loaded successfully", zap.String("dir", configDir))
	return conf, log, eng, nil
}

func watchGameSettings(v *viper.Viper, log *zap.Logger, eng *engine.Engine) {
	config.Watch(v, log, func(conf *config.Config) {
		if err := eng.Configure(conf.Game.Settings()); err != nil {
			log.Error("Rejected reloaded game settings", zap.Error(err))
			return
		}
		log.Info("Game settings reloaded", zap.Int("total_rounds", conf.Game.TotalRounds))
	})
}
