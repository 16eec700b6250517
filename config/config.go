package config

import (
	"lendex/core"

	"github.com/asaskevich/govalidator"
	configUtil "github.com/fox-one/pkg/config"
)

// Load load config file, environment variables prefixed with LENDEX override it
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("LENDEX")
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	config.Defaults()
	config.Contracts.Normalize()

	if _, err := govalidator.ValidateStruct(config); err != nil {
		return err
	}

	return nil
}
