package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/cordialsys/hopbridge/config/constants"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var noSuchFile = "no such file"
var notFoundIn = "not found in"

func getViper() *viper.Viper {
	v := viper.New()
	// config file is hop.yaml
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType("yaml")

	// an explicit file wins over the search path
	if path := os.Getenv(constants.ConfigEnv); path != "" {
		v.SetConfigFile(path)
	}

	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath(constants.DefaultHome)

	return v
}

func missingConfig(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, noSuchFile) || strings.Contains(msg, notFoundIn)
}

// RequireConfig reads hop.yaml into unmarshalDst.
//  1. The file is HOP_CONFIG if set, otherwise hop.yaml in ., .. or HOP_HOME.
//  2. When section is set, only that key of the file is deserialized.
//  3. Values missing from the file are taken from defaults, when given.
//  4. With defaults, a missing file is not an error.
func RequireConfig(section string, unmarshalDst interface{}, defaults interface{}) error {
	v := getViper()
	err := v.ReadInConfig()
	if err != nil {
		if defaults != nil && missingConfig(err) {
			bz, err := yaml.Marshal(defaults)
			if err != nil {
				return err
			}
			return yaml.Unmarshal(bz, unmarshalDst)
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	// viper lowercases keys and cannot unmarshal part of a file, so the
	// section goes back through yaml
	var raw interface{} = v.AllSettings()
	if section != "" {
		raw = v.GetStringMap(section)
	}
	bz, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(bz, unmarshalDst); err != nil {
		return err
	}

	if defaults != nil {
		return ApplyDefaults(defaults, unmarshalDst, unmarshalDst)
	}
	return nil
}

// ConfigFileUsed reports the file RequireConfig would read, or "" when there is none.
func ConfigFileUsed() string {
	v := getViper()
	if err := v.ReadInConfig(); err != nil {
		return ""
	}
	return v.ConfigFileUsed()
}
