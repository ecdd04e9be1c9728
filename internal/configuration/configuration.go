// Package configuration reads settings files of KEY=value lines and maps them
// onto typed [Settings].
package configuration

import (
	"strconv"
	"strings"
)

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

// ConfigProviderImpl reads settings files through a generic reader and
// converts single keys of the result.
type ConfigProviderImpl struct {
	GenericConfigReader genericConfigProvider
}

// NewConfigProvider returns a pointer to a new [ConfigProviderImpl] reading
// through godotenv, keeping only keys with the [SettingPrefix].
func NewConfigProvider() *ConfigProviderImpl {
	return &ConfigProviderImpl{
		GenericConfigReader: &GodotenvProvider{Prefix: SettingPrefix},
	}
}

func (c *ConfigProviderImpl) ReadGeneric(filenames ...string) (envMap map[string]string, err error) {
	return c.GenericConfigReader.Read(filenames...)
}

func (c *ConfigProviderImpl) MapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return strings.TrimSpace(value)
	}

	return ""
}

func (c *ConfigProviderImpl) MapKeyToInt(envMap map[string]string, key string) int {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return -1
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}

	return intValue
}

func (c *ConfigProviderImpl) MapKeyToInt64(envMap map[string]string, key string) int64 {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return -1
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return -1
	}

	return intValue
}

// MapKeyToBool treats "yes", "true" and "1" as true, in any case.
func (c *ConfigProviderImpl) MapKeyToBool(envMap map[string]string, key string) bool {
	switch strings.ToLower(c.MapKeyToString(envMap, key)) {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}
