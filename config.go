package hello

import "os"

// NameEnvVar is the environment variable the displayed name is read from.
const NameEnvVar = "NAME"

// DisplayConfig is everything the greeting page varies on.
type DisplayConfig struct {
	// Name is shown as "NAME=<Name>". An empty Name stands for an unset
	// variable and renders as "NAME=".
	Name string
}

// EnvReader defines an interface for environment variable access, so the
// environment can be swapped out in tests.
type EnvReader interface {
	LookupEnv(key string) (string, bool)
}

// OSEnv implements EnvReader using the process environment.
type OSEnv struct{}

// LookupEnv returns the value of the environment variable named by key and
// whether it was set.
func (OSEnv) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnv implements EnvReader on top of a map.
type MapEnv map[string]string

// LookupEnv returns the value stored under key and whether it was present.
func (m MapEnv) LookupEnv(key string) (string, bool) {
	val, ok := m[key]
	return val, ok
}

// LoadDisplayConfig reads the DisplayConfig from env. It is meant to be called
// once per render; the result is not cached. A nil env reads the process
// environment.
func LoadDisplayConfig(env EnvReader) DisplayConfig {
	if env == nil {
		env = OSEnv{}
	}
	name, _ := env.LookupEnv(NameEnvVar)
	return DisplayConfig{Name: name}
}
