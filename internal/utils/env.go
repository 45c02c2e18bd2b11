package utils

import (
	"os"
	"strconv"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
)

// GetEnv reads key from the environment, falling back to defaultVal when
// unset. A nil log is allowed so callers can resolve config before the
// logger exists.
func GetEnv(key, defaultVal string, log *logger.Logger) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		debugEnv(log, key, "Environment variable not found, using default", "default", defaultVal)
		return defaultVal
	}
	debugEnv(log, key, "Environment variable found", "value", val)
	return val
}

// GetEnvAsInt is GetEnv for integer settings. Unset or unparseable values
// fall back to defaultVal.
func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		debugEnv(log, key, "Environment variable not found, using default", "default", defaultVal)
		return defaultVal
	}
	i, err := strconv.Atoi(valStr)
	if err != nil {
		debugEnv(log, key, "Environment variable is not an int, using default", "provided", valStr, "default", defaultVal, "error", err)
		return defaultVal
	}
	debugEnv(log, key, "Environment variable found", "value", i)
	return i
}

func debugEnv(log *logger.Logger, key, msg string, kv ...any) {
	if log == nil {
		return
	}
	log.With("env_var", key).Debug(msg, kv...)
}
