package config

import (
	"os"
	"strconv"
)

func IsDebug() bool {
	return os.Getenv("DOCCHAT_DEBUG") == "1"
}

// IsLogJSON is read before the logger exists, so it bypasses Parse.
func IsLogJSON() bool {
	v, _ := strconv.ParseBool(os.Getenv("DOCCHAT_LOG_JSON"))
	return v
}
