package envutil

import (
	"os"
	"strings"
)

// EnvVar selects the deployment environment
const EnvVar = "ZOOM_APP_ENV"

// IsDev checks if we're running in development mode, where cookies are
// allowed over plain HTTP for local testing
func IsDev() bool {
	env := strings.ToLower(os.Getenv(EnvVar))
	return env == "development" || env == "dev"
}
