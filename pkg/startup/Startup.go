package startup

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/simplelauncher/sml/pkg/static"
	"github.com/spf13/viper"
)

// Environment seeds the process environment from an optional dotenv file and
// binds the logging configuration so the wrapper-script variables work the
// same way whether they come from the environment or a file.
func Environment() {
	if path := os.Getenv(static.ENV_FILE); path != "" {
		_ = godotenv.Load(path)
	}

	viper.SetDefault("logging.level", static.DEFAULT_LOG_LEVEL)
	viper.SetDefault("logging.file", "stderr")

	_ = viper.BindEnv("logging.level", static.ENV_LOGGING_LEVEL)
	_ = viper.BindEnv("logging.file", static.ENV_LOGGING_FILE)
}

// Logging resolves the configured log level and the zap output paths. The
// logging file accepts "stderr", "stdout" or a filesystem path.
func Logging() (string, []string, []string) {
	level := viper.GetString("logging.level")
	file := viper.GetString("logging.file")

	switch file {
	case "", "stderr":
		return level, []string{"stderr"}, []string{"stderr"}
	case "stdout":
		return level, []string{"stdout"}, []string{"stderr"}
	default:
		return level, []string{file}, []string{"stderr"}
	}
}
