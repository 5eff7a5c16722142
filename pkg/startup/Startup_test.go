package startup

import (
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/simplelauncher/sml/pkg/static"
	"github.com/spf13/viper"
)

func TestLoggingDefaults(t *testing.T) {
	viper.Reset()
	Environment()

	level, outputs, errOutputs := Logging()

	assert.Equal(t, static.DEFAULT_LOG_LEVEL, level)
	assert.Equal(t, []string{"stderr"}, outputs)
	assert.Equal(t, []string{"stderr"}, errOutputs)
}

func TestLoggingFromEnvironment(t *testing.T) {
	viper.Reset()
	t.Setenv(static.ENV_LOGGING_LEVEL, "debug")
	t.Setenv(static.ENV_LOGGING_FILE, "stdout")
	Environment()

	level, outputs, _ := Logging()

	assert.Equal(t, "debug", level)
	assert.Equal(t, []string{"stdout"}, outputs)
}

func TestLoggingFilePath(t *testing.T) {
	viper.Reset()
	t.Setenv(static.ENV_LOGGING_FILE, "/var/log/launcher.log")
	Environment()

	_, outputs, errOutputs := Logging()

	assert.Equal(t, []string{"/var/log/launcher.log"}, outputs)
	assert.Equal(t, []string{"stderr"}, errOutputs)
}
