package env

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"rtsched/pkg/log"
)

var variables = new(Environment)

// Process the RTSCHED_* environment variables.
func Process() error {
	if err := envconfig.Process("rtsched", variables); err != nil {
		return errors.Wrap(err, "failed to process environment variables")
	}

	// set the log level
	if err := log.SetLevel(variables.LogLevel); err != nil {
		return errors.Wrap(err, "failed to set log level")
	}

	return nil
}

// Variables returns the processed environment variables.
func Variables() Environment {
	return *variables
}

// Environment defines the environment variables used by rtsched. Command
// line flags take precedence over them.
type Environment struct {
	LogLevel    string `default:"info" split_words:"true"`
	Seed        uint64 `default:"1"`
	Horizon     int    `default:"1000"`
	Processors  int    `default:"1"`
	JobsPerTask int    `default:"0" split_words:"true"` // 0 derives the count from the horizon
	Policy      string `default:"fifo"`
	Priority    string `default:"list"`
	ClockPeriod int    `default:"1" split_words:"true"`
}
