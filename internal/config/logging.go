package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a logrus logger from the logging configuration, tagged with the
// deployment mode and, when running as a function, its name and stage
func NewLogger(cfg LogConfig) (*logrus.Entry, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	fields := logrus.Fields{"deployment_mode": GetDeploymentMode()}
	if sc := GetServerlessConfig(); sc.IsLambda {
		fields["function_name"] = sc.FunctionName
		fields["stage"] = sc.Stage
		fields["region"] = sc.Region
	}

	return logger.WithFields(fields), nil
}
