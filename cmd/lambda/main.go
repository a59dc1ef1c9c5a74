package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"gateway-shim/internal/config"
	"gateway-shim/pkg/lambda"
	"gateway-shim/pkg/server"
)

var container *server.Container

func init() {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	container, err = server.NewContainer(cfg, logger)
	if err != nil {
		panic("Failed to initialize container: " + err.Error())
	}
}

// arcHandler returns the result as-is: either {body, status, type} or the passed-on
// request. Handler faults fail the invocation.
func arcHandler(ctx context.Context, event events.APIGatewayProxyRequest) (*lambda.Result, error) {
	return container.Handler(ctx, lambda.FromProxyRequest(event))
}

// proxyHandler answers in API Gateway proxy integration format
func proxyHandler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	result, err := container.Handler(ctx, lambda.FromProxyRequest(event))
	if err == nil {
		var resp events.APIGatewayProxyResponse
		if resp, err = result.ToProxyResponse(); err == nil {
			return resp, nil
		}
	}

	container.Logger.WithFields(logrus.Fields{
		"method": event.HTTPMethod,
		"path":   event.Path,
	}).WithError(err).Error("Invocation failed")

	return events.APIGatewayProxyResponse{
		StatusCode: 500,
		Headers:    map[string]string{"Content-Type": lambda.TypeJSON},
		Body:       `{"error": "Internal server error"}`,
	}, nil
}

func main() {
	switch container.Config.OutputFormat {
	case "proxy":
		awslambda.Start(proxyHandler)
	default:
		awslambda.Start(arcHandler)
	}
}
