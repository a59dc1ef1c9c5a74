package lambda

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
)

// FromProxyRequest converts an API Gateway proxy event to a platform request.
// The body is passed through as the string the gateway delivered.
func FromProxyRequest(event events.APIGatewayProxyRequest) *PlatformRequest {
	return &PlatformRequest{
		Method:                event.HTTPMethod,
		Path:                  event.Path,
		PathParameters:        event.PathParameters,
		QueryStringParameters: event.QueryStringParameters,
		Headers:               event.Headers,
		Body:                  event.Body,
	}
}

// ToProxyResponse converts a result into an API Gateway proxy response.
// A continuation result has no response of its own, so the passed-on request is
// returned as a JSON document with status 200.
func (r *Result) ToProxyResponse() (events.APIGatewayProxyResponse, error) {
	if r.IsResponse() {
		return events.APIGatewayProxyResponse{
			StatusCode: r.Response.Status,
			Headers:    map[string]string{"Content-Type": r.Response.Type},
			Body:       r.Response.BodyString(),
		}, nil
	}

	if r.IsContinuation() {
		body, err := json.Marshal(r.Request)
		if err != nil {
			return events.APIGatewayProxyResponse{}, fmt.Errorf("failed to encode continuation request: %w", err)
		}
		return events.APIGatewayProxyResponse{
			StatusCode: DefaultStatus,
			Headers:    map[string]string{"Content-Type": TypeJSON},
			Body:       string(body),
		}, nil
	}

	return events.APIGatewayProxyResponse{}, fmt.Errorf("cannot convert empty result")
}
