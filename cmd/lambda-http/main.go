// Command lambda-http serves the API behind API Gateway HTTP APIs.
//
//	GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http
package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"career-backend/internal/bootstrap"
	"career-backend/internal/shared/config"
	"career-backend/internal/shared/telemetry"
)

// proxy is built on the first invocation and reused while the execution
// environment stays warm.
var proxy = sync.OnceValues(func() (*ginadapter.GinLambdaV2, error) {
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		return nil, err
	}
	// The sweeper lives as long as this execution environment.
	app.Start(context.Background())
	return ginadapter.NewV2(app.Router), nil
})

func handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	p, err := proxy()
	if err != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"err": err})
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error":{"code":"internal","message":"service unavailable"}}`,
		}, nil
	}
	return p.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handle)
}
