package main

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	fiberadapter "github.com/awslabs/aws-lambda-go-api-proxy/fiber"

	"neonvisitors/internal/app"
	"neonvisitors/internal/config"
	"neonvisitors/internal/infra/logging"
	"neonvisitors/internal/infra/ratelimit"
)

var (
	fiberLambda     *fiberadapter.FiberLambda
	fiberLambdaOnce sync.Once
)

// setup builds the app on the first invocation so the container's
// configuration is read once per cold start.
func setup() {
	cfg := config.Load()
	// Lambda captures stdout; no file rotation.
	logging.InitLogger("", 0, 0, 0, false, cfg.Logger.Level)

	rdb := ratelimit.NewClient(ratelimit.RedisConfig{
		Addr: cfg.RateLimiter.RedisHost,
		DB:   cfg.RateLimiter.RedisDB,
	})
	fiberLambda = fiberadapter.New(app.SetupApp(cfg, rdb))
}

// Handler proxies API Gateway events into the Fiber app.
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	fiberLambdaOnce.Do(setup)
	return fiberLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
