// Command lambda runs the ledgerchat backend behind API Gateway. The JWT
// authorizer at the gateway validates identity; this entrypoint maps the
// authorizer claims to the X-User-ID header the HTTP layer expects.
package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/config"
	"ledgerchat-backend/internal/di"
)

var (
	chiLambda *chiadapter.ChiLambdaV2
	container *di.Container
	coldStart = true
)

func init() {
	started := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	container, err = di.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	router, ok := container.Router.(*chi.Mux)
	if !ok {
		log.Fatal("router is not a chi.Mux")
	}
	chiLambda = chiadapter.NewV2(router)

	logger.Info("lambda cold start completed", zap.Duration("elapsed", time.Since(started)))
}

// Handler processes one API Gateway V2 request.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}

	if req.RequestContext.Authorizer != nil && req.RequestContext.Authorizer.Lambda != nil {
		claims := req.RequestContext.Authorizer.Lambda
		if userID, ok := claims["sub"].(string); ok && userID != "" {
			req.Headers["X-User-ID"] = userID
		}
	}

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		coldStart = false
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	if resp.StatusCode >= 500 {
		container.Logger.Error("lambda error response",
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.Int("status_code", resp.StatusCode),
		)
	}
	return resp, err
}

func main() {
	lambda.Start(Handler)
}
