// Package handler is the HTTP face of the engine. The same gin router serves
// the local server and, through the api-proxy adapter, API Gateway events.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sommelier"
	"sommelier/metrics"
)

// Recommender is implemented by *query.Engine.
type Recommender interface {
	GetRecommendations(ctx context.Context, query string) (sommelier.Recommendations, error)
}

// NewRouter wires POST /recommendations. withMetrics also exposes /metrics.
func NewRouter(r Recommender, withMetrics bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), instrument())
	router.POST("/recommendations", Recommendations(r))
	if withMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	return router
}

// Recommendations answers with the two rankings, MISSING_QUERY when the body
// has no query and UNKNOWN_ERROR for anything else.
func Recommendations(r Recommender) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := sommelier.Logger

		query, err := queryFrom(c)
		if err != nil {
			fail(c, err)
			return
		}
		result, err := r.GetRecommendations(c.Request.Context(), query)
		if err != nil {
			fail(c, err)
			return
		}
		log.Info("Recommendations sent", "search", len(result.Search), "recommend", len(result.Recommend))
		c.JSON(http.StatusOK, result)
	}
}

// queryFrom accepts only a JSON object body. An absent or null query is
// ErrMissingQuery, any other shape is a plain error.
func queryFrom(c *gin.Context) (string, error) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		return "", err
	}
	if body == nil {
		return "", errors.New("request body is not a JSON object")
	}
	v, ok := body["query"]
	if !ok || v == nil {
		return "", sommelier.ErrMissingQuery
	}
	query, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("query is %T, not a string", v)
	}
	return query, nil
}

func fail(c *gin.Context, err error) {
	log := sommelier.Logger
	if errors.Is(err, sommelier.ErrMissingQuery) {
		log.Warn("Request rejected", "error", err)
		c.JSON(http.StatusBadRequest, sommelier.ErrorResponse{Error: sommelier.CodeMissingQuery})
		return
	}
	log.Error("Request failed", "error", err)
	c.JSON(http.StatusInternalServerError, sommelier.ErrorResponse{Error: sommelier.CodeUnknownError})
}

func instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Lambda adapts the router to API Gateway proxy events.
func Lambda(router *gin.Engine) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	adapter := ginadapter.New(router)
	return adapter.ProxyWithContext
}
