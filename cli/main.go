package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"sommelier"
)

func main() {
	// Parse command line arguments
	queryPtr := flag.String("query", "", "What kind of wine are you looking for")
	function := flag.String("function", "sommelier-recommendations", "Name of the Lambda function")
	flag.Parse()

	if *queryPtr == "" {
		log.Fatalf("query parameter is required")
	}

	// Load the AWS configuration
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	client := lambda.NewFromConfig(cfg)

	payload, err := requestPayload(*queryPtr)
	if err != nil {
		log.Fatalf("failed to marshal payload, %v", err)
	}

	result, err := client.Invoke(context.TODO(), &lambda.InvokeInput{
		FunctionName: aws.String(*function),
		Payload:      payload,
	})
	if err != nil {
		log.Fatalf("failed to invoke lambda function, %v", err)
	}

	// Check for function error
	if result.FunctionError != nil {
		log.Fatalf("lambda function returned an error: %s", aws.ToString(result.FunctionError))
	}

	recommendations, err := parseResponse(result.Payload)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Println("Search results\n==============")
	for i, text := range recommendations.Search {
		fmt.Printf("%d. %s\n", i+1, text)
	}
	fmt.Println("\nRecommendations\n===============")
	for i, text := range recommendations.Recommend {
		fmt.Printf("%d. %s\n", i+1, text)
	}
}

// requestPayload wraps the query the way API Gateway would deliver it.
func requestPayload(query string) ([]byte, error) {
	body, err := json.Marshal(sommelier.QueryRequest{Query: &query})
	if err != nil {
		return nil, err
	}
	return json.Marshal(events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/recommendations",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	})
}

func parseResponse(payload []byte) (sommelier.Recommendations, error) {
	var resp events.APIGatewayProxyResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return sommelier.Recommendations{}, fmt.Errorf("failed to unmarshal response payload, %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e sommelier.ErrorResponse
		if err := json.Unmarshal([]byte(resp.Body), &e); err != nil || e.Error == "" {
			return sommelier.Recommendations{}, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, resp.Body)
		}
		return sommelier.Recommendations{}, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, e.Error)
	}
	var recommendations sommelier.Recommendations
	if err := json.Unmarshal([]byte(resp.Body), &recommendations); err != nil {
		return sommelier.Recommendations{}, fmt.Errorf("failed to unmarshal recommendations, %v", err)
	}
	return recommendations, nil
}
