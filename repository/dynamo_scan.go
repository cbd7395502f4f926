package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of *dynamodb.Client the adapters call.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// scanAll reads every item of a table. Filtering happens in Go so the same
// predicate logic serves every store.
func scanAll(ctx context.Context, client DynamoAPI, table string) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.ScanInput{TableName: &table}
	paginator := dynamodb.NewScanPaginator(client, input)

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s page failed: %w", table, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}
