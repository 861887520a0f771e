package vcstore

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/function61/gokit/logex"
)

// table schema: hash key "id" (S), no range key
type DynamoDbStore struct {
	svc       dynamodbiface.DynamoDBAPI
	tableName *string
	logl      *logex.Leveled
}

var _ Store = (*DynamoDbStore)(nil)

func NewDynamoDbStore(svc dynamodbiface.DynamoDBAPI, tableName string, logger *log.Logger) *DynamoDbStore {
	return &DynamoDbStore{
		svc:       svc,
		tableName: aws.String(tableName),
		logl:      logex.Levels(logger),
	}
}

func (d *DynamoDbStore) GetItem(ctx context.Context, id string) (*Item, error) {
	result, err := d.svc.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: d.tableName,
		Key: dynamoDbRecord{
			"id": mkDynamoString(id),
		},
		// visit deduplication must see the previous invocation's write
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem %s: %w", id, err)
	}

	if len(result.Item) == 0 {
		return nil, nil
	}

	return d.deserializeItem(result.Item)
}

func (d *DynamoDbStore) PutItem(ctx context.Context, item Item) error {
	if _, err := d.svc.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: d.tableName,
		Item:      serializeItemToDynamoDb(item),
	}); err != nil {
		return fmt.Errorf("PutItem %s: %w", item.Id, err)
	}

	return nil
}

func (d *DynamoDbStore) IncrementCount(ctx context.Context, id string, delta int64) (int64, error) {
	result, err := d.svc.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName: d.tableName,
		Key: dynamoDbRecord{
			"id": mkDynamoString(id),
		},
		// "count" is a reserved word, hence the placeholder
		UpdateExpression: aws.String("SET #count = if_not_exists(#count, :zero) + :delta"),
		ExpressionAttributeNames: map[string]*string{
			"#count": aws.String("count"),
		},
		ExpressionAttributeValues: dynamoDbRecord{
			":zero":  mkDynamoNumber(0),
			":delta": mkDynamoNumber(delta),
		},
		ReturnValues: aws.String(dynamodb.ReturnValueUpdatedNew),
	})
	if err != nil {
		return 0, fmt.Errorf("UpdateItem %s: %w", id, err)
	}

	countAttr, found := result.Attributes["count"]
	if !found || countAttr.N == nil {
		return 0, fmt.Errorf("UpdateItem %s: count missing from response", id)
	}

	return d.count(id, *countAttr.N)
}

// counts are integers, but a hand-edited item can hold a fraction which we truncate
func (d *DynamoDbStore) count(id string, number string) (int64, error) {
	count, exact, err := parseCount(number)
	if err != nil {
		return 0, fmt.Errorf("item %s: %w", id, err)
	}

	if !exact {
		d.logl.Debug.Printf("item %s: count %s truncated to %d", id, number, count)
	}

	return count, nil
}

type dynamoDbRecord map[string]*dynamodb.AttributeValue

func mkDynamoString(value string) *dynamodb.AttributeValue {
	return &dynamodb.AttributeValue{
		S: aws.String(value),
	}
}

func mkDynamoNumber(value int64) *dynamodb.AttributeValue {
	return &dynamodb.AttributeValue{
		N: aws.String(strconv.FormatInt(value, 10)),
	}
}

func serializeItemToDynamoDb(item Item) dynamoDbRecord {
	record := dynamoDbRecord{
		"id": mkDynamoString(item.Id),
	}

	if item.Count != 0 {
		record["count"] = mkDynamoNumber(item.Count)
	}

	if item.LastVisit != "" {
		record["lastVisit"] = mkDynamoString(item.LastVisit)
	}

	return record
}

func (d *DynamoDbStore) deserializeItem(record dynamoDbRecord) (*Item, error) {
	item := &Item{}

	if id, found := record["id"]; found && id.S != nil {
		item.Id = *id.S
	}

	if count, found := record["count"]; found && count.N != nil {
		var err error
		item.Count, err = d.count(item.Id, *count.N)
		if err != nil {
			return nil, err
		}
	}

	if lastVisit, found := record["lastVisit"]; found && lastVisit.S != nil {
		item.LastVisit = *lastVisit.S
	}

	return item, nil
}
