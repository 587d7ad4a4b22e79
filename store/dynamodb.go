package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// DynamoStore keeps each collection in the table prefix+collection, with
// a numeric _id hash key.
type DynamoStore struct {
	client DynamoAPI
	prefix string
}

// NewDynamoStore loads the default AWS configuration and builds a store.
// A non-empty endpoint overrides the service URL (DynamoDB Local).
func NewDynamoStore(ctx context.Context, prefix, endpoint, region string) (*DynamoStore, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewDynamoStoreWithClient(client, prefix), nil
}

// NewDynamoStoreWithClient builds a store over an existing client.
func NewDynamoStoreWithClient(client DynamoAPI, prefix string) *DynamoStore {
	return &DynamoStore{client: client, prefix: prefix}
}

// EnsureTables creates the table of each collection. Tables that already
// exist are left alone.
func (s *DynamoStore) EnsureTables(ctx context.Context, collections []string) error {
	for _, c := range collections {
		_, err := s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
			TableName: aws.String(s.tableName(c)),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(IDField), AttributeType: types.ScalarAttributeTypeN},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(IDField), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		})
		var inUse *types.ResourceInUseException
		if err != nil && !errors.As(err, &inUse) {
			return fmt.Errorf("creating table for %s: %w", c, err)
		}
	}
	return nil
}

func (s *DynamoStore) tableName(collection string) string {
	return s.prefix + collection
}

func dynamoKey(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		IDField: &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
	}
}

func (s *DynamoStore) Exists(ctx context.Context, collection string, id int64) (bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(s.tableName(collection)),
		Key:                      dynamoKey(id),
		ConsistentRead:           aws.Bool(true),
		ProjectionExpression:     aws.String("#id"),
		ExpressionAttributeNames: map[string]string{"#id": IDField},
	})
	if err != nil {
		return false, fmt.Errorf("getting %s: %w", collection, err)
	}
	return len(out.Item) > 0, nil
}

func (s *DynamoStore) Get(ctx context.Context, collection string, id int64) (Document, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName(collection)),
		Key:            dynamoKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", collection, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return unmarshalItem(out.Item)
}

func (s *DynamoStore) Put(ctx context.Context, collection string, id int64, doc Document) error {
	item, err := attributevalue.MarshalMap(toAttributes(withID(doc, id)))
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", collection, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName(collection)),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", collection, err)
	}
	return nil
}

func (s *DynamoStore) Patch(ctx context.Context, collection string, id int64, fields Document) (bool, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != IDField {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return s.Exists(ctx, collection, id)
	}
	slices.Sort(keys)

	names := map[string]string{"#id": IDField}
	values := make(map[string]types.AttributeValue, len(keys))
	expr := "SET "
	for i, k := range keys {
		av, err := attributevalue.Marshal(toAttribute(fields[k]))
		if err != nil {
			return false, fmt.Errorf("marshaling %s.%s: %w", collection, k, err)
		}
		name, placeholder := "#f"+strconv.Itoa(i), ":v"+strconv.Itoa(i)
		names[name] = k
		values[placeholder] = av
		if i > 0 {
			expr += ", "
		}
		expr += name + " = " + placeholder
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName(collection)),
		Key:                       dynamoKey(id),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	var failed *types.ConditionalCheckFailedException
	if errors.As(err, &failed) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("updating %s: %w", collection, err)
	}
	return true, nil
}

func (s *DynamoStore) Remove(ctx context.Context, collection string, id int64) (bool, error) {
	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.tableName(collection)),
		Key:          dynamoKey(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("deleting %s: %w", collection, err)
	}
	return len(out.Attributes) > 0, nil
}

func (s *DynamoStore) Scan(ctx context.Context, collection string, match Predicate) ([]Document, error) {
	p := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:      aws.String(s.tableName(collection)),
		ConsistentRead: aws.Bool(true),
	})
	var docs []Document
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", collection, err)
		}
		for _, item := range page.Items {
			doc, err := unmarshalItem(item)
			if err != nil {
				return nil, fmt.Errorf("decoding %s: %w", collection, err)
			}
			docs = append(docs, doc)
		}
	}
	sortByID(docs)
	return filter(docs, match), nil
}

func (s *DynamoStore) Close() error {
	return nil
}

// toAttribute sends decimals as N attributes using their exact digits.
func toAttribute(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return attributevalue.Number(d.String())
	}
	return v
}

func toAttributes(doc Document) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = toAttribute(v)
	}
	return out
}

// unmarshalItem decodes an item. Numbers come back as json.Number so no
// digits are lost, and timestamps as RFC 3339 strings.
func unmarshalItem(item map[string]types.AttributeValue) (Document, error) {
	var doc map[string]any
	err := attributevalue.UnmarshalMapWithOptions(item, &doc, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, err
	}
	for k, v := range doc {
		if n, ok := v.(attributevalue.Number); ok {
			doc[k] = json.Number(n)
		}
	}
	return Document(doc), nil
}
