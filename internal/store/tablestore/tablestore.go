package tablestore

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"workspace-service/internal/model"
	"workspace-service/internal/store"
	"workspace-service/prometheus"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/bytedance/sonic"
)

// TimeLayout is fixed width so that lexical order of stored values equals time order
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

var noRetry = policy.RetryOptions{MaxRetries: -1}

var tableNames = []string{"users", "workspaces", "members", "projects", "tasks"}

// Backend serves the document store from Azure Table Storage. Each collection is one
// table with a single partition. Writes are not transactional across tables.
type Backend struct {
	svc    *aztables.ServiceClient
	prefix string
	stores store.Stores
}

func New(connStr, prefix string) (*Backend, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute,
				RetryDelay:    time.Second,
				MaxRetryDelay: 15 * time.Second,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}

	b := &Backend{svc: svc, prefix: prefix}
	b.stores = store.Stores{
		Users:      newCollection[model.User](b.client("users"), "users"),
		Workspaces: newCollection[model.Workspace](b.client("workspaces"), "workspaces"),
		Members:    newCollection[model.Member](b.client("members"), "members"),
		Projects:   newCollection[model.Project](b.client("projects"), "projects"),
		Tasks:      newCollection[model.Task](b.client("tasks"), "tasks"),
	}
	return b, nil
}

func (b *Backend) client(name string) *aztables.Client {
	return b.svc.NewClient(b.prefix + name)
}

// EnsureTables creates every collection table, ignoring ones that already exist
func (b *Backend) EnsureTables(ctx context.Context) error {
	for _, name := range tableNames {
		if _, err := b.client(name).CreateTable(ctx, nil); err != nil {
			var respErr *azcore.ResponseError
			if !(errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists)) {
				return fmt.Errorf("create table %s: %w", b.prefix+name, err)
			}
		}
	}
	return nil
}

func (b *Backend) Stores() store.Stores { return b.stores }

func (b *Backend) WithTx(ctx context.Context, fn func(s store.Stores) error) error {
	return fn(b.stores)
}

func (b *Backend) Atomic() bool { return false }

func (b *Backend) Close() error { return nil }

type collection[E any, PT interface {
	*E
	store.Document
}] struct {
	table     *aztables.Client
	partition string
}

func newCollection[E any, PT interface {
	*E
	store.Document
}](table *aztables.Client, partition string) *collection[E, PT] {
	return &collection[E, PT]{table: table, partition: partition}
}

type envelope struct {
	Data string `json:"Data"`
}

func (c *collection[E, PT]) Get(ctx context.Context, id string) (*E, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	resp, err := c.table.GetEntity(ctx, c.partition, id, nil)
	if err != nil {
		return nil, translate(err)
	}
	return decode[E](resp.Value)
}

func (c *collection[E, PT]) List(ctx context.Context, q store.Query) (store.DocumentList[E], error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	docs, err := c.scan(ctx, q.Filters)
	if err != nil {
		return store.DocumentList[E]{}, err
	}

	// Table storage only orders by key, so ordering happens after the scan
	if q.OrderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			cmp := store.Compare(PT(docs[i]).Fields()[q.OrderBy], PT(docs[j]).Fields()[q.OrderBy])
			if q.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	total := len(docs)
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return store.DocumentList[E]{Documents: docs, Total: total}, nil
}

func (c *collection[E, PT]) Count(ctx context.Context, filters ...store.Filter) (int, error) {
	defer prometheus.TrackDBOperation("count")(time.Now())
	docs, err := c.scan(ctx, filters)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

func (c *collection[E, PT]) Create(ctx context.Context, doc *E) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	payload, err := c.encode(doc)
	if err != nil {
		return err
	}
	// A retried insert whose first response was lost would come back as a conflict
	_, err = c.table.AddEntity(policy.WithRetryOptions(ctx, noRetry), payload, nil)
	return translate(err)
}

func (c *collection[E, PT]) Update(ctx context.Context, doc *E) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	payload, err := c.encode(doc)
	if err != nil {
		return err
	}
	etag := azcore.ETagAny
	_, err = c.table.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &etag,
		UpdateMode: aztables.UpdateModeReplace,
	})
	return translate(err)
}

func (c *collection[E, PT]) Delete(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	_, err := c.table.DeleteEntity(ctx, c.partition, id, nil)
	return translate(err)
}

func (c *collection[E, PT]) DeleteWhere(ctx context.Context, filters ...store.Filter) (int, error) {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	docs, err := c.scan(ctx, filters)
	if err != nil {
		return 0, err
	}
	for _, doc := range docs {
		if _, err := c.table.DeleteEntity(ctx, c.partition, PT(doc).DocumentID(), nil); err != nil {
			if err := translate(err); !errors.Is(err, store.ErrNotFound) {
				return 0, err
			}
		}
	}
	return len(docs), nil
}

// scan pages through every entity matching the server-side filter, then applies the
// filters Table storage cannot evaluate
func (c *collection[E, PT]) scan(ctx context.Context, filters []store.Filter) ([]*E, error) {
	filter, empty, err := ODataFilter(c.partition, filters)
	if err != nil {
		return nil, err
	}
	docs := make([]*E, 0)
	if empty {
		return docs, nil
	}

	pager := c.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, translate(err)
		}
		for _, raw := range resp.Entities {
			doc, err := decode[E](raw)
			if err != nil {
				return nil, err
			}
			if store.Match(PT(doc).Fields(), clientSide(filters)) {
				docs = append(docs, doc)
			}
		}
	}
	return docs, nil
}

// encode stores the full document as a gob blob next to its filterable fields.
// Gob keeps fields that the API hides from JSON, such as password hashes.
func (c *collection[E, PT]) encode(doc *E) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}

	entity := map[string]any{
		"PartitionKey": c.partition,
		"RowKey":       PT(doc).DocumentID(),
		"Data":         base64.StdEncoding.EncodeToString(buf.Bytes()),
	}
	for field, value := range PT(doc).Fields() {
		entity[field] = propertyValue(value)
	}
	return sonic.Marshal(entity)
}

func decode[E any](raw []byte) (*E, error) {
	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	blob, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, err
	}
	doc := new(E)
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func propertyValue(v any) any {
	v = store.Normalize(v)
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(TimeLayout)
	}
	return v
}

// ODataFilter renders filters for the Table service. empty is true when the filters
// can match nothing, such as an In over no values.
func ODataFilter(partition string, filters []store.Filter) (string, bool, error) {
	parts := []string{"PartitionKey eq " + literal(partition)}
	for _, f := range filters {
		var op string
		switch f.Op {
		case store.OpEqual:
			op = "eq"
		case store.OpNotEqual:
			op = "ne"
		case store.OpLessThan:
			op = "lt"
		case store.OpGreaterOrEqual:
			op = "ge"
		case store.OpLessOrEqual:
			op = "le"
		case store.OpIn:
			values, _ := f.Value.([]any)
			if len(values) == 0 {
				return "", true, nil
			}
			alts := make([]string, len(values))
			for i, v := range values {
				alts[i] = fmt.Sprintf("%s eq %s", f.Field, literal(v))
			}
			parts = append(parts, "("+strings.Join(alts, " or ")+")")
			continue
		case store.OpContains:
			continue
		default:
			return "", false, fmt.Errorf("unsupported filter operator %q", f.Op)
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", f.Field, op, literal(f.Value)))
	}
	return strings.Join(parts, " and "), false, nil
}

func clientSide(filters []store.Filter) []store.Filter {
	var out []store.Filter
	for _, f := range filters {
		if f.Op == store.OpContains {
			out = append(out, f)
		}
	}
	return out
}

func literal(v any) string {
	switch val := propertyValue(v).(type) {
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusNotFound:
			return store.ErrNotFound
		case http.StatusConflict:
			return store.ErrConflict
		}
	}
	return err
}
