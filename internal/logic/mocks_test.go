package logic

import (
	"context"
	"reflect"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// MockPgPool implements PgPool for testing
type MockPgPool struct {
	QueryFunc func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	ExecFunc  func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	ExecCalls []string
}

func (m *MockPgPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return &MockPgRows{}, nil
}

func (m *MockPgPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

func (m *MockPgPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.ExecCalls = append(m.ExecCalls, sql)
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

// MockPgRows is a data-driven pgx.Rows
type MockPgRows struct {
	Data  [][]any
	Index int
}

func (r *MockPgRows) Close()                                       {}
func (r *MockPgRows) Err() error                                   { return nil }
func (r *MockPgRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *MockPgRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *MockPgRows) Next() bool {
	r.Index++
	return r.Index <= len(r.Data)
}
func (r *MockPgRows) Scan(dest ...any) error {
	row := r.Data[r.Index-1]
	for i, val := range row {
		if i < len(dest) {
			assign(dest[i], val)
		}
	}
	return nil
}
func (r *MockPgRows) Values() ([]any, error) { return nil, nil }
func (r *MockPgRows) RawValues() [][]byte    { return nil }
func (r *MockPgRows) Conn() *pgx.Conn        { return nil }

// MockConn implements driver.Conn for testing
type MockConn struct {
	driver.Conn
	QueryFunc func(ctx context.Context, query string, args ...interface{}) (driver.Rows, error)
}

func (m *MockConn) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, query, args...)
	}
	return &MockCHRows{}, nil
}

// MockCHRows is a data-driven driver.Rows
type MockCHRows struct {
	driver.Rows
	Data  [][]interface{}
	Index int
}

func (m *MockCHRows) Next() bool {
	m.Index++
	return m.Index <= len(m.Data)
}
func (m *MockCHRows) Scan(dest ...interface{}) error {
	row := m.Data[m.Index-1]
	for i, val := range row {
		if i < len(dest) {
			assign(dest[i], val)
		}
	}
	return nil
}
func (m *MockCHRows) Close() error { return nil }
func (m *MockCHRows) Err() error   { return nil }

func assign(dest interface{}, val interface{}) {
	v := reflect.ValueOf(dest).Elem()
	if val == nil {
		v.Set(reflect.Zero(v.Type()))
		return
	}
	valV := reflect.ValueOf(val)
	if valV.Type().ConvertibleTo(v.Type()) {
		v.Set(valV.Convert(v.Type()))
		return
	}
	// Pointer destinations take the value by address, e.g. *int64 from int64.
	if v.Kind() == reflect.Ptr && valV.Type().ConvertibleTo(v.Type().Elem()) {
		p := reflect.New(v.Type().Elem())
		p.Elem().Set(valV.Convert(v.Type().Elem()))
		v.Set(p)
		return
	}
	v.Set(valV)
}

// MockFetcher implements ArtifactFetcher backed by an in-memory object map
type MockFetcher struct {
	Objects    map[string][]byte
	Errs       map[string]error
	FetchCalls int
}

func (m *MockFetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	m.FetchCalls++
	if err, ok := m.Errs[key]; ok {
		return nil, err
	}
	if body, ok := m.Objects[key]; ok {
		return body, nil
	}
	return nil, context.DeadlineExceeded
}

// MockRedis implements RedisClient with a single-value store
type MockRedis struct {
	Values   map[string]string
	SetCalls int
}

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := m.Values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (m *MockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.SetCalls++
	if m.Values == nil {
		m.Values = make(map[string]string)
	}
	switch v := value.(type) {
	case string:
		m.Values[key] = v
	case []byte:
		m.Values[key] = string(v)
	}
	return redis.NewStatusResult("OK", nil)
}
