package worker

import (
	"context"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// MockClickHouseConn implements driver.Conn for testing, capturing every row
// appended through PrepareBatch.
type MockClickHouseConn struct {
	driver.Conn
	mu       sync.Mutex
	Batches  []*MockBatch
	BatchErr error
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	if m.BatchErr != nil {
		return nil, m.BatchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &MockBatch{}
	m.Batches = append(m.Batches, b)
	return b, nil
}

func (m *MockClickHouseConn) AppendedRows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, b := range m.Batches {
		total += len(b.rows)
	}
	return total
}

func (m *MockClickHouseConn) SentBatches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sent := 0
	for _, b := range m.Batches {
		if b.Sent {
			sent++
		}
	}
	return sent
}

// MockBatch implements driver.Batch
type MockBatch struct {
	driver.Batch
	mu   sync.Mutex
	rows [][]interface{}
	Sent bool
}

func (b *MockBatch) Append(v ...interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows = append(b.rows, v)
	return nil
}

func (b *MockBatch) Send() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Sent = true
	return nil
}
