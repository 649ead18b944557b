package outbox

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// mockRepository is an in-memory Repository implementation for testing.
// It honors the GetUnprocessed ordering contract so processor tests can
// assert batch order.
type mockRepository struct {
	mu       sync.Mutex
	messages map[string]*Message

	saveErr      error
	fetchErr     error
	updateErr    error
	incrementErr error

	fetchCalls  int
	updateCalls []statusUpdate
}

type statusUpdate struct {
	id     string
	status Status
	cause  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{messages: make(map[string]*Message)}
}

func (m *mockRepository) seed(msgs ...*Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range msgs {
		clone := *msg
		m.messages[msg.ID] = &clone
	}
}

func (m *mockRepository) get(id string) *Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok {
		clone := *msg
		return &clone
	}
	return nil
}

func (m *mockRepository) setFetchErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErr = err
}

func (m *mockRepository) getFetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}

func (m *mockRepository) Save(ctx context.Context, msg *Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return "", m.saveErr
	}
	clone := *msg
	m.messages[msg.ID] = &clone
	return msg.ID, nil
}

func (m *mockRepository) SaveBatch(ctx context.Context, msgs []*Message) ([]string, error) {
	ids := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		id, err := m.Save(ctx, msg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockRepository) GetUnprocessed(ctx context.Context, limit int, priorityOrder []Priority) ([]*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetchCalls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}

	if len(priorityOrder) == 0 {
		priorityOrder = DefaultPriorityOrder()
	}
	rank := make(map[Priority]int, len(priorityOrder))
	for i, p := range priorityOrder {
		rank[p] = i
	}

	now := time.Now().UTC()
	var eligible []*Message
	for _, msg := range m.messages {
		if msg.Eligible(now) {
			clone := *msg
			eligible = append(eligible, &clone)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		if rank[eligible[i].Priority] != rank[eligible[j].Priority] {
			return rank[eligible[i].Priority] < rank[eligible[j].Priority]
		}
		return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
	})

	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", id, ErrMessageNotFound)
	}
	clone := *msg
	return &clone, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id string, status Status, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCalls = append(m.updateCalls, statusUpdate{id: id, status: status, cause: cause})
	if m.updateErr != nil {
		return m.updateErr
	}

	msg, ok := m.messages[id]
	if !ok {
		return fmt.Errorf("message %s: %w", id, ErrMessageNotFound)
	}
	msg.Status = status
	if status == StatusFailed && cause != nil {
		msg.LastError = cause.Error()
	}
	return nil
}

func (m *mockRepository) UpdateStatusBatch(ctx context.Context, ids []string, status Status) error {
	for _, id := range ids {
		if err := m.UpdateStatus(ctx, id, status, nil); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockRepository) IncrementAttempt(ctx context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.incrementErr != nil {
		return 0, m.incrementErr
	}
	msg, ok := m.messages[id]
	if !ok {
		return 0, fmt.Errorf("message %s: %w", id, ErrMessageNotFound)
	}
	msg.Attempts++
	return msg.Attempts, nil
}

func (m *mockRepository) GetFailed(ctx context.Context, limit int, maxAttempts int) ([]*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fetchErr != nil {
		return nil, m.fetchErr
	}

	var failed []*Message
	for _, msg := range m.messages {
		if msg.Status == StatusFailed && msg.Attempts < maxAttempts {
			clone := *msg
			failed = append(failed, &clone)
		}
	}
	sort.Slice(failed, func(i, j int) bool {
		return failed[i].CreatedAt.Before(failed[j].CreatedAt)
	})
	if len(failed) > limit {
		failed = failed[:limit]
	}
	return failed, nil
}

func (m *mockRepository) Requeue(ctx context.Context, id string, processAfter time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg, ok := m.messages[id]
	if !ok || msg.Status != StatusFailed {
		return fmt.Errorf("failed message %s: %w", id, ErrMessageNotFound)
	}
	after := processAfter
	msg.Status = StatusPending
	msg.ProcessAfter = &after
	return nil
}

func (m *mockRepository) DeleteByStatusAndAge(ctx context.Context, olderThan time.Time, status Status) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for id, msg := range m.messages {
		if msg.Status == status && msg.CreatedAt.Before(olderThan) {
			delete(m.messages, id)
			count++
		}
	}
	return count, nil
}

func (m *mockRepository) Schedule(ctx context.Context, msg *Message, processAfter time.Time) (string, error) {
	after := processAfter
	msg.ProcessAfter = &after
	return m.Save(ctx, msg)
}
