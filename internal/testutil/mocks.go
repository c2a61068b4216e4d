// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/incidentkit/incident-sync/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	mu      sync.Mutex
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.NowTime
}

// Advance moves the clock forward.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NowTime = m.NowTime.Add(d)
}

// StartCall records one Start invocation on MockIncidentService.
type StartCall struct {
	Req         domain.StartRequest
	ClientToken string
}

// MockIncidentService is a test double for domain.IncidentService.
// Snapshots and ByChannel are consulted synchronously; errors take
// precedence when set.
type MockIncidentService struct {
	mu          sync.Mutex
	Snapshots   map[string][]*domain.Incident
	ByChannel   map[string]*domain.Incident
	TeamErr     error
	ChannelErr  error
	StartErr    error
	StartCalls  []StartCall
	TeamFetches []string
}

// NewMockIncidentService creates a MockIncidentService with
// initialized maps.
func NewMockIncidentService() *MockIncidentService {
	return &MockIncidentService{
		Snapshots: make(map[string][]*domain.Incident),
		ByChannel: make(map[string]*domain.Incident),
	}
}

// FetchForTeam returns the configured snapshot for the team.
func (m *MockIncidentService) FetchForTeam(_ context.Context, teamID string) ([]*domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TeamFetches = append(m.TeamFetches, teamID)
	if m.TeamErr != nil {
		return nil, m.TeamErr
	}
	return m.Snapshots[teamID], nil
}

// Fetch returns the configured incident for the channel, or
// domain.ErrIncidentNotFound.
func (m *MockIncidentService) Fetch(_ context.Context, channelID string) (*domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ChannelErr != nil {
		return nil, m.ChannelErr
	}
	record, ok := m.ByChannel[channelID]
	if !ok {
		return nil, domain.ErrIncidentNotFound
	}
	return record, nil
}

// Start records the call and returns the configured error.
func (m *MockIncidentService) Start(_ context.Context, req domain.StartRequest, clientToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StartErr != nil {
		return m.StartErr
	}
	m.StartCalls = append(m.StartCalls, StartCall{Req: req, ClientToken: clientToken})
	return nil
}

// SetSnapshot replaces the snapshot for a team.
func (m *MockIncidentService) SetSnapshot(teamID string, records []*domain.Incident) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots[teamID] = records
}

// MockTransport is a test double for domain.Transport. Emit delivers a
// payload to every subscribed handler.
type MockTransport struct {
	mu       sync.Mutex
	handlers map[int]func([]byte)
	nextID   int
	SubErr   error
}

// NewMockTransport creates an empty MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{handlers: make(map[int]func([]byte))}
}

// Subscribe registers the handler.
func (m *MockTransport) Subscribe(handler func(payload []byte)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SubErr != nil {
		return nil, m.SubErr
	}
	id := m.nextID
	m.nextID++
	m.handlers[id] = handler
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.handlers, id)
	}, nil
}

// Emit delivers a raw payload to all handlers.
func (m *MockTransport) Emit(payload []byte) {
	m.mu.Lock()
	handlers := make([]func([]byte), 0, len(m.handlers))
	for _, h := range m.handlers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()
	for _, h := range handlers {
		h(payload)
	}
}

// HandlerCount returns the number of live subscriptions.
func (m *MockTransport) HandlerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

// TimeoutNotice records one StartTimedOut call.
type TimeoutNotice struct {
	ClientToken string
	TeamID      string
}

// MockNotifier is a test double for domain.Notifier.
type MockNotifier struct {
	mu       sync.Mutex
	Timeouts []TimeoutNotice
	Failures []error
}

// StartTimedOut records the timeout.
func (m *MockNotifier) StartTimedOut(clientToken, teamID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Timeouts = append(m.Timeouts, TimeoutNotice{ClientToken: clientToken, TeamID: teamID})
}

// FetchFailed records the failure.
func (m *MockNotifier) FetchFailed(_ string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures = append(m.Failures, err)
}

// TimeoutCount returns the number of recorded timeouts.
func (m *MockNotifier) TimeoutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Timeouts)
}
