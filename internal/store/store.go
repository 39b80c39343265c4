package store

import (
	"sync"
	"tickerfeed/internal/model"
)

// State is the shared application state touched by the ticker.
type State struct {
	Tickers     []model.ProjectedTicker `json:"tickers"`
	CurrentFiat string                  `json:"currentFiat"`
}

func (s State) clone() State {
	if s.Tickers != nil {
		s.Tickers = append([]model.ProjectedTicker(nil), s.Tickers...)
	}
	return s
}

// Action is a state transition applied by Dispatch.
type Action interface {
	apply(*State)
}

// SetTickers replaces the ticker list as a whole.
type SetTickers struct {
	Tickers []model.ProjectedTicker
}

func (a SetTickers) apply(s *State) {
	s.Tickers = append([]model.ProjectedTicker(nil), a.Tickers...)
}

// SetCurrentFiat replaces the display currency.
type SetCurrentFiat struct {
	FiatKey string
}

func (a SetCurrentFiat) apply(s *State) {
	s.CurrentFiat = a.FiatKey
}

// Store defines the read and write operations on shared state.
type Store interface {
	State() State
	Dispatch(action Action)
}

// Memory is an in-process Store. Dispatches are serialized and every
// subscriber is notified with the resulting snapshot.
type Memory struct {
	mu          sync.RWMutex
	state       State
	subscribers map[int]chan State
	nextID      int
}

// NewMemory creates a store holding initial.
func NewMemory(initial State) *Memory {
	return &Memory{
		state:       initial.clone(),
		subscribers: make(map[int]chan State),
	}
}

func (m *Memory) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

func (m *Memory) Dispatch(action Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	action.apply(&m.state)
	for _, ch := range m.subscribers {
		notify(ch, m.state.clone())
	}
}

// Subscribe returns a channel receiving the state after each dispatch and a
// func that ends the subscription. Slow readers only see the latest state.
func (m *Memory) Subscribe() (<-chan State, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan State, 1)
	m.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subscribers, id)
			close(ch)
		})
	}
}

// notify replaces any pending snapshot in ch with s. Only Dispatch sends on
// ch and it holds the write lock, so the second send cannot block.
func notify(ch chan State, s State) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- s
}
