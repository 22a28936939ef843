package session

import (
	"alcyxob/fitlog-bot/internal/anchor"
	"alcyxob/fitlog-bot/internal/domain"
	"sync"
)

// Phase is the FSM state of one user. Each variant carries only the data
// that is valid in that state.
type Phase interface {
	Name() string
}

// Idle means the user has no live session state.
type Idle struct{}

// GroupSelection shows the muscle group list.
type GroupSelection struct{}

// ExerciseSelection shows the exercises of one group.
type ExerciseSelection struct {
	GroupID string
}

// SetLogging shows the logging card of one exercise.
type SetLogging struct {
	GroupID   string
	Exercise  domain.Exercise
	Last      *domain.Measurement
	SavedSets int
}

// Completed is the terminal result of FinishSession. It is returned, not stored.
type Completed struct {
	SessionID string
	Totals    domain.SessionTotals
}

func (Idle) Name() string              { return "idle" }
func (GroupSelection) Name() string    { return "group_selection" }
func (ExerciseSelection) Name() string { return "exercise_selection" }
func (SetLogging) Name() string        { return "set_logging" }
func (Completed) Name() string         { return "completed" }

// State is the transient per-user conversation state.
type State struct {
	SessionID string
	ChatID    int64
	Phase     Phase
	Anchors   anchor.Anchors
}

func newState(sessionID string, chatID int64) *State {
	return &State{
		SessionID: sessionID,
		ChatID:    chatID,
		Phase:     GroupSelection{},
		Anchors:   anchor.Anchors{},
	}
}

// StateStore holds State values keyed by chat user and serializes each
// user's actions. Different users never share a lock.
type StateStore struct {
	mu     sync.Mutex
	states map[int64]*State
	locks  map[int64]*userLock
}

// userLock is dropped from the map once no caller holds or waits on it.
type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewStateStore() *StateStore {
	return &StateStore{
		states: make(map[int64]*State),
		locks:  make(map[int64]*userLock),
	}
}

// Lock blocks until the user's previous action has finished.
func (s *StateStore) Lock(userKey int64) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[userKey]
	if !ok {
		l = &userLock{}
		s.locks[userKey] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userKey)
		}
		s.mu.Unlock()
	}
}

func (s *StateStore) Get(userKey int64) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[userKey]
}

func (s *StateStore) Put(userKey int64, state *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userKey] = state
}

func (s *StateStore) Clear(userKey int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userKey)
}
