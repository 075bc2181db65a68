// Package store keeps generated stories and their conversations in memory.
package store

import (
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"

	"mythos/internal/agent"
	"mythos/internal/model"
)

var (
	ErrNotFound = errors.New("story not found")
	// ErrBusy is returned while another regeneration of the same story runs.
	ErrBusy = errors.New("story is being updated")
)

// ConversationFactory starts a conversation grounded in a story's text.
type ConversationFactory func(grounding string) *agent.Conversation

type record struct {
	story model.GeneratedStory
	conv  *agent.Conversation
	guard *semaphore.Weighted
}

// Store 内存故事存储. The oldest story is evicted once capacity is reached.
type Store struct {
	mu       sync.RWMutex
	records  map[string]*record
	order    []string // oldest first
	capacity int
	newConv  ConversationFactory
}

func New(capacity int, newConv ConversationFactory) *Store {
	if capacity <= 0 {
		capacity = 256
	}
	return &Store{
		records:  make(map[string]*record),
		capacity: capacity,
		newConv:  newConv,
	}
}

// Put adds a story and returns the IDs evicted to make room.
func (s *Store) Put(story model.GeneratedStory) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[story.ID]; ok {
		rec.story = story
		return nil
	}

	var evicted []string
	for len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.records, oldest)
		evicted = append(evicted, oldest)
	}
	s.records[story.ID] = &record{story: story, guard: semaphore.NewWeighted(1)}
	s.order = append(s.order, story.ID)
	return evicted
}

func (s *Store) Get(id string) (model.GeneratedStory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return model.GeneratedStory{}, ErrNotFound
	}
	return rec.story, nil
}

// Replace swaps in a new value for an existing story.
func (s *Store) Replace(id string, story model.GeneratedStory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	story.ID = id
	rec.story = story
	return nil
}

// Update runs fn on the current story and stores its result. Only one Update
// per story runs at a time; a concurrent call fails with ErrBusy. fn runs
// without the store lock held.
func (s *Store) Update(id string, fn func(model.GeneratedStory) (model.GeneratedStory, error)) (model.GeneratedStory, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return model.GeneratedStory{}, ErrNotFound
	}
	if !rec.guard.TryAcquire(1) {
		return model.GeneratedStory{}, ErrBusy
	}
	defer rec.guard.Release(1)

	current, err := s.Get(id)
	if err != nil {
		return model.GeneratedStory{}, err
	}
	next, err := fn(current)
	if err != nil {
		return model.GeneratedStory{}, err
	}
	if err := s.Replace(id, next); err != nil {
		return model.GeneratedStory{}, err
	}
	return s.Get(id)
}

// Conversation returns the story's conversation, starting it on first use.
func (s *Store) Conversation(id string) (*agent.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.conv == nil {
		rec.conv = s.newConv(rec.story.Content)
	}
	return rec.conv, nil
}

// List returns the stored stories, most recent first.
func (s *Store) List() []model.GeneratedStory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.GeneratedStory, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.records[s.order[i]].story)
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
