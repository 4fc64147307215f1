package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eco_missions/internal/common"
	"eco_missions/internal/domain/model"
)

// In-memory repository implementations. They honor the same contracts as the
// Postgres ones (idempotent membership, guarded transitions, submission-keyed
// credits) and back the service and worker tests.

type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]model.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return common.ErrConflict
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, common.ErrNotFound
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.findBy(func(u model.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return r.findBy(func(u model.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) findBy(match func(model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

type MemoryEventRepository struct {
	// Users resolves participant balances for ListStandings.
	Users UserRepository

	mu           sync.Mutex
	events       map[string]model.Event
	participants map[string][]string // eventID -> userIDs in join order
}

func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		events:       make(map[string]model.Event),
		participants: make(map[string][]string),
	}
}

func (r *MemoryEventRepository) Create(_ context.Context, event *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.CreatedAt = time.Now()
	r.events[event.ID] = *event
	return nil
}

func (r *MemoryEventRepository) FindByID(_ context.Context, id string) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[id]; ok {
		return &e, nil
	}
	return nil, common.ErrNotFound
}

func (r *MemoryEventRepository) List(_ context.Context) ([]model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]model.Event, 0, len(r.events))
	for _, e := range r.events {
		e.Participants = len(r.participants[e.ID])
		events = append(events, e)
	}
	for i := 1; i < len(events); i++ { // insertion sort by date
		for j := i; j > 0 && events[j].Date.Before(events[j-1].Date); j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
	return events, nil
}

func (r *MemoryEventRepository) AddParticipant(_ context.Context, eventID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.participants[eventID] {
		if id == userID {
			return nil // already a member; join is idempotent
		}
	}
	r.participants[eventID] = append(r.participants[eventID], userID)
	return nil
}

func (r *MemoryEventRepository) IsParticipant(_ context.Context, eventID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.participants[eventID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryEventRepository) CountParticipants(_ context.Context, eventID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants[eventID]), nil
}

func (r *MemoryEventRepository) ListJoinedEventIDs(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := []string{}
	for eventID, users := range r.participants {
		for _, id := range users {
			if id == userID {
				ids = append(ids, eventID)
			}
		}
	}
	return ids, nil
}

// ListStandings requires a user repository to resolve balances; the memory
// variant carries one for that purpose.
func (r *MemoryEventRepository) ListStandings(ctx context.Context, eventID string) ([]model.LeaderboardEntry, error) {
	r.mu.Lock()
	userIDs := append([]string(nil), r.participants[eventID]...)
	r.mu.Unlock()

	if r.Users == nil {
		return nil, fmt.Errorf("memory event repository has no user source")
	}
	var standings []model.LeaderboardEntry
	for _, id := range userIDs {
		u, err := r.Users.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		standings = append(standings, model.LeaderboardEntry{
			UserID: u.ID, Username: u.Username, Email: u.Email, Coins: u.Coins,
		})
	}
	return standings, nil
}

var _ EventRepository = (*MemoryEventRepository)(nil)

type MemorySubmissionRepository struct {
	mu   sync.Mutex
	subs map[string]model.Submission
}

func NewMemorySubmissionRepository() *MemorySubmissionRepository {
	return &MemorySubmissionRepository{subs: make(map[string]model.Submission)}
}

func (r *MemorySubmissionRepository) Create(_ context.Context, sub *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub.SubmittedAt = time.Now()
	sub.UpdatedAt = sub.SubmittedAt
	r.subs[sub.ID] = *sub
	return nil
}

func (r *MemorySubmissionRepository) FindByID(_ context.Context, id string) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.subs[id]; ok {
		return &s, nil
	}
	return nil, common.ErrNotFound
}

func (r *MemorySubmissionRepository) FindActive(_ context.Context, userID, eventID string) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.UserID == userID && s.EventID == eventID && !s.Status.Terminal() {
			found := s
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemorySubmissionRepository) UpdateProgress(_ context.Context, id string, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return common.ErrNotFound
	}
	s.Progress = progress
	s.UpdatedAt = time.Now()
	r.subs[id] = s
	return nil
}

func (r *MemorySubmissionRepository) Transition(_ context.Context, id string, from, to model.SubmissionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return common.ErrNotFound
	}
	if s.Status != from || !from.CanTransition(to) {
		return fmt.Errorf("invalid submission transition %s -> %s: %w", s.Status, to, common.ErrConflict)
	}
	s.Status = to
	s.UpdatedAt = time.Now()
	r.subs[id] = s
	return nil
}

func (r *MemorySubmissionRepository) Finish(_ context.Context, id string, from, to model.SubmissionStatus, earnings int, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return common.ErrNotFound
	}
	if s.Status != from || !from.CanTransition(to) || !to.Terminal() {
		return fmt.Errorf("invalid terminal transition %s -> %s: %w", s.Status, to, common.ErrConflict)
	}
	s.Status = to
	s.Result = &model.SubmissionResult{Earnings: earnings, Message: message}
	s.UpdatedAt = time.Now()
	r.subs[id] = s
	return nil
}

func (r *MemorySubmissionRepository) IncrementAttempts(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return 0, common.ErrNotFound
	}
	s.Attempts++
	r.subs[id] = s
	return s.Attempts, nil
}

var _ SubmissionRepository = (*MemorySubmissionRepository)(nil)

type MemoryLedgerRepository struct {
	mu       sync.Mutex
	balances map[string]int
	credited map[string]int // submissionID -> amount
}

func NewMemoryLedgerRepository() *MemoryLedgerRepository {
	return &MemoryLedgerRepository{
		balances: make(map[string]int),
		credited: make(map[string]int),
	}
}

func (r *MemoryLedgerRepository) Credit(_ context.Context, userID, submissionID string, amount int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, done := r.credited[submissionID]; done {
		return r.balances[userID], false, nil
	}
	r.credited[submissionID] = amount
	r.balances[userID] += amount
	return r.balances[userID], true, nil
}

func (r *MemoryLedgerRepository) Balance(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[userID], nil
}

var _ LedgerRepository = (*MemoryLedgerRepository)(nil)
var _ UserRepository = (*MemoryUserRepository)(nil)
