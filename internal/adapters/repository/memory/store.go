package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type voteKey struct {
	userID uuid.UUID
	pollID uuid.UUID
}

type pollRecord struct {
	poll domain.Poll
	seq  uint64
}

// Store keeps polls, votes, users and revoked tokens in process memory. Every write holds
// the store lock, so the one-vote-per-user-and-poll rule holds under
// concurrent callers the same way the database unique constraint does.
type Store struct {
	mu sync.RWMutex

	seq    uint64
	polls  map[uuid.UUID]*pollRecord
	votes  map[voteKey]domain.Vote
	users  map[uuid.UUID]domain.User
	emails map[string]uuid.UUID
	// revoked maps token ids to their expiry
	revoked map[uuid.UUID]time.Time
}

func NewStore() *Store {
	return &Store{
		polls:   make(map[uuid.UUID]*pollRecord),
		votes:   make(map[voteKey]domain.Vote),
		users:   make(map[uuid.UUID]domain.User),
		emails:  make(map[string]uuid.UUID),
		revoked: make(map[uuid.UUID]time.Time),
	}
}

func (s *Store) Save(_ context.Context, poll *domain.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.polls[poll.ID] = &pollRecord{poll: clonePoll(poll), seq: s.seq}
	return nil
}

func (s *Store) Update(_ context.Context, poll *domain.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.polls[poll.ID]
	if !ok {
		return domain.ErrPollNotFound
	}
	rec.poll = clonePoll(poll)
	return nil
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID, visibility domain.Visibility) (*domain.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.polls[id]
	if !ok || !visibility.Allows(rec.poll.State()) {
		return nil, domain.ErrPollNotFound
	}
	poll := clonePoll(&rec.poll)
	return &poll, nil
}

func (s *Store) List(_ context.Context, visibility domain.Visibility) ([]*domain.Poll, error) {
	s.mu.RLock()
	records := make([]pollRecord, 0, len(s.polls))
	for _, rec := range s.polls {
		if visibility.Allows(rec.poll.State()) {
			records = append(records, pollRecord{poll: clonePoll(&rec.poll), seq: rec.seq})
		}
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		ta, tb := a.poll.CreatedAt, b.poll.CreatedAt
		if visibility == domain.OnlyTrashed {
			ta, tb = *a.poll.DeletedAt, *b.poll.DeletedAt
		}
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return a.seq > b.seq
	})

	polls := make([]*domain.Poll, len(records))
	for i := range records {
		polls[i] = &records[i].poll
	}
	return polls, nil
}

func (s *Store) ForceDelete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.polls[id]; !ok {
		return domain.ErrPollNotFound
	}
	for key := range s.votes {
		if key.pollID == id {
			delete(s.votes, key)
		}
	}
	delete(s.polls, id)
	return nil
}

func (s *Store) SaveVote(_ context.Context, vote *domain.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.polls[vote.PollID]; !ok {
		return domain.ErrPollNotFound
	}
	key := voteKey{userID: vote.UserID, pollID: vote.PollID}
	if _, exists := s.votes[key]; exists {
		return domain.ErrAlreadyVoted
	}
	s.votes[key] = *vote
	return nil
}

func (s *Store) HasVoted(_ context.Context, pollID, userID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.votes[voteKey{userID: userID, pollID: pollID}]
	return ok, nil
}

func (s *Store) CountByOption(_ context.Context, pollID uuid.UUID) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int64)
	for key, vote := range s.votes {
		if key.pollID == pollID {
			counts[vote.SelectedOption]++
		}
	}
	return counts, nil
}

// VoteCount reports how many votes are stored for pollID, or for every poll
// when pollID is uuid.Nil.
func (s *Store) VoteCount(pollID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for key := range s.votes {
		if pollID == uuid.Nil || key.pollID == pollID {
			n++
		}
	}
	return n
}

func clonePoll(p *domain.Poll) domain.Poll {
	c := *p
	if p.Options != nil {
		c.Options = append([]string(nil), p.Options...)
	}
	if p.Description != nil {
		d := *p.Description
		c.Description = &d
	}
	if p.ClosesAt != nil {
		t := *p.ClosesAt
		c.ClosesAt = &t
	}
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		c.DeletedAt = &t
	}
	return c
}

var (
	_ ports.PollRepository = (*Store)(nil)
	_ ports.VoteRepository = (*Store)(nil)
)
