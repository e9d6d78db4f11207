package services_test

import (
	"time"

	"github.com/vncsmyrnk/polls/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/polls/internal/core/ports"
	"github.com/vncsmyrnk/polls/internal/core/services"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeClock is a movable "now".
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	store   *memory.Store
	clock   *fakeClock
	polls   ports.PollService
	votes   ports.VoteService
	results ports.ResultService
}

func newFixture() *fixture {
	store := memory.NewStore()
	clock := &fakeClock{now: epoch}
	return &fixture{
		store:   store,
		clock:   clock,
		polls:   services.NewPollService(store, clock.Now),
		votes:   services.NewVoteService(store, store, clock.Now),
		results: services.NewResultService(store, store),
	}
}

func strp(s string) *string { return &s }

func options(values ...string) []*string {
	out := make([]*string, len(values))
	for i := range values {
		out[i] = &values[i]
	}
	return out
}
