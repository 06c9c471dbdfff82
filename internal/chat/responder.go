package chat

import (
	"math/rand/v2"
	"sync"
)

// DefaultReplies are the canned answers used by the simulated peers.
var DefaultReplies = []string{
	"That's interesting! Tell me more.",
	"I agree! 😊",
	"Great point!",
	"Thanks for sharing!",
	"Nice! What do you think about that?",
	"Absolutely! 👍",
}

// Reply is a simulated answer waiting to be delivered.
type Reply struct {
	Author string
	Text   string
}

// Responder picks a random reply and a random participant other than the
// local user. It is safe for concurrent use.
type Responder struct {
	mu      sync.Mutex
	rng     *rand.Rand
	replies []string
}

// NewResponder uses rng for every pick; a nil rng gets a randomly seeded one.
func NewResponder(rng *rand.Rand, replies []string) *Responder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if len(replies) == 0 {
		replies = DefaultReplies
	}
	return &Responder{rng: rng, replies: append([]string(nil), replies...)}
}

// Pick chooses the next reply. ok is false when nobody but the local user
// is in the room.
func (r *Responder) Pick(users []User) (reply Reply, ok bool) {
	peers := make([]User, 0, len(users))
	for _, u := range users {
		if u.Name != Self {
			peers = append(peers, u)
		}
	}
	if len(peers) == 0 {
		return Reply{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return Reply{
		Author: peers[r.rng.IntN(len(peers))].Name,
		Text:   r.replies[r.rng.IntN(len(r.replies))],
	}, true
}
