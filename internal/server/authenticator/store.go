package authenticator

import (
	"math/big"
	"sync"
	"time"

	"github.com/gtank/ristretto255"
)

// ProofSystem identifies which flow opened a round.
type ProofSystem int

const (
	GroupDiscreteLog ProofSystem = iota + 1
	EllipticCurveCommitment
)

func (k ProofSystem) String() string {
	switch k {
	case GroupDiscreteLog:
		return "group"
	case EllipticCurveCommitment:
		return "commitment"
	default:
		return "unknown"
	}
}

// record is the per-user state. y1 and y2 are fixed at registration, the
// remaining fields belong to the round named by authID.
type record struct {
	userID string
	y1, y2 *big.Int

	authID     string
	r1, r2     *big.Int
	challenge  *big.Int
	commitment *ristretto255.Element
	sessionID  string
}

type binding struct {
	userID   string
	kind     ProofSystem
	issuedAt time.Time
	spent    bool
}

type userStore struct {
	mu      sync.Mutex
	records map[string]*record
}

type bindingStore struct {
	mu       sync.Mutex
	bindings map[string]*binding
}

// withBoth runs fn holding the binding store lock and then the user store
// lock. Every operation touching both stores goes through here.
func (a *Authenticator) withBoth(fn func(bindings map[string]*binding, users map[string]*record) error) error {
	a.bindings.mu.Lock()
	defer a.bindings.mu.Unlock()
	a.users.mu.Lock()
	defer a.users.mu.Unlock()
	return fn(a.bindings.bindings, a.users.records)
}

func (a *Authenticator) withUsers(fn func(users map[string]*record) error) error {
	a.users.mu.Lock()
	defer a.users.mu.Unlock()
	return fn(a.users.records)
}

func (a *Authenticator) withBindings(fn func(bindings map[string]*binding) error) error {
	a.bindings.mu.Lock()
	defer a.bindings.mu.Unlock()
	return fn(a.bindings.bindings)
}
