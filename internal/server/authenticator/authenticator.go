// Package authenticator holds registered users and open proof rounds, drives
// the group proof and commitment flows and issues sessions.
//
// Every round is identified by an auth_id. A user record only remembers its
// latest round, so an auth_id from an older round is rejected as stale. An
// auth_id is spent by its first successful verification and expires after
// the configured TTL.
package authenticator

import (
	"fmt"
	"math/big"
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/dmitrijs2005/zkpauth/internal/server/auth"
	"github.com/dmitrijs2005/zkpauth/internal/zkp/chaumpedersen"
	"github.com/dmitrijs2005/zkpauth/internal/zkp/pedersen"
)

// DefaultAuthIDTTL bounds how long an issued auth_id stays usable.
const DefaultAuthIDTTL = 5 * time.Minute

// Options configure an Authenticator. Zero fields get defaults: the
// rfc5114-2048-256 group, the default Ristretto255 generators, crypto/rand,
// opaque sessions and no auth_id expiry.
type Options struct {
	Group     *chaumpedersen.Params
	Curve     *pedersen.Params
	Source    common.Source
	Sessions  auth.Issuer
	AuthIDTTL time.Duration
	Now       func() time.Time
}

type Authenticator struct {
	group    *chaumpedersen.Params
	curve    *pedersen.Params
	src      common.Source
	sessions auth.Issuer
	ttl      time.Duration
	now      func() time.Time

	users    userStore
	bindings bindingStore
}

func New(opts Options) (*Authenticator, error) {
	if opts.Group == nil {
		g, err := chaumpedersen.Preset(chaumpedersen.PresetRFC5114_2048)
		if err != nil {
			return nil, err
		}
		opts.Group = g
	}
	if opts.Group.P == nil || opts.Group.Q == nil || opts.Group.G == nil || opts.Group.H == nil {
		return nil, fmt.Errorf("incomplete group parameters")
	}
	if opts.Curve == nil {
		opts.Curve = pedersen.Default()
	}
	if opts.Source == nil {
		opts.Source = common.CryptoSource
	}
	if opts.Sessions == nil {
		opts.Sessions = auth.NewOpaqueIssuer(opts.Source)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AuthIDTTL < 0 {
		return nil, fmt.Errorf("negative auth_id ttl %s", opts.AuthIDTTL)
	}

	return &Authenticator{
		group:    opts.Group,
		curve:    opts.Curve,
		src:      opts.Source,
		sessions: opts.Sessions,
		ttl:      opts.AuthIDTTL,
		now:      opts.Now,
		users:    userStore{records: make(map[string]*record)},
		bindings: bindingStore{bindings: make(map[string]*binding)},
	}, nil
}

// Group returns the group parameters in use.
func (a *Authenticator) Group() *chaumpedersen.Params { return a.group }

// Curve returns the commitment generators in use.
func (a *Authenticator) Curve() *pedersen.Params { return a.curve }

// Register stores the public pair for userID. An existing registration is
// never overwritten; created reports whether a new record was made.
func (a *Authenticator) Register(userID string, y1, y2 []byte) (created bool, err error) {
	e1, e2, err := a.decodeRegistration(userID, y1, y2)
	if err != nil {
		return false, err
	}

	err = a.withUsers(func(users map[string]*record) error {
		if _, ok := users[userID]; ok {
			return nil
		}
		users[userID] = &record{userID: userID, y1: e1, y2: e2}
		created = true
		return nil
	})
	return created, err
}

// ValidateRegistration reports whether Register would accept the input,
// without storing anything.
func (a *Authenticator) ValidateRegistration(userID string, y1, y2 []byte) error {
	_, _, err := a.decodeRegistration(userID, y1, y2)
	return err
}

func (a *Authenticator) decodeRegistration(userID string, y1, y2 []byte) (*big.Int, *big.Int, error) {
	if userID == "" {
		return nil, nil, fmt.Errorf("empty user id: %w", common.ErrorMalformedInput)
	}
	e1, err := a.group.DecodeElement(y1)
	if err != nil {
		return nil, nil, fmt.Errorf("y1: %w", err)
	}
	e2, err := a.group.DecodeElement(y2)
	if err != nil {
		return nil, nil, fmt.Errorf("y2: %w", err)
	}
	return e1, e2, nil
}

// Registration is a stored public pair.
type Registration struct {
	UserID string
	Y1     []byte
	Y2     []byte
}

// Restore registers previously persisted users with the same first-wins rule
// as Register. It stops at the first malformed registration.
func (a *Authenticator) Restore(regs []Registration) (int, error) {
	n := 0
	for _, r := range regs {
		created, err := a.Register(r.UserID, r.Y1, r.Y2)
		if err != nil {
			return n, fmt.Errorf("restore %q: %w", r.UserID, err)
		}
		if created {
			n++
		}
	}
	return n, nil
}

// Stats is a snapshot of store sizes.
type Stats struct {
	Users    int
	Bindings int
}

func (a *Authenticator) Stats() Stats {
	var s Stats
	_ = a.withBoth(func(bindings map[string]*binding, users map[string]*record) error {
		s.Users = len(users)
		s.Bindings = len(bindings)
		return nil
	})
	return s
}

// SessionID returns the last session issued to userID.
func (a *Authenticator) SessionID(userID string) (string, error) {
	var id string
	err := a.withUsers(func(users map[string]*record) error {
		rec, ok := users[userID]
		if !ok {
			return common.ErrorNotFound
		}
		id = rec.sessionID
		return nil
	})
	return id, err
}

// openRound binds a fresh auth_id to userID and lets set update the record
// under both locks.
func (a *Authenticator) openRound(userID string, kind ProofSystem, set func(rec *record)) (string, error) {
	authID, err := a.src.Token()
	if err != nil {
		return "", fmt.Errorf("mint auth_id: %w: %v", common.ErrorInternal, err)
	}
	issuedAt := a.now()

	err = a.withBoth(func(bindings map[string]*binding, users map[string]*record) error {
		rec, ok := users[userID]
		if !ok {
			return fmt.Errorf("user %q: %w", userID, common.ErrorNotFound)
		}
		if _, dup := bindings[authID]; dup {
			return fmt.Errorf("auth_id collision: %w", common.ErrorInternal)
		}
		set(rec)
		rec.authID = authID
		bindings[authID] = &binding{userID: userID, kind: kind, issuedAt: issuedAt}
		return nil
	})
	if err != nil {
		return "", err
	}
	return authID, nil
}

// lookupRound resolves authID to the bound record for a verification of the
// given kind and passes both to read under the locks.
func (a *Authenticator) lookupRound(authID string, kind ProofSystem, read func(b *binding, rec *record)) error {
	now := a.now()
	return a.withBoth(func(bindings map[string]*binding, users map[string]*record) error {
		b, ok := bindings[authID]
		if !ok {
			return common.ErrorUnauthenticated
		}
		if a.expired(b, now) {
			delete(bindings, authID)
			return common.ErrorUnauthenticated
		}
		if b.kind != kind {
			return common.ErrorUnauthenticated
		}
		rec, ok := users[b.userID]
		if !ok {
			return fmt.Errorf("user %q: %w", b.userID, common.ErrorNotFound)
		}
		if rec.authID != authID {
			return common.ErrorUnauthenticated
		}
		read(b, rec)
		return nil
	})
}

// completeRound mints a session and stores it if authID is still the
// current, unspent round of its user.
func (a *Authenticator) completeRound(authID, userID string) (string, error) {
	sessionID, err := a.sessions.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("mint session: %w: %v", common.ErrorInternal, err)
	}

	err = a.withBoth(func(bindings map[string]*binding, users map[string]*record) error {
		b, ok := bindings[authID]
		if !ok || b.spent {
			return common.ErrorUnauthenticated
		}
		rec, ok := users[userID]
		if !ok {
			return fmt.Errorf("user %q: %w", userID, common.ErrorNotFound)
		}
		if rec.authID != authID {
			return common.ErrorUnauthenticated
		}
		b.spent = true
		rec.sessionID = sessionID
		return nil
	})
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

func (a *Authenticator) expired(b *binding, now time.Time) bool {
	return a.ttl > 0 && now.Sub(b.issuedAt) > a.ttl
}
