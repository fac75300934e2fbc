package session

import (
	"sync"

	"github.com/google/uuid"
)

type Role string

const (
	// RoleGuest has no cloud identity; state lives in local storage only.
	RoleGuest Role = "guest"
	// RoleUser is a cloud-backed authenticated account.
	RoleUser Role = "user"
	// RoleAdmin is the privileged bypass identity. It never touches cloud
	// rows; like a guest, its state lives in local storage.
	RoleAdmin Role = "admin"
)

// Identity is the session owner the stores scope their state to.
type Identity struct {
	Role   Role
	UserID uuid.UUID
}

func Guest() Identity { return Identity{Role: RoleGuest} }
func Admin() Identity { return Identity{Role: RoleAdmin} }

func User(id uuid.UUID) Identity {
	return Identity{Role: RoleUser, UserID: id}
}

// Local reports whether the identity persists to local storage rather than
// cloud rows.
func (i Identity) Local() bool {
	return i.Role != RoleUser
}

// Listener is notified after every identity transition.
type Listener func(Identity)

// Provider holds the current session identity and broadcasts transitions to
// the stores, which re-hydrate in response. Each transition bumps a
// generation counter; in-flight work tagged with an older generation is
// stale and must be discarded.
type Provider struct {
	mu         sync.Mutex
	current    Identity
	generation uint64
	listeners  []Listener
}

func NewProvider() *Provider {
	return &Provider{current: Guest()}
}

func (p *Provider) Current() (Identity, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.generation
}

// Subscribe registers a listener for identity transitions. Listeners are
// invoked synchronously, outside the provider lock.
func (p *Provider) Subscribe(l Listener) {
	p.mu.Lock()
	p.listeners = append(p.listeners, l)
	p.mu.Unlock()
}

// Switch replaces the current identity and notifies listeners.
func (p *Provider) Switch(identity Identity) {
	p.mu.Lock()
	p.current = identity
	p.generation++
	listeners := append([]Listener(nil), p.listeners...)
	p.mu.Unlock()

	for _, l := range listeners {
		l(identity)
	}
}
