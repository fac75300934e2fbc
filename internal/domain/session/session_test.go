package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestProviderStartsAsGuest(t *testing.T) {
	p := NewProvider()

	identity, generation := p.Current()
	assert.Equal(t, RoleGuest, identity.Role)
	assert.Zero(t, generation)
}

func TestSwitchBumpsGenerationAndNotifies(t *testing.T) {
	p := NewProvider()
	var seen []Identity
	p.Subscribe(func(identity Identity) { seen = append(seen, identity) })

	userID := uuid.New()
	p.Switch(User(userID))
	p.Switch(Guest())

	identity, generation := p.Current()
	assert.Equal(t, RoleGuest, identity.Role)
	assert.Equal(t, uint64(2), generation)
	assert.Equal(t, []Identity{User(userID), Guest()}, seen)
}

func TestLocal(t *testing.T) {
	assert.True(t, Guest().Local())
	assert.True(t, Admin().Local())
	assert.False(t, User(uuid.New()).Local())
}
