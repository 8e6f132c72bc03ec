package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildProfile_FullRecord(t *testing.T) {
	p := BuildProfile(ProfileFields{
		ID:        "user-1",
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Name:      "Jane D.",
		Role:      "admin",
	})

	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, "jane@example.com", p.Email)
	assert.Equal(t, "Jane D.", p.Name)
	assert.Equal(t, RoleAdmin, p.Role)
}

func TestBuildProfile_NameFallsBackToParts(t *testing.T) {
	p := BuildProfile(ProfileFields{
		ID:        "user-1",
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
	})

	assert.Equal(t, "Jane Doe", p.Name)
}

func TestBuildProfile_NameFallsBackToEmailLocalPart(t *testing.T) {
	p := BuildProfile(ProfileFields{
		ID:    "user-1",
		Email: "jane.doe@example.com",
	})

	assert.Equal(t, "jane.doe", p.Name)
}

func TestBuildProfile_SingleNamePart(t *testing.T) {
	p := BuildProfile(ProfileFields{
		ID:       "user-1",
		Email:    "jane@example.com",
		LastName: "Doe",
	})

	assert.Equal(t, "Doe", p.Name)
}

func TestBuildProfile_MissingValuesDegrade(t *testing.T) {
	p := BuildProfile(ProfileFields{ID: "user-1"})

	assert.Equal(t, "", p.Email)
	assert.Equal(t, "", p.Name)
	assert.Equal(t, DefaultRole, p.Role)
}

func TestBuildProfile_TrimsWhitespace(t *testing.T) {
	p := BuildProfile(ProfileFields{
		ID:    "  user-1  ",
		Email: " jane@example.com ",
		Name:  "  Jane  ",
		Role:  " admin ",
	})

	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, "jane@example.com", p.Email)
	assert.Equal(t, "Jane", p.Name)
	assert.Equal(t, RoleAdmin, p.Role)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "b", "c"))
	assert.Equal(t, "a", FirstNonEmpty("a"))
	assert.Equal(t, "", FirstNonEmpty("", ""))
	assert.Equal(t, "", FirstNonEmpty())
}
