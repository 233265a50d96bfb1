package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_State_ToggleMode(t *testing.T) {
	// given
	s := State{}
	require.Equal(t, ModeBuyer, s.Mode)

	// when / then
	s = s.ToggleMode()
	assert.Equal(t, ModeSeller, s.Mode)
	s = s.ToggleMode()
	assert.Equal(t, ModeBuyer, s.Mode)
}

func Test_State_TransitionsAreValues(t *testing.T) {
	// given
	original := State{}

	// when
	next := original.StartEdit(uuid.New())

	// then: the original value is untouched
	assert.Nil(t, original.EditingProductID)
	assert.NotNil(t, next.EditingProductID)
}

func Test_State_EditTargetSurvivesToggle(t *testing.T) {
	// given
	id := uuid.New()
	s := State{Mode: ModeSeller}.StartEdit(id)

	// when
	s = s.ToggleMode()

	// then: mode switch gates reachability but never mutates other state
	assert.Equal(t, ModeBuyer, s.Mode)
	require.NotNil(t, s.EditingProductID)
	assert.Equal(t, id, *s.EditingProductID)
}

func Test_Manager(t *testing.T) {
	// given
	m := NewManager()
	assert.Equal(t, ModeBuyer, m.Current().Mode)

	// when / then
	state := m.Toggle()
	assert.Equal(t, ModeSeller, state.Mode)
	assert.Equal(t, ModeSeller, m.Current().Mode)

	id := uuid.New()
	state = m.StartEdit(id)
	require.NotNil(t, state.EditingProductID)
	assert.Equal(t, id, *state.EditingProductID)

	state = m.StopEdit()
	assert.Nil(t, state.EditingProductID)
}

func Test_ViewMode_String(t *testing.T) {
	assert.Equal(t, "buyer", ModeBuyer.String())
	assert.Equal(t, "seller", ModeSeller.String())
}
