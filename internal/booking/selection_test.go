package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maqraa/internal/slots"
)

func TestDaySelection_ChooseCount(t *testing.T) {
	t.Run("ValidRange", func(t *testing.T) {
		s := NewDaySelection()
		for n := 1; n <= 7; n++ {
			assert.NoError(t, s.ChooseCount(n))
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		s := NewDaySelection()
		assert.Error(t, s.ChooseCount(0))
		assert.Error(t, s.ChooseCount(8))
		assert.Error(t, s.ChooseCount(-1))

		var verr *ValidationError
		assert.ErrorAs(t, s.ChooseCount(0), &verr)
	})

	t.Run("SevenAutoFills", func(t *testing.T) {
		s := NewDaySelection()
		require.NoError(t, s.ChooseCount(7))
		assert.Equal(t, slots.AllWeekdays(), s.Days())
		assert.True(t, s.Complete())
		assert.Equal(t, StateDaysComplete, s.State())
	})

	t.Run("RechooseResets", func(t *testing.T) {
		s := NewDaySelection()
		require.NoError(t, s.ChooseCount(2))
		require.NoError(t, s.ToggleDay(slots.Monday))
		require.NoError(t, s.ChooseCount(3))
		assert.Empty(t, s.Days())
	})
}

func TestDaySelection_ToggleDay(t *testing.T) {
	t.Run("BeforeCount", func(t *testing.T) {
		s := NewDaySelection()
		assert.Error(t, s.ToggleDay(slots.Monday))
	})

	t.Run("InvalidDay", func(t *testing.T) {
		s := NewDaySelection()
		require.NoError(t, s.ChooseCount(3))
		assert.Error(t, s.ToggleDay(slots.InvalidWeekday))
		assert.Error(t, s.ToggleDay(7))
	})

	t.Run("ToggleOff", func(t *testing.T) {
		s := NewDaySelection()
		require.NoError(t, s.ChooseCount(3))
		require.NoError(t, s.ToggleDay(slots.Monday))
		require.NoError(t, s.ToggleDay(slots.Wednesday))
		require.NoError(t, s.ToggleDay(slots.Monday))
		assert.Equal(t, []int{slots.Wednesday}, s.Days())
	})

	t.Run("ReplaceOldestAtCapacity", func(t *testing.T) {
		// Three days required, then a fourth choice: the earliest pick is
		// dropped and the new one lands at the end.
		s := NewDaySelection()
		require.NoError(t, s.ChooseCount(3))
		require.NoError(t, s.ToggleDay(slots.Monday))
		require.NoError(t, s.ToggleDay(slots.Wednesday))
		require.NoError(t, s.ToggleDay(slots.Friday))
		require.NoError(t, s.ToggleDay(slots.Sunday))
		assert.Equal(t, []int{slots.Wednesday, slots.Friday, slots.Sunday}, s.Days())
		assert.True(t, s.Complete())
	})

	t.Run("NeverExceedsRequired", func(t *testing.T) {
		s := NewDaySelection()
		require.NoError(t, s.ChooseCount(2))
		for _, d := range slots.AllWeekdays() {
			require.NoError(t, s.ToggleDay(d))
			assert.LessOrEqual(t, len(s.Days()), 2)
		}
	})

	t.Run("FullWeekIsNoOp", func(t *testing.T) {
		s := NewDaySelection()
		require.NoError(t, s.ChooseCount(7))
		require.NoError(t, s.ToggleDay(slots.Tuesday))
		assert.Equal(t, slots.AllWeekdays(), s.Days())
	})
}

func TestDaySelection_Lifecycle(t *testing.T) {
	s := NewDaySelection()
	assert.Equal(t, StateUninitialized, s.State())
	assert.Error(t, s.Validate())

	require.NoError(t, s.ChooseCount(2))
	assert.Equal(t, StateCountChosen, s.State())

	require.NoError(t, s.ToggleDay(slots.Monday))
	assert.Equal(t, StateDaysPartial, s.State())

	var incomplete *IncompleteSelectionError
	err := s.Validate()
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, 1, incomplete.Have)
	assert.Equal(t, 2, incomplete.Want)

	require.NoError(t, s.ToggleDay(slots.Thursday))
	assert.Equal(t, StateDaysComplete, s.State())
	assert.NoError(t, s.Validate())
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(time.Hour)

	session := store.Create()
	require.NotEmpty(t, session.ID)
	assert.Same(t, session, store.Get(session.ID))
	assert.Nil(t, store.Get("no-such-session"))

	err := session.WithSelection(func(s *DaySelection) error {
		return s.ChooseCount(2)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, session.Selection.Required())

	store.Delete(session.ID)
	assert.Nil(t, store.Get(session.ID))
}

func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore(10 * time.Millisecond)

	session := store.Create()
	session.UpdatedAt = time.Now().Add(-time.Minute)

	assert.Nil(t, store.Get(session.ID))
	assert.Equal(t, 1, store.Cleanup())
	assert.Equal(t, 0, store.Cleanup())
}
