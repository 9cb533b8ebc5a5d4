package session_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"repairbot/internal/catalog"
	"repairbot/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGet(t *testing.T) {
	t.Run("should return idle session for unknown user", func(t *testing.T) {
		s := session.NewStore()

		sess := s.Get(42)
		assert.Equal(t, session.StageIdle, sess.Stage)
		assert.False(t, sess.InProgress())
	})

	t.Run("should return what was put", func(t *testing.T) {
		s := session.NewStore()
		s.Put(1, session.Session{Stage: session.StageEnteringPhone})

		assert.Equal(t, session.StageEnteringPhone, s.Get(1).Stage)
	})
}

func TestStoreUpdate(t *testing.T) {
	t.Run("should replace session even when fn fails", func(t *testing.T) {
		s := session.NewStore()
		s.Put(1, session.Session{Stage: session.StageConfirmingOrder})

		err := s.Update(1, func(session.Session) (session.Session, error) {
			return session.NewIdle(), fmt.Errorf("boom")
		})
		require.Error(t, err)
		assert.Equal(t, session.StageIdle, s.Get(1).Stage)
	})

	t.Run("should serialize updates for one user", func(t *testing.T) {
		s := session.NewStore()
		s.Put(1, session.Session{Stage: session.StageEnteringProblem})

		const workers = 8
		const perWorker = 50

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < perWorker; j++ {
					_ = s.Update(1, func(sess session.Session) (session.Session, error) {
						sess.Draft.Problem += "x"
						return sess, nil
					})
				}
			}()
		}
		wg.Wait()

		// Lost updates would leave fewer characters than updates applied.
		assert.Len(t, s.Get(1).Draft.Problem, workers*perWorker)
	})

	t.Run("should keep users independent", func(t *testing.T) {
		s := session.NewStore()
		s.Put(1, session.Session{
			Stage: session.StageEnteringDevice,
			Draft: session.Draft{Phone: "+1-555-0100"},
		})
		s.Put(2, session.Session{Stage: session.StageChoosingService})

		s.Reset(2)

		got := s.Get(1)
		assert.Equal(t, session.StageEnteringDevice, got.Stage)
		assert.Equal(t, "+1-555-0100", got.Draft.Phone)
		assert.Equal(t, session.StageIdle, s.Get(2).Stage)
	})
}

func TestStoreInProgress(t *testing.T) {
	s := session.NewStore()

	assert.False(t, s.InProgress(1), "unknown user has no dialog")

	s.Put(1, session.Session{Stage: session.StageChoosingService})
	assert.True(t, s.InProgress(1))

	s.Reset(1)
	assert.False(t, s.InProgress(1))
}

func TestDraft(t *testing.T) {
	t.Run("should report missing fields in collection order", func(t *testing.T) {
		d := session.Draft{Phone: "+1-555-0100"}
		assert.False(t, d.Complete())
		assert.Equal(t, []string{"service", "device", "problem"}, d.MissingFields())
	})

	t.Run("should be complete with all fields", func(t *testing.T) {
		d := session.Draft{
			Service: &catalog.Service{ID: "battery", DisplayName: "Battery"},
			Phone:   "+1-555-0100",
			Device:  "iPhone 12",
			Problem: strings.Repeat("a", 10),
		}
		assert.True(t, d.Complete())
		assert.Empty(t, d.MissingFields())
	})
}
