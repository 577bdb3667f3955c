package domain_test

import (
	"testing"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCanTransitionTo(t *testing.T) {
	t.Run("allows the forward happy path", func(t *testing.T) {
		path := []domain.Status{
			domain.StatusCreated,
			domain.StatusPending,
			domain.StatusAuthorized,
			domain.StatusCaptured,
			domain.StatusPartiallyRefunded,
			domain.StatusRefunded,
		}

		for i := 0; i < len(path)-1; i++ {
			assert.NoError(t, path[i].CanTransitionTo(path[i+1]),
				"%s -> %s should be allowed", path[i], path[i+1])
		}
	})

	t.Run("rejects any transition out of a terminal state", func(t *testing.T) {
		terminals := []domain.Status{
			domain.StatusDeclined,
			domain.StatusCancelled,
			domain.StatusRefunded,
		}

		for _, from := range terminals {
			for _, to := range []domain.Status{
				domain.StatusPending,
				domain.StatusAuthorized,
				domain.StatusCaptured,
				domain.StatusCancelled,
			} {
				err := from.CanTransitionTo(to)
				require.Error(t, err, "%s -> %s must be rejected", from, to)
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			}
		}
	})

	t.Run("rejects backward transitions", func(t *testing.T) {
		err := domain.StatusCaptured.CanTransitionTo(domain.StatusPending)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		err = domain.StatusAuthorized.CanTransitionTo(domain.StatusCreated)
		assert.Error(t, err)
	})

	t.Run("allows cancel before capture completes", func(t *testing.T) {
		assert.NoError(t, domain.StatusAuthorized.CanTransitionTo(domain.StatusCancelled))
		assert.NoError(t, domain.StatusCaptured.CanTransitionTo(domain.StatusCancelled))
	})

	t.Run("allows repeated partial refunds", func(t *testing.T) {
		assert.NoError(t, domain.StatusPartiallyRefunded.CanTransitionTo(domain.StatusPartiallyRefunded))
		assert.NoError(t, domain.StatusPartiallyRefunded.CanTransitionTo(domain.StatusRefunded))
	})
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, domain.StatusDeclined.IsTerminal())
	assert.True(t, domain.StatusCancelled.IsTerminal())
	assert.True(t, domain.StatusRefunded.IsTerminal())

	assert.False(t, domain.StatusCreated.IsTerminal())
	assert.False(t, domain.StatusAuthorized.IsTerminal())
	assert.False(t, domain.StatusCaptured.IsTerminal())
	assert.False(t, domain.StatusPartiallyRefunded.IsTerminal())
	assert.False(t, domain.StatusCompleted.IsTerminal())
}

func TestMapStatus(t *testing.T) {
	table := map[string]domain.Status{
		"authorized":    domain.StatusAuthorized,
		"captured":      domain.StatusCaptured,
		"part_captured": domain.StatusPartiallyRefunded,
	}

	t.Run("maps known statuses regardless of case", func(t *testing.T) {
		assert.Equal(t, domain.StatusAuthorized, domain.MapStatus(table, "AUTHORIZED"))
		assert.Equal(t, domain.StatusCaptured, domain.MapStatus(table, "captured"))
	})

	t.Run("unknown status degrades to raw uppercased string", func(t *testing.T) {
		got := domain.MapStatus(table, "awaiting_risk_review")

		assert.Equal(t, domain.Status("AWAITING_RISK_REVIEW"), got)
		assert.False(t, got.IsCanonical())
	})
}
