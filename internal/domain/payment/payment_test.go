package payment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	t.Run("records a valid settlement", func(t *testing.T) {
		shiftID := uuid.New()
		p, err := NewPayment(uuid.New(), uuid.New(), &shiftID, MethodCash, decimal.NewFromInt(40000), "", uuid.New())
		require.NoError(t, err)
		assert.True(t, p.IsCash())
		assert.Equal(t, &shiftID, p.ShiftID)
		assert.False(t, p.PaidAt.IsZero())
	})

	t.Run("rejects zero or negative amounts", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), uuid.New(), nil, MethodCard, decimal.Zero, "", uuid.New())
		assert.Error(t, err)
		_, err = NewPayment(uuid.New(), uuid.New(), nil, MethodCard, decimal.NewFromInt(-100), "", uuid.New())
		assert.Error(t, err)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), uuid.New(), nil, PaymentMethod("cheque"), decimal.NewFromInt(100), "", uuid.New())
		assert.Error(t, err)
	})
}

func TestRemainingBalance(t *testing.T) {
	billTotal := decimal.NewFromInt(39960)
	mk := func(method PaymentMethod, amount int64) Payment {
		p, err := NewPayment(uuid.New(), uuid.New(), nil, method, decimal.NewFromInt(amount), "", uuid.New())
		require.NoError(t, err)
		return *p
	}

	t.Run("split payments reduce remaining in sequence", func(t *testing.T) {
		payments := []Payment{mk(MethodCard, 20000)}
		assert.Equal(t, "19960", RemainingBalance(billTotal, payments).String())

		payments = append(payments, mk(MethodCash, 19000))
		assert.Equal(t, "960", RemainingBalance(billTotal, payments).String())
	})

	t.Run("surplus goes negative and reads as change", func(t *testing.T) {
		payments := []Payment{mk(MethodCash, 40000)}
		remaining := RemainingBalance(billTotal, payments)
		assert.Equal(t, "-40", remaining.String())
		assert.True(t, remaining.LessThanOrEqual(decimal.Zero))
	})

	t.Run("no payments leaves full total", func(t *testing.T) {
		assert.True(t, RemainingBalance(billTotal, nil).Equal(billTotal))
	})
}
