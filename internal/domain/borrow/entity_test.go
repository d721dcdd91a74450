package borrow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

func TestNewTicket(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ticket := NewTicket(9, now, DefaultLoanPeriod)

	assert.Equal(t, TicketStatusPending, ticket.Status)
	assert.Equal(t, now.AddDate(0, 0, 14), ticket.DueDate, "应还日期=结算时间+14天")
}

func TestTicketLifecycle(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("取书后借期重新起算", func(t *testing.T) {
		ticket := NewTicket(9, start, DefaultLoanPeriod)
		pickup := start.Add(48 * time.Hour)

		require.NoError(t, ticket.Confirm(pickup, DefaultLoanPeriod))
		assert.Equal(t, TicketStatusActive, ticket.Status)
		assert.Equal(t, pickup.Add(DefaultLoanPeriod), ticket.DueDate)

		require.NoError(t, ticket.Return(pickup.Add(time.Hour)))
		assert.Equal(t, TicketStatusReturned, ticket.Status)
		require.NotNil(t, ticket.ReturnedAt)
	})

	t.Run("非法流转", func(t *testing.T) {
		ticket := NewTicket(9, start, DefaultLoanPeriod)

		err := ticket.Return(start)
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)

		require.NoError(t, ticket.Cancel(start))
		assert.ErrorIs(t, ticket.Confirm(start, DefaultLoanPeriod), ErrInvalidStatusTransition)
		assert.Equal(t, TicketStatusCancelled, ticket.Status)
	})

	t.Run("逾期判断", func(t *testing.T) {
		ticket := NewTicket(9, start, DefaultLoanPeriod)
		require.NoError(t, ticket.Confirm(start, DefaultLoanPeriod))

		assert.False(t, ticket.IsOverdue(start.Add(24*time.Hour)))
		assert.True(t, ticket.IsOverdue(start.Add(15*24*time.Hour)))
	})
}

func TestTicketNumber(t *testing.T) {
	assert.Equal(t, "BRW-000123", TicketNumber(123))
	assert.Equal(t, "BRW-1234567", TicketNumber(1234567))

	id, err := ParseTicketNumber(" brw-000123 ")
	require.NoError(t, err)
	assert.Equal(t, uint(123), id)

	id, err = ParseTicketNumber("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = ParseTicketNumber("BRW-abc")
	assert.ErrorIs(t, err, ErrInvalidTicketNumber)
}

func TestShortfalls(t *testing.T) {
	shortfalls := []Shortfall{NewShortfall(5, "三体", 5, 3)}
	err := NewInsufficientStockError(shortfalls)

	assert.True(t, apperrors.IsInsufficientStock(err))
	assert.Equal(t, shortfalls, ShortfallsOf(err))
	assert.Contains(t, shortfalls[0].Message, "仅剩3本")
	assert.Nil(t, ShortfallsOf(apperrors.ErrConflict))
}

func TestTicketIDs(t *testing.T) {
	ticket := &Ticket{Lines: []Line{
		{CopyID: 11, BookID: 1},
		{CopyID: 12, BookID: 1},
		{CopyID: 21, BookID: 2},
	}}

	assert.Equal(t, []uint{11, 12, 21}, ticket.CopyIDs())
	assert.Equal(t, []uint{1, 2}, ticket.BookIDs())
}
