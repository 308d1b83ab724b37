package sale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSale(t *testing.T) {
	s, err := NewSale(1, 2, 3, 7900)
	require.NoError(t, err)

	assert.Equal(t, uint(1), s.BookID)
	assert.Equal(t, uint(2), s.UserID)
	assert.Equal(t, 3, s.Quantity)
	assert.Equal(t, int64(7900), s.UnitPrice)
	assert.Equal(t, int64(23700), s.Total, "总价 = 单价 * 数量")
	assert.False(t, s.Deleted)
	assert.False(t, s.SoldAt.IsZero())
}

func TestNewSaleInvalidQuantity(t *testing.T) {
	_, err := NewSale(1, 2, 0, 7900)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewSale(1, 2, -1, 7900)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestChangeQuantity(t *testing.T) {
	s, err := NewSale(1, 2, 3, 1000)
	require.NoError(t, err)

	require.NoError(t, s.ChangeQuantity(5))
	assert.Equal(t, 5, s.Quantity)
	assert.Equal(t, int64(5000), s.Total, "总价基于成交单价快照重算")

	// 图书改价不影响已有记录:单价快照保持不变
	assert.Equal(t, int64(1000), s.UnitPrice)

	assert.ErrorIs(t, s.ChangeQuantity(0), ErrInvalidQuantity)
	assert.Equal(t, 5, s.Quantity, "失败的修改不应改变数量")
}

func TestMarkDeletedAndRestore(t *testing.T) {
	s, err := NewSale(1, 2, 3, 1000)
	require.NoError(t, err)

	s.MarkDeleted()
	assert.True(t, s.Deleted)

	s.Restore()
	assert.False(t, s.Deleted)
}
