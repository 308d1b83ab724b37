package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBook(t *testing.T) {
	b := NewBook("Go程序设计语言", "Alan Donovan", "编程", 7900, 10)

	assert.Equal(t, "Go程序设计语言", b.Title)
	assert.Equal(t, int64(7900), b.Price)
	assert.Equal(t, 10, b.Stock)
	assert.False(t, b.Deleted)
}

func TestUpdatePrice(t *testing.T) {
	b := NewBook("测试图书", "作者", "分类", 1000, 5)

	require.NoError(t, b.UpdatePrice(2000))
	assert.Equal(t, int64(2000), b.Price)

	// 非法价格
	assert.ErrorIs(t, b.UpdatePrice(0), ErrInvalidPrice)
	assert.ErrorIs(t, b.UpdatePrice(-100), ErrInvalidPrice)
	assert.Equal(t, int64(2000), b.Price, "失败的更新不应修改价格")
}

func TestDecrStock(t *testing.T) {
	b := NewBook("测试图书", "作者", "分类", 1000, 5)

	require.NoError(t, b.DecrStock(3))
	assert.Equal(t, 2, b.Stock)

	// 库存不足
	assert.ErrorIs(t, b.DecrStock(3), ErrInsufficientStock)
	assert.Equal(t, 2, b.Stock, "失败的扣减不应修改库存")

	// 扣到0是允许的
	require.NoError(t, b.DecrStock(2))
	assert.Equal(t, 0, b.Stock)

	// 数量非法
	assert.ErrorIs(t, b.DecrStock(0), ErrInvalidQuantity)
	assert.ErrorIs(t, b.DecrStock(-1), ErrInvalidQuantity)
}

func TestIncrStock(t *testing.T) {
	b := NewBook("测试图书", "作者", "分类", 1000, 0)

	require.NoError(t, b.IncrStock(5))
	assert.Equal(t, 5, b.Stock)

	assert.ErrorIs(t, b.IncrStock(0), ErrInvalidQuantity)
}

func TestUpdateStock(t *testing.T) {
	b := NewBook("测试图书", "作者", "分类", 1000, 5)

	require.NoError(t, b.UpdateStock(0))
	assert.Equal(t, 0, b.Stock)

	assert.ErrorIs(t, b.UpdateStock(-1), ErrInvalidStock)
}

func TestMarkDeletedAndRestore(t *testing.T) {
	b := NewBook("测试图书", "作者", "分类", 1000, 5)

	b.MarkDeleted()
	assert.True(t, b.Deleted)

	b.Restore()
	assert.False(t, b.Deleted)
}

func TestUpdateInfo(t *testing.T) {
	b := NewBook("旧书名", "旧作者", "旧分类", 1000, 5)

	// 空字符串表示不修改
	b.UpdateInfo("新书名", "", "新分类")
	assert.Equal(t, "新书名", b.Title)
	assert.Equal(t, "旧作者", b.Author)
	assert.Equal(t, "新分类", b.Category)
}
