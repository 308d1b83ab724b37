package sale

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/sale"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 测试用操作人:记录归属用户10
var (
	asOwner    = Actor{UserID: 10, Role: 1}
	asStranger = Actor{UserID: 20, Role: 1}
	asAdmin    = Actor{UserID: 1, Role: 2}
)

// sellOne 创建一条销售记录供后续测试使用
func sellOne(t *testing.T, saleRepo *memSaleRepo, bookRepo *memBookRepo, bookID uint, qty int) *sale.Sale {
	t.Helper()
	uc := NewCreateSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
	info, err := uc.Execute(context.Background(), CreateSaleRequest{BookID: bookID, UserID: 10, Quantity: qty})
	require.NoError(t, err)
	s, err := saleRepo.FindByID(context.Background(), info.ID)
	require.NoError(t, err)
	return s
}

func TestUpdateSale(t *testing.T) {
	ctx := context.Background()

	t.Run("加量扣库存", func(t *testing.T) {
		bookRepo := newMemBookRepo(testBook(1, 1000, 10))
		saleRepo := newMemSaleRepo()
		s := sellOne(t, saleRepo, bookRepo, 1, 3) // 库存剩7

		publisher := &recordingPublisher{}
		uc := NewUpdateSaleUseCase(saleRepo, bookRepo, passTx{}, publisher)

		result, err := uc.Execute(ctx, asOwner, UpdateSaleRequest{SaleID: s.ID, Quantity: 5})
		require.NoError(t, err)
		assert.Equal(t, 5, result.Quantity)
		assert.Equal(t, int64(5000), result.Total, "总价按单价快照重算")
		assert.Equal(t, 5, bookRepo.stock(1), "多卖2本,库存7→5")
		assert.Equal(t, []string{"sale.updated"}, publisher.keys)
	})

	t.Run("减量回补库存", func(t *testing.T) {
		bookRepo := newMemBookRepo(testBook(1, 1000, 10))
		saleRepo := newMemSaleRepo()
		s := sellOne(t, saleRepo, bookRepo, 1, 5) // 库存剩5

		uc := NewUpdateSaleUseCase(saleRepo, bookRepo, passTx{}, nil)

		result, err := uc.Execute(ctx, asOwner, UpdateSaleRequest{SaleID: s.ID, Quantity: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(2000), result.Total)
		assert.Equal(t, 8, bookRepo.stock(1), "退回3本,库存5→8")
	})

	t.Run("加量超过库存失败", func(t *testing.T) {
		bookRepo := newMemBookRepo(testBook(1, 1000, 5))
		saleRepo := newMemSaleRepo()
		s := sellOne(t, saleRepo, bookRepo, 1, 3) // 库存剩2

		uc := NewUpdateSaleUseCase(saleRepo, bookRepo, passTx{}, nil)

		// 3→6需要再扣3本,但只剩2本
		_, err := uc.Execute(ctx, asOwner, UpdateSaleRequest{SaleID: s.ID, Quantity: 6})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInsufficientStock, apperrors.GetAppError(err).Code)

		// 原记录不变
		unchanged, err := saleRepo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, unchanged.Quantity)
	})

	t.Run("已删除记录不可修改", func(t *testing.T) {
		bookRepo := newMemBookRepo(testBook(1, 1000, 10))
		saleRepo := newMemSaleRepo()
		s := sellOne(t, saleRepo, bookRepo, 1, 3)

		del := NewDeleteSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
		require.NoError(t, del.Execute(ctx, asOwner, s.ID))

		uc := NewUpdateSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
		_, err := uc.Execute(ctx, asOwner, UpdateSaleRequest{SaleID: s.ID, Quantity: 5})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeAlreadyDeleted, apperrors.GetAppError(err).Code)
	})

	t.Run("图书已删除时不可改量", func(t *testing.T) {
		bookRepo := newMemBookRepo(testBook(1, 1000, 10))
		saleRepo := newMemSaleRepo()
		s := sellOne(t, saleRepo, bookRepo, 1, 3) // 库存剩7

		b, err := bookRepo.FindByID(ctx, 1)
		require.NoError(t, err)
		b.MarkDeleted()
		require.NoError(t, bookRepo.Update(ctx, b))

		uc := NewUpdateSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
		_, err = uc.Execute(ctx, asOwner, UpdateSaleRequest{SaleID: s.ID, Quantity: 5})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeBookNotFound, apperrors.GetAppError(err).Code)
		assert.Equal(t, 7, bookRepo.stock(1), "下架图书的库存不应被改动")

		unchanged, err := saleRepo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, unchanged.Quantity)
	})

	t.Run("他人记录按不存在处理", func(t *testing.T) {
		bookRepo := newMemBookRepo(testBook(1, 1000, 10))
		saleRepo := newMemSaleRepo()
		s := sellOne(t, saleRepo, bookRepo, 1, 3)

		uc := NewUpdateSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
		_, err := uc.Execute(ctx, asStranger, UpdateSaleRequest{SaleID: s.ID, Quantity: 5})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeSaleNotFound, apperrors.GetAppError(err).Code, "不暴露他人记录的存在")
		assert.Equal(t, 7, bookRepo.stock(1), "库存不变")
	})

	t.Run("管理员可修改任意记录", func(t *testing.T) {
		bookRepo := newMemBookRepo(testBook(1, 1000, 10))
		saleRepo := newMemSaleRepo()
		s := sellOne(t, saleRepo, bookRepo, 1, 3)

		uc := NewUpdateSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
		result, err := uc.Execute(ctx, asAdmin, UpdateSaleRequest{SaleID: s.ID, Quantity: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Quantity)
		assert.Equal(t, 9, bookRepo.stock(1))
	})

	t.Run("记录不存在", func(t *testing.T) {
		uc := NewUpdateSaleUseCase(newMemSaleRepo(), newMemBookRepo(), passTx{}, nil)
		_, err := uc.Execute(ctx, asOwner, UpdateSaleRequest{SaleID: 999, Quantity: 5})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeSaleNotFound, apperrors.GetAppError(err).Code)
	})
}

func TestDeleteSale(t *testing.T) {
	ctx := context.Background()

	t.Run("删除回补库存", func(t *testing.T) {
		bookRepo := newMemBookRepo(testBook(1, 1000, 10))
		saleRepo := newMemSaleRepo()
		s := sellOne(t, saleRepo, bookRepo, 1, 4) // 库存剩6

		publisher := &recordingPublisher{}
		uc := NewDeleteSaleUseCase(saleRepo, bookRepo, passTx{}, publisher)

		require.NoError(t, uc.Execute(ctx, asOwner, s.ID))
		assert.Equal(t, 10, bookRepo.stock(1), "删除后4本回补,库存6→10")

		deleted, err := saleRepo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, deleted.Deleted, "软删除:记录仍然存在")
		assert.Equal(t, []string{"sale.deleted"}, publisher.keys)
	})

	t.Run("他人记录不可删除", func(t *testing.T) {
		bookRepo := newMemBookRepo(testBook(1, 1000, 10))
		saleRepo := newMemSaleRepo()
		s := sellOne(t, saleRepo, bookRepo, 1, 4)

		uc := NewDeleteSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
		err := uc.Execute(ctx, asStranger, s.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeSaleNotFound, apperrors.GetAppError(err).Code)
		assert.Equal(t, 6, bookRepo.stock(1), "库存不回补")
	})

	t.Run("重复删除报错", func(t *testing.T) {
		bookRepo := newMemBookRepo(testBook(1, 1000, 10))
		saleRepo := newMemSaleRepo()
		s := sellOne(t, saleRepo, bookRepo, 1, 4)

		uc := NewDeleteSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
		require.NoError(t, uc.Execute(ctx, asOwner, s.ID))

		err := uc.Execute(ctx, asOwner, s.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeAlreadyDeleted, apperrors.GetAppError(err).Code)
		assert.Equal(t, 10, bookRepo.stock(1), "重复删除不应重复回补库存")
	})
}

func TestRestoreSale(t *testing.T) {
	ctx := context.Background()

	t.Run("恢复重新扣库存", func(t *testing.T) {
		bookRepo := newMemBookRepo(testBook(1, 1000, 10))
		saleRepo := newMemSaleRepo()
		s := sellOne(t, saleRepo, bookRepo, 1, 4) // 库存剩6

		del := NewDeleteSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
		require.NoError(t, del.Execute(ctx, asOwner, s.ID)) // 库存回到10

		uc := NewRestoreSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
		result, err := uc.Execute(ctx, asOwner, s.ID)
		require.NoError(t, err)
		assert.False(t, result.Deleted)
		assert.Equal(t, 6, bookRepo.stock(1), "恢复后重新扣4本")
	})

	t.Run("库存不足时恢复失败", func(t *testing.T) {
		bookRepo := newMemBookRepo(testBook(1, 1000, 5))
		saleRepo := newMemSaleRepo()
		s := sellOne(t, saleRepo, bookRepo, 1, 4) // 库存剩1

		del := NewDeleteSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
		require.NoError(t, del.Execute(ctx, asOwner, s.ID)) // 库存回到5

		// 此时又被别人卖掉3本
		other := sellOne(t, saleRepo, bookRepo, 1, 3) // 库存剩2
		_ = other

		uc := NewRestoreSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
		_, err := uc.Execute(ctx, asOwner, s.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInsufficientStock, apperrors.GetAppError(err).Code)

		// 记录保持删除状态
		still, err := saleRepo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, still.Deleted)
	})

	t.Run("未删除记录不可恢复", func(t *testing.T) {
		bookRepo := newMemBookRepo(testBook(1, 1000, 10))
		saleRepo := newMemSaleRepo()
		s := sellOne(t, saleRepo, bookRepo, 1, 2)

		uc := NewRestoreSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
		_, err := uc.Execute(ctx, asOwner, s.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotDeleted, apperrors.GetAppError(err).Code)
	})

	t.Run("图书已删除时不可恢复", func(t *testing.T) {
		bookRepo := newMemBookRepo(testBook(1, 1000, 10))
		saleRepo := newMemSaleRepo()
		s := sellOne(t, saleRepo, bookRepo, 1, 2)

		del := NewDeleteSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
		require.NoError(t, del.Execute(ctx, asOwner, s.ID))

		// 删除图书
		b, err := bookRepo.FindByID(ctx, 1)
		require.NoError(t, err)
		b.MarkDeleted()
		require.NoError(t, bookRepo.Update(ctx, b))

		uc := NewRestoreSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
		_, err = uc.Execute(ctx, asOwner, s.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeBookNotFound, apperrors.GetAppError(err).Code)
	})
}

func TestListSales(t *testing.T) {
	ctx := context.Background()
	bookRepo := newMemBookRepo(testBook(1, 1000, 100))
	saleRepo := newMemSaleRepo()

	create := NewCreateSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
	for i := 0; i < 3; i++ {
		_, err := create.Execute(ctx, CreateSaleRequest{BookID: 1, UserID: 10, Quantity: 1})
		require.NoError(t, err)
	}
	other, err := create.Execute(ctx, CreateSaleRequest{BookID: 1, UserID: 20, Quantity: 1})
	require.NoError(t, err)

	// 删除一条
	del := NewDeleteSaleUseCase(saleRepo, bookRepo, passTx{}, nil)
	require.NoError(t, del.Execute(ctx, asAdmin, other.ID))

	uc := NewListSalesUseCase(saleRepo)

	t.Run("按操作人过滤", func(t *testing.T) {
		result, err := uc.Execute(ctx, ListSalesRequest{UserID: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Total)
	})

	t.Run("默认不含已删除", func(t *testing.T) {
		result, err := uc.Execute(ctx, ListSalesRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Total)
	})

	t.Run("管理员可查已删除", func(t *testing.T) {
		result, err := uc.Execute(ctx, ListSalesRequest{IncludeDeleted: true})
		require.NoError(t, err)
		assert.Equal(t, int64(4), result.Total)
	})
}
