package integration

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 销售模块集成测试
// 重点验证售出/改量/删除/恢复与库存的联动

// sellBook 售出图书并返回销售记录
func sellBook(t *testing.T, token string, bookID uint, quantity int) *SaleData {
	t.Helper()

	resp := PostJSON(t, BaseURL+"/sales", map[string]interface{}{
		"book_id":  bookID,
		"quantity": quantity,
	}, token)
	require.Equal(t, 0, resp.Code, "售出应成功: %s", resp.Message)

	var data SaleData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return &data
}

// TestSaleCreate 测试售出与库存扣减
func TestSaleCreate(t *testing.T) {
	RequireServer(t)

	adminToken := LoginAdmin(t)
	_, userToken, userID := RegisterTestUser(t, "seller")

	bookID := CreateTestBook(t, adminToken, GenerateTestTitle("畅销书"), 5900, 10)

	t.Run("正常售出并扣减库存", func(t *testing.T) {
		sale := sellBook(t, userToken, bookID, 3)

		assert.Equal(t, bookID, sale.BookID)
		assert.Equal(t, userID, sale.UserID)
		assert.Equal(t, 3, sale.Quantity)
		assert.Equal(t, int64(5900), sale.UnitPrice, "应记录成交时的单价快照")
		assert.Equal(t, int64(17700), sale.Total)
		assert.Equal(t, "177.00", sale.TotalYuan)

		assert.Equal(t, 7, GetBookStock(t, userToken, bookID), "库存应从10扣到7")
	})

	t.Run("库存不足", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/sales", map[string]interface{}{
			"book_id":  bookID,
			"quantity": 100,
		}, userToken)
		assert.Equal(t, 40001, resp.Code, "超量售出应返回40001")
		assert.Equal(t, 7, GetBookStock(t, userToken, bookID), "失败不应扣库存")
	})

	t.Run("单价快照不随改价变化", func(t *testing.T) {
		sale := sellBook(t, userToken, bookID, 1)

		// 管理员改价
		upResp := PutJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID),
			map[string]interface{}{"price": 9900}, adminToken)
		require.Equal(t, 0, upResp.Code)

		// 历史销售记录的单价不变
		getResp := GetJSON(t, fmt.Sprintf("%s/sales/%d", BaseURL, sale.ID), userToken)
		require.Equal(t, 0, getResp.Code)

		var got SaleData
		require.NoError(t, json.Unmarshal(getResp.Data, &got))
		assert.Equal(t, int64(5900), got.UnitPrice, "历史记录应保留成交时单价")

		// 新售出使用新价格
		newSale := sellBook(t, userToken, bookID, 1)
		assert.Equal(t, int64(9900), newSale.UnitPrice)
	})

	t.Run("图书不存在", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/sales", map[string]interface{}{
			"book_id":  99999999,
			"quantity": 1,
		}, userToken)
		assert.Equal(t, 40402, resp.Code)
	})

	t.Run("已删除图书不能售出", func(t *testing.T) {
		deletedID := CreateTestBook(t, adminToken, GenerateTestTitle("已下架"), 1000, 5)
		delResp := DeleteJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, deletedID), adminToken)
		require.Equal(t, 0, delResp.Code)

		resp := PostJSON(t, BaseURL+"/sales", map[string]interface{}{
			"book_id":  deletedID,
			"quantity": 1,
		}, userToken)
		assert.Equal(t, 40402, resp.Code, "已删除图书应视为不存在")
	})

	t.Run("数量必须为正", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/sales", map[string]interface{}{
			"book_id":  bookID,
			"quantity": 0,
		}, userToken)
		assert.Equal(t, 40901, resp.Code, "quantity=0应被参数校验拒绝")
	})
}

// TestSaleUpdate 测试销售数量修改:本人或管理员可操作,改量联动库存
func TestSaleUpdate(t *testing.T) {
	RequireServer(t)

	adminToken := LoginAdmin(t)
	_, userToken, _ := RegisterTestUser(t, "upd_seller")

	bookID := CreateTestBook(t, adminToken, GenerateTestTitle("改量测试"), 2000, 10)
	sale := sellBook(t, userToken, bookID, 3) // 库存 10→7

	t.Run("加量扣库存", func(t *testing.T) {
		resp := PutJSON(t, fmt.Sprintf("%s/sales/%d", BaseURL, sale.ID),
			map[string]interface{}{"quantity": 5}, adminToken)
		require.Equal(t, 0, resp.Code, "改量应成功: %s", resp.Message)

		var data SaleData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, 5, data.Quantity)
		assert.Equal(t, int64(10000), data.Total, "总价应按单价快照重算")

		assert.Equal(t, 5, GetBookStock(t, userToken, bookID), "加量2应再扣2")
	})

	t.Run("减量回补库存", func(t *testing.T) {
		resp := PutJSON(t, fmt.Sprintf("%s/sales/%d", BaseURL, sale.ID),
			map[string]interface{}{"quantity": 2}, adminToken)
		require.Equal(t, 0, resp.Code)

		assert.Equal(t, 8, GetBookStock(t, userToken, bookID), "减量3应回补3")
	})

	t.Run("加量超过库存", func(t *testing.T) {
		resp := PutJSON(t, fmt.Sprintf("%s/sales/%d", BaseURL, sale.ID),
			map[string]interface{}{"quantity": 100}, adminToken)
		assert.Equal(t, 40001, resp.Code, "库存不足应返回40001")
		assert.Equal(t, 8, GetBookStock(t, userToken, bookID), "失败不应动库存")
	})

	t.Run("本人可改自己的记录", func(t *testing.T) {
		resp := PutJSON(t, fmt.Sprintf("%s/sales/%d", BaseURL, sale.ID),
			map[string]interface{}{"quantity": 1}, userToken)
		require.Equal(t, 0, resp.Code, "卖出人本人应可改量: %s", resp.Message)
		assert.Equal(t, 9, GetBookStock(t, userToken, bookID), "减量1应回补1")
	})

	t.Run("他人记录改量按不存在处理", func(t *testing.T) {
		_, strangerToken, _ := RegisterTestUser(t, "upd_stranger")
		resp := PutJSON(t, fmt.Sprintf("%s/sales/%d", BaseURL, sale.ID),
			map[string]interface{}{"quantity": 5}, strangerToken)
		assert.Equal(t, 40403, resp.Code, "非本人非管理员不应感知记录存在")
		assert.Equal(t, 9, GetBookStock(t, userToken, bookID), "失败不应动库存")
	})
}

// TestSaleDeleteAndRestore 测试销售记录软删除与恢复的库存联动
func TestSaleDeleteAndRestore(t *testing.T) {
	RequireServer(t)

	adminToken := LoginAdmin(t)
	_, userToken, _ := RegisterTestUser(t, "del_seller")

	bookID := CreateTestBook(t, adminToken, GenerateTestTitle("退货测试"), 3000, 10)
	sale := sellBook(t, userToken, bookID, 4) // 库存 10→6

	t.Run("删除回补库存", func(t *testing.T) {
		resp := DeleteJSON(t, fmt.Sprintf("%s/sales/%d", BaseURL, sale.ID), adminToken)
		require.Equal(t, 0, resp.Code, "删除应成功: %s", resp.Message)

		assert.Equal(t, 10, GetBookStock(t, userToken, bookID), "删除应回补4")
	})

	t.Run("重复删除不重复回补", func(t *testing.T) {
		resp := DeleteJSON(t, fmt.Sprintf("%s/sales/%d", BaseURL, sale.ID), adminToken)
		assert.Equal(t, 40006, resp.Code)
		assert.Equal(t, 10, GetBookStock(t, userToken, bookID), "库存不应变化")
	})

	t.Run("恢复重新扣库存", func(t *testing.T) {
		resp := PostJSON(t, fmt.Sprintf("%s/sales/%d/restore", BaseURL, sale.ID), nil, adminToken)
		require.Equal(t, 0, resp.Code, "恢复应成功: %s", resp.Message)

		assert.Equal(t, 6, GetBookStock(t, userToken, bookID), "恢复应重新扣4")
	})

	t.Run("库存不足时不能恢复", func(t *testing.T) {
		// 先删除，再把库存卖空，恢复时应失败
		delResp := DeleteJSON(t, fmt.Sprintf("%s/sales/%d", BaseURL, sale.ID), adminToken)
		require.Equal(t, 0, delResp.Code) // 库存回到10

		sellBook(t, userToken, bookID, 8) // 库存 10→2

		resp := PostJSON(t, fmt.Sprintf("%s/sales/%d/restore", BaseURL, sale.ID), nil, adminToken)
		assert.Equal(t, 40001, resp.Code, "库存2不够恢复4")
		assert.Equal(t, 2, GetBookStock(t, userToken, bookID), "失败不应动库存")
	})
}

// TestSaleVisibility 测试销售记录的归属与可见性
func TestSaleVisibility(t *testing.T) {
	RequireServer(t)

	adminToken := LoginAdmin(t)
	_, aliceToken, aliceID := RegisterTestUser(t, "alice_s")
	_, bobToken, _ := RegisterTestUser(t, "bob_s")

	bookID := CreateTestBook(t, adminToken, GenerateTestTitle("归属测试"), 1500, 100)

	aliceSale := sellBook(t, aliceToken, bookID, 2)
	sellBook(t, aliceToken, bookID, 1)
	sellBook(t, bobToken, bookID, 3)

	t.Run("普通用户只能看自己的记录", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/sales?book_id=%d", BaseURL, bookID), aliceToken)
		require.Equal(t, 0, resp.Code)

		var data SaleListData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		require.Equal(t, int64(2), data.Total, "alice应只看到自己的2条")
		for _, s := range data.List {
			assert.Equal(t, aliceID, s.UserID)
		}
	})

	t.Run("普通用户不能查看他人记录详情", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/sales/%d", BaseURL, aliceSale.ID), bobToken)
		assert.Equal(t, 40403, resp.Code, "他人记录应视为不存在")
	})

	t.Run("管理员可按用户过滤", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/sales?book_id=%d&user_id=%d", BaseURL, bookID, aliceID), adminToken)
		require.Equal(t, 0, resp.Code)

		var data SaleListData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, int64(2), data.Total)
	})

	t.Run("管理员可看全部记录", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/sales?book_id=%d", BaseURL, bookID), adminToken)
		require.Equal(t, 0, resp.Code)

		var data SaleListData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, int64(3), data.Total)
	})
}

// TestSaleConcurrentCreate 并发售出同一本书,验证不超卖
// 库存5本,10个goroutine各买1本:恰好5笔成功用尽库存,其余5笔因库存不足失败
func TestSaleConcurrentCreate(t *testing.T) {
	RequireServer(t)

	adminToken := LoginAdmin(t)
	_, userToken, _ := RegisterTestUser(t, "conc_seller")

	const stock = 5
	const workers = 10
	bookID := CreateTestBook(t, adminToken, GenerateTestTitle("并发测试"), 1000, stock)

	type outcome struct {
		code int
		err  error
	}
	results := make(chan outcome, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := TryPostJSON(BaseURL+"/sales", map[string]interface{}{
				"book_id":  bookID,
				"quantity": 1,
			}, userToken)
			results <- outcome{code: code, err: err}
		}()
	}
	wg.Wait()
	close(results)

	succeeded, insufficient := 0, 0
	for r := range results {
		require.NoError(t, r.err, "并发请求不应出现传输层错误")
		switch r.code {
		case 0:
			succeeded++
		case 40001:
			insufficient++
		default:
			t.Fatalf("意外的业务码: %d", r.code)
		}
	}

	assert.Equal(t, stock, succeeded, "成功笔数应恰好用尽库存")
	assert.Equal(t, workers-stock, insufficient, "其余请求应因库存不足失败")
	assert.Equal(t, 0, GetBookStock(t, userToken, bookID), "最终库存应为0")
}
