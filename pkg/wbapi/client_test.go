package wbapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-token", WithBaseURL(server.URL), withClock(&fakeClock{now: time.Unix(0, 0)}, time.Second))
	require.NoError(t, err)
	return client
}

func TestNewClient_WithoutToken(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestClient_GetSupplies(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/supplies", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))

		fmt.Fprint(w, `{"supplies": [
			{"id": "WB-GI-1", "name": "Первая", "createdAt": "2026-08-01T10:00:00Z", "done": false},
			{"id": "WB-GI-2", "name": "Вторая", "createdAt": "2026-08-02T10:00:00Z", "done": true, "closedAt": "2026-08-03T10:00:00Z"}
		], "next": 13}`)
	}))

	supplies, next, err := client.GetSupplies(context.Background(), 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, 13, next)
	require.Len(t, supplies, 2)
	assert.Equal(t, "Первая | WB-GI-1 | Открыта", supplies[0].String())
	assert.Equal(t, "Вторая | WB-GI-2 | Закрыта", supplies[1].String())
	require.NotNil(t, supplies[1].ClosedAt)
}

func TestClient_GetSupplyOrders_FillsSupplyID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/supplies/WB-GI-7/orders", r.URL.Path)
		fmt.Fprint(w, `{"orders": [{"id": 101, "article": "shirt-01", "createdAt": "2026-08-20T10:00:00Z", "convertedPrice": 150000}]}`)
	}))

	orders, err := client.GetSupplyOrders(context.Background(), "WB-GI-7")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "WB-GI-7", orders[0].SupplyID)
	assert.Equal(t, "shirt-01", orders[0].Article)
}

func TestClient_MarketplaceErrorNotRetried(t *testing.T) {
	requests := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"code": "SupplyHasOrders", "message": "в поставке есть заказы"}`)
	}))

	err := client.DeleteSupply(context.Background(), "WB-GI-1")

	var marketplaceErr *MarketplaceError
	require.ErrorAs(t, err, &marketplaceErr)
	assert.Equal(t, "SupplyHasOrders", marketplaceErr.Code)
	assert.Equal(t, "в поставке есть заказы", marketplaceErr.Message)
	assert.Equal(t, 1, requests, "структурированная ошибка не должна ретраиться")
}

func TestClient_TransientFailureRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			// Обрываем соединение: клиент получит сетевую ошибку
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		fmt.Fprint(w, `{"orders": []}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient("test-token", WithBaseURL(server.URL), withClock(&fakeClock{now: time.Unix(0, 0)}, time.Second))
	require.NoError(t, err)

	_, err = client.GetNewOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
}

func TestClient_GetOrderQRCodes_Batches(t *testing.T) {
	var batchSizes []int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Orders []int64 `json:"orders"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		batchSizes = append(batchSizes, len(payload.Orders))

		stickers := make([]OrderQRCode, 0, len(payload.Orders))
		for _, id := range payload.Orders {
			stickers = append(stickers, OrderQRCode{OrderID: id, PartA: "23", PartB: "1705"})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"stickers": stickers})
	}))

	orderIDs := make([]int64, 250)
	for i := range orderIDs {
		orderIDs[i] = int64(i + 1)
	}

	codes, err := client.GetOrderQRCodes(context.Background(), orderIDs)
	require.NoError(t, err)
	assert.Len(t, codes, 250)
	assert.Equal(t, []int{100, 100, 50}, batchSizes)
}

func TestClient_GetProducts_StopsWhenAllArticlesFound(t *testing.T) {
	// Каталог из 10 страниц; запрошенные артикулы лежат на первых двух
	pagesServed := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/content/v2/get/cards/list", r.URL.Path)
		pagesServed++

		cards := make([]map[string]interface{}, 0, catalogPageLimit)
		for i := 0; i < catalogPageLimit; i++ {
			cards = append(cards, map[string]interface{}{
				"vendorCode": fmt.Sprintf("art-%d-%d", pagesServed, i),
				"title":      "Футболка",
				"brand":      "NoName",
				"sizes":      []map[string]interface{}{{"skus": []string{"2000000000000"}}},
			})
		}
		if pagesServed == 1 {
			cards[10]["vendorCode"] = "wanted-a"
		}
		if pagesServed == 2 {
			cards[20]["vendorCode"] = "wanted-b"
			cards[20]["characteristics"] = []map[string]interface{}{
				{"name": "Цвет", "value": []string{"синий"}},
				{"name": "Страна производства", "value": []string{"Россия"}},
			}
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"cards":  cards,
			"cursor": map[string]interface{}{"updatedAt": fmt.Sprintf("2026-08-%02dT00:00:00Z", pagesServed), "nmID": pagesServed * 1000, "total": catalogPageLimit},
		})
	}))

	products, err := client.GetProducts(context.Background(), []string{"wanted-a", "wanted-b"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 2, pagesServed, "скан должен остановиться, когда все артикулы найдены")

	byArticle := map[string]Product{}
	for _, p := range products {
		byArticle[p.Article] = p
	}
	assert.Equal(t, []string{"синий"}, byArticle["wanted-b"].Colors)
	assert.Equal(t, []string{"Россия"}, byArticle["wanted-b"].Countries)
	assert.Equal(t, "2000000000000", byArticle["wanted-a"].Barcode)
}

func TestOrder_Age(t *testing.T) {
	order := Order{CreatedAt: time.Now().Add(-(2*time.Hour + 5*time.Minute))}
	assert.Equal(t, "02ч. 05м.", order.Age())
}
