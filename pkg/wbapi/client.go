// Файл: pkg/wbapi/client.go
//
// Типизированный клиент WB Marketplace API (suppliers-api).
// Все вызовы проходят через единый ретраер: сетевые сбои повторяются с
// нарастающей задержкой, структурированные ошибки API - никогда.
package wbapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	marketplaceBaseURL = "https://suppliers-api.wildberries.ru"

	// Лимиты пакетных операций WB API
	maxOrdersPerQRBatch     = 100
	maxOrdersPerStatusBatch = 1000
	catalogPageLimit        = 100

	// Параметры png-стикеров
	stickerType   = "png"
	stickerWidth  = "58"
	stickerHeight = "40"
)

type ClientInterface interface {
	GetSupplies(ctx context.Context, limit int, next int) ([]Supply, int, error)
	GetSupply(ctx context.Context, supplyID string) (*Supply, error)
	GetSupplyOrders(ctx context.Context, supplyID string) ([]Order, error)
	GetNewOrders(ctx context.Context) ([]Order, error)
	CreateSupply(ctx context.Context, name string) (string, error)
	DeleteSupply(ctx context.Context, supplyID string) error
	SendSupplyToDeliver(ctx context.Context, supplyID string) error
	AddOrderToSupply(ctx context.Context, supplyID string, orderID int64) error
	GetOrderQRCodes(ctx context.Context, orderIDs []int64) ([]OrderQRCode, error)
	GetSupplyQRCode(ctx context.Context, supplyID string) (*SupplyQRCode, error)
	GetOrdersStatus(ctx context.Context, orderIDs []int64) ([]OrderStatus, error)
	GetProducts(ctx context.Context, articles []string) ([]Product, error)
}

type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	retrier    *retrier
}

type ClientOption func(*Client)

// WithBaseURL переопределяет адрес API (для тестов).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient подменяет http-клиент.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// withClock подменяет часы ретраера (для тестов).
func withClock(c clock, unit time.Duration) ClientOption {
	return func(cl *Client) {
		cl.retrier = newRetrier(c, unit)
	}
}

// NewClient создаёт клиент. Без токена работать не с чем - возвращаем
// ErrNotAuthenticated сразу, а не на первом вызове.
func NewClient(token string, options ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	client := &Client{
		token:      token,
		baseURL:    marketplaceBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retrier:    newRetrier(systemClock{}, time.Second),
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// --- ПОСТАВКИ ---

func (c *Client) GetSupplies(ctx context.Context, limit int, next int) ([]Supply, int, error) {
	query := url.Values{
		"limit": {strconv.Itoa(limit)},
		"next":  {strconv.Itoa(next)},
	}
	body, err := c.makeRequest(ctx, http.MethodGet, "/api/v3/supplies", query, nil)
	if err != nil {
		return nil, 0, err
	}

	var response struct {
		Supplies []Supply `json:"supplies"`
		Next     int      `json:"next"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, 0, fmt.Errorf("ошибка декодирования списка поставок: %w", err)
	}
	return response.Supplies, response.Next, nil
}

func (c *Client) GetSupply(ctx context.Context, supplyID string) (*Supply, error) {
	body, err := c.makeRequest(ctx, http.MethodGet, "/api/v3/supplies/"+supplyID, nil, nil)
	if err != nil {
		return nil, err
	}

	var supply Supply
	if err := json.Unmarshal(body, &supply); err != nil {
		return nil, fmt.Errorf("ошибка декодирования поставки: %w", err)
	}
	return &supply, nil
}

func (c *Client) CreateSupply(ctx context.Context, name string) (string, error) {
	body, err := c.makeRequest(ctx, http.MethodPost, "/api/v3/supplies", nil, map[string]string{"name": name})
	if err != nil {
		return "", err
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("ошибка декодирования ответа создания поставки: %w", err)
	}
	return response.ID, nil
}

func (c *Client) DeleteSupply(ctx context.Context, supplyID string) error {
	_, err := c.makeRequest(ctx, http.MethodDelete, "/api/v3/supplies/"+supplyID, nil, nil)
	return err
}

func (c *Client) SendSupplyToDeliver(ctx context.Context, supplyID string) error {
	_, err := c.makeRequest(ctx, http.MethodPatch, "/api/v3/supplies/"+supplyID+"/deliver", nil, nil)
	return err
}

// --- ЗАКАЗЫ ---

func (c *Client) GetSupplyOrders(ctx context.Context, supplyID string) ([]Order, error) {
	body, err := c.makeRequest(ctx, http.MethodGet, "/api/v3/supplies/"+supplyID+"/orders", nil, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Orders []Order `json:"orders"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("ошибка декодирования заказов поставки: %w", err)
	}
	// API не проставляет supplyId в заказах поставки
	for i := range response.Orders {
		response.Orders[i].SupplyID = supplyID
	}
	return response.Orders, nil
}

func (c *Client) GetNewOrders(ctx context.Context) ([]Order, error) {
	body, err := c.makeRequest(ctx, http.MethodGet, "/api/v3/orders/new", nil, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Orders []Order `json:"orders"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("ошибка декодирования новых заказов: %w", err)
	}
	return response.Orders, nil
}

func (c *Client) AddOrderToSupply(ctx context.Context, supplyID string, orderID int64) error {
	path := fmt.Sprintf("/api/v3/supplies/%s/orders/%d", supplyID, orderID)
	_, err := c.makeRequest(ctx, http.MethodPatch, path, nil, nil)
	return err
}

func (c *Client) GetOrdersStatus(ctx context.Context, orderIDs []int64) ([]OrderStatus, error) {
	var statuses []OrderStatus
	for _, batch := range chunk(orderIDs, maxOrdersPerStatusBatch) {
		body, err := c.makeRequest(ctx, http.MethodPost, "/api/v3/orders/status", nil, map[string][]int64{"orders": batch})
		if err != nil {
			return nil, err
		}

		var response struct {
			Orders []OrderStatus `json:"orders"`
		}
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("ошибка декодирования статусов заказов: %w", err)
		}
		statuses = append(statuses, response.Orders...)
	}
	return statuses, nil
}

// --- СТИКЕРЫ ---

func (c *Client) GetOrderQRCodes(ctx context.Context, orderIDs []int64) ([]OrderQRCode, error) {
	query := url.Values{
		"type":   {stickerType},
		"width":  {stickerWidth},
		"height": {stickerHeight},
	}

	var codes []OrderQRCode
	for _, batch := range chunk(orderIDs, maxOrdersPerQRBatch) {
		body, err := c.makeRequest(ctx, http.MethodPost, "/api/v3/orders/stickers", query, map[string][]int64{"orders": batch})
		if err != nil {
			return nil, err
		}

		var response struct {
			Stickers []OrderQRCode `json:"stickers"`
		}
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("ошибка декодирования стикеров: %w", err)
		}
		codes = append(codes, response.Stickers...)
	}
	return codes, nil
}

func (c *Client) GetSupplyQRCode(ctx context.Context, supplyID string) (*SupplyQRCode, error) {
	query := url.Values{
		"type":   {stickerType},
		"width":  {stickerWidth},
		"height": {stickerHeight},
	}
	body, err := c.makeRequest(ctx, http.MethodGet, "/api/v3/supplies/"+supplyID+"/barcode", query, nil)
	if err != nil {
		return nil, err
	}

	var code SupplyQRCode
	if err := json.Unmarshal(body, &code); err != nil {
		return nil, fmt.Errorf("ошибка декодирования QR-кода поставки: %w", err)
	}
	return &code, nil
}

// --- КАТАЛОГ ---

type catalogCursor struct {
	Limit     int    `json:"limit"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	NmID      int64  `json:"nmID,omitempty"`
}

type catalogRequest struct {
	Settings struct {
		Cursor catalogCursor `json:"cursor"`
		Filter struct {
			WithPhoto int `json:"withPhoto"`
		} `json:"filter"`
	} `json:"settings"`
}

// GetProducts сканирует каталог курсором и собирает карточки запрошенных
// артикулов. Скан останавливается, как только найдены все артикулы - весь
// каталог ради подмножества не выкачивается.
func (c *Client) GetProducts(ctx context.Context, articles []string) ([]Product, error) {
	wanted := make(map[string]struct{}, len(articles))
	for _, article := range articles {
		wanted[article] = struct{}{}
	}

	request := catalogRequest{}
	request.Settings.Cursor.Limit = catalogPageLimit
	request.Settings.Filter.WithPhoto = -1

	var products []Product
	for len(wanted) > 0 {
		body, err := c.makeRequest(ctx, http.MethodPost, "/content/v2/get/cards/list", nil, request)
		if err != nil {
			return nil, err
		}

		var response struct {
			Cards  []productCard `json:"cards"`
			Cursor struct {
				UpdatedAt string `json:"updatedAt"`
				NmID      int64  `json:"nmID"`
				Total     int    `json:"total"`
			} `json:"cursor"`
		}
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("ошибка декодирования каталога: %w", err)
		}

		for _, card := range response.Cards {
			if _, ok := wanted[card.VendorCode]; !ok {
				continue
			}
			products = append(products, card.toProduct())
			delete(wanted, card.VendorCode)
			if len(wanted) == 0 {
				break
			}
		}

		if response.Cursor.Total < catalogPageLimit {
			break
		}
		request.Settings.Cursor.UpdatedAt = response.Cursor.UpdatedAt
		request.Settings.Cursor.NmID = response.Cursor.NmID
	}
	return products, nil
}

// --- ТРАНСПОРТ ---

// makeRequest выполняет запрос к API с ретраями на сетевых сбоях.
// Ответы со статусом >= 400 превращаются в MarketplaceError и не повторяются.
func (c *Client) makeRequest(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	var requestBody []byte
	if payload != nil {
		var err error
		requestBody, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
	}

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var responseBody []byte
	err := c.retrier.do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, method, requestURL, bytes.NewReader(requestBody))
		if err != nil {
			return fmt.Errorf("ошибка создания запроса: %w", err)
		}
		req.Header.Set("Authorization", c.token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode >= http.StatusBadRequest {
			return decodeAPIError(resp.StatusCode, body)
		}

		responseBody = body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responseBody, nil
}

// decodeAPIError разбирает тело ошибки WB API. Встречаются два формата:
// {"code": ..., "message": ...} и {"error": true, "errorText": ...}.
func decodeAPIError(statusCode int, body []byte) error {
	var structured struct {
		Code             string `json:"code"`
		Message          string `json:"message"`
		Error            bool   `json:"error"`
		ErrorText        string `json:"errorText"`
		AdditionalErrors string `json:"additionalErrors"`
	}
	if err := json.Unmarshal(body, &structured); err == nil {
		if structured.Message != "" {
			return &MarketplaceError{Code: structured.Code, Message: structured.Message}
		}
		if structured.Error {
			message := structured.ErrorText
			if structured.AdditionalErrors != "" {
				message = fmt.Sprintf("%s: %s", structured.ErrorText, structured.AdditionalErrors)
			}
			return &MarketplaceError{Message: message}
		}
	}
	return &MarketplaceError{
		Code:    strconv.Itoa(statusCode),
		Message: http.StatusText(statusCode),
	}
}

func chunk[T any](items []T, size int) [][]T {
	var chunks [][]T
	for size > 0 && len(items) > 0 {
		if len(items) < size {
			size = len(items)
		}
		chunks = append(chunks, items[:size])
		items = items[size:]
	}
	return chunks
}
