package wbapi

import (
	"context"
	"sort"
)

const suppliesPageLimit = 1000

// SupplyFilter - предикат отбора поставок.
type SupplyFilter func(Supply) bool

var (
	FilterAll    SupplyFilter = func(Supply) bool { return true }
	FilterActive SupplyFilter = func(s Supply) bool { return !s.Done }
	FilterClosed SupplyFilter = func(s Supply) bool { return s.Done }
)

// FetchSupplies выкачивает все страницы списка поставок и отбирает нужные.
// API отдаёт поставки пачками по курсору; последняя страница - неполная.
func FetchSupplies(ctx context.Context, client ClientInterface, filter SupplyFilter) ([]Supply, error) {
	next := 0
	var filtered []Supply
	for {
		page, nextCursor, err := client.GetSupplies(ctx, suppliesPageLimit, next)
		if err != nil {
			return nil, err
		}
		for _, supply := range page {
			if filter(supply) {
				filtered = append(filtered, supply)
			}
		}
		if len(page) < suppliesPageLimit {
			return filtered, nil
		}
		next = nextCursor
	}
}

// WaitingOrders собирает заказы из последних закрытых поставок, которые по
// статусу маркетплейса всё ещё ожидают сортировки.
func WaitingOrders(ctx context.Context, client ClientInterface, suppliesQuantity int) ([]Order, error) {
	closed, err := FetchSupplies(ctx, client, FilterClosed)
	if err != nil {
		return nil, err
	}
	sort.Slice(closed, func(i, j int) bool {
		return closed[i].CreatedAt.After(closed[j].CreatedAt)
	})
	if len(closed) > suppliesQuantity {
		closed = closed[:suppliesQuantity]
	}

	var orders []Order
	for _, supply := range closed {
		supplyOrders, err := client.GetSupplyOrders(ctx, supply.ID)
		if err != nil {
			return nil, err
		}
		orders = append(orders, supplyOrders...)
	}
	if len(orders) == 0 {
		return nil, nil
	}

	orderIDs := make([]int64, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}
	statuses, err := client.GetOrdersStatus(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	waiting := make(map[int64]struct{})
	for _, status := range statuses {
		if status.WBStatus == "waiting" {
			waiting[status.ID] = struct{}{}
		}
	}

	var waitingOrders []Order
	for _, order := range orders {
		if _, ok := waiting[order.ID]; ok {
			waitingOrders = append(waitingOrders, order)
		}
	}
	return waitingOrders, nil
}
