package wbapi

import (
	"fmt"
	"time"
)

// Supply - поставка (партия заказов, отправляемых вместе).
type Supply struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ClosedAt  *time.Time `json:"closedAt"`
	CreatedAt time.Time  `json:"createdAt"`
	Done      bool       `json:"done"`
}

func (s Supply) String() string {
	status := "Открыта"
	if s.Done {
		status = "Закрыта"
	}
	return fmt.Sprintf("%s | %s | %s", s.Name, s.ID, status)
}

// Order - сборочное задание маркетплейса.
type Order struct {
	ID        int64     `json:"id"`
	SupplyID  string    `json:"supplyId"`
	Article   string    `json:"article"`
	CreatedAt time.Time `json:"createdAt"`
	// Цена в копейках
	Price int64 `json:"convertedPrice"`
}

// Age возвращает возраст заказа в формате "ЧЧч. ММм.".
// Считается на момент вызова, никогда не кешируется.
func (o Order) Age() string {
	elapsed := time.Since(o.CreatedAt)
	hours := int(elapsed.Hours())
	minutes := int(elapsed.Minutes()) % 60
	if hours < 0 || minutes < 0 {
		hours, minutes = 0, 0
	}
	return fmt.Sprintf("%02dч. %02dм.", hours, minutes)
}

func (o Order) String() string {
	return fmt.Sprintf("%s | %s", o.Article, o.Age())
}

// OrderStatus - пара статусов заказа: со стороны продавца и маркетплейса.
type OrderStatus struct {
	ID             int64  `json:"id"`
	SupplierStatus string `json:"supplierStatus"`
	WBStatus       string `json:"wbStatus"`
}

// OrderQRCode - стикер заказа: png в base64 плюс человекочитаемые части.
type OrderQRCode struct {
	OrderID int64  `json:"orderId"`
	File    string `json:"file"`
	PartA   string `json:"partA"`
	PartB   string `json:"partB"`
}

// SupplyQRCode - QR-код поставки.
type SupplyQRCode struct {
	Barcode string `json:"barcode"`
	File    string `json:"file"`
}

// Product - карточка товара из каталога.
type Product struct {
	Article   string
	Name      string
	Barcode   string
	Brand     string
	Countries []string
	Colors    []string
	MediaURLs []string
}

// productCard - сырой ответ каталога content/v2.
type productCard struct {
	VendorCode      string `json:"vendorCode"`
	Brand           string `json:"brand"`
	Title           string `json:"title"`
	Characteristics []struct {
		Name  string      `json:"name"`
		Value interface{} `json:"value"`
	} `json:"characteristics"`
	Sizes []struct {
		Skus []string `json:"skus"`
	} `json:"sizes"`
	Photos []struct {
		Big string `json:"big"`
	} `json:"photos"`
}

func (c productCard) toProduct() Product {
	product := Product{
		Article: c.VendorCode,
		Name:    c.Title,
		Brand:   c.Brand,
	}

	if len(c.Sizes) > 0 && len(c.Sizes[0].Skus) > 0 {
		product.Barcode = c.Sizes[0].Skus[0]
	}
	for _, photo := range c.Photos {
		if photo.Big != "" {
			product.MediaURLs = append(product.MediaURLs, photo.Big)
		}
	}
	for _, ch := range c.Characteristics {
		switch ch.Name {
		case "Цвет":
			product.Colors = characteristicValues(ch.Value)
		case "Страна производства":
			product.Countries = characteristicValues(ch.Value)
		}
	}
	return product
}

// characteristicValues приводит значение характеристики к списку строк.
// Каталог отдаёт либо строку, либо массив строк.
func characteristicValues(value interface{}) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []interface{}:
		var values []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
		return values
	}
	return nil
}
