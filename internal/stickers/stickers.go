// Пакет stickers собирает печатные материалы поставки: повёрнутый QR-код
// поставки и архив стикеров заказов, разложенный по артикулам.
package stickers

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"image"
	"image/png"
	"sort"
	"strings"

	"supplies-bot/pkg/wbapi"
)

// SupplyPhoto декодирует QR-код поставки и поворачивает его на 90° против
// часовой стрелки: маркетплейс отдаёт картинку лёжа на боку.
func SupplyPhoto(qr wbapi.SupplyQRCode) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(qr.File)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования QR-кода поставки: %w", err)
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения изображения QR-кода: %w", err)
	}

	bounds := src.Bounds()
	rotated := image.NewRGBA(image.Rect(0, 0, bounds.Dy(), bounds.Dx()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rotated.Set(y-bounds.Min.Y, bounds.Max.X-1-x, src.At(x, y))
		}
	}

	var out bytes.Buffer
	if err := png.Encode(&out, rotated); err != nil {
		return nil, fmt.Errorf("ошибка кодирования изображения QR-кода: %w", err)
	}
	return out.Bytes(), nil
}

// ArchiveName - имя файла архива стикеров для чата.
func ArchiveName(supplyID string) string {
	return fmt.Sprintf("Stickers for %s.zip", supplyID)
}

var productCardTemplate = template.Must(template.New("card").Parse(`<!DOCTYPE html>
<html lang="ru">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>Артикул: {{.Article}}</p>
{{- if .Brand}}
<p>Бренд: {{.Brand}}</p>
{{- end}}
{{- if .Country}}
<p>Страна производства: {{.Country}}</p>
{{- end}}
{{- if .Color}}
<p>Цвет: {{.Color}}</p>
{{- end}}
{{- if .Barcode}}
<p>Штрихкод: {{.Barcode}}</p>
{{- end}}
<table border="1" cellpadding="4">
<tr><th>Заказ</th><th>Стикер</th></tr>
{{- range .Rows}}
<tr><td>{{.OrderID}}</td><td>{{.PartA}} {{.PartB}}</td></tr>
{{- end}}
</table>
</body>
</html>
`))

type cardRow struct {
	OrderID int64
	PartA   string
	PartB   string
}

type cardData struct {
	Title   string
	Article string
	Brand   string
	Country string
	Color   string
	Barcode string
	Rows    []cardRow
}

// Archive пакует стикеры заказов в zip: на каждый артикул - папка с
// png-стикерами и печатный документ index.html с данными карточки товара.
// Заказы без стикера пропускаются.
func Archive(supplyID string, orders []wbapi.Order, products []wbapi.Product, codes []wbapi.OrderQRCode) ([]byte, error) {
	codeByOrder := make(map[int64]wbapi.OrderQRCode, len(codes))
	for _, code := range codes {
		codeByOrder[code.OrderID] = code
	}
	productByArticle := make(map[string]wbapi.Product, len(products))
	for _, product := range products {
		productByArticle[product.Article] = product
	}

	byArticle := make(map[string][]wbapi.Order)
	for _, order := range orders {
		if _, ok := codeByOrder[order.ID]; !ok {
			continue
		}
		byArticle[order.Article] = append(byArticle[order.Article], order)
	}
	articles := make([]string, 0, len(byArticle))
	for article := range byArticle {
		articles = append(articles, article)
	}
	sort.Strings(articles)

	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)
	for _, article := range articles {
		articleOrders := byArticle[article]
		sort.Slice(articleOrders, func(i, j int) bool {
			return articleOrders[i].ID < articleOrders[j].ID
		})

		card := cardData{Title: article, Article: article}
		if product, ok := productByArticle[article]; ok {
			if product.Name != "" {
				card.Title = product.Name
			}
			card.Brand = product.Brand
			card.Country = strings.Join(product.Countries, ", ")
			card.Color = strings.Join(product.Colors, ", ")
			card.Barcode = product.Barcode
		}

		for _, order := range articleOrders {
			code := codeByOrder[order.ID]
			raw, err := base64.StdEncoding.DecodeString(code.File)
			if err != nil {
				return nil, fmt.Errorf("ошибка декодирования стикера заказа %d: %w", order.ID, err)
			}
			entry, err := archive.Create(fmt.Sprintf("%s/%d.png", article, order.ID))
			if err != nil {
				return nil, err
			}
			if _, err := entry.Write(raw); err != nil {
				return nil, err
			}
			card.Rows = append(card.Rows, cardRow{OrderID: order.ID, PartA: code.PartA, PartB: code.PartB})
		}

		doc, err := archive.Create(fmt.Sprintf("%s/index.html", article))
		if err != nil {
			return nil, err
		}
		if err := productCardTemplate.Execute(doc, card); err != nil {
			return nil, err
		}
	}

	if err := archive.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Articles возвращает отсортированный набор артикулов заказов без повторов.
func Articles(orders []wbapi.Order) []string {
	seen := make(map[string]struct{}, len(orders))
	var articles []string
	for _, order := range orders {
		if _, ok := seen[order.Article]; ok {
			continue
		}
		seen[order.Article] = struct{}{}
		articles = append(articles, order.Article)
	}
	sort.Strings(articles)
	return articles
}
