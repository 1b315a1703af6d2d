// Пакет reports строит Excel-выгрузки для операторов склада.
package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"supplies-bot/pkg/wbapi"
)

const waitingSheet = "Ожидают сортировки"

// WaitingReportName - имя файла выгрузки для чата.
const WaitingReportName = "Ожидающие заказы.xlsx"

// Waiting строит xlsx со списком заказов, ожидающих сортировки.
func Waiting(orders []wbapi.Order) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	index, err := file.NewSheet(waitingSheet)
	if err != nil {
		return nil, err
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"Поставка", "Заказ", "Артикул", "Возраст", "Цена, ₽"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(waitingSheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, order := range orders {
		row := i + 2
		values := []interface{}{
			order.SupplyID,
			order.ID,
			order.Article,
			order.Age(),
			float64(order.Price) / 100,
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(waitingSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("ошибка записи отчёта: %w", err)
	}
	return buf.Bytes(), nil
}
