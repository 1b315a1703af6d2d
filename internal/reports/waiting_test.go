package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"supplies-bot/pkg/wbapi"
)

func TestWaitingReportRows(t *testing.T) {
	orders := []wbapi.Order{
		{ID: 11, SupplyID: "WB-GI-1", Article: "art-1", CreatedAt: time.Now().Add(-time.Hour), Price: 123450},
		{ID: 12, SupplyID: "WB-GI-2", Article: "art-2", CreatedAt: time.Now().Add(-2 * time.Hour), Price: 99900},
	}

	data, err := Waiting(orders)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows("Ожидают сортировки")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Поставка", "Заказ", "Артикул", "Возраст", "Цена, ₽"}, rows[0])
	assert.Equal(t, "WB-GI-1", rows[1][0])
	assert.Equal(t, "11", rows[1][1])
	assert.Equal(t, "art-1", rows[1][2])
	assert.Equal(t, "999", rows[2][4])
}

func TestWaitingReportEmpty(t *testing.T) {
	data, err := Waiting(nil)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows("Ожидают сортировки")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
