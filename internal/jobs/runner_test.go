package jobs

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"supplies-bot/pkg/telegram"
	"supplies-bot/pkg/wbapi"
)

type stubWB struct {
	wbapi.ClientInterface

	mu       sync.Mutex
	orders   []wbapi.Order
	codes    []wbapi.OrderQRCode
	block    chan struct{}
	started  chan struct{}
	articles [][]string
}

func (s *stubWB) GetSupplyOrders(_ context.Context, supplyID string) ([]wbapi.Order, error) {
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders, nil
}

func (s *stubWB) GetOrderQRCodes(_ context.Context, orderIDs []int64) ([]wbapi.OrderQRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes, nil
}

func (s *stubWB) GetProducts(_ context.Context, articles []string) ([]wbapi.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = append(s.articles, articles)
	return []wbapi.Product{{Article: "art-1", Name: "Футболка"}}, nil
}

type stubTG struct {
	telegram.ServiceInterface

	mu        sync.Mutex
	messages  []string
	documents []string
}

func (s *stubTG) SendMessage(_ context.Context, _ int64, text string, _ ...telegram.MessageOption) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, text)
	return 1, nil
}

func (s *stubTG) SendDocument(_ context.Context, _ int64, filename string, _ []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append(s.documents, filename)
	return nil
}

func (s *stubTG) snapshot() ([]string, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...), append([]string(nil), s.documents...)
}

func pngBase64(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 3))))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("условие не выполнилось за отведённое время")
}

func TestRunnerDeliversStickersArchive(t *testing.T) {
	wb := &stubWB{
		orders: []wbapi.Order{{ID: 11, Article: "art-1"}},
		codes:  []wbapi.OrderQRCode{{OrderID: 11, File: pngBase64(t), PartA: "123", PartB: "4567"}},
	}
	tg := &stubTG{}
	runner := NewRunner(wb, tg, RunnerConfig{Workers: 1, QueueSize: 4, SuppliesQuantity: 5}, zap.NewNop())
	defer runner.Stop()

	require.NoError(t, runner.CreateStickers(context.Background(), 7, "WB-GI-1"))

	waitFor(t, func() bool {
		_, documents := tg.snapshot()
		return len(documents) == 1
	})
	_, documents := tg.snapshot()
	assert.Equal(t, []string{"Stickers for WB-GI-1.zip"}, documents)

	// Задание разрешает карточки товаров по уникальным артикулам
	wb.mu.Lock()
	defer wb.mu.Unlock()
	require.Len(t, wb.articles, 1)
	assert.Equal(t, []string{"art-1"}, wb.articles[0])
}

func TestRunnerNotifiesWhenSupplyEmpty(t *testing.T) {
	tg := &stubTG{}
	runner := NewRunner(&stubWB{}, tg, RunnerConfig{Workers: 1, QueueSize: 4}, zap.NewNop())
	defer runner.Stop()

	require.NoError(t, runner.CreateStickers(context.Background(), 7, "WB-GI-1"))

	waitFor(t, func() bool {
		messages, _ := tg.snapshot()
		return len(messages) == 1
	})
	messages, documents := tg.snapshot()
	assert.Equal(t, []string{"В поставке нет заказов, стикеров не будет"}, messages)
	assert.Empty(t, documents)
}

func TestRunnerScheduleNeverBlocks(t *testing.T) {
	wb := &stubWB{block: make(chan struct{}), started: make(chan struct{}, 1)}
	runner := NewRunner(wb, &stubTG{}, RunnerConfig{Workers: 1, QueueSize: 1}, zap.NewNop())

	// Первое задание занимает воркера, второе - единственный слот очереди
	require.NoError(t, runner.CreateStickers(context.Background(), 7, "a"))
	<-wb.started
	require.NoError(t, runner.CreateStickers(context.Background(), 7, "b"))

	err := runner.CreateStickers(context.Background(), 7, "c")
	assert.ErrorIs(t, err, ErrQueueFull)

	close(wb.block)
	runner.Stop()
}

func TestRunnerRejectsAfterStop(t *testing.T) {
	runner := NewRunner(&stubWB{}, &stubTG{}, RunnerConfig{Workers: 1, QueueSize: 1}, zap.NewNop())
	runner.Stop()

	err := runner.CreateWaitingReport(context.Background(), 7)
	assert.ErrorIs(t, err, ErrQueueFull)
}
