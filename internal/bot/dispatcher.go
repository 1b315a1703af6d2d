package bot

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"supplies-bot/pkg/wbapi"
)

// Dispatcher владеет реестром состояний и сессиями операторов, прогоняет
// каждое входящее событие по циклу process → exit → enter.
//
// События одного оператора обрабатываются по одному; защиты от одновременных
// событий одного чата нет - это осознанный компромисс, гонка возможна при
// двойном клике и приводит максимум к лишней перерисовке.
type Dispatcher struct {
	states   map[StateName]State
	sessions SessionStore
	initial  Locator
	commands map[string]Locator
	wb       wbapi.ClientInterface
	answer   *Answerer
	jobs     JobsInterface
	logger   *zap.Logger
}

// NewDispatcher собирает реестр. Дубликат имени состояния - ошибка
// конфигурации, падаем сразу.
func NewDispatcher(
	states []State,
	sessions SessionStore,
	wb wbapi.ClientInterface,
	answer *Answerer,
	jobs JobsInterface,
	logger *zap.Logger,
) *Dispatcher {
	registry := make(map[StateName]State, len(states))
	for _, state := range states {
		if _, exists := registry[state.Name()]; exists {
			panic(fmt.Sprintf("состояние %q зарегистрировано дважды", state.Name()))
		}
		registry[state.Name()] = state
	}

	initial := Locator{State: StateMainMenu}
	if _, ok := registry[initial.State]; !ok {
		panic(fmt.Sprintf("начальное состояние %q не зарегистрировано", initial.State))
	}

	return &Dispatcher{
		states:   registry,
		sessions: sessions,
		initial:  initial,
		commands: map[string]Locator{
			"/start": initial,
			"start":  initial,
		},
		wb:     wb,
		answer: answer,
		jobs:   jobs,
		logger: logger,
	}
}

// Process обрабатывает одно событие чата от начала до конца.
func (d *Dispatcher) Process(ctx context.Context, ev Event) error {
	session, err := d.sessions.Get(ctx, ev.ChatID)
	if err != nil {
		d.logger.Warn("не удалось прочитать сессию, начинаем заново",
			zap.Int64("chat_id", ev.ChatID), zap.Error(err))
		session = nil
	}
	if session == nil {
		session = &Session{}
	}

	turn := &Turn{
		Ctx:     ctx,
		Event:   ev,
		Session: session,
		WB:      d.wb,
		Answer:  d.answer,
		Jobs:    d.jobs,
		Logger:  d.logger,
	}

	// Глобальная команда сбрасывает диалог в начальный экран из любой точки
	if ev.IsMessage() {
		if locator, ok := d.commands[ev.Text]; ok {
			return d.switchTo(turn, locator)
		}
	}

	if session.Locator == nil {
		return d.switchTo(turn, d.initial)
	}

	current := *session.Locator
	state, ok := d.states[current.State]
	if !ok {
		// Сессия указывает на исчезнувший экран (например, после обновления
		// бота) - для оператора это просто новый диалог
		d.logger.Warn("сессия ссылается на неизвестное состояние",
			zap.String("state", string(current.State)), zap.Int64("chat_id", ev.ChatID))
		return d.switchTo(turn, d.initial)
	}

	next, err := state.Process(turn, current.Params)
	if err != nil {
		d.reportError(turn, err)
		return d.persist(ctx, ev.ChatID, session)
	}
	if next == nil {
		// Состояние не меняется и само решило, перерисовываться ли
		return d.persist(ctx, ev.ChatID, session)
	}

	if next.State != current.State {
		if err := state.Exit(turn, current.Params); err != nil {
			d.logger.Warn("ошибка при выходе из состояния",
				zap.String("state", string(current.State)), zap.Error(err))
		}
	}
	return d.switchTo(turn, *next)
}

// switchTo входит в состояние локатора и сохраняет то, что вернул enter:
// состояние могло обогатить параметры загруженными данными.
func (d *Dispatcher) switchTo(turn *Turn, locator Locator) error {
	state, ok := d.states[locator.State]
	if !ok {
		// Переход в незарегистрированное состояние - ошибка сборки реестра
		panic(fmt.Sprintf("переход в незарегистрированное состояние %q", locator.State))
	}

	entered, err := state.Enter(turn, locator.Params)
	if err != nil {
		d.reportError(turn, err)
		return d.persist(turn.Ctx, turn.Event.ChatID, turn.Session)
	}

	turn.Session.Locator = &entered
	return d.persist(turn.Ctx, turn.Event.ChatID, turn.Session)
}

func (d *Dispatcher) persist(ctx context.Context, chatID int64, session *Session) error {
	if err := d.sessions.Put(ctx, chatID, session); err != nil {
		d.logger.Error("не удалось сохранить сессию", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}

// reportError переводит ошибку хода в понятное оператору уведомление.
// Диалог никогда не остаётся без ответа.
func (d *Dispatcher) reportError(turn *Turn, err error) {
	var marketplaceErr *wbapi.MarketplaceError
	notice := "Произошла ошибка. Попробуйте позже"
	if errors.As(err, &marketplaceErr) {
		notice = "Ошибка маркетплейса: " + marketplaceErr.Message
	}

	d.logger.Error("ошибка обработки события",
		zap.Int64("chat_id", turn.Event.ChatID),
		zap.Error(err))

	if turn.Event.IsCallback() {
		d.answer.Toast(turn.Ctx, turn.Event, notice)
		return
	}
	d.answer.Notify(turn.Ctx, turn.Event.ChatID, notice)
}
