package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/turbekoff/lcdcalc/pkg/calculator"
	"github.com/turbekoff/lcdcalc/pkg/spelling"
	"github.com/turbekoff/lcdcalc/pkg/wordlist"
)

var (
	ErrClosed         = errors.New("bot has closed")
	ErrSessionExpired = errors.New("session has expired")
	ErrAlreadyStarted = errors.New("bot already started")
	ErrUnsupported    = errors.New("unsupported input format")
)

var botKeyboard = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("AC", "AC"),
		tgbotapi.NewInlineKeyboardButtonData("CE", "CE"),
		tgbotapi.NewInlineKeyboardButtonData("÷", "/"),
		tgbotapi.NewInlineKeyboardButtonData("×", "*"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("7", "7"),
		tgbotapi.NewInlineKeyboardButtonData("8", "8"),
		tgbotapi.NewInlineKeyboardButtonData("9", "9"),
		tgbotapi.NewInlineKeyboardButtonData("−", "-"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("4", "4"),
		tgbotapi.NewInlineKeyboardButtonData("5", "5"),
		tgbotapi.NewInlineKeyboardButtonData("6", "6"),
		tgbotapi.NewInlineKeyboardButtonData("+", "+"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("1", "1"),
		tgbotapi.NewInlineKeyboardButtonData("2", "2"),
		tgbotapi.NewInlineKeyboardButtonData("3", "3"),
		tgbotapi.NewInlineKeyboardButtonData("=", "="),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("0", "0"),
		tgbotapi.NewInlineKeyboardButtonData(".", "."),
	),
)

type Bot struct {
	sessions   *SessionCache[calculator.State]
	api        *tgbotapi.BotAPI
	config     *Config
	words      []string
	rng        *rand.Rand
	welcome    string
	help       string
	isStarted  atomic.Bool
	inShutdown atomic.Bool
	stopOnce   sync.Once
	isDone     chan struct{}
	logger     *log.Logger
}

func LoadBot(config *Config, words []string, logger *log.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return nil, err
	}

	seed := uint64(time.Now().UnixNano())
	return &Bot{
		api:    api,
		config: config,
		words:  words,
		rng:    rand.New(rand.NewPCG(seed, seed>>32)),
		logger: logger,
		isDone: make(chan struct{}),
		sessions: NewSessionCache[calculator.State](
			config.SessionTTLTimeout,
			config.SessionCleanupTimeout,
		),
		welcome: fmt.Sprintf(
			"%s%s %s of inactivity.",
			"Welcome! Type /open to get started.\n",
			"Note: the session expires after",
			config.SessionTTLTimeout,
		),
		help: strings.Join([]string{
			"Help:",
			"/start - welcome message.",
			"/open - open new session.",
			"/spell WORD - put a word on the display, read it upside down.",
			"/challenge - suggest words to spell.",
			"/help - send this message.",
		}, "\n"),
	}, nil
}

func (b *Bot) Run() error {
	if b.isStarted.Swap(true) {
		return ErrAlreadyStarted
	}
	defer close(b.isDone)

	updateConfig := tgbotapi.NewUpdate(b.config.BotOffset)
	updateConfig.Timeout = b.config.BotTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	for update := range updates {
		if b.inShutdown.Load() && b.sessions.IsEmpty() {
			continue
		}

		if update.CallbackQuery != nil {
			if err := b.handleCallback(update.CallbackQuery); err != nil {
				b.logger.Printf("failed to handle callback, error: %v", err)
				continue
			}
		}

		if update.Message == nil {
			continue
		}

		if err := b.handleCommand(update.Message); err != nil {
			b.logger.Printf("failed to send message, error: %v", err)
		}
	}

	return ErrClosed
}

func sessionKey(chatID, userID int64) string {
	return fmt.Sprintf("%d_%d", chatID, userID)
}

// renderDisplay wraps the padded readout in a code block so the leading
// spaces survive Telegram's formatting.
func renderDisplay(s calculator.State, status string) string {
	text := "```\n" + s.Display + "\n```"
	if status != "" {
		text = tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, status) + "\n" + text
	}
	return text
}

func (b *Bot) createMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return nil
}

func (b *Bot) createKeyboard(chatID int64, s calculator.State, status string) error {
	msg := tgbotapi.NewMessage(chatID, renderDisplay(s, status))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyMarkup = botKeyboard

	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return nil
}

func (b *Bot) updateKeyboard(callback *tgbotapi.CallbackQuery, s calculator.State) error {
	if strings.TrimSpace(callback.Message.Text) == strings.TrimSpace(s.Display) {
		return nil
	}

	edit := tgbotapi.NewEditMessageText(
		callback.Message.Chat.ID,
		callback.Message.MessageID,
		renderDisplay(s, ""),
	)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	edit.ReplyMarkup = &botKeyboard

	if _, err := b.api.Send(edit); err != nil {
		return err
	}
	return nil
}

func (b *Bot) handleCommand(command *tgbotapi.Message) error {
	if command.From == nil {
		return nil
	}
	key := sessionKey(command.Chat.ID, command.From.ID)

	switch command.Command() {
	case "start":
		return b.createMessage(command.Chat.ID, b.welcome)
	case "help":
		return b.createMessage(command.Chat.ID, b.help)
	case "open":
		if _, ok := b.sessions.Get(key); ok {
			return b.createMessage(
				command.Chat.ID,
				"Your session is not expired!",
			)
		}

		state := calculator.NewState()
		err := b.createKeyboard(command.Chat.ID, state, "")
		if err == nil {
			b.sessions.Set(key, state)
		}
		return err
	case "spell":
		state, ok := b.sessions.Get(key)
		if !ok {
			state = calculator.NewState()
		}

		next, status, err := spell(state, command.CommandArguments())
		if err != nil {
			return b.createMessage(command.Chat.ID, status)
		}

		if err := b.createKeyboard(command.Chat.ID, next, status); err != nil {
			return err
		}
		b.sessions.Set(key, next)
		return nil
	case "challenge":
		entries := wordlist.Challenge(b.rng, b.words, b.config.ChallengeSize)
		return b.createMessage(command.Chat.ID, challengeText(entries))
	default:
		return b.createMessage(command.Chat.ID, "Unknown command. Try /help")
	}
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		return err
	}
	if callback.Message == nil {
		return ErrUnsupported
	}

	key := sessionKey(callback.Message.Chat.ID, callback.From.ID)

	state, ok := b.sessions.Get(key)
	if !ok {
		edit := tgbotapi.NewEditMessageText(
			callback.Message.Chat.ID,
			callback.Message.MessageID,
			"Your session has expired, please /open a new one.",
		)
		if _, err := b.api.Send(edit); err != nil {
			return err
		}
		return ErrSessionExpired
	}

	state, err := press(state, callback.Data)
	if err != nil {
		return err
	}

	err = b.updateKeyboard(callback, state)
	if err == nil {
		b.sessions.Set(key, state)
	}
	return err
}

// press applies one keyboard button to s.
func press(s calculator.State, data string) (calculator.State, error) {
	action, err := calculator.ParseAction(data)
	if err != nil {
		return s, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return calculator.Apply(s, action), nil
}

// spell translates word and loads it into s. The status line is meant for
// the user whether or not the translation succeeded; on failure s is
// returned unchanged.
func spell(s calculator.State, word string) (calculator.State, string, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return s, "Type a word first: /spell HELLO", spelling.ErrNotAlphabetic
	}

	numeral, err := spelling.Translate(word)
	if err != nil {
		var unmapped *spelling.UnmappedError
		switch {
		case errors.As(err, &unmapped):
			return s, "Strict mode: " + unmapped.Error() + ".", err
		case errors.Is(err, spelling.ErrTooLong):
			return s, fmt.Sprintf("Too long for display (%d max).", calculator.MaxChars), err
		default:
			return s, "Strict mode: letters A-Z only.", err
		}
	}

	next := calculator.Apply(s, calculator.Action{
		Kind:  calculator.ActionInject,
		Value: numeral,
	})
	return next, spelling.Fold(word) + " -> " + numeral, nil
}

func challengeText(entries []wordlist.Entry) string {
	if len(entries) == 0 {
		return "No words to suggest."
	}

	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, "Try spelling:")
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("/spell %s (%s)", e.Word, e.Numeral))
	}
	return strings.Join(lines, "\n")
}

// stopReceiving is safe to call from both Shutdown and Close; the
// library panics on a second StopReceivingUpdates.
func (b *Bot) stopReceiving() {
	b.stopOnce.Do(b.api.StopReceivingUpdates)
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.inShutdown.Store(true)
	err := b.sessions.Shutdown(ctx)
	b.stopReceiving()

	select {
	case <-b.isDone:
		if errors.Is(err, ErrSessionsClosed) {
			return ErrClosed
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bot) Close() error {
	b.inShutdown.Store(true)
	err := b.sessions.Close()
	b.stopReceiving()
	<-b.isDone

	if errors.Is(err, ErrSessionsClosed) {
		return ErrClosed
	}
	return err
}
