package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/PoluyanbIch/GoQuiz/internal/service"
)

// sender is the part of *tgbotapi.BotAPI the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Options configures the bot.
type Options struct {
	CountChoices []int
	DefaultCount int
	Debug        bool
}

// chatSession is the quiz state of one chat.
type chatSession struct {
	engine   *service.Engine
	countIdx int
	chosen   map[string]bool
}

// Bot serves one quiz session per chat. Updates are handled one at a time on
// the goroutine running Start, so sessions need no locking.
type Bot struct {
	api      *tgbotapi.BotAPI
	out      sender
	log      *zap.Logger
	bank     []service.QuestionRecord
	topics   []string
	choices  []int
	defCount int
	sessions map[int64]*chatSession
}

func NewBot(token string, bank []service.QuestionRecord, opts Options, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = opts.Debug

	b, err := newBot(api, bank, opts, log)
	if err != nil {
		return nil, err
	}
	b.api = api
	return b, nil
}

func newBot(out sender, bank []service.QuestionRecord, opts Options, log *zap.Logger) (*Bot, error) {
	if log == nil {
		log = zap.NewNop()
	}
	normalized, err := service.NormalizeBank(bank)
	if err != nil {
		return nil, err
	}
	// never started; only answers questions about the whole bank
	probe, err := service.NewEngine(normalized)
	if err != nil {
		return nil, err
	}
	return &Bot{
		out:      out,
		log:      log,
		bank:     normalized,
		topics:   probe.Topics(),
		choices:  service.CountChoices(opts.CountChoices, probe.BankSize()),
		defCount: opts.DefaultCount,
		sessions: make(map[int64]*chatSession),
	}, nil
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	b.log.Info("authorised", zap.String("account", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil && update.Message.IsCommand() {
		chatID := update.Message.Chat.ID
		switch update.Message.Command() {
		case "start", "quiz":
			session, err := b.session(chatID)
			if err != nil {
				b.log.Error("create session", zap.Int64("chat_id", chatID), zap.Error(err))
				b.sendMessage(chatID, "The quiz is unavailable right now.")
				return
			}
			session.engine.Reset()
			b.show(chatID, 0, session)
		case "info", "help":
			b.sendMessage(chatID, infoText)
		default:
			b.sendMessage(chatID, "Unknown command. Try /start.")
		}
	}
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

const infoText = "Multiple-choice quiz.\n\n" +
	"/start - pick the number of questions and topics\n" +
	"/info - this message\n\n" +
	"Answer in any order, jump between questions with the numbered buttons " +
	"and press Finish to see which answers were right."

func (b *Bot) session(chatID int64) (*chatSession, error) {
	if session, ok := b.sessions[chatID]; ok {
		return session, nil
	}
	engine, err := service.NewEngine(b.bank, service.WithLogger(b.log.With(zap.Int64("chat_id", chatID))))
	if err != nil {
		return nil, fmt.Errorf("new session for chat %d: %w", chatID, err)
	}
	session := &chatSession{
		engine:   engine,
		countIdx: defaultChoiceIndex(b.choices, b.defCount),
		chosen:   map[string]bool{},
	}
	b.sessions[chatID] = session
	return session, nil
}

func defaultChoiceIndex(choices []int, want int) int {
	for i, choice := range choices {
		if choice >= want {
			return i
		}
	}
	return max(len(choices)-1, 0)
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	session, err := b.session(chatID)
	if err != nil {
		b.log.Error("create session", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}

	notice := ""
	if err := b.apply(session, callback.Data); err != nil {
		notice = describe(err)
		b.log.Debug("quiz action rejected",
			zap.Int64("chat_id", chatID),
			zap.String("data", callback.Data),
			zap.Error(err),
		)
	}

	if _, err := b.out.Request(tgbotapi.NewCallback(callback.ID, notice)); err != nil {
		b.log.Warn("answer callback", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	if notice == "" {
		b.show(chatID, callback.Message.MessageID, session)
	}
}

var (
	errUnknownAction = errors.New("unknown action")
	errStaleKeyboard = fmt.Errorf("%w: keyboard is out of date", service.ErrOutOfRange)
)

// apply performs the action encoded in callback data: an action name followed
// by zero or more "_<n>" arguments.
func (b *Bot) apply(session *chatSession, data string) error {
	engine := session.engine
	parts := strings.Split(data, "_")
	action := parts[0]
	args := make([]int, 0, len(parts)-1)
	for _, part := range parts[1:] {
		n, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("%w: %q", errUnknownAction, data)
		}
		args = append(args, n)
	}
	index := -1
	if len(args) > 0 {
		index = args[0]
	}

	switch action {
	case "cnt":
		if index < 0 || index >= len(b.choices) {
			return fmt.Errorf("%w: count choice %d", service.ErrOutOfRange, index)
		}
		session.countIdx = index
	case "top":
		if index < 0 || index >= len(b.topics) {
			return fmt.Errorf("%w: topic %d", service.ErrOutOfRange, index)
		}
		topic := b.topics[index]
		session.chosen[topic] = !session.chosen[topic]
	case "go":
		if len(b.choices) == 0 {
			return fmt.Errorf("%w: the question bank is empty", service.ErrInvalidInput)
		}
		return engine.Start(b.choices[session.countIdx], b.selectedTopics(session))
	case "ans":
		// ans_<question>_<option>
		if len(args) != 2 {
			return fmt.Errorf("%w: %q", errUnknownAction, data)
		}
		question, ok := engine.CurrentQuestion()
		if !ok {
			return engine.Answer("")
		}
		if args[0] != engine.CurrentIndex() {
			return fmt.Errorf("%w: answer for question %d, showing %d", errStaleKeyboard, args[0], engine.CurrentIndex())
		}
		option := args[1]
		if option < 0 || option >= len(question.Options) {
			return fmt.Errorf("%w: option %d", service.ErrInvalidInput, option)
		}
		return engine.Answer(question.Options[option])
	case "jmp":
		return engine.GoToQuestion(index)
	case "nxt":
		return engine.NextQuestion()
	case "prv":
		return engine.PrevQuestion()
	case "fin":
		return engine.Finish()
	case "new":
		engine.Reset()
	case "noop":
	default:
		return fmt.Errorf("%w: %q", errUnknownAction, data)
	}
	return nil
}

func (b *Bot) selectedTopics(session *chatSession) []string {
	var topics []string
	for _, topic := range b.topics {
		if session.chosen[topic] {
			topics = append(topics, topic)
		}
	}
	return topics
}

// describe turns an engine error into a short callback notice.
func describe(err error) string {
	switch {
	case errors.Is(err, errStaleKeyboard):
		return "That keyboard is out of date, answer the question shown."
	case errors.Is(err, service.ErrSessionFinished):
		return "The quiz is finished, answers can no longer change."
	case errors.Is(err, service.ErrNotStarted):
		return "Start a quiz first."
	case errors.Is(err, service.ErrOutOfRange):
		return "That question does not exist."
	case errors.Is(err, service.ErrInvalidInput):
		return "That choice is not available."
	default:
		return "Something went wrong, try /start."
	}
}

// show renders the session, editing messageID in place when it is set.
func (b *Bot) show(chatID int64, messageID int, session *chatSession) {
	var (
		text   string
		markup tgbotapi.InlineKeyboardMarkup
	)
	if session.engine.Phase() == service.PhaseNotStarted {
		text, markup = b.renderSetup(session)
	} else {
		text, markup = renderQuestion(session.engine)
	}

	if messageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := b.out.Send(edit); err != nil {
			b.log.Debug("edit message", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		return
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	if _, err := b.out.Send(msg); err != nil {
		b.log.Warn("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.out.Send(msg); err != nil {
		b.log.Warn("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
