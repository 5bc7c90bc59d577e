package telegram

import (
	"math/rand/v2"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PoluyanbIch/GoQuiz/internal/service"
)

type fakeSender struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) lastEdit(t *testing.T) tgbotapi.EditMessageTextConfig {
	t.Helper()
	require.NotEmpty(t, f.sent)
	edit, ok := f.sent[len(f.sent)-1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok, "last sent item is %T", f.sent[len(f.sent)-1])
	return edit
}

func (f *fakeSender) lastNotice(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.requests)
	callback, ok := f.requests[len(f.requests)-1].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	return callback.Text
}

const chatID int64 = 42

func testBank() []service.QuestionRecord {
	return []service.QuestionRecord{
		{Prompt: "q1 <b>", Options: []string{"a1", "b1"}, Correct: "a1", Topic: "A"},
		{Prompt: "q2", Options: []string{"a2", "b2"}, Correct: "b", Topic: "A"},
		{Prompt: "q3", Options: []string{"a3", "b3"}, Correct: "a3", Topic: "B"},
	}
}

func newTestBot(t *testing.T) (*Bot, *fakeSender) {
	t.Helper()
	out := &fakeSender{}
	bot, err := newBot(out, testBank(), Options{CountChoices: []int{2}, DefaultCount: 5}, nil)
	require.NoError(t, err)
	return bot, out
}

func command(name string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      "/" + name,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name) + 1}},
	}}
}

func click(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func buttons(markup *tgbotapi.InlineKeyboardMarkup) map[string]string {
	byData := map[string]string{}
	for _, row := range markup.InlineKeyboard {
		for _, button := range row {
			if button.CallbackData != nil {
				byData[*button.CallbackData] = button.Text
			}
		}
	}
	return byData
}

func TestNewBotRejectsMalformedBank(t *testing.T) {
	bank := testBank()
	bank[0].Correct = "z"
	_, err := newBot(&fakeSender{}, bank, Options{}, nil)
	assert.ErrorIs(t, err, service.ErrMalformedRecord)
}

func TestStartCommandShowsSetup(t *testing.T) {
	bot, out := newTestBot(t)
	bot.handleUpdate(command("start"))

	require.Len(t, out.sent, 1)
	msg, ok := out.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Contains(t, msg.Text, "Choose the number of questions")
	assert.Contains(t, msg.Text, "3 questions available")

	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	got := buttons(&markup)
	assert.Equal(t, "2", got["cnt_0"])
	assert.Equal(t, "• 3 •", got["cnt_1"])
	assert.Equal(t, "⬜ A", got["top_0"])
	assert.Contains(t, got, "go")
}

func TestUnknownCommand(t *testing.T) {
	bot, out := newTestBot(t)
	bot.handleUpdate(command("dance"))

	require.Len(t, out.sent, 1)
	assert.Contains(t, out.sent[0].(tgbotapi.MessageConfig).Text, "Unknown command")
}

func TestQuizFlowOverCallbacks(t *testing.T) {
	bot, out := newTestBot(t)
	bot.handleUpdate(command("start"))
	bot.handleUpdate(click("top_0"))
	bot.handleUpdate(click("cnt_0"))

	edit := out.lastEdit(t)
	assert.Contains(t, edit.Text, "2 questions available")
	assert.Equal(t, "✅ A", buttons(edit.ReplyMarkup)["top_0"])

	bot.handleUpdate(click("go"))
	engine := bot.sessions[chatID].engine
	require.Equal(t, 2, engine.Len())
	edit = out.lastEdit(t)
	assert.Equal(t, 10, edit.MessageID)
	assert.Contains(t, edit.Text, "Question 1/2")
	got := buttons(edit.ReplyMarkup)
	assert.Contains(t, got, "nxt")
	assert.NotContains(t, got, "prv")
	assert.Equal(t, "·1·", got["jmp_0"])
	assert.Contains(t, got, "fin")

	bot.handleUpdate(click("ans_0_1"))
	question, _ := engine.CurrentQuestion()
	assert.Equal(t, question.Options[1], engine.SelectedOption())
	assert.Equal(t, "🔵 "+question.Options[1], buttons(out.lastEdit(t).ReplyMarkup)["ans_0_1"])

	bot.handleUpdate(click("nxt"))
	assert.Equal(t, 1, engine.CurrentIndex())
	got = buttons(out.lastEdit(t).ReplyMarkup)
	assert.Equal(t, "1 •", got["jmp_0"])
	assert.Contains(t, got, "prv")
	assert.NotContains(t, got, "nxt")

	bot.handleUpdate(click("fin"))
	require.True(t, engine.Finished())
	edit = out.lastEdit(t)
	assert.Contains(t, edit.Text, "Score:")
	got = buttons(edit.ReplyMarkup)
	assert.Contains(t, got, "new")
	assert.NotContains(t, got, "fin")

	bot.handleUpdate(click("jmp_0"))
	assert.Equal(t, 0, engine.CurrentIndex())

	bot.handleUpdate(click("new"))
	assert.Equal(t, service.PhaseNotStarted, engine.Phase())
	assert.Contains(t, out.lastEdit(t).Text, "Choose the number of questions")
}

func TestAnswerAfterFinishIsRejected(t *testing.T) {
	bot, out := newTestBot(t)
	bot.handleUpdate(click("go"))
	bot.handleUpdate(click("ans_0_0"))
	bot.handleUpdate(click("fin"))
	sent := len(out.sent)

	bot.handleUpdate(click("ans_0_1"))
	assert.Equal(t, "The quiz is finished, answers can no longer change.", out.lastNotice(t))
	assert.Len(t, out.sent, sent)

	engine := bot.sessions[chatID].engine
	question, _ := engine.CurrentQuestion()
	assert.Equal(t, question.Options[0], engine.Answers()[0])
}

func TestAnswerFromOutdatedKeyboardIsRejected(t *testing.T) {
	bot, out := newTestBot(t)
	bot.handleUpdate(click("go"))
	engine := bot.sessions[chatID].engine
	staleKeyboard := buttons(out.lastEdit(t).ReplyMarkup)
	require.Contains(t, staleKeyboard, "ans_0_0")

	bot.handleUpdate(click("nxt"))
	require.Equal(t, 1, engine.CurrentIndex())
	sent := len(out.sent)

	bot.handleUpdate(click("ans_0_0"))
	assert.Equal(t, "That keyboard is out of date, answer the question shown.", out.lastNotice(t))
	assert.Len(t, out.sent, sent)
	assert.Equal(t, []string{"", ""}, engine.Answers())
	assert.Empty(t, engine.SelectedOption())

	current := buttons(out.lastEdit(t).ReplyMarkup)
	assert.Contains(t, current, "ans_1_0")
	assert.NotContains(t, current, "ans_0_0")

	bot.handleUpdate(click("ans_1_0"))
	question, _ := engine.CurrentQuestion()
	assert.Equal(t, []string{"", question.Options[0]}, engine.Answers())
}

func TestSessionCreationFailureIsReported(t *testing.T) {
	out := &fakeSender{}
	bank := testBank()
	bank[0].Correct = "z"
	bot := &Bot{out: out, log: zap.NewNop(), bank: bank, sessions: map[int64]*chatSession{}}

	bot.handleUpdate(command("start"))
	require.Len(t, out.sent, 1)
	assert.Equal(t, "The quiz is unavailable right now.", out.sent[0].(tgbotapi.MessageConfig).Text)
	assert.Empty(t, bot.sessions)

	bot.handleUpdate(click("go"))
	assert.Empty(t, out.requests)
	assert.Empty(t, bot.sessions)
}

func TestCallbackErrors(t *testing.T) {
	bot, out := newTestBot(t)

	bot.handleUpdate(click("nxt"))
	assert.Equal(t, "Start a quiz first.", out.lastNotice(t))

	bot.handleUpdate(click("go"))
	bot.handleUpdate(click("jmp_9"))
	assert.Equal(t, "That question does not exist.", out.lastNotice(t))

	bot.handleUpdate(click("ans_0_5"))
	assert.Equal(t, "That choice is not available.", out.lastNotice(t))

	bot.handleUpdate(click("ans_0"))
	assert.Equal(t, "Something went wrong, try /start.", out.lastNotice(t))

	bot.handleUpdate(click("bogus"))
	assert.Equal(t, "Something went wrong, try /start.", out.lastNotice(t))

	bot.handleUpdate(click("jmp_x"))
	assert.Equal(t, "Something went wrong, try /start.", out.lastNotice(t))
}

func TestRenderQuestionEscapesHTML(t *testing.T) {
	engine, err := service.NewEngine(testBank()[:1], service.WithRand(rand.New(rand.NewPCG(1, 1))))
	require.NoError(t, err)
	require.NoError(t, engine.Start(1, nil))

	text, _ := renderQuestion(engine)
	assert.Contains(t, text, "q1 &lt;b&gt;")
}

func TestRenderQuestionReviewMarkers(t *testing.T) {
	engine, err := service.NewEngine(testBank()[:1])
	require.NoError(t, err)
	require.NoError(t, engine.Start(1, nil))
	require.NoError(t, engine.Answer("b1"))
	require.NoError(t, engine.Finish())

	_, markup := renderQuestion(engine)
	require.NotEmpty(t, markup.InlineKeyboard)
	assert.Equal(t, "✅ a1", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "❌ b1", markup.InlineKeyboard[1][0].Text)
	assert.Equal(t, "noop", *markup.InlineKeyboard[1][0].CallbackData)
}

func TestStripRowsWindow(t *testing.T) {
	statuses := make([]service.QuestionStatus, 45)
	statuses[30] = service.StatusCurrent

	rows := stripRows(statuses, 30)
	require.Len(t, rows, stripWindow/stripRowSize)
	assert.Equal(t, "jmp_20", *rows[0][0].CallbackData)
	last := rows[len(rows)-1]
	assert.Equal(t, "jmp_39", *last[len(last)-1].CallbackData)

	rows = stripRows(statuses, 44)
	last = rows[len(rows)-1]
	assert.Equal(t, "jmp_44", *last[len(last)-1].CallbackData)

	rows = stripRows(statuses[:3], 0)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 3)
}
