package telegram

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/PoluyanbIch/GoQuiz/internal/service"
)

const (
	stripWindow  = 20
	stripRowSize = 5
)

var optionMarkers = map[service.OptionState]string{
	service.OptionNeutral:  "",
	service.OptionSelected: "🔵 ",
	service.OptionCorrect:  "✅ ",
	service.OptionWrong:    "❌ ",
}

func (b *Bot) renderSetup(session *chatSession) (string, tgbotapi.InlineKeyboardMarkup) {
	var text strings.Builder
	text.WriteString("📋 <b>Choose the number of questions</b>")
	if len(b.topics) > 0 {
		text.WriteString("\nPick topics below, none selected means all topics.")
	}
	fmt.Fprintf(&text, "\n\n%d questions available", len(service.FilterByTopics(b.bank, b.selectedTopics(session))))

	var rows [][]tgbotapi.InlineKeyboardButton
	var counts []tgbotapi.InlineKeyboardButton
	for i, choice := range b.choices {
		label := fmt.Sprintf("%d", choice)
		if i == session.countIdx {
			label = "• " + label + " •"
		}
		counts = append(counts, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("cnt_%d", i)))
	}
	if len(counts) > 0 {
		rows = append(rows, counts)
	}
	for i, topic := range b.topics {
		box := "⬜ "
		if session.chosen[topic] {
			box = "✅ "
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(box+topic, fmt.Sprintf("top_%d", i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("▶️ Start test", "go"),
	))
	return text.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderQuestion(engine *service.Engine) (string, tgbotapi.InlineKeyboardMarkup) {
	question, ok := engine.CurrentQuestion()
	if !ok {
		return "No questions match the selected topics.", tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔄 New test", "new")),
		)
	}
	index := engine.CurrentIndex()
	finished := engine.Finished()

	var text strings.Builder
	fmt.Fprintf(&text, "❓ <b>Question %d/%d</b>\n\n%s", index+1, engine.Len(), html.EscapeString(question.Prompt))
	if finished {
		if question.Explanation != "" {
			fmt.Fprintf(&text, "\n\n<i>%s</i>", html.EscapeString(question.Explanation))
		}
		result := engine.Result()
		fmt.Fprintf(&text, "\n\n🏁 Score: %d/%d (%d%%), %d answered",
			result.Correct, result.Total, result.Percentage, result.Answered)
	}

	// OptionFeedback cannot fail for the current index of a started session
	states, _ := engine.OptionFeedback(index)
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, option := range question.Options {
		data := fmt.Sprintf("ans_%d_%d", index, i)
		if finished {
			data = "noop"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(optionMarkers[states[i]]+option, data),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if index > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️ Back", "prv"))
	}
	if index < engine.Len()-1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ▶️", "nxt"))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, stripRows(engine.QuestionStatuses(), index)...)

	if finished {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 New test", "new"),
		))
	} else {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏁 Finish test", "fin"),
		))
	}
	return text.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// stripRows renders up to stripWindow numbered buttons around current.
func stripRows(statuses []service.QuestionStatus, current int) [][]tgbotapi.InlineKeyboardButton {
	first := 0
	if len(statuses) > stripWindow {
		first = min(max(current-stripWindow/2, 0), len(statuses)-stripWindow)
	}
	last := min(first+stripWindow, len(statuses))

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i := first; i < last; i++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(stripLabel(i, statuses[i]), fmt.Sprintf("jmp_%d", i)))
		if len(row) == stripRowSize {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func stripLabel(index int, status service.QuestionStatus) string {
	number := fmt.Sprintf("%d", index+1)
	switch status {
	case service.StatusCurrent:
		return "·" + number + "·"
	case service.StatusAnswered:
		return number + " •"
	case service.StatusCorrect:
		return number + " ✅"
	case service.StatusIncorrect:
		return number + " ❌"
	default:
		return number
	}
}
