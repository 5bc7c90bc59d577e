package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/PoluyanbIch/GoQuiz/internal/service"
)

type styles struct {
	noColor bool

	title    lipgloss.Style
	prompt   lipgloss.Style
	neutral  lipgloss.Style
	selected lipgloss.Style
	correct  lipgloss.Style
	wrong    lipgloss.Style
	current  lipgloss.Style
	muted    lipgloss.Style
	status   lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			noColor:  true,
			title:    plain.Bold(true),
			prompt:   plain,
			neutral:  plain,
			selected: plain,
			correct:  plain,
			wrong:    plain,
			current:  plain.Bold(true),
			muted:    plain,
			status:   plain,
		}
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).MarginBottom(1),
		prompt:   lipgloss.NewStyle().Bold(true),
		neutral:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("33")),
		correct:  lipgloss.NewStyle().Foreground(lipgloss.Color("22")).Background(lipgloss.Color("157")),
		wrong:    lipgloss.NewStyle().Foreground(lipgloss.Color("88")).Background(lipgloss.Color("217")),
		current:  lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("27")).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}

// optionMarkers keep feedback readable without colors.
var optionMarkers = map[service.OptionState]string{
	service.OptionNeutral:  "[ ]",
	service.OptionSelected: "[x]",
	service.OptionCorrect:  "[✓]",
	service.OptionWrong:    "[✗]",
}

func (s styles) option(state service.OptionState) lipgloss.Style {
	switch state {
	case service.OptionSelected:
		return s.selected
	case service.OptionCorrect:
		return s.correct
	case service.OptionWrong:
		return s.wrong
	default:
		return s.neutral
	}
}

func (s styles) question(status service.QuestionStatus) lipgloss.Style {
	switch status {
	case service.StatusCurrent:
		return s.current
	case service.StatusCorrect:
		return s.correct
	case service.StatusIncorrect:
		return s.wrong
	case service.StatusAnswered:
		return s.prompt
	default:
		return s.muted
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var body string
	if m.engine.Phase() == service.PhaseNotStarted {
		body = m.viewSetup()
	} else {
		body = m.viewQuiz()
	}
	parts := []string{body}
	if m.status != "" {
		parts = append(parts, m.styles.status.Render(m.status))
	}
	parts = append(parts, m.help.View(phaseHelp{keys: m.keys, phase: m.engine.Phase(), jumping: m.jumping}))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m Model) viewSetup() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Choose the number of questions"))
	b.WriteString("\n")

	if len(m.choices) == 0 {
		b.WriteString(m.styles.muted.Render("The question bank is empty."))
		return b.String()
	}
	labels := make([]string, len(m.choices))
	for i, choice := range m.choices {
		label := fmt.Sprintf(" %d ", choice)
		if i == m.countIdx {
			labels[i] = m.styles.selected.Render("[" + strings.TrimSpace(label) + "]")
		} else {
			labels[i] = m.styles.neutral.Render(label)
		}
	}
	b.WriteString(strings.Join(labels, " "))
	b.WriteString("\n\n")

	if len(m.topics) > 0 {
		b.WriteString(m.styles.prompt.Render("Topics (none selected = all)"))
		b.WriteString("\n")
		for i, topic := range m.topics {
			cursor := "  "
			if i == m.topicCursor {
				cursor = "> "
			}
			box := "[ ]"
			if m.chosen[topic] {
				box = "[x]"
			}
			fmt.Fprintf(&b, "%s%s %s\n", cursor, box, topic)
		}
		b.WriteString("\n")
	}

	available := m.engine.AvailableCount(m.selectedTopics())
	b.WriteString(m.styles.muted.Render(fmt.Sprintf("%d questions available", available)))
	return b.String()
}

func (m Model) viewQuiz() string {
	question, ok := m.engine.CurrentQuestion()
	if !ok {
		return m.styles.muted.Render("No questions match the selected topics. Press r to choose again.")
	}
	index := m.engine.CurrentIndex()
	finished := m.engine.Finished()

	var b strings.Builder
	b.WriteString(m.styles.title.Render(fmt.Sprintf("Question %d of %d", index+1, m.engine.Len())))
	b.WriteString("\n")
	b.WriteString(m.styles.prompt.Render(question.Prompt))
	b.WriteString("\n\n")

	states, err := m.engine.OptionFeedback(index)
	if err != nil {
		return err.Error()
	}
	for i, option := range question.Options {
		cursor := "  "
		if i == m.optionCursor && !finished {
			cursor = "> "
		}
		line := fmt.Sprintf("%s %d. %s", optionMarkers[states[i]], i+1, option)
		b.WriteString(cursor)
		b.WriteString(m.styles.option(states[i]).Render(line))
		b.WriteString("\n")
	}

	if finished && question.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.muted.Render(question.Explanation))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.viewStrip())
	b.WriteString("\n")

	if finished {
		result := m.engine.Result()
		b.WriteString("\n")
		b.WriteString(m.styles.prompt.Render(fmt.Sprintf("Score: %d/%d (%d%%), %d answered",
			result.Correct, result.Total, result.Percentage, result.Answered)))
		b.WriteString("\n")
	}
	if m.jumping {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Go to question: %s_\n", m.jumpInput)
	}
	return b.String()
}

// viewStrip renders the numbered navigation strip.
func (m Model) viewStrip() string {
	statuses := m.engine.QuestionStatuses()
	cells := make([]string, len(statuses))
	for i, status := range statuses {
		label := fmt.Sprintf("%d", i+1)
		if m.styles.noColor {
			switch status {
			case service.StatusCurrent:
				label = "(" + label + ")"
			case service.StatusCorrect:
				label += "✓"
			case service.StatusIncorrect:
				label += "✗"
			case service.StatusAnswered:
				label += "*"
			}
		}
		cells[i] = m.styles.question(status).Render(" " + label + " ")
	}
	return strings.Join(cells, "")
}
