package tui

import (
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/PoluyanbIch/GoQuiz/internal/service"
)

// Options configures the quiz UI.
type Options struct {
	CountChoices []int
	DefaultCount int
	NoColor      bool
	Logger       *zap.Logger
}

// Model is the Bubble Tea model for a single quiz session. All engine calls
// happen inside Update, so the engine only ever sees one caller.
type Model struct {
	engine *service.Engine
	log    *zap.Logger
	keys   keyMap
	help   help.Model
	styles styles

	// setup screen
	choices     []int
	countIdx    int
	topics      []string
	topicCursor int
	chosen      map[string]bool

	// question screen
	optionCursor int
	jumping      bool
	jumpInput    string

	status string
}

// NewModel builds the UI around engine, which should not be started yet.
func NewModel(engine *service.Engine, opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	choices := service.CountChoices(opts.CountChoices, engine.BankSize())
	return Model{
		engine:   engine,
		log:      log,
		keys:     defaultKeyMap(),
		help:     help.New(),
		styles:   newStyles(opts.NoColor),
		choices:  choices,
		countIdx: defaultChoiceIndex(choices, opts.DefaultCount),
		topics:   engine.Topics(),
		chosen:   map[string]bool{},
	}
}

// defaultChoiceIndex picks the first choice that is at least want.
func defaultChoiceIndex(choices []int, want int) int {
	for i, choice := range choices {
		if choice >= want {
			return i
		}
	}
	return max(len(choices)-1, 0)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = typed.Width
		return m, nil
	case tea.KeyMsg:
		if key.Matches(typed, m.keys.Quit) && !m.jumping {
			return m, tea.Quit
		}
		if m.engine.Phase() == service.PhaseNotStarted {
			return m.updateSetup(typed), nil
		}
		return m.updateQuiz(typed), nil
	}
	return m, nil
}

func (m Model) updateSetup(msg tea.KeyMsg) Model {
	switch {
	case key.Matches(msg, m.keys.Left):
		if m.countIdx > 0 {
			m.countIdx--
		}
	case key.Matches(msg, m.keys.Right):
		if m.countIdx < len(m.choices)-1 {
			m.countIdx++
		}
	case key.Matches(msg, m.keys.Up):
		if m.topicCursor > 0 {
			m.topicCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.topicCursor < len(m.topics)-1 {
			m.topicCursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if len(m.topics) > 0 {
			topic := m.topics[m.topicCursor]
			m.chosen[topic] = !m.chosen[topic]
		}
	case key.Matches(msg, m.keys.Start):
		m = m.start()
	}
	return m
}

func (m Model) start() Model {
	if len(m.choices) == 0 {
		m.status = "the question bank is empty"
		return m
	}
	if err := m.engine.Start(m.choices[m.countIdx], m.selectedTopics()); err != nil {
		return m.fail("start", err)
	}
	m.status = ""
	if m.engine.Len() == 0 {
		m.status = "no questions match the selected topics"
	}
	m.optionCursor = 0
	return m
}

// selectedTopics returns the toggled topics in display order.
func (m Model) selectedTopics() []string {
	var topics []string
	for _, topic := range m.topics {
		if m.chosen[topic] {
			topics = append(topics, topic)
		}
	}
	return topics
}

func (m Model) updateQuiz(msg tea.KeyMsg) Model {
	if m.jumping {
		return m.updateJump(msg)
	}
	finished := m.engine.Finished()
	question, hasQuestion := m.engine.CurrentQuestion()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.optionCursor > 0 {
			m.optionCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if hasQuestion && m.optionCursor < len(question.Options)-1 {
			m.optionCursor++
		}
	case key.Matches(msg, m.keys.Answer) && !finished && hasQuestion:
		m = m.answer(question.Options[m.optionCursor])
	case key.Matches(msg, m.keys.Prev):
		m = m.navigate("previous question", m.engine.PrevQuestion)
	case key.Matches(msg, m.keys.Next):
		m = m.navigate("next question", m.engine.NextQuestion)
	case key.Matches(msg, m.keys.Jump):
		m.jumping = true
		m.jumpInput = ""
	case key.Matches(msg, m.keys.Finish) && !finished:
		if err := m.engine.Finish(); err != nil {
			return m.fail("finish", err)
		}
		m.status = ""
	case key.Matches(msg, m.keys.Again) && (finished || !hasQuestion):
		m.engine.Reset()
		m.status = ""
		m.optionCursor = 0
	default:
		if n, ok := digit(msg); ok && !finished && hasQuestion && n >= 1 && n <= len(question.Options) {
			m.optionCursor = n - 1
			m = m.answer(question.Options[n-1])
		}
	}
	return m
}

func (m Model) answer(option string) Model {
	if err := m.engine.Answer(option); err != nil {
		return m.fail("answer", err)
	}
	m.status = ""
	return m
}

func (m Model) navigate(action string, move func() error) Model {
	if err := move(); err != nil {
		return m.fail(action, err)
	}
	m.status = ""
	m.syncCursor()
	return m
}

func (m Model) updateJump(msg tea.KeyMsg) Model {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.jumping = false
	case msg.Type == tea.KeyBackspace:
		if m.jumpInput != "" {
			m.jumpInput = m.jumpInput[:len(m.jumpInput)-1]
		}
	case key.Matches(msg, m.keys.Start):
		m.jumping = false
		number, err := strconv.Atoi(m.jumpInput)
		if err != nil {
			m.status = "type a question number"
			return m
		}
		m = m.navigate("go to question", func() error { return m.engine.GoToQuestion(number - 1) })
	default:
		if n, ok := digit(msg); ok {
			m.jumpInput += strconv.Itoa(n)
		}
	}
	return m
}

// syncCursor puts the option cursor on the recorded answer, if any.
func (m *Model) syncCursor() {
	m.optionCursor = 0
	question, ok := m.engine.CurrentQuestion()
	if !ok {
		return
	}
	if i := slices.Index(question.Options, m.engine.SelectedOption()); i >= 0 {
		m.optionCursor = i
	}
}

func (m Model) fail(action string, err error) Model {
	m.status = err.Error()
	m.log.Debug("quiz action rejected",
		zap.String("action", action),
		zap.String("session_id", m.engine.SessionID()),
		zap.Error(err),
	)
	return m
}

// digit reports the value of a 0-9 key press.
func digit(msg tea.KeyMsg) (int, bool) {
	s := msg.String()
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '0'), true
}
