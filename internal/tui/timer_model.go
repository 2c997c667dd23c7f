package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/balkashynov/whm/internal/models"
)

// Stopper closes the running session
type Stopper interface {
	Stop(ctx context.Context) (*models.Session, error)
	Latest(ctx context.Context) (*models.Session, error)
	Now() time.Time
}

// TimerModel is the live view of a running session
type TimerModel struct {
	width   int
	height  int
	session *models.Session
	now     func() time.Time

	// Timer state
	elapsed time.Duration

	// Animation state
	frame int

	keys keyMap
	help help.Model

	// Exit state
	stopping bool // s pressed: stop and save
	exiting  bool // esc/q pressed: leave the timer running

	// Stop only closes the latest session; set when that is not this one
	stopDisabled bool
}

// timerTickMsg is sent every second to update the clock
type timerTickMsg time.Time

// animationTickMsg drives the header animation
type animationTickMsg struct{}

// NewTimerModel creates a timer model for an open session
func NewTimerModel(session *models.Session, now func() time.Time) TimerModel {
	if now == nil {
		now = time.Now
	}
	return TimerModel{
		session: session,
		now:     now,
		elapsed: session.Elapsed(now()),
		keys:    defaultKeys,
		help:    help.New(),
	}
}

// withStopDisabled turns off the stop key and explains why in the view
func (m TimerModel) withStopDisabled() TimerModel {
	m.stopDisabled = true
	m.keys.Stop.SetEnabled(false)
	return m
}

func tickTimer() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}

func tickAnimation() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return animationTickMsg{}
	})
}

// Init starts the clock and animation tickers
func (m TimerModel) Init() tea.Cmd {
	return tea.Batch(tickTimer(), tickAnimation())
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		m.elapsed = m.session.Elapsed(m.now())
		if m.done() {
			return m, nil
		}
		return m, tickTimer()

	case animationTickMsg:
		m.frame = (m.frame + 1) % 4
		if m.done() {
			return m, nil
		}
		return m, tickAnimation()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Stop):
			m.stopping = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Leave), key.Matches(msg, m.keys.Quit):
			m.exiting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m TimerModel) done() bool {
	return m.stopping || m.exiting
}

// Stopping reports whether the user asked to stop the session
func (m TimerModel) Stopping() bool {
	return m.stopping
}

// View renders the timer
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Align(lipgloss.Center).
		Width(m.width).
		Render(m.help.View(m.keys))

	// Available height for content (total minus help bar and gap)
	contentHeight := m.height - 2

	// Narrow view: just the clock
	if m.width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderTimerPanel(m.width, contentHeight),
			helpBar,
		)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderTimerPanel(leftWidth, contentHeight),
		"  ",
		m.renderDetailsPanel(rightWidth, contentHeight),
	)

	return lipgloss.JoinVertical(lipgloss.Left, content, helpBar)
}

// renderTimerPanel renders the clock panel
func (m TimerModel) renderTimerPanel(width, height int) string {
	centered := lipgloss.NewStyle().Align(lipgloss.Center).Width(width)

	animChars := []string{"⏱", "⏲", "⏱", "⏲"}
	anim := animChars[m.frame]

	var components []string
	components = append(components,
		centered.Foreground(lipgloss.Color(ColorAccentBright)).Bold(true).
			Render(fmt.Sprintf("%s  TRACKING TIME  %s", anim, anim)),
		centered.Foreground(lipgloss.Color(ColorAccentMain)).Bold(true).
			Render(fmt.Sprintf("#%d", m.session.ID)),
		centered.Foreground(lipgloss.Color(ColorPrimaryText)).Bold(true).
			Render(truncate(m.session.Description, width-4)),
	)

	var clock []string
	for _, line := range strings.Split(renderBigClock(m.elapsed), "\n") {
		clock = append(clock, centered.Render(line))
	}
	components = append(components, strings.Join(clock, "\n"))

	components = append(components,
		centered.Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true).
			Render(fmt.Sprintf("Started at %s", m.session.StartTime.Format("15:04:05"))),
	)
	if m.stopDisabled {
		components = append(components,
			centered.Foreground(lipgloss.Color(ColorDisabledText)).
				Render(stopDisabledNote),
		)
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(components, "\n\n"))
}

// renderDetailsPanel renders group, rate and the running cost
func (m TimerModel) renderDetailsPanel(width, height int) string {
	s := m.session
	line := lipgloss.NewStyle().Align(lipgloss.Center).Width(width - 8)
	value := func(color, text string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(text)
	}

	var b strings.Builder
	b.WriteString("\n")

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Width(width-12).
		Padding(0, 1)
	b.WriteString(title.Render(s.Description))
	b.WriteString("\n\n")

	rule := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBorder)).
		Align(lipgloss.Center).
		Width(width - 8)
	b.WriteString(rule.Render(strings.Repeat("─", max(0, min(width-12, 40)))))
	b.WriteString("\n\n")

	groupColor := ColorAccentBright
	if s.Group == models.DefaultGroup {
		groupColor = ColorDisabledText
	}
	hours := m.elapsed.Hours()

	b.WriteString(line.Render("📁 Group: " + value(groupColor, s.Group)))
	b.WriteString("\n")
	b.WriteString(line.Render("💲 Rate: " + value(ColorSecondaryText, fmt.Sprintf("%.2f/h", s.Rate))))
	b.WriteString("\n")
	b.WriteString(line.Render("⏳ Hours: " + value(ColorAccentBright, fmt.Sprintf("%.2f", hours))))
	b.WriteString("\n")
	b.WriteString(line.Render("💰 Running total: " + value(ColorSuccess, humanize.FormatFloat("#,###.##", s.Rate*hours))))
	b.WriteString("\n")
	b.WriteString(line.Render("📅 Started: " + value(ColorSecondaryText, humanize.RelTime(s.StartTime.Time, m.now(), "ago", "from now"))))

	return lipgloss.NewStyle().Height(height).Render(b.String())
}

// bigDigits are 5x5 glyphs for the clock
var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// renderBigClock renders d as HH:MM:SS (MM:SS under an hour) in block digits
func renderBigClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	text := fmt.Sprintf("%02d:%02d", minutes, seconds)
	if hours > 0 {
		text = fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}

	var lines [5]strings.Builder
	for _, r := range text {
		glyph, ok := bigDigits[r]
		if !ok {
			continue
		}
		for i := range lines {
			lines[i].WriteString(glyph[i])
			lines[i].WriteString(" ")
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	rendered := make([]string, len(lines))
	for i := range lines {
		rendered[i] = style.Render(lines[i].String())
	}
	return strings.Join(rendered, "\n")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width < 4 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

const stopDisabledNote = "A later timer exists, so this one cannot be stopped from here."

// canStop reports whether stopping through ctrl would close session
func canStop(ctx context.Context, ctrl Stopper, session *models.Session) (bool, error) {
	latest, err := ctrl.Latest(ctx)
	if err != nil {
		return false, err
	}
	return latest != nil && latest.ID == session.ID, nil
}

// RunTimerTUI shows the live timer for session and stops it through ctrl when asked.
// The stop key is disabled when session is not the latest one, since Stop would
// close a different session.
func RunTimerTUI(ctx context.Context, ctrl Stopper, session *models.Session, out io.Writer) error {
	model := NewTimerModel(session, ctrl.Now)

	stoppable, err := canStop(ctx, ctrl, session)
	if err != nil {
		return fmt.Errorf("failed to find latest session: %w", err)
	}
	if !stoppable {
		model = model.withStopDisabled()
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	timerModel, ok := finalModel.(TimerModel)
	if !ok || !timerModel.Stopping() {
		fmt.Fprintf(out, "\n💡 Timer is still running for #%d: %s\n", session.ID, session.Description)
		fmt.Fprintf(out, "   Use 'whm status' to check it or 'whm end' to stop it.\n")
		return nil
	}

	stopped, err := ctrl.Stop(ctx)
	if err != nil {
		return fmt.Errorf("failed to stop session: %w", err)
	}
	if stopped == nil {
		fmt.Fprintln(out, "No running timer.")
		return nil
	}

	fmt.Fprintf(out, "⏹️  Stopped #%d: %s\n", stopped.ID, stopped.Description)
	fmt.Fprintf(out, "📊 %.2fh × %.2f = %.2f\n", stopped.ElapsedHours, stopped.Rate, stopped.Subtotal)
	return nil
}
