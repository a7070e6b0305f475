package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	plot "github.com/chriskim06/drawille-go"
	"github.com/mattn/go-runewidth"

	"github.com/keilerkonzept/liveuniq/internal/stream"
	"github.com/keilerkonzept/liveuniq/internal/tally"
)

const (
	// plotSeries is how many of the top ranked keys get a history line.
	plotSeries = 8
	// historyLength is the number of frames kept per history line.
	historyLength = 120
)

var (
	selectedColor = styles.AdaptiveColor{Light: "0", Dark: "9"}
	borderColor   = styles.AdaptiveColor{Light: "#555", Dark: "#555"}
	selectedFg    = styles.NewStyle().Foreground(selectedColor)
	borderFg      = styles.NewStyle().Foreground(borderColor)
	errStyle      = styles.NewStyle().Foreground(styles.AdaptiveColor{Light: "1", Dark: "9"})
	plotStyle     = styles.NewStyle().
			BorderStyle(styles.NormalBorder()).
			Foreground(borderColor).
			BorderForeground(borderColor)
)

func runDashboard(config Config) error {
	in, err := openDashboardInput(config.InputPath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	m, err := newModel(config, in)
	if err != nil {
		return err
	}
	opts := []tui.ProgramOption{tui.WithInputTTY()}
	if config.AltScreen {
		opts = append(opts, tui.WithAltScreen())
	}
	if _, err := tui.NewProgram(m, opts...).Run(); err != nil {
		return err
	}
	return m.err
}

// openDashboardInput refuses an interactive stdin: the dashboard reads its
// keys from the terminal, so lines must come from a pipe or a file.
func openDashboardInput(path string) (io.ReadCloser, error) {
	if path != "" {
		return openInput(path, nil)
	}
	if term.IsTerminal(os.Stdin.Fd()) {
		return nil, fmt.Errorf("--tui needs piped input or an input file")
	}
	return io.NopCloser(os.Stdin), nil
}

type model struct {
	config Config

	width, height  int
	leftPaneWidth  int
	rightPaneWidth int

	track   bool
	paused  bool
	reading bool
	done    bool
	err     error

	list         list.Model
	listStyle    styles.Style
	listDelegate *list.DefaultDelegate
	help         help.Model
	plot         *plot.Canvas

	reader   *stream.Reader
	table    tally.Table
	pipeline *stream.Pipeline
	ranked   []tally.Entry
	history  map[string][]float64
	stats    *runStats
}

func newModel(config Config, in io.Reader) (*model, error) {
	const (
		defaultWidth  = 80
		defaultHeight = 20
	)

	table, err := newTable(config)
	if err != nil {
		return nil, err
	}

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = styles.NewStyle().
		Border(styles.NormalBorder(), false, false, false, true).
		BorderForeground(borderColor).
		Foreground(selectedColor).
		Bold(false).
		Padding(0, 0, 0, 1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.
		Foreground(selectedColor)
	d.ShowDescription = true

	l := list.New(make([]list.Item, 0), d, defaultWidth/2-2, defaultHeight)
	l.Styles.NoItems = l.Styles.NoItems.
		Padding(0, 2)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)

	p := plot.NewCanvas(defaultWidth, defaultHeight)
	p.NumDataPoints = historyLength
	p.ShowAxis = false

	m := &model{
		config:       config,
		list:         l,
		listDelegate: &d,
		help:         help.New(),
		plot:         &p,
		reader:       stream.NewReader(in),
		table:        table,
		history:      make(map[string][]float64),
		stats:        newRunStats(config.StatsWindow),
	}
	m.pipeline = stream.NewPipeline(table, config.normalizeConfig(), config.rankConfig(), m,
		stream.WithStepFunc(func(_ string, start time.Time) {
			m.stats.observeStep(start, time.Now())
		}),
	)
	m.leftPaneWidth, m.rightPaneWidth = paneWidths(defaultWidth)
	return m, nil
}

// Render receives each ranked frame from the pipeline.
func (m *model) Render(entries []tally.Entry) error {
	m.ranked = append(m.ranked[:0], entries...)
	m.recordHistory()
	return nil
}

// recordHistory appends the current count of each plotted key to its line.
// Keys that fall out of the plotted set lose their history.
func (m *model) recordHistory() {
	n := min(plotSeries, len(m.ranked))
	seen := make(map[string]bool, n)
	for _, e := range m.ranked[:n] {
		series, ok := m.history[e.Key]
		if !ok {
			series = make([]float64, historyLength)
		}
		copy(series, series[1:])
		series[len(series)-1] = float64(e.Count)
		m.history[e.Key] = series
		seen[e.Key] = true
	}
	for k := range m.history {
		if !seen[k] {
			delete(m.history, k)
		}
	}
}

type lineMsg string

type eofMsg struct{}

type errMsg struct{ err error }

func (m *model) readLine() tui.Cmd {
	r := m.reader
	return func() tui.Msg {
		line, err := r.Next()
		if errors.Is(err, io.EOF) {
			return eofMsg{}
		}
		if err != nil {
			return errMsg{err}
		}
		return lineMsg(line)
	}
}

// nextLine requests one more line unless reading is paused, finished or
// already in flight, so lines are counted strictly one after another.
func (m *model) nextLine() tui.Cmd {
	if m.paused || m.done || m.reading {
		return nil
	}
	if m.config.MaxLines > 0 && m.stats.lines >= uint64(m.config.MaxLines) {
		m.done = true
		return nil
	}
	m.reading = true
	return m.readLine()
}

func (m *model) Init() tui.Cmd {
	return m.nextLine()
}

func (m *model) Update(msg tui.Msg) (tui.Model, tui.Cmd) {
	switch msg := msg.(type) {
	case lineMsg:
		m.reading = false
		if err := m.pipeline.Step(string(msg)); err != nil {
			m.err = err
			m.done = true
			return m, nil
		}
		m.updateList()
		m.updatePlot()
		return m, m.nextLine()
	case eofMsg:
		m.reading = false
		m.done = true
		return m, nil
	case errMsg:
		m.reading = false
		m.done = true
		m.err = msg.err
		return m, nil
	case tui.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.leftPaneWidth, m.rightPaneWidth = paneWidths(m.width)
		// title + 4 metric lines, then help
		bottomLines := 5 + 1
		available := max(1, m.height-bottomLines)

		leftW := max(1, m.leftPaneWidth)
		rightW := max(1, m.rightPaneWidth)

		m.list.SetSize(leftW, available)
		m.listStyle = styles.NewStyle().Width(leftW).Height(available)
		m.updateList()

		// Right side is: plot canvas + 1 label line, wrapped in a border (adds 2 lines).
		m.resizePlot(max(1, rightW-2), max(1, available-3))
		m.updatePlot()
		return m, nil
	case tui.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tui.Quit
		case key.Matches(msg, keys.Up):
			m.list.CursorUp()
			m.updatePlot()
			return m, nil
		case key.Matches(msg, keys.Down):
			m.list.CursorDown()
			m.updatePlot()
			return m, nil
		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
			return m, m.nextLine()
		case key.Matches(msg, keys.Track):
			m.track = !m.track
			return m, nil
		}
	}
	var cmd tui.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) updateList() {
	items := make([]list.Item, len(m.ranked))
	order := make(map[string]int, len(m.ranked))

	m.listDelegate.Styles.SelectedTitle = m.listDelegate.Styles.SelectedTitle.Bold(m.track)
	m.listDelegate.Styles.SelectedDesc = m.listDelegate.Styles.SelectedDesc.Bold(m.track)
	m.list.SetDelegate(m.listDelegate)

	numDecimals := 1 + int(math.Ceil(math.Log10(float64(len(m.ranked)+1))))
	padToItemRankWidth := strings.Repeat(" ", numDecimals+1)
	itemRankFormat := "#%-" + fmt.Sprint(numDecimals) + "d"
	keyWidth := max(1, m.list.Width()-numDecimals-4)
	for i, e := range m.ranked {
		items[i] = listItem{
			DescriptionPrefix: padToItemRankWidth,
			TitlePrefix:       fmt.Sprintf(itemRankFormat, i+1),
			Label:             runewidth.Truncate(e.Key, keyWidth, "…"),
			Entry:             e,
		}
		order[e.Key] = i
	}
	selected := m.list.SelectedItem()
	m.list.SetItems(items)
	if m.track && selected != nil {
		if i, ok := order[selected.(listItem).Key]; ok {
			m.list.Select(i)
		}
	}
}

func (m *model) resizePlot(w int, h int) {
	p := plot.NewCanvas(w, h)
	p.NumDataPoints = m.plot.NumDataPoints
	p.ShowAxis = m.plot.ShowAxis
	m.plot = &p
}

// updatePlot draws the plotted keys dimmed and the selected key on top.
func (m *model) updatePlot() {
	n := min(plotSeries, len(m.ranked))
	if n == 0 {
		return
	}

	var highlight, dim plot.Color
	if styles.DefaultRenderer().HasDarkBackground() {
		highlight, dim = plot.Red, plot.DimGray
	} else {
		highlight, dim = plot.Black, plot.LightGray
	}

	selected := m.list.Index()
	data := make([][]float64, 0, n)
	colors := make([]plot.Color, 0, n)
	var top []float64
	for i, e := range m.ranked[:n] {
		series := m.history[e.Key]
		if i == selected {
			top = series
			continue
		}
		data = append(data, series)
		colors = append(colors, dim)
	}
	if top != nil {
		data = append(data, top)
		colors = append(colors, highlight)
	}
	m.plot.LineColors = colors
	m.plot.Fill(data)
}

func (m *model) View() string {
	left := m.listStyle.Render(m.list.View())
	canvas := m.plot.String()
	if canvas == "" {
		canvas = emptyPlot(m)
	}

	state := selectedFg.Render("READING")
	switch {
	case m.done:
		state = borderFg.Render("DONE")
	case m.paused:
		state = selectedFg.Render("PAUSED")
	}
	labels := fmt.Sprintf("%s %s", state, borderFg.Render(fmt.Sprintf("keys: %d", len(m.ranked))))
	right := plotStyle.Render(styles.JoinVertical(styles.Top, canvas, labels))
	view := styles.JoinHorizontal(styles.Top, left, right)

	if m.err != nil {
		return styles.JoinVertical(styles.Left, view, errStyle.Render("ERROR: "+m.err.Error()), m.help.View(keys))
	}

	snap := m.stats.snapshot()
	topItem := "-"
	if len(m.ranked) > 0 {
		topItem = fmt.Sprintf("%s (%d)", m.ranked[0].Key, m.ranked[0].Count)
	}
	tracked := "off"
	if m.track {
		tracked = "-"
		if li, ok := m.list.SelectedItem().(listItem); ok {
			tracked = fmt.Sprintf("%s (%d)", li.Key, li.Count)
		}
	}
	statsBlock := []string{
		fmt.Sprintf("lines: %d  rate: %d lines/s", snap.lines, snap.avgRate),
		fmt.Sprintf("step latency avg/max: %s / %s", formatMetricDuration(snap.step.avg), formatMetricDuration(snap.step.max)),
		fmt.Sprintf("top-1: %s", topItem),
		fmt.Sprintf("track: %s", tracked),
	}
	if m.config.ApproxK > 0 {
		statsBlock[0] += fmt.Sprintf("  approx top-%d", m.config.ApproxK)
	}
	stats := styles.JoinVertical(styles.Left, borderFg.Render("STATS"), errStyle.Render(strings.Join(statsBlock, "\n")))
	return styles.JoinVertical(styles.Left, view, stats, m.help.View(keys))
}

func emptyPlot(m *model) string {
	if m.width < 2 || m.height < 4 {
		return ""
	}
	var sb strings.Builder
	spaces := strings.Repeat(" ", max(1, m.rightPaneWidth-2))
	for range max(0, m.list.Height()-3) {
		sb.WriteString(spaces)
		sb.WriteRune('\n')
	}
	return sb.String()
}

// paneWidths splits the screen in half; the plot gets any odd column.
func paneWidths(totalWidth int) (left, right int) {
	left = max(1, totalWidth/2)
	return left, max(1, totalWidth-left)
}

type listItem struct {
	DescriptionPrefix string
	TitlePrefix       string
	Label             string
	tally.Entry
}

func (i listItem) Title() string       { return fmt.Sprintf("%s %s", i.TitlePrefix, i.Label) }
func (i listItem) Description() string { return fmt.Sprintf("%s %d", i.DescriptionPrefix, i.Count) }
func (i listItem) FilterValue() string { return i.Key }

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Pause, k.Track}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Pause},
		{k.Up, k.Down, k.Track},
	}
}

type keyMap struct {
	Track key.Binding
	Pause key.Binding
	Up    key.Binding
	Down  key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Track: key.NewBinding(
		key.WithKeys("t", " "),
		key.WithHelp("t/space", "track"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}
