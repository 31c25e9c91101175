package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muurk/polfunbox/internal/app"
	"github.com/muurk/polfunbox/internal/ui"
)

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	s := m.snap

	var body string
	switch {
	case s.PIN != nil:
		body = m.viewPIN(s.PIN)
	case s.Overlay != nil:
		body = m.viewOverlay(s.Overlay)
	case s.Live != nil && s.Live.Fullscreen:
		body = m.viewFullscreen(s.Live)
	case s.Search != nil:
		body = m.viewSearch(s)
	default:
		body = m.viewScreen(s)
	}

	parts := []string{m.viewTitleBar(s), "", body}
	if s.Alert != nil {
		parts = append(parts, "", viewAlert(*s.Alert))
	}
	if len(s.Debug) > 0 {
		parts = append(parts, debugStyle.Render(strings.Join(s.Debug, "\n")))
	}
	parts = append(parts, "", m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTitleBar(s app.Snapshot) string {
	status := mutedStyle.Render(s.Platform + " · " + s.DeviceCode)
	if s.Loading {
		status = m.spinner.View() + " " + status
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		titleBarStyle.Render(AppName), "  ",
		lipgloss.NewStyle().Bold(true).Render(s.Title), "  ",
		status,
	)
}

func (m Model) viewScreen(s app.Snapshot) string {
	var content string
	switch s.Screen {
	case app.Login:
		content = m.viewLogin(s)
	case app.Home:
		content = m.viewHome(s)
	case app.LiveTV:
		content = lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewList(s, app.GroupCategories, "Kategorie", categoryWidth),
			m.viewList(s, app.GroupChannels, "Kanały", channelWidth),
			m.viewPlayer(s),
		)
	case app.Movies, app.Series:
		content = lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewList(s, app.GroupCategories, "Kategorie", categoryWidth),
			m.viewList(s, app.GroupItems, s.Title, itemWidth),
		)
	case app.MovieDetails:
		content = m.viewMovie(s)
	case app.SeriesDetails, app.Episodes:
		content = m.viewSeries(s)
	case app.Account:
		content = m.viewAccount(s)
	case app.Settings:
		content = m.viewForm(s, app.GroupSettings)
	}

	if nav := m.viewRow(s, app.GroupNav); nav != "" {
		return lipgloss.JoinVertical(lipgloss.Left, nav, "", content)
	}
	return content
}

func (m Model) viewLogin(s app.Snapshot) string {
	code := lipgloss.JoinHorizontal(lipgloss.Top,
		mutedStyle.Render("Kod urządzenia: "),
		screenTitleStyle.UnsetMarginBottom().Render(s.DeviceCode),
	)
	return lipgloss.JoinVertical(lipgloss.Left, code, "", m.viewForm(s, app.GroupLogin))
}

// viewForm draws a group as label/value rows.
func (m Model) viewForm(s app.Snapshot, group string) string {
	var lines []string
	for _, v := range elements(s, group) {
		focused := v.ID == s.Focus
		label := runewidth.FillRight(v.Label, 28)
		value := v.Detail
		if v.ID == m.editing {
			value = m.text.View()
		}

		style := itemStyle
		switch {
		case focused:
			style = focusedItemStyle
		case v.Disabled:
			style = disabledItemStyle
		}
		marker := "  "
		if focused {
			marker = "▸ "
		}
		lines = append(lines, style.Render(marker+label)+"  "+value)
	}
	return panelStyle.Width(formWidth + 20).Render(strings.Join(lines, "\n"))
}

func (m Model) viewHome(s app.Snapshot) string {
	cards := elements(s, app.GroupCards)
	var big, small []string
	for i, v := range cards {
		style := cardStyle
		if v.ID == s.Focus {
			style = focusedCardStyle
		}
		if i < 3 {
			big = append(big, style.Render(v.Label+"\n\n"+v.Detail))
			continue
		}
		small = append(small, style.Width(16).Padding(0, 1).Render(v.Label))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, big...),
		lipgloss.JoinHorizontal(lipgloss.Top, small...),
	)
}

// viewList draws a scrollable group as a column. The window starts where
// the controller scrolled the group and keeps the focused or selected
// element on screen.
func (m Model) viewList(s app.Snapshot, group, title string, width int) string {
	items := elements(s, group)
	style := panelStyle
	anchor := -1
	for i, v := range items {
		if v.ID == s.Focus {
			anchor = i
			style = activePanelStyle
			break
		}
		if v.Selected && anchor < 0 {
			anchor = i
		}
	}

	lines := []string{screenTitleStyle.UnsetMarginBottom().Render(title)}
	if len(items) == 0 {
		lines = append(lines, mutedStyle.Render("Brak"))
		return style.Width(width).Render(strings.Join(lines, "\n"))
	}

	rows := m.listRows()
	start := scrollWindow(s.FirstVisible(group), anchor, len(items), rows)
	end := min(start+rows, len(items))
	if start > 0 {
		lines = append(lines, mutedStyle.Render("  ↑"))
	}
	for _, v := range items[start:end] {
		lines = append(lines, renderItem(v, v.ID == s.Focus, width-4))
	}
	if end < len(items) {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("  ↓ %d więcej", len(items)-end)))
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) listRows() int {
	return max(m.height-14, 5)
}

// scrollWindow returns the first index of a rows-long window over n items.
// The window begins at start and slides only as far as needed to show
// anchor; a terminal holds fewer rows than the layout viewport. A negative
// anchor pins nothing.
func scrollWindow(start, anchor, n, rows int) int {
	if n <= rows {
		return 0
	}
	if anchor >= 0 {
		if anchor < start {
			start = anchor
		} else if anchor >= start+rows {
			start = anchor - rows + 1
		}
	}
	return max(0, min(start, n-rows))
}

func renderItem(v app.ElementView, focused bool, width int) string {
	var b strings.Builder
	if focused {
		b.WriteString("▸ ")
	} else {
		b.WriteString("  ")
	}
	if v.Selected {
		b.WriteString("● ")
	}
	if v.Favorite {
		b.WriteString(ui.FavoriteMark + " ")
	}
	if v.Locked {
		b.WriteString("🔒 ")
	}
	b.WriteString(v.Label)
	if v.Detail != "" {
		b.WriteString("  ")
		b.WriteString(v.Detail)
	}
	line := runewidth.Truncate(b.String(), width, "…")

	switch {
	case focused:
		return focusedItemStyle.Render(runewidth.FillRight(line, width))
	case v.Disabled:
		return disabledItemStyle.Render(line)
	case v.Selected:
		return selectedItemStyle.Render(line)
	}
	return itemStyle.Render(line)
}

// viewRow draws a group as a row of buttons.
func (m Model) viewRow(s app.Snapshot, group string) string {
	items := elements(s, group)
	if len(items) == 0 {
		return ""
	}
	buttons := make([]string, 0, len(items))
	for _, v := range items {
		label := v.Label
		if v.Detail != "" && group == app.GroupSeasons {
			label += " (" + v.Detail + ")"
		}
		style := itemStyle
		switch {
		case v.ID == s.Focus:
			style = focusedItemStyle
		case v.Selected:
			style = selectedItemStyle
		case v.Disabled:
			style = disabledItemStyle
		}
		buttons = append(buttons, style.Render("[ "+label+" ]"))
	}
	return strings.Join(buttons, " ")
}

func (m Model) viewPlayer(s app.Snapshot) string {
	lv := s.Live
	if lv == nil {
		return ""
	}
	state := mutedStyle.Render("■ Zatrzymany")
	switch {
	case lv.Paused:
		state = "⏸ Pauza"
	case lv.Playing:
		state = selectedItemStyle.Render("▶ Odtwarzanie")
	}

	lines := []string{
		screenTitleStyle.UnsetMarginBottom().Render(lv.ChannelName),
		state,
		"",
	}
	lines = append(lines, m.viewEPG(lv)...)
	lines = append(lines, "", m.viewRow(s, app.GroupPlayer))

	style := panelStyle
	for _, v := range elements(s, app.GroupPlayer) {
		if v.ID == s.Focus {
			style = activePanelStyle
		}
	}
	return style.Width(playerWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) viewEPG(lv *app.LiveView) []string {
	if lv.EPG.Current == "" {
		return nil
	}
	lines := []string{lv.EPG.Current}
	if lv.EPG.Progress > 0 {
		lines = append(lines, m.bar.ViewAs(lv.EPG.Progress))
	}
	if lv.EPG.Next != "" {
		lines = append(lines, mutedStyle.Render(lv.EPG.Next))
	}
	return lines
}

func (m Model) viewFullscreen(lv *app.LiveView) string {
	lines := []string{screenTitleStyle.Render(lv.ChannelName)}
	if lv.Paused {
		lines = append(lines, "⏸ Pauza")
	}
	if lv.FullscreenEPG {
		lines = append(lines, "")
		lines = append(lines, m.viewEPG(lv)...)
	}
	lines = append(lines, "", mutedStyle.Render("enter: program · pgup/pgdn: kanał · esc: wyjście"))
	return activePanelStyle.
		Width(max(m.width-4, playerWidth)).
		Height(max(m.height-8, 6)).
		Render(strings.Join(lines, "\n"))
}

func (m Model) viewOverlay(o *app.OverlayView) string {
	lines := []string{screenTitleStyle.UnsetMarginBottom().Render(o.Title)}
	if o.Info != "" {
		lines = append(lines, mutedStyle.Render(o.Info))
	}
	lines = append(lines, "")

	switch {
	case o.Loading:
		lines = append(lines, m.spinner.View()+" Ładowanie…")
	case o.Controls:
		frac := 0.0
		if o.Duration > 0 {
			frac = min(float64(o.Position)/float64(o.Duration), 1)
		}
		state := "▶"
		if o.Paused {
			state = "⏸"
		}
		lines = append(lines,
			state+" "+m.bar.ViewAs(frac)+" "+fmtDuration(o.Position)+" / "+fmtDuration(o.Duration),
			"",
			mutedStyle.Render("space: pauza · [ ]: przewijanie · esc: zamknij"),
		)
	}
	return activePanelStyle.
		Width(max(m.width-4, playerWidth)).
		Height(max(m.height-8, 6)).
		Render(strings.Join(lines, "\n"))
}

func (m Model) viewPIN(p *app.PINView) string {
	dots := make([]string, p.Length)
	for i := range dots {
		dots[i] = "○"
		if i < p.Entered {
			dots[i] = "●"
		}
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(p.Title),
		"",
		lipgloss.NewStyle().Foreground(ui.PrimaryColor).Render(strings.Join(dots, "  ")),
		"",
	}
	if p.Error != "" {
		lines = append(lines, pinErrorStyle.Render(p.Error), "")
	}
	lines = append(lines, mutedStyle.Render("0-9: cyfry · ⌫: usuń · esc: anuluj"))

	return lipgloss.Place(max(m.width, 40), max(m.height-8, 10),
		lipgloss.Center, lipgloss.Center,
		modalStyle.Render(strings.Join(lines, "\n")),
	)
}

func (m Model) viewSearch(s app.Snapshot) string {
	var input string
	var results []app.ElementView
	for _, v := range elements(s, app.GroupSearch) {
		if v.Editable {
			input = renderItem(v, v.ID == s.Focus, formWidth)
			if v.ID == m.editing {
				input = "  " + m.text.View()
			}
			continue
		}
		results = append(results, v)
	}

	lines := []string{input}
	if s.Search.Hint != "" {
		lines = append(lines, mutedStyle.Render("  "+s.Search.Hint))
	}
	lines = append(lines, "")
	anchor := -1
	for i, v := range results {
		if v.ID == s.Focus {
			anchor = i
		}
	}
	// The input is the first element of the group.
	rows := m.listRows()
	start := scrollWindow(max(s.FirstVisible(app.GroupSearch)-1, 0), anchor, len(results), rows)
	for _, v := range results[start:min(start+rows, len(results))] {
		lines = append(lines, renderItem(v, v.ID == s.Focus, formWidth))
	}
	return activePanelStyle.Width(formWidth + 4).Render(strings.Join(lines, "\n"))
}

func (m Model) viewMovie(s app.Snapshot) string {
	mv := s.Movie
	if mv == nil {
		return m.spinner.View() + " Ładowanie…"
	}
	lines := []string{
		screenTitleStyle.UnsetMarginBottom().Render(mv.Name),
		mutedStyle.Render(joinNonEmpty(" · ", mv.Year, mv.Duration, mv.Genre, mv.Rating)),
	}
	lines = append(lines, details(
		"Kategoria", mv.Category,
		"Reżyseria", mv.Director,
		"Obsada", mv.Cast,
	)...)
	if mv.Plot != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(itemWidth+24).Render(mv.Plot))
	}
	lines = append(lines, "", m.viewRow(s, app.GroupActions))
	return strings.Join(lines, "\n")
}

func (m Model) viewSeries(s app.Snapshot) string {
	sv := s.Series
	if sv == nil {
		return m.spinner.View() + " Ładowanie…"
	}
	lines := []string{
		screenTitleStyle.UnsetMarginBottom().Render(sv.Name),
		mutedStyle.Render(joinNonEmpty(" · ", sv.Year, sv.Genre, sv.Rating)),
	}

	if s.Screen == app.Episodes {
		lines = append(lines, "", m.viewRow(s, app.GroupActions), "",
			m.viewList(s, app.GroupEpisodes, "Sezon "+sv.Season, itemWidth+24))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, details("Reżyseria", sv.Director, "Obsada", sv.Cast)...)
	if sv.Plot != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(itemWidth+24).Render(sv.Plot))
	}
	lines = append(lines, "", m.viewRow(s, app.GroupSeasons), "", m.viewRow(s, app.GroupActions))
	return strings.Join(lines, "\n")
}

func (m Model) viewAccount(s app.Snapshot) string {
	a := s.Account
	if a == nil {
		return m.viewRow(s, app.GroupActions)
	}
	lines := details(
		"Użytkownik", a.Username,
		"Serwer", a.Server,
		"Status", orDash(a.Status),
		"Wygasa", fmtDate(a.Expires),
		"Utworzono", fmtDate(a.Created),
		"Połączenia", orDash(a.Connections)+" / "+orDash(a.MaxConnections),
	)
	lines = append(lines, "", m.viewRow(s, app.GroupActions))
	return panelStyle.Width(formWidth).Render(strings.Join(lines, "\n"))
}

func viewAlert(a app.Alert) string {
	style, ok := alertStyles[a.Type]
	if !ok {
		style = alertStyles[app.AlertInfo]
	}
	return style.Render(alertMarkers[a.Type] + " " + a.Message)
}

// elements returns the snapshot's elements of one group in layout order.
func elements(s app.Snapshot, group string) []app.ElementView {
	var out []app.ElementView
	for _, v := range s.Elements {
		if v.Group == group {
			out = append(out, v)
		}
	}
	return out
}

// details renders label/value pairs, skipping empty values.
func details(pairs ...string) []string {
	var lines []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		lines = append(lines, mutedStyle.Render(runewidth.FillRight(pairs[i]+":", 12))+pairs[i+1])
	}
	return lines
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func orDash(s string) string {
	if s == "" {
		return "--"
	}
	return s
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return "--"
	}
	return t.Format("2006-01-02")
}

// fmtDuration renders d as mm:ss, or h:mm:ss from an hour up.
func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	mins := int(d % time.Hour / time.Minute)
	secs := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mins, secs)
	}
	return fmt.Sprintf("%02d:%02d", mins, secs)
}
