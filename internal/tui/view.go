package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kamusis/skillcat/internal/app"
	"github.com/kamusis/skillcat/internal/categorize"
	"github.com/kamusis/skillcat/internal/richtext"
)

const (
	sidebarWidth     = 30
	defaultWidth     = 110
	descriptionRunes = 70
)

type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	active   lipgloss.Style
	cursor   lipgloss.Style
	name     lipgloss.Style
	badge    lipgloss.Style
	err      lipgloss.Style
	panel    lipgloss.Style
	focused  lipgloss.Style
	heading  lipgloss.Style
	disabled lipgloss.Style
}

// Colors follow the Tokyo Night palette.
func defaultStyles() styles {
	blue := lipgloss.AdaptiveColor{Light: "#3d59a1", Dark: "#7aa2f7"}
	green := lipgloss.AdaptiveColor{Light: "#33635c", Dark: "#9ece6a"}
	red := lipgloss.AdaptiveColor{Light: "#8c4351", Dark: "#f7768e"}
	grey := lipgloss.Color("240")
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(blue),
		muted:    lipgloss.NewStyle().Foreground(grey),
		active:   lipgloss.NewStyle().Bold(true).Foreground(green),
		cursor:   lipgloss.NewStyle().Foreground(blue),
		name:     lipgloss.NewStyle().Bold(true),
		badge:    lipgloss.NewStyle().Foreground(green),
		err:      lipgloss.NewStyle().Bold(true).Foreground(red),
		panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(grey).Padding(0, 1),
		focused:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(blue).Padding(0, 1),
		heading:  lipgloss.NewStyle().Bold(true).Underline(true),
		disabled: lipgloss.NewStyle().Foreground(grey).Faint(true),
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Skills 目录"))
	if m.view.Status == app.StatusReady {
		b.WriteString(m.styles.muted.Render(fmt.Sprintf("  %d 个 Skills", m.view.TotalSkills)))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch m.view.Status {
	case app.StatusReady:
		right := m.renderResults()
		if m.showDetail {
			right = m.renderDetail()
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderCategories(), right))
	case app.StatusFailed:
		b.WriteString(m.styles.err.Render("加载失败，请重试"))
		b.WriteString(m.styles.muted.Render("  (r 重试)"))
		if m.view.Err != nil {
			b.WriteString("\n" + m.styles.muted.Render(m.view.Err.Error()))
		}
	default:
		b.WriteString(m.styles.muted.Render("加载中..."))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render(m.helpLine()))
	return b.String()
}

func (m Model) helpLine() string {
	switch {
	case m.focus == focusSearch:
		return "enter/esc: done"
	case m.showDetail:
		return "esc: back"
	case m.view.Status == app.StatusFailed:
		return "r: retry • q: quit"
	}
	return "/: search • tab: categories/results • ↑↓: move • ←→: page • enter: open • q: quit"
}

func (m Model) panel(f focus) lipgloss.Style {
	if m.focus == f {
		return m.styles.focused
	}
	return m.styles.panel
}

func (m Model) renderCategories() string {
	var lines []string
	for i, it := range m.categoryItems() {
		line := fmt.Sprintf("%s (%d)", it.label, it.count)
		if it.name == m.view.State.Category {
			line = m.styles.active.Render(line)
		}
		prefix := "  "
		if m.focus == focusCategories && i == m.catCursor {
			prefix = m.styles.cursor.Render("> ")
		}
		lines = append(lines, prefix+line)
	}
	return m.panel(focusCategories).Width(sidebarWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) resultsWidth() int {
	w := m.width
	if w <= 0 {
		w = defaultWidth
	}
	return max(w-sidebarWidth-6, 30)
}

func (m Model) renderResults() string {
	style := m.panel(focusResults).Width(m.resultsWidth())
	if m.view.Empty {
		return style.Render(m.styles.muted.Render("未找到相关 Skill"))
	}

	var lines []string
	for i, s := range m.view.Page.Skills {
		prefix := "  "
		if m.focus == focusResults && i == m.cursor {
			prefix = m.styles.cursor.Render("> ")
		}
		head := m.styles.name.Render(s.Name) + " " + m.styles.muted.Render("@"+s.Author)
		if s.IsNew {
			head += " " + m.styles.badge.Render("★")
		}
		lines = append(lines, prefix+head)
		lines = append(lines, "    "+richtext.Truncate(s.DisplayDescription(), descriptionRunes))
	}
	if p := m.pagination(); p != "" {
		lines = append(lines, "", p)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// pagination is hidden when everything fits on one page.
func (m Model) pagination() string {
	pg := m.view.Page
	if pg.TotalPages <= 1 {
		return ""
	}
	prev, next := "上一页", "下一页"
	if !pg.HasPrev() {
		prev = m.styles.disabled.Render(prev)
	}
	if !pg.HasNext() {
		next = m.styles.disabled.Render(next)
	}
	return fmt.Sprintf("%s  第 %d 页，共 %d 页  %s", prev, pg.CurrentPage, pg.TotalPages, next)
}

func (m Model) renderDetail() string {
	s, ok := m.selected()
	style := m.styles.focused.Width(m.resultsWidth())
	if !ok {
		return style.Render("")
	}
	category := categorize.Meta(s.Category).NameCn
	for _, c := range m.view.Categories {
		if c.Name == s.Category && c.NameCn != "" {
			category = c.NameCn
		}
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render(s.Name) + "\n")
	b.WriteString(m.styles.muted.Render("@"+s.Author) + "  " + m.styles.badge.Render(category) + "\n\n")
	b.WriteString(m.styles.heading.Render("描述") + "\n")
	b.WriteString(s.DisplayDescription() + "\n")
	if s.DescriptionCn != "" && s.DescriptionCn != s.Description {
		b.WriteString(m.styles.muted.Render(s.Description) + "\n")
	}
	b.WriteString("\n" + m.styles.heading.Render("安装命令") + "\n")
	b.WriteString(s.InstallCommand + "\n")
	if s.GithubURL != "" {
		b.WriteString("\n" + m.styles.heading.Render("在 GitHub 查看") + "\n")
		b.WriteString(s.GithubURL)
	}
	return style.Render(b.String())
}
