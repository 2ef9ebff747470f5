// Package categorize assigns categories to new skills and supplies the
// localized label and icon for every known category.
package categorize

import (
	"strings"

	"github.com/kamusis/skillcat/internal/catalog"
)

// DefaultCategory is used when no keyword rule matches.
const DefaultCategory = "Productivity & Tasks"

// FallbackIcon is the icon for categories missing from the table.
const FallbackIcon = "fa-cube"

// Rule maps a keyword to a category.
type Rule struct {
	Keyword  string
	Category string
}

// Rules are tried in order; the first keyword found wins.
var Rules = []Rule{
	{"mcp", "AI & LLMs"},
	{"ai", "AI & LLMs"},
	{"llm", "AI & LLMs"},
	{"planning", "Productivity & Tasks"},
	{"task", "Productivity & Tasks"},
	{"productivity", "Productivity & Tasks"},
	{"design", "Web & Frontend Development"},
	{"frontend", "Web & Frontend Development"},
	{"ui", "Web & Frontend Development"},
	{"ux", "Web & Frontend Development"},
	{"web", "Web & Frontend Development"},
	{"canvas", "Web & Frontend Development"},
	{"pdf", "Productivity & Tasks"},
	{"docx", "Productivity & Tasks"},
	{"pptx", "Productivity & Tasks"},
	{"xlsx", "Productivity & Tasks"},
	{"document", "Productivity & Tasks"},
	{"office", "Productivity & Tasks"},
	{"git", "DevOps & Cloud"},
	{"development", "Coding Agents & IDEs"},
	{"coding", "Coding Agents & IDEs"},
	{"debug", "Coding Agents & IDEs"},
	{"test", "Coding Agents & IDEs"},
	{"brainstorm", "Productivity & Tasks"},
	{"communication", "Communication"},
	{"slack", "Communication"},
	{"redbook", "Marketing & Sales"},
	{"小红书", "Marketing & Sales"},
	{"social", "Marketing & Sales"},
	{"brand", "Marketing & Sales"},
	{"art", "Web & Frontend Development"},
	{"algorithmic", "Coding Agents & IDEs"},
}

// Classify picks a category from the skill's name and description using
// substring matches against Rules.
func Classify(name, description string) string {
	text := strings.ToLower(name + " " + description)
	for _, r := range Rules {
		if strings.Contains(text, r.Keyword) {
			return r.Category
		}
	}
	return DefaultCategory
}

type meta struct {
	nameCn string
	icon   string
}

var known = map[string]meta{
	"Web & Frontend Development": {"Web与前端开发", "fa-globe"},
	"Coding Agents & IDEs":       {"编程代理与IDE", "fa-code"},
	"Git & GitHub":               {"Git与GitHub", "fa-code-branch"},
	"Moltbook":                   {"Moltbook笔记本", "fa-book"},
	"DevOps & Cloud":             {"DevOps与云服务", "fa-cloud"},
	"Browser & Automation":       {"浏览器与自动化", "fa-robot"},
	"Image & Video Generation":   {"图像与视频生成", "fa-image"},
	"Apple Apps & Services":      {"Apple应用与服务", "fa-apple"},
	"Search & Research":          {"搜索与研究", "fa-search"},
	"Clawdbot Tools":             {"Clawdbot工具", "fa-tools"},
	"CLI Utilities":              {"命令行工具", "fa-terminal"},
	"Marketing & Sales":          {"营销与销售", "fa-chart-line"},
	"Productivity & Tasks":       {"生产力与任务管理", "fa-tasks"},
	"AI & LLMs":                  {"AI与大语言模型", "fa-brain"},
	"Data & Analytics":           {"数据与分析", "fa-chart-bar"},
	"Finance":                    {"金融", "fa-dollar-sign"},
	"Media & Streaming":          {"媒体与流媒体", "fa-film"},
	"Notes & PKM":                {"笔记与个人知识管理", "fa-sticky-note"},
	"iOS & macOS Development":    {"iOS与macOS开发", "fa-mobile-alt"},
	"Transportation":             {"交通出行", "fa-car"},
	"Personal Development":       {"个人发展", "fa-user-graduate"},
	"Health & Fitness":           {"健康与健身", "fa-heartbeat"},
	"Communication":              {"通讯", "fa-comments"},
	"Speech & Transcription":     {"语音与转录", "fa-microphone"},
	"Smart Home & IoT":           {"智能家居与物联网", "fa-home"},
	"Shopping & E-commerce":      {"购物与电商", "fa-shopping-cart"},
	"Calendar & Scheduling":      {"日历与日程安排", "fa-calendar-alt"},
	"PDF & Documents":            {"PDF与文档", "fa-file-pdf"},
	"Self-Hosted & Automation":   {"自托管与自动化", "fa-sync"},
	"Security & Passwords":       {"安全与密码", "fa-lock"},
	"Gaming":                     {"游戏", "fa-gamepad"},
	catalog.Latest:               {"最新", "fa-star"},
}

// Meta returns a zero-count Category for name, with its Chinese label and
// icon. Unknown names keep their own name as label and get FallbackIcon.
func Meta(name string) catalog.Category {
	m, ok := known[name]
	if !ok {
		return catalog.Category{Name: name, NameCn: name, Icon: FallbackIcon}
	}
	return catalog.Category{Name: name, NameCn: m.nameCn, Icon: m.icon}
}

// Icon returns the icon for a category name.
func Icon(name string) string {
	return Meta(name).Icon
}
