package apps

import (
	"fmt"
	"net/url"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/deskfolio/internal/profile"
	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/theme"
)

// SearchURL is prefixed to address bar input that does not look like a host.
const SearchURL = "https://www.google.com/search?q="

// frameBlocked lists hosts that refuse to be embedded in another page.
var frameBlocked = map[string]bool{
	"google.com":    true,
	"github.com":    true,
	"linkedin.com":  true,
	"x.com":         true,
	"twitter.com":   true,
	"facebook.com":  true,
	"instagram.com": true,
	"youtube.com":   true,
}

// NormalizeURL turns address bar input into a URL. Input with a scheme is kept,
// host-like input gets https:// and anything else becomes a search.
func NormalizeURL(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return input
	}
	if !strings.ContainsAny(input, " \t") && looksLikeHost(input) {
		return "https://" + input
	}
	return SearchURL + url.QueryEscape(input)
}

func looksLikeHost(s string) bool {
	host := s
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if strings.HasPrefix(host, "localhost") {
		return true
	}
	dot := strings.LastIndex(host, ".")
	return dot > 0 && dot < len(host)-1
}

// FrameBlocked reports whether rawURL points at a host that refuses framing.
func FrameBlocked(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return frameBlocked[host]
}

// tab is one browser tab with its own history. An empty URL is the new tab page.
type tab struct {
	history []string
	pos     int
	loads   int
}

func newTab() *tab {
	return &tab{history: []string{""}}
}

func (t *tab) url() string { return t.history[t.pos] }

func (t *tab) visit(u string) {
	t.history = append(t.history[:t.pos+1], u)
	t.pos = len(t.history) - 1
	t.loads++
}

func (t *tab) back() bool {
	if t.pos == 0 {
		return false
	}
	t.pos--
	t.loads++
	return true
}

func (t *tab) forward() bool {
	if t.pos >= len(t.history)-1 {
		return false
	}
	t.pos++
	t.loads++
	return true
}

func (t *tab) title() string {
	u := t.url()
	if u == "" {
		return "New Tab"
	}
	if strings.HasPrefix(u, SearchURL) {
		q, _ := url.QueryUnescape(strings.TrimPrefix(u, SearchURL))
		return q
	}
	if p, err := url.Parse(u); err == nil && p.Hostname() != "" {
		return strings.TrimPrefix(p.Hostname(), "www.")
	}
	return u
}

// MaxTabs bounds the number of open tabs.
const MaxTabs = 6

// Browser is a tabbed browser that summarises pages instead of fetching them.
type Browser struct {
	tabs      []*tab
	active    int
	address   textinput.Model
	bookmarks []profile.Link
}

// NewBrowser returns a browser with a single new tab.
func NewBrowser(bookmarks []profile.Link) *Browser {
	return &Browser{tabs: []*tab{newTab()}, bookmarks: bookmarks, address: NewLineInput("", 512)}
}

// Tabs returns the number of open tabs.
func (b *Browser) Tabs() int { return len(b.tabs) }

// Active returns the index of the active tab.
func (b *Browser) Active() int { return b.active }

// URL returns the active tab's URL.
func (b *Browser) URL() string { return b.current().url() }

// Loads returns how many times the active tab has loaded a page.
func (b *Browser) Loads() int { return b.current().loads }

func (b *Browser) current() *tab { return b.tabs[b.active] }

// Navigate loads input in the active tab.
func (b *Browser) Navigate(input string) {
	u := NormalizeURL(input)
	if u == "" {
		return
	}
	b.current().visit(u)
	b.setAddress(u)
}

func (b *Browser) Back() bool {
	ok := b.current().back()
	b.syncAddress()
	return ok
}

func (b *Browser) Forward() bool {
	ok := b.current().forward()
	b.syncAddress()
	return ok
}

// Reload loads the current page again.
func (b *Browser) Reload() {
	b.current().loads++
	b.syncAddress()
}

// NewTab opens and activates an empty tab.
func (b *Browser) NewTab() bool {
	if len(b.tabs) >= MaxTabs {
		return false
	}
	b.tabs = append(b.tabs, newTab())
	b.active = len(b.tabs) - 1
	b.syncAddress()
	return true
}

// CloseTab closes the active tab. The last tab is replaced by a new tab page.
func (b *Browser) CloseTab() {
	if len(b.tabs) == 1 {
		b.tabs[0] = newTab()
		b.syncAddress()
		return
	}
	b.tabs = append(b.tabs[:b.active], b.tabs[b.active+1:]...)
	b.active = min(b.active, len(b.tabs)-1)
	b.syncAddress()
}

// SelectTab activates tab i.
func (b *Browser) SelectTab(i int) {
	if i < 0 || i >= len(b.tabs) {
		return
	}
	b.active = i
	b.syncAddress()
}

func (b *Browser) syncAddress() {
	b.setAddress(b.current().url())
}

func (b *Browser) setAddress(u string) {
	b.address.SetValue(u)
	b.address.CursorEnd()
}

// Address returns the text in the address bar.
func (b *Browser) Address() string { return b.address.Value() }

func (b *Browser) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyPressMsg); ok {
		return b.handleKey(k)
	}
	return nil
}

func (b *Browser) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		b.Navigate(b.address.Value())
	case "ctrl+t":
		b.NewTab()
	case "ctrl+x":
		b.CloseTab()
	case "tab":
		b.SelectTab((b.active + 1) % len(b.tabs))
	case "shift+tab":
		b.SelectTab((b.active + len(b.tabs) - 1) % len(b.tabs))
	case "ctrl+b":
		b.Back()
	case "ctrl+f":
		b.Forward()
	case "ctrl+r":
		b.Reload()
	case "esc":
		b.syncAddress()
	default:
		var cmd tea.Cmd
		b.address, cmd = b.address.Update(msg)
		return cmd
	}
	return nil
}

// tabSpans returns the [start, end) columns of each tab label in the strip.
func (b *Browser) tabSpans() [][2]int {
	spans := make([][2]int, len(b.tabs))
	x := 0
	for i, t := range b.tabs {
		w := ansi.StringWidth(tabLabel(t))
		spans[i] = [2]int{x, x + w}
		x += w + 1
	}
	return spans
}

func tabLabel(t *tab) string {
	return " " + ansi.Truncate(t.title(), 14, "…") + " "
}

// Click switches tabs, presses the navigation buttons or opens a bookmark.
func (b *Browser) Click(x, y int, _ registry.ViewContext) tea.Cmd {
	switch y {
	case 0:
		for i, s := range b.tabSpans() {
			if x >= s[0] && x < s[1] {
				b.SelectTab(i)
				return nil
			}
		}
		if x >= b.plusColumn() && x < b.plusColumn()+3 {
			b.NewTab()
		}
	case 1:
		switch {
		case x < 3:
			b.Back()
		case x < 6:
			b.Forward()
		case x < 9:
			b.Reload()
		}
	default:
		if b.current().url() != "" {
			return nil
		}
		// bookmarks start on the fifth row of the new tab page
		i := y - 5
		if i >= 0 && i < len(b.bookmarks) {
			b.Navigate(b.bookmarks[i].URL)
		}
	}
	return nil
}

func (b *Browser) plusColumn() int {
	spans := b.tabSpans()
	return spans[len(spans)-1][1] + 1
}

func (b *Browser) View(ctx registry.ViewContext) (string, error) {
	w := max(ctx.Width, 20)
	active := lipgloss.NewStyle().Background(theme.Highlight()).Foreground(theme.WindowBg()).Bold(true)
	inactive := lipgloss.NewStyle().Foreground(theme.Muted())

	var strip []string
	for i, t := range b.tabs {
		style := inactive
		if i == b.active {
			style = active
		}
		strip = append(strip, style.Render(tabLabel(t)))
	}
	tabsLine := strings.Join(strip, " ") + " " + inactive.Render(" + ")

	b.address.SetWidth(max(w-13, 4))
	in := b.address
	if !ctx.Focused {
		in.Blur()
	}
	addr := in.View()
	bar := lipgloss.NewStyle().Foreground(theme.Accent()).Render(" ← ") +
		lipgloss.NewStyle().Foreground(theme.Accent()).Render(" → ") +
		lipgloss.NewStyle().Foreground(theme.Accent()).Render(" ⟳ ") +
		" " + addr

	lines := []string{
		ansi.Truncate(tabsLine, w, ""),
		ansi.Truncate(bar, w, ""),
		muted(strings.Repeat("─", w)),
	}
	lines = append(lines, b.page(w)...)
	return strings.Join(lines, "\n"), nil
}

func (b *Browser) page(w int) []string {
	u := b.current().url()
	if u == "" {
		lines := []string{"", heading("Bookmarks")}
		for _, bm := range b.bookmarks {
			lines = append(lines, ansi.Truncate(fmt.Sprintf("  ★ %-12s %s", bm.Label, muted(bm.URL)), w, "…"))
		}
		lines = append(lines, "", muted("Type a URL or search and press enter."))
		return lines
	}

	parsed, _ := url.Parse(u)
	host := u
	if parsed != nil && parsed.Hostname() != "" {
		host = parsed.Hostname()
	}

	if strings.HasPrefix(u, SearchURL) {
		q, _ := url.QueryUnescape(strings.TrimPrefix(u, SearchURL))
		return []string{
			"",
			heading("Search"),
			wrap(fmt.Sprintf("Results for %q open in your own browser:", q), w),
			muted(ansi.Truncate(u, w, "…")),
		}
	}

	if FrameBlocked(u) {
		return []string{
			"",
			lipgloss.NewStyle().Foreground(theme.Danger()).Bold(true).Render(":( " + host + " refused to connect."),
			"",
			wrap("This site does not allow being shown inside another page. Open it directly:", w),
			muted(ansi.Truncate(u, w, "…")),
		}
	}

	return []string{
		"",
		heading(host),
		muted(ansi.Truncate(u, w, "…")),
		"",
		wrap("Pages are summarised here rather than fetched. Open the link in your own browser for the full site.", w),
	}
}
