package core

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/classboard/classboard/internal/http/uiutil"
)

// Deps holds optional dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
}

// Funcs returns a template.FuncMap containing helpers that are broadly useful across templates.
func Funcs(deps Deps) template.FuncMap {
	funcs := template.FuncMap{
		"sectionTmpl":  deps.ContentTemplateFor,
		"friendlyTime": createFriendlyTimeFunc(),
		"timeTag":      createTimeTagFunc(),
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"contains":     strings.Contains,
		"statusClass":  statusClass,
		"roleClass":    roleClass,
		"titleCase":    titleCase,
		"formatNumber": formatNumber,
		"truncateText": uiutil.TruncateWithEllipsis,
		"pageSeq":      pageSeq,
	}

	addRenderFuncs(funcs, deps)
	return funcs
}

func addRenderFuncs(funcs template.FuncMap, deps Deps) {
	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - The HTML here is rendered by our own trusted templates (html/template),
		// and is embedded back into the same template set. User-provided values were already
		// auto-escaped during ExecuteTemplate above.
		return template.HTML(buf.String()), nil
	}
}

func createFriendlyTimeFunc() func(any) string {
	return func(ts any) string {
		t0, ok := coerceTime(ts)
		if !ok || t0.IsZero() {
			return ""
		}
		return uiutil.FormatFriendlyDateTime(t0)
	}
}

func createTimeTagFunc() func(any) template.HTML {
	return func(ts any) template.HTML {
		t0, ok := coerceTime(ts)
		if !ok || t0.IsZero() {
			return ""
		}
		friendly := t0.Local().Format("Jan 2, 2006 3:04 PM")
		dt := t0.UTC().Format(time.RFC3339)
		title := t0.Local().Format(time.RFC1123)
		// #nosec G203 - The HTML here is constructed from trusted, escaped values only
		return template.HTML(
			fmt.Sprintf(
				"<time datetime=\"%s\" title=\"%s\">%s</time>",
				dt,
				template.HTMLEscapeString(title),
				template.HTMLEscapeString(friendly),
			),
		)
	}
}

func coerceTime(ts any) (time.Time, bool) {
	switch v := ts.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v != nil {
			return *v, true
		}
	}
	return time.Time{}, false
}

// statusClass maps an assignment status to its badge class.
func statusClass(status string) string {
	switch strings.ToLower(status) {
	case "open":
		return "badge-success"
	case "closed":
		return "badge-secondary"
	default:
		return "badge-light"
	}
}

// roleClass maps a user role to its badge class.
func roleClass(role string) string {
	switch strings.ToLower(role) {
	case "admin":
		return "badge-danger"
	case "teacher":
		return "badge-info"
	case "student":
		return "badge-secondary"
	default:
		return "badge-light"
	}
}

// titleCase upper-cases the first rune, for displaying enum values like roles
// and statuses.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// formatNumber renders an integer with thousands separators.
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// pageSeq returns the sequence 1..totalPages for pager links, capped to keep
// pathological page counts from blowing up the template.
func pageSeq(totalPages int) []int {
	const maxLinks = 50
	if totalPages < 1 {
		return nil
	}
	if totalPages > maxLinks {
		totalPages = maxLinks
	}
	seq := make([]int, totalPages)
	for i := range seq {
		seq[i] = i + 1
	}
	return seq
}
