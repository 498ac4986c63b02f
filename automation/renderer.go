package automation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"ziraweb/models"
)

// Rendered is the output of template rendering: a substituted subject, the
// HTML body, and a best-effort plain-text alternative.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

const allFieldsToken = "all_fields"

// longMessageThreshold is the message length above which the field dump
// switches from an inline cell to a blockquote.
const longMessageThreshold = 100

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// htmlEscaper covers the characters that allow markup or attribute
// injection from user-supplied form text.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Render substitutes the submission's fields into the template. Unknown
// placeholders become empty strings; values are HTML-escaped. For
// admin-recipient templates the {{all_fields}} token expands to a field
// dump table, and the table is auto-appended before the last closing div
// when the template author left the token out.
func Render(tpl *models.EmailTemplate, sub Submission, forAdmin bool) Rendered {
	subject := substitute(tpl.Subject, sub, nil)

	var table string
	if forAdmin {
		table = fieldDumpTable(sub)
	}

	html := substitute(tpl.Content, sub, func() string { return table })

	if forAdmin && !placeholderPresent(tpl.Content, allFieldsToken) {
		html = insertBeforeLastDiv(html, table)
	}

	return Rendered{
		Subject: subject,
		HTML:    html,
		Text:    htmlToText(html),
	}
}

// substitute replaces every {{name}} occurrence. allFields supplies the
// expansion for {{all_fields}} (nil means empty, as in subjects and
// submitter-facing bodies).
func substitute(s string, sub Submission, allFields func() string) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		if name == allFieldsToken {
			if allFields == nil {
				return ""
			}
			return allFields()
		}
		return htmlEscaper.Replace(sub.Field(name))
	})
}

func placeholderPresent(content, name string) bool {
	for _, m := range placeholderRe.FindAllStringSubmatch(content, -1) {
		if m[1] == name {
			return true
		}
	}
	return false
}

// insertBeforeLastDiv places the table before the final </div> so it sits
// inside the template's outer container; templates without one get the
// table appended.
func insertBeforeLastDiv(html, table string) string {
	idx := strings.LastIndex(html, "</div>")
	if idx < 0 {
		return html + table
	}
	return html[:idx] + table + html[idx:]
}

// Human-readable labels for well-known submission fields. Unknown keys fall
// back to a snake_case to Title Case conversion.
var fieldLabels = map[string]string{
	"name":             "Name",
	"email":            "Email",
	"phone":            "Phone",
	"company":          "Company",
	"message":          "Message",
	"position":         "Position",
	"cv_file_url":      "CV/Resume",
	"service_interest": "Service Interest",
	"service":          "Service",
	"budget":           "Budget",
	"timeline":         "Timeline",
	"location":         "Location",
	"property_count":   "Number of Properties",
	"preferred_date":   "Preferred Date",
	"how_heard":        "How They Heard About Us",
}

// fieldOrder fixes the position of known fields in the dump table; unknown
// fields follow alphabetically.
var fieldOrder = []string{
	"name", "email", "phone", "company", "position", "service_interest",
	"service", "budget", "timeline", "location", "property_count",
	"preferred_date", "how_heard", "cv_file_url", "message",
}

// Metadata keys never shown in the dump table.
var dumpExcluded = map[string]bool{
	"form_type":     true,
	"formType":      true,
	allFieldsToken:  true,
}

// fieldDumpTable renders every non-empty, non-metadata field as a label and
// value row so admin recipients always see the full submission.
func fieldDumpTable(sub Submission) string {
	keys := make([]string, 0, len(sub.Fields))
	seen := make(map[string]bool, len(sub.Fields))
	for _, key := range fieldOrder {
		if sub.Fields[key] != "" && !dumpExcluded[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	var rest []string
	for key, value := range sub.Fields {
		if value == "" || seen[key] || dumpExcluded[key] {
			continue
		}
		rest = append(rest, key)
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	if len(keys) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<table style="width:100%;border-collapse:collapse;margin-top:16px;">`)
	b.WriteString(`<tbody>`)
	for _, key := range keys {
		value := sub.Fields[key]
		label := fieldLabels[key]
		if label == "" {
			label = titleCase(key)
		}

		switch {
		case key == "cv_file_url":
			b.WriteString(fmtRow(label,
				fmt.Sprintf(`<a href="%s" target="_blank">View CV/Resume</a>`, htmlEscaper.Replace(value))))
		case key == "message" && len(value) > longMessageThreshold:
			b.WriteString(fmt.Sprintf(
				`<tr><td colspan="2" style="padding:8px;border-bottom:1px solid #eee;"><strong>%s</strong>`+
					`<blockquote style="margin:8px 0 0;padding:8px 12px;background:#f8f9fa;border-left:3px solid #ccc;">%s</blockquote></td></tr>`,
				label, htmlEscaper.Replace(value)))
		default:
			b.WriteString(fmtRow(label, htmlEscaper.Replace(value)))
		}
	}
	b.WriteString(`</tbody></table>`)
	return b.String()
}

func fmtRow(label, valueHTML string) string {
	return fmt.Sprintf(
		`<tr><td style="padding:8px;border-bottom:1px solid #eee;font-weight:bold;width:35%%;">%s</td>`+
			`<td style="padding:8px;border-bottom:1px solid #eee;">%s</td></tr>`,
		label, valueHTML)
}

// titleCase converts a snake_case field key to a display label.
func titleCase(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

var (
	brRe          = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockEndRe    = regexp.MustCompile(`(?i)</(p|div|h[1-6])>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	spaceRunRe    = regexp.MustCompile(`[ \t]+`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
	textUnescaper = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
)

// htmlToText derives a plain-text alternative from rendered HTML. This is a
// best-effort transform over the tag patterns our templates use, not a full
// HTML parser.
func htmlToText(html string) string {
	text := brRe.ReplaceAllString(html, "\n")
	text = blockEndRe.ReplaceAllString(text, "\n\n")
	text = tagRe.ReplaceAllString(text, "")
	text = textUnescaper.Replace(text)
	text = spaceRunRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	text = strings.Join(lines, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
