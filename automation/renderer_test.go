package automation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziraweb/models"
)

func renderTemplate(subject, content string) *models.EmailTemplate {
	return &models.EmailTemplate{Name: "tpl", Subject: subject, Content: content, IsActive: true}
}

func TestRenderSubstitution(t *testing.T) {
	tpl := renderTemplate("Thanks {{name}}", "<div><p>Hi {{name}}, interest: {{ service_interest }}</p></div>")
	sub := NewSubmission("contact", map[string]string{
		"name":    "Jane",
		"service": "SMS Gateway",
	})

	out := Render(tpl, sub, false)
	assert.Equal(t, "Thanks Jane", out.Subject)
	assert.Contains(t, out.HTML, "Hi Jane")
	// The alias pair resolves through either key, whitespace in the
	// placeholder notwithstanding.
	assert.Contains(t, out.HTML, "interest: SMS Gateway")
}

func TestRenderEscapesUserValues(t *testing.T) {
	tpl := renderTemplate("{{name}}", "<div>{{name}} says {{message}}</div>")
	sub := NewSubmission("contact", map[string]string{
		"name":    "A&B",
		"message": `<script>alert("x")</script>`,
	})

	out := Render(tpl, sub, false)
	assert.Equal(t, "A&amp;B", out.Subject)
	assert.Contains(t, out.HTML, "A&amp;B")
	assert.NotContains(t, out.HTML, "<script>")
	assert.Contains(t, out.HTML, "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;")

	// The plain-text alternative round-trips back to the raw value.
	assert.Contains(t, out.Text, "A&B")
}

func TestRenderUnknownPlaceholderIsEmpty(t *testing.T) {
	tpl := renderTemplate("Hi {{nope}}", "<div>[{{nope}}]</div>")
	out := Render(tpl, NewSubmission("contact", nil), false)
	assert.Equal(t, "Hi ", out.Subject)
	assert.Contains(t, out.HTML, "[]")
	assert.NotContains(t, out.HTML, "{{")
}

func TestRenderAllFieldsToken(t *testing.T) {
	tpl := renderTemplate("New submission", "<div><h1>Submission</h1>{{all_fields}}</div>")
	sub := NewSubmission("contact", map[string]string{
		"name":      "Jane",
		"email":     "jane@x.com",
		"form_type": "contact",
	})

	out := Render(tpl, sub, true)
	assert.Contains(t, out.HTML, "<table")
	assert.Contains(t, out.HTML, "Jane")
	assert.Contains(t, out.HTML, "jane@x.com")
	// Metadata keys stay out of the dump.
	assert.NotContains(t, out.HTML, "Form Type")

	// The same token renders empty for submitter-facing templates.
	out = Render(tpl, sub, false)
	assert.NotContains(t, out.HTML, "<table")
}

func TestRenderAutoAppendsFieldDump(t *testing.T) {
	tpl := renderTemplate("New submission", `<div class="outer"><p>You got mail.</p></div>`)
	sub := NewSubmission("contact", map[string]string{"name": "Jane"})

	out := Render(tpl, sub, true)
	// Without an explicit token the dump lands inside the outer container.
	assert.True(t, strings.HasSuffix(out.HTML, "</tbody></table></div>"), "got %q", out.HTML)

	// Templates that do carry the token are left alone.
	withToken := renderTemplate("New submission", "<div>{{all_fields}}<p>tail</p></div>")
	out = Render(withToken, sub, true)
	assert.Equal(t, 1, strings.Count(out.HTML, "<table"))
	assert.True(t, strings.HasSuffix(out.HTML, "<p>tail</p></div>"))
}

func TestFieldDumpTableOrderingAndLabels(t *testing.T) {
	sub := NewSubmission("contact", map[string]string{
		"email":        "jane@x.com",
		"name":         "Jane",
		"zz_extra":     "extra value",
		"another_one":  "second extra",
		"empty_field":  "",
	})

	table := fieldDumpTable(sub)
	// Known fields come first in their fixed order, unknowns alphabetically.
	nameIdx := strings.Index(table, "Jane")
	emailIdx := strings.Index(table, "jane@x.com")
	anotherIdx := strings.Index(table, "second extra")
	extraIdx := strings.Index(table, "extra value")
	require.True(t, nameIdx >= 0 && emailIdx >= 0 && anotherIdx >= 0 && extraIdx >= 0)
	assert.Less(t, nameIdx, emailIdx)
	assert.Less(t, emailIdx, anotherIdx)
	assert.Less(t, anotherIdx, extraIdx)

	// Unknown keys get generated labels; empty fields are dropped.
	assert.Contains(t, table, "Zz Extra")
	assert.Contains(t, table, "Another One")
	assert.NotContains(t, table, "Empty Field")
}

func TestFieldDumpCVLink(t *testing.T) {
	sub := NewSubmission("career", map[string]string{
		"name":        "Jane",
		"cv_file_url": "https://files.example/cv.pdf",
	})

	table := fieldDumpTable(sub)
	assert.Contains(t, table, `<a href="https://files.example/cv.pdf" target="_blank">View CV/Resume</a>`)
}

func TestFieldDumpLongMessageBlockquote(t *testing.T) {
	long := strings.Repeat("very long message ", 10)
	sub := NewSubmission("contact", map[string]string{"message": long, "name": "Jane"})

	table := fieldDumpTable(sub)
	assert.Contains(t, table, "<blockquote")

	short := NewSubmission("contact", map[string]string{"message": "short note", "name": "Jane"})
	assert.NotContains(t, fieldDumpTable(short), "<blockquote")
}

func TestFieldDumpEmptySubmission(t *testing.T) {
	assert.Equal(t, "", fieldDumpTable(NewSubmission("contact", nil)))
}

func TestHTMLToText(t *testing.T) {
	html := `<div><h1>Hello</h1><p>Line one<br>Line two</p><p>A &amp; B</p></div>`
	text := htmlToText(html)
	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "Line one\nLine two")
	assert.Contains(t, text, "A & B")
	assert.NotContains(t, text, "<")
}
