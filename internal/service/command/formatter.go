package command

import (
	"fmt"
	"strings"
)

// ResponseFormatter renders command replies as Markdown. Transports convert it
// to their own markup.
type ResponseFormatter struct{}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

func (f *ResponseFormatter) Info(title string) string {
	return fmt.Sprintf("📄 **%s**\n\n", title)
}

func (f *ResponseFormatter) Success(message string) string {
	return fmt.Sprintf("✅ **%s**\n", message)
}

func (f *ResponseFormatter) Error(command string, err error) string {
	return fmt.Sprintf("❌ **/%s failed**\n\n%s\n", command, err.Error())
}

func (f *ResponseFormatter) Label(label, value string) string {
	return fmt.Sprintf("**%s**  ›  `%s`\n", label, value)
}

// Source renders one retrieved passage as a numbered quote.
func (f *ResponseFormatter) Source(n int, label string, score float32, text string) string {
	if label == "" {
		label = "document"
	}
	return fmt.Sprintf("**%d. %s** (score %.3f)\n> %s\n\n", n, label, score, text)
}

func (f *ResponseFormatter) Usage(usage string, examples ...string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Usage**:\n```\n%s\n```\n", usage)
	if len(examples) > 0 {
		sb.WriteString("**Examples**:\n")
		for _, ex := range examples {
			fmt.Fprintf(&sb, "`%s`\n", ex)
		}
	}
	return sb.String()
}

func (f *ResponseFormatter) List(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "› %s\n", item)
	}
	return sb.String()
}

func (f *ResponseFormatter) Tip(text string) string {
	return fmt.Sprintf("**Tip**: %s\n", text)
}

func (f *ResponseFormatter) Combine(sections ...string) string {
	return strings.Join(sections, "\n")
}
