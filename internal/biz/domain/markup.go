package domain

import "strings"

// markdownV2Replacer escapes every character the Telegram MarkdownV2
// parse mode reserves. The backslash pair must come first so an escape
// it emits is not rewritten again.
var markdownV2Replacer = strings.NewReplacer(
	"\\", "\\\\",
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMarkdownV2 backslash-escapes text for safe inclusion in a
// MarkdownV2 message.
func EscapeMarkdownV2(text string) string {
	return markdownV2Replacer.Replace(text)
}
