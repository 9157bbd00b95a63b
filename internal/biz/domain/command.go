package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// AdminCommandKind enumerates every admin command the relay recognizes.
type AdminCommandKind int

const (
	// AdminCmdNone means the text is not a recognized command.
	AdminCmdNone AdminCommandKind = iota

	// Parametrized forms, e.g. "/block 12345".
	AdminCmdCheckBlockID
	AdminCmdBlockID
	AdminCmdUnblockID

	// Zero-argument forms, meaningful only when replying to a
	// forwarded message.
	AdminCmdCheckBlock
	AdminCmdBlock
	AdminCmdUnblock
)

// AdminCommand is the parsed form of an admin message. Arg is set only
// for the parametrized kinds and holds the trimmed argument text,
// unvalidated.
type AdminCommand struct {
	Kind AdminCommandKind
	Arg  string
}

// ParseAdminCommand classifies an admin message text in a single pass.
// Anything it does not recognize comes back as AdminCmdNone, which the
// router treats as a reply to a guest.
func ParseAdminCommand(text string) AdminCommand {
	switch text {
	case "/checkblock":
		return AdminCommand{Kind: AdminCmdCheckBlock}
	case "/block":
		return AdminCommand{Kind: AdminCmdBlock}
	case "/unblock":
		return AdminCommand{Kind: AdminCmdUnblock}
	}

	for _, c := range []struct {
		name string
		kind AdminCommandKind
	}{
		{"/checkblock", AdminCmdCheckBlockID},
		{"/block", AdminCmdBlockID},
		{"/unblock", AdminCmdUnblockID},
	} {
		if arg, ok := argAfter(text, c.name); ok {
			return AdminCommand{Kind: c.kind, Arg: arg}
		}
	}

	return AdminCommand{Kind: AdminCmdNone}
}

// argAfter extracts the whitespace-separated argument following a
// command name. Any whitespace separates, newlines included. A command
// with trailing whitespace but no argument does not count as a
// parametrized command.
func argAfter(text, name string) (string, bool) {
	rest := strings.TrimPrefix(text, name)
	if rest == text || rest == "" {
		return "", false
	}
	if r, _ := utf8.DecodeRuneInString(rest); !unicode.IsSpace(r) {
		return "", false
	}
	arg := strings.TrimSpace(rest)
	if arg == "" {
		return "", false
	}
	return arg, true
}

// IsValidUserID reports whether s is a plain decimal user id.
func IsValidUserID(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
