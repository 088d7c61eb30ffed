package telegram

import (
	"strings"
	"unicode"
)

// ParsedCommand текст "/cmd@bot arg1 arg2"
type ParsedCommand struct {
	Name    string
	Mention string // имя бота после @, без @
	Args    []string
}

// ParseCommand разбирает командное сообщение; ok=false, если это не команда
func ParseCommand(text string) (ParsedCommand, bool) {
	if !IsCommand(text) {
		return ParsedCommand{}, false
	}

	head, rest, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	if i := strings.IndexFunc(head, unicode.IsSpace); i != -1 {
		rest = head[i:] + " " + rest
		head = head[:i]
	}

	name, mention, _ := strings.Cut(head, "@")
	if name == "" {
		return ParsedCommand{}, false
	}

	return ParsedCommand{
		Name:    strings.ToLower(name),
		Mention: mention,
		Args:    Tokenize(rest),
	}, true
}

func IsCommand(text string) bool {
	return len(text) > 1 && text[0] == '/'
}

// Tokenize делит строку по пробелам, значения в "..." или '...' остаются целыми.
// Двойные кавычки группируют и внутри слова (drug:"Morning glory"), апостроф только в начале токена
func Tokenize(s string) []string {
	var (
		tokens  []string
		current strings.Builder
		quote   rune
		inToken bool
	)

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote || (quote == '“' && r == '”') {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '“' || (r == '\'' && !inToken):
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens
}
