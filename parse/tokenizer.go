package parse

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	charBackslash   = '\\'
	charSingleQuote = '\''
	charDoubleQuote = '"'
)

// Tokenizer turns a raw input line into positioned tokens. Implementations
// are pure - the same input always yields the same token list - and must
// record exact offsets into the raw string for error reporting.
//
// When lenient is true, recoverable input problems (such as an unterminated
// quoted string) are tolerated on a best-effort basis instead of failing.
// Leniency is used when probing partially typed input for completions.
type Tokenizer interface {
	Tokenize(raw string, lenient bool) ([]Token, error)
}

// RawTokenizer returns a Tokenizer which produces a single token spanning
// the entire input.
func RawTokenizer() Tokenizer {
	return rawTokenizer{}
}

type rawTokenizer struct{}

func (rawTokenizer) Tokenize(raw string, _ bool) ([]Token, error) {
	return []Token{NewToken(raw, 0, len(raw))}, nil
}

// SpaceSplitTokenizer returns a Tokenizer which splits input on literal
// spaces, collapsing consecutive spaces. All-whitespace input yields an
// empty token list.
func SpaceSplitTokenizer() Tokenizer {
	return spaceSplitTokenizer{}
}

type spaceSplitTokenizer struct{}

func (spaceSplitTokenizer) Tokenize(raw string, _ bool) ([]Token, error) {
	var tokens []Token
	start := -1
	for i, r := range raw {
		if r == ' ' {
			if start >= 0 {
				tokens = append(tokens, NewToken(raw[start:i], start, i))
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, NewToken(raw[start:], start, len(raw)))
	}

	return tokens, nil
}

// QuotedStringTokenizer splits input into words, honouring single and
// double quotes and backslash escapes. A backslash always consumes the
// following code point literally - there are no named escapes.
//
// When TrimTrailingSpace is false, input ending in whitespace produces a
// trailing empty token so completion logic can tell "the user finished a
// word" apart from "the user is still typing one".
type QuotedStringTokenizer struct {
	TrimTrailingSpace bool
	// ForceLenient tolerates malformed input regardless of the lenient
	// argument passed to Tokenize.
	ForceLenient bool
}

// QuotedTokenizer returns the default quoted-string Tokenizer with
// trailing whitespace trimming enabled.
func QuotedTokenizer() Tokenizer {
	return QuotedStringTokenizer{TrimTrailingSpace: true}
}

func (q QuotedStringTokenizer) Tokenize(raw string, lenient bool) ([]Token, error) {
	if raw == "" {
		return nil, nil
	}

	s := &tokenScanner{src: raw, lenient: lenient || q.ForceLenient}
	tokens := make([]Token, 0, len(raw)/4)
	if q.TrimTrailingSpace {
		s.skipWhitespace()
	}
	for s.hasMore() {
		if !q.TrimTrailingSpace {
			s.skipWhitespace()
		}
		start := s.pos
		value, err := s.nextArg()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, NewToken(value, start, s.pos))
		if q.TrimTrailingSpace {
			s.skipWhitespace()
		}
	}

	return tokens, nil
}

// tokenScanner tracks a position over the raw input while the
// quoted-string grammar is applied.
type tokenScanner struct {
	src     string
	pos     int
	lenient bool
}

func (s *tokenScanner) hasMore() bool {
	return s.pos < len(s.src)
}

func (s *tokenScanner) peek() rune {
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return r
}

func (s *tokenScanner) next() rune {
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])
	s.pos += size
	return r
}

func (s *tokenScanner) skipWhitespace() {
	for s.hasMore() && unicode.IsSpace(s.peek()) {
		s.next()
	}
}

func (s *tokenScanner) nextArg() (string, error) {
	var sb strings.Builder
	if s.hasMore() {
		switch r := s.peek(); r {
		case charSingleQuote, charDoubleQuote:
			if err := s.parseQuoted(r, &sb); err != nil {
				return "", err
			}
		default:
			s.parseUnquoted(&sb)
		}
	}

	return sb.String(), nil
}

func (s *tokenScanner) parseQuoted(quote rune, sb *strings.Builder) error {
	start := s.pos
	s.next() // opening quote
	for {
		if !s.hasMore() {
			if s.lenient {
				return nil
			}
			return NewError(s.src, start, "unterminated quoted string").Wrap(ErrUnterminatedQuote)
		}
		switch r := s.peek(); r {
		case quote:
			s.next()
			return nil
		case charBackslash:
			s.parseEscape(sb)
		default:
			sb.WriteRune(s.next())
		}
	}
}

func (s *tokenScanner) parseUnquoted(sb *strings.Builder) {
	for s.hasMore() {
		switch r := s.peek(); {
		case unicode.IsSpace(r):
			return
		case r == charBackslash:
			s.parseEscape(sb)
		default:
			sb.WriteRune(s.next())
		}
	}
}

// parseEscape consumes a backslash and appends the following code point
// verbatim. A trailing lone backslash is kept as-is.
func (s *tokenScanner) parseEscape(sb *strings.Builder) {
	s.next()
	if s.hasMore() {
		sb.WriteRune(s.next())
	} else {
		sb.WriteRune(charBackslash)
	}
}
