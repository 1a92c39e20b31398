package parse

// Token is a single argument produced by a Tokenizer. Start and End index
// into the original raw input so errors can point at the exact position a
// value came from. Tokens are immutable once produced.
type Token struct {
	Value string
	Start int
	End   int
}

// NewToken creates a Token spanning raw[start:end].
func NewToken(value string, start, end int) Token {
	return Token{Value: value, Start: start, End: end}
}
