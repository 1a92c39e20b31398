package parse

// Cursor provides sequential, backtrackable access to the tokens produced
// by a Tokenizer. The index starts "before first" (-1) and always lies in
// [-1, len-1]. Cursors are created fresh per parse invocation and are not
// safe for concurrent use.
type Cursor struct {
	raw    string
	tokens []Token
	index  int
}

// Snapshot is an immutable capture of a Cursor's index and token list.
// Applying a snapshot restores the index exactly; the token list is only
// restored on request so side-effecting token removal can survive a
// backtrack.
type Snapshot struct {
	index  int
	tokens []Token
}

// Index returns the cursor index captured by the snapshot.
func (s Snapshot) Index() int {
	return s.index
}

// NewCursor creates a Cursor over tokens parsed from raw.
func NewCursor(raw string, tokens []Token) *Cursor {
	return &Cursor{raw: raw, tokens: tokens, index: -1}
}

// Raw returns the original input string the tokens were produced from.
func (c *Cursor) Raw() string {
	return c.raw
}

// HasNext reports whether at least one unconsumed token remains.
func (c *Cursor) HasNext() bool {
	return c.index+1 < len(c.tokens)
}

// Next returns the next token value and advances the cursor. Fails with an
// ErrExhausted-wrapped positioned error when no token remains.
func (c *Cursor) Next() (string, error) {
	if !c.HasNext() {
		return "", c.NewError("not enough arguments").Wrap(ErrExhausted)
	}
	c.index++

	return c.tokens[c.index].Value, nil
}

// NextIfPresent returns the next token value and advances, or reports
// false without advancing when the cursor is exhausted.
func (c *Cursor) NextIfPresent() (string, bool) {
	if !c.HasNext() {
		return "", false
	}
	c.index++

	return c.tokens[c.index].Value, true
}

// Peek returns the next token value without advancing. Fails with an
// ErrExhausted-wrapped positioned error when no token remains.
func (c *Cursor) Peek() (string, error) {
	if !c.HasNext() {
		return "", c.NewError("not enough arguments").Wrap(ErrExhausted)
	}

	return c.tokens[c.index+1].Value, nil
}

// Offset returns the raw-string offset of the next unconsumed token, or
// the end of the raw string when the cursor is exhausted. Used to position
// parse errors.
func (c *Cursor) Offset() int {
	if c.HasNext() {
		return c.tokens[c.index+1].Start
	}

	return len(c.raw)
}

// NewError creates a parse error positioned at the cursor's current offset.
func (c *Cursor) NewError(message string) *Error {
	return NewError(c.raw, c.Offset(), message)
}

// NewErrorf creates a formatted parse error positioned at the cursor's
// current offset.
func (c *Cursor) NewErrorf(format string, args ...interface{}) *Error {
	return NewErrorf(c.raw, c.Offset(), format, args...)
}

// Snapshot captures the current index and token list for later restoration.
func (c *Cursor) Snapshot() Snapshot {
	tokens := make([]Token, len(c.tokens))
	copy(tokens, c.tokens)

	return Snapshot{index: c.index, tokens: tokens}
}

// Apply restores the index recorded in the snapshot. When restoreTokens is
// true the token list is restored as well; otherwise mutations made since
// the snapshot (such as flag removal) are kept.
func (c *Cursor) Apply(s Snapshot, restoreTokens bool) {
	c.index = s.index
	if restoreTokens {
		tokens := make([]Token, len(s.tokens))
		copy(tokens, s.tokens)
		c.tokens = tokens
	}
}

// Insert splices a synthetic zero-width token immediately after the
// current position. Used when a flag's value is embedded in the flag token
// itself, e.g. --flag=value.
func (c *Cursor) Insert(value string) {
	offset := 0
	if c.index >= 0 {
		offset = c.tokens[c.index].End
	}
	inserted := NewToken(value, offset, offset)
	tokens := make([]Token, 0, len(c.tokens)+1)
	tokens = append(tokens, c.tokens[:c.index+1]...)
	tokens = append(tokens, inserted)
	tokens = append(tokens, c.tokens[c.index+1:]...)
	c.tokens = tokens
}

// RemoveRange deletes the tokens consumed between two snapshots: every
// token with an index in [from.Index(), to.Index()] is removed. The cursor
// index keeps tracking the same logical token - it shifts left by the
// number of removed tokens when it sat at or past the removed range, and
// pins to just before the range when it pointed inside it.
func (c *Cursor) RemoveRange(from, to Snapshot) {
	startIdx, endIdx := from.index, to.index
	if startIdx < 0 || endIdx < startIdx {
		return
	}
	if c.index >= startIdx {
		if c.index <= endIdx {
			c.index = startIdx - 1
		} else {
			c.index -= endIdx - startIdx + 1
		}
	}
	c.tokens = append(c.tokens[:startIdx], c.tokens[endIdx+1:]...)
}

// Tokens returns a copy of the current token list.
func (c *Cursor) Tokens() []Token {
	tokens := make([]Token, len(c.tokens))
	copy(tokens, c.tokens)

	return tokens
}

// Len returns the number of tokens currently held by the cursor.
func (c *Cursor) Len() int {
	return len(c.tokens)
}

// Index returns the index of the last consumed token, or -1 when nothing
// has been consumed yet.
func (c *Cursor) Index() int {
	return c.index
}
