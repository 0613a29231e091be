package inbox

// CursorStack records the continuation tokens of pages already visited.
// Page 0 is always the first page (no token); page i > 0 is fetched with
// tokens[i-1].
type CursorStack struct {
	tokens []string
	index  int
}

// Index returns the current page index.
func (s *CursorStack) Index() int {
	return s.index
}

// Len returns the number of known tokens.
func (s *CursorStack) Len() int {
	return len(s.tokens)
}

// Current returns the token for the current page, nil on page 0.
func (s *CursorStack) Current() *string {
	return s.tokenAt(s.index)
}

// AtTop reports whether the current page is the last known page.
func (s *CursorStack) AtTop() bool {
	return s.index == len(s.tokens)
}

// Advance moves to the next page. The next token is appended only when
// the current page is the last known one; a page already visited keeps
// the token recorded the first time. It returns the token to fetch.
func (s *CursorStack) Advance(next string) *string {
	if s.AtTop() {
		s.tokens = append(s.tokens, next)
	}
	s.index++
	return s.Current()
}

// Retreat moves back one page and returns its token. It reports false,
// and changes nothing, on page 0.
func (s *CursorStack) Retreat() (*string, bool) {
	if s.index == 0 {
		return nil, false
	}
	s.index--
	return s.Current(), true
}

// Reset forgets every token and returns to page 0.
func (s *CursorStack) Reset() {
	s.tokens = nil
	s.index = 0
}

// moveTo sets the index directly; i must be within [0, Len()].
func (s *CursorStack) moveTo(i int) {
	if i < 0 || i > len(s.tokens) {
		return
	}
	s.index = i
}

func (s *CursorStack) tokenAt(i int) *string {
	if i <= 0 || i > len(s.tokens) {
		return nil
	}
	tok := s.tokens[i-1]
	return &tok
}
