package search

import "github.com/blevesearch/vellum"

// substring is a deterministic automaton accepting every byte string that
// contains pattern. States 0..m-1 track the longest prefix of pattern seen
// at the end of the input; state m is absorbing and accepting.
type substring struct {
	delta [][256]int
	m     int
	fold  bool
}

// newSubstring builds the Knuth-Morris-Pratt transition table for pattern.
// With fold set, ASCII letters compare case-insensitively.
func newSubstring(pattern string, fold bool) *substring {
	p := []byte(pattern)
	if fold {
		p = foldBytes(p)
	}
	m := len(p)
	a := &substring{delta: make([][256]int, m), m: m, fold: fold}
	if m == 0 {
		return a
	}

	a.delta[0][p[0]] = 1
	for x, j := 0, 1; j < m; j++ {
		a.delta[j] = a.delta[x]
		a.delta[j][p[j]] = j + 1
		x = a.delta[x][p[j]]
	}
	return a
}

func (a *substring) Start() int { return 0 }

func (a *substring) IsMatch(s int) bool { return s == a.m }

// CanMatch is always true: any state can still reach the accepting one.
func (a *substring) CanMatch(int) bool { return true }

func (a *substring) WillAlwaysMatch(s int) bool { return s == a.m }

func (a *substring) Accept(s int, b byte) int {
	if s == a.m {
		return s
	}
	if a.fold {
		b = foldByte(b)
	}
	return a.delta[s][b]
}

// Contains runs the automaton over s.
func (a *substring) Contains(s string) bool {
	state := a.Start()
	for i := 0; i < len(s) && state != a.m; i++ {
		state = a.Accept(state, s[i])
	}
	return a.IsMatch(state)
}

func foldByte(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func foldBytes(p []byte) []byte {
	out := make([]byte, len(p))
	for i, b := range p {
		out[i] = foldByte(b)
	}
	return out
}

var _ vellum.Automaton = (*substring)(nil)
