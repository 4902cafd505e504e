// Package parser reads flashcards out of markdown sources and cloze markers out of cell content.
package parser

import (
	"bufio"
	"io"
	"io/fs"
	"strings"

	"github.com/conorfennell/knoldeck/internal/domain"
)

const separator = "---"

// MaxLineSize is the longest markdown line Parse accepts.
const MaxLineSize = 1 << 20

type field int

const (
	none field = iota
	question
	answer
	context
)

var prefixes = []struct {
	prefix string
	field  field
}{
	{"Q:", question},
	{"A:", answer},
	{"C:", context},
}

// ParseFile reads the named markdown file from fsys and extracts all cards.
func ParseFile(fsys fs.FS, name string) ([]domain.Card, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse extracts cards from Q:/A:/C: blocks. A card is emitted once it has a question;
// a new Q:, a "---" line or the end of input closes the current card.
func Parse(r io.Reader) ([]domain.Card, error) {
	p := &cardBuilder{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	for scanner.Scan() {
		line := scanner.Text()

		if line == separator {
			p.finish()
			continue
		}

		f, rest := splitPrefix(line)
		switch {
		case f == question:
			p.finish()
			p.start(question, rest)
		case f != none:
			p.flush()
			p.start(f, rest)
		case p.current != none:
			p.block = append(p.block, line)
		}
	}
	p.finish()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.cards, nil
}

func splitPrefix(line string) (field, string) {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p.prefix) {
			return p.field, strings.TrimPrefix(line[len(p.prefix):], " ")
		}
	}
	return none, ""
}

type cardBuilder struct {
	cards   []domain.Card
	card    domain.Card
	current field
	block   []string
}

func (b *cardBuilder) start(f field, first string) {
	b.current = f
	b.block = append(b.block[:0], first)
}

// flush stores the accumulated block into the field being read.
func (b *cardBuilder) flush() {
	if len(b.block) == 0 {
		return
	}
	content := strings.TrimRight(strings.Join(b.block, "\n"), "\n")
	switch b.current {
	case question:
		b.card.Question = content
	case answer:
		b.card.Answer = content
	case context:
		b.card.Context = content
	}
	b.block = b.block[:0]
}

func (b *cardBuilder) finish() {
	b.flush()
	if b.card.Question != "" {
		b.cards = append(b.cards, b.card)
	}
	b.card = domain.Card{}
	b.current = none
}
