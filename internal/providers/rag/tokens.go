package rag

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const DefaultEncoding = "cl100k_base"

type TokenCounter interface {
	CountTokens(text string) (int, error)
}

type TokenCounterFunc func(text string) (int, error)

func (f TokenCounterFunc) CountTokens(text string) (int, error) { return f(text) }

// RuneCounter approximates tokens by rune count. It never underestimates cl100k.
var RuneCounter = TokenCounterFunc(func(text string) (int, error) {
	return utf8.RuneCountInString(text), nil
})

// Tiktoken counts tokens with a BPE encoding loaded on first use.
type Tiktoken struct {
	encoding string

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

func NewTiktoken(encoding string) *Tiktoken {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &Tiktoken{encoding: encoding}
}

func (t *Tiktoken) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	t.once.Do(func() {
		t.enc, t.err = tiktoken.GetEncoding(t.encoding)
	})
	if t.err != nil {
		return 0, fmt.Errorf("load tiktoken %s: %w", t.encoding, t.err)
	}
	return len(t.enc.Encode(text, nil, nil)), nil
}
