package services

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
)

const (
	DefaultPromptCount = 12
	MaxPromptCount     = 20
)

// DefaultPrompts seeds the suggestion list shown next to the letter editor.
var DefaultPrompts = []string{
	"What moment this year made you fall for me all over again?",
	"What is a small thing I do that you hope I never stop doing?",
	"Where do you picture us one year from today?",
	"What was the best meal we shared this year?",
	"Which song reminds you of us right now?",
	"What is something new you learned about me this year?",
	"What is a memory of us you replay when you miss me?",
	"What made you laugh the hardest this year?",
	"What is one trip you want us to take next?",
	"What do you want to thank me for that you never said out loud?",
	"What was our hardest day this year, and how did we get through it?",
	"What is your favorite photo of us from this year, and why?",
	"What tradition should we start together?",
	"What is something you are proud of me for?",
	"What did home feel like this year?",
	"What is a dream you want us to chase together?",
	"What is the sweetest thing I said to you this year?",
	"If this year were a movie, what would its title be?",
	"What is a habit of ours you love?",
	"What do you hope we never change about us?",
	"What surprised you most about us this year?",
	"What is one promise you want to make for next year?",
	"Which ordinary day this year felt secretly perfect?",
	"What would you tell us on the day we first met?",
	"What is something you want to learn together?",
	"How did I make a bad day better this year?",
	"What is the first thing you want to do when you read this?",
	"What is a place that will always feel like ours?",
	"What made you feel most loved this year?",
	"What is a question you have always wanted to ask me?",
}

// PromptBank is a read-only pool of letter prompts.
type PromptBank struct {
	prompts []string
	shuffle func(n int, swap func(i, j int))
}

// NewPromptBank copies prompts, dropping blanks and duplicates. An empty
// input selects DefaultPrompts.
func NewPromptBank(prompts []string) *PromptBank {
	if len(prompts) == 0 {
		prompts = DefaultPrompts
	}

	seen := make(map[string]bool, len(prompts))
	bank := make([]string, 0, len(prompts))
	for _, p := range prompts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		bank = append(bank, p)
	}

	return &PromptBank{prompts: bank, shuffle: rand.Shuffle}
}

// Len is the number of distinct prompts in the bank.
func (b *PromptBank) Len() int {
	return len(b.prompts)
}

// Sample returns up to count distinct prompts in random order. The count
// is clamped with ClampPromptCount first.
func (b *PromptBank) Sample(count int) []string {
	count = ClampPromptCount(count)

	pool := make([]string, len(b.prompts))
	copy(pool, b.prompts)
	b.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	if count > len(pool) {
		count = len(pool)
	}
	return pool[:count]
}

// ClampPromptCount maps non-positive counts to DefaultPromptCount and caps
// the rest at MaxPromptCount.
func ClampPromptCount(count int) int {
	switch {
	case count <= 0:
		return DefaultPromptCount
	case count > MaxPromptCount:
		return MaxPromptCount
	default:
		return count
	}
}

// ParsePromptCount reads a count query value. Leading decimal digits are
// honoured ("7abc" is 7); anything unparsable becomes DefaultPromptCount.
func ParsePromptCount(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && raw[0] != '-' {
			return MaxPromptCount
		}
		return DefaultPromptCount
	}
	return ClampPromptCount(n)
}
