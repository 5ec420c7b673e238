package summarizer

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// FrequencyDigest ranks retrieved texts by token frequency across the
// result set and emits the most representative ones as a plain-text
// digest. It serves as the offline fallback when no chat model is
// configured.
type FrequencyDigest struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewFrequencyDigest creates a frequency-based result ranker.
func NewFrequencyDigest() *FrequencyDigest {
	return &FrequencyDigest{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Summarize selects up to maxItems texts that best represent the set,
// preserving their original order in the output.
func (s *FrequencyDigest) Summarize(texts []string, maxItems int) (string, error) {
	if len(texts) == 0 {
		return "", errors.New("nothing to summarize")
	}
	if maxItems <= 0 {
		maxItems = 3
	}
	// Token frequencies across the whole result set
	freq := map[string]float64{}
	for _, text := range texts {
		for _, tok := range s.tokens(text) {
			if _, ok := s.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(texts))
	for i, text := range texts {
		score := 0.0
		toks := s.tokens(text)
		for _, tok := range toks {
			if v, ok := freq[tok]; ok {
				score += v
			}
		}
		// Normalize by length to avoid bias toward long move lists
		if l := float64(len(toks)); l > 0 {
			score /= math.Sqrt(l)
		}
		scores[i] = pair{i, score}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if maxItems > len(scores) {
		maxItems = len(scores)
	}
	selected := make([]int, maxItems)
	for i := 0; i < maxItems; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, 0, maxItems)
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(texts[idx]))
	}
	return strings.Join(out, "\n\n"), nil
}

func (s *FrequencyDigest) tokens(text string) []string {
	return s.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
