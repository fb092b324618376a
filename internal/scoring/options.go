package scoring

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// optionCount is the number of multiple-choice options per question.
const optionCount = 4

var genericFillers = []string{"None of the above", "Insufficient data", "Cannot be determined"}

var (
	numericPattern    = regexp.MustCompile(`^\$?\d[\d,]*(\.\d+)?$`)
	percentagePattern = regexp.MustCompile(`^(\d+)\s*%$`)
)

// OptionGenerator produces plausible multiple-choice distractors for puzzles
// that have no authored options.
type OptionGenerator struct {
	rand *rand.Rand
}

func NewOptionGenerator() *OptionGenerator {
	return NewSeededOptionGenerator(time.Now().UnixNano())
}

// NewSeededOptionGenerator allows deterministic shuffles in tests.
func NewSeededOptionGenerator(seed int64) *OptionGenerator {
	return &OptionGenerator{rand: rand.New(rand.NewSource(seed))}
}

// Generate returns exactly four distinct options including the correct
// answer. Distractors are derived from the answer text: numeric and
// currency answers are scaled, percentages shifted, yes/no flipped, and
// suspect names substituted; anything else falls back to generic fillers.
// The returned order is randomized to avoid positional bias, so callers
// must not rely on the correct answer's position.
func (g *OptionGenerator) Generate(correctAnswer string, suspectNames []string) []string {
	answer := strings.TrimSpace(correctAnswer)

	var distractors []string
	switch {
	case numericPattern.MatchString(answer):
		distractors = numericDistractors(answer)
	case percentagePattern.MatchString(answer):
		distractors = percentageDistractors(answer)
	case isYesNo(answer):
		distractors = yesNoDistractors(answer)
	default:
		distractors = g.suspectDistractors(answer, suspectNames)
	}

	options := dedupe(append([]string{answer}, distractors...))

	// Scaling can collide, e.g. tiny numbers rounding to the same value.
	// Pad from the fillers until we have four distinct options.
	padding := append([]string{}, genericFillers...)
	padding = append(padding, "All of the above", "The case file is missing this detail")
	for _, filler := range padding {
		if len(options) >= optionCount {
			break
		}
		options = dedupe(append(options, filler))
	}

	options = options[:optionCount]
	g.rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

// numericDistractors scales the parsed number by fixed factors, preserving
// the currency prefix, decimal places, and thousands separators of the
// original answer.
func numericDistractors(answer string) []string {
	prefix := ""
	numberText := answer
	if strings.HasPrefix(numberText, "$") {
		prefix = "$"
		numberText = numberText[1:]
	}
	grouped := strings.Contains(numberText, ",")
	decimals := 0
	if dot := strings.Index(numberText, "."); dot != -1 {
		decimals = len(numberText) - dot - 1
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(numberText, ",", ""), 64)
	if err != nil {
		return nil
	}

	factors := []float64{0.85, 1.15, 0.5}
	distractors := make([]string, 0, len(factors))
	for _, factor := range factors {
		distractors = append(distractors, formatNumber(value*factor, prefix, decimals, grouped))
	}
	return distractors
}

func formatNumber(value float64, prefix string, decimals int, grouped bool) string {
	text := strconv.FormatFloat(math.Round(value*math.Pow10(decimals))/math.Pow10(decimals), 'f', decimals, 64)
	if grouped {
		intPart := text
		fracPart := ""
		if dot := strings.Index(text, "."); dot != -1 {
			intPart, fracPart = text[:dot], text[dot:]
		}
		var groups []string
		for len(intPart) > 3 {
			groups = append([]string{intPart[len(intPart)-3:]}, groups...)
			intPart = intPart[:len(intPart)-3]
		}
		groups = append([]string{intPart}, groups...)
		text = strings.Join(groups, ",") + fracPart
	}
	return prefix + text
}

// percentageDistractors shifts the percentage up and down, clamped away from
// the 0% and 100% extremes so the distractors stay plausible.
func percentageDistractors(answer string) []string {
	match := percentagePattern.FindStringSubmatch(answer)
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	up := min(n+15, 95)
	down := max(n-15, 5)
	far := max(n-25, 10)
	return []string{
		fmt.Sprintf("%d%%", up),
		fmt.Sprintf("%d%%", down),
		fmt.Sprintf("%d%%", far),
	}
}

func isYesNo(answer string) bool {
	normalized := normalizeAnswer(answer)
	return normalized == "yes" || normalized == "no"
}

func yesNoDistractors(answer string) []string {
	opposite := "Yes"
	if normalizeAnswer(answer) == "yes" {
		opposite = "No"
	}
	return []string{opposite, "Not enough evidence", "The evidence is inconclusive"}
}

// suspectDistractors uses other suspects' names when the case has enough of
// them and the answer isn't already about a suspect; otherwise it falls back
// to the generic fillers.
func (g *OptionGenerator) suspectDistractors(answer string, suspectNames []string) []string {
	distinct := dedupe(suspectNames)
	if len(distinct) >= optionCount && !containsAnyName(answer, distinct) {
		picks := make([]string, len(distinct))
		copy(picks, distinct)
		g.rand.Shuffle(len(picks), func(i, j int) {
			picks[i], picks[j] = picks[j], picks[i]
		})
		return picks[:optionCount-1]
	}
	return genericFillers
}

func containsAnyName(answer string, names []string) bool {
	normalized := normalizeAnswer(answer)
	for _, name := range names {
		if strings.Contains(normalized, normalizeAnswer(name)) {
			return true
		}
	}
	return false
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}
	return result
}
