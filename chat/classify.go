package chat

import "strings"

// Flag is a badge shown next to a message.
type Flag string

const (
	FlagMilestone           Flag = "milestone"
	FlagCulturalRecognition Flag = "cultural_recognition"
	FlagAdminPanel          Flag = "admin_panel"
)

// Rule flags a message when its text contains any of Patterns. Matching is an
// exact substring test.
type Rule struct {
	Flag     Flag
	Patterns []string
}

// DefaultRules is the rule table, evaluated in order. Every rule is tested
// independently, so a message may carry several flags.
var DefaultRules = []Rule{
	{Flag: FlagMilestone, Patterns: []string{"🎉", "💼", "📅", "🤝"}},
	{Flag: FlagCulturalRecognition, Patterns: []string{"Steadily, we are getting leads!"}},
	{Flag: FlagAdminPanel, Patterns: []string{"Admin Analytics Dashboard"}},
}

// Flags is the ordered set of flags a message carries.
type Flags []Flag

func (f Flags) Has(flag Flag) bool {
	for _, got := range f {
		if got == flag {
			return true
		}
	}
	return false
}

// Classifier applies a rule table.
type Classifier struct {
	rules []Rule
}

// NewClassifier uses rules, or DefaultRules when none are given.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

func (c *Classifier) Classify(text string) Flags {
	var flags Flags
	for _, rule := range c.rules {
		for _, pattern := range rule.Patterns {
			if pattern != "" && strings.Contains(text, pattern) {
				flags = append(flags, rule.Flag)
				break
			}
		}
	}
	return flags
}
