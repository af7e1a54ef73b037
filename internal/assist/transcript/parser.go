// Package transcript turns free-text voice transcripts into structured
// schedule requests. Parsing is pure and never fails: anything the matchers
// cannot read degrades to defaults instead of erroring, because a transcript
// with no recognizable time is a normal input class, not a fault.
package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	// DefaultHour and DefaultMinute are used when no time phrase matches
	DefaultHour   = 9
	DefaultMinute = 0
	// DefaultLeadMinutes is used when no reminder-lead phrase matches
	DefaultLeadMinutes = 10
	// FallbackTitle is used when stripping leaves no usable title behind
	FallbackTitle = "New Reminder"
)

// Result is the structured form of one transcript
type Result struct {
	Title        string `json:"title"`
	Hour         int    `json:"hour"`
	Minute       int    `json:"minute"`
	LeadMinutes  int    `json:"lead_minutes"`
	TimeExplicit bool   `json:"time_explicit"`
}

// Time formats the extracted time as zero-padded HH:MM
func (r Result) Time() string {
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
}

// match carries one matcher hit: the normalized values plus the span of the
// matched phrase so it can be stripped from the title.
type match struct {
	hour, minute int
	start, end   int
}

// timeMatcher inspects a transcript and returns a structured hit or nil.
// Matchers run in a fixed order and the first hit wins.
type timeMatcher func(s string) *match

var (
	reClockTime = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)?`)
	reBareHour  = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(am|pm)\b`)
	reAtHour    = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)

	reLeadBefore = regexp.MustCompile(`(?i)\b(\d+)\s*minutes?\s+(?:before|early|ahead)\b`)
	reLeadRemind = regexp.MustCompile(`(?i)\bremind(?:\s+me)?\s+(\d+)\s*minutes?\b`)

	// Command phrases that carry no title content, longest first so a longer
	// phrase is not left half-stripped by a shorter one.
	stopPhrases = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\badd\s+a\s+schedule\b`),
		regexp.MustCompile(`(?i)\badd\s+schedule\b`),
		regexp.MustCompile(`(?i)\bset\s+a\s+reminder\s+for\b`),
		regexp.MustCompile(`(?i)\bset\s+reminder\s+for\b`),
		regexp.MustCompile(`(?i)\bset\s+a\s+reminder\b`),
		regexp.MustCompile(`(?i)\bset\s+reminder\b`),
		regexp.MustCompile(`(?i)\bremind\s+me\s+to\b`),
		regexp.MustCompile(`(?i)\bremind\s+me\b`),
		regexp.MustCompile(`(?i)\badd\s+reminder\b`),
		regexp.MustCompile(`(?i)\breminder\b`),
		regexp.MustCompile(`(?i)\bschedule\b`),
		regexp.MustCompile(`(?i)\bplease\b`),
	}

	// Connector words left dangling at the edges after phrase stripping
	// ("take medicine at" once "8 am" is gone).
	edgeConnectors = map[string]bool{
		"at": true, "to": true, "for": true, "on": true, "in": true,
		"a": true, "an": true, "the": true, "my": true, "and": true,
	}

	timeMatchers = []timeMatcher{matchClockTime, matchBareHour, matchAtHour}
)

// Parse extracts a time of day, a reminder lead, and a cleaned title from a
// voice transcript.
func Parse(text string) Result {
	result := Result{
		Hour:        DefaultHour,
		Minute:      DefaultMinute,
		LeadMinutes: DefaultLeadMinutes,
	}
	remainder := text

	for _, matcher := range timeMatchers {
		if m := matcher(text); m != nil {
			result.Hour = m.hour
			result.Minute = m.minute
			result.TimeExplicit = true
			remainder = text[:m.start] + " " + text[m.end:]
			break
		}
	}

	if lead, rest, ok := extractLead(remainder); ok {
		result.LeadMinutes = lead
		remainder = rest
	}

	result.Title = extractTitle(remainder)
	return result
}

func matchClockTime(s string) *match {
	loc := reClockTime.FindStringSubmatchIndex(s)
	if loc == nil {
		return nil
	}
	hour, _ := strconv.Atoi(s[loc[2]:loc[3]])
	minute := submatchInt(s, loc, 2, 0)
	return normalized(hour, minute, submatchText(s, loc, 3), loc[0], loc[1])
}

func matchBareHour(s string) *match {
	loc := reBareHour.FindStringSubmatchIndex(s)
	if loc == nil {
		return nil
	}
	hour, _ := strconv.Atoi(s[loc[2]:loc[3]])
	return normalized(hour, 0, submatchText(s, loc, 2), loc[0], loc[1])
}

func matchAtHour(s string) *match {
	loc := reAtHour.FindStringSubmatchIndex(s)
	if loc == nil {
		return nil
	}
	hour, _ := strconv.Atoi(s[loc[2]:loc[3]])
	minute := submatchInt(s, loc, 2, 0)
	return normalized(hour, minute, submatchText(s, loc, 3), loc[0], loc[1])
}

// normalized applies 12-hour meridiem rules and rejects impossible hours
func normalized(hour, minute int, meridiem string, start, end int) *match {
	switch strings.ToLower(meridiem) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return nil
	}
	return &match{hour: hour, minute: minute, start: start, end: end}
}

func extractLead(s string) (lead int, remainder string, ok bool) {
	for _, re := range []*regexp.Regexp{reLeadBefore, reLeadRemind} {
		loc := re.FindStringSubmatchIndex(s)
		if loc == nil {
			continue
		}
		n, err := strconv.Atoi(s[loc[2]:loc[3]])
		if err != nil || n < 0 {
			continue
		}
		return n, s[:loc[0]] + " " + s[loc[1]:], true
	}
	return 0, s, false
}

// extractTitle strips command phrases and dangling connectors, then
// capitalizes what is left.
func extractTitle(s string) string {
	for _, re := range stopPhrases {
		s = re.ReplaceAllString(s, " ")
	}

	words := strings.Fields(s)
	for len(words) > 0 && edgeConnectors[strings.ToLower(words[0])] {
		words = words[1:]
	}
	for len(words) > 0 && edgeConnectors[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}

	title := strings.Join(words, " ")
	title = strings.Trim(title, " ,.!?")
	if len(title) < 2 {
		return FallbackTitle
	}

	runes := []rune(title)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// submatchText returns submatch group text or "" when the group is absent
func submatchText(s string, loc []int, group int) string {
	if loc[2*group] < 0 {
		return ""
	}
	return s[loc[2*group]:loc[2*group+1]]
}

// submatchInt returns submatch group text as an int, or def when the group
// is absent or not numeric.
func submatchInt(s string, loc []int, group int, def int) int {
	text := submatchText(s, loc, group)
	n, err := strconv.Atoi(text)
	if err != nil {
		return def
	}
	return n
}
