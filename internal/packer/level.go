package packer

import "strings"

// Level is the severity attached to a line sent to a Sink.
type Level int

const (
	LevelPlain Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelSuccess
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return ""
	}
}

type keywordRule struct {
	level    Level
	keywords []string
}

// classifyRules is evaluated top to bottom and the first hit wins. The
// order decides how overlapping lines such as "warning: build failed" are
// colored, so it must not be reshuffled.
var classifyRules = []keywordRule{
	{level: LevelError, keywords: []string{"error", "failed", "traceback"}},
	{level: LevelWarning, keywords: []string{"warning", "warn"}},
	{level: LevelSuccess, keywords: []string{"success", "complete", "finished"}},
	{level: LevelInfo, keywords: []string{"info", "processing", "analyzing"}},
}

// Classify tags one line of tool output by case-insensitive keyword match.
func Classify(line string) Level {
	lower := strings.ToLower(line)
	for _, rule := range classifyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.level
			}
		}
	}
	return LevelPlain
}

// Sink receives leveled lines. It is called from the run goroutine.
type Sink interface {
	Log(message string, level Level)
}

type SinkFunc func(message string, level Level)

func (f SinkFunc) Log(message string, level Level) { f(message, level) }
