package llmrouter

import (
	"fmt"
	"regexp"
)

// hardLimitBytes is the maximum UTF-8 byte length llm.query accepts; past
// this, heuristic checks do not run.
const hardLimitBytes = 102_400

var (
	codeFencePattern  = regexp.MustCompile("(?s)```.*?```")
	definitionPattern = regexp.MustCompile(`(?m)^\s*(def |class |function |const |let |var |import |from |#include)`)
)

// checkInput validates an llm.query prompt, returning every violated
// heuristic's reason. An empty result means accept.
func checkInput(text string) []string {
	var reasons []string

	size := len([]byte(text))
	if size > hardLimitBytes {
		return []string{fmt.Sprintf("Input size %d bytes exceeds hard limit of %d bytes", size, hardLimitBytes)}
	}

	if fences := codeFencePattern.FindAllString(text, -1); len(fences) > 10 {
		reasons = append(reasons, fmt.Sprintf("Input contains %d code fences — suspected repo paste", len(fences)))
	}

	if defs := definitionPattern.FindAllString(text, -1); len(defs) > 20 {
		reasons = append(reasons, fmt.Sprintf("Input contains %d code definitions — suspected repo paste", len(defs)))
	}

	return reasons
}
