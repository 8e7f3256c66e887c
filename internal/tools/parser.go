package tools

import (
	"regexp"
)

// The model requests tools with a compact inline format:
//
//	<tool>read_file(path="main.go")</tool>
//
// Arguments are key="value" pairs; values cannot contain double quotes.

var (
	toolCallPattern = regexp.MustCompile(`(?s)<tool>(\w+)\((.*?)\)</tool>`)
	paramPattern    = regexp.MustCompile(`(\w+)="([^"]*)"`)
)

// Call is one parsed tool invocation.
type Call struct {
	Tool   string
	Params map[string]interface{}
}

// ParseCalls extracts every tool call from a model response, in order of
// appearance. Text without calls yields an empty slice.
func ParseCalls(response string) []Call {
	matches := toolCallPattern.FindAllStringSubmatch(response, -1)
	calls := make([]Call, 0, len(matches))

	for _, m := range matches {
		params := make(map[string]interface{})
		for _, pm := range paramPattern.FindAllStringSubmatch(m[2], -1) {
			params[pm[1]] = pm[2]
		}
		calls = append(calls, Call{
			Tool:   m[1],
			Params: params,
		})
	}
	return calls
}
