// Package resultparser decodes the harness-to-engine wire protocol: one
// "TEST_CASE_RESULT: <index>,<actualOutput>,<durationMs>,<errorInfo>" line
// per test case, tolerant of commas embedded in the serialized output.
package resultparser

import (
	"strconv"
	"strings"
)

const linePrefix = "TEST_CASE_RESULT:"

// Line is one decoded result line.
type Line struct {
	Index        int
	Output       *string
	DurationMs   int64
	ErrorType    *string
	ErrorMessage *string
	ParseError   bool
}

// Parse scans a raw combined-log string line by line, keeping only lines
// that begin with the TEST_CASE_RESULT prefix, and returns them in the
// order encountered. If the same index appears more than once — a
// misbehaving harness emitting duplicates — the first occurrence for that
// index wins and later ones are dropped; this is the documented choice for
// the open question in the result-line protocol.
func Parse(rawLog string) []Line {
	var lines []Line
	seen := make(map[int]bool)

	for _, raw := range strings.Split(rawLog, "\n") {
		trimmed := strings.TrimRight(raw, "\r")
		if !strings.HasPrefix(trimmed, linePrefix) {
			continue
		}
		payload := strings.TrimSpace(trimmed[len(linePrefix):])

		line, ok := parsePayload(payload)
		if !ok {
			continue
		}
		if seen[line.Index] {
			continue
		}
		seen[line.Index] = true
		lines = append(lines, line)
	}

	return lines
}

// parsePayload applies the "index is before the first comma; errorInfo is
// after the last comma; duration is between the last two commas; everything
// else is the output" rule.
func parsePayload(payload string) (Line, bool) {
	firstComma := strings.Index(payload, ",")
	if firstComma < 0 {
		return Line{}, false
	}
	indexPart := payload[:firstComma]
	rest := payload[firstComma+1:]

	lastComma := strings.LastIndex(rest, ",")
	if lastComma < 0 {
		return Line{}, false
	}
	errorInfo := rest[lastComma+1:]
	before := rest[:lastComma]

	secondLastComma := strings.LastIndex(before, ",")
	if secondLastComma < 0 {
		return Line{}, false
	}
	outputPart := before[:secondLastComma]
	durationPart := before[secondLastComma+1:]

	index, err := strconv.Atoi(strings.TrimSpace(indexPart))
	if err != nil {
		return Line{}, false
	}

	line := Line{Index: index}

	switch outputPart {
	case "", "null":
		line.Output = nil
	default:
		out := outputPart
		line.Output = &out
	}

	duration, err := strconv.ParseInt(strings.TrimSpace(durationPart), 10, 64)
	switch {
	case err != nil || duration < 0:
		// Duration failed to decode: classify the whole line as an internal
		// parse error, regardless of what the errorInfo field held.
		line.DurationMs = 0
		line.ParseError = true
		errType := "ParseError"
		line.ErrorType = &errType
		if trimmed := strings.TrimSpace(errorInfo); trimmed != "" {
			line.ErrorMessage = &trimmed
		}
	default:
		line.DurationMs = duration
		if trimmed := strings.TrimSpace(errorInfo); trimmed != "" {
			errType, errMsg := splitErrorInfo(trimmed)
			line.ErrorType = &errType
			line.ErrorMessage = &errMsg
		}
	}

	return line, true
}

// splitErrorInfo applies "TypeName: message"; if a colon is present the
// first one separates type from message, otherwise the whole payload is
// both type and message.
func splitErrorInfo(info string) (errType, errMsg string) {
	if idx := strings.Index(info, ":"); idx >= 0 {
		return strings.TrimSpace(info[:idx]), strings.TrimSpace(info[idx+1:])
	}
	return info, info
}
