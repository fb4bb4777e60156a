package core

import "strings"

const defaultAssistantMessage = "I've updated your website!"

// parseAssistantReply splits a model reply into the conversational
// explanation and the updated source. The explanation is everything before
// the first code fence; the source is the body of the first fenced block,
// accepting tsx, jsx or bare fences. A reply with no fence is all
// explanation and leaves the source empty; a reply with a fence but no
// leading prose gets the default message.
func parseAssistantReply(raw string) (explanation, source string) {
	fenceIdx := strings.Index(raw, "```")
	if fenceIdx < 0 {
		explanation = strings.TrimSpace(raw)
		if explanation == "" {
			explanation = defaultAssistantMessage
		}
		return explanation, ""
	}

	explanation = strings.TrimSpace(raw[:fenceIdx])
	if explanation == "" {
		explanation = defaultAssistantMessage
	}
	return explanation, extractFencedSource(raw[fenceIdx:])
}

// extractFencedSource returns the body of the first fenced code block,
// stripping an optional tsx/jsx language tag. Returns "" when the fence is
// never closed.
func extractFencedSource(s string) string {
	s = strings.TrimPrefix(s, "```")
	// Drop the language tag line if present.
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(s[:nl])
		switch firstLine {
		case "tsx", "jsx", "javascript", "typescript", "":
			s = s[nl+1:]
		}
	}
	end := strings.Index(s, "```")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(s[:end])
}
