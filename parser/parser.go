package parser

import (
	"encoding/json"
	"errors"
	"strings"

	"road-condition-service/models"
)

// ExtractJSONFromMarkdown extracts JSON from markdown code blocks. The judge
// is asked for strict JSON but tends to wrap the body in ```json fences.
func ExtractJSONFromMarkdown(response string) string {
	startMarker := "```"
	endMarker := "```"

	startIdx := strings.Index(response, startMarker)
	if startIdx == -1 {
		// No code block found, try to find JSON object directly
		startIdx = strings.Index(response, "{")
		if startIdx == -1 {
			return response
		}
		endIdx := strings.LastIndex(response, "}")
		if endIdx == -1 {
			return response
		}
		return strings.TrimSpace(response[startIdx : endIdx+1])
	}

	// Find the end of the first code block
	endIdx := strings.Index(response[startIdx+len(startMarker):], endMarker)
	if endIdx == -1 {
		return response
	}
	endIdx += startIdx + len(startMarker)

	// Extract content between the markers
	content := response[startIdx+len(startMarker) : endIdx]

	// Remove the language identifier if present (e.g., "json")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && (strings.TrimSpace(lines[0]) == "json" || strings.TrimSpace(lines[0]) == "") {
		content = strings.Join(lines[1:], "\n")
	}

	return strings.TrimSpace(content)
}

// ParseScores parses the judge response into a ScoreVector. A response that
// does not contain valid JSON is a hard failure; there is no partial-credit
// reading of judge output. Values outside 0-100 are clamped, not rejected.
func ParseScores(response string) (*models.ScoreVector, error) {
	cleaned := strings.TrimSpace(response)
	if cleaned == "" {
		return nil, errors.New("empty judge response")
	}

	jsonContent := ExtractJSONFromMarkdown(cleaned)

	var scores models.ScoreVector
	if err := json.Unmarshal([]byte(jsonContent), &scores); err != nil {
		return nil, errors.New("failed to parse JSON response: " + err.Error())
	}

	scores = scores.Clamped()
	return &scores, nil
}
