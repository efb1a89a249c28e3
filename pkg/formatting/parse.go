package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when content holds no decodable JSON object.
var ErrParseFailed = errors.New("failed to parse response")

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// Parse decodes content as JSON into T. Models often wrap their answer in a
// markdown fence or surround it with prose, so Parse falls back to the first
// fenced block and then to the outermost {...} span.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	if m := jsonBlockRegex.FindStringSubmatch(content); len(m) >= 2 {
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &result); err == nil {
			return result, nil
		}
	}

	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(content[start:end+1]), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, content)
}
