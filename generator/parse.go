package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches a reply wrapped in a markdown code block: ```json { ... } ```
var fencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\s*```$")

var errNotObject = errors.New("model output is not a JSON object")

// ParseMapping 校验模型输出：必须是 {"domain": "description"} 形式的 JSON 对象。
// Empty output is read as an empty object.
func ParseMapping(raw string) (Mapping, error) {
	text := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(text); len(m) > 1 {
		text = strings.TrimSpace(m[1])
	}
	if text == "" {
		text = "{}"
	}

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	out := make(Mapping, len(obj))
	for k, val := range obj {
		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("description for %q is %T, want string", k, val)
		}
		out[k] = s
	}
	return out, nil
}
