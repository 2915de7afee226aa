package scenario

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholder matches {path} and {path|fallback}.
var placeholder = regexp.MustCompile(`\{([^{}|]+)(?:\|([^{}]*))?\}`)

// RenderTemplate fills payload placeholders from vars. A dotted path walks
// nested maps. An unresolved placeholder renders its fallback when one is
// given and is otherwise left untouched.
func RenderTemplate(tmpl string, vars map[string]any) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		groups := placeholder.FindStringSubmatch(match)
		if v, ok := lookup(vars, strings.TrimSpace(groups[1])); ok {
			return fmt.Sprint(v)
		}
		if strings.Contains(match, "|") {
			return groups[2]
		}
		return match
	})
}

func lookup(vars map[string]any, path string) (any, bool) {
	var cur any = vars
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}
