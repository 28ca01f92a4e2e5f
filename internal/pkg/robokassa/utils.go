package robokassa

import "strings"

// getFirstValue extracts the first value from form values (case-insensitive lookup)
// Used for RoboKassa webhook form parsing
func getFirstValue(values map[string][]string, key string) string {
	for k, v := range values {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}
