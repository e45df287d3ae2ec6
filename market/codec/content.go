package codec

import "strconv"

// Defensive accessors for untyped event content. The network hands us JSON
// from adversarial sources; every field read defaults instead of trusting
// shape.

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getBool(m map[string]interface{}, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "True"
	}
	return false
}

func getFloat(m map[string]interface{}, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		// some marketplace implementations quote their numbers
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func getStringSlice(m map[string]interface{}, key string) (r []string) {
	list, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	for _, item := range list {
		if s, ok := item.(string); ok {
			r = append(r, s)
		}
	}
	return
}

func getList(m map[string]interface{}, key string) []interface{} {
	list, _ := m[key].([]interface{})
	return list
}
