package ledger

import (
	"strings"
	"time"

	"github.com/Heban-7/governed-ai-native-ide/pkg/classifier"
)

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func trimNewline(s string) string {
	return strings.TrimRight(s, "\n\r")
}

// payloadStrings lifts a CSV string or a JSON list of strings from any
// of the given payload keys, first key present wins.
func payloadStrings(payload classifier.Payload, keys ...string) []string {
	for _, key := range keys {
		v, ok := payload[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			if val == "" {
				continue
			}
			parts := strings.Split(val, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					out = append(out, p)
				}
			}
			if len(out) > 0 {
				return out
			}
		case []any:
			out := make([]string, 0, len(val))
			for _, item := range val {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}
