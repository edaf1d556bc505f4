package memory

import (
	"context"
	"strings"

	"autoboard/contexts/marketplace/listing-service/ports"
)

// KeywordModerator refuses content containing any blocklisted term.
type KeywordModerator struct {
	blocklist []string
}

func NewKeywordModerator(terms []string) KeywordModerator {
	blocklist := make([]string, 0, len(terms))
	for _, term := range terms {
		if normalized := strings.ToLower(strings.TrimSpace(term)); normalized != "" {
			blocklist = append(blocklist, normalized)
		}
	}
	return KeywordModerator{blocklist: blocklist}
}

func (m KeywordModerator) IsAllowed(_ context.Context, brand string, model string, description string) (ports.ContentVerdict, error) {
	fields := map[string]string{
		"brand":       strings.ToLower(brand),
		"model":       strings.ToLower(model),
		"description": strings.ToLower(description),
	}
	var reasons []string
	for _, name := range []string{"brand", "model", "description"} {
		for _, term := range m.blocklist {
			if strings.Contains(fields[name], term) {
				reasons = append(reasons, name+" contains a blocked term")
				break
			}
		}
	}
	return ports.ContentVerdict{Allowed: len(reasons) == 0, Reasons: reasons}, nil
}
