package tool

import (
	"regexp"
	"slices"
	"strings"

	"github.com/harunnryd/newsdesk/internal/model/contract"
)

const (
	AccessLocal   = "local"
	AccessNetwork = "network"
)

var capabilityPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)*$`)

// ToolMetadata is operator-facing information shown by `newsdesk tools`.
// It is never sent to the model.
type ToolMetadata struct {
	Source       string
	Capabilities []string
	// Network marks tools that issue outbound requests for URLs chosen by
	// the model.
	Network bool
	// Schemes are the URL schemes a network tool will fetch.
	Schemes []string
}

// Access is "network" for tools that reach out to remote hosts and "local"
// otherwise.
func (m ToolMetadata) Access() string {
	if m.Network {
		return AccessNetwork
	}
	return AccessLocal
}

type MetadataProvider interface {
	ToolMetadata() ToolMetadata
}

type ToolDescriptor struct {
	Definition contract.ToolDef
	Metadata   ToolMetadata
}

// normalizeToolMetadata lowercases and dedupes the lists, drops capabilities
// that are not dotted identifiers and defaults a network tool to http(s).
func normalizeToolMetadata(meta ToolMetadata) ToolMetadata {
	source := strings.TrimSpace(strings.ToLower(meta.Source))
	if source == "" {
		source = "runtime"
	}

	capabilities := normalizeList(meta.Capabilities, capabilityPattern.MatchString)

	var schemes []string
	if meta.Network {
		schemes = normalizeList(meta.Schemes, func(s string) bool {
			return !strings.ContainsAny(s, ":/ ")
		})
		if len(schemes) == 0 {
			schemes = []string{"http", "https"}
		}
	}

	return ToolMetadata{
		Source:       source,
		Capabilities: capabilities,
		Network:      meta.Network,
		Schemes:      schemes,
	}
}

func normalizeList(in []string, valid func(string) bool) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		item = strings.TrimSpace(strings.ToLower(item))
		if item == "" || !valid(item) {
			continue
		}
		out = append(out, item)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
