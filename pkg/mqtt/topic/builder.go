package topic

import (
	"strings"
)

// Builder encapsulates the logic for constructing MQTT topic strings
// under an optional root namespace.
type Builder struct {
	// root is the base namespace for all topics (e.g., "fleet/v1").
	// An empty root yields bare topics such as "update_drone".
	root string

	// group, when set, turns built filters into shared subscriptions.
	group string
}

// NewBuilder creates a new Builder with the specified root namespace.
func NewBuilder(root string) *Builder {
	return &Builder{root: strings.Trim(root, "/")}
}

// Root returns the configured namespace.
func (b *Builder) Root() string {
	return b.root
}

// Shared returns a copy of the builder that produces shared-subscription
// filters of the form $share/{group}/{topic}.
func (b *Builder) Shared(group string) *Builder {
	return &Builder{root: b.root, group: group}
}

// Build joins the root and segments with "/". Empty segments are skipped.
func (b *Builder) Build(segments ...string) string {
	parts := make([]string, 0, len(segments)+3)
	if b.group != "" {
		parts = append(parts, SharePrefix, b.group)
	}
	if b.root != "" {
		parts = append(parts, b.root)
	}
	for _, s := range segments {
		if s = strings.Trim(s, "/"); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// Split strips the root from a received topic and returns the remaining
// levels. ok is false if the topic is outside the namespace.
func (b *Builder) Split(topic string) (levels []string, ok bool) {
	rest := topic
	if b.root != "" {
		prefix := b.root + "/"
		if !strings.HasPrefix(topic, prefix) {
			return nil, false
		}
		rest = strings.TrimPrefix(topic, prefix)
	}
	if rest == "" {
		return nil, false
	}
	return strings.Split(rest, "/"), true
}
