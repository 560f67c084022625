// Package reply composes the acknowledgment posted back into the chat.
package reply

import (
	"math/rand/v2"
	"strings"
)

// Placeholder is replaced with the requester's display name.
const Placeholder = "{name}"

// DefaultTemplates are the acknowledgment messages picked from at random.
var DefaultTemplates = []string{
	"@{name} Thank you for sending your prayer request. We are praying for you.",
	"@{name} Thank you for sharing your prayer need. Stay encouraged!",
	"@{name} We’ve received your prayer request. The Lord hears and answers prayer.",
}

// Composer picks a template uniformly at random and fills in the name.
// It is not safe for concurrent use.
type Composer struct {
	templates []string
	rng       *rand.Rand
}

// New creates a Composer. A nil rng uses a randomly seeded source.
// Templates without the placeholder are ignored; if none remain,
// DefaultTemplates are used.
func New(templates []string, rng *rand.Rand) *Composer {
	var tpls []string
	for _, t := range templates {
		if strings.Contains(t, Placeholder) {
			tpls = append(tpls, t)
		}
	}
	if len(tpls) == 0 {
		tpls = append(tpls, DefaultTemplates...)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Composer{templates: tpls, rng: rng}
}

// Compose returns a reply addressed to name. The name is inserted once and
// never expanded again, so a name containing the placeholder stays literal.
func (c *Composer) Compose(name string) string {
	tpl := c.templates[c.rng.IntN(len(c.templates))]
	i := strings.Index(tpl, Placeholder)
	return tpl[:i] + name + tpl[i+len(Placeholder):]
}
