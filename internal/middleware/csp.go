package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DefaultCSPPolicy is applied when CSP_POLICY is empty.
const DefaultCSPPolicy = "default-src 'self'; frame-ancestors 'none'; object-src 'none'"

// CSPDirective is one policy directive and its source list.
type CSPDirective struct {
	Name    string
	Sources []string
}

// ParseCSPPolicy parses "directive src src; directive src". Directive names
// are lower-cased; a directive that appears more than once has its sources
// merged in first-seen order without duplicates.
func ParseCSPPolicy(raw string) []CSPDirective {
	var out []CSPDirective
	index := make(map[string]int)

	for _, part := range strings.Split(raw, ";") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		name := strings.ToLower(fields[0])
		i, seen := index[name]
		if !seen {
			i = len(out)
			index[name] = i
			out = append(out, CSPDirective{Name: name})
		}
		for _, src := range fields[1:] {
			if !containsString(out[i].Sources, src) {
				out[i].Sources = append(out[i].Sources, src)
			}
		}
	}
	return out
}

// FormatCSPPolicy renders directives as a header value.
func FormatCSPPolicy(directives []CSPDirective) string {
	parts := make([]string, 0, len(directives))
	for _, d := range directives {
		if len(d.Sources) == 0 {
			parts = append(parts, d.Name)
			continue
		}
		parts = append(parts, d.Name+" "+strings.Join(d.Sources, " "))
	}
	return strings.Join(parts, "; ")
}

// ContentSecurityPolicy sets the Content-Security-Policy header after the
// handler runs, unless the handler already set one.
func ContentSecurityPolicy(policy string) fiber.Handler {
	if strings.TrimSpace(policy) == "" {
		policy = DefaultCSPPolicy
	}
	header := FormatCSPPolicy(ParseCSPPolicy(policy))

	return func(c *fiber.Ctx) error {
		err := c.Next()
		if header != "" && len(c.Response().Header.Peek(fiber.HeaderContentSecurityPolicy)) == 0 {
			c.Set(fiber.HeaderContentSecurityPolicy, header)
		}
		return err
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
