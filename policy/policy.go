package policy

import anonbot "github.com/NEO-KLIZZERX/Anon-Messages-Bot"

// LinkRule denies content carrying a link marker when the recipient blocks links.
type LinkRule struct {
	Markers []string
}

func (r LinkRule) Name() string { return "links" }

func (r LinkRule) Evaluate(s Subject) Conclusion {
	if !s.BlockLinks || s.Content == nil {
		return UNSET
	}
	if anonbot.HasLink(s.Content.Body(), r.Markers) {
		return DENY
	}
	return UNSET
}

type ContentPolicy struct {
	rules        []Rule
	defaultAllow bool
}

func New(defaultAllow bool, rules ...Rule) *ContentPolicy {
	return &ContentPolicy{rules: rules, defaultAllow: defaultAllow}
}

// NewLinkPolicy is the relay's default policy: everything is allowed except blocked links.
func NewLinkPolicy(markers []string) *ContentPolicy {
	return New(true, LinkRule{Markers: markers})
}

// Evaluate returns at the first DENY. Otherwise conclusions are merged and the default applies
// when nothing was concluded.
func (p *ContentPolicy) Evaluate(s Subject) Verdict {
	result := UNSET
	for _, rule := range p.rules {
		c := rule.Evaluate(s)
		if c == DENY {
			return Verdict{Allowed: false, Rule: rule.Name()}
		}
		result = result.Or(c)
	}
	if result == UNSET {
		return Verdict{Allowed: p.defaultAllow}
	}
	return Verdict{Allowed: result == ALLOW}
}
