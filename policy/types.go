package policy

import anonbot "github.com/NEO-KLIZZERX/Anon-Messages-Bot"

type Conclusion int

const (
	UNSET Conclusion = iota
	ALLOW
	DENY
)

func (c Conclusion) String() string {
	switch c {
	case ALLOW:
		return "allow"
	case DENY:
		return "deny"
	default:
		return "unset"
	}
}

// Or merges two conclusions. Conflicting explicit conclusions cancel out.
func (c Conclusion) Or(other Conclusion) Conclusion {
	if c == UNSET {
		return other
	}
	if other == UNSET {
		return c
	}
	if c != other {
		return UNSET
	}
	return c
}

// Subject is what a rule is evaluated against: the inbound item and the recipient's settings.
type Subject struct {
	Content    anonbot.Content
	BlockLinks bool
}

type Rule interface {
	Name() string
	Evaluate(s Subject) Conclusion
}

type Verdict struct {
	Allowed bool
	Rule    string
}
