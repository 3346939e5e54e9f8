package ir

import "fmt"

// Style records how a scalar or collection was written in the source
// document. It is advisory: encoders honor it when the target grammar
// allows and fall back to PlainStyle otherwise.
type Style int

const (
	PlainStyle Style = iota
	QuotedStyle
	LiteralStyle
	FoldedStyle
	FlowStyle
)

func (s Style) String() string {
	v, ok := map[Style]string{
		PlainStyle:   "plain",
		QuotedStyle:  "quoted",
		LiteralStyle: "literal",
		FoldedStyle:  "folded",
		FlowStyle:    "flow",
	}[s]
	if ok {
		return v
	}
	return "<unknown style>"
}

func ParseStyle(v string) (Style, error) {
	s, ok := map[string]Style{
		"plain":   PlainStyle,
		"quoted":  QuotedStyle,
		"literal": LiteralStyle,
		"folded":  FoldedStyle,
		"flow":    FlowStyle,
	}[v]
	if !ok {
		return 0, fmt.Errorf("unrecognized style %q", v)
	}
	return s, nil
}

func (s Style) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Style) UnmarshalText(d []byte) error {
	ps, err := ParseStyle(string(d))
	if err != nil {
		return err
	}
	*s = ps
	return nil
}
