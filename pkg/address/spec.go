package address

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Parse errors. Both match ErrParse via errors.Is.
var (
	ErrParse          = errors.New("address parse error")
	ErrEmptyAddress   = fmt.Errorf("%w: empty address", ErrParse)
	ErrInvalidAddress = fmt.Errorf("%w: invalid address format", ErrParse)
)

// Separators of the address text format.
const (
	RegionSeparator   = ", "
	SectionSeparator  = " | "
	ModifierSeparator = ", "
)

// Kind tags what an address is used for.
type Kind uint8

const (
	// KindLocation marks an address naming a point on the body.
	KindLocation Kind = 1
	// KindArea marks an address naming a region of the body.
	KindArea Kind = 2
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLocation:
		return "location"
	case KindArea:
		return "area"
	default:
		return "unknown"
	}
}

// ParseKind parses a kind name ("location" or "area").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "location", "loc":
		return KindLocation, nil
	case "area":
		return KindArea, nil
	default:
		return 0, fmt.Errorf("unknown address kind %q", s)
	}
}

// OptionedName is a single region path element: a base region name plus an
// optional option token that selects a naming branch (e.g. "left").
type OptionedName struct {
	Option string
	Name   string
}

// String returns "option name", or just "name" when there is no option.
func (n OptionedName) String() string {
	if n.Option == "" {
		return n.Name
	}
	return n.Option + " " + n.Name
}

// Spec is an immutable hierarchical address: an ordered region path plus an
// unordered modifier set, tagged with its Kind.
//
// The zero value is an empty address of unknown kind.
type Spec struct {
	kind      Kind
	regions   []OptionedName
	modifiers map[string]struct{}
}

// New builds a Spec from already split tokens. Tokens are normalized the same
// way Parse normalizes them.
func New(kind Kind, regions []OptionedName, modifiers []string) (Spec, error) {
	if len(regions) == 0 {
		return Spec{}, ErrEmptyAddress
	}

	s := Spec{
		kind:      kind,
		regions:   make([]OptionedName, 0, len(regions)),
		modifiers: make(map[string]struct{}, len(modifiers)),
	}
	for i, r := range regions {
		name := normalize(r.Name)
		if name == "" || strings.ContainsAny(name, " ,|") {
			return Spec{}, fmt.Errorf("%w: region %d name %q", ErrInvalidAddress, i, r.Name)
		}
		opt := normalize(r.Option)
		if strings.ContainsAny(opt, " ,|") {
			return Spec{}, fmt.Errorf("%w: region %d option %q", ErrInvalidAddress, i, r.Option)
		}
		s.regions = append(s.regions, OptionedName{Option: opt, Name: name})
	}
	for _, m := range modifiers {
		m = normalize(m)
		if m == "" || strings.ContainsAny(m, ",|") {
			return Spec{}, fmt.Errorf("%w: modifier %q", ErrInvalidAddress, m)
		}
		s.modifiers[m] = struct{}{}
	}
	return s, nil
}

// Parse parses address text into a Spec of the given kind.
func Parse(kind Kind, text string) (Spec, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Spec{}, ErrEmptyAddress
	}

	sections := strings.Split(text, strings.TrimSpace(SectionSeparator))
	if len(sections) > 2 {
		return Spec{}, fmt.Errorf("%w: more than one modifier section", ErrInvalidAddress)
	}

	regionTokens := strings.Split(sections[0], strings.TrimSpace(RegionSeparator))
	regions := make([]OptionedName, 0, len(regionTokens))
	for _, tok := range regionTokens {
		r, err := parseRegionToken(tok)
		if err != nil {
			return Spec{}, err
		}
		regions = append(regions, r)
	}

	var modifiers []string
	if len(sections) == 2 {
		for _, tok := range strings.Split(sections[1], strings.TrimSpace(ModifierSeparator)) {
			tok = normalize(tok)
			if tok == "" {
				return Spec{}, fmt.Errorf("%w: empty modifier", ErrInvalidAddress)
			}
			modifiers = append(modifiers, tok)
		}
	}

	return New(kind, regions, modifiers)
}

// ParseLocation parses address text as a location.
func ParseLocation(text string) (Spec, error) {
	return Parse(KindLocation, text)
}

// ParseArea parses address text as an area.
func ParseArea(text string) (Spec, error) {
	return Parse(KindArea, text)
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(kind Kind, text string) Spec {
	s, err := Parse(kind, text)
	if err != nil {
		panic(fmt.Sprintf("address: Parse(%q): %v", text, err))
	}
	return s
}

func parseRegionToken(tok string) (OptionedName, error) {
	fields := strings.Fields(normalize(tok))
	switch len(fields) {
	case 1:
		return OptionedName{Name: fields[0]}, nil
	case 2:
		return OptionedName{Option: fields[0], Name: fields[1]}, nil
	case 0:
		return OptionedName{}, fmt.Errorf("%w: empty region", ErrInvalidAddress)
	default:
		return OptionedName{}, fmt.Errorf("%w: region %q has more than one option", ErrInvalidAddress, strings.TrimSpace(tok))
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Kind returns the kind tag.
func (s Spec) Kind() Kind {
	return s.kind
}

// WithKind returns a copy of s tagged with kind k.
func (s Spec) WithKind(k Kind) Spec {
	s.kind = k
	return s
}

// Regions returns a copy of the region path.
func (s Spec) Regions() []OptionedName {
	out := make([]OptionedName, len(s.regions))
	copy(out, s.regions)
	return out
}

// Depth returns the length of the region path.
func (s Spec) Depth() int {
	return len(s.regions)
}

// Modifiers returns the modifier set in sorted order.
func (s Spec) Modifiers() []string {
	out := make([]string, 0, len(s.modifiers))
	for m := range s.modifiers {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// HasModifier reports whether m is in the modifier set.
func (s Spec) HasModifier(m string) bool {
	_, ok := s.modifiers[normalize(m)]
	return ok
}

// IsZero reports whether s is the zero Spec.
func (s Spec) IsZero() bool {
	return len(s.regions) == 0 && len(s.modifiers) == 0
}

// Equal reports whether s and o name the same address. Region paths are
// compared element-wise in order, modifiers as sets. The kind tag is not
// part of the address value.
func (s Spec) Equal(o Spec) bool {
	if len(s.regions) != len(o.regions) || len(s.modifiers) != len(o.modifiers) {
		return false
	}
	for i := range s.regions {
		if s.regions[i] != o.regions[i] {
			return false
		}
	}
	for m := range s.modifiers {
		if _, ok := o.modifiers[m]; !ok {
			return false
		}
	}
	return true
}

// String joins the address back into its text form. Modifiers are written in
// sorted order.
func (s Spec) String() string {
	var sb strings.Builder
	for i, r := range s.regions {
		if i > 0 {
			sb.WriteString(RegionSeparator)
		}
		sb.WriteString(r.String())
	}
	if len(s.modifiers) > 0 {
		sb.WriteString(SectionSeparator)
		sb.WriteString(strings.Join(s.Modifiers(), ModifierSeparator))
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler.
func (s Spec) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
