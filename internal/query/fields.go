package query

// FieldSet is an immutable allow-list of document field names
type FieldSet struct {
	names []string
	index map[string]struct{}
}

// NewFieldSet builds a FieldSet from the given names. Duplicates are dropped.
func NewFieldSet(names ...string) FieldSet {
	s := FieldSet{index: make(map[string]struct{}, len(names))}
	for _, name := range names {
		if _, ok := s.index[name]; ok {
			continue
		}
		s.index[name] = struct{}{}
		s.names = append(s.names, name)
	}
	return s
}

// Allows reports whether name is in the set
func (s FieldSet) Allows(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Keep returns the allowed names of the input in their original order,
// without duplicates. The result is nil when nothing is allowed.
func (s FieldSet) Keep(names []string) []string {
	var kept []string
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if !s.Allows(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		kept = append(kept, name)
	}
	return kept
}

// Names returns a copy of the names in insertion order
func (s FieldSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// LeadFields returns the fields of a lead that may be filtered, sorted,
// searched or projected.
func LeadFields() FieldSet {
	return NewFieldSet(
		"_id",
		"leadOwner",
		"fullName",
		"salutation",
		"email",
		"website",
		"contactNumber",
		"contactExtension",
		"alternateNumber",
		"alternateExtension",
		"companyName",
		"designation",
		"companySize",
		"industryType",
		"status",
		"source",
		"sequenceName",
		"score",
		"scoreTrend",
		"preferredChannel",
		"lastActivityDate",
		"createdDate",
		"nextStage",
		"description",
		"linkedinUrl",
		"twitterUrl",
		"annualRevenue",
		"updatedBy",
		"createdAt",
		"updatedAt",
		"isArchived",
	)
}

// LeadDateFields returns the lead fields that accept preset and custom date
// ranges.
func LeadDateFields() FieldSet {
	return NewFieldSet("createdDate", "lastActivityDate", "createdAt", "updatedAt")
}

// DefaultSearchFields are matched by a free-text search that names no columns
var DefaultSearchFields = []string{"fullName", "email", "companyName", "designation"}

// Kind is the stored type of a document field
type Kind int

const (
	KindString Kind = iota
	KindObjectID
	KindNumber
	KindBool
	KindTime
)

// FieldKinds maps field names to their stored type. Fields it does not name
// are strings.
type FieldKinds struct {
	kinds map[string]Kind
}

// NewFieldKinds builds FieldKinds from a name to kind map. The map is copied.
func NewFieldKinds(kinds map[string]Kind) FieldKinds {
	k := FieldKinds{kinds: make(map[string]Kind, len(kinds))}
	for name, kind := range kinds {
		k.kinds[name] = kind
	}
	return k
}

// Of returns the kind of field
func (k FieldKinds) Of(field string) Kind {
	return k.kinds[field]
}

func (k FieldKinds) untyped() bool {
	return k.kinds == nil
}

// LeadFieldKinds returns the stored types of the non-string lead fields
func LeadFieldKinds() FieldKinds {
	return NewFieldKinds(map[string]Kind{
		"_id":              KindObjectID,
		"score":            KindNumber,
		"annualRevenue":    KindNumber,
		"isArchived":       KindBool,
		"lastActivityDate": KindTime,
		"createdDate":      KindTime,
		"createdAt":        KindTime,
		"updatedAt":        KindTime,
	})
}
