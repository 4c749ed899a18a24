package feed

import (
	"regexp"
	"strings"
)

// InstanceName is one entry of the instance-name table.
type InstanceName struct {
	APIName     string `yaml:"api_name"`
	DisplayName string `yaml:"display_name"`
	// Labels are "type/tier" pairs used by older on-demand feeds.
	Labels []string `yaml:"labels"`
	// ReservedLabels are size labels used by older reserved feeds.
	ReservedLabels []string `yaml:"reserved_labels"`
}

// Name is a resolved instance identity.
type Name struct {
	APIName     string
	DisplayName string
}

type labelPair struct {
	typeLabel string
	tierLabel string
}

var apiNamePattern = regexp.MustCompile(`^db\.[a-z0-9-]+\.[a-z0-9]+$`)

// NameTable maps vendor labels to stable instance identities.
type NameTable struct {
	byAPI          map[string]Name
	byPair         map[labelPair]Name
	byReserved     map[string]Name
	acceptUnlisted bool
}

// NewNameTable indexes entries. When acceptUnlisted is set, a label that is
// shaped like an API name ("db.x1e.32xlarge") resolves even without an entry,
// using the API name as display name.
func NewNameTable(entries []InstanceName, acceptUnlisted bool) (*NameTable, error) {
	t := &NameTable{
		byAPI:          make(map[string]Name, len(entries)),
		byPair:         make(map[labelPair]Name),
		byReserved:     make(map[string]Name),
		acceptUnlisted: acceptUnlisted,
	}
	for _, e := range entries {
		if e.APIName == "" {
			return nil, gap("instance_names", e.DisplayName, "api_name is required")
		}
		if _, dup := t.byAPI[e.APIName]; dup {
			return nil, gap("instance_names", e.APIName, "listed twice")
		}
		name := Name{APIName: e.APIName, DisplayName: e.DisplayName}
		if name.DisplayName == "" {
			name.DisplayName = e.APIName
		}
		t.byAPI[e.APIName] = name

		for _, label := range e.Labels {
			typeLabel, tierLabel, ok := strings.Cut(label, "/")
			if !ok || typeLabel == "" || tierLabel == "" {
				return nil, gap("instance_names", e.APIName, "label %q is not a type/tier pair", label)
			}
			pair := labelPair{typeLabel: typeLabel, tierLabel: tierLabel}
			if prev, dup := t.byPair[pair]; dup {
				return nil, gap("instance_names", e.APIName, "label %q already maps to %s", label, prev.APIName)
			}
			t.byPair[pair] = name
		}
		for _, label := range e.ReservedLabels {
			if prev, dup := t.byReserved[label]; dup {
				return nil, gap("instance_names", e.APIName, "reserved label %q already maps to %s", label, prev.APIName)
			}
			t.byReserved[label] = name
		}
	}
	return t, nil
}

// Resolve maps a vendor label pair to an instance identity. ok is false when
// the table has no entry, which callers treat as an unknown type.
//
// On-demand lookups try the (type, tier) pair, then the tier label as an API
// name, then the type label as an API name. Reserved lookups try the tier
// (size) label as a reserved label, then as an API name, then the type label
// as an API name; current-format reserved feeds pass the API name as
// typeLabel and leave tierLabel empty.
func (t *NameTable) Resolve(typeLabel, tierLabel string, reserved bool) (Name, bool) {
	if reserved {
		if n, ok := t.byReserved[tierLabel]; ok {
			return n, true
		}
	} else if n, ok := t.byPair[labelPair{typeLabel: typeLabel, tierLabel: tierLabel}]; ok {
		return n, true
	}
	for _, label := range []string{tierLabel, typeLabel} {
		if n, ok := t.byAPI[label]; ok {
			return n, true
		}
	}
	if t.acceptUnlisted {
		for _, label := range []string{tierLabel, typeLabel} {
			if apiNamePattern.MatchString(label) {
				return Name{APIName: label, DisplayName: label}, true
			}
		}
	}
	return Name{}, false
}

// Len returns the number of listed API names.
func (t *NameTable) Len() int { return len(t.byAPI) }
