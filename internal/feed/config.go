// Package feed describes the RDS pricing feeds: which URLs exist, what each
// one prices, and how each of the three feed shapes is parsed into
// observations.
package feed

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rshade/rds-pricing-catalog/internal/catalog"
)

//go:embed feeds.yaml
var defaultFeedsYAML string

//go:embed names.yaml
var defaultNamesYAML string

// ErrConfigurationGap marks a feed table that references an entry missing
// from a table it depends on. Gaps are maintenance errors and are reported
// when the configuration is loaded, never during ingestion.
var ErrConfigurationGap = errors.New("feed configuration gap")

// ConfigurationGapError describes one missing or inconsistent table entry.
type ConfigurationGapError struct {
	Table  string
	Entry  string
	Reason string
}

func (e *ConfigurationGapError) Error() string {
	return fmt.Sprintf("feed configuration gap in %s: %s: %s", e.Table, e.Entry, e.Reason)
}

func (e *ConfigurationGapError) Unwrap() error { return ErrConfigurationGap }

func gap(table, entry, format string, args ...any) error {
	return &ConfigurationGapError{Table: table, Entry: entry, Reason: fmt.Sprintf(format, args...)}
}

// Config is the feed table set. It is loaded once and treated as read-only;
// LoadConfig and DefaultConfig return validated values only.
type Config struct {
	BaseURL  string `yaml:"base_url"`
	Currency string `yaml:"currency"`

	ReservedTermURL      string              `yaml:"reserved_term_url"`
	ReservedTermURLNames map[string]string   `yaml:"reserved_term_url_names"`
	ReservedTermAliases  map[string][]string `yaml:"reserved_term_aliases"`

	Families []FamilyConfig `yaml:"families"`

	InstanceNames          []InstanceName `yaml:"instance_names"`
	AcceptUnlistedAPINames bool           `yaml:"accept_unlisted_api_names"`

	families []family
	aliases  map[catalog.Engine][]catalog.Engine
	urlNames map[catalog.Engine]string
	names    *NameTable
}

// FamilyConfig lists the feeds of one engine family.
type FamilyConfig struct {
	Name string `yaml:"name"`

	OnDemandURL          string   `yaml:"on_demand_url"`
	OnDemandPreviousURL  string   `yaml:"on_demand_previous_url"`
	OnDemandPreviousSkip []string `yaml:"on_demand_previous_skip"`
	StripMultiAZSuffix   bool     `yaml:"strip_multiaz_suffix"`
	SingleAZOnly         bool     `yaml:"single_az_only"`

	LegacyReserved     bool     `yaml:"legacy_reserved"`
	LegacyURL          string   `yaml:"legacy_url"`
	LegacyPreviousURL  string   `yaml:"legacy_previous_url"`
	LegacyUtilizations []string `yaml:"legacy_utilizations"`

	OnDemand       []EditionConfig `yaml:"on_demand"`
	ReservedLegacy []EditionConfig `yaml:"reserved_legacy"`
	ReservedTerm   []EditionConfig `yaml:"reserved_term"`
}

// EditionConfig lists the deployment tokens fetched for one engine.
type EditionConfig struct {
	Engine      string   `yaml:"engine"`
	Deployments []string `yaml:"deployments"`
}

type family struct {
	id           catalog.EngineFamily
	cfg          *FamilyConfig
	utilizations []catalog.Reservation
	onDemand     []edition
	legacy       []edition
	term         []edition
}

type edition struct {
	engine      catalog.Engine
	deployments []string
}

// DefaultConfig returns the embedded feed tables.
func DefaultConfig() (*Config, error) {
	return LoadConfig(DefaultFeedTables(), DefaultNameTable())
}

// DefaultFeedTables returns the embedded feed tables document.
func DefaultFeedTables() io.Reader { return strings.NewReader(defaultFeedsYAML) }

// DefaultNameTable returns the embedded instance-name document.
func DefaultNameTable() io.Reader { return strings.NewReader(defaultNamesYAML) }

// LoadConfig decodes feed tables from feeds and the instance-name table from
// names, then validates them. names may be nil when feeds already carries an
// instance_names section.
func LoadConfig(feeds, names io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(feeds).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode feed tables: %w", err)
	}
	if names != nil {
		var nameCfg struct {
			InstanceNames []InstanceName `yaml:"instance_names"`
		}
		if err := yaml.NewDecoder(names).Decode(&nameCfg); err != nil {
			return nil, fmt.Errorf("failed to decode instance names: %w", err)
		}
		cfg.InstanceNames = append(cfg.InstanceNames, nameCfg.InstanceNames...)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Names returns the instance-name table.
func (c *Config) Names() *NameTable { return c.names }

// Aliases returns the engines a reserved-term observation for engine is written to.
func (c *Config) Aliases(engine catalog.Engine) []catalog.Engine {
	return c.aliases[engine]
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return gap("base_url", "", "base URL is required")
	}
	if c.Currency == "" {
		return gap("currency", "", "currency is required")
	}

	var errs []error

	c.urlNames = make(map[catalog.Engine]string, len(c.ReservedTermURLNames))
	for name, urlName := range c.ReservedTermURLNames {
		engine, err := catalog.ParseEngine(name)
		if err != nil {
			errs = append(errs, gap("reserved_term_url_names", name, "%v", err))
			continue
		}
		c.urlNames[engine] = urlName
	}

	c.aliases = make(map[catalog.Engine][]catalog.Engine, len(c.ReservedTermAliases))
	for name, group := range c.ReservedTermAliases {
		engine, err := catalog.ParseEngine(name)
		if err != nil {
			errs = append(errs, gap("reserved_term_aliases", name, "%v", err))
			continue
		}
		if len(group) == 0 {
			errs = append(errs, gap("reserved_term_aliases", name, "alias group is empty"))
			continue
		}
		for _, member := range group {
			m, err := catalog.ParseEngine(member)
			if err != nil {
				errs = append(errs, gap("reserved_term_aliases", name, "%v", err))
				continue
			}
			if m.Family() != engine.Family() {
				errs = append(errs, gap("reserved_term_aliases", name, "alias %s belongs to family %s", m, m.Family()))
				continue
			}
			c.aliases[engine] = append(c.aliases[engine], m)
		}
	}

	seen := make(map[catalog.EngineFamily]bool)
	c.families = make([]family, 0, len(c.Families))
	for i := range c.Families {
		fc := &c.Families[i]
		f, err := c.validateFamily(fc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[f.id] {
			errs = append(errs, gap("families", fc.Name, "family listed twice"))
			continue
		}
		seen[f.id] = true
		c.families = append(c.families, f)
	}

	names, err := NewNameTable(c.InstanceNames, c.AcceptUnlistedAPINames)
	if err != nil {
		errs = append(errs, err)
	}
	c.names = names

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if _, err := enumerate(c); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFamily(fc *FamilyConfig) (family, error) {
	id, err := catalog.ParseEngineFamily(fc.Name)
	if err != nil {
		return family{}, gap("families", fc.Name, "%v", err)
	}
	f := family{id: id, cfg: fc}

	if len(fc.OnDemand) > 0 && fc.OnDemandURL == "" {
		return family{}, gap("families", fc.Name, "on_demand entries without on_demand_url")
	}
	if f.onDemand, err = parseEditions(id, "on_demand", fc.OnDemand, true); err != nil {
		return family{}, err
	}

	if fc.LegacyReserved {
		if fc.LegacyURL == "" {
			return family{}, gap("families", fc.Name, "legacy_reserved without legacy_url")
		}
		if len(fc.LegacyUtilizations) == 0 {
			return family{}, gap("families", fc.Name, "legacy_reserved without legacy_utilizations")
		}
		for _, u := range fc.LegacyUtilizations {
			r, err := catalog.ParseUtilization(u)
			if err != nil {
				return family{}, gap("families", fc.Name, "%v", err)
			}
			f.utilizations = append(f.utilizations, r)
		}
		if f.legacy, err = parseEditions(id, "reserved_legacy", fc.ReservedLegacy, false); err != nil {
			return family{}, err
		}
	} else if len(fc.ReservedLegacy) > 0 {
		return family{}, gap("families", fc.Name, "reserved_legacy entries for a family without legacy reserved pricing")
	}

	if len(fc.ReservedTerm) > 0 && c.ReservedTermURL == "" {
		return family{}, gap("reserved_term_url", fc.Name, "reserved_term entries without reserved_term_url")
	}
	if f.term, err = parseEditions(id, "reserved_term", fc.ReservedTerm, true); err != nil {
		return family{}, err
	}
	for _, ed := range f.term {
		if _, ok := c.aliases[ed.engine]; !ok {
			return family{}, gap("reserved_term_aliases", ed.engine.String(), "engine has reserved_term feeds but no alias group")
		}
	}
	return f, nil
}

func parseEditions(id catalog.EngineFamily, table string, in []EditionConfig, needDeployments bool) ([]edition, error) {
	out := make([]edition, 0, len(in))
	for _, ec := range in {
		engine, err := catalog.ParseEngine(ec.Engine)
		if err != nil {
			return nil, gap(table, ec.Engine, "%v", err)
		}
		if engine.Family() != id {
			return nil, gap(table, ec.Engine, "engine belongs to family %s, listed under %s", engine.Family(), id)
		}
		if needDeployments && len(ec.Deployments) == 0 {
			return nil, gap(table, ec.Engine, "no deployments listed")
		}
		out = append(out, edition{engine: engine, deployments: ec.Deployments})
	}
	return out, nil
}
