package feed

import (
	"slices"
	"strings"

	"github.com/rshade/rds-pricing-catalog/internal/catalog"
)

// Enumerate lists every feed described by cfg: on-demand feeds first, then
// reserved-term feeds, then legacy reserved feeds. Within each group the
// order follows the tables, and a previous-generation URL directly follows
// its current-generation URL. A URL shared by several editions appears once,
// at its first position, with the editions merged into Meta.Engines.
func Enumerate(cfg *Config) []Source {
	// cfg was validated on load, so enumerate cannot report a conflict here.
	sources, _ := enumerate(cfg)
	return sources
}

func enumerate(cfg *Config) ([]Source, error) {
	var raw []Source
	for _, f := range cfg.families {
		raw = append(raw, onDemandSources(cfg, f)...)
	}
	for _, f := range cfg.families {
		raw = append(raw, reservedTermSources(cfg, f)...)
	}
	for _, f := range cfg.families {
		raw = append(raw, legacySources(cfg, f)...)
	}
	return dedupe(raw)
}

func onDemandSources(cfg *Config, f family) []Source {
	var out []Source
	for _, ed := range f.onDemand {
		for _, token := range ed.deployments {
			topology := topologyOf(token, f.cfg.SingleAZOnly)
			urlToken := token
			if f.cfg.StripMultiAZSuffix {
				urlToken = strings.ReplaceAll(token, "-multiAZ", "")
			}
			meta := Meta{
				Family:      f.id,
				Engines:     []catalog.Engine{ed.engine},
				Utilization: catalog.OnDemand,
				Topology:    topology,
				License:     licenseOf(token),
				Deployment:  token,
			}
			vars := urlVars{family: f.id.String(), deployment: urlToken, multiAZ: topology == catalog.MultiAZ}
			out = append(out, Source{URL: cfg.BaseURL + vars.expand(f.cfg.OnDemandURL), Shape: ShapeOnDemand, Meta: meta})

			if f.cfg.OnDemandPreviousURL == "" || slices.Contains(f.cfg.OnDemandPreviousSkip, urlToken) {
				continue
			}
			prev := meta
			prev.Engines = slices.Clone(meta.Engines)
			prev.PreviousGeneration = true
			out = append(out, Source{URL: cfg.BaseURL + vars.expand(f.cfg.OnDemandPreviousURL), Shape: ShapeOnDemand, Meta: prev})
		}
	}
	return out
}

func reservedTermSources(cfg *Config, f family) []Source {
	var out []Source
	for _, ed := range f.term {
		urlName, ok := cfg.urlNames[ed.engine]
		if !ok {
			urlName = strings.ReplaceAll(ed.engine.String(), "_", "-")
		}
		for _, token := range ed.deployments {
			topology := topologyOf(token, f.cfg.SingleAZOnly)
			vars := urlVars{family: f.id.String(), deployment: token, engineURL: urlName, multiAZ: topology == catalog.MultiAZ}
			out = append(out, Source{
				URL:   cfg.BaseURL + vars.expand(cfg.ReservedTermURL),
				Shape: ShapeReservedTerm,
				Meta: Meta{
					Family:      f.id,
					Engines:     slices.Clone(cfg.aliases[ed.engine]),
					Utilization: catalog.OnDemand,
					Topology:    topology,
					License:     licenseOf(token),
					Deployment:  token,
				},
			})
		}
	}
	return out
}

func legacySources(cfg *Config, f family) []Source {
	if !f.cfg.LegacyReserved {
		return nil
	}
	var out []Source
	for _, ed := range f.legacy {
		tokens := ed.deployments
		if len(tokens) == 0 {
			tokens = []string{""}
		}
		for _, util := range f.utilizations {
			for _, token := range tokens {
				meta := Meta{
					Family:           f.id,
					Engines:          []catalog.Engine{ed.engine},
					Utilization:      util,
					TopologyFromFeed: true,
					License:          licenseOf(token),
					Deployment:       token,
				}
				vars := urlVars{family: f.id.String(), deployment: token, utilization: util.String()}
				out = append(out, Source{URL: cfg.BaseURL + vars.expand(f.cfg.LegacyURL), Shape: ShapeReservedLegacy, Meta: meta})

				if f.cfg.LegacyPreviousURL == "" {
					continue
				}
				prev := meta
				prev.Engines = slices.Clone(meta.Engines)
				prev.PreviousGeneration = true
				out = append(out, Source{URL: cfg.BaseURL + vars.expand(f.cfg.LegacyPreviousURL), Shape: ShapeReservedLegacy, Meta: prev})
			}
		}
	}
	return out
}

// dedupe merges sources that share a URL. Sharing is only allowed when the
// shape and every fact but the engine list agree.
func dedupe(raw []Source) ([]Source, error) {
	out := make([]Source, 0, len(raw))
	index := make(map[string]int, len(raw))
	for _, src := range raw {
		i, ok := index[src.URL]
		if !ok {
			index[src.URL] = len(out)
			out = append(out, src)
			continue
		}
		first := &out[i]
		if first.Shape != src.Shape || !first.Meta.sameFacts(src.Meta) {
			return nil, gap("families", src.URL, "URL listed with contradictory metadata (%s %s vs %s %s)",
				first.Shape, describe(first.Meta), src.Shape, describe(src.Meta))
		}
		first.Meta.addEngines(src.Meta.Engines)
	}
	return out, nil
}

func describe(m Meta) string {
	return m.Topology.String() + "/" + m.License.String()
}

// topologyOf reads the topology from a deployment token. Families flagged
// single_az_only are hosted on multi-AZ style URLs but priced as single-AZ.
func topologyOf(token string, singleAZOnly bool) catalog.Topology {
	if !singleAZOnly && strings.Contains(strings.ToLower(token), "multiaz") {
		return catalog.MultiAZ
	}
	return catalog.SingleAZ
}

func licenseOf(token string) catalog.License {
	if strings.Contains(token, "byol") {
		return catalog.BYOL
	}
	return catalog.LicenseIncluded
}

type urlVars struct {
	family      string
	deployment  string
	utilization string
	engineURL   string
	multiAZ     bool
}

func (v urlVars) expand(pattern string) string {
	maz := ""
	if v.multiAZ {
		maz = "-maz"
	}
	return strings.NewReplacer(
		"{family}", v.family,
		"{deployment}", v.deployment,
		"{utilization}", v.utilization,
		"{engine_url}", v.engineURL,
		"{maz}", maz,
	).Replace(pattern)
}
