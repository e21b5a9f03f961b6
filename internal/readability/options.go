package readability

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"extract-article-reader/internal/siteconfig"
)

// Defaults for Options fields left at their zero value.
const (
	DefaultNbTopCandidates = 5
	DefaultCharThreshold   = 500
)

// defaultClassesToPreserve survive the class filter of the final pass.
var defaultClassesToPreserve = []string{"page", pickedClass}

// Options configures one Parse call.
type Options struct {
	// Debug enables the trace logger. Without it the engine logs nothing.
	Debug bool
	// Logger receives trace events when Debug is set. Nil uses zerolog's
	// global logger.
	Logger *zerolog.Logger

	// MaxElemsToParse aborts parsing of documents with more elements.
	// Zero means no limit.
	MaxElemsToParse int
	// NbTopCandidates bounds the candidate list kept during scoring.
	NbTopCandidates int
	// CharThreshold is the text length a pass must reach to be accepted.
	CharThreshold int
	// ClassesToPreserve are kept by the class filter in addition to the
	// defaults. An entry prefixed with "re:" is a regular expression.
	ClassesToPreserve []string

	// Root is an alternate document searched for an image's dimensions when
	// the image itself carries none, matched by src.
	Root *html.Node

	// Site holds resolved per-site overrides. Nil means none.
	Site *siteconfig.WebsiteConfig
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.NbTopCandidates <= 0 {
		out.NbTopCandidates = DefaultNbTopCandidates
	}
	if out.CharThreshold <= 0 {
		out.CharThreshold = DefaultCharThreshold
	}
	if out.Site == nil {
		out.Site = &siteconfig.WebsiteConfig{}
	}
	return out
}

func (o Options) logger() zerolog.Logger {
	if !o.Debug {
		return zerolog.Nop()
	}
	if o.Logger != nil {
		return o.Logger.With().Str("component", "readability").Logger()
	}
	return zlog.Logger.With().Str("component", "readability").Logger()
}

// classMatcher decides which class names survive the final pass.
type classMatcher struct {
	literal  map[string]bool
	patterns []*regexp.Regexp
}

func newClassMatcher(extra []string, log zerolog.Logger) classMatcher {
	m := classMatcher{literal: make(map[string]bool)}
	for _, c := range defaultClassesToPreserve {
		m.literal[c] = true
	}
	for _, c := range extra {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if expr, ok := strings.CutPrefix(c, "re:"); ok {
			rx, err := regexp.Compile(expr)
			if err != nil {
				log.Warn().Err(err).Str("pattern", expr).Msg("ignoring invalid class pattern")
				continue
			}
			m.patterns = append(m.patterns, rx)
			continue
		}
		m.literal[c] = true
	}
	return m
}

func (m classMatcher) keep(class string) bool {
	if m.literal[class] {
		return true
	}
	for _, rx := range m.patterns {
		if rx.MatchString(class) {
			return true
		}
	}
	return false
}

// Flags are the heuristics toggled by the retry controller.
type Flags struct {
	StripUnlikelys     bool
	WeightClasses      bool
	CleanConditionally bool
}

// AllFlags is the state of the first pass.
func AllFlags() Flags {
	return Flags{StripUnlikelys: true, WeightClasses: true, CleanConditionally: true}
}

// Relax clears the first still-set flag in the order StripUnlikelys,
// WeightClasses, CleanConditionally. It reports false once none is left.
func (f Flags) Relax() (Flags, bool) {
	switch {
	case f.StripUnlikelys:
		f.StripUnlikelys = false
	case f.WeightClasses:
		f.WeightClasses = false
	case f.CleanConditionally:
		f.CleanConditionally = false
	default:
		return f, false
	}
	return f, true
}

func (f Flags) String() string {
	var parts []string
	if f.StripUnlikelys {
		parts = append(parts, "stripUnlikelys")
	}
	if f.WeightClasses {
		parts = append(parts, "weightClasses")
	}
	if f.CleanConditionally {
		parts = append(parts, "cleanConditionally")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
