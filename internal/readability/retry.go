package readability

import (
	"github.com/go-shiori/dom"
	"github.com/rs/zerolog"

	"extract-article-reader/internal/tree"
)

// grabWithRetry runs grab passes until one reaches the char threshold,
// restoring the body between passes.
func (p *parser) grabWithRetry() (attempt, error) {
	snapshot := dom.InnerHTML(p.body)
	restore := func() {
		if err := tree.SetInnerHTML(p.body, snapshot); err != nil {
			p.log.Warn().Err(err).Msg("restoring document snapshot")
			return
		}
		for _, ns := range tree.ElementsByTag(p.body, "noscript") {
			expandNoscript(ns)
		}
	}
	best, _, err := runPasses(p.grabArticle, restore, p.opts.CharThreshold, p.log)
	return best, err
}

// runPasses drives the flag relaxation. Each failed pass is recorded and the
// document restored before the next flag is cleared. When every flag is
// cleared the longest attempt wins, the earliest on ties. It returns the
// flag set of every pass it ran.
func runPasses(grab func(Flags) attempt, restore func(), charThreshold int, log zerolog.Logger) (attempt, []Flags, error) {
	flags := AllFlags()
	var attempts []attempt
	var trace []Flags
	for {
		trace = append(trace, flags)
		res := grab(flags)
		if res.root != nil && res.textLength >= charThreshold {
			return res, trace, nil
		}
		attempts = append(attempts, res)
		log.Debug().Int("textLength", res.textLength).Int("charThreshold", charThreshold).
			Stringer("flags", flags).Msg("pass below threshold")
		restore()

		next, ok := flags.Relax()
		if !ok {
			break
		}
		flags = next
	}

	best := attempts[0]
	for _, a := range attempts[1:] {
		if a.textLength > best.textLength {
			best = a
		}
	}
	if best.root == nil || best.textLength == 0 {
		return attempt{}, trace, ErrNoContent
	}
	log.Debug().Int("textLength", best.textLength).Int("attempts", len(attempts)).Msg("using longest attempt")
	return best, trace, nil
}
