// Package urlmatch matches page URLs against site URI patterns. A pattern
// is a regular expression in which every "*" stands for any sequence; the
// rest of the pattern is not escaped and is anchored at both ends.
package urlmatch

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/labelkit/internal/logging"
	"github.com/ziadkadry99/labelkit/internal/metrics"
	"github.com/ziadkadry99/labelkit/internal/model"
)

// PatternError reports a pattern that does not compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid uri pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Compile turns pattern into an anchored regular expression.
func Compile(pattern string) (*regexp.Regexp, error) {
	expr := "^" + strings.ReplaceAll(pattern, "*", ".*") + "$"
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	return re, nil
}

// Match reports whether url matches pattern.
func Match(pattern, url string) (bool, error) {
	re, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(url), nil
}

// FirstMatch returns the first site, in list order, whose pattern matches
// url. Sites with invalid patterns are logged and skipped.
func FirstMatch(sites []model.Site, url string, log *zap.Logger) (model.Site, bool) {
	log = logging.OrNop(log)
	for _, s := range sites {
		ok, err := Match(s.URIPattern, url)
		if err != nil {
			log.Warn("skipping site with invalid uri pattern",
				zap.String("site", s.Name), zap.String("pattern", s.URIPattern), zap.Error(err))
			metrics.ObserveMatch(metrics.MatchInvalidPattern)
			continue
		}
		if ok {
			metrics.ObserveMatch(metrics.MatchMatched)
			return s, true
		}
	}
	metrics.ObserveMatch(metrics.MatchUnmatched)
	return model.Site{}, false
}
