// Package rules compiles categorization rule definitions into an executable
// matcher. The active rule set is an immutable snapshot behind an atomic
// pointer: categorization never blocks on a reload and never observes a
// half-updated rule list.
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/expense-tracker/internal/models"
)

// CompileError reports a rule whose pattern failed to compile. The rule is
// excluded from matching; every other rule still compiles.
type CompileError struct {
	RuleName string
	Err      error
}

func (e CompileError) Error() string {
	return fmt.Sprintf("rule %q: %v", e.RuleName, e.Err)
}

type compiledRule struct {
	name            string
	category        string
	priority        int
	includeInTotals bool

	// Exactly one of literal/re is set. Patterns without regex metacharacters
	// take the literal path: plain contains on the lowercased description.
	literal string
	re      *regexp.Regexp
}

func (r *compiledRule) matches(description string) bool {
	if r.re != nil {
		return r.re.MatchString(description)
	}
	return strings.Contains(strings.ToLower(description), r.literal)
}

// RuleSet is an immutable, priority-ordered snapshot of enabled rules.
type RuleSet struct {
	rules []compiledRule
}

// Len returns the number of matchable rules in the set.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// Compile builds a RuleSet from definitions: disabled rules are dropped,
// enabled rules are sorted by descending priority (stable, so ties keep their
// original order), and each pattern is compiled as a case-insensitive
// unanchored "description contains pattern" matcher. A pattern that is not a
// valid regular expression fails only its own rule.
func Compile(defs []models.RuleDefinition) (*RuleSet, []CompileError) {
	var errs []CompileError
	rs := &RuleSet{}
	for _, def := range defs {
		if !def.Enabled {
			continue
		}
		cr := compiledRule{
			name:            def.RuleName,
			category:        def.CategoryName,
			priority:        def.Priority,
			includeInTotals: def.IncludeInTotals,
		}
		if regexp.QuoteMeta(def.Pattern) == def.Pattern {
			cr.literal = strings.ToLower(def.Pattern)
		} else {
			re, err := regexp.Compile("(?i)" + def.Pattern)
			if err != nil {
				errs = append(errs, CompileError{RuleName: def.RuleName, Err: err})
				continue
			}
			cr.re = re
		}
		rs.rules = append(rs.rules, cr)
	}
	sort.SliceStable(rs.rules, func(i, j int) bool {
		return rs.rules[i].priority > rs.rules[j].priority
	})
	return rs, errs
}

// ValidatePattern reports whether a rule pattern would compile. Called at
// rule create/update time so the owner sees the failure, not the apply path.
func ValidatePattern(pattern string) error {
	if regexp.QuoteMeta(pattern) == pattern {
		return nil
	}
	_, err := regexp.Compile("(?i)" + pattern)
	return err
}

// Engine applies the active rule set to transactions. Safe for any number of
// concurrent Categorize callers and occasional Reload writers.
type Engine struct {
	active atomic.Pointer[RuleSet]
	log    zerolog.Logger
}

// NewEngine compiles the given definitions into the initial active set. An
// empty definition list is valid: every transaction keeps its parser default.
func NewEngine(log zerolog.Logger, defs []models.RuleDefinition) *Engine {
	e := &Engine{log: log}
	rs, errs := Compile(defs)
	for _, ce := range errs {
		log.Warn().Str("rule", ce.RuleName).Err(ce.Err).Msg("rule pattern failed to compile; rule disabled")
	}
	e.active.Store(rs)
	return e
}

// Reload recompiles and atomically swaps the active rule set. In-flight
// Categorize calls see either the old or the new set, never a mix.
func (e *Engine) Reload(defs []models.RuleDefinition) []CompileError {
	rs, errs := Compile(defs)
	for _, ce := range errs {
		e.log.Warn().Str("rule", ce.RuleName).Err(ce.Err).Msg("rule pattern failed to compile; rule disabled")
	}
	e.active.Store(rs)
	e.log.Info().Int("rules", rs.Len()).Msg("rule set reloaded")
	return errs
}

// Categorize evaluates rules in priority order and applies the first match to
// the transaction, setting Category and IncludeInTotals. Returns whether any
// rule matched; on no match the transaction keeps its parser-assigned values.
func (e *Engine) Categorize(t *models.Transaction) bool {
	rs := e.active.Load()
	for i := range rs.rules {
		if rs.rules[i].matches(t.Description) {
			t.Category = rs.rules[i].category
			t.IncludeInTotals = rs.rules[i].includeInTotals
			return true
		}
	}
	return false
}

// Match resolves a description against the active set without touching a
// transaction. ok is false when no enabled rule matches.
func (e *Engine) Match(description string) (category string, includeInTotals bool, ok bool) {
	rs := e.active.Load()
	for i := range rs.rules {
		if rs.rules[i].matches(description) {
			return rs.rules[i].category, rs.rules[i].includeInTotals, true
		}
	}
	return "", false, false
}

// RecategorizeAll reapplies the current rule set to every transaction in the
// slice, mutating in place, and returns the number of transactions a rule
// matched. Each call to Categorize reads the active pointer, so a reload
// landing mid-sweep is picked up prospectively; no lock is held across the
// scan.
func (e *Engine) RecategorizeAll(ts []models.Transaction) int {
	matched := 0
	for i := range ts {
		if e.Categorize(&ts[i]) {
			matched++
		}
	}
	return matched
}
