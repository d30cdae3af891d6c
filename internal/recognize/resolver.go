package recognize

import (
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/rhm-kanzlei/posteingang/constants"
	"github.com/rhm-kanzlei/posteingang/internal/register"
)

// AssignmentSource records which resolution rule produced the caseworker
// assignment. Useful in the run manifest when assignments get reviewed.
type AssignmentSource string

const (
	AssignedBySuffix    AssignmentSource = "suffix"
	AssignedByRegister  AssignmentSource = "register"
	AssignedByName      AssignmentSource = "name"
	AssignedBySeparator AssignmentSource = "separator"
	AssignedNone        AssignmentSource = "none"
)

// Assignment is the final caseworker routing for a document. Code is a
// canonical caseworker code or the unassigned sentinel.
type Assignment struct {
	Code   string
	Source AssignmentSource
}

type aliasEntry struct {
	alias string
	code  string
}

// Resolver determines the responsible caseworker for a document. The alias
// table is fixed at construction and sorted longest-first once, so a
// multi-word alias always beats a surname that happens to be its substring.
type Resolver struct {
	aliases []aliasEntry
	logger  *slog.Logger
}

// NewResolver builds a Resolver from a lowercase alias-to-code table.
// Pass constants.NameAliases() for the production table; tests substitute
// their own.
func NewResolver(aliases map[string]string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	entries := make([]aliasEntry, 0, len(aliases))
	for alias, code := range aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias == "" {
			continue
		}
		if canonical, ok := constants.CanonicalizeCode(code); ok {
			code = canonical
		}
		entries = append(entries, aliasEntry{alias: alias, code: code})
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].alias) != len(entries[j].alias) {
			return len(entries[i].alias) > len(entries[j].alias)
		}
		return entries[i].alias < entries[j].alias
	})
	return &Resolver{aliases: entries, logger: logger}
}

// Resolve applies the resolution rules in fixed order: suffix on the
// winning candidate, register record for the recognized stem, personal-name
// scan over the full text, separator-page code, unassigned sentinel. The
// candidate may be nil when recognition found nothing.
func (r *Resolver) Resolve(text string, cand *Candidate, reg *register.Snapshot, separatorCode string) Assignment {
	a := r.resolve(text, cand, reg, separatorCode)
	r.logger.Debug("resolve.done",
		slog.String("code", a.Code),
		slog.String("source", string(a.Source)))
	return a
}

func (r *Resolver) resolve(text string, cand *Candidate, reg *register.Snapshot, separatorCode string) Assignment {
	if cand != nil && cand.Suffix != "" {
		return Assignment{Code: cand.Suffix, Source: AssignedBySuffix}
	}
	if cand != nil && reg != nil {
		if rec, ok := reg.Lookup(cand.Stem); ok {
			if code, known := constants.CanonicalizeCode(rec.CaseworkerCode); known {
				return Assignment{Code: code, Source: AssignedByRegister}
			}
		}
	}
	if code, ok := r.scanNames(text); ok {
		return Assignment{Code: code, Source: AssignedByName}
	}
	if code, ok := constants.CanonicalizeCode(separatorCode); ok {
		return Assignment{Code: code, Source: AssignedBySeparator}
	}
	return Assignment{Code: constants.Unassigned, Source: AssignedNone}
}

// scanNames looks for caseworker name mentions anywhere in the text.
// Matching over the whole body trades precision for recall; a stray
// surname in running text will match, but only on word boundaries.
func (r *Resolver) scanNames(text string) (string, bool) {
	haystack := normalizeForNames(text)
	for _, e := range r.aliases {
		if containsWord(haystack, e.alias) {
			return e.code, true
		}
	}
	return "", false
}

// containsWord reports whether needle occurs in haystack with no letter
// or digit directly adjacent, so "christian" does not hit inside
// "christiane".
func containsWord(haystack, needle string) bool {
	for from := 0; ; {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return false
		}
		i += from
		end := i + len(needle)
		before, hasBefore := runeBefore(haystack, i)
		after, hasAfter := runeAt(haystack, end)
		if (!hasBefore || !isWordRune(before)) && (!hasAfter || !isWordRune(after)) {
			return true
		}
		from = end
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// normalizeForNames lowercases and folds OCR underscore artifacts onto
// hyphens so "sven_bryde" still hits the "sven-bryde" alias.
func normalizeForNames(text string) string {
	return strings.ToLower(strings.ReplaceAll(text, "_", "-"))
}
