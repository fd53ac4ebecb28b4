package pipeline

import (
	"fmt"
	"net/url"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/util"
)

// DefaultFallbackURL derives a search-engine query from the journal name when
// no homepage is known. The single %s verb receives the URL-encoded name.
const DefaultFallbackURL = "https://www.google.com/search?q=Journal+%s"

// ValidateFallbackTemplate checks the template carries exactly one %s verb and
// no other formatting directives, so a bad template fails the run instead of
// stamping Sprintf noise into every derived URL.
func ValidateFallbackTemplate(template string) error {
	verbs := 0
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		if i+1 < len(template) && template[i+1] == 's' {
			verbs++
			i++
			continue
		}
		return fmt.Errorf("fallback URL template %q: only the %%s verb is allowed", template)
	}
	if verbs != 1 {
		return fmt.Errorf("fallback URL template %q: exactly one %%s verb required, found %d", template, verbs)
	}
	return nil
}

// ResolveWebsite returns the website unchanged when it carries a value, and a
// deterministically derived substitute otherwise. The second return is true
// when the journal name itself was missing; the substitute is still produced,
// but the caller should surface the row.
func ResolveWebsite(website, name, template string) (string, bool) {
	if template == "" {
		template = DefaultFallbackURL
	}
	if !util.IsBlank(website) && !util.IsSentinel(website) {
		return website, false
	}
	missingName := util.IsBlank(name) || util.IsSentinel(name)
	if missingName {
		name = ""
	}
	return fmt.Sprintf(template, url.QueryEscape(name)), missingName
}

// applyWebsiteFallback rewrites the website column of every row in place on a
// fresh table, collecting a warning per row that had no name to derive from.
func applyWebsiteFallback(t *table.Table, template string) (*table.Table, Warnings) {
	out := table.New(t.Columns...)
	var warnings Warnings
	for _, row := range t.Rows {
		r := row.Clone()
		resolved, missingName := ResolveWebsite(r[internal.ColumnWebsite], r[internal.ColumnJournalName], template)
		r[internal.ColumnWebsite] = resolved
		if missingName {
			warnings = append(warnings, Warning{
				Kind:   WarnMissingName,
				Source: internal.ColumnWebsite,
				Detail: "website fallback derived without a journal name",
			})
		}
		out.Append(r)
	}
	return out, warnings
}
