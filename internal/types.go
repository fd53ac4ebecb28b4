package internal

// Canonical column names shared by the loaders and the engine. Input files
// vary in casing and layout; loaders map whatever they find onto these names
// so the rest of the pipeline can address columns without guessing.
const (
	ColumnJournalName     = "Journal Name"
	ColumnJournalType     = "Journal Type"
	ColumnWebsite         = "Journal Website"
	ColumnPublisher       = "Publisher Name"
	ColumnAgreement       = "Agreement"
	ColumnAgreementKey    = "Agreement Key"
	ColumnFieldOfResearch = "Field of Research"
	ColumnSourceFile      = "Source"

	// ColumnIdentifier holds one normalized ISSN per row after unpivoting.
	ColumnIdentifier = "ISSN/EISSN"

	// ColumnNameKey is the cleaned journal name used for grouping and dedup.
	ColumnNameKey = "Name Key"

	// ColumnAllISSNs is the concatenated identifier set per cleaned name.
	ColumnAllISSNs = "All ISSNs"

	ColumnImpactFactor = "Impact Factor"
	ColumnFiveYearIF   = "5-year Impact Factor"
	ColumnSJR          = "SJR"
	ColumnSJRQuartile  = "SJR Best Quartile"
	ColumnHIndex       = "H index"
	ColumnSNIP         = "SNIP"
	ColumnCiteScore    = "CiteScore"
	ColumnCategories   = "Categories"

	ColumnAgreementType = "Agreement type"
	ColumnAgreementLink = "Link"
	ColumnPublisherData = "Publisher data"
	ColumnCapStats      = "Capped agreement approval statistics"
)

// SourceName identifies one of the metadata feeds.
type SourceName string

const (
	SourceJournalList SourceName = "journal_list"
	SourceSCImago     SourceName = "scimago"
	SourceJCR         SourceName = "jcr"
	SourceCiteScore   SourceName = "citescore"
	SourceCapLink     SourceName = "cap_link"
)

// Tag returns the short suffix used to disambiguate colliding column names
// when a secondary source is merged onto the primary table.
func (s SourceName) Tag() string {
	switch s {
	case SourceSCImago:
		return "SC"
	case SourceJCR:
		return "JCR"
	case SourceCiteScore:
		return "CS"
	case SourceCapLink:
		return "CAP"
	default:
		return "SRC"
	}
}
