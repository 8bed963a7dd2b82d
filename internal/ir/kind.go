package ir

// Kind is the type tag of a node. Values follow the ISO XML element vocabulary;
// unknown element names are carried through unchanged.
type Kind string

// Containers.
const (
	KindDocument Kind = "iso-standard"
	KindPreface  Kind = "preface"
	KindSections Kind = "sections"
	KindBack     Kind = "back"
	KindClause   Kind = "clause"
)

// Reserved sections. Parsers may emit them directly; otherwise the normalizer
// resolves them from clause titles.
const (
	KindForeword       Kind = "foreword"
	KindIntroduction   Kind = "introduction"
	KindScope          Kind = "scope"
	KindNormRef        Kind = "norm_ref"
	KindTermsDefs      Kind = "terms_defs"
	KindSymbolsAbbrevs Kind = "symbols_abbrevs"
	KindBibliography   Kind = "bibliography"
	KindPatentNotice   Kind = "patent_notice"
)

// Numbered structure.
const (
	KindAnnex       Kind = "annex"
	KindAppendix    Kind = "appendix"
	KindReferences  Kind = "references"
	KindTerms       Kind = "terms"
	KindTerm        Kind = "term"
	KindDefinitions Kind = "definitions"
	KindTermDef     Kind = "termdef"
)

// Blocks.
const (
	KindParagraph   Kind = "p"
	KindFigure      Kind = "figure"
	KindExample     Kind = "example"
	KindSourcecode  Kind = "sourcecode"
	KindTable       Kind = "table"
	KindTableHead   Kind = "thead"
	KindTableBody   Kind = "tbody"
	KindTableFoot   Kind = "tfoot"
	KindRow         Kind = "tr"
	KindCell        Kind = "td"
	KindHeaderCell  Kind = "th"
	KindNote        Kind = "note"
	KindFootnote    Kind = "fn"
	KindFormula     Kind = "formula"
	KindStem        Kind = "stem"
	KindDefList     Kind = "dl"
	KindDefTerm     Kind = "dt"
	KindDefDesc     Kind = "dd"
	KindBibItem     Kind = "bibitem"
	KindBulletList  Kind = "ul"
	KindOrderedList Kind = "ol"
	KindListItem    Kind = "li"
	KindQuote       Kind = "quote"
	KindTermNote    Kind = "termnote"
	KindTermExample Kind = "termexample"
	KindReviewNote  Kind = "review_note"
)

// Inline markup.
const (
	KindText           Kind = "text"
	KindTitle          Kind = "title"
	KindEm             Kind = "em"
	KindStrong         Kind = "strong"
	KindISOTitle       Kind = "isotitle"
	KindAdmittedTerm   Kind = "admitted_term"
	KindTermSymbol     Kind = "termsymbol"
	KindDeprecatedTerm Kind = "deprecated_term"
	KindTermDomain     Kind = "termdomain"
	KindRef            Kind = "ref"
	KindERef           Kind = "eref"
	KindXRef           Kind = "xref"
	KindLink           Kind = "link"
	KindBookmark       Kind = "bookmark"
	KindLocality       Kind = "locality"
	KindReferenceFrom  Kind = "referenceFrom"
	KindReferenceTo    Kind = "referenceTo"
	KindDocIdentifier  Kind = "docidentifier"
)

var reservedSections = map[Kind]bool{
	KindForeword:       true,
	KindIntroduction:   true,
	KindScope:          true,
	KindNormRef:        true,
	KindTermsDefs:      true,
	KindSymbolsAbbrevs: true,
	KindBibliography:   true,
	KindPatentNotice:   true,
}

// IsReservedSection reports whether k is a section named by a reserved title.
func (k Kind) IsReservedSection() bool {
	return reservedSections[k]
}

// IsTermMarker reports whether k marks a term designation inside a term definition.
func (k Kind) IsTermMarker() bool {
	return k == KindAdmittedTerm || k == KindTermSymbol || k == KindDeprecatedTerm
}

// IsBibliographic reports whether k is a section that holds bibliographic entries.
func (k Kind) IsBibliographic() bool {
	return k == KindNormRef || k == KindBibliography || k == KindReferences
}
