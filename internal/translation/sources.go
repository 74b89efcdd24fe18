package translation

// Source décrit la table et les colonnes traduisibles d'un type de contenu.
// Le premier champ sert à détecter la langue.
type Source struct {
	Table  string
	Fields []string
	// Filter exclut les lignes qui ne s'affichent plus
	Filter string
}

var sources = map[string]Source{
	ContentCoordinate: {Table: "coordinates", Fields: []string{"title", "postcard_name", "description"}},
	ContentComment:    {Table: "comments", Fields: []string{"content"}, Filter: "is_deleted = FALSE"},
	ContentJournal:    {Table: "farming_journals", Fields: []string{"title", "content"}},
}

// SourceFor retourne la source d'un type de contenu
func SourceFor(contentType string) (Source, bool) {
	s, ok := sources[contentType]
	return s, ok
}

// Has indique si field est traduisible
func (s Source) Has(field string) bool {
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}
