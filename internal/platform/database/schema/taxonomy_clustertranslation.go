package schema

// TaxClusterTranslationTable represents the 'taxonomy.clustertranslation' table
type TaxClusterTranslationTable struct {
	Table        string
	ID           string
	ClusterID    string
	LanguageCode string
	Name         string
	Description  string
}

// TaxClusterTranslation is the schema definition for taxonomy.clustertranslation
var TaxClusterTranslation = TaxClusterTranslationTable{
	Table:        "taxonomy.clustertranslation",
	ID:           "id",
	ClusterID:    "clusterid",
	LanguageCode: "languagecode",
	Name:         "name",
	Description:  "description",
}

func (t TaxClusterTranslationTable) Columns() []string {
	return []string{t.ID, t.ClusterID, t.LanguageCode, t.Name, t.Description}
}
