package schema

// TaxServiceTranslationTable represents the 'taxonomy.servicetranslation' table
type TaxServiceTranslationTable struct {
	Table        string
	ID           string
	ServiceID    string
	LanguageCode string
	Name         string
	Description  string
}

// TaxServiceTranslation is the schema definition for taxonomy.servicetranslation
var TaxServiceTranslation = TaxServiceTranslationTable{
	Table:        "taxonomy.servicetranslation",
	ID:           "id",
	ServiceID:    "serviceid",
	LanguageCode: "languagecode",
	Name:         "name",
	Description:  "description",
}

func (t TaxServiceTranslationTable) Columns() []string {
	return []string{t.ID, t.ServiceID, t.LanguageCode, t.Name, t.Description}
}
