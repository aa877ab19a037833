package schema

// TaxCategoryTranslationTable represents the 'taxonomy.categorytranslation' table
type TaxCategoryTranslationTable struct {
	Table        string
	ID           string
	CategoryID   string
	LanguageCode string
	Name         string
	Description  string
}

// TaxCategoryTranslation is the schema definition for taxonomy.categorytranslation
var TaxCategoryTranslation = TaxCategoryTranslationTable{
	Table:        "taxonomy.categorytranslation",
	ID:           "id",
	CategoryID:   "categoryid",
	LanguageCode: "languagecode",
	Name:         "name",
	Description:  "description",
}

func (t TaxCategoryTranslationTable) Columns() []string {
	return []string{t.ID, t.CategoryID, t.LanguageCode, t.Name, t.Description}
}
