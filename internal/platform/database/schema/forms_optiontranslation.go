package schema

// FormsOptionTranslationTable represents the 'forms.optiontranslation' table
type FormsOptionTranslationTable struct {
	Table        string
	ID           string
	OptionID     string
	LanguageCode string
	Label        string
	Display      string
	Description  string
}

// FormsOptionTranslation is the schema definition for forms.optiontranslation
var FormsOptionTranslation = FormsOptionTranslationTable{
	Table:        "forms.optiontranslation",
	ID:           "id",
	OptionID:     "optionid",
	LanguageCode: "languagecode",
	Label:        "label",
	Display:      "display",
	Description:  "description",
}

func (t FormsOptionTranslationTable) Columns() []string {
	return []string{t.ID, t.OptionID, t.LanguageCode, t.Label, t.Display, t.Description}
}
