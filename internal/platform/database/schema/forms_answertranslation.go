package schema

// FormsAnswerTranslationTable represents the 'forms.answertranslation' table
type FormsAnswerTranslationTable struct {
	Table        string
	ID           string
	AnswerID     string
	LanguageCode string
	Content      string
}

// FormsAnswerTranslation is the schema definition for forms.answertranslation
// Free-text answers are themselves localizable, so they carry the same
// per-language record shape as every other translated entity.
var FormsAnswerTranslation = FormsAnswerTranslationTable{
	Table:        "forms.answertranslation",
	ID:           "id",
	AnswerID:     "answerid",
	LanguageCode: "languagecode",
	Content:      "content",
}

func (t FormsAnswerTranslationTable) Columns() []string {
	return []string{t.ID, t.AnswerID, t.LanguageCode, t.Content}
}
