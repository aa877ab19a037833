package schema

// FormsQuestionTranslationTable represents the 'forms.questiontranslation' table
type FormsQuestionTranslationTable struct {
	Table        string
	ID           string
	QuestionID   string
	LanguageCode string
	Title        string
	Display      string
	Description  string
	Placeholder  string
}

// FormsQuestionTranslation is the schema definition for forms.questiontranslation
var FormsQuestionTranslation = FormsQuestionTranslationTable{
	Table:        "forms.questiontranslation",
	ID:           "id",
	QuestionID:   "questionid",
	LanguageCode: "languagecode",
	Title:        "title",
	Display:      "display",
	Description:  "description",
	Placeholder:  "placeholder",
}

func (t FormsQuestionTranslationTable) Columns() []string {
	return []string{t.ID, t.QuestionID, t.LanguageCode, t.Title, t.Display, t.Description, t.Placeholder}
}
