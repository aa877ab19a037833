package schema

// FormsQuestionTable represents the 'forms.question' table
type FormsQuestionTable struct {
	Table        string
	ID           string
	Scope        string
	CategoryID   string
	QuestionType string
	Icon         string
	SortOrder    string
	IsRequired   string
	IsFilter     string
	Status       string
	CreatedAt    string
	UpdatedAt    string
	DeletedAt    string
}

// FormsQuestion is the schema definition for forms.question
// Universal and category questions share one table: Scope discriminates, and
// CategoryID is NULL exactly when Scope is 'universal'.
var FormsQuestion = FormsQuestionTable{
	Table:        "forms.question",
	ID:           "id",
	Scope:        "scope",
	CategoryID:   "categoryid",
	QuestionType: "questiontype",
	Icon:         "icon",
	SortOrder:    "sortorder",
	IsRequired:   "isrequired",
	IsFilter:     "isfilter",
	Status:       "status",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
	DeletedAt:    "deletedat",
}

func (t FormsQuestionTable) Columns() []string {
	return []string{
		t.ID, t.Scope, t.CategoryID, t.QuestionType, t.Icon, t.SortOrder,
		t.IsRequired, t.IsFilter, t.Status, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
