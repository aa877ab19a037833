package schema

// TaxServiceTable represents the 'taxonomy.service' table
type TaxServiceTable struct {
	Table      string
	ID         string
	CategoryID string
	SortOrder  string
	CreatedAt  string
	UpdatedAt  string
	DeletedAt  string
}

// TaxService is the schema definition for taxonomy.service
var TaxService = TaxServiceTable{
	Table:      "taxonomy.service",
	ID:         "id",
	CategoryID: "categoryid",
	SortOrder:  "sortorder",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
	DeletedAt:  "deletedat",
}

func (t TaxServiceTable) Columns() []string {
	return []string{t.ID, t.CategoryID, t.SortOrder, t.CreatedAt, t.UpdatedAt, t.DeletedAt}
}
