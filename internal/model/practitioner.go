package model

import "github.com/lib/pq"

type Practitioner struct {
	Base
	Name      string `db:"name" json:"name"`
	Specialty string `db:"specialty" json:"specialty"`
	Active    bool   `db:"active" json:"active"`
}

// SlotCatalogEntry is the externally supplied list of candidate times a
// practitioner offers on one calendar date, in chronological order. The
// scheduling core only reads these; clinic hours are maintained by the
// back office.
type SlotCatalogEntry struct {
	Base
	PractitionerName string         `db:"practitioner_name" json:"practitioner_name"`
	Date             string         `db:"visit_date" json:"date"`
	Times            pq.StringArray `db:"times" json:"times"`
}

type UpsertSlotCatalogRequest struct {
	Date  string   `json:"date" validate:"required"`
	Times []string `json:"times" validate:"required,dive,required"`
}
