package model

// Reference tables back the natural-key lookups performed when writing
// vehicles, violations and protocols. Brand has no lock columns because
// it is never edited through the client; the remaining reference tables
// are lockable through the generic lock endpoint.

// Brand is a row in the `brand` table, unique by name.
type Brand struct {
	ID   int64  `json:"id"`   // brand.id
	Name string `json:"name"` // brand.name
}

// CarModel is a row in the `model` table. Model names are qualified by
// their brand; the display form used in vehicle payloads is
// "name (brand)".
type CarModel struct {
	ID      int64  `json:"id"`    // model.id
	Name    string `json:"name"`  // model.name
	BrandID int64  `json:"-"`     // model.brand_id
	Brand   string `json:"brand"` // joined brand.name
}

// Color is a row in the `color` table, unique by name.
type Color struct {
	ID   int64  `json:"id"`   // color.id
	Name string `json:"name"` // color.name
}

// ViolationType is a row in the `violation_type` table, unique by name.
// Missing types are created on demand when a violation is written.
type ViolationType struct {
	ID   int64  `json:"id"`   // violation_type.id
	Name string `json:"name"` // violation_type.name
}

// Article is a row in the `article` table identifying a traffic-code
// article by number and name. Missing articles are created on demand
// when a violation is written.
type Article struct {
	ID     int64  `json:"id"`     // article.id
	Number string `json:"number"` // article.number
	Name   string `json:"name"`   // article.name
}
