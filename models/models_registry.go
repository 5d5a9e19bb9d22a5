package models

// ModelTypeRegistry names every persisted model.
var ModelTypeRegistry = map[string]interface{}{
	"Property":  &Property{},
	"Person":    &Person{},
	"Contract":  &Contract{},
	"Expense":   &Expense{},
	"Receipt":   &Receipt{},
	"RunRecord": &RunRecord{},
}

// All returns pointers to every persisted model, parents before children.
func All() []interface{} {
	return []interface{}{
		&Property{},
		&Person{},
		&Contract{},
		&Expense{},
		&Receipt{},
		&RunRecord{},
	}
}
