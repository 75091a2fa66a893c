package models

// Tag is reference data used to categorise recipes.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id" yaml:"-"`
	Name  string `gorm:"size:200;not null" json:"name" yaml:"name"`
	Color string `gorm:"size:7;not null" json:"color" yaml:"color"`
	Slug  string `gorm:"size:64;not null;uniqueIndex" json:"slug" yaml:"slug"`
}

// Ingredient is identified by its name together with its measurement unit.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}
