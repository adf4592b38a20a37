package models

// Tag is a user-scoped label attachable to recipes.
type Tag struct {
	Base
	Name   string `gorm:"size:255;not null" json:"name"`
	UserID uint   `gorm:"index;not null" json:"-"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t Tag) String() string {
	return t.Name
}

// Ingredient has the same shape as Tag.
type Ingredient struct {
	Base
	Name   string `gorm:"size:255;not null" json:"name"`
	UserID uint   `gorm:"index;not null" json:"-"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

func (i Ingredient) String() string {
	return i.Name
}
