package models

// Individual is an INDI record.
type Individual struct {
	ID     uint64 `gorm:"primaryKey"`
	TreeID uint   `gorm:"uniqueIndex:idx_individual_xref;not null"`
	Xref   string `gorm:"uniqueIndex:idx_individual_xref;size:20;not null"`
	Gedcom string `gorm:"type:text;not null"`
}

// TableName specifies the database table name for the Individual model.
func (Individual) TableName() string {
	return "individuals"
}

// Family is a FAM record.
type Family struct {
	ID     uint64 `gorm:"primaryKey"`
	TreeID uint   `gorm:"uniqueIndex:idx_family_xref;not null"`
	Xref   string `gorm:"uniqueIndex:idx_family_xref;size:20;not null"`
	Gedcom string `gorm:"type:text;not null"`
}

// TableName specifies the database table name for the Family model.
func (Family) TableName() string {
	return "families"
}

// Source is a SOUR record.
type Source struct {
	ID     uint64 `gorm:"primaryKey"`
	TreeID uint   `gorm:"uniqueIndex:idx_source_xref;not null"`
	Xref   string `gorm:"uniqueIndex:idx_source_xref;size:20;not null"`
	Gedcom string `gorm:"type:text;not null"`
}

// TableName specifies the database table name for the Source model.
func (Source) TableName() string {
	return "sources"
}

// Media is an OBJE record. Filename, Title and Type mirror the first FILE structure.
type Media struct {
	ID       uint64 `gorm:"primaryKey"`
	TreeID   uint   `gorm:"uniqueIndex:idx_media_xref;not null"`
	Xref     string `gorm:"uniqueIndex:idx_media_xref;size:20;not null"`
	Filename string `gorm:"size:512"`
	Title    string `gorm:"size:255"`
	Type     string `gorm:"size:20"`
	Gedcom   string `gorm:"type:text;not null"`
}

// TableName specifies the database table name for the Media model.
func (Media) TableName() string {
	return "media"
}

// Other is any other level 0 record, mostly NOTE and REPO.
type Other struct {
	ID     uint64 `gorm:"primaryKey"`
	TreeID uint   `gorm:"uniqueIndex:idx_other_xref;not null"`
	Xref   string `gorm:"uniqueIndex:idx_other_xref;size:20;not null"`
	Type   string `gorm:"size:15;not null;index"`
	Gedcom string `gorm:"type:text;not null"`
}

// TableName specifies the database table name for the Other model.
func (Other) TableName() string {
	return "other"
}

// Link is a pointer from one record to another, e.g. an individual to a media object.
type Link struct {
	TreeID   uint   `gorm:"primaryKey"`
	FromXref string `gorm:"primaryKey;size:20"`
	Type     string `gorm:"primaryKey;size:15"`
	ToXref   string `gorm:"primaryKey;size:20;index"`
}

// TableName specifies the database table name for the Link model.
func (Link) TableName() string {
	return "links"
}
