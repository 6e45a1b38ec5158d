// Package record reads and writes level 0 GEDCOM records and logs every write as an accepted change.
package record

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/tree"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/gedcom"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrRecordNotFound is returned for unknown xrefs.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidRecord is returned for GEDCOM without a "0 @XREF@ TAG" line.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrFactNotFound is returned for fact ids that are not part of the record.
	ErrFactNotFound = errors.New("fact not found")
)

// Record is a level 0 record of any type.
type Record struct {
	TreeID uint
	Xref   string
	Type   string
	Gedcom string
}

// table returns the table holding records of a type.
func table(tag string) string {
	switch tag {
	case "INDI":
		return models.Individual{}.TableName()
	case "FAM":
		return models.Family{}.TableName()
	case "SOUR":
		return models.Source{}.TableName()
	case "OBJE":
		return models.Media{}.TableName()
	default:
		return models.Other{}.TableName()
	}
}

// prefix is the first letter of new xrefs of a type.
func prefix(tag string) string {
	switch tag {
	case "INDI":
		return "I"
	case "FAM":
		return "F"
	case "SOUR":
		return "S"
	case "OBJE":
		return "M"
	case "REPO":
		return "R"
	case "NOTE":
		return "N"
	default:
		return "X"
	}
}

var lookupOrder = []string{"INDI", "FAM", "SOUR", "OBJE", "OTHER"}

// Find loads a record of any type.
func Find(db *gorm.DB, treeID uint, xref string) (*Record, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	for _, tag := range lookupOrder {
		var row struct {
			Xref   string
			Gedcom string
		}

		err := db.Table(table(tag)).Select("xref, gedcom").
			Where("tree_id = ? AND xref = ?", treeID, xref).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		_, typ := gedcom.Header(row.Gedcom)

		return &Record{TreeID: treeID, Xref: row.Xref, Type: typ, Gedcom: row.Gedcom}, nil
	}

	return nil, ErrRecordNotFound
}

// Exists reports whether a record exists.
func Exists(db *gorm.DB, treeID uint, xref string) bool {
	_, err := Find(db, treeID, xref)

	return err == nil
}

// NextXref reserves a new xref for a record type, skipping xrefs already in use.
func NextXref(db *gorm.DB, treeID uint, tag string) (string, error) {
	if db == nil {
		return "", ErrDBNil
	}

	n, err := strconv.Atoi(tree.Setting(db, treeID, tree.SettingNextXref, "1"))
	if err != nil || n < 1 {
		n = 1
	}

	for {
		xref := prefix(tag) + strconv.Itoa(n)
		n++

		if !Exists(db, treeID, xref) {
			return xref, tree.SetSetting(db, treeID, tree.SettingNextXref, strconv.Itoa(n))
		}
	}
}

// Create stores a new record. The xref on the level 0 line is replaced by a fresh one, which is returned.
func Create(db *gorm.DB, treeID uint, record string, userID *uint64) (string, error) {
	if db == nil {
		return "", ErrDBNil
	}

	_, tag := gedcom.Header(record)
	if tag == "" {
		return "", ErrInvalidRecord
	}

	var xref string

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error

		if xref, err = NextXref(tx, treeID, tag); err != nil {
			return err
		}

		record = gedcom.SetXref(record, xref)

		if err = insert(tx, treeID, xref, tag, record); err != nil {
			return err
		}

		return afterWrite(tx, treeID, xref, "", record, userID)
	})

	return xref, err
}

// Update replaces the GEDCOM of an existing record.
func Update(db *gorm.DB, treeID uint, xref, record string, userID *uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		old, err := Find(tx, treeID, xref)
		if err != nil {
			return err
		}

		fields := map[string]any{"gedcom": record}

		if old.Type == "OBJE" {
			file, title, kind := gedcom.MediaFile(record)
			fields["filename"], fields["title"], fields["type"] = file, title, kind
		}

		if err = tx.Table(table(old.Type)).
			Where("tree_id = ? AND xref = ?", treeID, xref).
			Updates(fields).Error; err != nil {
			return fmt.Errorf("update %s: %w", xref, err)
		}

		return afterWrite(tx, treeID, xref, old.Gedcom, record, userID)
	})
}

func insert(tx *gorm.DB, treeID uint, xref, tag, record string) error {
	var row any

	switch tag {
	case "INDI":
		row = &models.Individual{TreeID: treeID, Xref: xref, Gedcom: record}
	case "FAM":
		row = &models.Family{TreeID: treeID, Xref: xref, Gedcom: record}
	case "SOUR":
		row = &models.Source{TreeID: treeID, Xref: xref, Gedcom: record}
	case "OBJE":
		file, title, kind := gedcom.MediaFile(record)
		row = &models.Media{TreeID: treeID, Xref: xref, Filename: file, Title: title, Type: kind, Gedcom: record}
	default:
		row = &models.Other{TreeID: treeID, Xref: xref, Type: tag, Gedcom: record}
	}

	if err := tx.Create(row).Error; err != nil {
		return fmt.Errorf("create %s: %w", xref, err)
	}

	return nil
}

// afterWrite rebuilds the links of a record and logs the change.
func afterWrite(tx *gorm.DB, treeID uint, xref, oldGedcom, newGedcom string, userID *uint64) error {
	if err := tx.Where("tree_id = ? AND from_xref = ?", treeID, xref).Delete(&models.Link{}).Error; err != nil {
		return err
	}

	seen := map[models.Link]bool{}

	var links []models.Link

	for _, p := range gedcom.Pointers(newGedcom) {
		l := models.Link{TreeID: treeID, FromXref: xref, Type: p.Tag, ToXref: p.Target}
		if !seen[l] {
			seen[l] = true
			links = append(links, l)
		}
	}

	if len(links) > 0 {
		if err := tx.Create(&links).Error; err != nil {
			return err
		}
	}

	return tx.Create(&models.Change{
		ChangeTime: time.Now(),
		Status:     models.ChangeAccepted,
		TreeID:     treeID,
		Xref:       xref,
		OldGedcom:  oldGedcom,
		NewGedcom:  newGedcom,
		UserID:     userID,
	}).Error
}

// Individuals loads the individuals with the given xrefs, keyed by xref.
func Individuals(db *gorm.DB, treeID uint, xrefs []string) (map[string]models.Individual, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := make(map[string]models.Individual, len(xrefs))
	if len(xrefs) == 0 {
		return out, nil
	}

	var rows []models.Individual
	if err := db.Where("tree_id = ? AND xref IN ?", treeID, xrefs).Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		out[r.Xref] = r
	}

	return out, nil
}
