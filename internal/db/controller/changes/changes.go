// Package changes queries the change log: filtering, paging and CSV export.
package changes

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

const (
	// DateLayout is the format of the from and to filters.
	DateLayout = "2006-01-02"
	// TimeLayout is the format of change times in lists and CSV files.
	TimeLayout = "2006-01-02 15:04:05"

	// NoUser is shown for changes whose author was deleted.
	NoUser = "<none>"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Columns maps data table column numbers to sortable columns.
var Columns = []string{"change_id", "change_time", "status", "xref", "old_gedcom", "user_name", "gedcom_name"}

// Filter narrows the change log. Empty fields are ignored, all others must match.
type Filter struct {
	Search    string // old or new GEDCOM contains
	From      string // YYYY-MM-DD, inclusive
	To        string // YYYY-MM-DD, inclusive
	Status    string
	OldGedcom string
	NewGedcom string
	Xref      string
	User      string // username contains
	Tree      string // tree name contains

	// TreeIDs restricts the log to these trees. Nil means every tree.
	TreeIDs []uint
}

// Order sorts by one column of Columns.
type Order struct {
	Column int
	Desc   bool
}

// Page is a window of the filtered log. Length 0 means no limit.
type Page struct {
	Start  int
	Length int
	Order  []Order
}

// Row is one change with its author and tree names.
type Row struct {
	ChangeID   uint64
	ChangeTime time.Time
	Status     string
	Xref       string
	OldGedcom  string
	NewGedcom  string
	UserName   string
	GedcomName string
	TreeID     uint
}

func contains(s string) string {
	return "%" + s + "%"
}

// filtered returns the joined change log with the filter applied.
func filtered(db *gorm.DB, f *Filter) *gorm.DB {
	q := db.Model(&models.Change{}).
		Joins("LEFT JOIN users ON users.id = changes.user_id").
		Joins("JOIN trees ON trees.id = changes.tree_id")

	switch {
	case f.TreeIDs == nil:
	case len(f.TreeIDs) == 0:
		q = q.Where("1 = 0")
	default:
		q = q.Where("changes.tree_id IN ?", f.TreeIDs)
	}

	if f.Search != "" {
		q = q.Where("(changes.old_gedcom LIKE ? OR changes.new_gedcom LIKE ?)", contains(f.Search), contains(f.Search))
	}

	if from, err := time.ParseInLocation(DateLayout, f.From, time.Local); err == nil {
		q = q.Where("changes.change_time >= ?", from)
	}

	if to, err := time.ParseInLocation(DateLayout, f.To, time.Local); err == nil {
		q = q.Where("changes.change_time < ?", to.AddDate(0, 0, 1))
	}

	if f.Status != "" {
		q = q.Where("changes.status = ?", f.Status)
	}

	if f.OldGedcom != "" {
		q = q.Where("changes.old_gedcom LIKE ?", contains(f.OldGedcom))
	}

	if f.NewGedcom != "" {
		q = q.Where("changes.new_gedcom LIKE ?", contains(f.NewGedcom))
	}

	if f.Xref != "" {
		q = q.Where("changes.xref = ?", f.Xref)
	}

	if f.User != "" {
		q = q.Where("users.username LIKE ?", contains(f.User))
	}

	if f.Tree != "" {
		q = q.Where("trees.name LIKE ?", contains(f.Tree))
	}

	return q
}

// List returns a page of the filtered log.
func List(db *gorm.DB, f Filter, p Page) ([]Row, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	q := filtered(db, &f).Select(
		"changes.id AS change_id, changes.change_time, changes.status, changes.xref, " +
			"changes.old_gedcom, changes.new_gedcom, COALESCE(users.username, '" + NoUser + "') AS user_name, " +
			"trees.name AS gedcom_name, changes.tree_id",
	)

	for _, o := range p.Order {
		if o.Column < 0 || o.Column >= len(Columns) {
			continue
		}

		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: Columns[o.Column]}, Desc: o.Desc})
	}

	if len(p.Order) == 0 {
		q = q.Order("change_id")
	}

	if p.Length > 0 {
		q = q.Limit(p.Length).Offset(p.Start)
	}

	var rows []Row

	return rows, q.Scan(&rows).Error
}

// Count returns the number of changes matching the filter.
func Count(db *gorm.DB, f Filter) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64

	return n, filtered(db, &f).Count(&n).Error
}

// Total returns the number of changes of the given trees, nil meaning every tree.
func Total(db *gorm.DB, treeIDs []uint) (int64, error) {
	return Count(db, Filter{TreeIDs: treeIDs})
}

// DateRange returns the days of the first and the last change. Both are today for an empty log.
func DateRange(db *gorm.DB) (earliest, latest string, err error) {
	if db == nil {
		return "", "", ErrDBNil
	}

	today := time.Now().Format(DateLayout)

	day := func(order string) (string, error) {
		var c models.Change

		err := db.Select("change_time").Order(order).Take(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return today, nil
		}

		return c.ChangeTime.Format(DateLayout), err
	}

	if earliest, err = day("change_time"); err != nil {
		return "", "", err
	}

	latest, err = day("change_time DESC")

	return earliest, latest, err
}

// CSV renders rows without a header. Every field is quoted, quotes inside the text fields are doubled.
func CSV(rows []Row) string {
	q := func(s string) string {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}

	lines := make([]string, 0, len(rows))

	for _, r := range rows {
		lines = append(lines, strings.Join([]string{
			`"` + r.ChangeTime.Format(TimeLayout) + `"`,
			`"` + r.Status + `"`,
			`"` + r.Xref + `"`,
			q(r.OldGedcom),
			q(r.NewGedcom),
			q(r.UserName),
			q(r.GedcomName),
		}, ","))
	}

	return strings.Join(lines, "\n")
}
