package record

import (
	"strings"

	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/gedcom"
)

// MediaLink is a media object attached directly to an individual with a level 1 OBJE.
type MediaLink struct {
	TreeID     uint
	TreeName   string
	MediaXref  string
	Title      string
	Filename   string
	IndiXref   string
	IndiGedcom string
}

// LevelZeroMedia returns the media objects individuals link with "1 OBJE", ordered by
// tree, individual and media. search narrows on media title or filename.
func LevelZeroMedia(db *gorm.DB, search string) ([]MediaLink, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	q := db.Model(&models.Link{}).
		Select("links.tree_id, trees.name AS tree_name, media.xref AS media_xref, media.title, media.filename, "+
			"individuals.xref AS indi_xref, individuals.gedcom AS indi_gedcom").
		Joins("JOIN trees ON trees.id = links.tree_id").
		Joins("JOIN media ON media.tree_id = links.tree_id AND media.xref = links.to_xref").
		Joins("JOIN individuals ON individuals.tree_id = links.tree_id AND individuals.xref = links.from_xref").
		Where("links.type = ?", "OBJE").
		Order("trees.name, individuals.xref, media.xref")

	if search != "" {
		q = q.Where("(media.title LIKE ? OR media.filename LIKE ?)", "%"+search+"%", "%"+search+"%")
	}

	var rows []MediaLink
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	// links do not keep the level, OBJE below a fact is linked too
	out := rows[:0]

	for _, r := range rows {
		if strings.Contains(r.IndiGedcom, "\n1 OBJE @"+r.MediaXref+"@") {
			out = append(out, r)
		}
	}

	return out, nil
}

// MoveMediaToFact attaches a media object to a fact of an individual and removes the
// level 1 OBJE facts pointing at it. The change is logged.
func MoveMediaToFact(db *gorm.DB, treeID uint, indiXref, factID, mediaXref string, userID *uint64) error {
	indi, err := Find(db, treeID, indiXref)
	if err != nil {
		return err
	}

	var target *gedcom.Fact

	for _, f := range gedcom.Facts(indi.Gedcom) {
		if f.ID == factID {
			target = &f
			break
		}
	}

	if target == nil {
		return ErrFactNotFound
	}

	updated, _ := gedcom.UpdateFact(indi.Gedcom, factID, target.Gedcom+"\n2 OBJE @"+mediaXref+"@")

	for _, f := range gedcom.FactsByTag(updated, "OBJE") {
		if f.Target == mediaXref {
			updated, _ = gedcom.DeleteFact(updated, f.ID)
		}
	}

	return Update(db, treeID, indiXref, updated, userID)
}
