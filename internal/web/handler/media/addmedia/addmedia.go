// Package addmedia creates media objects from uploaded files, optionally linked to a record.
package addmedia

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/record"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/tree"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/gedcom"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/media"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/flash"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/navigation"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

const (
	// Path is the route of the create form, below a tree.
	Path = "tree/:" + handler.TreeParam + "/media/add"

	// TemplateName is the name of the create form template.
	TemplateName = "media/add"

	// SettingAdvancedNameFacts lists the extra name facts shown on edit forms.
	SettingAdvancedNameFacts = "ADVANCED_NAME_FACTS"

	msgFolderCreated = "The folder %s has been created."
	msgFormExpired   = "This form has expired. Try again."
	msgCreated       = "The media object %s has been created."
	msgNotLinked     = "The media object %s could not be linked to %s."
)

// errNoMessage stops the upload without telling the user why. Only managers
// are offered new folders, so anybody else asking for one tampered with the form.
var errNoMessage = errors.New("upload refused")

// Data represents the data passed to the template.
type Data struct {
	Tree          *models.Tree
	LinkToID      string
	Pid           string
	Form          gedcom.MediaForm
	IsManager     bool
	Folders       []string
	MaxUploadSize string
}

// Service is the media upload handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

var (
	// Handler is the media upload handler.
	Handler = Service{}
)

// Init initializes the media upload handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	app.Get("/"+Path, auth.RequireLogin(), s.Get)
	app.Post("/"+Path, auth.RequireLogin(), s.Post)
}

// access loads the tree and checks that the user may add media to it, and see linktoid.
func (s *Service) access(c *fiber.Ctx) (*models.Tree, error) {
	t, err := handler.Tree(c, s.db)
	if err != nil {
		return nil, handler.NotFound(c, "This family tree does not exist.")
	}

	if !s.authService.IsEditor(session.UserID(c), t.ID) {
		return nil, handler.Forbidden(c)
	}

	if linkTo := c.FormValue("linktoid", c.Query("linktoid")); linkTo != "" {
		if !gedcom.IsXref(linkTo) || !record.Exists(s.db, t.ID, linkTo) {
			return nil, handler.Forbidden(c)
		}
	}

	return t, nil
}

// Get renders the create form.
func (s *Service) Get(c *fiber.Ctx) error {
	t, err := s.access(c)
	if t == nil {
		return err
	}

	return s.render(c, t)
}

func (s *Service) render(c *fiber.Ctx, t *models.Tree) error {
	userID := session.UserID(c)

	nav := navigation.NewContext("Create a media object", "tree", "media-add").
		AddBreadcrumb(t.Title, handler.TreeURL(t.Name, ""), false).
		AddBreadcrumb("Create a media object", handler.TreeURL(t.Name, "media/add"), true)

	data := Data{
		Tree:          t,
		LinkToID:      c.FormValue("linktoid", c.Query("linktoid")),
		Pid:           c.FormValue("pid", c.Query("pid")),
		IsManager:     s.authService.IsManager(userID, t.ID),
		MaxUploadSize: humanize.IBytes(uint64(max(s.cfg.Media.MaxUploadSize, 0))), //nolint:gosec // not negative
	}

	var gedrec string

	if data.Pid != "" && gedcom.IsXref(data.Pid) {
		if rec, err := record.Find(s.db, t.ID, data.Pid); err == nil && rec.Type == "OBJE" {
			gedrec = rec.Gedcom
		}
	}

	data.Form = gedcom.ParseMediaForm(gedrec, c.FormValue("filename", c.Query("filename")),
		tree.Setting(s.db, t.ID, SettingAdvancedNameFacts, ""))

	if data.IsManager {
		store := media.NewStore(s.cfg.Data.Path, tree.MediaDirectory(s.db, t.ID))

		folders, err := store.Folders()
		if err != nil {
			log.Warn().Err(err).Str("path", store.Root()).Msg("failed to list media folders")
		}

		data.Folders = folders
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

// Post creates the media object. Failures show the form again with a message.
func (s *Service) Post(c *fiber.Ctx) error {
	t, err := s.access(c)
	if t == nil {
		return err
	}

	if !session.CheckCSRF(c) {
		flash.Now(c, flash.TypeDanger, msgFormExpired)

		return s.render(c, t)
	}

	var notes []string

	xref, err := s.create(c, t, &notes)
	if err != nil {
		for _, n := range notes {
			flash.Now(c, flash.TypeSuccess, n)
		}

		if !errors.Is(err, errNoMessage) {
			log.Warn().Err(err).Str("tree", t.Name).Msg("media upload failed")
			flash.Now(c, flash.TypeDanger, message(err))
		}

		return s.render(c, t)
	}

	for _, n := range notes {
		flash.Add(c, flash.TypeSuccess, n)
	}

	flash.Add(c, flash.TypeSuccess, fmt.Sprintf(msgCreated, xref))

	target := xref
	if linkTo := c.FormValue("linktoid"); linkTo != "" {
		if err = s.link(c, t, xref, linkTo); err != nil {
			log.Warn().Err(err).Str("tree", t.Name).Str("xref", xref).Str("linked_to", linkTo).Msg("media link failed")
			flash.Add(c, flash.TypeWarning, fmt.Sprintf(msgNotLinked, xref, linkTo))
		} else {
			target = linkTo
		}
	}

	return c.Redirect(handler.RecordURL(t.Name, target))
}

// message returns the text shown for a failed upload.
func message(err error) string {
	var (
		exists media.FileExistsError
		folder media.FolderError
		char   media.FilenameCharError
		ext    media.FilenameExtensionError
	)

	switch {
	case errors.As(err, &exists):
		return exists.Error()
	case errors.As(err, &folder):
		return folder.Error()
	case errors.As(err, &char):
		return char.Error()
	case errors.As(err, &ext):
		return ext.Error()
	case errors.Is(err, media.ErrFolderTraversal),
		errors.Is(err, media.ErrNoFile),
		errors.Is(err, media.ErrThumbnailNotImage):
		return err.Error()
	default:
		return media.ErrUpload.Error()
	}
}

func formFile(c *fiber.Ctx, key string) *multipart.FileHeader {
	fh, err := c.FormFile(key)
	if err != nil || fh.Filename == "" {
		return nil
	}

	return fh
}

func sniff(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}

	defer func() { _ = f.Close() }()

	return media.DetectMIME(f, fh.Header.Get(fiber.HeaderContentType)), nil
}

// create stores the uploaded files and the new record. notes collects what was done on the way.
func (s *Service) create(c *fiber.Ctx, t *models.Tree, notes *[]string) (string, error) {
	userID := session.UserID(c)
	store := media.NewStore(s.cfg.Data.Path, tree.MediaDirectory(s.db, t.ID))

	folder, err := media.NormalizeFolder(c.FormValue("folder"))
	if err != nil {
		return "", err
	}

	created, err := store.EnsureDir("")
	if err != nil {
		return "", err
	}

	if created {
		*notes = append(*notes, fmt.Sprintf(msgFolderCreated, store.Root()))
	}

	if folder != "" && !store.DirExists(folder) {
		if !s.authService.IsManager(userID, t.ID) {
			return "", errNoMessage
		}

		if _, err = store.EnsureDir(folder); err != nil {
			return "", err
		}

		*notes = append(*notes, fmt.Sprintf(msgFolderCreated, store.Path(folder)))
	}

	if _, err = store.EnsureDir(media.ThumbsFolder + folder); err != nil {
		return "", err
	}

	mainFile, thumbFile := formFile(c, "mediafile"), formFile(c, "thumbnail")

	// a thumbnail on its own was meant as the main file
	if thumbFile != nil && mainFile == nil {
		mainFile, thumbFile = thumbFile, nil
	}

	var thumbMIME string

	if thumbFile != nil {
		if thumbMIME, err = sniff(thumbFile); err != nil {
			return "", errors.Join(media.ErrUpload, err)
		}

		if !media.IsImage(thumbMIME) {
			return "", media.ErrThumbnailNotImage
		}
	}

	var (
		tags     = handler.FormValues(c, "tag[]")
		texts    = handler.FormValues(c, "text[]")
		filename = c.FormValue("filename")
		text0    string
		adminTag = len(tags) > 0 && tags[0] == "FILE"
	)

	if len(texts) > 0 {
		text0 = texts[0]
	}

	if adminTag && text0 != "" {
		filename = text0
	}

	if filename == "" && mainFile != nil {
		filename = mainFile.Filename
	}

	if media.IsExternal(text0) {
		folder, mainFile, thumbFile = "", nil, nil
	} else if err = media.ValidateFilename(filename); err != nil {
		return "", err
	}

	var written []string

	if mainFile != nil {
		if written, err = s.save(store, folder+filename, mainFile, thumbFile, thumbMIME); err != nil {
			return "", err
		}
	}

	lines := gedcom.EditLines(handler.FormValues(c, "glevels[]"), tags, texts, handler.FormValues(c, "islink[]"))

	newged := "0 @" + gedcom.NewXref + "@ OBJE"
	if adminTag && len(lines) > 0 {
		lines[0].Text = folder + filename
	} else {
		newged += "\n1 FILE " + folder + filename
	}

	xref, err := record.Create(s.db, t.ID, gedcom.HandleUpdates(newged, lines), &userID)
	if err != nil {
		for _, rel := range written {
			if rmErr := store.Remove(rel); rmErr != nil {
				log.Warn().Err(rmErr).Str("path", store.Path(rel)).Msg("failed to remove orphaned upload")
			}
		}

		return "", errors.Join(media.ErrUpload, err)
	}

	log.Info().Str("tree", t.Name).Str("xref", xref).Msg("media object created")

	return xref, nil
}

// link adds the new media object to the record it was uploaded for.
func (s *Service) link(c *fiber.Ctx, t *models.Tree, xref, linkTo string) error {
	userID := session.UserID(c)

	rec, err := record.Find(s.db, t.ID, linkTo)
	if err != nil {
		return err
	}

	if err = record.Update(s.db, t.ID, linkTo, gedcom.AddFact(rec.Gedcom, "1 OBJE @"+xref+"@"), &userID); err != nil {
		return err
	}

	log.Info().Str("tree", t.Name).Str("xref", xref).Str("linked_to", linkTo).Msg("media object linked")

	return nil
}

// save writes the main file and, for png, gif and jpeg images, its thumbnail.
// It returns the paths it wrote, relative to the store.
func (s *Service) save(store *media.Store, rel string, mainFile, thumbFile *multipart.FileHeader, thumbMIME string) ([]string, error) {
	if limit := s.cfg.Media.MaxUploadSize; limit > 0 && mainFile.Size > int64(limit) {
		return nil, media.ErrUpload
	}

	src, err := mainFile.Open()
	if err != nil {
		return nil, errors.Join(media.ErrUpload, err)
	}

	defer func() { _ = src.Close() }()

	if err = store.Save(rel, src); err != nil {
		return nil, err
	}

	written := []string{rel}

	log.Info().Str("path", store.Path(rel)).Msg("media file uploaded")

	if thumbFile == nil || !media.IsThumbnailType(thumbMIME) {
		return written, nil
	}

	thumb, err := thumbFile.Open()
	if err != nil {
		log.Warn().Err(err).Msg("failed to open thumbnail upload")
		return written, nil
	}

	defer func() { _ = thumb.Close() }()

	thumbRel := media.ThumbnailName(rel, thumbMIME)
	if err = store.SaveThumbnail(thumbRel, thumb); err != nil {
		log.Warn().Err(err).Str("path", thumbRel).Msg("failed to store thumbnail")
		return written, nil
	}

	log.Info().Str("path", store.Path(media.ThumbsFolder+thumbRel)).Msg("thumbnail file uploaded")

	return append(written, media.ThumbsFolder+thumbRel), nil
}
