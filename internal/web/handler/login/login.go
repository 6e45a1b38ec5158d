package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = handler.LoginPath

	// TemplateName is the name of the login template.
	TemplateName = "login"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	localAuth *auth.LocalProvider
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app or db is nil")
	}

	s.db = db
	s.cfg = cfg
	s.localAuth = auth.NewLocalProvider(db)

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render(TemplateName, fiber.Map{})
}

func (s *Service) renderError(c *fiber.Ctx, username string, err error) error {
	return c.Render(TemplateName, fiber.Map{
		"username": username,
		"error":    err.Error(),
	})
}

// authenticate maps provider errors to the messages shown on the login page.
func (s *Service) authenticate(username, password string) (*models.User, error) {
	user, err := s.localAuth.Authenticate(username, password)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword):
		return nil, ErrInvalidCredentials
	case errors.Is(err, auth.ErrUserAccountDisabled):
		return nil, ErrAccountNotApproved
	default:
		log.Error().Err(err).Str("username", username).Msg("failed to authenticate user")

		return nil, ErrInternalServerError
	}
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	var in struct {
		Username string `form:"username"`
		Password string `form:"password"`
	}

	if err := c.BodyParser(&in); err != nil {
		return s.renderError(c, "", ErrInvalidFormData)
	}

	user, err := s.authenticate(in.Username, in.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", in.Username).Str("ip", c.IP()).Msg("login failed")

		return s.renderError(c, in.Username, err)
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")

		return s.renderError(c, in.Username, ErrInternalServerError)
	}

	exp := s.cfg.Webserver.Session.ExpiryTime
	if err = session.New(*user).Write(sessionID, exp); err != nil {
		log.Error().Err(err).Msg("failed to write session")

		return s.renderError(c, in.Username, ErrInternalServerError)
	}

	session.SetCookie(c, sessionID, exp, s.cfg.DevMode)

	log.Info().Uint64("user_id", user.ID).Str("username", user.Username).Msg("user logged in")

	return c.Redirect(handler.HomePath)
}
