package auth

// Permission constants define the site wide rights granted through roles.
const (
	// PermAdminSite makes a user a site administrator: control panel, changes log, every tree.
	PermAdminSite = "admin.site"
	// PermAdminModules allows enabling, disabling and configuring modules.
	PermAdminModules = "admin.modules"
	// PermAdminDataFolder allows deleting files from the data folder.
	PermAdminDataFolder = "admin.datafolder"
	// PermAdminMedia allows the media maintenance pages.
	PermAdminMedia = "admin.media"
	// PermAdminServer allows viewing server information.
	PermAdminServer = "admin.server"
	// PermJournalWrite allows keeping a journal on "My page".
	PermJournalWrite = "journal.write"
)

// Permissions lists every permission with its description, used by the seed.
var Permissions = map[string]string{
	PermAdminSite:       "Administer the site and every family tree",
	PermAdminModules:    "Enable, disable and configure modules",
	PermAdminDataFolder: "Delete files from the data folder",
	PermAdminMedia:      "Repair media links",
	PermAdminServer:     "View server information",
	PermJournalWrite:    "Keep a journal",
}

// Privacy levels of module components, from most to least visible.
const (
	PrivPrivate = 2
	PrivUser    = 1
	PrivNone    = 0
	PrivHide    = -1
)

// PrivacyLevel is a selectable level with its label.
type PrivacyLevel struct {
	Level int
	Label string
}

// PrivacyLevels lists the selectable levels.
var PrivacyLevels = []PrivacyLevel{
	{PrivPrivate, "Show to visitors"},
	{PrivUser, "Show to members"},
	{PrivNone, "Show to managers"},
	{PrivHide, "Hide from everyone"},
}

// IsPrivacyLevel reports whether level is one of PrivacyLevels.
func IsPrivacyLevel(level int) bool {
	for _, p := range PrivacyLevels {
		if p.Level == level {
			return true
		}
	}

	return false
}
