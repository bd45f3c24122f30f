package schema

// User is the authenticated account returned by the auth endpoints.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsSuperuser bool   `json:"is_superuser"`
	IsStaff     bool   `json:"is_staff"`
	DateJoined  string `json:"date_joined,omitempty"`
	LastLogin   string `json:"last_login,omitempty"`
}

// Layout is the backend's layout preference block.
type Layout struct {
	Current     string   `json:"current"`
	AllowSwitch bool     `json:"allow_switch"`
	Options     []string `json:"options"`
}

// Theme is the backend's theme preference block.
type Theme struct {
	Mode         string  `json:"mode"`
	PrimaryColor *string `json:"primary_color"`
	AccentColor  *string `json:"accent_color"`
}

// Site is the unauthenticated branding payload from GET /site/.
type Site struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	APIBase   string   `json:"api_base"`
	Layout    *Layout  `json:"layout,omitempty"`
	Theme     *Theme   `json:"theme,omitempty"`
	CustomCSS []string `json:"custom_css,omitempty"`
	CustomJS  []string `json:"custom_js,omitempty"`
}

// ModelSummary is the navigation-level view of one registered model.
type ModelSummary struct {
	Name              string      `json:"name"`
	ModelName         string      `json:"model_name"`
	VerboseName       string      `json:"verbose_name"`
	VerboseNamePlural string      `json:"verbose_name_plural"`
	Endpoints         Endpoints   `json:"endpoints"`
	Permissions       Permissions `json:"permissions"`
	ListDisplay       []string    `json:"list_display"`
	Icon              string      `json:"icon,omitempty"`
}

// App groups the models of one application label.
type App struct {
	AppLabel    string         `json:"app_label"`
	VerboseName string         `json:"verbose_name"`
	Models      []ModelSummary `json:"models"`
}

// NavItem is one sidebar entry.
type NavItem struct {
	Label     string `json:"label"`
	ModelName string `json:"model_name"`
	URL       string `json:"url"`
	Icon      string `json:"icon,omitempty"`
}

// NavGroup is one sidebar section.
type NavGroup struct {
	Label    string    `json:"label"`
	AppLabel string    `json:"app_label"`
	Items    []NavItem `json:"items"`
}

// Global is the navigation and permission schema from GET /schema/.
type Global struct {
	Site       Site       `json:"site"`
	User       *User      `json:"user"`
	Apps       []App      `json:"apps"`
	Navigation []NavGroup `json:"navigation"`
}

// SearchRecord is one hit from the cross-resource search endpoint.
type SearchRecord struct {
	AppLabel   string `json:"app_label"`
	ModelName  string `json:"model_name"`
	ID         any    `json:"id"`
	Display    string `json:"display"`
	ModelLabel string `json:"model_label"`
}

// SearchResult is the payload of GET /search/.
type SearchResult struct {
	Results []SearchRecord `json:"results"`
}
