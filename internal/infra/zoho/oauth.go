package zoho

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// DefaultScopes is requested when no scopes are configured.
const DefaultScopes = "ZohoProjects.projects.READ,ZohoProjects.portals.READ," +
	"ZohoWorkDrive.files.READ,ZohoWorkDrive.files.CREATE"

// PresetScopes are named scope sets for the authorization URL.
var PresetScopes = map[string]string{
	"projects-full": strings.Join([]string{
		"ZohoProjects.portals.ALL",
		"ZohoProjects.projects.ALL",
		"ZohoProjects.activities.READ",
		"ZohoProjects.status.READ",
		"ZohoProjects.status.CREATE",
		"ZohoProjects.milestones.ALL",
		"ZohoProjects.tasklists.ALL",
		"ZohoProjects.tasks.ALL",
		"ZohoProjects.timesheets.ALL",
		"ZohoProjects.bugs.ALL",
		"ZohoProjects.events.ALL",
		"ZohoProjects.forums.ALL",
		"ZohoProjects.users.ALL",
		"ZohoProjects.search.READ",
		"ZohoProjects.clients.ALL",
		"ZohoProjects.documents.ALL",
		"ZohoPC.files.ALL",
		"ZohoBugtracker.portals.READ",
		"ZohoBugtracker.projects.ALL",
		"ZohoBugtracker.milestones.ALL",
		"ZohoBugtracker.timesheets.ALL",
		"ZohoBugtracker.bugs.ALL",
		"ZohoBugtracker.events.ALL",
		"ZohoBugtracker.forums.ALL",
		"ZohoBugtracker.users.ALL",
		"ZohoBugtracker.search.READ",
		"ZohoBugtracker.documents.ALL",
		"ZohoBugtracker.tags.READ",
		"ZohoSheet.dataAPI.READ",
		"ZohoProjects.custom_fields.ALL",
		"ZohoProjects.documents.READ",
		"WorkDrive.team.ALL",
		"WorkDrive.workspace.ALL",
		"WorkDrive.files.ALL",
	}, " "),
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(PresetScopes))
	for name := range PresetScopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NormalizeScopes turns a comma or whitespace separated scope list, possibly
// with backslash line continuations, into a single space separated string.
func NormalizeScopes(raw string) string {
	cleaned := strings.NewReplacer(`\`, " ", ",", " ").Replace(raw)
	return strings.Join(strings.Fields(cleaned), " ")
}

// ResolveScopes picks the scope set by precedence: explicit, preset, configured, default.
func ResolveScopes(explicit, preset, configured string) (string, error) {
	switch {
	case explicit != "":
		return NormalizeScopes(explicit), nil
	case preset != "":
		scopes, ok := PresetScopes[preset]
		if !ok {
			return "", fmt.Errorf("unknown scope preset %q (available: %s)", preset, strings.Join(PresetNames(), ", "))
		}
		return NormalizeScopes(scopes), nil
	case configured != "":
		return NormalizeScopes(configured), nil
	default:
		return NormalizeScopes(DefaultScopes), nil
	}
}

// AuthURL builds the browser authorization URL that yields a refresh token.
func (c *Client) AuthURL(scopes string) (string, error) {
	if err := c.requireOAuth(false); err != nil {
		return "", err
	}
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {c.cfg.ClientID},
		"scope":         {scopes},
		"redirect_uri":  {c.cfg.RedirectURI},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	return c.cfg.AccountsBase + "/oauth/v2/auth?" + params.Encode(), nil
}

// ExchangeResult is the token endpoint's answer to an authorization code.
type ExchangeResult struct {
	Tokens
	RefreshToken string
}

// ExchangeCode trades an authorization code for access and refresh tokens.
func (c *Client) ExchangeCode(ctx context.Context, code string) (ExchangeResult, error) {
	if err := c.requireOAuth(true); err != nil {
		return ExchangeResult{}, err
	}
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"redirect_uri":  {c.cfg.RedirectURI},
		"code":          {code},
	}
	resp, err := c.postToken(ctx, "exchange code", form)
	if err != nil {
		return ExchangeResult{}, err
	}
	return ExchangeResult{
		Tokens:       resp.tokens(c.cfg.APIDomainFallback),
		RefreshToken: resp.RefreshToken,
	}, nil
}

func (c *Client) requireOAuth(secret bool) error {
	var missing []string
	if c.cfg.ClientID == "" {
		missing = append(missing, "ZOHO_CLIENT_ID")
	}
	if secret && c.cfg.ClientSecret == "" {
		missing = append(missing, "ZOHO_CLIENT_SECRET")
	}
	if c.cfg.RedirectURI == "" {
		missing = append(missing, "ZOHO_REDIRECT_URI")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
