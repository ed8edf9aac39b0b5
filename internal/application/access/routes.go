package access

import (
	"strings"

	"github.com/frankincense-labs/cx-management/internal/application/identity"
	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
)

// Route is one view of the portal.
type Route struct {
	Pattern      string
	RequiredRole vo.Role
	Public       bool
}

// Routes lists every view. Segments starting with ':' match any single
// non-empty segment.
var Routes = []Route{
	{Pattern: LoginPath, Public: true},
	{Pattern: RegisterPath, Public: true},

	{Pattern: "/customer/dashboard", RequiredRole: vo.RoleCustomer},
	{Pattern: "/customer/submit-feedback", RequiredRole: vo.RoleCustomer},
	{Pattern: "/customer/my-feedback", RequiredRole: vo.RoleCustomer},
	{Pattern: "/customer/create-ticket", RequiredRole: vo.RoleCustomer},
	{Pattern: "/customer/my-tickets", RequiredRole: vo.RoleCustomer},
	{Pattern: "/customer/ticket/:id", RequiredRole: vo.RoleCustomer},
	{Pattern: "/customer/history", RequiredRole: vo.RoleCustomer},

	{Pattern: "/admin/dashboard", RequiredRole: vo.RoleAdmin},
	{Pattern: "/admin/review-feedback", RequiredRole: vo.RoleAdmin},
	{Pattern: "/admin/manage-tickets", RequiredRole: vo.RoleAdmin},
	{Pattern: "/admin/ticket/:id", RequiredRole: vo.RoleAdmin},
	{Pattern: "/admin/all-interactions", RequiredRole: vo.RoleAdmin},
}

var rolePrefixes = map[string]vo.Role{
	"/customer": vo.RoleCustomer,
	"/admin":    vo.RoleAdmin,
}

// Resolve gates the view at path for the given session state.
func Resolve(path string, state identity.State) Decision {
	path = normalize(path)

	if r, ok := match(path); ok {
		if r.Public {
			return resolvePublic(state)
		}
		return Decide(state, r.RequiredRole)
	}

	for prefix, role := range rolePrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			d := Decide(state, role)
			if d.Outcome != OutcomeAllow {
				return d
			}
			return Redirect(DashboardFor(role))
		}
	}

	return Redirect(LoginPath)
}

// resolvePublic sends a signed-in principal with a known role to its
// dashboard instead of the sign-in forms.
func resolvePublic(state identity.State) Decision {
	if state.SignedIn() {
		if role, ok := state.ConfirmedRole(); ok {
			return Redirect(DashboardFor(role))
		}
	}
	return Allow()
}

func match(path string) (Route, bool) {
	segments := strings.Split(path, "/")
	for _, r := range Routes {
		pattern := strings.Split(r.Pattern, "/")
		if len(pattern) != len(segments) {
			continue
		}
		ok := true
		for i, p := range pattern {
			if strings.HasPrefix(p, ":") {
				if segments[i] == "" {
					ok = false
					break
				}
				continue
			}
			if p != segments[i] {
				ok = false
				break
			}
		}
		if ok {
			return r, true
		}
	}
	return Route{}, false
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
