package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/sakif/sageexcel/internal/apperror"
)

// Roles a Profile can map to.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Objects and actions guarded by the Authorizer.
const (
	ObjectUsers = "users"
	ActionList  = "list"
)

// rbacModel is a plain RBAC model: a request (sub, obj, act) is allowed when
// a policy line grants exactly that triple to the subject or to a role the
// subject inherits.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Authorizer decides role-based access for the admin surface.
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
	logger   *slog.Logger
}

// AuthorizerConfig controls the built-in policy.
type AuthorizerConfig struct {
	// OpenUserList grants ordinary users the admin user listing. Off by
	// default; turning it on lets any authenticated caller list all users.
	OpenUserList bool
}

// NewAuthorizer builds an enforcer with the embedded model and policy.
func NewAuthorizer(cfg AuthorizerConfig, logger *slog.Logger) (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("auth: parsing casbin model: %w", err)
	}

	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("auth: creating enforcer: %w", err)
	}

	if _, err := e.AddPolicy(RoleAdmin, ObjectUsers, ActionList); err != nil {
		return nil, fmt.Errorf("auth: adding admin policy: %w", err)
	}
	if cfg.OpenUserList {
		if _, err := e.AddPolicy(RoleUser, ObjectUsers, ActionList); err != nil {
			return nil, fmt.Errorf("auth: adding user policy: %w", err)
		}
	}

	return &Authorizer{enforcer: e, logger: logger}, nil
}

// Allowed reports whether the profile's role may perform act on obj.
func (a *Authorizer) Allowed(p *Profile, obj, act string) (bool, error) {
	if p == nil {
		return false, nil
	}
	return a.enforcer.Enforce(p.Role(), obj, act)
}

// Require is a middleware that must run after RequireAuth. It answers 403
// when the caller's role lacks the permission.
func (a *Authorizer) Require(obj, act string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := ProfileFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "missing_token", apperror.MissingToken())
				return
			}

			allowed, err := a.Allowed(p, obj, act)
			if err != nil {
				a.logger.Error("authorization check failed",
					slog.String("userID", p.ID),
					slog.String("error", err.Error()),
				)
				writeAuthError(w, http.StatusInternalServerError, "internal_error", err)
				return
			}
			if !allowed {
				a.logger.Warn("authorization denied",
					slog.String("userID", p.ID),
					slog.String("role", p.Role()),
					slog.String("object", obj),
					slog.String("action", act),
				)
				writeAuthError(w, http.StatusForbidden, "forbidden", apperror.Forbidden("Admin access required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
