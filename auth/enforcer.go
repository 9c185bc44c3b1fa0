// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"fmt"
	"log/slog"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/danielhkuo/ballotbox/models"
)

// Objects guarded by the enforcer
const (
	ObjPosition       = "position"
	ObjCandidate      = "candidate"
	ObjVoter          = "voter"
	ObjVote           = "vote"
	ObjResult         = "result"
	ObjBallot         = "ballot"
	ObjAdminDashboard = "admin_dashboard"
	ObjVoterDashboard = "voter_dashboard"
)

// Actions
const (
	ActRead  = "read"
	ActWrite = "write"
	ActCast  = "cast"
	ActAny   = "*"
)

const policyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && (r.act == p.act || p.act == "*")
`

// DefaultPolicy maps each role to what it may do.
var DefaultPolicy = [][]string{
	{models.RoleAdmin, ObjPosition, ActAny},
	{models.RoleAdmin, ObjCandidate, ActAny},
	{models.RoleAdmin, ObjVoter, ActAny},
	{models.RoleAdmin, ObjVote, ActRead},
	{models.RoleAdmin, ObjResult, ActRead},
	{models.RoleAdmin, ObjAdminDashboard, ActRead},

	{models.RoleVoter, ObjVote, ActCast},
	{models.RoleVoter, ObjBallot, ActRead},
	{models.RoleVoter, ObjResult, ActRead},
	{models.RoleVoter, ObjVoterDashboard, ActRead},
}

// Enforcer answers role permission questions.
// Policies are loaded once; the enforcer is read-only afterwards.
type Enforcer struct {
	enforcer *casbin.Enforcer
}

// NewEnforcer creates an enforcer loaded with DefaultPolicy.
func NewEnforcer() (*Enforcer, error) {
	return NewEnforcerWithPolicy(DefaultPolicy)
}

// NewEnforcerWithPolicy creates an enforcer with the given (role, object, action) rules.
func NewEnforcerWithPolicy(policy [][]string) (*Enforcer, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	for _, rule := range policy {
		if len(rule) != 3 {
			return nil, fmt.Errorf("policy rule %v must have 3 fields", rule)
		}
		if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
			return nil, fmt.Errorf("failed to add policy: %w", err)
		}
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// CheckPermission checks if the identity's role may perform act on obj.
// Anonymous identities have no permissions.
func (e *Enforcer) CheckPermission(ident Identity, obj, act string) bool {
	if !ident.IsAuthenticated() {
		return false
	}

	allowed, err := e.enforcer.Enforce(ident.Role, obj, act)
	if err != nil {
		slog.Error("failed to check permission", "error", err, "role", ident.Role, "obj", obj, "act", act)
		return false
	}
	return allowed
}
