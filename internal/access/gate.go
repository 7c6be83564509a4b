// Package access is the shop's role gate. Roles map to capabilities
// through a casbin RBAC model; callers ask about capabilities, never about
// role strings.
package access

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/chofys/petshop/internal/models"
)

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

type Capability struct {
	Resource string
	Action   string
}

var (
	ManageCatalog = Capability{Resource: "catalog", Action: "manage"}
	ManageOrders  = Capability{Resource: "orders", Action: "manage"}
	ManageUsers   = Capability{Resource: "users", Action: "manage"}
	ViewReports   = Capability{Resource: "reports", Action: "view"}
)

// Employees run the catalog and the order desk; admins inherit that and
// also manage users and see reports.
var defaultPolicies = [][]string{
	{string(models.RoleEmployee), ManageCatalog.Resource, ManageCatalog.Action},
	{string(models.RoleEmployee), ManageOrders.Resource, ManageOrders.Action},
	{string(models.RoleAdmin), ManageUsers.Resource, ManageUsers.Action},
	{string(models.RoleAdmin), ViewReports.Resource, ViewReports.Action},
}

var defaultGroupings = [][]string{
	{string(models.RoleAdmin), string(models.RoleEmployee)},
}

type Gate struct {
	enforcer *casbin.Enforcer
}

func NewGate() (*Gate, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("parse rbac model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	for _, p := range defaultPolicies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, fmt.Errorf("add policy %v: %w", p, err)
		}
	}
	for _, g := range defaultGroupings {
		if _, err := enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, fmt.Errorf("add grouping %v: %w", g, err)
		}
	}

	return &Gate{enforcer: enforcer}, nil
}

// Can reports whether user holds the capability. A nil user holds nothing,
// and an enforcer error is treated as a denial.
func (g *Gate) Can(user *models.User, c Capability) bool {
	if user == nil || user.Role == "" {
		return false
	}
	ok, err := g.enforcer.Enforce(string(user.Role), c.Resource, c.Action)
	return err == nil && ok
}

func (g *Gate) IsAdmin(user *models.User) bool { return user.IsAdmin() }
func (g *Gate) IsStaff(user *models.User) bool { return user.IsStaff() }

func (g *Gate) CanManageCatalog(user *models.User) bool { return g.Can(user, ManageCatalog) }
func (g *Gate) CanManageOrders(user *models.User) bool  { return g.Can(user, ManageOrders) }
func (g *Gate) CanManageUsers(user *models.User) bool   { return g.Can(user, ManageUsers) }
func (g *Gate) CanViewReports(user *models.User) bool   { return g.Can(user, ViewReports) }
