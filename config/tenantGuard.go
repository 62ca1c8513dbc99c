package config

import (
	"strings"

	"github.com/agencyhub/marketing_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tenantColumn = "agency_id"

// TenantGuardPlugin scopes queries, updates and deletes to the request's agency_id
// whenever the model carries an agency_id column.
//
// Raw SQL is not scoped; those queries must filter by agency_id themselves.
// Admins and internal jobs bypass the guard through explicit context flags.
type TenantGuardPlugin struct{}

func NewTenantGuardPlugin() *TenantGuardPlugin { return &TenantGuardPlugin{} }

func (p *TenantGuardPlugin) Name() string { return "tenant_guard" }

func (p *TenantGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("tenant_guard:query", tenantGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("tenant_guard:row", tenantGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenant_guard:update", tenantGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("tenant_guard:delete", tenantGuardCallback); err != nil {
		return err
	}
	return nil
}

func tenantGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil || db.Statement.Context == nil {
		return
	}
	ctx := db.Statement.Context
	if appctx.Unscoped(ctx) {
		return
	}
	agencyID, ok := appctx.AgencyId(ctx)
	if !ok {
		return
	}
	if db.Statement.Schema == nil || db.Statement.Schema.LookUpField(tenantColumn) == nil {
		return
	}
	if whereHasAgencyID(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: tenantColumn},
				Value:  agencyID,
			},
		},
	})
}

func whereHasAgencyID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasAgencyID(e) {
			return true
		}
	}
	return false
}

func exprHasAgencyID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsAgencyID(v.Column)
	case clause.Neq:
		return colIsAgencyID(v.Column)
	case clause.IN:
		return colIsAgencyID(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasAgencyID(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasAgencyID(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// best effort for raw fragments like "agency_id = ?"
		return strings.Contains(strings.ToLower(v.SQL), tenantColumn)
	default:
		return false
	}
}

func colIsAgencyID(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, tenantColumn)
	case clause.Column:
		return strings.EqualFold(c.Name, tenantColumn)
	default:
		return false
	}
}
