package config

import (
	"context"
	"testing"

	"github.com/agencyhub/marketing_backend/appctx"
	"gorm.io/gorm/clause"
)

func TestWhereHasAgencyID(t *testing.T) {
	cases := []struct {
		name string
		expr clause.Expression
		want bool
	}{
		{"eq string column", clause.Eq{Column: "agency_id", Value: 1}, true},
		{"eq column struct", clause.Eq{Column: clause.Column{Table: "manual_entries", Name: "agency_id"}, Value: 1}, true},
		{"raw fragment", clause.Expr{SQL: "agency_id = ?", Vars: []interface{}{1}}, true},
		{"other column", clause.Eq{Column: "connection_id", Value: 3}, false},
		{"nested and", clause.AndConditions{Exprs: []clause.Expression{clause.Eq{Column: "id", Value: 1}, clause.IN{Column: "agency_id", Values: []interface{}{1}}}}, true},
	}
	for _, tc := range cases {
		got := whereHasAgencyID(clause.Clause{Expression: clause.Where{Exprs: []clause.Expression{tc.expr}}})
		if got != tc.want {
			t.Fatalf("%s: whereHasAgencyID = %v, want %v", tc.name, got, tc.want)
		}
	}
	if whereHasAgencyID(clause.Clause{}) {
		t.Fatalf("empty clause must not report agency_id")
	}
}

func TestTenantScopeBypass(t *testing.T) {
	ctx := context.Background()
	if appctx.Unscoped(ctx) {
		t.Fatalf("plain context must not bypass")
	}
	if !appctx.Unscoped(appctx.With(ctx, appctx.KeyIsAdmin, true)) {
		t.Fatalf("admin context must bypass")
	}
	if !appctx.Unscoped(appctx.With(ctx, appctx.KeySkipTenantScope, true)) {
		t.Fatalf("skip flag must bypass")
	}
	if _, ok := appctx.AgencyId(appctx.With(ctx, appctx.KeyAgencyId, 0)); ok {
		t.Fatalf("zero agency id must be ignored")
	}
	if id, ok := appctx.AgencyId(appctx.With(ctx, appctx.KeyAgencyId, 7)); !ok || id != 7 {
		t.Fatalf("AgencyId = %d,%v", id, ok)
	}
}
