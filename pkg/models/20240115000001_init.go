package models

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		for _, model := range []interface{}{
			(*Tenant)(nil),
			(*Agent)(nil),
			(*Post)(nil),
			(*ScheduleConfig)(nil),
		} {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}

		indexes := []struct {
			table  string
			column string
		}{
			{tableNameAgents, "tenant_id"},
			{tableNamePosts, "tenant_id"},
			{tableNamePosts, "agent_id"},
			{tableNamePosts, "status"},
			{tableNameScheduleConfigs, "next_run_at"},
		}
		for _, idx := range indexes {
			if _, err := db.Exec(fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_%s ON %s (%s)", idx.table, idx.column, idx.table, idx.column)); err != nil {
				return err
			}
		}

		return nil
	}, nil)
}
