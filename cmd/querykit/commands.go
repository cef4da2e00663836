package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/biyonik/querykit/pkg/database"
	"github.com/biyonik/querykit/pkg/database/migration"
)

func newDDLCommand(a *app) *cobra.Command {
	var dialect string

	cmd := &cobra.Command{
		Use:   "ddl <schema.yaml>",
		Short: "Print CREATE TABLE statements for a schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dialect(dialect)
			if err != nil {
				return err
			}
			schema, err := readSchema(args[0])
			if err != nil {
				return err
			}
			stmts, err := compileSchema(migration.NewGenerator(d), schema)
			if err != nil {
				return err
			}
			printStatements(cmd.OutOrStdout(), stmts)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dialect, "dialect", "d", "", "target dialect (mysql, postgres, sqlite); defaults to DB_DRIVER")
	return cmd
}

func newSQLCommand(a *app) *cobra.Command {
	var dialect string

	cmd := &cobra.Command{
		Use:   "sql <query.yaml>",
		Short: "Compile a query file and print the SQL and its arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dialect(dialect)
			if err != nil {
				return err
			}
			q, err := readQuery(args[0])
			if err != nil {
				return err
			}

			// Compiling does not need a connection.
			sqlStr, values, err := q.compile(database.New(nil, d, database.WithLogger(a.logger)))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sqlColor.Fprintln(out, d.Rebind(sqlStr))
			if len(values) > 0 {
				infoColor.Fprintf(out, "args: %v\n", values)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dialect, "dialect", "d", "", "target dialect (mysql, postgres, sqlite); defaults to DB_DRIVER")
	return cmd
}

func newQueryCommand(a *app) *cobra.Command {
	var (
		page    int
		perPage int
	)

	cmd := &cobra.Command{
		Use:   "query <query.yaml>",
		Short: "Run a query file against the configured database and print rows as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := readQuery(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, closeDB, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			f := q.fetcher(db.Builder())
			out := cmd.OutOrStdout()

			switch {
			case q.Count != nil:
				n, err := f.Count(ctx, q.countOptions())
				if err != nil {
					return err
				}
				return writeYAML(out, map[string]int64{"count": n})
			case page > 0:
				p, err := f.Paginate(ctx, page, perPage, q.countOptions())
				if err != nil {
					return err
				}
				return writeYAML(out, map[string]any{
					"items":        rowMaps(p.Items),
					"total":        p.Total,
					"total_pages":  p.TotalPages,
					"current_page": p.CurrentPage,
					"per_page":     p.PerPage,
				})
			default:
				rows, err := f.All(ctx)
				if err != nil {
					return err
				}
				return writeYAML(out, rowMaps(rows))
			}
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "paginate and return this page (1-based)")
	cmd.Flags().IntVar(&perPage, "per-page", 15, "page size used with --page")
	return cmd
}

func newMigrateCommand(a *app) *cobra.Command {
	var drop bool

	cmd := &cobra.Command{
		Use:   "migrate <schema.yaml>",
		Short: "Create the tables of a schema file in the configured database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := readSchema(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, closeDB, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			m := migration.NewMigrator(db, db.Dialect(), a.logger)
			out := cmd.OutOrStdout()

			if drop {
				for i := len(schema.Tables) - 1; i >= 0; i-- {
					if err := m.DropTable(ctx, schema.Tables[i].Name); err != nil {
						return err
					}
				}
			}

			for _, t := range schema.Tables {
				exists, err := m.HasTable(ctx, t.Name)
				if err != nil {
					return err
				}
				if exists {
					infoColor.Fprintf(out, "skip    %s (exists)\n", t.Name)
					continue
				}
				define, err := t.define()
				if err != nil {
					return err
				}
				if err := m.CreateTable(ctx, t.Name, define); err != nil {
					return err
				}
				successColor.Fprintf(out, "created %s\n", t.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "drop the schema's tables before creating them")
	return cmd
}

func newPingCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the database (and Redis query log) connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			out := cmd.OutOrStdout()
			successColor.Fprintf(out, "✓ connected to %s\n", db.Dialect())
			if a.cfg.Redis.Enabled {
				successColor.Fprintf(out, "✓ query log at redis %s:%d key %s\n", a.cfg.Redis.Host, a.cfg.Redis.Port, a.cfg.Redis.QueryLogKey)
			}
			return nil
		},
	}
}

func newLogCommand(a *app) *cobra.Command {
	var n int64

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the most recent statements from the Redis query log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := database.NewRedisClient(ctx, a.cfg.RedisConfig(), a.logger)
			if err != nil {
				return err
			}
			defer client.Close()

			sink := database.NewRedisSink(client, a.cfg.Redis.QueryLogKey, a.cfg.Redis.QueryLogMax, a.logger)
			stmts, err := sink.Recent(ctx, n)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(stmts) == 0 {
				infoColor.Fprintln(out, "no statements logged")
				return nil
			}
			for _, s := range stmts {
				infoColor.Fprintf(out, "%s [%s] ", s.ID, s.Dialect)
				sqlColor.Fprintln(out, s.SQL)
				if len(s.Args) > 0 {
					fmt.Fprintf(out, "    args: %v\n", s.Args)
				}
			}
			return nil
		},
	}
	cmd.Flags().Int64VarP(&n, "number", "n", 20, "number of statements to show")
	return cmd
}

func printStatements(w io.Writer, stmts []string) {
	for i, s := range stmts {
		if i > 0 {
			fmt.Fprintln(w)
		}
		sqlColor.Fprintln(w, strings.TrimSpace(s)+";")
	}
}

func rowMaps(rows []database.Row) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		m := r.Map()
		for k, v := range m {
			if b, ok := v.([]byte); ok {
				m[k] = string(b)
			}
		}
		out[i] = m
	}
	return out
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
