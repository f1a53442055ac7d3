package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/yobatis-go/yobatis/internal/debug"
)

// Options are the connection parameters of the MySQL server.
type Options struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// DSN returns the go-sql-driver data source name for o.
func (o Options) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
	cfg.DBName = o.Database
	return cfg.FormatDSN()
}

// Connect opens and pings a connection pool for o.
func Connect(ctx context.Context, o Options) (*sql.DB, error) {
	debug.Debug("Connecting to MySQL", "host", o.Host, "port", o.Port, "database", o.Database)

	db, err := sql.Open("mysql", o.DSN())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return db, nil
}

// MySQLIntrospector implements introspection for MySQL.
type MySQLIntrospector struct {
	db       *sql.DB
	database string
}

// NewMySQLIntrospector returns an introspector for database on db.
func NewMySQLIntrospector(db *sql.DB, database string) *MySQLIntrospector {
	return &MySQLIntrospector{db: db, database: database}
}

// Introspect reads the database DDL and every table of the database.
func (i *MySQLIntrospector) Introspect(ctx context.Context) (*Database, error) {
	create, err := i.createDatabase(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntrospectionFailed, err)
	}

	names, err := i.tableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntrospectionFailed, err)
	}

	db := &Database{Name: i.database, Create: create}
	for _, name := range names {
		table, err := i.table(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%w: table %s: %w", ErrIntrospectionFailed, name, err)
		}
		db.Tables = append(db.Tables, *table)
	}

	debug.Debug("Database introspected", "database", i.database, "tables", len(db.Tables))
	return db, nil
}

func (i *MySQLIntrospector) createDatabase(ctx context.Context) (string, error) {
	var name, ddl string
	err := i.db.QueryRowContext(ctx, "SHOW CREATE DATABASE "+quoteIdent(i.database)).Scan(&name, &ddl)
	if err != nil {
		return "", fmt.Errorf("failed to read database DDL: %w", err)
	}
	return ifNotExists(ddl, "DATABASE"), nil
}

func (i *MySQLIntrospector) tableNames(ctx context.Context) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, "SHOW TABLES FROM "+quoteIdent(i.database))
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tables: %w", err)
	}
	return names, nil
}

func (i *MySQLIntrospector) table(ctx context.Context, name string) (*Table, error) {
	columns, err := i.columns(ctx, name)
	if err != nil {
		return nil, err
	}

	var tableName, ddl string
	query := "SHOW CREATE TABLE " + quoteIdent(i.database) + "." + quoteIdent(name)
	if err := i.db.QueryRowContext(ctx, query).Scan(&tableName, &ddl); err != nil {
		return nil, fmt.Errorf("failed to read table DDL: %w", err)
	}

	debug.Debug("Table introspected", "table", name, "columns", len(columns))
	return &Table{Name: name, Columns: columns, Create: ifNotExists(ddl, "TABLE")}, nil
}

func (i *MySQLIntrospector) columns(ctx context.Context, table string) ([]Column, error) {
	query := "SHOW FULL COLUMNS FROM " + quoteIdent(table) + " FROM " + quoteIdent(i.database)
	rows, err := i.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var (
			col        Column
			collation  sql.NullString
			null, key  string
			def        sql.NullString
			extra      string
			privileges string
		)
		if err := rows.Scan(&col.Name, &col.Type, &collation, &null, &key, &def, &extra, &privileges, &col.Comment); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		col.Kind = ClassifyType(col.Type)
		col.Nullable = null == "YES"
		col.PrimaryKey = key == "PRI"
		if def.Valid {
			v := def.String
			col.Default = &v
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate columns: %w", err)
	}
	return columns, nil
}
