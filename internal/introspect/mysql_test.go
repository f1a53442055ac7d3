package introspect

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yobatis-go/yobatis/internal/mapper"
)

var columnHeaders = []string{"Field", "Type", "Collation", "Null", "Key", "Default", "Extra", "Privileges", "Comment"}

func newMock(t *testing.T) (*MySQLIntrospector, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLIntrospector(db, "shop"), mock
}

func TestIntrospect(t *testing.T) {
	in, mock := newMock(t)

	mock.ExpectQuery("SHOW CREATE DATABASE `shop`").
		WillReturnRows(sqlmock.NewRows([]string{"Database", "Create Database"}).
			AddRow("shop", "CREATE DATABASE `shop` /*!40100 DEFAULT CHARACTER SET utf8mb4 */"))
	mock.ExpectQuery("SHOW TABLES FROM `shop`").
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop"}).AddRow("user").AddRow("order-item"))

	mock.ExpectQuery("SHOW FULL COLUMNS FROM `user` FROM `shop`").
		WillReturnRows(sqlmock.NewRows(columnHeaders).
			AddRow("id", "bigint(20)", nil, "NO", "PRI", nil, "auto_increment", "select", "").
			AddRow("name", "varchar(64)", "utf8mb4_general_ci", "YES", "", "anon", "", "select", "display name").
			AddRow("score", "decimal(10,2)", nil, "YES", "", nil, "", "select", ""))
	mock.ExpectQuery("SHOW CREATE TABLE `shop`.`user`").
		WillReturnRows(sqlmock.NewRows([]string{"Table", "Create Table"}).
			AddRow("user", "CREATE TABLE `user` (\n  `id` bigint(20) NOT NULL\n)"))

	mock.ExpectQuery("SHOW FULL COLUMNS FROM `order-item` FROM `shop`").
		WillReturnRows(sqlmock.NewRows(columnHeaders).
			AddRow("order id", "int", nil, "NO", "PRI", nil, "", "select", ""))
	mock.ExpectQuery("SHOW CREATE TABLE `shop`.`order-item`").
		WillReturnRows(sqlmock.NewRows([]string{"Table", "Create Table"}).
			AddRow("order-item", "CREATE TABLE `order-item` (`order id` int)"))

	db, err := in.Introspect(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "shop", db.Name)
	assert.Equal(t, "CREATE DATABASE IF NOT EXISTS `shop` /*!40100 DEFAULT CHARACTER SET utf8mb4 */", db.Create)
	require.Len(t, db.Tables, 2)

	user := db.Tables[0]
	assert.Equal(t, "user", user.Name)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS `user` (\n  `id` bigint(20) NOT NULL\n)", user.Create)
	require.Len(t, user.Columns, 3)

	id := user.Columns[0]
	assert.Equal(t, mapper.KindInteger, id.Kind)
	assert.True(t, id.PrimaryKey)
	assert.False(t, id.Nullable)
	assert.Nil(t, id.Default)

	name := user.Columns[1]
	assert.Equal(t, mapper.KindText, name.Kind)
	assert.True(t, name.Nullable)
	require.NotNil(t, name.Default)
	assert.Equal(t, "anon", *name.Default)
	assert.Equal(t, "display name", name.Comment)

	assert.Equal(t, mapper.KindFloatingPoint, user.Columns[2].Kind)

	keys := user.PrimaryKeys()
	require.Len(t, keys, 1)
	assert.Equal(t, "id", keys[0].Name)
}

func TestIntrospectFailures(t *testing.T) {
	t.Run("database ddl", func(t *testing.T) {
		in, mock := newMock(t)
		mock.ExpectQuery("SHOW CREATE DATABASE `shop`").WillReturnError(errors.New("access denied"))

		_, err := in.Introspect(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIntrospectionFailed))
		assert.Contains(t, err.Error(), "access denied")
	})

	t.Run("columns", func(t *testing.T) {
		in, mock := newMock(t)
		mock.ExpectQuery("SHOW CREATE DATABASE `shop`").
			WillReturnRows(sqlmock.NewRows([]string{"Database", "Create Database"}).AddRow("shop", "CREATE DATABASE `shop`"))
		mock.ExpectQuery("SHOW TABLES FROM `shop`").
			WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop"}).AddRow("user"))
		mock.ExpectQuery("SHOW FULL COLUMNS FROM `user` FROM `shop`").WillReturnError(errors.New("gone away"))

		_, err := in.Introspect(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIntrospectionFailed))
		assert.Contains(t, err.Error(), "table user")
	})
}

func TestClassifyType(t *testing.T) {
	tests := []struct {
		columnType string
		want       mapper.FieldKind
	}{
		{"int(11)", mapper.KindInteger},
		{"bigint unsigned", mapper.KindInteger},
		{"tinyint(1)", mapper.KindInteger},
		{"bit(1)", mapper.KindInteger},
		{"float", mapper.KindFloatingPoint},
		{"double", mapper.KindFloatingPoint},
		{"decimal(10,2)", mapper.KindFloatingPoint},
		{"numeric", mapper.KindFloatingPoint},
		{"DOUBLE", mapper.KindFloatingPoint},
		{"varchar(255)", mapper.KindText},
		{"datetime", mapper.KindText},
		{"blob", mapper.KindText},
	}

	for _, tt := range tests {
		t.Run(tt.columnType, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyType(tt.columnType))
		})
	}
}

func TestIfNotExists(t *testing.T) {
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS `t` (a int)", ifNotExists("CREATE TABLE `t` (a int)", "TABLE"))
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS `t`", ifNotExists("CREATE TABLE IF NOT EXISTS `t`", "TABLE"))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`a``b`", quoteIdent("a`b"))
}

func TestOptionsDSN(t *testing.T) {
	o := Options{Host: "db.local", Port: 3307, User: "root", Password: "secret", Database: "shop"}
	assert.Equal(t, "root:secret@tcp(db.local:3307)/shop", o.DSN())
}
