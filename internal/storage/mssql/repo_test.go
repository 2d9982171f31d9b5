package mssql

import (
	"context"
	"strings"
	"testing"

	gddl "stageload/internal/ddl"
	"stageload/internal/records"
	"stageload/internal/schema"
	"stageload/internal/storage"
	"stageload/internal/storage/sqldb"
)

func TestMapType(t *testing.T) {
	t.Parallel()

	cases := map[records.Kind]string{
		records.KindText:      "NVARCHAR(MAX)",
		records.KindInteger:   "BIGINT",
		records.KindFloat:     "FLOAT",
		records.KindTimestamp: "DATETIME2",
	}
	for in, want := range cases {
		if got := MapType(in); got != want {
			t.Fatalf("MapType(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestBuildCreateTableSQL_Guarded(t *testing.T) {
	t.Parallel()

	def := gddl.FromRelation(schema.Staging(schema.NamingStg)[2])
	got, err := gddl.BuildCreateTableSQL(def, Dialect.DDL)
	if err != nil {
		t.Fatal(err)
	}
	want := "IF OBJECT_ID(N'[stg_products]', N'U') IS NULL\nBEGIN\n" +
		"  CREATE TABLE [stg_products] (\n" +
		"    [ProductID] NVARCHAR(MAX),\n" +
		"    [ProductName] NVARCHAR(MAX),\n" +
		"    [Category] NVARCHAR(MAX),\n" +
		"    [Brand] NVARCHAR(MAX),\n" +
		"    [Price] FLOAT,\n" +
		"    [StockQuantity] BIGINT\n" +
		"  );\nEND;"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestDropAndQuoting(t *testing.T) {
	t.Parallel()

	q := gddl.QuoteFQN("dbo.o'brien]x", quoteIdent)
	if q != "[dbo].[o'brien]]x]" {
		t.Fatalf("quoted = %q", q)
	}
	got := Dialect.Drop(q)
	if got != "IF OBJECT_ID(N'[dbo].[o''brien]]x]', N'U') IS NOT NULL DROP TABLE [dbo].[o'brien]]x];" {
		t.Fatalf("Drop = %q", got)
	}
}

func TestNewRepository_InvalidDSN(t *testing.T) {
	t.Parallel()

	_, err := NewRepository(context.Background(), Config{DSN: "sqlserver://%zz"})
	if err == nil || !strings.Contains(err.Error(), "mssql dsn") {
		t.Fatalf("err = %v", err)
	}
}

func TestAdapter_UsesHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var got Config
	newRepository = func(ctx context.Context, cfg Config) (*sqldb.Repository, error) {
		got = cfg
		return nil, context.DeadlineExceeded
	}
	if _, err := storage.New(context.Background(), storage.Config{Kind: "mssql", DSN: "sqlserver://h"}); err != context.DeadlineExceeded {
		t.Fatalf("err = %v", err)
	}
	if got.DSN != "sqlserver://h" || got.BatchSize != storage.DefaultBatchSize {
		t.Fatalf("hook saw %+v", got)
	}
}
