package schema

import (
	"reflect"
	"testing"

	"stageload/internal/records"
)

func TestStaging_NamesAndOrder(t *testing.T) {
	cases := []struct {
		naming Naming
		want   []string
	}{
		{NamingStg, []string{"stg_transactions", "stg_users", "stg_products"}},
		{NamingStaging, []string{"staging_transactions", "staging_users", "staging_products"}},
		{"", []string{"stg_transactions", "stg_users", "stg_products"}},
	}
	for _, tc := range cases {
		rels := Staging(tc.naming)
		var got []string
		for _, r := range rels {
			got = append(got, r.Name)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Staging(%q) = %v; want %v", tc.naming, got, tc.want)
		}
	}
}

func TestStaging_Layouts(t *testing.T) {
	rels := Staging(NamingStg)
	if got := rels[0].ColumnNames(); !reflect.DeepEqual(got, []string{
		"TransactionID", "CustomerID", "ProductID", "Category", "Quantity", "Price", "TransactionDate",
	}) {
		t.Fatalf("transactions columns = %v", got)
	}
	users := rels[1].Kinds()
	if users["Age"] != records.KindInteger || users["SignupDate"] != records.KindTimestamp || users["Email"] != records.KindText {
		t.Fatalf("users kinds = %v", users)
	}
	products := rels[2].Kinds()
	if products["Price"] != records.KindFloat || products["StockQuantity"] != records.KindInteger {
		t.Fatalf("products kinds = %v", products)
	}
}

func TestStaging_ReturnsCopies(t *testing.T) {
	a := Staging(NamingStg)
	a[0].Columns[0].Name = "changed"
	b := Staging(NamingStg)
	if b[0].Columns[0].Name != "TransactionID" {
		t.Fatalf("layout mutated through returned slice")
	}
}

func TestDatasets_DateColumns(t *testing.T) {
	ds := Datasets()
	if len(ds) != 3 || ds[0].File != "transactions.csv" || ds[2].File != "products.csv" {
		t.Fatalf("datasets = %+v", ds)
	}
	if k := ds[0].DateKinds(); k["TransactionDate"] != records.KindTimestamp || len(k) != 1 {
		t.Fatalf("transactions date kinds = %v", k)
	}
	if k := ds[2].DateKinds(); len(k) != 0 {
		t.Fatalf("products should have no date columns: %v", k)
	}
}

func TestParseNaming(t *testing.T) {
	if n, err := ParseNaming("staging"); err != nil || n != NamingStaging {
		t.Fatalf("ParseNaming(staging) = %q, %v", n, err)
	}
	if n, err := ParseNaming(""); err != nil || n != NamingStg {
		t.Fatalf("ParseNaming(\"\") = %q, %v", n, err)
	}
	if _, err := ParseNaming("raw"); err == nil {
		t.Fatalf("ParseNaming(raw) = nil error")
	}
}
