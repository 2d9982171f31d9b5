package records

import "testing"

func TestParseKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Kind
	}{
		{"text", KindText},
		{"", KindText},
		{"INT", KindInteger},
		{"bigint", KindInteger},
		{"double", KindFloat},
		{"date", KindTimestamp},
		{" timestamp ", KindTimestamp},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if err != nil {
			t.Fatalf("ParseKind(%q) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseKind(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
	if _, err := ParseKind("blob"); err == nil {
		t.Fatalf("ParseKind(blob) = nil error; want error")
	}
}

func TestDataset_ValuesAlignsColumns(t *testing.T) {
	t.Parallel()

	ds := Dataset{
		Name:    "products",
		Columns: []string{"ProductID", "Price"},
		Rows: []Record{
			{"ProductID": "P1", "Price": 9.5},
			{"ProductID": "P2"},
		},
	}
	got := ds.Values([]string{"Price", "ProductID", "Missing"})
	if len(got) != 2 {
		t.Fatalf("len(Values) = %d; want 2", len(got))
	}
	if got[0][0] != 9.5 || got[0][1] != "P1" || got[0][2] != nil {
		t.Fatalf("row0 = %#v", got[0])
	}
	if got[1][0] != nil || got[1][1] != "P2" {
		t.Fatalf("row1 = %#v", got[1])
	}
}

func TestDataset_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	ds := Dataset{Name: "users", Columns: []string{"Age"}, Rows: []Record{{"Age": "30"}}}
	cp := ds.Clone()
	cp.Rows[0]["Age"] = int64(30)
	cp.Columns[0] = "changed"

	if ds.Rows[0]["Age"] != "30" {
		t.Fatalf("original row mutated: %#v", ds.Rows[0])
	}
	if ds.Columns[0] != "Age" {
		t.Fatalf("original columns mutated: %#v", ds.Columns)
	}
	if !cp.HasColumn("changed") || cp.HasColumn("Age") {
		t.Fatalf("HasColumn on clone mismatched: %#v", cp.Columns)
	}
}
