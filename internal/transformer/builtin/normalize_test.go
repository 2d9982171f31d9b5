package builtin

import (
	"reflect"
	"testing"

	"stageload/internal/records"
)

func TestNormalizeApply_TableDriven(t *testing.T) {
	tests := []struct {
		name string
		in   []records.Record
		want []records.Record
	}{
		{
			name: "no_strings_no_change",
			in:   []records.Record{{"a": int64(1), "c": nil}},
			want: []records.Record{{"a": int64(1), "c": nil}},
		},
		{
			name: "simple_trim_spaces",
			in:   []records.Record{{"a": " foo ", "b": "\tbar\n"}},
			want: []records.Record{{"a": "foo", "b": "bar"}},
		},
		{
			name: "nbsp_replaced_and_trimmed",
			in:   []records.Record{{"a": " " + nbspace + "foo" + nbspace + " "}},
			want: []records.Record{{"a": "foo"}},
		},
		{
			name: "blank_becomes_null",
			in:   []records.Record{{"a": "  "}},
			want: []records.Record{{"a": nil}},
		},
		{
			name: "decomposed_is_composed",
			in:   []records.Record{{"Name": "Jose\u0301"}},
			want: []records.Record{{"Name": "Jos\u00e9"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize{}.Apply(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Apply() = %#v; want %#v", got, tt.want)
			}
		})
	}
}
