package features

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func mustFrame(t *testing.T, data string) *Frame {
	t.Helper()
	f, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	return f
}

func TestParseLabels(t *testing.T) {
	tests := []struct {
		cell string
		want []string
	}{
		{"", nil},
		{"[]", nil},
		{"nan", nil},
		{"['Pizza', \"Bars\"]", []string{"Pizza", "Bars"}},
		{"[Pizza,  Italian ]", []string{"Pizza", "Italian"}},
		{"Pizza", []string{"Pizza"}},
		{"[ , ]", nil},
	}
	for _, tt := range tests {
		if got := ParseLabels(tt.cell); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseLabels(%q) = %q, want %q", tt.cell, got, tt.want)
		}
	}
}

func TestEncodeMultiLabel(t *testing.T) {
	f := mustFrame(t, "business_id,categories,demand\n"+
		"b1,\"['Pizza', 'Bars']\",10\n"+
		"b2,[],4\n"+
		"b3,\"[Bars, Cafes]\",7\n")

	out, labels, err := EncodeMultiLabel(f, "categories")
	if err != nil {
		t.Fatalf("EncodeMultiLabel failed: %v", err)
	}
	if !reflect.DeepEqual(labels, []string{"Bars", "Cafes", "Pizza"}) {
		t.Errorf("Unexpected labels %v", labels)
	}
	wantCols := []string{"business_id", "demand", "categories_Bars", "categories_Cafes", "categories_Pizza"}
	if !reflect.DeepEqual(out.Columns, wantCols) {
		t.Errorf("Columns = %v, want %v", out.Columns, wantCols)
	}
	wantRows := [][]string{
		{"b1", "10", "1", "0", "1"},
		{"b2", "4", "0", "0", "0"},
		{"b3", "7", "1", "1", "0"},
	}
	if !reflect.DeepEqual(out.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", out.Rows, wantRows)
	}
	if f.Index("categories") != 1 {
		t.Error("Input frame must not be modified")
	}

	if _, _, err := EncodeMultiLabel(f, "missing"); err == nil {
		t.Error("Expected error for unknown column")
	}
}

func TestRemoveLowVariance(t *testing.T) {
	var b strings.Builder
	b.WriteString("business_id,month,demand,flag,rare,name,stars,many\n")
	for i := 0; i < 20; i++ {
		flag, rare := "0", "1"
		if i == 0 {
			flag = "1"
		}
		if i < 3 {
			rare = "0"
		}
		stars := []string{"1", "2", "3", "4"}[i%4]
		b.WriteString(strings.Join([]string{"b1", "1", "1", flag, rare, "same", stars, string(rune('a'+i%2)) + "x"}, ","))
		b.WriteString("\n")
	}
	f := mustFrame(t, b.String())

	out, report := RemoveLowVariance(f, DefaultThreshold, DefaultExclude)

	wantCols := []string{"business_id", "month", "demand", "rare", "name", "stars", "many"}
	if !reflect.DeepEqual(out.Columns, wantCols) {
		t.Errorf("Columns = %v, want %v", out.Columns, wantCols)
	}
	if len(report) != 1 || report[0].Column != "flag" || report[0].MaxProportion != 0.95 || report[0].DominantValue != "0" {
		t.Errorf("Unexpected report %+v", report)
	}

	_, report = RemoveLowVariance(f, 0.85, DefaultExclude)
	if len(report) != 2 || report[0].Column != "flag" || report[1].Column != "rare" {
		t.Errorf("Report must be sorted by proportion, got %+v", report)
	}
}

func TestRemoveLowVariance_HighCardinalityAndMissing(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,score,sparse\n")
	for i := 0; i < 12; i++ {
		sparse := ""
		if i < 2 {
			sparse = "5"
		}
		b.WriteString("x," + string(rune('0'+i%10)) + string(rune('0'+i/10)) + "," + sparse + "\n")
	}
	f := mustFrame(t, b.String())

	out, report := RemoveLowVariance(f, 0.9, nil)
	// score has 12 distinct values; sparse is constant over its non-empty cells
	if len(report) != 1 || report[0].Column != "sparse" || report[0].MaxProportion != 1 {
		t.Errorf("Unexpected report %+v", report)
	}
	if !reflect.DeepEqual(out.Columns, []string{"id", "score"}) {
		t.Errorf("Unexpected columns %v", out.Columns)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	f := mustFrame(t, "\ufeffa,b\n1,\"x,y\"\n2\n")
	if f.Columns[0] != "a" {
		t.Errorf("BOM not stripped: %q", f.Columns[0])
	}
	if f.Rows[1][1] != "" {
		t.Errorf("Short row not padded: %v", f.Rows[1])
	}

	var buf bytes.Buffer
	if err := f.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if buf.String() != "a,b\n1,\"x,y\"\n2,\n" {
		t.Errorf("Unexpected CSV %q", buf.String())
	}

	if err := f.Append("c", []string{"1"}); err == nil {
		t.Error("Expected error for mismatched column length")
	}
}
