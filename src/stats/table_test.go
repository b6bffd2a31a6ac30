package stats

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadCSVRejectsNonCSVBeforeOpening(t *testing.T) {
	// The file does not exist: the extension check must fire first.
	_, err := LoadCSV(filepath.Join(t.TempDir(), "stats.txt"))
	if !errors.Is(err, ErrInvalidInputFormat) {
		t.Fatalf("expected ErrInvalidInputFormat, got %v", err)
	}
}

func TestLoadCSVParsesHeaderAndNumbers(t *testing.T) {
	path := writeFile(t, "x-rcv-1.csv", "Time,SocketID,msRTT,byteRecv,\n0,1,10.5,1500,\n100,1,,3000,\n200,1,12,4500,\n")
	tbl, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("expected 3 rows got %d", tbl.Len())
	}
	if got := strings.Join(tbl.Columns(), ","); got != "Time,SocketID,msRTT,byteRecv" {
		t.Fatalf("unexpected columns %q", got)
	}
	rtt, _ := tbl.Values("msRTT")
	if rtt[0] != 10.5 || !math.IsNaN(rtt[1]) || rtt[2] != 12 {
		t.Fatalf("unexpected msRTT %v", rtt)
	}
	if tbl.Integer("msRTT") {
		t.Fatalf("msRTT has a fractional value, must not be integer")
	}
	if !tbl.Integer("byteRecv") {
		t.Fatalf("byteRecv should be integer")
	}
	if _, ok := tbl.Raw("byteRecv"); ok {
		t.Fatalf("numeric column must not retain raw text")
	}
	sum, ok := tbl.Sum("msRTT")
	if !ok || sum != 22.5 {
		t.Fatalf("sum should skip NaN: got %v ok=%v", sum, ok)
	}
}

func TestReadCSVKeepsRawTextForTimestamps(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("Timepoint,pktSentTotal\n2021-02-05T14:01:01.000000+0100,1\n2021-02-05T14:01:01.500000+0100,3\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	raw, ok := tbl.Raw("Timepoint")
	if !ok || len(raw) != 2 || raw[1] != "2021-02-05T14:01:01.500000+0100" {
		t.Fatalf("unexpected raw timepoints %v ok=%v", raw, ok)
	}
}

func TestReadCSVShortRecordsAreNaN(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b,c\n1,2,3\n4\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	c, _ := tbl.Values("c")
	if c[0] != 3 || !math.IsNaN(c[1]) {
		t.Fatalf("unexpected c %v", c)
	}
}

func TestReadCSVEmptyInput(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Fatalf("expected error for missing header")
	}
}

func TestAddColumnLengthAndReplace(t *testing.T) {
	tbl := NewTable(2)
	if err := tbl.AddColumn("a", []float64{1}, true); err == nil {
		t.Fatalf("expected length mismatch error")
	}
	if err := tbl.AddColumn("a", []float64{1, 2}, true); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := tbl.AddColumn("a", []float64{3, 4}, false); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(tbl.Columns()) != 1 {
		t.Fatalf("replace must not add a second column")
	}
	v, _ := tbl.Values("a")
	if v[0] != 3 || tbl.Integer("a") {
		t.Fatalf("replace did not take effect: %v", v)
	}
}

func TestFilterAndUnique(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("SocketID,pktRecv,Timepoint\n1073741825,10,t0\n5,1,t0\n1073741825,20,t1\n6,2,t1\n5,3,t2\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	ids := tbl.Unique("SocketID")
	if len(ids) != 3 || ids[0] != 1073741825 || ids[1] != 5 || ids[2] != 6 {
		t.Fatalf("unexpected unique ids %v", ids)
	}
	sock, _ := tbl.Values("SocketID")
	sub := tbl.Filter(func(i int) bool { return sock[i] == 5 })
	if sub.Len() != 2 {
		t.Fatalf("expected 2 rows for socket 5, got %d", sub.Len())
	}
	pkts, _ := sub.Values("pktRecv")
	if pkts[0] != 1 || pkts[1] != 3 {
		t.Fatalf("unexpected filtered values %v", pkts)
	}
	raw, _ := sub.Raw("Timepoint")
	if raw[1] != "t2" {
		t.Fatalf("raw text must follow the filter: %v", raw)
	}
}

func TestStem(t *testing.T) {
	cases := map[string]string{
		"/tmp/a/srt-rcv-1.csv": "srt-rcv-1",
		"stats.v2.csv":         "stats.v2",
		"noext":                "noext",
	}
	for in, want := range cases {
		if got := Stem(in); got != want {
			t.Fatalf("Stem(%q)=%q want %q", in, got, want)
		}
	}
}
