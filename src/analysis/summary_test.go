package analysis

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iafilius/SRTStatsPlot/src/derive"
	"github.com/iafilius/SRTStatsPlot/src/schema"
	"github.com/iafilius/SRTStatsPlot/src/stats"
)

const rcvHeader = "Time,SocketID,byteRecv,byteRcvDrop,byteSent,byteSndDrop,pktRecv,pktRcvLoss,pktRcvRetrans,pktRcvDrop,pktRcvBelated,pktRcvFilterExtra,pktRcvFilterSupply,pktRcvFilterLoss\n"

// writeCSV writes a statistics file into dir and returns its path.
func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func find(ps []Percentage, name string) Percentage {
	for _, p := range ps {
		if p.Name == name {
			return p
		}
	}
	return Percentage{Name: "missing"}
}

func TestReceivedPacketsExcludesFECExtra(t *testing.T) {
	tbl, err := stats.ReadCSV(strings.NewReader(rcvHeader +
		"0,1,0,0,0,0,400,4,8,0,2,20,10,1\n" +
		"100,1,0,0,0,0,600,6,2,0,0,30,15,0\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := ReceivedPackets(tbl)
	if p := find(got, "lost"); p.Value != 1.05 || p.Err() != nil {
		t.Fatalf("lost=%+v want 1.05", p)
	}
	if p := find(got, "retransmitted"); p.Value != 1.05 {
		t.Fatalf("retransmitted=%+v", p)
	}
	if p := find(got, "dropped"); p.Value != 0 || p.Err() != nil {
		t.Fatalf("dropped=%+v", p)
	}
	if p := find(got, "belated"); p.Value != 0.21 {
		t.Fatalf("belated=%+v", p)
	}
}

func TestReceivedPacketsWithoutFilterColumn(t *testing.T) {
	tbl, err := stats.ReadCSV(strings.NewReader("pktRecv,pktRcvLoss,pktRcvRetrans,pktRcvDrop,pktRcvBelated\n200,2,0,0,0\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if p := find(ReceivedPackets(tbl), "lost"); p.Value != 1 {
		t.Fatalf("lost=%+v want 1", p)
	}
}

func TestZeroDenominatorFailsOnlyThatStatistic(t *testing.T) {
	tbl, err := stats.ReadCSV(strings.NewReader(rcvHeader + "0,1,0,0,0,0,10,1,0,0,0,10,0,0\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := ReceivedPackets(tbl)
	if len(got) != 4 {
		t.Fatalf("expected all four statistics, got %d", len(got))
	}
	for _, p := range got {
		if !errors.Is(p.Err(), derive.ErrDivisionUndefined) || p.Error == "" {
			t.Fatalf("%s: expected ErrDivisionUndefined, got %v", p.Name, p.Err())
		}
	}
	if s := got[0].String(); !strings.Contains(s, "n/a") {
		t.Fatalf("failed statistic should print n/a: %s", s)
	}
}

func TestMissingCounterIsReportedPerStatistic(t *testing.T) {
	tbl, err := stats.ReadCSV(strings.NewReader("pktRecv,pktRcvLoss\n100,1\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := ReceivedPackets(tbl)
	if p := find(got, "lost"); p.Err() != nil || p.Value != 1 {
		t.Fatalf("lost should still be computed: %+v", p)
	}
	if p := find(got, "belated"); !errors.Is(p.Err(), derive.ErrSchema) {
		t.Fatalf("belated should fail with schema error: %+v", p)
	}
}

func TestFECSummary(t *testing.T) {
	tbl, err := stats.ReadCSV(strings.NewReader(rcvHeader +
		"0,1,0,0,0,0,110,0,0,0,0,10,3,1\n" +
		"100,1,0,0,0,0,220,0,0,0,0,20,2,0\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got, avg := FEC(tbl)
	// srt packets = 330 - 30 = 300
	if p := find(got, "fec_overhead"); p.Value != 10 {
		t.Fatalf("overhead=%+v", p)
	}
	if p := find(got, "fec_reconstructed"); p.Value != 1.67 {
		t.Fatalf("reconstructed=%+v", p)
	}
	if p := find(got, "fec_not_reconstructed"); p.Value != 0.33 {
		t.Fatalf("not reconstructed=%+v", p)
	}
	if avg == nil || *avg != 10 {
		t.Fatalf("avg overhead=%v want 10", avg)
	}
}

func TestAnalyzeGroupedPerSocket(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "group-rcv.csv", rcvHeader+
		"0,1073741824,0,0,0,0,200,2,0,0,0,0,0,0\n"+
		"0,11,0,0,0,0,100,1,0,0,0,0,0,0\n"+
		"0,12,0,0,0,0,100,3,0,0,0,0,0,0\n")
	sums, err := AnalyzeFile(path, schema.Group(), false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(sums) != 3 {
		t.Fatalf("expected 3 socket summaries got %d", len(sums))
	}
	if sums[0].Socket != "Group" || find(sums[0].Received, "lost").Value != 1 {
		t.Fatalf("unexpected group summary %+v", sums[0])
	}
	if sums[2].Socket != "Member 2" || find(sums[2].Received, "lost").Value != 3 {
		t.Fatalf("unexpected member summary %+v", sums[2])
	}
}

func TestAnalyzeDirSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "b-rcv.csv", rcvHeader+"0,1,0,0,0,0,100,1,0,0,0,0,0,0\n")
	writeCSV(t, dir, "a-rcv.csv", "Time,pktRecv\n0,1\n") // schema error
	writeCSV(t, dir, "notes.txt", "ignored")
	sums, err := AnalyzeDir(dir, schema.SRT(), true)
	if err != nil {
		t.Fatalf("analyze dir: %v", err)
	}
	if len(sums) != 1 || filepath.Base(sums[0].File) != "b-rcv.csv" {
		t.Fatalf("unexpected summaries %+v", sums)
	}
	if len(sums[0].FEC) != 3 {
		t.Fatalf("fec statistics requested but missing")
	}
}

func TestAnalyzeDirEmpty(t *testing.T) {
	if _, err := AnalyzeDir(t.TempDir(), schema.SRT(), false); err == nil {
		t.Fatalf("expected error for directory without csv files")
	}
}
