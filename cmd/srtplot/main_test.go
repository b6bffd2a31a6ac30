package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const rcvCSV = "Time,pktRecv,pktRcvLoss,pktRcvRetrans,pktRcvBelated,pktRcvDrop," +
	"byteRecv,byteRcvDrop,byteSent,byteSndDrop,byteAvailRcvBuf," +
	"pktFlowWindow,pktCongestionWindow,mbpsRecvRate,msRTT,mbpsBandwidth,msRcvBuf,RCVLATENCYms\n" +
	"0,400,4,4,0,0,526400,0,0,0,12000000,8192,8192,10.5,20.1,900,120,120\n" +
	"100,600,6,6,1,0,789600,0,0,0,11000000,8192,8192,11.6,19.8,910,121,120\n"

// isolate keeps the developer's own config file and SRTPLOT_* variables out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, kv := range os.Environ() {
		if k, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "SRTPLOT_") {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
	}
	return t.TempDir()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunWritesHTMLNextToInput(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "session-rcv.csv")
	writeFile(t, in, rcvCSV)
	code, _, stderr := runCLI("--log-level", "error", in)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	b, err := os.ReadFile(filepath.Join(dir, "session-rcv.html"))
	if err != nil {
		t.Fatalf("html not written: %v", err)
	}
	if !strings.Contains(string(b), "echarts.connect") {
		t.Fatalf("report lacks linked axes")
	}
}

func TestRunFilenameOverridesSenderFlag(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "session-rcv.csv")
	writeFile(t, in, rcvCSV)
	code, stdout, stderr := runCLI("--log-level", "error", "--is-sender", in)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "receiver statistics") {
		t.Fatalf("expected a notice on stdout, got %q", stdout)
	}
}

func TestRunRejectsNonCSV(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "stats.txt")
	writeFile(t, in, rcvCSV)
	code, _, stderr := runCLI(in)
	if code == 0 || !strings.Contains(stderr, "does not correspond to a .csv file") {
		t.Fatalf("exit %d stderr %q", code, stderr)
	}
}

func TestRunMissingFile(t *testing.T) {
	dir := isolate(t)
	if code, _, _ := runCLI(filepath.Join(dir, "absent.csv")); code == 0 {
		t.Fatalf("missing input must fail")
	}
}

func TestRunSchemaErrorWritesNothing(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "broken-rcv.csv")
	writeFile(t, in, "Time,byteRecv,byteRcvDrop,byteSent\n0,1,2,3\n")
	code, _, stderr := runCLI("--log-level", "error", in)
	if code == 0 || !strings.Contains(stderr, "byteSndDrop") {
		t.Fatalf("exit %d stderr %q", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "broken-rcv.html")); !os.IsNotExist(err) {
		t.Fatalf("no report expected for a schema error")
	}
}

func TestRunExportPNGAndSummary(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "live-rcv.csv")
	writeFile(t, in, rcvCSV)
	code, stdout, stderr := runCLI("--log-level", "error", "--export-png", "--summary", in)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	for _, tag := range []string{"packets", "rate", "rtt", "availbuffer"} {
		if _, err := os.Stat(filepath.Join(dir, "live-rcv-"+tag+".png")); err != nil {
			t.Fatalf("png %s: %v", tag, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "live-rcv-pktsendperiod.png")); !os.IsNotExist(err) {
		t.Fatalf("sender-only chart exported for receiver stats")
	}
	// 10 lost of 1000 received
	if !strings.Contains(stdout, "lost: 1 %") {
		t.Fatalf("summary missing from stdout: %q", stdout)
	}
}

func TestRunDirectoryPlotsEveryFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "a-rcv.csv"), rcvCSV)
	writeFile(t, filepath.Join(dir, "b-rcv.csv"), rcvCSV)
	writeFile(t, filepath.Join(dir, "c-rcv.csv"), "Time,byteRecv\n0,1\n")
	code, _, _ := runCLI("--log-level", "error", "--jobs", "2", dir)
	if code == 0 {
		t.Fatalf("a failing file must make the run fail")
	}
	for _, name := range []string{"a-rcv.html", "b-rcv.html"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}

func TestResolveSide(t *testing.T) {
	cases := []struct {
		path     string
		isSender bool
		want     bool
		notice   bool
	}{
		{"x/live-snd.csv", false, true, true},
		{"x/live-snd.csv", true, true, false},
		{"x/live-rcv.csv", true, false, true},
		{"x/live-rcv.csv", false, false, false},
		{"x/sndrcv.csv", true, true, false},
		{"x/live.csv", true, true, false},
	}
	for _, c := range cases {
		var out bytes.Buffer
		got := resolveSide(&out, c.path, c.isSender)
		if got != c.want || (out.Len() > 0) != c.notice {
			t.Fatalf("%s sender=%v: got %v notice=%q", c.path, c.isSender, got, out.String())
		}
	}
}

func TestLoadConfigFileEnvAndCustomSchema(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "srtplot.yml")
	writeFile(t, cfgPath, `width: 800
log-level: warn
schemas:
  - name: tiny
    x-column: Time
    x-label: Time (ms)
    required: [Time, pktRecv]
    panels:
      - key: recv
        title: Received
        ylabel: Packets
        tag: recv
        lines:
          - {column: pktRecv, legend: Received, color: green}
    grid:
      - [recv]
`)
	t.Setenv("SRTPLOT_HEIGHT", "250")
	fs := newFlagSet()
	if err := fs.Parse([]string{"--config", cfgPath}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := loadConfig(fs)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 250 || cfg.LogLevel != "warn" || cfg.Jobs != 1 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if len(cfg.Schemas) != 1 || cfg.Schemas[0].Name != "tiny" || len(cfg.Schemas[0].Panels[0].Lines) != 1 {
		t.Fatalf("schemas=%+v", cfg.Schemas)
	}

	in := filepath.Join(dir, "t.csv")
	writeFile(t, in, "Time,pktRecv\n0,5\n100,7\n")
	code, _, stderr := runCLI("--config", cfgPath, "--schema", "tiny", "--export-png", in)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "t-recv.png")); err != nil {
		t.Fatalf("custom panel not exported: %v", err)
	}
}

func TestLoadConfigExplicitFileMustExist(t *testing.T) {
	dir := isolate(t)
	fs := newFlagSet()
	if err := fs.Parse([]string{"--config", filepath.Join(dir, "nope.yml")}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := loadConfig(fs); err == nil {
		t.Fatalf("expected error for a missing explicit config")
	}
}
