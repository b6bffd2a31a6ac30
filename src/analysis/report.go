package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Report formats accepted by WriteReport.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WriteReport writes the summaries in the given format.
func WriteReport(w io.Writer, sums []Summary, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return writeText(w, sums)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sums)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sums); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q (text|json|yaml)", format)
	}
}

func writeText(w io.Writer, sums []Summary) error {
	for _, s := range sums {
		head := s.File
		if s.Socket != "" {
			head += " [" + s.Socket + "]"
		}
		if _, err := fmt.Fprintf(w, "%s (%d rows)\n", head, s.Rows); err != nil {
			return err
		}
		if len(s.Received) > 0 {
			fmt.Fprintln(w, "  Received packets:")
			for _, p := range s.Received {
				fmt.Fprintf(w, "    %s\n", p)
			}
		}
		if len(s.FEC) > 0 {
			fmt.Fprintln(w, "  Packet filter (FEC):")
			for _, p := range s.FEC {
				fmt.Fprintf(w, "    %s\n", p)
			}
			if s.AvgFECOverheadPct != nil {
				fmt.Fprintf(w, "    average overhead: %v %%\n", *s.AvgFECOverheadPct)
			}
		}
	}
	return nil
}
