package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/konst007/chgk/internal/engine/decoder"
	"github.com/konst007/chgk/internal/engine/types"
	"github.com/konst007/chgk/internal/utils"
)

func newParseCmd() *cobra.Command {
	parseCmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Decode a saved question document and print every record",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	parseCmd.Flags().String("charset", "", "Force the document charset, e.g. windows-1251")
	parseCmd.Flags().Bool("json", false, "Print records as JSON")
	return parseCmd
}

func runParse(cmd *cobra.Command, args []string) error {
	charset, _ := cmd.Flags().GetString("charset")
	asJSON, _ := cmd.Flags().GetBool("json")

	var (
		rc   io.ReadCloser
		size int64 = -1
	)
	if args[0] == "-" {
		rc = io.NopCloser(cmd.InOrStdin())
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		if info, err := f.Stat(); err == nil {
			size = info.Size()
		}
		rc = f
	}

	records, err := decoder.Parse(rc, decoder.WithCharset(charset))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(recordsJSON(records)); err != nil {
			return err
		}
	} else {
		printRecords(out, records)
	}

	if size >= 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d record(s) from %s\n", len(records), utils.ConvertBytesToHumanReadable(size))
	}
	return nil
}

type recordJSON struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Comment  string `json:"comment"`
}

func recordsJSON(records []types.Record) []recordJSON {
	out := make([]recordJSON, 0, len(records))
	for _, r := range records {
		out = append(out, recordJSON{Question: r.Text, Answer: r.Answer, Comment: r.Comment})
	}
	return out
}

func printRecords(w io.Writer, records []types.Record) {
	for i, r := range records {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "#%d\n", i+1)
		fmt.Fprintf(w, "Question: %s\n", r.Text)
		if r.Answer != "" {
			fmt.Fprintf(w, "Answer:   %s\n", r.Answer)
		}
		if r.Comment != "" {
			fmt.Fprintf(w, "Comment:  %s\n", r.Comment)
		}
	}
}
