package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// csvHeader is written exactly once per destination file.
var csvHeader = []string{"run_id", "name", "command", "status", "passed", "reason", "fields"}

// ExportCSV appends records to the file at path. The header row is written
// only when the file is created or found empty; later calls append data
// rows only. Single writer assumed.
func ExportCSV(path string, records []Record) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for _, r := range records {
		fields := ""
		if len(r.Fields) > 0 {
			blob, err := json.Marshal(r.Fields)
			if err != nil {
				return fmt.Errorf("failed to serialize fields for %s: %w", r.Name, err)
			}
			fields = string(blob)
		}
		row := []string{r.RunID, r.Name, r.Command, r.Status, strconv.FormatBool(r.Passed), r.Reason, fields}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.Name, err)
		}
	}

	w.Flush()
	return w.Error()
}
