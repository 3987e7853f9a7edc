package writer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

// encodeJSONL writes one course record per line.
func encodeJSONL(w io.Writer, records []*models.CourseRecord) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode %s: %w", rec.Course.Code, err)
		}
	}
	return bw.Flush()
}

// encodeJSON writes all records as one indented object keyed by course code,
// the shape lookup-oriented consumers expect.
func encodeJSON(w io.Writer, records []*models.CourseRecord) error {
	byCode := make(map[string]*models.CourseRecord, len(records))
	for _, rec := range records {
		byCode[rec.Course.Code] = rec
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(byCode)
}

// ReadJSONL loads records back from a JSONL file, for format conversion and
// the serve command.
func ReadJSONL(path string) ([]*models.CourseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []*models.CourseRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec models.CourseRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		records = append(records, &rec)
	}
	return records, nil
}
