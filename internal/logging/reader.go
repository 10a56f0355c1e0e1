package logging

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-logfmt/logfmt"
)

// Record is one parsed line of the hook log.
type Record struct {
	Timestamp  time.Time
	Level      string
	Message    string
	Attributes map[string]string
}

// ReadRecords decodes logfmt records from r. Lines that fail to decode are
// skipped so a truncated tail does not hide the rest of the log.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		rec, err := parseRecord(line)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("scan log: %w", err)
	}
	return records, nil
}

func parseRecord(line []byte) (Record, error) {
	d := logfmt.NewDecoder(strings.NewReader(string(line)))
	rec := Record{Attributes: make(map[string]string)}
	for d.ScanRecord() {
		for d.ScanKeyval() {
			key := string(d.Key())
			value := string(d.Value())

			switch key {
			case "time":
				parsed, err := time.Parse(time.RFC3339Nano, value)
				if err != nil {
					return Record{}, fmt.Errorf("parsing time: %w", err)
				}
				rec.Timestamp = parsed
			case "level":
				rec.Level = strings.ToLower(value)
			case "msg", "message":
				rec.Message = value
			default:
				rec.Attributes[key] = value
			}
		}
	}
	if d.Err() != nil {
		return Record{}, fmt.Errorf("logfmt.ScanRecord: %w", d.Err())
	}
	return rec, nil
}

// Tail returns the last limit records of the log at path. A missing log is
// not an error. limit <= 0 returns everything.
func Tail(path string, limit int) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	records, err := ReadRecords(file)
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, err
}
