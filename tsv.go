package linse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Table is a delimited text file with a header row. Rows are keyed by
// header name.
type Table struct {
	Header []string
	Rows   []map[string]string
}

// ReadTable parses delimited text from r. The first non-empty line is the
// header. Quotes carry no special meaning, so symbols like `"` can appear
// as plain cell values. Short rows are padded with empty cells.
func ReadTable(r io.Reader, delim string) (*Table, error) {
	if delim == "" {
		delim = "\t"
	}
	t := &Table{}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, delim)
		if t.Header == nil {
			for i, c := range cells {
				cells[i] = strings.TrimSpace(c)
			}
			t.Header = cells
			continue
		}
		if len(cells) > len(t.Header) {
			return nil, fmt.Errorf("line %d: %d cells, header has %d", lineNo, len(cells), len(t.Header))
		}
		row := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if t.Header == nil {
		return nil, fmt.Errorf("no header row")
	}
	return t, nil
}

// ReadTableFile reads a delimited file from disk.
func ReadTableFile(path, delim string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	t, err := ReadTable(f, delim)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// WriteTable writes header and rows to w, joined by delim.
func WriteTable(w io.Writer, header []string, rows [][]string, delim string) error {
	if delim == "" {
		delim = "\t"
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(header, delim) + "\n"); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := bw.WriteString(strings.Join(row, delim) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
