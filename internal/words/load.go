package words

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Load reads a vocabulary file. The format follows the extension: .json holds
// an array of strings, .csv a column named "word" (or the first column), and
// anything else one word per line.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		raw, err = ReadJSON(file)
	case ".csv":
		raw, err = ReadCSV(file)
	default:
		raw, err = ReadLines(file)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Normalize(raw), nil
}

func ReadJSON(r io.Reader) ([]string, error) {
	var out []string
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func ReadCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	column := 0
	start := 0
	for i, name := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(name), "word") {
			column = i
			start = 1
			break
		}
	}

	var out []string
	for _, row := range rows[start:] {
		if len(row) <= column {
			continue
		}
		out = append(out, row[column])
	}
	return out, nil
}
