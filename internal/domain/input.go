package domain

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load resolves the --domains argument: a path to a CSV/plain file with one
// domain per line (first column; a "Domain" header row is skipped), or a
// single literal domain. Suffix, when non-empty, keeps only domains ending
// with it.
func Load(source, suffix string) ([]string, error) {
	var domains []string

	if _, err := os.Stat(source); err == nil {
		domains, err = readFile(source)
		if err != nil {
			return nil, err
		}
	} else {
		d := Normalize(source)
		if d == "" || !strings.Contains(d, ".") {
			return nil, fmt.Errorf("%q is neither a readable file nor a domain", source)
		}
		domains = []string{d}
	}

	if suffix != "" {
		filtered := domains[:0]
		for _, d := range domains {
			if strings.HasSuffix(d, suffix) {
				filtered = append(filtered, d)
			}
		}
		domains = filtered
	}

	return domains, nil
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open domains file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var domains []string
	seen := make(map[string]bool)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read domains file: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		d := Normalize(record[0])
		if d == "" || strings.EqualFold(d, "domain") {
			continue
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		domains = append(domains, d)
	}

	return domains, nil
}
