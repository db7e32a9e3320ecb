// Package categoryparser turns the comma-delimited category source into
// typed records.
//
// The content is cut into lines first and each line is split with its own
// encoding/csv reader, so a stray quote can never join two lines. The source
// format has no quoting convention, so a field value must not contain a
// comma; a line that does is split at that comma like any other.
package categoryparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"iter"
	"strings"

	"github.com/giygas/supply-status/categoryparser/entities"
	"github.com/giygas/supply-status/interfaces"
	"github.com/giygas/supply-status/logging"
)

// Compile-time check to ensure CategoryParser implements Parser interface
var _ interfaces.Parser = (*CategoryParser)(nil)

// CategoryParser produces records from source content. It holds no state
// between calls.
type CategoryParser struct {
	headerLookup bool
}

// NewCategoryParser creates a parser. With headerLookup set, column positions
// come from the header line when it names every column.
func NewCategoryParser(headerLookup bool) *CategoryParser {
	return &CategoryParser{headerLookup: headerLookup}
}

// Records returns the accepted records of content in line order. The first
// non-blank line is the header. Each range over the sequence re-reads content
// from the start, so it yields the same records every time. When stats is
// non-nil it is reset and filled in during each full pass.
func (p *CategoryParser) Records(content []byte, stats *entities.ParseStats) iter.Seq[entities.Record] {
	return func(yield func(entities.Record) bool) {
		local := entities.ParseStats{}
		defer func() {
			if stats != nil {
				*stats = local
			}
		}()

		scanner := bufio.NewScanner(bytes.NewReader(content))
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		// The header is the first non-blank line. Content without one has
		// no rows.
		var header []string
		line := 0
		for len(header) == 0 {
			if !scanner.Scan() {
				return
			}
			line++
			header, _ = splitLine(strings.TrimSpace(scanner.Text()))
		}

		layout := DefaultLayout
		if p.headerLookup {
			if resolved, ok := ResolveLayout(header); ok {
				layout = resolved
			} else {
				logging.Warn("Header names not recognized, using positional columns", "header", header)
			}
		}

		for scanner.Scan() {
			line++
			local.TotalLines++

			fields, err := splitLine(scanner.Text())
			if err != nil {
				local.FormatErrors++
				logging.Debug("Skipping unparsable line", "line", line, "error", err)
				continue
			}

			record, reason := buildRecord(fields, layout, line)
			switch reason {
			case "":
			case skipBlank:
				local.Blank++
				continue
			case skipMissingColumns:
				local.MissingColumns++
				logging.Debug("Skipping line with missing columns", "line", line, "fields", len(fields))
				continue
			case skipEmptyIngredient:
				local.EmptyIngredient++
				logging.Debug("Skipping line with empty ingredient", "line", line)
				continue
			}

			local.Parsed++
			if !yield(record) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			logging.Warn("Stopped reading source", "line", line+1, "error", err)
		}

		if local.Skipped() > 0 {
			logging.Info("Category source skip statistics",
				"empty_lines", local.Blank,
				"missing_columns", local.MissingColumns,
				"empty_ingredient", local.EmptyIngredient,
				"format_errors", local.FormatErrors,
				"total_lines", local.TotalLines,
				"records_parsed", local.Parsed)
		}
	}
}

// maxLineSize bounds a single source line
const maxLineSize = 1024 * 1024

// splitLine splits one line on commas. Quotes are taken literally where they
// cannot open a quoted field. An empty line yields no fields.
func splitLine(text string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	fields, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	return fields, err
}

const (
	skipBlank           = "blank"
	skipMissingColumns  = "missing_columns"
	skipEmptyIngredient = "empty_ingredient"
)

// buildRecord trims the fields of one line and maps them through layout.
// It returns the skip reason when the line is rejected.
func buildRecord(fields []string, layout Layout, line int) (entities.Record, string) {
	blank := true
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
		if fields[i] != "" {
			blank = false
		}
	}

	if blank {
		return entities.Record{}, skipBlank
	}

	if len(fields) < RequiredFields || len(fields) <= layout.maxIndex() {
		return entities.Record{}, skipMissingColumns
	}

	record := entities.Record{
		Route:          fields[layout[ColRoute]],
		DrugClassCode:  fields[layout[ColDrugClassCode]],
		DrugClassName:  fields[layout[ColDrugClassName]],
		IngredientName: fields[layout[ColIngredientName]],
		Category:       fields[layout[ColCategory]],
		Line:           line,
	}

	if record.IngredientName == "" {
		return entities.Record{}, skipEmptyIngredient
	}

	return record, ""
}

// Parse collects every record of content along with the pass statistics.
func (p *CategoryParser) Parse(content []byte) ([]entities.Record, entities.ParseStats) {
	var stats entities.ParseStats
	var records []entities.Record
	for record := range p.Records(content, &stats) {
		records = append(records, record)
	}
	return records, stats
}
