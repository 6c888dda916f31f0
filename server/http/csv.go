package http

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/w-h-a/shopchat/ingest"
)

// column aliases from the catalog exports we accept
var columnAliases = map[string]string{
	"title":                 "title",
	"product_name":          "title",
	"name":                  "title",
	"description":           "description",
	"sku":                   "sku",
	"uniq_id":               "sku",
	"category":              "category",
	"product_category_tree": "category",
	"brand":                 "brand",
	"price":                 "price",
	"retail_price":          "price",
}

// decodeRows turns an uploaded CSV into catalog rows. Unrecognized columns
// land in Extra. Malformed lines are skipped, matching the lenient parse
// the upload endpoint has always had.
func decodeRows(r io.Reader) ([]ingest.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New("empty or unreadable CSV")
	}

	fields := make([]string, len(header))
	for i, col := range header {
		fields[i] = strings.ToLower(strings.TrimSpace(col))
	}

	var rows []ingest.Row

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("read CSV: %w", err)
		}

		row := ingest.Row{Extra: map[string]string{}}

		for i, value := range record {
			if i >= len(fields) {
				break
			}

			switch columnAliases[fields[i]] {
			case "title":
				row.Title = value
			case "description":
				row.Description = value
			case "sku":
				row.Sku = value
			case "category":
				row.Category = value
			case "brand":
				row.Brand = value
			case "price":
				row.Price = value
			default:
				if len(strings.TrimSpace(value)) > 0 {
					row.Extra[fields[i]] = value
				}
			}
		}

		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, errors.New("CSV contains no data rows")
	}

	return rows, nil
}
