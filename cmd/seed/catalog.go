package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogRow una línea del catálogo: bodega;sku;nombre;cantidad.
type catalogRow struct {
	Warehouse string
	SKU       string
	Name      string
	Quantity  int
}

// parseCatalog lee el CSV separado por ';' (formato de exportación de Excel).
// latin1 decodifica ISO-8859-1 a UTF-8. La primera línea es cabecera si su cantidad no es numérica.
func parseCatalog(r io.Reader, latin1 bool) ([]catalogRow, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = 4

	var rows []catalogRow
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catálogo: %w", err)
		}
		line++
		qty, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("catálogo línea %d: cantidad %q inválida", line, rec[3])
		}
		if qty < 0 {
			return nil, fmt.Errorf("catálogo línea %d: cantidad negativa", line)
		}
		row := catalogRow{
			Warehouse: strings.TrimSpace(rec[0]),
			SKU:       strings.TrimSpace(rec[1]),
			Name:      strings.TrimSpace(rec[2]),
			Quantity:  qty,
		}
		if row.Warehouse == "" || row.SKU == "" {
			return nil, fmt.Errorf("catálogo línea %d: bodega y sku son obligatorios", line)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
