// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/olekukonko/tablewriter"
	"github.com/xuri/excelize/v2"
)

const emptySheetText = "(empty sheet)"

type sheet struct {
	name string
	rows [][]string
}

// extractSpreadsheet renders every sheet, in workbook order, as a headed
// text table. Sheets are separated by a blank line.
func (e *Extractor) extractSpreadsheet(ctx context.Context, doc RawDocument) (string, error) {
	var (
		sheets []sheet
		err    error
	)
	if hintExt(doc.Hint) == ".xls" {
		sheets, err = readXLS(doc.Content)
	} else {
		sheets, err = readXLSX(doc.Content)
	}
	if err != nil {
		return "", err
	}

	blocks := make([]string, 0, len(sheets))
	for _, s := range sheets {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		blocks = append(blocks, fmt.Sprintf("=== Sheet: %s ===\n%s", s.name, renderTable(s.rows)))
	}
	return strings.Join(blocks, "\n\n"), nil
}

func readXLSX(content []byte) ([]sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, NewDecodeError(Spreadsheet, "open workbook", err)
	}
	defer f.Close()

	var sheets []sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, NewDecodeError(Spreadsheet, "read sheet "+name, err)
		}
		sheets = append(sheets, sheet{name: name, rows: rows})
	}
	return sheets, nil
}

func readXLS(content []byte) ([]sheet, error) {
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, NewDecodeError(Spreadsheet, "open xls workbook", err)
	}

	var sheets []sheet
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		s := sheet{name: ws.Name}
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := xlsRow(ws, r)
			if row == nil {
				s.rows = append(s.rows, nil)
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			s.rows = append(s.rows, cells)
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

// xlsRow returns nil for a row the sheet never wrote. WorkSheet.Row
// dereferences the missing entry.
func xlsRow(ws *xls.WorkSheet, r int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(r)
}

// renderTable writes rows as an aligned text table using the first row as
// the header. Short rows are padded to the widest row.
func renderTable(rows [][]string) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	if width == 0 {
		return emptySheetText
	}
	padded := make([][]string, len(rows))
	for i, r := range rows {
		p := make([]string, width)
		copy(p, r)
		padded[i] = p
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeader(padded[0])
	table.AppendBulk(padded[1:])
	table.Render()
	return strings.TrimRight(buf.String(), "\n")
}
