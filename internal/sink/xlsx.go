package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/tealeg/xlsx"
)

// XLSXFile appends rows to a local workbook. It stands in for the Sheets API
// in development.
type XLSXFile struct {
	path  string
	sheet string

	mu sync.Mutex
}

// NewXLSXFile appends to the tab named by rng in the workbook at path.
// The workbook and tab are created on first use.
func NewXLSXFile(path, rng string) *XLSXFile {
	if rng == "" {
		rng = DefaultRange
	}
	return &XLSXFile{path: path, sheet: sheetName(rng)}
}

func (x *XLSXFile) AppendRow(ctx context.Context, row []any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	var file *xlsx.File
	if _, err := os.Stat(x.path); errors.Is(err, os.ErrNotExist) {
		file = xlsx.NewFile()
	} else {
		file, err = xlsx.OpenFile(x.path)
		if err != nil {
			return fmt.Errorf("open workbook: %w", err)
		}
	}
	var err error
	sh, ok := file.Sheet[x.sheet]
	if !ok {
		sh, err = file.AddSheet(x.sheet)
		if err != nil {
			return fmt.Errorf("add sheet %s: %w", x.sheet, err)
		}
		hr := sh.AddRow()
		for _, h := range Header {
			hr.AddCell().SetValue(h)
		}
	}
	r := sh.AddRow()
	for _, v := range row {
		r.AddCell().SetValue(v)
	}
	if err := file.Save(x.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// Rows reads back every data row as strings, header excluded.
func (x *XLSXFile) Rows() ([][]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	file, err := xlsx.OpenFile(x.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	sh, ok := file.Sheet[x.sheet]
	if !ok {
		return nil, nil
	}
	var out [][]string
	for i, row := range sh.Rows {
		if i == 0 {
			continue
		}
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			cells = append(cells, c.String())
		}
		out = append(out, cells)
	}
	return out, nil
}
