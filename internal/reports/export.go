package reports

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CsvHeader es el formato publicado del extracto: 12 columnas fijas.
var CsvHeader = []string{
	"Fecha",
	"Vendedor",
	"Producto",
	"Pedido",
	"Sobras Ayer",
	"Sobras Hoy",
	"Vendidas",
	"Precio",
	"Subtotal",
	"Bateria",
	"Total Boleta",
	"Estado",
}

func (r ExportRow) record() []string {
	return []string{
		r.Date,
		r.Vendor,
		r.Product,
		strconv.Itoa(r.OrderQty),
		strconv.Itoa(r.LeftoversPrev),
		strconv.Itoa(r.LeftoversNow),
		strconv.Itoa(r.SoldQty),
		r.Price.String(),
		r.Subtotal.String(),
		r.Battery.String(),
		r.TicketTotal.String(),
		string(r.Status),
	}
}

// WriteCsv arma el extracto completo. encoding/csv ya aplica las reglas del
// formato: comillas solo cuando el valor trae coma, comilla o salto de
// línea, duplicando las comillas internas.
func WriteCsv(rows []ExportRow) (string, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write(CsvHeader); err != nil {
		return "", err
	}
	for _, row := range rows {
		if err := w.Write(row.record()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteXlsx arma el mismo extracto como planilla.
func WriteXlsx(rows []ExportRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Boletas"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(CsvHeader))
	for i, h := range CsvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		price, _ := row.Price.Float64()
		subtotal, _ := row.Subtotal.Float64()
		battery, _ := row.Battery.Float64()
		total, _ := row.TicketTotal.Float64()
		values := []interface{}{
			row.Date,
			row.Vendor,
			row.Product,
			row.OrderQty,
			row.LeftoversPrev,
			row.LeftoversNow,
			row.SoldQty,
			price,
			subtotal,
			battery,
			total,
			string(row.Status),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}
