package reports

import (
	"fmt"
	"regexp"

	"heladeria-backend/internal/database"

	"github.com/gofiber/fiber/v2"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// GET /api/admin/reports/daily?date=YYYY-MM-DD
func DailyReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		date := c.Query("date")
		if !isoDatePattern.MatchString(date) {
			return fiber.NewError(fiber.StatusBadRequest, "Formato de fecha inválido, debe ser 'YYYY-MM-DD'")
		}

		report, err := Daily(database.DB, date)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo armar el reporte")
		}
		return c.JSON(report)
	}
}

func exportRange(c *fiber.Ctx) (string, string, error) {
	start := c.Query("start")
	end := c.Query("end")
	if !isoDatePattern.MatchString(start) || !isoDatePattern.MatchString(end) {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "Rango inválido: start y end deben ser 'YYYY-MM-DD'")
	}
	if end < start {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "El fin del rango es anterior al inicio")
	}
	return start, end, nil
}

// GET /api/admin/reports/export.csv?start=&end=
func ExportCsvHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, end, err := exportRange(c)
		if err != nil {
			return err
		}

		rows, err := ExportRows(database.DB, start, end)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo exportar el rango")
		}
		out, err := WriteCsv(rows)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el CSV")
		}

		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="boletas_%s_%s.csv"`, start, end))
		return c.SendString(out)
	}
}

// GET /api/admin/reports/export.xlsx?start=&end=
func ExportXlsxHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, end, err := exportRange(c)
		if err != nil {
			return err
		}

		rows, err := ExportRows(database.DB, start, end)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo exportar el rango")
		}
		buf, err := WriteXlsx(rows)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar la planilla")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="boletas_%s_%s.xlsx"`, start, end))
		return c.Send(buf.Bytes())
	}
}
