// Archivo: internal/reports/excel.go
//
// Generación de reportes Excel de liquidaciones para descarga desde el
// dashboard de administración.
package reports

import (
	"bytes"
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"magicstars/internal/models"
)

// GenerarExcelLiquidaciones genera el reporte Excel de liquidaciones de
// mensajeros para una fecha (o rango consolidado) y devuelve los bytes del
// archivo listo para descargar.
func GenerarExcelLiquidaciones(fecha string, liquidaciones []models.Liquidacion) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Liquidaciones"
	index, _ := f.NewSheet(sheetName) // Ignoramos el error si la hoja ya existe (NewFile crea Sheet1)
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{
		"Mensajero", "Fecha", "Total Recaudado", "Efectivo", "SINPE", "Tarjeta",
		"Plata Inicial", "Gastos", "Monto Final", "Pedidos", "Liquidada",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for i := range liquidaciones {
		liq := &liquidaciones[i]

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), liq.Mensajero)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), liq.Fecha)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), liq.TotalRecaudado)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), liq.PagosEfectivo)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIndex), liq.PagosSinpe)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowIndex), liq.PagosTarjeta)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowIndex), liq.PlataInicial)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowIndex), liq.TotalGastos)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", rowIndex), liq.MontoFinal)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", rowIndex), len(liq.Pedidos))
		if liq.YaLiquidada {
			f.SetCellValue(sheetName, fmt.Sprintf("K%d", rowIndex), "Sí")
		} else {
			f.SetCellValue(sheetName, fmt.Sprintf("K%d", rowIndex), "No")
		}
		rowIndex++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		log.Printf("GenerarExcelLiquidaciones: error al escribir el archivo para %s: %v", fecha, err)
		return nil, fmt.Errorf("error al generar el reporte Excel: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerarExcelTiendas genera el reporte Excel de liquidaciones de tiendas,
// con el desglose de pedidos por estado.
func GenerarExcelTiendas(fecha string, liquidaciones []models.TiendaLiquidacion) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Tiendas"
	index, _ := f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{
		"Tienda", "Fecha", "Total Recaudado", "Efectivo", "SINPE", "Tarjeta",
		"Gastos", "Monto Final", "Entregados", "Pendientes", "Devueltos", "Reagendados",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for i := range liquidaciones {
		tl := &liquidaciones[i]

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), tl.Tienda)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), tl.Fecha)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), tl.TotalRecaudado)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), tl.PagosEfectivo)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIndex), tl.PagosSinpe)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowIndex), tl.PagosTarjeta)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowIndex), tl.TotalGastos)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowIndex), tl.MontoFinal)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", rowIndex), tl.Entregados)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", rowIndex), tl.Pendientes)
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", rowIndex), tl.Devueltos)
		f.SetCellValue(sheetName, fmt.Sprintf("L%d", rowIndex), tl.Reagendados)
		rowIndex++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		log.Printf("GenerarExcelTiendas: error al escribir el archivo para %s: %v", fecha, err)
		return nil, fmt.Errorf("error al generar el reporte Excel: %w", err)
	}
	return buf.Bytes(), nil
}
