package export

import (
	"CallService/entity"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// MimeXLSX is the content type of every document this package builds.
const MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TransactionRow is one flattened history line, transaction fields
// joined with the sector and customer names the ids point at.
type TransactionRow struct {
	TransactionID   int64
	Initiated       string
	StartProcessing string
	Finished        string
	Protocol        string
	Status          string
	Sector          string
	CustomerID      int64
	Customer        string
	PhoneNumber     string
	Wuid            string
}

var transactionHeader = []string{
	"Transaction", "Initiated", "Start Processing", "Finished",
	"Protocol", "Status", "Sector", "Customer ID", "Customer",
	"Phone Number", "Wuid",
}

// Transactions builds the attendant history spreadsheet.
func Transactions(rows []TransactionRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "transactions"
	f.NewSheet(sheet)
	f.DeleteSheet("Sheet1")

	for col, title := range transactionHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for i, row := range rows {
		values := []interface{}{
			row.TransactionID, row.Initiated, row.StartProcessing,
			row.Finished, row.Protocol, row.Status, row.Sector,
			row.CustomerID, row.Customer, row.PhoneNumber, row.Wuid,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing transactions workbook: %w", err)
	}
	return buf.Bytes(), nil
}

var customerHeader = []string{
	"Customer ID", "Name", "Push Name", "Phone Number", "Wuid", "Created At",
}

// Customers builds the full roster spreadsheet.
func Customers(customers []entity.Customer) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "customers"
	f.NewSheet(sheet)
	f.DeleteSheet("Sheet1")

	for col, title := range customerHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for i, c := range customers {
		values := []interface{}{
			c.CustomerID, c.Name, c.PushName, c.PhoneNumber, c.Wuid,
			time.UnixMilli(c.CreatedAt).Format("02/01/2006 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing customers workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName composes "<prefix>_<unixSeconds>_<attendantId>_<shortName>.xlsx".
func FileName(prefix string, attendantID int64, shortName string) string {
	name := strings.ToLower(strings.ReplaceAll(shortName, " ", "_"))
	return prefix +
		"_" + strconv.FormatInt(time.Now().Unix(), 10) +
		"_" + strconv.FormatInt(attendantID, 10) +
		"_" + name + ".xlsx"
}
