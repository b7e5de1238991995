// Package export flattens appointment records into the CSV/JSON downloads
// offered by the admin console.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/calderon/shopdesk-api/internal/models"
)

// Exportable field names.
const (
	FieldCustomerName = "customer_name"
	FieldVehicle      = "vehicle"
	FieldService      = "service"
	FieldStatus       = "status"
	FieldStartTime    = "start_time"
	FieldTotal        = "total"
	FieldNotes        = "notes"
)

// DefaultFields is the column set used when the request names none.
var DefaultFields = []string{
	FieldCustomerName, FieldVehicle, FieldService, FieldStatus, FieldStartTime, FieldTotal,
}

// KnownField reports whether a requested field can be exported.
func KnownField(name string) bool {
	switch name {
	case FieldCustomerName, FieldVehicle, FieldService, FieldStatus, FieldStartTime, FieldTotal, FieldNotes:
		return true
	}
	return false
}

// Rows flattens appointments into a header row plus one row per record, in
// the given field order.
func Rows(appointments []models.Appointment, fields []string) [][]string {
	if len(fields) == 0 {
		fields = DefaultFields
	}

	rows := make([][]string, 0, len(appointments)+1)
	rows = append(rows, append([]string(nil), fields...))
	for i := range appointments {
		row := make([]string, len(fields))
		for j, field := range fields {
			row[j] = value(&appointments[i], field)
		}
		rows = append(rows, row)
	}
	return rows
}

// CSV writes the flattened records as RFC 4180 CSV.
func CSV(w io.Writer, appointments []models.Appointment, fields []string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Rows(appointments, fields)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// JSON writes the flattened records as an array of field->value objects.
func JSON(w io.Writer, appointments []models.Appointment, fields []string) error {
	if len(fields) == 0 {
		fields = DefaultFields
	}

	records := make([]map[string]string, 0, len(appointments))
	for i := range appointments {
		record := make(map[string]string, len(fields))
		for _, field := range fields {
			record[field] = value(&appointments[i], field)
		}
		records = append(records, record)
	}

	enc := json.NewEncoder(w)
	return enc.Encode(records)
}

func value(a *models.Appointment, field string) string {
	switch field {
	case FieldCustomerName:
		return a.Customer.Name
	case FieldVehicle:
		return a.Vehicle.Display()
	case FieldService:
		names := make([]string, 0, len(a.Services))
		for _, s := range a.Services {
			names = append(names, s.Name)
		}
		return strings.Join(names, "; ")
	case FieldStatus:
		return string(a.Status)
	case FieldStartTime:
		return a.StartTime.UTC().Format(time.RFC3339)
	case FieldTotal:
		return fmt.Sprintf("%.2f", float64(a.TotalCents())/100)
	case FieldNotes:
		return a.Notes
	}
	return ""
}
