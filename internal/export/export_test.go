package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderon/shopdesk-api/internal/models"
)

func sampleAppointments() []models.Appointment {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return []models.Appointment{
		{
			Customer:  models.Customer{Name: "Avery Park"},
			Vehicle:   models.Vehicle{Make: "Honda", Model: "Civic", Year: 2019},
			Status:    models.StatusScheduled,
			StartTime: start,
			Services:  []models.ServiceItem{{Name: "Oil change", PriceCents: 4999}},
		},
		{
			// comma in the name must survive the round trip intact
			Customer:  models.Customer{Name: "Reyes, Dana"},
			Vehicle:   models.Vehicle{Make: "Ford", Model: "F-150", Year: 2021},
			Status:    models.StatusInProgress,
			StartTime: start.Add(time.Hour),
			Services:  []models.ServiceItem{{Name: "Brake pads", PriceCents: 28000}, {Name: "Rotation", PriceCents: 3500}},
		},
		{
			Customer:  models.Customer{Name: "Morgan Lee"},
			Vehicle:   models.Vehicle{Make: "Subaru", Model: "Outback"},
			Status:    models.StatusReady,
			StartTime: start.Add(2 * time.Hour),
		},
	}
}

func TestCSVHeaderAndRowCount(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sampleAppointments(), []string{FieldCustomerName, FieldService}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4, "header plus exactly three data rows")

	assert.Equal(t, []string{"customer_name", "service"}, records[0])
	assert.Equal(t, []string{"Avery Park", "Oil change"}, records[1])
	assert.Equal(t, []string{"Reyes, Dana", "Brake pads; Rotation"}, records[2])
	assert.Equal(t, []string{"Morgan Lee", ""}, records[3])
}

func TestCSVEscapesCommas(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sampleAppointments(), []string{FieldCustomerName}))

	raw := buf.String()
	assert.Contains(t, raw, `"Reyes, Dana"`, "field with a comma is quoted")

	// and it parses back to the original value
	records, err := csv.NewReader(strings.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Reyes, Dana", records[2][0])
}

func TestRowsFieldValues(t *testing.T) {
	rows := Rows(sampleAppointments(), []string{FieldVehicle, FieldStatus, FieldStartTime, FieldTotal})
	require.Len(t, rows, 4)

	assert.Equal(t, "2019 Honda Civic", rows[1][0])
	assert.Equal(t, "SCHEDULED", rows[1][1])
	assert.Equal(t, "2026-03-02T09:00:00Z", rows[1][2])
	assert.Equal(t, "49.99", rows[1][3])

	assert.Equal(t, "315.00", rows[2][3], "line items summed")
	assert.Equal(t, "Subaru Outback", rows[3][0], "year omitted when unknown")
}

func TestRowsDefaultFields(t *testing.T) {
	rows := Rows(sampleAppointments(), nil)
	assert.Equal(t, DefaultFields, rows[0])
}

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleAppointments(), []string{FieldCustomerName, FieldStatus}))

	var records []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 3)
	assert.Equal(t, "Reyes, Dana", records[1]["customer_name"])
	assert.Equal(t, "IN_PROGRESS", records[1]["status"])
}

func TestKnownField(t *testing.T) {
	assert.True(t, KnownField("customer_name"))
	assert.True(t, KnownField("total"))
	assert.False(t, KnownField("password"))
}
