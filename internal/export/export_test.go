package export_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/export"
	"github.com/adeshyearanty/crm-lead-service/internal/query"
)

func sampleLead() *domain.Lead {
	score := 80
	id, _ := bson.ObjectIDFromHex("65f1a2b3c4d5e6f708192a3b")
	return &domain.Lead{
		ID:          id,
		LeadOwner:   "owner-1",
		FullName:    `Jane "JJ" Doe`,
		Email:       "jane@acme.io",
		CompanyName: "Acme, Inc.",
		Salutation:  domain.Salutation("Ms"),
		Score:       &score,
		CreatedDate: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestHeaderName(t *testing.T) {
	tests := map[string]string{
		"leadOwner":        "Lead Owner",
		"fullName":         "Full Name",
		"_id":              "_id",
		"email":            "Email",
		"lastActivityDate": "Last Activity Date",
		"linkedinUrl":      "Linkedin Url",
	}
	for in, want := range tests {
		assert.Equal(t, want, export.HeaderName(in), in)
	}
}

func TestFormatValue(t *testing.T) {
	id, _ := bson.ObjectIDFromHex("65f1a2b3c4d5e6f708192a3b")
	loc := time.FixedZone("IST", 5*3600+1800)

	assert.Equal(t, "", export.FormatValue(nil, false))
	assert.Equal(t, "", export.FormatValue("ignored", false))
	assert.Equal(t, "65f1a2b3c4d5e6f708192a3b", export.FormatValue(id, true))
	assert.Equal(t, "2024-03-15T04:30:00.000Z", export.FormatValue(time.Date(2024, 3, 15, 10, 0, 0, 0, loc), true))
	assert.Equal(t, "42", export.FormatValue(42, true))
	assert.Equal(t, "1500000.5", export.FormatValue(1500000.5, true))
	assert.Equal(t, "false", export.FormatValue(false, true))
	assert.Equal(t, "Dr", export.FormatValue(domain.Salutation("Dr"), true))
}

func TestColumns(t *testing.T) {
	assert.Len(t, export.Columns(nil), 27)
	assert.Equal(t, []string{"email"}, export.Columns([]string{"email"}))
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, f)

	f, err = export.ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, export.FormatXLSX, f)

	_, err = export.ParseFormat("pdf")
	assert.Error(t, err)
}

func TestWriteCSV_QuotesEveryValue(t *testing.T) {
	var buf bytes.Buffer
	columns := []string{"_id", "fullName", "companyName", "score", "website", "createdDate"}

	err := export.WriteCSV(&buf, columns, []query.Document{sampleLead()})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "_id,Full Name,Company Name,Score,Website,Created Date", lines[0])
	assert.Equal(t,
		`"65f1a2b3c4d5e6f708192a3b","Jane ""JJ"" Doe","Acme, Inc.","80","","2024-03-15T10:00:00.000Z"`,
		lines[1],
	)
}

func TestWriteCSV_NoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, []string{"email"}, nil))
	assert.Equal(t, "Email\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	columns := []string{"fullName", "score", "email"}

	err := export.WriteXLSX(&buf, columns, []query.Document{sampleLead()})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Full Name", "Score", "Email"}, rows[0])
	assert.Equal(t, []string{`Jane "JJ" Doe`, "80", "jane@acme.io"}, rows[1])
	assert.Equal(t, []string{"Leads"}, f.GetSheetList())
}
