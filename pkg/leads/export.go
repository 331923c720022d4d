package leads

import (
	"strings"

	"airtech/pkg/domain"
)

// ExportFilename is the download name of the CSV artifact.
const ExportFilename = "airtech_leads_report.csv"

var csvHeader = []string{
	"Company Name",
	"Sector",
	"Key Contact",
	"Contact Number",
	"Company Website",
	"Contact Email",
	"Digital Status",
	"Generated Email",
}

// ExportCSV renders leads as UTF-8 CSV text with a byte-order marker.
// Every cell is quoted and embedded quotes are doubled; the blanket rule
// keeps embedded commas and newlines safe without per-cell checks.
func ExportCSV(leads []domain.Lead) []byte {
	var sb strings.Builder
	sb.WriteString("\uFEFF")
	writeRow(&sb, csvHeader)
	for _, lead := range leads {
		sb.WriteByte('\n')
		writeRow(&sb, []string{
			lead.Report.CompanyName,
			lead.Report.BusinessSector,
			lead.Report.KeyContact,
			lead.Report.ContactNumber,
			lead.Report.CompanyWebsite,
			lead.Report.EmailContact,
			lead.Report.DigitalStatus,
			lead.Email,
		})
	}
	return []byte(sb.String())
}

func writeRow(sb *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		sb.WriteByte('"')
	}
}
