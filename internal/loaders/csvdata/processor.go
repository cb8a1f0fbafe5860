// Package csvdata loads CSV exports where every row becomes a chunk.
// Two row shapes are recognised: incident log rows and resource
// allocation rows, decided by the file name.
package csvdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Processor = (*Processor)(nil)

// Row type tags recorded in chunk metadata.
const (
	DocTypeIncident = "incident_log"
	DocTypeResource = "resource"
)

// Processor handles CSV files. Each row becomes one raw document and
// one chunk of natural-language text.
type Processor struct{}

// New creates a new CSV processor.
func New() *Processor {
	return &Processor{}
}

// DocType returns the type tag this processor handles.
func (p *Processor) DocType() domain.DocType {
	return domain.DocTypeCSV
}

// Load reads a CSV file with a header row. Every data row becomes a
// raw document carrying the row values both as structured content and
// as searchable metadata. Rows are tagged incident_log when the file
// name contains "incident", resource otherwise.
func (p *Processor) Load(_ context.Context, sourcePath string) ([]domain.RawDocument, error) {
	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file has no header row: %w", domain.ErrInvalidInput)
	}

	source := filepath.Base(sourcePath)
	docType := DocTypeResource
	if strings.Contains(strings.ToLower(source), "incident") {
		docType = DocTypeIncident
	}

	header := records[0]
	for i, col := range header {
		header[i] = strings.TrimSpace(col)
	}

	docs := make([]domain.RawDocument, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		metadata := map[string]any{
			domain.MetaSource:  source,
			domain.MetaDocType: docType,
		}
		for i, col := range header {
			if i >= len(record) {
				break
			}
			value := strings.TrimSpace(record[i])
			row[col] = value
			if notna(value) {
				metadata[col] = value
			}
		}
		docs = append(docs, domain.RawDocument{Row: row, Metadata: metadata})
	}
	return docs, nil
}

// Chunk converts a CSV row into natural-language text. Missing fields
// are omitted entirely, never rendered as "nan".
func (p *Processor) Chunk(doc domain.RawDocument) ([]domain.Chunk, error) {
	row := doc.Row
	docType, _ := doc.Metadata[domain.MetaDocType].(string)

	var text, chunkID string
	if docType == DocTypeIncident {
		text = formatIncident(row)
		chunkID = row["incident_id"]
		if !notna(chunkID) {
			chunkID = domain.ChunkID(doc.Source(), rowFingerprint(row))
		}
	} else {
		text = formatResource(row)
		team := row["team"]
		if !notna(team) {
			team = "unknown"
		}
		chunkID = domain.ChunkID(doc.Source(), team)
	}

	metadata := make(map[string]any, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		metadata[k] = v
	}
	metadata[domain.MetaChunkID] = chunkID

	return []domain.Chunk{{Text: strings.TrimSpace(text), Metadata: metadata}}, nil
}

// formatIncident renders an incident log row as readable prose.
func formatIncident(row map[string]string) string {
	var parts []string
	if notna(row["incident_id"]) {
		parts = append(parts, "Incident "+row["incident_id"])
	}
	if notna(row["date"]) {
		parts = append(parts, "occurred on "+row["date"])
	}
	if notna(row["severity"]) {
		parts = append(parts, "with severity "+row["severity"])
	}

	var details []string
	if notna(row["service"]) {
		details = append(details, "Service: "+row["service"])
	}
	if notna(row["team"]) {
		details = append(details, "Team: "+row["team"])
	}
	if notna(row["duration_minutes"]) {
		details = append(details, "Duration: "+row["duration_minutes"]+" minutes")
	}
	if notna(row["customer_impact"]) {
		details = append(details, "Customer impact: "+row["customer_impact"])
	}
	if notna(row["root_cause_category"]) {
		details = append(details, "Root cause: "+row["root_cause_category"])
	}

	text := strings.Join(parts, " ") + ".\n" + strings.Join(details, "\n")

	if truthy(row["cross_team"]) {
		text += "\nThis incident required cross-team coordination."
	}
	if truthy(row["repeat_incident"]) {
		text += "\nThis is a repeat incident."
		if notna(row["related_incidents"]) {
			text += " Related to: " + row["related_incidents"]
		}
	}
	if impact, ok := positiveNumber(row["estimated_revenue_impact"]); ok {
		text += "\nEstimated revenue impact: $" + impact
	}

	return text
}

// formatResource renders a resource allocation row as readable prose.
func formatResource(row map[string]string) string {
	var parts []string
	if notna(row["team"]) {
		parts = append(parts, "Team: "+row["team"])
	}
	if notna(row["team_lead"]) {
		parts = append(parts, "Lead: "+row["team_lead"])
	}
	if notna(row["headcount"]) {
		parts = append(parts, "Headcount: "+row["headcount"]+" engineers")
	}
	if notna(row["on_call_engineers"]) {
		parts = append(parts, "On-call engineers: "+row["on_call_engineers"])
	}
	if notna(row["on_call_rotation_days"]) {
		parts = append(parts, "On-call rotation: every "+row["on_call_rotation_days"]+" days")
	}
	if notna(row["avg_incidents_per_month"]) {
		parts = append(parts, "Average incidents per month: "+row["avg_incidents_per_month"])
	}
	if notna(row["annual_budget_usd"]) {
		parts = append(parts, "Annual budget: $"+formatMoney(row["annual_budget_usd"]))
	}
	if notna(row["on_call_comp_annual_usd"]) {
		parts = append(parts, "On-call compensation: $"+formatMoney(row["on_call_comp_annual_usd"])+"/year")
	}
	if notna(row["ops_load_pct"]) {
		parts = append(parts, "Operational load: "+row["ops_load_pct"]+"% of time")
	}
	if notna(row["feature_velocity_pts_per_sprint"]) {
		parts = append(parts, "Feature velocity: "+row["feature_velocity_pts_per_sprint"]+" points/sprint")
	}
	return strings.Join(parts, "\n")
}

// notna reports whether a CSV cell holds a value. Empty cells and the
// spreadsheet spellings of NaN count as missing.
func notna(value string) bool {
	if value == "" {
		return false
	}
	switch strings.ToLower(value) {
	case "nan", "null", "none", "n/a":
		return false
	}
	return true
}

// truthy interprets boolean-ish CSV cells.
func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// positiveNumber returns the value when it parses as a number greater
// than zero.
func positiveNumber(value string) (string, bool) {
	if !notna(value) {
		return "", false
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || n <= 0 {
		return "", false
	}
	return value, true
}

// formatMoney renders a numeric string with thousands separators and
// no decimals. Unparseable values are returned unchanged.
func formatMoney(value string) string {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	whole := strconv.FormatInt(int64(n+0.5), 10)

	negative := strings.HasPrefix(whole, "-")
	digits := strings.TrimPrefix(whole, "-")

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// rowFingerprint builds a stable identifier from all populated cells,
// used when a row has no natural key.
func rowFingerprint(row map[string]string) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+row[k])
	}
	return strings.Join(pairs, "|")
}
