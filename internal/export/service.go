// Package export serializes extraction results for downstream use: a JSON
// document per batch and an optional spreadsheet summary.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/docuvault/prescription-extractor/internal/repository"
)

// MarshalBatchJSON renders the batch results as a single ordered JSON array
// of {"filename": ..., "data": ...} objects.
func MarshalBatchJSON(entries []repository.Entry) ([]byte, error) {
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}
	return out, nil
}

var xlsxHeaders = []string{
	"Filename", "Document Type", "Prescription Type", "Patient", "Doctor",
	"Hospital", "Diagnosis", "Issue Date", "Medications", "Total Items",
	"Signature", "Method", "Confidence",
}

// BuildXLSX renders the batch as a one-row-per-document spreadsheet.
func BuildXLSX(entries []repository.Entry, logger *slog.Logger) (*excelize.File, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f := excelize.NewFile()
	const sheet = "Prescriptions"

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		logger.Warn("export.xlsx.delete_default_sheet", "error", err)
	}

	for col, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header %q: %w", h, err)
		}
	}

	for row, e := range entries {
		d := e.Data
		if d == nil {
			continue
		}

		meds := make([]string, 0, len(d.Medications))
		for _, m := range d.Medications {
			part := m.Name
			if m.Dosage != "" {
				part += " " + m.Dosage
			}
			meds = append(meds, part)
		}

		signature := "no"
		if d.DoctorSignature != nil && d.DoctorSignature.IsPresent {
			signature = "yes"
			if d.DoctorSignature.SignerName != "" {
				signature = d.DoctorSignature.SignerName
			}
		}

		confidence := ""
		if d.ConfidenceScore != nil {
			confidence = fmt.Sprintf("%.2f", *d.ConfidenceScore)
		} else if d.OCRConfidence != nil {
			confidence = fmt.Sprintf("%.2f", *d.OCRConfidence)
		}

		values := []any{
			e.Filename,
			d.DocumentType,
			string(d.PrescriptionType),
			d.Patient.Name,
			d.Doctor.Name,
			d.Hospital.Name,
			truncate(d.Diagnosis, 120),
			d.IssueDate,
			truncate(strings.Join(meds, "; "), 500),
			len(d.Medications),
			signature,
			string(d.ExtractionMethod),
			confidence,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row+2, err)
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		logger.Warn("export.xlsx.col_width", "error", err)
	}
	if err := f.SetColWidth(sheet, "I", "I", 60); err != nil {
		logger.Warn("export.xlsx.col_width", "error", err)
	}

	logger.Info("export.xlsx.built", "rows", len(entries))
	return f, nil
}

// truncate cuts on runes so multi-byte text never gets split mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
