package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// schemaExample is embedded in the text-structuring prompt; concrete examples
// steer the services toward the expected shape better than the bare schema.
var schemaExample = map[string]any{
	"document_type":       "prescription",
	"prescription_type":   "printed",
	"prescription_number": "22001918442",
	"issue_date":          "2022-09-14",
	"patient": map[string]any{
		"name":       "Nguyễn Việt Ghi",
		"age":        "65",
		"gender":     "Nam",
		"address":    "Xã Bình Thạnh Huyện Bình Sơn Quảng Ngãi",
		"phone":      nil,
		"patient_id": nil,
	},
	"doctor": map[string]any{
		"name":           "Bùi Văn Đoàn",
		"title":          "ThS.BS",
		"specialty":      nil,
		"license_number": nil,
		"phone":          nil,
	},
	"hospital": map[string]any{
		"name":       "Bệnh Viện TW Huế",
		"department": "K. Khám bệnh",
		"address":    nil,
		"phone":      nil,
	},
	"diagnosis": "Viêm gan C mạn",
	"medications": []map[string]any{
		{
			"name":      "Epclusa (400MG + 100MG)",
			"dosage":    "400mg",
			"quantity":  "30",
			"frequency": "Ngày uống sáng 1 viên sau ăn",
			"duration":  nil,
		},
	},
	"notes": nil,
}

// BuildTextExtractionPrompt builds the text-to-JSON structuring prompt.
// A fresh prompt is built per attempt so retries see the same instructions.
func BuildTextExtractionPrompt(ocrText string) string {
	example, _ := json.MarshalIndent(schemaExample, "", "  ")

	var b strings.Builder
	b.WriteString("You are an expert medical document parser specialized in extracting structured data from medical prescriptions.\n\n")
	b.WriteString("TASK: Extract ALL relevant information from the OCR text below into a structured JSON format.\n\n")
	b.WriteString("RULES:\n")
	b.WriteString("1. Return ONLY valid JSON - no markdown, no explanations, no preamble\n")
	b.WriteString("2. Use null for missing/unknown fields\n")
	b.WriteString("3. Extract patient information: name, age, gender, address, phone, patient_id\n")
	b.WriteString("4. Extract doctor information: name, title, specialty, license_number, phone\n")
	b.WriteString("5. Extract hospital/clinic information: name, department, address, phone\n")
	b.WriteString("6. Extract diagnosis if present\n")
	b.WriteString("7. Extract ALL medications with: name, dosage, quantity, frequency, duration, instructions\n")
	b.WriteString("8. Extract any advice or instructions into the \"notes\" field\n")
	b.WriteString("9. \"document_type\" must be \"prescription\"\n")
	b.WriteString("10. For Vietnamese prescriptions: preserve Vietnamese text exactly as written\n\n")
	b.WriteString("EXPECTED JSON SCHEMA:\n")
	b.Write(example)
	b.WriteString("\n\nOCR TEXT:\n")
	b.WriteString(ocrText)
	b.WriteString("\n\nReturn the extracted data as JSON:")
	return b.String()
}

// BuildVisionPrompt builds the full-image extraction prompt. OCR text rides
// along as supplementary context; vision is the authority on handwriting.
func BuildVisionPrompt(ocrText string, ocrConfidence float32) string {
	var b strings.Builder
	b.WriteString("You are an expert medical document analyzer specializing in reading medical prescriptions, ")
	b.WriteString("including HANDWRITTEN text and SIGNATURES that traditional OCR systems cannot process.\n\n")
	b.WriteString("TASK: Analyze this medical prescription image and extract ALL information into structured JSON.\n\n")
	b.WriteString("CRITICAL CAPABILITIES YOU MUST USE:\n")
	b.WriteString("1. SIGNATURE DETECTION: note the location on the document, whether it is legible, ")
	b.WriteString("any readable name, and your confidence (0.0 to 1.0) in the doctor_signature object.\n")
	b.WriteString("2. HANDWRITTEN TEXT READING: carefully read all handwritten portions - medication names, ")
	b.WriteString("dosage instructions, patient names, doctor notes, handwritten additions to printed forms.\n")
	b.WriteString("3. MIXED CONTENT HANDLING: distinguish printed text from handwriting; report unreadable ")
	b.WriteString("fragments in handwriting_analysis.unclear_text.\n")

	if ocrText != "" {
		b.WriteString(fmt.Sprintf("\nOCR-EXTRACTED TEXT (OCR confidence: %.1f%%):\n", ocrConfidence*100))
		b.WriteString("The following text was extracted by OCR. Use this as a reference, but rely on your vision\n")
		b.WriteString("for handwritten text, signatures, and anything the OCR might have missed or misread:\n\n")
		b.WriteString(ocrText)
		b.WriteString("\n\n---\n")
	}

	b.WriteString("\nReturn a single JSON object with these fields: document_type (\"prescription\"), ")
	b.WriteString("prescription_type (handwritten|printed|mixed|digital), prescription_number, barcode, issue_date, ")
	b.WriteString("patient {name, age, gender, address, phone, patient_id}, ")
	b.WriteString("doctor {name, title, specialty, license_number, phone}, ")
	b.WriteString("hospital {name, department, address, phone, pharmacy_counter}, diagnosis, ")
	b.WriteString("medications [{name, dosage, quantity, frequency, duration, instructions, is_handwritten}], ")
	b.WriteString("doctor_signature {is_present, signer_name, signer_title, location, is_legible, confidence}, ")
	b.WriteString("handwriting_analysis {has_handwritten_content, handwritten_sections, ocr_confidence, llm_interpretation, unclear_text}, ")
	b.WriteString("notes, total_items, confidence_score.\n\n")
	b.WriteString("IMPORTANT RULES:\n")
	b.WriteString("1. Return ONLY valid JSON - no markdown code blocks, no explanations\n")
	b.WriteString("2. Use null for missing/unreadable fields\n")
	b.WriteString("3. For Vietnamese prescriptions: preserve Vietnamese text exactly as written\n")
	b.WriteString("4. ALWAYS analyze signatures even if they're just scribbles\n")
	b.WriteString("5. Note which medications are handwritten vs printed\n\n")
	b.WriteString("Analyze the prescription image now:")
	return b.String()
}

// BuildSignaturePrompt builds the narrowly-scoped signature-only prompt.
func BuildSignaturePrompt() string {
	var b strings.Builder
	b.WriteString("Analyze this document image and focus ONLY on signature detection.\n\n")
	b.WriteString("Return JSON with signature information:\n")
	b.WriteString("{\n")
	b.WriteString("    \"is_present\": true/false,\n")
	b.WriteString("    \"signer_name\": \"name if you can read it from the signature or nearby text\",\n")
	b.WriteString("    \"signer_title\": \"title if visible (e.g., 'Doctor', 'BÁC SĨ ĐIỀU TRỊ')\",\n")
	b.WriteString("    \"location\": \"where on the document (e.g., 'bottom right', 'bottom center')\",\n")
	b.WriteString("    \"is_legible\": true/false,\n")
	b.WriteString("    \"confidence\": 0.0-1.0\n")
	b.WriteString("}\n\n")
	b.WriteString("Look for:\n")
	b.WriteString("- Handwritten signatures (cursive writing that looks like a name)\n")
	b.WriteString("- Signature lines or boxes\n")
	b.WriteString("- Text labels like \"Signature\", \"Ký tên\", \"BÁC SĨ KHÁM BỆNH\"\n")
	b.WriteString("- Any name printed near or under the signature\n\n")
	b.WriteString("Return ONLY JSON, no explanations.")
	return b.String()
}
