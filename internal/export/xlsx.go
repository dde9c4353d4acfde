package export

import (
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Syzygyx/StealthOCR/internal/reprog"
)

// rawTextChunkSize bounds cell size on the Raw Text sheet; spreadsheet tools
// choke on multi-megabyte cells.
const rawTextChunkSize = 1000

var amountPrinter = message.NewPrinter(language.AmericanEnglish)

// DisplayAmount renders a canonical amount ("-657584" style digits) as a
// dollar figure with thousands separators. Non-numeric input passes through
// unchanged and empty stays empty.
func DisplayAmount(canonical string) string {
	if canonical == "" {
		return ""
	}
	n, err := strconv.ParseInt(canonical, 10, 64)
	if err != nil {
		return canonical
	}
	if n < 0 {
		return amountPrinter.Sprintf("-$%d", -n)
	}
	return amountPrinter.Sprintf("$%d", n)
}

// WriteXLSXFile writes the four-sheet workbook for one extraction result:
// Document Summary, Financial Data, Program Details, and Raw Text.
func WriteXLSXFile(path string, res reprog.Result) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, res); err != nil {
		return err
	}
	if err := addFinancialSheet(f, res.Records); err != nil {
		return err
	}
	if err := addDetailsSheet(f, res); err != nil {
		return err
	}
	if err := addRawTextSheet(f, res.Text); err != nil {
		return err
	}

	return eris.Wrapf(f.Save(path), "export: save workbook %s", path)
}

func addSummarySheet(f *xlsx.File, res reprog.Result) error {
	sheet, err := f.AddSheet("Document Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addPair(sheet, "Field", "Value")
	addPair(sheet, "Source File", res.Source)
	addPair(sheet, "Subject", res.Meta.Title)
	addPair(sheet, "DoD Serial Number", res.Meta.SerialNumber)
	addPair(sheet, "Appropriation Title", res.Meta.AppropriationTitle)
	addPair(sheet, "Includes Transfer", res.Meta.IncludesTransfer)
	addPair(sheet, "Component Serial Number", res.Meta.ComponentSerial)
	addPair(sheet, "Pages Processed", strconv.Itoa(res.PagesProcessed))
	addPair(sheet, "Character Count", strconv.Itoa(res.CharacterCount))
	addPair(sheet, "Word Count", strconv.Itoa(res.WordCount))
	addPair(sheet, "Records Extracted", strconv.Itoa(len(res.Records)))
	addPair(sheet, "Extracted At", res.ExtractedAt.Format(time.RFC3339))
	return nil
}

func addFinancialSheet(f *xlsx.File, records []reprog.Record) error {
	sheet, err := f.AddSheet("Financial Data")
	if err != nil {
		return eris.Wrap(err, "export: add financial sheet")
	}

	header := sheet.AddRow()
	for _, col := range reprog.Header() {
		header.AddCell().Value = col
	}
	for _, r := range records {
		fields := r.Fields()
		// Amount columns get display formatting; everything else verbatim.
		fields[10] = DisplayAmount(fields[10])
		fields[11] = DisplayAmount(fields[11])
		fields[12] = DisplayAmount(fields[12])
		fields[13] = DisplayAmount(fields[13])
		row := sheet.AddRow()
		for _, v := range fields {
			row.AddCell().Value = v
		}
	}
	return nil
}

func addDetailsSheet(f *xlsx.File, res reprog.Result) error {
	sheet, err := f.AddSheet("Program Details")
	if err != nil {
		return eris.Wrap(err, "export: add details sheet")
	}

	addPair(sheet, "Field", "Value")
	addPair(sheet, "Narrative", res.Details.Narrative)
	addPair(sheet, "Description", res.Details.Description)
	addPair(sheet, "National Interest Determination", yesNo(res.Details.NationalInterest))
	addPair(sheet, "Meets Legal Requirements", yesNo(res.Details.MeetsLegalRequirements))

	if len(res.Financial) > 0 {
		sheet.AddRow()
		h := sheet.AddRow()
		h.AddCell().Value = "Funding Item"
		h.AddCell().Value = "Amount"
		h.AddCell().Value = "Context"
		for _, item := range res.Financial {
			row := sheet.AddRow()
			row.AddCell().Value = item.Item
			row.AddCell().SetFloat(item.Amount)
			row.AddCell().Value = item.Context
		}
	}
	return nil
}

func addRawTextSheet(f *xlsx.File, text string) error {
	sheet, err := f.AddSheet("Raw Text")
	if err != nil {
		return eris.Wrap(err, "export: add raw text sheet")
	}

	h := sheet.AddRow()
	h.AddCell().Value = "Chunk"
	h.AddCell().Value = "Text"

	for i, chunk := range chunkText(text, rawTextChunkSize) {
		row := sheet.AddRow()
		row.AddCell().Value = strconv.Itoa(i + 1)
		row.AddCell().Value = chunk
	}
	return nil
}

func addPair(sheet *xlsx.Sheet, field, value string) {
	row := sheet.AddRow()
	row.AddCell().Value = field
	row.AddCell().Value = value
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func chunkText(text string, size int) []string {
	if text == "" {
		return nil
	}
	var chunks []string
	for len(text) > size {
		chunks = append(chunks, text[:size])
		text = text[size:]
	}
	return append(chunks, text)
}
