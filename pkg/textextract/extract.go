package textextract

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

type ExtractedText struct {
	Content string
	Pages   int
}

// Extract returns the plain text of a PDF or DOCX file. Unknown kinds yield
// an empty result with no error; callers treat that as "nothing to index".
func Extract(data io.ReaderAt, size int64, kind string) (*ExtractedText, error) {
	switch strings.ToLower(kind) {
	case ".pdf", "pdf":
		return extractPDF(data, size)
	case ".docx", "docx":
		return extractDOCX(data, size)
	default:
		return &ExtractedText{}, nil
	}
}

func extractPDF(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read PDF page %d: %w", i, err)
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(strings.TrimSpace(text))
	}

	return &ExtractedText{Content: buf.String(), Pages: numPages}, nil
}

func extractDOCX(data io.ReaderAt, size int64) (*ExtractedText, error) {
	r, err := docx.ReadDocxFromMemory(data, size)
	if err != nil {
		return nil, fmt.Errorf("open DOCX: %w", err)
	}
	defer r.Close()

	return &ExtractedText{
		Content: docxPlainText(r.Editable().GetContent()),
		Pages:   1,
	}, nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>`)
	lineBreak    = regexp.MustCompile(`<w:(br|cr)\s*/>`)
	tab          = regexp.MustCompile(`<w:tab\s*/>`)
	anyTag       = regexp.MustCompile(`<[^>]*>`)
	blankRun     = regexp.MustCompile(`\n{3,}`)
)

// docxPlainText turns WordprocessingML into text with one blank line between
// paragraphs, which the chunker uses as its coarsest boundary.
func docxPlainText(xml string) string {
	s := paragraphEnd.ReplaceAllString(xml, "\n\n")
	s = lineBreak.ReplaceAllString(s, "\n")
	s = tab.ReplaceAllString(s, "\t")
	s = anyTag.ReplaceAllString(s, "")
	s = unescapeXML(s)
	s = blankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

var xmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}
