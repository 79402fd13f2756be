package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// extractDocx reads the main document part of an OOXML container and
// rebuilds paragraphs from its text runs. Only word/document.xml is
// consulted; headers, footers and comments are ignored.
func (e *Extractor) extractDocx(path string) ([]Segment, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid docx container: %v", ErrExtraction, err)
	}
	defer zr.Close()

	var docPart *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docPart = f
			break
		}
	}
	if docPart == nil {
		return nil, fmt.Errorf("%w: docx has no word/document.xml", ErrExtraction)
	}

	rc, err := docPart.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer rc.Close()

	text, err := wordMLText(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	return []Segment{{Content: text}}, nil
}

// wordMLText walks WordprocessingML, collecting character data inside
// <w:t> runs and emitting a newline per closed <w:p> paragraph.
func wordMLText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

// extractDoc salvages readable text from a legacy binary .doc file. The
// format has no open Go parser, so printable runs are recovered directly
// from the container; anything below the salvage threshold is treated as
// unextractable.
func (e *Extractor) extractDoc(path string) ([]Segment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	const minRun = 4 // shorter printable runs are format noise

	var sb strings.Builder
	var run []rune
	flush := func() {
		if len(run) >= minRun {
			sb.WriteString(string(run))
			sb.WriteByte(' ')
		}
		run = run[:0]
	}

	for _, r := range string(raw) {
		if r == '\r' || r == '\n' {
			run = append(run, '\n')
			continue
		}
		if unicode.IsPrint(r) && r != unicode.ReplacementChar {
			run = append(run, r)
			continue
		}
		flush()
	}
	flush()

	text := strings.TrimSpace(sb.String())
	if len(text) < minRun {
		return nil, fmt.Errorf("%w: no readable text in legacy .doc file", ErrExtraction)
	}

	return []Segment{{Content: text}}, nil
}
