package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// docxText joins the body paragraphs of a .docx file with a single space,
// in document order. Paragraphs nested in tables or text boxes are not
// body paragraphs and are left out.
func docxText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", docxBody, err)
		}
		defer rc.Close()
		paragraphs, err := bodyParagraphs(rc)
		if err != nil {
			return "", err
		}
		return strings.Join(paragraphs, " "), nil
	}
	return "", fmt.Errorf("docx: %s not found", docxBody)
}

// bodyParagraphs streams WordprocessingML and returns the text of every
// w:p that is a direct child of w:body. Empty paragraphs are kept. Only
// runs owned by the paragraph itself are read, so text boxes and their
// mc:Fallback copies contribute nothing.
func bodyParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		stack      []string
		paragraphs []string
		current    strings.Builder
		paraDepth  = -1
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", docxBody, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if name == "p" && paraDepth < 0 && len(stack) > 0 && stack[len(stack)-1] == "body" {
				paraDepth = len(stack)
				current.Reset()
			}
			if paraDepth >= 0 && ownRun(stack[paraDepth+1:]) {
				switch name {
				case "tab":
					current.WriteByte('\t')
				case "br", "cr":
					current.WriteByte('\n')
				}
			}
			stack = append(stack, name)

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			stack = stack[:len(stack)-1]
			if t.Name.Local == "p" && len(stack) == paraDepth {
				paragraphs = append(paragraphs, current.String())
				paraDepth = -1
			}

		case xml.CharData:
			n := len(stack)
			if paraDepth >= 0 && n > paraDepth+1 && stack[n-1] == "t" && ownRun(stack[paraDepth+1:n-1]) {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}

// ownRun reports whether path, the elements between a paragraph and the
// current position, ends in a run belonging to that paragraph: w:r directly,
// or through one w:hyperlink, w:ins or w:smartTag wrapper.
func ownRun(path []string) bool {
	switch len(path) {
	case 1:
		return path[0] == "r"
	case 2:
		switch path[0] {
		case "hyperlink", "ins", "smartTag":
			return path[1] == "r"
		}
	}
	return false
}
