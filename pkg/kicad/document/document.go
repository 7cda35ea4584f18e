// Package document splices generated records into a template board file.
//
// The template is split after a fixed number of header lines. Header and
// trailer bytes are passed through untouched; generated records go in
// between.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DefaultHeaderLines is where the reference template is split: after its
// layer table and setup block, before the first board item.
const DefaultHeaderLines = 99

// ErrShortTemplate is returned when the template has fewer lines than the
// requested header length.
var ErrShortTemplate = errors.New("template shorter than header")

// Split returns the first headerLines lines of doc (newlines included) and
// everything after them. header+trailer is always byte-identical to doc.
func Split(doc []byte, headerLines int) (header, trailer []byte, err error) {
	if headerLines < 0 {
		return nil, nil, fmt.Errorf("header length %d must not be negative", headerLines)
	}

	offset := 0
	for i := 0; i < headerLines; i++ {
		if offset >= len(doc) {
			return nil, nil, fmt.Errorf("%w: %d lines, want at least %d", ErrShortTemplate, i, headerLines)
		}
		nl := bytes.IndexByte(doc[offset:], '\n')
		if nl < 0 {
			// An unterminated last line still counts as a line.
			offset = len(doc)
			continue
		}
		offset += nl + 1
	}
	return doc[:offset:offset], doc[offset:], nil
}

// Assemble returns header + body + trailer. body is inserted verbatim; a
// missing newline after the header's last line is added so the first
// record starts on its own line. That only happens when the template has
// exactly headerLines lines and no final newline, and it is the one case
// where the header of the output is not byte-identical to the template's.
func Assemble(template []byte, headerLines int, body string) ([]byte, error) {
	header, trailer, err := Split(template, headerLines)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(len(template) + len(body) + 1)
	out.Write(header)
	if len(header) > 0 && header[len(header)-1] != '\n' && body != "" {
		out.WriteByte('\n')
	}
	out.WriteString(body)
	out.Write(trailer)
	return out.Bytes(), nil
}

// AssembleFile reads templatePath, splices body in and writes outputPath.
// The output is written to a temporary file and renamed into place, so a
// failure leaves no partial output behind.
func AssembleFile(templatePath, outputPath string, headerLines int, body string) error {
	template, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	doc, err := Assemble(template, headerLines, body)
	if err != nil {
		return fmt.Errorf("failed to assemble %s: %w", templatePath, err)
	}

	if err := writeAtomic(outputPath, doc); err != nil {
		return err
	}

	Logger().Info("wrote board",
		zap.String("template", templatePath),
		zap.String("output", outputPath),
		zap.Int("header_lines", headerLines),
		zap.Int("bytes", len(doc)))
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// recordPrefixes are the record kinds the generator emits.
var recordPrefixes = [][]byte{[]byte("(segment "), []byte("(via "), []byte("(gr_circle ")}

// Extract returns the generated records of an assembled document: the run
// of segment, via and gr_circle lines starting right after the header. It
// is empty when the document has no generated body.
func Extract(doc []byte, headerLines int) ([]byte, error) {
	_, rest, err := Split(doc, headerLines)
	if err != nil {
		return nil, err
	}

	end := 0
	for end < len(rest) {
		line := rest[end:]
		if nl := bytes.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl+1]
		}
		if !isRecord(bytes.TrimSpace(line)) {
			break
		}
		end += len(line)
	}
	return rest[:end:end], nil
}

func isRecord(line []byte) bool {
	for _, p := range recordPrefixes {
		if bytes.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
