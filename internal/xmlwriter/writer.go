// =============================================================================
// Bank Column Mapper - XML Writer Module
// =============================================================================
//
// This module renders normalized rows as an XML document.
//
// XML STRUCTURE:
//
//   <transactions>                       <!-- Root element -->
//     <transaction n="1">                <!-- One element per row, 1-based index -->
//       <date>2024-01-15</date>
//       <description>Coffee</description>
//       <amount>-3.50</amount>
//     </transaction>
//   </transactions>
//
// Field elements always appear in canonical order and are written even when
// empty, so every transaction has the same shape.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/ginjaninja78/bank-column-mapper/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation. Empty writes one line.
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	IncludeXMLDeclaration bool

	// RootElement is the name of the document element.
	RootElement string

	// RowElement is the name of the per-row element.
	RowElement string

	// IndexAttribute is the attribute carrying the 1-based row index.
	// Empty omits the attribute.
	IndexAttribute string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		RootElement:           "transactions",
		RowElement:            "transaction",
		IndexAttribute:        "n",
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate creates an XML document from normalized rows using the default
// options.
func Generate(rows []types.CanonicalRow) ([]byte, error) {
	return GenerateWithOptions(rows, DefaultGenerateOptions())
}

// GenerateWithOptions creates an XML document with custom options.
//
// PARAMETERS:
//   - rows: The normalized rows, in output order.
//   - options: Element names and formatting.
//
// RETURNS:
//   - The XML document as a byte slice.
//   - An error if an element name is missing or encoding fails.
func GenerateWithOptions(rows []types.CanonicalRow, options GenerateOptions) ([]byte, error) {
	if options.RootElement == "" || options.RowElement == "" {
		return nil, fmt.Errorf("root and row element names are required")
	}

	var buffer bytes.Buffer
	if options.IncludeXMLDeclaration {
		buffer.WriteString(xml.Header)
	}

	enc := xml.NewEncoder(&buffer)
	enc.Indent("", options.Indent)

	root := xml.StartElement{Name: xml.Name{Local: options.RootElement}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, fmt.Errorf("failed to write root element: %w", err)
	}

	for i, row := range rows {
		if err := encodeRow(enc, row, i+1, options); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, fmt.Errorf("failed to close root element: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush XML: %w", err)
	}

	buffer.WriteString("\n")
	return buffer.Bytes(), nil
}

// encodeRow writes one row element with its three field elements.
func encodeRow(enc *xml.Encoder, row types.CanonicalRow, index int, options GenerateOptions) error {
	start := xml.StartElement{Name: xml.Name{Local: options.RowElement}}
	if options.IndexAttribute != "" {
		start.Attr = []xml.Attr{{
			Name:  xml.Name{Local: options.IndexAttribute},
			Value: strconv.Itoa(index),
		}}
	}

	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	header := types.HeaderRecord()
	for i, value := range row.Record() {
		if err := enc.EncodeElement(value, xml.StartElement{Name: xml.Name{Local: header[i]}}); err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}
