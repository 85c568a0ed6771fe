package core

// metadata.go parses one per-sweep VoltageRecording XML document into a
// SweepMetadata record.
//
// The instrument nests the interesting elements at varying depths, so the
// document is first decoded into a small element tree and fields are then
// looked up by name among an element's descendants (first match in document
// order). The parse either returns a fully validated record or an error;
// it never returns a partially populated one.

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ChannelRole identifies one of the two electrophysiology channels.
type ChannelRole string

const (
	RolePrimary   ChannelRole = "primary"
	RoleSecondary ChannelRole = "secondary"
)

// ChannelConfig is the calibration of an electrophysiology channel.
type ChannelConfig struct {
	Unit    string  `json:"unit"`
	Divisor float64 `json:"divisor"`
}

// SweepMetadata is everything the import needs to know about one sweep.
type SweepMetadata struct {
	Channels        []string                      `json:"channels"`
	ChannelConfig   map[ChannelRole]ChannelConfig `json:"channel_config"`
	SamplingRateHz  int                           `json:"sampling_rate_hz"`
	DurationSeconds float64                       `json:"duration_seconds"`
	PrimaryFile     string                        `json:"primary_file,omitempty"`
	AuxiliaryFile   string                        `json:"auxiliary_file,omitempty"`
	Role            FileRole                      `json:"role"`
	Source          string                        `json:"source"`
}

// HasPrimary reports whether the sweep resolved a primary recording file.
func (m *SweepMetadata) HasPrimary() bool { return m.PrimaryFile != "" }

// HasAuxiliary reports whether the sweep resolved an auxiliary profile file.
func (m *SweepMetadata) HasAuxiliary() bool { return m.AuxiliaryFile != "" }

// Calibration returns the channel config for role, if the sweep has one.
func (m *SweepMetadata) Calibration(role ChannelRole) (ChannelConfig, bool) {
	cfg, ok := m.ChannelConfig[role]
	return cfg, ok
}

// Element names in the VoltageRecording schema.
const (
	fieldEnabled          = "Enabled"
	fieldType             = "Type"
	fieldPatchclampDevice = "PatchclampDevice"
	fieldPatchclampChan   = "PatchclampChannel"
	fieldUnitName         = "UnitName"
	fieldDivisor          = "Divisor"
	fieldName             = "Name"
	fieldRate             = "Rate"
	fieldAcquisitionTime  = "AcquisitionTime"
	fieldDataFile         = "DataFile"
	fieldLinescanProfile  = "AssociatedLinescanProfileFile"

	physicalChannelType = "Physical"
)

// MetadataParser parses VoltageRecording metadata documents.
// The zero value uses DefaultAuxiliaryMarker.
type MetadataParser struct {
	AuxiliaryMarker string
}

// ParseMetadata parses a metadata document with the default parser.
func ParseMetadata(r io.Reader, source string) (*SweepMetadata, error) {
	return MetadataParser{}.Parse(r, source)
}

// ParseMetadataFile opens and parses the metadata document at path.
func ParseMetadataFile(path string) (*SweepMetadata, error) {
	return MetadataParser{}.ParseFile(path)
}

// ParseFile opens and parses the metadata document at path.
func (p MetadataParser) ParseFile(path string) (*SweepMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &FileNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("open metadata %s: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f, path)
}

// Parse reads one metadata document. source is used in error messages and
// recorded on the result.
func (p MetadataParser) Parse(r io.Reader, source string) (*SweepMetadata, error) {
	root, err := decodeTree(r)
	if err != nil {
		return nil, &MalformedDocumentError{Path: source, Err: err}
	}

	meta := &SweepMetadata{
		ChannelConfig: make(map[ChannelRole]ChannelConfig),
		Source:        source,
	}

	if err := p.parseChannels(root, meta); err != nil {
		return nil, err
	}

	rate, err := requireInt(root, fieldRate, source)
	if err != nil {
		return nil, err
	}
	if rate <= 0 {
		return nil, &MalformedDocumentError{Path: source, Field: fieldRate,
			Detail: fmt.Sprintf("sampling rate must be positive, got %d", rate)}
	}
	meta.SamplingRateHz = rate

	acqMs, err := requireInt(root, fieldAcquisitionTime, source)
	if err != nil {
		return nil, err
	}
	if acqMs < 0 {
		return nil, &MalformedDocumentError{Path: source, Field: fieldAcquisitionTime,
			Detail: fmt.Sprintf("acquisition time must be non-negative, got %d", acqMs)}
	}
	meta.DurationSeconds = float64(acqMs) / 1000

	dataFile, err := requireText(root, fieldDataFile, source)
	if err != nil {
		return nil, err
	}
	auxRef := optionalText(root, fieldLinescanProfile)

	meta.Role = ResolveFileRoles(dataFile, auxRef, p.AuxiliaryMarker)
	meta.PrimaryFile, meta.AuxiliaryFile = meta.Role.Files(dataFile, auxRef)

	return meta, nil
}

// parseChannels walks every enabled Physical channel in document order.
func (p MetadataParser) parseChannels(root *xmlNode, meta *SweepMetadata) error {
	// Channel columns follow Time in the primary table.
	seen := map[string]bool{TimeColumn: true}

	for _, enabled := range root.findAll(fieldEnabled) {
		if !strings.EqualFold(enabled.text, "true") {
			continue
		}
		ch := enabled.parent
		if ch == nil {
			continue
		}

		chType, err := requireText(ch, fieldType, meta.Source)
		if err != nil {
			return err
		}
		if chType != physicalChannelType {
			continue
		}

		var name string
		if device := optionalText(ch, fieldPatchclampDevice); device != "" {
			role, cfg, err := parseEphysChannel(ch, meta.Source)
			if err != nil {
				return err
			}
			meta.ChannelConfig[role] = cfg
			name = string(role)
		} else {
			name, err = requireText(ch, fieldName, meta.Source)
			if err != nil {
				return err
			}
		}

		name = capitalize(name)
		if seen[name] {
			return &MalformedDocumentError{Path: meta.Source, Field: fieldName,
				Detail: fmt.Sprintf("duplicate channel %q", name)}
		}
		seen[name] = true
		meta.Channels = append(meta.Channels, name)
	}

	return nil
}

// parseEphysChannel reads the role and calibration of a patch-clamp channel.
func parseEphysChannel(ch *xmlNode, source string) (ChannelRole, ChannelConfig, error) {
	code, err := requireText(ch, fieldPatchclampChan, source)
	if err != nil {
		return "", ChannelConfig{}, err
	}

	var role ChannelRole
	switch code {
	case "0":
		role = RolePrimary
	case "1":
		role = RoleSecondary
	default:
		return "", ChannelConfig{}, &InvalidChannelTypeError{
			Path:    source,
			Channel: optionalText(ch, fieldName),
			Code:    code,
		}
	}

	unit, err := requireText(ch, fieldUnitName, source)
	if err != nil {
		return "", ChannelConfig{}, err
	}

	raw := optionalText(ch, fieldDivisor)
	if raw == "" {
		return "", ChannelConfig{}, &CalibrationError{Path: source, Role: role, Detail: "missing divisor"}
	}
	divisor, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", ChannelConfig{}, &MalformedDocumentError{Path: source, Field: fieldDivisor, Err: err}
	}
	if divisor == 0 {
		return "", ChannelConfig{}, &CalibrationError{Path: source, Role: role, Divisor: divisor}
	}

	return role, ChannelConfig{Unit: unit, Divisor: divisor}, nil
}

func requireText(n *xmlNode, field, source string) (string, error) {
	v := optionalText(n, field)
	if v == "" {
		return "", &MissingFieldError{Path: source, Field: field}
	}
	return v, nil
}

func requireInt(n *xmlNode, field, source string) (int, error) {
	raw, err := requireText(n, field, source)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &MalformedDocumentError{Path: source, Field: field, Err: err}
	}
	return v, nil
}

// optionalText returns the trimmed text of the first descendant named field,
// or "" when it is missing, empty or marked xsi:nil.
func optionalText(n *xmlNode, field string) string {
	found := n.find(field)
	if found == nil || found.null {
		return ""
	}
	return found.text
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	// Casers are stateful, so each call gets its own.
	return cases.Upper(language.Und).String(string(r)) + cases.Lower(language.Und).String(s[size:])
}

/* ----------------------------------------
	Element tree
---------------------------------------- */

type xmlNode struct {
	name     string
	text     string
	null     bool
	parent   *xmlNode
	children []*xmlNode
}

// decodeTree reads a whole XML document into an element tree.
func decodeTree(r io.Reader) (*xmlNode, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	doc := &xmlNode{}
	cur := doc
	var text strings.Builder
	texts := []*strings.Builder{&text}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local, parent: cur}
			for _, a := range t.Attr {
				if a.Name.Local == "nil" && strings.EqualFold(a.Value, "true") {
					n.null = true
				}
			}
			cur.children = append(cur.children, n)
			cur = n
			texts = append(texts, &strings.Builder{})
		case xml.CharData:
			texts[len(texts)-1].Write(t)
		case xml.EndElement:
			cur.text = strings.TrimSpace(texts[len(texts)-1].String())
			texts = texts[:len(texts)-1]
			cur = cur.parent
		}
	}

	if len(doc.children) == 0 {
		return nil, errors.New("document has no root element")
	}
	return doc, nil
}

// find returns the first descendant named name in document order.
func (n *xmlNode) find(name string) *xmlNode {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
		if found := c.find(name); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant named name in document order.
func (n *xmlNode) findAll(name string) []*xmlNode {
	var out []*xmlNode
	var walk func(*xmlNode)
	walk = func(p *xmlNode) {
		for _, c := range p.children {
			if c.name == name {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}
