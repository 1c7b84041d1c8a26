package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/genealogy/pkg/errors"
)

// Supported history formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats is the set of supported history formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatYAML: true,
}

// document is the JSON and YAML shape of a history.
type document struct {
	Births []birth `json:"births" yaml:"births"`
}

type birth struct {
	Child   uint64    `json:"child" yaml:"child"`
	Epoch   uint64    `json:"epoch" yaml:"epoch"`
	Parents []*uint64 `json:"parents,omitempty" yaml:"parents,omitempty"`
}

func (b birth) record() (BirthRecord, error) {
	if len(b.Parents) > 2 {
		return BirthRecord{}, errors.New(errors.ErrCodeInvalidHistory, "child %d: at most two parents allowed, got %d", b.Child, len(b.Parents))
	}
	r := BirthRecord{ChildID: b.Child, Epoch: b.Epoch, Parents: Orphan}
	for i, p := range b.Parents {
		if p != nil {
			r.Parents[i] = *p
		}
	}
	return r, nil
}

func fromDocument(doc document) (*Store, error) {
	s := NewStore()
	for _, b := range doc.Births {
		r, err := b.record()
		if err != nil {
			return nil, err
		}
		if err := s.Add(r); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DetectFormat picks a format from a file extension. Unknown extensions are
// read as text.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Read decodes a history in the given format from r.
func Read(r io.Reader, format string) (*Store, error) {
	switch format {
	case FormatText, "":
		return ReadText(r)
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown history format: %q (must be one of: text, json, yaml)", format)
	}
}

// ReadJSON decodes a JSON history from r:
//
//	{"births": [{"child": 0, "epoch": 0}, {"child": 1, "epoch": 1, "parents": [0, null]}]}
//
// Missing or null parents become NoParent.
func ReadJSON(r io.Reader) (*Store, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidHistory, err, "decode json")
	}
	return fromDocument(doc)
}

// ReadYAML decodes a YAML history with the same shape as [ReadJSON].
// An empty document yields an empty store.
func ReadYAML(r io.Reader) (*Store, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidHistory, err, "decode yaml")
	}
	return fromDocument(doc)
}

// ReadText decodes the line-oriented text format. Each non-blank line that
// does not start with '#' holds "child epoch [parent0 [parent1]]", separated
// by whitespace or commas. A parent written as "-", "-1", "none", "nil" or
// "null" is NoParent, as is an omitted one.
func ReadText(r io.Reader) (*Store, error) {
	s := NewStore()
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidHistory, err, "line %d", lineNo)
		}
		if err := s.Add(rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidHistory, err, "read text")
	}
	return s, nil
}

func parseLine(line string) (BirthRecord, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	if len(fields) < 2 || len(fields) > 4 {
		return BirthRecord{}, fmt.Errorf("expected 2 to 4 fields, got %d", len(fields))
	}
	child, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return BirthRecord{}, fmt.Errorf("child id: %w", err)
	}
	epoch, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return BirthRecord{}, fmt.Errorf("epoch: %w", err)
	}
	rec := BirthRecord{ChildID: child, Epoch: epoch, Parents: Orphan}
	for i, f := range fields[2:] {
		p, err := parseParent(f)
		if err != nil {
			return BirthRecord{}, fmt.Errorf("parent %d: %w", i, err)
		}
		rec.Parents[i] = p
	}
	return rec, nil
}

func parseParent(s string) (uint64, error) {
	switch strings.ToLower(s) {
	case "-", "-1", "none", "nil", "null":
		return NoParent, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

// Import reads a history file. An empty format selects one from the file
// extension via [DetectFormat].
func Import(path, format string) (*Store, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	if format == "" {
		format = DetectFormat(path)
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "history %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
