// =============================================================================
// Bank Column Mapper - Profile Store
// =============================================================================
//
// This module owns every read and write of profile files. A profile records
// how one bank's export maps onto the canonical date/description/amount
// schema, plus the date format detected for that export.
//
// FILE LAYOUT (one directory, flat):
//   <bank name>.json                      - written when a bank name is given
//   __headers__<h1>|<h2>|...|<hn>.json    - always written (header signature)
//
// Both files carry the identical payload:
//   {
//     "bank_name": "acme" | null,
//     "headers": ["Transaction Date", "Memo", "Amt"],
//     "mapping": {"date": "...", "description": "...", "amount": "..."},
//     "date_format": "%m/%d/%Y" | null
//   }
//
// LOOKUP ORDER:
//   1. Bank name file, if a bank name is given (headers are not compared)
//   2. Header signature file (exact, order-sensitive)
//   3. Nothing: the caller elicits a new mapping
//
// CONCURRENCY:
//   Two runs saving into the same directory race; the last rename wins.
//   Single-user tool, so this is accepted and not coordinated.
//
// =============================================================================

package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ginjaninja78/bank-column-mapper/internal/types"
	"github.com/ginjaninja78/bank-column-mapper/internal/validation"
	"github.com/ginjaninja78/bank-column-mapper/pkg/utils"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// SignaturePrefix starts every header-signature key.
	SignaturePrefix = "__headers__"

	// SignatureSeparator joins headers inside a signature.
	SignatureSeparator = "|"

	// FileExt is the extension of every profile file.
	FileExt = ".json"
)

// ErrNotFound is returned by Load when the named profile does not exist.
var ErrNotFound = errors.New("profile not found")

// =============================================================================
// PROFILE STRUCTURE
// =============================================================================

// Profile is the persisted mapping for one bank export shape.
type Profile struct {
	// BankName is null when the profile was learned without a bank name.
	BankName *string `json:"bank_name"`

	// Headers is the header sequence the profile was learned from.
	Headers []string `json:"headers"`

	// Mapping maps the canonical fields to entries of Headers.
	Mapping types.Mapping `json:"mapping"`

	// DateFormat is a strptime-style pattern; null means dates pass through.
	DateFormat *string `json:"date_format"`
}

// New builds a profile. Empty bankName or dateFormat are stored as null.
func New(bankName string, headers []string, mapping types.Mapping, dateFormat string) *Profile {
	p := &Profile{
		Headers: append([]string{}, headers...),
		Mapping: mapping,
	}
	if bankName != "" {
		p.BankName = &bankName
	}
	if dateFormat != "" {
		p.DateFormat = &dateFormat
	}
	return p
}

// Bank returns the bank name, or "" when absent.
func (p *Profile) Bank() string {
	if p.BankName == nil {
		return ""
	}
	return *p.BankName
}

// Format returns the date format, or "" when absent.
func (p *Profile) Format() string {
	if p.DateFormat == nil {
		return ""
	}
	return *p.DateFormat
}

// Validate checks the profile invariants.
func (p *Profile) Validate(source string) []*validation.ValidationError {
	return validation.ValidateProfile(source, p.Headers, p.Mapping, p.Format())
}

// Signature derives the order-sensitive header-signature key.
func Signature(headers []string) string {
	return SignaturePrefix + strings.Join(headers, SignatureSeparator)
}

// =============================================================================
// STORE
// =============================================================================

// Store reads and writes profiles inside one directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is not created until
// the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for a profile key (bank name or signature).
// Path separators inside the key are escaped so a key never leaves the
// store directory.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, escapeKey(key)+FileExt)
}

func escapeKey(key string) string {
	key = strings.ReplaceAll(key, "%", "%25")
	key = strings.ReplaceAll(key, "/", "%2F")
	key = strings.ReplaceAll(key, "\\", "%5C")
	if key == "." || key == ".." {
		key = strings.ReplaceAll(key, ".", "%2E")
	}
	return key
}

// =============================================================================
// LOOKUP
// =============================================================================

// Find returns the profile for bankName, falling back to the header
// signature. It returns nil, nil when neither exists or when the store
// directory does not exist. Unreadable or malformed files are errors.
//
// PARAMETERS:
//   - bankName: The bank name, "" when not given.
//   - headers: The input file's header sequence, in file order.
func (s *Store) Find(bankName string, headers []string) (*Profile, error) {
	if !utils.DirExists(s.dir) {
		return nil, nil
	}

	if bankName != "" {
		p, err := s.read(s.Path(bankName))
		if err != nil || p != nil {
			return p, err
		}
	}

	return s.read(s.Path(Signature(headers)))
}

// Load reads a profile by key (bank name or signature) or by the on-disk
// name reported by List, with or without the .json extension.
func (s *Store) Load(name string) (*Profile, error) {
	key := strings.TrimSuffix(name, FileExt)
	p, err := s.read(s.Path(key))
	if err != nil {
		return nil, err
	}
	if p == nil && !strings.ContainsAny(key, "/\\") {
		p, err = s.read(filepath.Join(s.dir, key+FileExt))
		if err != nil {
			return nil, err
		}
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, nil
}

// read returns nil, nil for a missing file.
func (s *Store) read(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return &p, nil
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Save writes the profile under its header signature and, when bankName is
// given, under the bank name too. Existing files are overwritten.
//
// PARAMETERS:
//   - bankName: The bank name, "" when not given.
//   - headers: The header sequence the mapping was learned from.
//   - mapping: The canonical field mapping.
//   - dateFormat: The inferred date format, "" when none was found.
//
// RETURNS:
//   - The saved profile.
//   - An error if the profile is invalid or a file cannot be written.
func (s *Store) Save(bankName string, headers []string, mapping types.Mapping, dateFormat string) (*Profile, error) {
	p := New(bankName, headers, mapping, dateFormat)

	if errs := p.Validate(Signature(headers)); validation.HasErrors(errs) {
		return nil, fmt.Errorf("refusing to save invalid profile: %s", validation.FormatErrors(errs))
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	if err := utils.EnsureDir(s.dir); err != nil {
		return nil, err
	}

	if err := utils.WriteFileAtomic(s.Path(Signature(headers)), data); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	if bankName != "" {
		if err := utils.WriteFileAtomic(s.Path(bankName), data); err != nil {
			return nil, fmt.Errorf("failed to save profile: %w", err)
		}
	}

	return p, nil
}

// =============================================================================
// LISTING
// =============================================================================

// Entry names one profile file in the store.
type Entry struct {
	// Name is the file name without the .json extension, as stored on disk.
	Name string

	// Path is the full file path.
	Path string

	// IsSignature is true for header-signature files.
	IsSignature bool
}

// List returns all profile files in the store, sorted by name. A missing
// directory yields an empty list.
func (s *Store) List() ([]Entry, error) {
	if !utils.DirExists(s.dir) {
		return nil, nil
	}

	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || filepath.Ext(name) != FileExt || strings.HasPrefix(name, ".") {
			continue
		}
		stem := strings.TrimSuffix(name, FileExt)
		entries = append(entries, Entry{
			Name:        stem,
			Path:        filepath.Join(s.dir, name),
			IsSignature: strings.HasPrefix(stem, SignaturePrefix),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// ReadEntry loads the profile behind a listed entry.
func (s *Store) ReadEntry(e Entry) (*Profile, error) {
	p, err := s.read(e.Path)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, e.Name)
	}
	return p, nil
}
