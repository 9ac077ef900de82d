// Package profile loads respondent profiles and derives the anonymous
// identifiers and contextual snippets the engine consumes.
package profile

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/emilianodellacasa/colloquio/internal/text"
)

// Unspecified is the placeholder returned for absent profile fields.
const Unspecified = "NON_SPECIFICATO"

// Profile is one respondent's record. Known fields are typed; everything
// else the JSON file carries lands in Extra and still participates in
// retrieval and fingerprinting.
type Profile struct {
	Nome        string `mapstructure:"nome" json:"nome"`
	Eta         int    `mapstructure:"eta" json:"eta"`
	Genere      string `mapstructure:"genere" json:"genere"`
	StatoCivile string `mapstructure:"stato_civile" json:"stato_civile"`

	Extra map[string]any `mapstructure:",remain" json:"-"`

	// PatientID is derived from the source file name, never stored in it.
	PatientID string `mapstructure:"-" json:"-"`

	raw map[string]any
}

// Load reads a profile JSON file and decodes it.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}

	var p Profile
	if err := mapstructure.Decode(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", path, err)
	}
	p.raw = raw
	p.PatientID = PatientID(path)
	return &p, nil
}

// List returns the profile JSON files under dir, sorted by name. Files whose
// name starts with '.' or '_' are skipped.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing profiles in %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// PatientID derives the anonymous identifier from the profile file name:
// "P_" plus the first 8 hex digits of the MD5 of the file stem.
func PatientID(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sum := md5.Sum([]byte(stem))
	return "P_" + hex.EncodeToString(sum[:])[:8]
}

// Fingerprint returns a stable SHA-256 digest of the profile contents, used
// to detect profile edits between sessions.
func (p *Profile) Fingerprint() string {
	keys := make([]string, 0, len(p.raw))
	for k := range p.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v\n", k, p.raw[k])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SafeField returns the named field as a string, or Unspecified when absent
// or empty.
func (p *Profile) SafeField(key string) string {
	v, ok := p.raw[key]
	if !ok {
		return Unspecified
	}
	s := strings.TrimSpace(stringify(v))
	if s == "" {
		return Unspecified
	}
	return s
}

// GenderLabel normalizes the profile's gender field.
func (p *Profile) GenderLabel() string {
	return text.GenderLabel(p.Genere)
}

// DisplayName is the respondent's name for menus and summaries.
func (p *Profile) DisplayName() string {
	if strings.TrimSpace(p.Nome) == "" {
		return p.PatientID
	}
	return p.Nome
}

// Summary flattens the profile to key/value strings for the session record.
func (p *Profile) Summary() map[string]string {
	out := make(map[string]string, len(p.raw))
	for k, v := range p.raw {
		out[k] = stringify(v)
	}
	return out
}

// Fields returns the profile keys in sorted order.
func (p *Profile) Fields() []string {
	keys := make([]string, 0, len(p.raw))
	for k := range p.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
