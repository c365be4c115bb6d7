package config

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"line-splicer/internal/models"
)

//go:embed builtin/kitchen_block_swap.toml
var builtinDescriptor []byte

// BuiltinName identifies the embedded descriptor in logs and messages.
const BuiltinName = "builtin:kitchen_block_swap"

// Descriptor is one single-range edit, authored ahead of time.
//
//	path             = "src/pages/TableOverview.jsx"
//	start            = 1597
//	end              = 1719
//	replacement      = '''...'''
//	replacement_file = "block.jsx"      # alternative to replacement
//	expect_hash      = "sha256:..."     # optional guard on the removed lines
//	lock             = false
type Descriptor struct {
	Path            string `toml:"path" yaml:"path"`
	Start           *int   `toml:"start" yaml:"start"`
	End             *int   `toml:"end" yaml:"end"`
	Replacement     string `toml:"replacement" yaml:"replacement"`
	ReplacementFile string `toml:"replacement_file" yaml:"replacement_file"`
	ExpectHash      string `toml:"expect_hash" yaml:"expect_hash"`
	Lock            bool   `toml:"lock" yaml:"lock"`

	// Source is where the descriptor was loaded from.
	Source string `toml:"-" yaml:"-"`
	// baseDir resolves a relative replacement_file.
	baseDir string
}

// LoadDescriptor reads a TOML (.toml) or YAML (.yaml, .yml) descriptor and
// resolves its replacement text.
func LoadDescriptor(ctx context.Context, path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor '%s': %w", path, err)
	}
	d, err := ParseDescriptor(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("descriptor '%s': %w", path, err)
	}
	d.Source = path
	d.baseDir = filepath.Dir(path)
	if err := d.resolveReplacement(ctx); err != nil {
		return nil, fmt.Errorf("descriptor '%s': %w", path, err)
	}
	return d, nil
}

// BuiltinDescriptor returns the embedded kitchen block swap edit.
func BuiltinDescriptor() (*Descriptor, error) {
	d, err := ParseDescriptor(builtinDescriptor, ".toml")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", BuiltinName, err)
	}
	d.Source = BuiltinName
	return d, nil
}

// ParseDescriptor decodes and validates descriptor content. ext selects the
// format. Unknown keys are rejected in both formats.
func ParseDescriptor(data []byte, ext string) (*Descriptor, error) {
	d := &Descriptor{}
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.Decode(string(data), d)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("unrecognized keys: %s", strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(d); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported descriptor format %q (want .toml, .yaml or .yml)", ext)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks that the descriptor is complete. Range checks against the
// target file happen when the splice runs.
func (d *Descriptor) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Path) == "" {
		missing = append(missing, "path")
	}
	if d.Start == nil {
		missing = append(missing, "start")
	}
	if d.End == nil {
		missing = append(missing, "end")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required keys: %s", strings.Join(missing, ", "))
	}
	if d.Replacement != "" && d.ReplacementFile != "" {
		return fmt.Errorf("replacement and replacement_file are mutually exclusive")
	}
	return nil
}

// resolveReplacement loads replacement_file into Replacement. Local paths are
// relative to the descriptor; anything with a scheme goes through afs as is.
func (d *Descriptor) resolveReplacement(ctx context.Context) error {
	if d.ReplacementFile == "" {
		return nil
	}
	location := d.ReplacementFile
	if !strings.Contains(location, "://") {
		if !filepath.IsAbs(location) {
			location = filepath.Join(d.baseDir, location)
		}
		abs, err := filepath.Abs(location)
		if err != nil {
			return fmt.Errorf("replacement_file '%s': %w", d.ReplacementFile, err)
		}
		location = abs
	}

	fs := afs.New()
	exists, err := fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("replacement_file '%s': %w", d.ReplacementFile, err)
	}
	if !exists {
		return fmt.Errorf("replacement_file '%s' not found", d.ReplacementFile)
	}
	data, err := fs.DownloadWithURL(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to load replacement_file '%s': %w", d.ReplacementFile, err)
	}
	d.Replacement = string(data)
	return nil
}

// Request converts the descriptor into a splice request.
func (d *Descriptor) Request() models.SpliceRequest {
	req := models.SpliceRequest{
		Path:         d.Path,
		Replacement:  d.Replacement,
		ExpectedHash: d.ExpectHash,
		Lock:         d.Lock,
	}
	if d.Start != nil {
		req.Start = *d.Start
	}
	if d.End != nil {
		req.End = *d.End
	}
	return req
}
