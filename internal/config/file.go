package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// File represents the structure of the .linkcheck configuration file.
// Unset fields leave the corresponding defaults untouched.
type File struct {
	// Extensions replaces the document extension list.
	Extensions []string `yaml:"extensions,omitempty" validate:"dive,required"`

	// Exclude configures which parts of the tree are skipped.
	Exclude ExcludeConfig `yaml:"exclude,omitempty"`

	// IgnoreSchemes are added to the default ignored schemes.
	IgnoreSchemes []string `yaml:"ignoreSchemes,omitempty"`

	// Resources enables checking of stylesheet, script, image and frame references.
	Resources *bool `yaml:"resources,omitempty"`

	// StrictFragments reports bare "#" references.
	StrictFragments *bool `yaml:"strictFragments,omitempty"`

	// External configures external link probing.
	External ExternalConfig `yaml:"external,omitempty"`
}

// ExcludeConfig lists directory names and glob patterns to skip.
type ExcludeConfig struct {
	// Dirs are added to the default excluded directory names.
	Dirs []string `yaml:"dirs,omitempty"`

	// Patterns are glob patterns matched against root-relative paths.
	Patterns []string `yaml:"patterns,omitempty" validate:"dive,required"`
}

// ExternalConfig holds the external probe settings.
type ExternalConfig struct {
	Enabled     *bool          `yaml:"enabled,omitempty"`
	SampleSize  *int           `yaml:"sampleSize,omitempty" validate:"omitempty,gte=0"`
	Timeout     *time.Duration `yaml:"timeout,omitempty" validate:"omitempty,gt=0"`
	Concurrency *int           `yaml:"concurrency,omitempty" validate:"omitempty,gt=0"`
	UserAgent   string         `yaml:"userAgent,omitempty"`
	Proxy       string         `yaml:"proxy,omitempty" validate:"omitempty,url"`
}

// fileValidator checks the validate tags of File. Field names in errors
// are the YAML keys.
var fileValidator = newFileValidator()

func newFileValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the field constraints of the file.
// The first violation is returned wrapped in ErrInvalidConfigFile.
func (f *File) Validate() error {
	err := fileValidator.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	ve := verrs[0]
	rule := ve.Tag()
	if ve.Param() != "" {
		rule += "=" + ve.Param()
	}
	return fmt.Errorf("%w: %s fails %q", ErrInvalidConfigFile, fieldPath(ve.Namespace()), rule)
}

// fieldPath drops the struct name from a validator namespace,
// turning "File.external.sampleSize" into "external.sampleSize".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// Apply merges the file settings into cfg.
// List fields that extend defaults are appended without duplicates;
// Extensions replaces the default list.
func (f *File) Apply(cfg *Config) {
	if f == nil {
		return
	}

	if len(f.Extensions) > 0 {
		cfg.Extensions = NormalizeExtensions(f.Extensions)
	}
	cfg.ExcludeDirs = appendUnique(cfg.ExcludeDirs, f.Exclude.Dirs...)
	cfg.ExcludePatterns = appendUnique(cfg.ExcludePatterns, f.Exclude.Patterns...)
	cfg.IgnoreSchemes = appendUnique(cfg.IgnoreSchemes, f.IgnoreSchemes...)

	if f.Resources != nil {
		cfg.CheckResources = *f.Resources
	}
	if f.StrictFragments != nil {
		cfg.StrictFragments = *f.StrictFragments
	}

	ext := f.External
	if ext.Enabled != nil {
		cfg.External = *ext.Enabled
	}
	if ext.SampleSize != nil {
		cfg.SampleSize = *ext.SampleSize
	}
	if ext.Timeout != nil {
		cfg.Timeout = *ext.Timeout
	}
	if ext.Concurrency != nil {
		cfg.Concurrency = *ext.Concurrency
	}
	if ext.UserAgent != "" {
		cfg.UserAgent = ext.UserAgent
	}
	if ext.Proxy != "" {
		cfg.Proxy = ext.Proxy
	}
}

// appendUnique appends values not already present in list.
func appendUnique(list []string, values ...string) []string {
	seen := make(map[string]bool, len(list))
	for _, v := range list {
		seen[v] = true
	}
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		list = append(list, v)
	}
	return list
}
