package routegen

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/fehnomenal/sveltekit-gen-routes/routegen/ir"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/typescript"
)

// ErrInvalidConfig is returned for configurations that fail validation.
var ErrInvalidConfig = errors.New("invalid config")

// Default configuration values.
const (
	DefaultModuleName = "$routes"
	DefaultRoutesDir  = "src/routes"
	DefaultParamsDir  = "src/params"
	DefaultOutputDir  = "src"
	DefaultLineEnding = "lf"
)

// Config holds the configuration for route generation.
//
// Directories are relative to the working directory unless absolute.
type Config struct {
	// ModuleName is the import specifier of the generated index module and
	// the base name of the generated files.
	// Default: "$routes"
	ModuleName string `yaml:"moduleName" validate:"required,excludesall=/\\"`

	// RoutesDir is the SvelteKit routes directory.
	// Default: "src/routes"
	RoutesDir string `yaml:"routesDir" validate:"required"`

	// ParamsDir is the directory holding the param matchers.
	// Default: "src/params"
	ParamsDir string `yaml:"paramsDir" validate:"required"`

	// OutputDir is where the generated files are written.
	// Default: "src"
	OutputDir string `yaml:"outputDir" validate:"required"`

	// ForceRootRoute generates the root page even if the routes directory
	// does not define one.
	// Default: true
	ForceRootRoute *bool `yaml:"forceRootRoute"`

	// HelpersModule is the import specifier of the runtime helpers.
	HelpersModule string `yaml:"helpersModule"`

	// TypesModule is the import specifier of the shared route types.
	TypesModule string `yaml:"typesModule"`

	// LineEnding is "lf" or "crlf".
	// Default: "lf"
	LineEnding string `yaml:"lineEnding" validate:"oneof=lf crlf"`

	// EmitHelpers writes the runtime helpers next to the route modules.
	EmitHelpers bool `yaml:"emitHelpers"`

	// Routes holds explicit query params per final route, under the PAGES,
	// SERVERS and ACTIONS keys.
	Routes ir.RoutesConfig `yaml:",inline"`
}

// LoadConfig reads a YAML configuration file. Unknown fields are rejected.
// The result is not validated and has no defaults applied.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decodeConfig(f, path)
}

func decodeConfig(r io.Reader, name string) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return &cfg, nil
}

// applyConfigDefaults returns a copy of cfg with defaults filled in.
func applyConfigDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := *cfg

	if result.ModuleName == "" {
		result.ModuleName = DefaultModuleName
	}
	if result.RoutesDir == "" {
		result.RoutesDir = DefaultRoutesDir
	}
	if result.ParamsDir == "" {
		result.ParamsDir = DefaultParamsDir
	}
	if result.OutputDir == "" {
		result.OutputDir = DefaultOutputDir
	}
	if result.ForceRootRoute == nil {
		forceRoot := true
		result.ForceRootRoute = &forceRoot
	}
	if result.HelpersModule == "" {
		result.HelpersModule = typescript.DefaultHelpersModule
	}
	if result.TypesModule == "" {
		result.TypesModule = typescript.DefaultTypesModule
	}
	if result.LineEnding == "" {
		result.LineEnding = DefaultLineEnding
	}

	return &result
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("jsident", func(fl validator.FieldLevel) bool {
		return ir.IsIdentifier(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate applies defaults and checks the configuration. Every problem is
// reported, joined as "field: message; ...", wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	return validateConfig(applyConfigDefaults(c))
}

func validateConfig(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	messages := make([]string, 0, len(ves))
	for _, ve := range ves {
		messages = append(messages, fieldPath(ve)+": "+formatValidationError(ve))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(messages, "; "))
}

// fieldPath returns the namespace of a field without the root type.
func fieldPath(ve validator.FieldError) string {
	ns := ve.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "ne":
		return fmt.Sprintf("must not equal %s", ve.Param())
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q", ve.Param())
	case "jsident":
		return "must be a valid JavaScript identifier"
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}

// typeScriptConfig derives the emitter configuration. The matchers directory
// is made relative to the output directory.
func (c *Config) typeScriptConfig() (typescript.GeneratorConfig, error) {
	outDir, err := filepath.Abs(c.OutputDir)
	if err != nil {
		return typescript.GeneratorConfig{}, err
	}
	paramsDir, err := filepath.Abs(c.ParamsDir)
	if err != nil {
		return typescript.GeneratorConfig{}, err
	}
	matchers, err := filepath.Rel(outDir, paramsDir)
	if err != nil {
		return typescript.GeneratorConfig{}, fmt.Errorf("params dir: %w", err)
	}

	return typescript.GeneratorConfig{
		ModuleName:    c.ModuleName,
		HelpersModule: c.HelpersModule,
		TypesModule:   c.TypesModule,
		MatchersDir:   filepath.ToSlash(matchers),
		LineEnding:    c.LineEnding,
		EmitHelpers:   c.EmitHelpers,
		Routes:        c.Routes,
	}, nil
}
