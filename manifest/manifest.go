// Package manifest holds the in-memory representation of the build
// configuration: the target platforms, the third-party tools that may need to
// be bootstrapped, and the signature-verification rules for their sources.
package manifest

import (
	"fmt"
	"strings"

	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/util"
)

// LinkerSymbol is a single symbol definition injected at link time.
type LinkerSymbol struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Platform describes one build target.
type Platform struct {
	Name           string         `yaml:"name"`
	Triplet        string         `yaml:"triplet"`
	Compiler       string         `yaml:"compiler"`
	Linker         string         `yaml:"linker"`
	CompilerParams []string       `yaml:"compiler-params"`
	Qemu           string         `yaml:"qemu"`
	QemuParams     []string       `yaml:"qemu-params"`
	LinkerSymbols  []LinkerSymbol `yaml:"linker-symbols"`
	IncludeDirs    []string       `yaml:"include-dirs"`
}

// Package describes a source archive (or git repository) and the archives
// unpacked into its tree after it.
type Package struct {
	URL         string    `yaml:"url"`
	Dir         string    `yaml:"dir"`
	SubPackages []Package `yaml:"sub-packages"`
}

// EnvVar is a single environment override passed to a tool's sub-build.
type EnvVar struct {
	Variable string `yaml:"variable"`
	Value    string `yaml:"value"`
}

// Tool describes a third-party toolchain component built from source on demand.
type Tool struct {
	Name        string   `yaml:"name"`
	Package     Package  `yaml:"package"`
	Env         []EnvVar `yaml:"env"`
	Executables []string `yaml:"executables"`
}

// Signature describes how to verify packages whose URL starts with URI.
type Signature struct {
	URI       string `yaml:"uri"`
	Extension string `yaml:"extension"`
	PublicKey string `yaml:"public-key"`
	KeyRing   string `yaml:"key-ring"`
}

// Manifest is the parsed and validated build configuration.
type Manifest struct {
	Platforms  []*Platform  `yaml:"platforms"`
	Tools      []*Tool      `yaml:"tools"`
	Signatures []*Signature `yaml:"signatures"`

	platformsByName  map[string]*Platform
	toolsByName      map[string]*Tool
	toolByExecutable map[string]*Tool
}

// Load reads and validates the manifest. Any schema violation or
// inconsistency is an error; there is no partial or degraded mode.
func Load(path string) (*Manifest, error) {
	m := &Manifest{}
	if err := util.ReadYaml(path, m); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest '%s': %w", path, err)
	}
	return m, nil
}

func (m *Manifest) validate() error {
	m.platformsByName = map[string]*Platform{}
	m.toolsByName = map[string]*Tool{}
	m.toolByExecutable = map[string]*Tool{}

	for _, platform := range m.Platforms {
		if platform.Name == "" {
			return fmt.Errorf("platform without a name")
		}
		if platform.Triplet == "" {
			return fmt.Errorf("platform '%s' is missing its target triplet", platform.Name)
		}
		if _, exists := m.platformsByName[platform.Name]; exists {
			return fmt.Errorf("duplicate platform '%s'", platform.Name)
		}
		if platform.Compiler == "" {
			platform.Compiler = "gcc"
		}
		if platform.Linker == "" {
			platform.Linker = "ld"
		}
		if len(platform.IncludeDirs) == 0 {
			platform.IncludeDirs = []string{"include/" + platform.Name, "include"}
			log.Warning("Platform '%s' declares no include directories, defaulting to %v.\n",
				platform.Name, platform.IncludeDirs)
		}
		m.platformsByName[platform.Name] = platform
	}

	for _, tool := range m.Tools {
		if tool.Name == "" {
			return fmt.Errorf("tool without a name")
		}
		if _, exists := m.toolsByName[tool.Name]; exists {
			return fmt.Errorf("duplicate tool '%s'", tool.Name)
		}
		if tool.Package.URL == "" {
			return fmt.Errorf("tool '%s' is missing its package url", tool.Name)
		}
		if len(tool.Executables) == 0 {
			tool.Executables = []string{tool.Name}
		}
		for _, executable := range tool.Executables {
			if registered, exists := m.toolByExecutable[executable]; exists {
				return fmt.Errorf("executable '%s' is registered by both tool '%s' and tool '%s'",
					executable, registered.Name, tool.Name)
			}
			m.toolByExecutable[executable] = tool
		}
		m.toolsByName[tool.Name] = tool
	}

	for _, signature := range m.Signatures {
		if signature.URI == "" {
			return fmt.Errorf("signature rule without a uri prefix")
		}
		if signature.Extension == "" {
			return fmt.Errorf("signature rule for '%s' is missing its extension", signature.URI)
		}
	}

	return nil
}

// HasPlatform reports whether a platform of that name is declared.
func (m *Manifest) HasPlatform(name string) bool {
	_, exists := m.platformsByName[name]
	return exists
}

// Platform returns a declared platform by name. Looking up an undeclared
// platform is a programming error and aborts.
func (m *Manifest) Platform(name string) *Platform {
	platform, exists := m.platformsByName[name]
	if !exists {
		log.Fatal("Platform '%s' is not declared in the manifest.\n", name)
	}
	return platform
}

// Tool returns a declared tool by name. Looking up an undeclared tool is a
// programming error and aborts.
func (m *Manifest) Tool(name string) *Tool {
	tool, exists := m.toolsByName[name]
	if !exists {
		log.Fatal("Tool '%s' is not declared in the manifest.\n", name)
	}
	return tool
}

// ToolForExecutable returns the tool providing the named executable, or an
// error if no declared tool provides it.
func (m *Manifest) ToolForExecutable(executable string) (*Tool, error) {
	tool, exists := m.toolByExecutable[executable]
	if !exists {
		return nil, fmt.Errorf("no tool provides the executable '%s'", executable)
	}
	return tool, nil
}

// SignatureFor returns the first signature rule whose URI prefix matches
// `url`. A package without a matching rule cannot be verified, which is an
// error.
func (m *Manifest) SignatureFor(url string) (*Signature, error) {
	for _, signature := range m.Signatures {
		if strings.HasPrefix(url, signature.URI) {
			return signature, nil
		}
	}
	return nil, fmt.Errorf("no signature rule matches '%s'", url)
}
